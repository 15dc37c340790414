package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/agencyportal/lib/codeverifier"
	"github.com/MarcGrol/agencyportal/lib/myconfig"
	"github.com/MarcGrol/agencyportal/lib/myevents"
	"github.com/MarcGrol/agencyportal/lib/myhttpclient"
	"github.com/MarcGrol/agencyportal/lib/mylog"
	"github.com/MarcGrol/agencyportal/lib/mypublisher"
	"github.com/MarcGrol/agencyportal/lib/mypubsub"
	"github.com/MarcGrol/agencyportal/lib/myqueue"
	"github.com/MarcGrol/agencyportal/lib/mystore"
	"github.com/MarcGrol/agencyportal/lib/mytime"
	"github.com/MarcGrol/agencyportal/lib/myuuid"
	"github.com/MarcGrol/agencyportal/services/contact"
	"github.com/MarcGrol/agencyportal/services/dashboard"
	"github.com/MarcGrol/agencyportal/services/invoice"
	"github.com/MarcGrol/agencyportal/services/social"
	"github.com/MarcGrol/agencyportal/services/social/socialclient"
	"github.com/MarcGrol/agencyportal/services/warmup"
)

const warmupUID = "_warmup"

func main() {
	c := context.Background()

	cfg, err := myconfig.Load()
	if err != nil {
		log.Fatalf("Error loading config: %s", err)
	}

	router := mux.NewRouter()

	cleanup, err := registerServices(c, cfg, router)
	if err != nil {
		log.Fatalf("Error creating services: %s", err)
	}
	defer cleanup()

	startWebServerBlocking(cfg, router)
}

func registerServices(c context.Context, cfg myconfig.Config, router *mux.Router) (func(), error) {
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	// the local queue delivers straight into the router
	queue, queueCleanup, err := myqueue.New(c, cfg.GoogleCloudProject, cfg.LocationID, cfg.QueueName, router)
	if err != nil {
		return cleanup, fmt.Errorf("error creating queue: %s", err)
	}
	cleanups = append(cleanups, queueCleanup)

	pubsub, pubsubCleanup, err := mypubsub.New(c, cfg.GoogleCloudProject)
	if err != nil {
		return cleanup, fmt.Errorf("error creating pubsub: %s", err)
	}
	cleanups = append(cleanups, pubsubCleanup)

	outboxStore, outboxCleanup, err := mystore.New[myevents.EventEnvelope](c, cfg.GoogleCloudProject)
	if err != nil {
		return cleanup, fmt.Errorf("error creating outbox store: %s", err)
	}
	cleanups = append(cleanups, outboxCleanup)

	publisher := mypublisher.New(outboxStore, pubsub, queue, nower)
	publisher.RegisterEndpoints(c, router)

	socialService := social.NewService(cfg, socialclient.New(cfg.Social, myhttpclient.New()), codeverifier.NewGenerator(), uuider, publisher)
	err = socialService.RegisterEndpoints(c, router)
	if err != nil {
		return cleanup, fmt.Errorf("error registering social endpoints: %s", err)
	}

	dashboard.NewService(socialService, cfg.DashboardPath).RegisterEndpoints(c, router)
	router.Handle("/", http.RedirectHandler(cfg.DashboardPath, http.StatusSeeOther)).Methods("GET")

	contactStore, contactCleanup, err := mystore.New[contact.ContactRequest](c, cfg.GoogleCloudProject)
	if err != nil {
		return cleanup, fmt.Errorf("error creating contact store: %s", err)
	}
	cleanups = append(cleanups, contactCleanup)

	err = contact.NewService(cfg, contactStore, nower, uuider, publisher).RegisterEndpoints(c, router)
	if err != nil {
		return cleanup, fmt.Errorf("error registering contact endpoints: %s", err)
	}

	invoiceStore, invoiceCleanup, err := mystore.New[invoice.Invoice](c, cfg.GoogleCloudProject)
	if err != nil {
		return cleanup, fmt.Errorf("error creating invoice store: %s", err)
	}
	cleanups = append(cleanups, invoiceCleanup)

	payers, err := createPayers(cfg)
	if err != nil {
		return cleanup, err
	}

	err = invoice.NewService(cfg, invoiceStore, payers, nower, uuider, publisher).RegisterEndpoints(c, router)
	if err != nil {
		return cleanup, fmt.Errorf("error registering invoice endpoints: %s", err)
	}

	err = warmup.NewService(cfg, map[string]warmup.Check{
		"outbox": func(c context.Context) error {
			_, _, err := outboxStore.Get(c, warmupUID)
			return err
		},
		"contact": func(c context.Context) error {
			_, _, err := contactStore.Get(c, warmupUID)
			return err
		},
		"invoice": func(c context.Context) error {
			_, _, err := invoiceStore.Get(c, warmupUID)
			return err
		},
	}).RegisterEndpoints(c, router)
	if err != nil {
		return cleanup, fmt.Errorf("error registering warmup endpoints: %s", err)
	}

	return cleanup, nil
}

// createPayers only offers the providers that have an api-key
func createPayers(cfg myconfig.Config) (map[string]invoice.Payer, error) {
	payers := map[string]invoice.Payer{}
	if cfg.StripeAPIKey != "" {
		payers[invoice.ProviderStripe] = invoice.NewStripePayer(cfg.StripeAPIKey)
	}
	if cfg.MollieAPIKey != "" {
		payer, err := invoice.NewMolliePayer(cfg.MollieAPIKey)
		if err != nil {
			return nil, err
		}
		payers[invoice.ProviderMollie] = payer
	}
	return payers, nil
}

func startWebServerBlocking(cfg myconfig.Config, router *mux.Router) {
	logger := mylog.New("main")
	c := context.Background()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		logger.Log(c, "", mylog.SeverityInfo, "Shutting down webserver")
		shutdownCtx, cancel := context.WithTimeout(c, 10*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		if err != nil {
			logger.Log(c, "", mylog.SeverityError, "Error shutting down webserver: %s", err)
		}
	}()

	logger.Log(c, "", mylog.SeverityInfo, "Starting webserver on port %s (try http://localhost:%s)", cfg.Port, cfg.Port)
	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Error starting webserver on port %s: %s", cfg.Port, err)
	}

	<-stopped
}
