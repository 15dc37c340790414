package invoice

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/agencyportal/lib/myconfig"
	"github.com/MarcGrol/agencyportal/lib/mycontext"
	"github.com/MarcGrol/agencyportal/lib/myerrors"
	"github.com/MarcGrol/agencyportal/lib/myform"
	"github.com/MarcGrol/agencyportal/lib/myhttp"
	"github.com/MarcGrol/agencyportal/lib/mylog"
	"github.com/MarcGrol/agencyportal/lib/mypublisher"
	"github.com/MarcGrol/agencyportal/lib/mystore"
	"github.com/MarcGrol/agencyportal/lib/mytime"
	"github.com/MarcGrol/agencyportal/lib/myuuid"
)

const maxWebhookBodySize = 65536

type webService struct {
	service       *service
	adminUsername string
	adminPassword string
	logger        mylog.Logger
}

// NewService gets one payer per configured provider, keyed on provider name
func NewService(cfg myconfig.Config, store mystore.Store[Invoice], payers map[string]Payer, nower mytime.Nower, uuider myuuid.UUIDer, pub mypublisher.Publisher) *webService {
	logger := mylog.New("invoice")
	return &webService{
		service:       newService(store, payers, cfg.StripeWebhookSecret, nower, uuider, pub, logger),
		adminUsername: cfg.AdminUsername,
		adminPassword: cfg.AdminPassword,
		logger:        logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/admin/invoices", s.admin(s.createPage())).Methods("POST")
	router.HandleFunc("/api/admin/invoices", s.admin(s.listPage())).Methods("GET")
	router.HandleFunc("/api/admin/invoices/{invoiceUID}/sync", s.admin(s.syncPage())).Methods("POST")

	router.HandleFunc("/api/invoices/webhook/stripe", s.stripeWebhook()).Methods("POST")
	router.HandleFunc("/api/invoices/webhook/mollie/{invoiceUID}", s.mollieWebhook()).Methods("POST")

	router.HandleFunc("/api/invoices/{invoiceUID}", s.getPage()).Methods("GET")
	router.HandleFunc("/api/invoices/{invoiceUID}/pay/{provider}", s.payPage()).Methods("POST")
	router.HandleFunc("/api/invoices/{invoiceUID}/status/{status}", s.returnPage()).Methods("GET")

	err := s.service.CreateTopics(c)
	if err != nil {
		return err
	}

	return nil
}

func (s *webService) admin(next http.HandlerFunc) http.HandlerFunc {
	return myhttp.BasicAuth(s.adminUsername, s.adminPassword, next)
}

func (s *webService) createPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		form := invoiceForm{}
		err := myform.DecodeRequest(r, &form)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		invoice, err := s.service.create(c, form)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusCreated, invoice)
	}
}

func (s *webService) listPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		result, err := s.service.list(c)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, invoices{Invoices: result})
	}
}

func (s *webService) syncPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		invoice, err := s.service.syncStatus(c, mux.Vars(r)["invoiceUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 4, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, invoice)
	}
}

func (s *webService) getPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		invoice, err := s.service.get(c, mux.Vars(r)["invoiceUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 5, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, invoice)
	}
}

func (s *webService) payPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		invoiceUID := mux.Vars(r)["invoiceUID"]
		provider := mux.Vars(r)["provider"]

		redirectURL, err := s.service.startPayment(c, invoiceUID, provider, myhttp.HostnameWithScheme(r))
		if err != nil {
			errorWriter.WriteError(c, w, 6, err)
			return
		}

		http.Redirect(w, r, redirectURL, http.StatusSeeOther)
	}
}

func (s *webService) returnPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		redirectURL, err := s.service.recordReturn(c, mux.Vars(r)["invoiceUID"], mux.Vars(r)["status"])
		if err != nil {
			errorWriter.WriteError(c, w, 7, err)
			return
		}

		http.Redirect(w, r, redirectURL, http.StatusSeeOther)
	}
}

func (s *webService) stripeWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
		if err != nil {
			errorWriter.WriteError(c, w, 8, myerrors.NewInvalidInputError(fmt.Errorf("error reading body: %s", err)))
			return
		}

		err = s.service.handleStripeEvent(c, payload, r.Header.Get("Stripe-Signature"))
		if err != nil {
			errorWriter.WriteError(c, w, 9, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{})
	}
}

func (s *webService) mollieWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 10, myerrors.NewInvalidInputError(err))
			return
		}

		id := r.FormValue("id")
		if id == "" {
			errorWriter.WriteError(c, w, 11, myerrors.NewInvalidInputErrorf("missing id"))
			return
		}

		err = s.service.handleMollieWebhook(c, mux.Vars(r)["invoiceUID"], id)
		if err != nil {
			errorWriter.WriteError(c, w, 12, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{})
	}
}
