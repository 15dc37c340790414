package contact

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/agencyportal/lib/myconfig"
	"github.com/MarcGrol/agencyportal/lib/mycontext"
	"github.com/MarcGrol/agencyportal/lib/myform"
	"github.com/MarcGrol/agencyportal/lib/myhttp"
	"github.com/MarcGrol/agencyportal/lib/mylog"
	"github.com/MarcGrol/agencyportal/lib/mypublisher"
	"github.com/MarcGrol/agencyportal/lib/mystore"
	"github.com/MarcGrol/agencyportal/lib/mytime"
	"github.com/MarcGrol/agencyportal/lib/myuuid"
)

type webService struct {
	service       *service
	adminUsername string
	adminPassword string
	logger        mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(cfg myconfig.Config, store mystore.Store[ContactRequest], nower mytime.Nower, uuider myuuid.UUIDer, pub mypublisher.Publisher) *webService {
	logger := mylog.New("contact")
	return &webService{
		service:       newService(store, nower, uuider, pub, logger),
		adminUsername: cfg.AdminUsername,
		adminPassword: cfg.AdminPassword,
		logger:        logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/contact", s.submitPage()).Methods("POST")
	router.HandleFunc("/api/admin/contact", s.admin(s.listPage())).Methods("GET")
	router.HandleFunc("/api/admin/contact/{uid}/handled", s.admin(s.handledPage())).Methods("POST")

	err := s.service.CreateTopics(c)
	if err != nil {
		return err
	}

	return nil
}

func (s *webService) admin(next http.HandlerFunc) http.HandlerFunc {
	return myhttp.BasicAuth(s.adminUsername, s.adminPassword, next)
}

func (s *webService) submitPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		form := contactForm{}
		err := myform.DecodeRequest(r, &form)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		uid, err := s.service.submit(c, form)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusCreated, createdResponse{UID: uid})
	}
}

func (s *webService) listPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		requests, err := s.service.list(c)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, contactRequests{ContactRequests: requests})
	}
}

func (s *webService) handledPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		request, err := s.service.markHandled(c, mux.Vars(r)["uid"])
		if err != nil {
			errorWriter.WriteError(c, w, 4, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, request)
	}
}
