package warmup

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/agencyportal/lib/myconfig"
	"github.com/MarcGrol/agencyportal/lib/mycontext"
	"github.com/MarcGrol/agencyportal/lib/myerrors"
	"github.com/MarcGrol/agencyportal/lib/myhttp"
	"github.com/MarcGrol/agencyportal/lib/mylog"
)

// Check touches a dependency so that its connection is warm before real traffic arrives
type Check func(c context.Context) error

type statusResponse struct {
	Message          string   `json:"message"`
	Environment      string   `json:"environment"`
	SocialConfigured bool     `json:"socialConfigured"`
	MissingConfig    []string `json:"missingConfig,omitempty"`
	Checked          []string `json:"checked"`
}

type webService struct {
	cfg    myconfig.Config
	checks map[string]Check
	logger mylog.Logger
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewService(cfg myconfig.Config, checks map[string]Check) *webService {
	return &webService{
		cfg:    cfg,
		checks: checks,
		logger: mylog.New("warmup"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/_ah/warmup", s.statusPage("Successfully processed warmup request")).Methods("GET")
	router.HandleFunc("/healthz", s.statusPage("Healthy")).Methods("GET")

	return nil
}

func (s *webService) statusPage(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		checked, err := s.runChecks(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		missing := s.cfg.Social.MissingForTokenExchange()
		errorWriter.Write(c, w, http.StatusOK, statusResponse{
			Message:          message,
			Environment:      s.cfg.Environment,
			SocialConfigured: len(missing) == 0,
			MissingConfig:    missing,
			Checked:          checked,
		})
	}
}

func (s *webService) runChecks(c context.Context) ([]string, error) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		err := s.checks[name](c)
		if err != nil {
			return nil, myerrors.NewUnavailableError(fmt.Errorf("check %s failed: %s", name, err))
		}
	}

	return names, nil
}
