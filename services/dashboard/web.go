package dashboard

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/agencyportal/lib/mycontext"
	"github.com/MarcGrol/agencyportal/lib/myerrors"
	"github.com/MarcGrol/agencyportal/lib/myhttp"
	"github.com/MarcGrol/agencyportal/lib/mylog"
)

//go:embed templates
var templateFolder embed.FS
var (
	dashboardPageTemplate *template.Template
)

func init() {
	dashboardPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/dashboard.html"))
}

type webService struct {
	fetcher UserInfoFetcher
	path    string
	logger  mylog.Logger
}

func NewService(fetcher UserInfoFetcher, path string) *webService {
	return &webService{
		fetcher: fetcher,
		path:    path,
		logger:  mylog.New("dashboard"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc(s.path, s.dashboardPage()).Methods("GET")
}

func (s *webService) dashboardPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		query := r.URL.Query()
		model := newPageModel(query.Get("error"), query.Get("details"))

		if query.Get("async") == "1" {
			// the browser fetches the user info itself
			model.State = stateLoading
		} else {
			model = model.classify(s.fetcher.FetchUserInfo(c, w, r))
		}

		s.logger.Log(c, "", mylog.SeverityDebug, "Render dashboard in state %s", model.State)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		err := dashboardPageTemplate.Execute(w, model)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}
	}
}
