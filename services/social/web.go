package social

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/agencyportal/lib/codeverifier"
	"github.com/MarcGrol/agencyportal/lib/myconfig"
	"github.com/MarcGrol/agencyportal/lib/mycontext"
	"github.com/MarcGrol/agencyportal/lib/myerrors"
	"github.com/MarcGrol/agencyportal/lib/myhttp"
	"github.com/MarcGrol/agencyportal/lib/mylog"
	"github.com/MarcGrol/agencyportal/lib/mypublisher"
	"github.com/MarcGrol/agencyportal/lib/myuuid"
	"github.com/MarcGrol/agencyportal/services/social/socialclient"
)

type webService struct {
	service       *service
	cookies       cookieJar
	dashboardPath string
	logger        mylog.Logger
}

func NewService(cfg myconfig.Config, client socialclient.SocialClient, generator codeverifier.Generator, uuider myuuid.UUIDer, pub mypublisher.Publisher) *webService {
	return &webService{
		service:       newService(cfg.Social, client, generator, uuider, pub),
		cookies:       newCookieJar(cfg.IsProduction()),
		dashboardPath: cfg.DashboardPath,
		logger:        mylog.New("social"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/social/auth/login", s.loginPage()).Methods("GET")
	router.HandleFunc("/api/social/auth/callback", s.callbackPage()).Methods("GET")
	router.HandleFunc("/api/social/auth/refresh", s.refreshPage()).Methods("POST")
	router.HandleFunc("/api/social/auth/logout", s.logoutPage()).Methods("POST")
	router.HandleFunc("/api/social/user", s.userInfoPage()).Methods("GET")

	err := s.service.CreateTopics(c)
	if err != nil {
		return err
	}

	return nil
}

func (s *webService) loginPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		authURL, state, verifier, err := s.service.startLogin(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		s.cookies.setFlowCookies(w, state, verifier)

		http.Redirect(w, r, authURL, http.StatusSeeOther)
	}
}

func (s *webService) callbackPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)

		// the browser always lands on the dashboard, also when something blows up
		defer func() {
			if p := recover(); p != nil {
				s.logger.Log(c, "", mylog.SeverityError, "Recovered from panic in callback: %v", p)
				s.redirectToDashboard(w, r, errorCodeInternal, "")
			}
		}()

		storedState, storedVerifier := s.cookies.consumeFlowCookies(w, r)

		query := r.URL.Query()
		tokens, err := s.service.completeLogin(c, callbackRequest{
			ProviderError:            query.Get("error"),
			ProviderErrorDescription: query.Get("error_description"),
			State:                    query.Get("state"),
			Code:                     query.Get("code"),
			StoredState:              storedState,
			StoredVerifier:           storedVerifier,
		})
		if err != nil {
			cbErr := &callbackError{}
			if !errors.As(err, &cbErr) {
				cbErr = newCallbackError(errorCodeInternal, "")
			}
			s.redirectToDashboard(w, r, cbErr.code, cbErr.details)
			return
		}

		s.cookies.setTokenCookies(w, tokens)

		s.redirectToDashboard(w, r, "", "")
	}
}

func (s *webService) redirectToDashboard(w http.ResponseWriter, r *http.Request, errorCode string, details string) {
	target := s.dashboardPath
	if errorCode != "" {
		params := url.Values{"error": {errorCode}}
		if details != "" {
			params.Set("details", details)
		}
		target = target + "?" + params.Encode()
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *webService) userInfoPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		defer func() {
			if p := recover(); p != nil {
				s.logger.Log(c, "", mylog.SeverityError, "Recovered from panic in user info: %v", p)
				errorWriter.Write(c, w, http.StatusInternalServerError, UserInfoResult{
					Error:           messageInternalError,
					IsAuthenticated: true,
				})
			}
		}()

		result := s.FetchUserInfo(c, w, r)

		errorWriter.Write(c, w, result.HTTPStatus, result)
	}
}

// FetchUserInfo calls the analytics api on behalf of the browser that sent r.
// Rejected tokens are removed from that browser via w.
func (s *webService) FetchUserInfo(c context.Context, w http.ResponseWriter, r *http.Request) UserInfoResult {
	result := s.service.fetchUserInfo(c, valueOf(r, cookieAccessToken))
	if result.TokensInvalid {
		s.cookies.clearTokenCookies(w)
	}
	return result
}

func (s *webService) refreshPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		refreshToken := valueOf(r, cookieRefreshToken)
		if refreshToken == "" {
			errorWriter.Write(c, w, http.StatusUnauthorized, authStatusResponse{
				Error:           messageRefreshTokenAbsent,
				IsAuthenticated: false,
			})
			return
		}

		tokens, err := s.service.refreshTokens(c, refreshToken)
		if err != nil {
			s.logger.Log(c, "", mylog.SeverityWarn, "Error refreshing token: %s", err)

			switch myerrors.GetHTTPStatus(err) {
			case http.StatusUnauthorized:
				s.cookies.clearTokenCookies(w)
				errorWriter.Write(c, w, http.StatusUnauthorized, authStatusResponse{
					Error:           messageTokenExpired,
					IsAuthenticated: false,
				})
			case http.StatusBadGateway:
				details := err.Error()
				if upstreamErr, ok := socialclient.AsUpstreamError(err); ok {
					details = upstreamErr.Detail
				}
				errorWriter.Write(c, w, http.StatusBadGateway, authStatusResponse{
					Error:           messageRefreshFailed,
					Details:         details,
					IsAuthenticated: true,
				})
			default:
				errorWriter.Write(c, w, http.StatusInternalServerError, authStatusResponse{
					Error:           messageInternalError,
					IsAuthenticated: true,
				})
			}
			return
		}

		s.cookies.setTokenCookies(w, tokens)

		errorWriter.Write(c, w, http.StatusOK, authStatusResponse{
			IsAuthenticated: true,
		})
	}
}

func (s *webService) logoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)

		s.service.logout(c, valueOf(r, cookieAccessToken), valueOf(r, cookieOpenID))

		s.cookies.clearTokenCookies(w)

		http.Redirect(w, r, s.dashboardPath, http.StatusSeeOther)
	}
}
