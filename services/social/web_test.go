package social

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/oauth2"

	"github.com/MarcGrol/agencyportal/lib/codeverifier"
	"github.com/MarcGrol/agencyportal/lib/myconfig"
	"github.com/MarcGrol/agencyportal/lib/mypublisher"
	"github.com/MarcGrol/agencyportal/lib/myuuid"
	"github.com/MarcGrol/agencyportal/services/social/socialclient"
	"github.com/MarcGrol/agencyportal/services/social/socialevents"
)

var exampleVerifier = string(bytes.Repeat([]byte("ab"), 32))

func TestLogin(t *testing.T) {

	t.Run("Login redirects to provider and sets flow cookies", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, uuider, _ := setup(t, ctrl, exampleConfig())

		// given
		uuider.EXPECT().Create().Return("state-123")
		client.EXPECT().ComposeAuthURL(gomock.Any(), socialclient.ComposeAuthURLRequest{
			Scopes:              requestedScopes,
			State:               "state-123",
			CodeChallenge:       oauth2.S256ChallengeFromVerifier(exampleVerifier),
			CodeChallengeMethod: "S256",
		}).Return("https://www.tiktok.com/v2/auth/authorize/?state=state-123", nil)

		// when
		request, err := http.NewRequest(http.MethodGet, "/api/social/auth/login", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusSeeOther, response.Code)
		assert.Equal(t, "https://www.tiktok.com/v2/auth/authorize/?state=state-123", response.Header().Get("Location"))

		stateCookie := findCookie(response, cookieAuthState)
		require.NotNil(t, stateCookie)
		assert.Equal(t, "state-123", stateCookie.Value)
		assertFlowCookie(t, stateCookie)

		verifierCookie := findCookie(response, cookieCodeVerifier)
		require.NotNil(t, verifierCookie)
		assert.Equal(t, exampleVerifier, verifierCookie.Value)
		assertFlowCookie(t, verifierCookie)
	})

	t.Run("Login in production sets secure cookies", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		cfg := exampleConfig()
		cfg.Environment = myconfig.EnvProduction
		router, client, uuider, _ := setup(t, ctrl, cfg)

		// given
		uuider.EXPECT().Create().Return("state-123")
		client.EXPECT().ComposeAuthURL(gomock.Any(), gomock.Any()).Return("https://www.tiktok.com/v2/auth/authorize/", nil)

		// when
		request, _ := http.NewRequest(http.MethodGet, "/api/social/auth/login", nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusSeeOther, response.Code)
		assert.True(t, findCookie(response, cookieAuthState).Secure)
		assert.True(t, findCookie(response, cookieCodeVerifier).Secure)
	})

	t.Run("Login without configuration", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		cfg := exampleConfig()
		cfg.Social.ClientKey = ""
		router, _, _, _ := setup(t, ctrl, cfg)

		// when
		request, _ := http.NewRequest(http.MethodGet, "/api/social/auth/login", nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusInternalServerError, response.Code)
		assert.Equal(t, "application/json", response.Header().Get("Content-Type"))
		assert.Contains(t, response.Body.String(), "SOCIAL_CLIENT_KEY")
		assert.Nil(t, findCookie(response, cookieAuthState))
	})

	t.Run("Login with failing randomness", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		client := socialclient.NewMockSocialClient(ctrl)
		uuider := myuuid.NewMockUUIDer(ctrl)
		publisher := mypublisher.NewMockPublisher(ctrl)
		router := newRouter(t, exampleConfig(), client, codeverifier.NewGeneratorFromReader(failingReader{}), uuider, publisher)

		// given
		uuider.EXPECT().Create().Return("state-123")

		// when
		request, _ := http.NewRequest(http.MethodGet, "/api/social/auth/login", nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusInternalServerError, response.Code)
		assert.Contains(t, response.Body.String(), "pkce")
		assert.Nil(t, findCookie(response, cookieCodeVerifier))
	})
}

func TestCallback(t *testing.T) {

	t.Run("Success sets token cookies", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, _, publisher := setup(t, ctrl, exampleConfig())

		// given
		client.EXPECT().GetAccessToken(gomock.Any(), socialclient.GetTokenRequest{
			Code:         "abc123",
			CodeVerifier: "verifier-1",
		}).Return(socialclient.GetTokenResponse{
			AccessToken:      "tok1",
			RefreshToken:     "ref1",
			ExpiresIn:        7200,
			RefreshExpiresIn: 86400,
			OpenID:           "u1",
			Scope:            "user.info.basic",
		}, nil)
		publisher.EXPECT().Publish(gomock.Any(), socialevents.TopicName, socialevents.LoginCompleted{
			ProviderName: "tiktok",
			OpenID:       "u1",
			Scope:        "user.info.basic",
		}).Return(nil)

		// when
		response := doCallback(router, "code=abc123&state=state-123", "state-123", "verifier-1")

		// then
		assert.Equal(t, http.StatusSeeOther, response.Code)
		assert.Equal(t, "/dashboard", response.Header().Get("Location"))

		assertCleared(t, findCookie(response, cookieAuthState))
		assertCleared(t, findCookie(response, cookieCodeVerifier))

		accessToken := findCookie(response, cookieAccessToken)
		require.NotNil(t, accessToken)
		assert.Equal(t, "tok1", accessToken.Value)
		assert.Equal(t, 7200, accessToken.MaxAge)
		assert.True(t, accessToken.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, accessToken.SameSite)
		assert.Equal(t, "/", accessToken.Path)
		assert.False(t, accessToken.Secure)

		refreshToken := findCookie(response, cookieRefreshToken)
		require.NotNil(t, refreshToken)
		assert.Equal(t, "ref1", refreshToken.Value)
		assert.Equal(t, 86400, refreshToken.MaxAge)
		assert.True(t, refreshToken.HttpOnly)

		openID := findCookie(response, cookieOpenID)
		require.NotNil(t, openID)
		assert.Equal(t, "u1", openID.Value)
		assert.Equal(t, 86400, openID.MaxAge)
		assert.False(t, openID.HttpOnly)
	})

	t.Run("Success applies default lifetimes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, _, publisher := setup(t, ctrl, exampleConfig())

		// given
		client.EXPECT().GetAccessToken(gomock.Any(), gomock.Any()).Return(socialclient.GetTokenResponse{
			AccessToken:  "tok1",
			RefreshToken: "ref1",
			OpenID:       "u1",
		}, nil)
		publisher.EXPECT().Publish(gomock.Any(), socialevents.TopicName, gomock.Any()).Return(nil)

		// when
		response := doCallback(router, "code=abc123&state=state-123", "state-123", "verifier-1")

		// then
		assert.Equal(t, "/dashboard", response.Header().Get("Location"))
		assert.Equal(t, 3600, findCookie(response, cookieAccessToken).MaxAge)
		assert.Equal(t, 30*24*60*60, findCookie(response, cookieRefreshToken).MaxAge)
		assert.Equal(t, 30*24*60*60, findCookie(response, cookieOpenID).MaxAge)
	})

	t.Run("Success without refresh token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, _, publisher := setup(t, ctrl, exampleConfig())

		// given
		client.EXPECT().GetAccessToken(gomock.Any(), gomock.Any()).Return(socialclient.GetTokenResponse{
			AccessToken: "tok1",
			OpenID:      "u1",
		}, nil)
		publisher.EXPECT().Publish(gomock.Any(), socialevents.TopicName, gomock.Any()).Return(nil)

		// when
		response := doCallback(router, "code=abc123&state=state-123", "state-123", "verifier-1")

		// then
		assert.NotNil(t, findCookie(response, cookieAccessToken))
		assert.Nil(t, findCookie(response, cookieRefreshToken))
	})

	t.Run("Publish failure does not change outcome", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, _, publisher := setup(t, ctrl, exampleConfig())

		// given
		client.EXPECT().GetAccessToken(gomock.Any(), gomock.Any()).Return(socialclient.GetTokenResponse{
			AccessToken: "tok1",
			OpenID:      "u1",
		}, nil)
		publisher.EXPECT().Publish(gomock.Any(), socialevents.TopicName, gomock.Any()).Return(fmt.Errorf("outbox down"))

		// when
		response := doCallback(router, "code=abc123&state=state-123", "state-123", "verifier-1")

		// then
		assert.Equal(t, "/dashboard", response.Header().Get("Location"))
		assert.Equal(t, "tok1", findCookie(response, cookieAccessToken).Value)
	})

	testCases := []struct {
		name          string
		query         string
		storedState   string
		storedVerifer string
		expectedError string
		expectedQuery url.Values
	}{
		{
			name:          "Provider error is passed through",
			query:         "error=access_denied&error_description=User+cancelled&state=state-123",
			storedState:   "state-123",
			storedVerifer: "verifier-1",
			expectedError: "access_denied",
			expectedQuery: url.Values{"error": {"access_denied"}, "details": {"User cancelled"}},
		},
		{
			name:          "State mismatch",
			query:         "code=abc123&state=evil",
			storedState:   "state-123",
			storedVerifer: "verifier-1",
			expectedError: errorCodeStateValidationFailed,
			expectedQuery: url.Values{"error": {errorCodeStateValidationFailed}},
		},
		{
			name:          "State missing in query",
			query:         "code=abc123",
			storedState:   "state-123",
			storedVerifer: "verifier-1",
			expectedError: errorCodeStateValidationFailed,
			expectedQuery: url.Values{"error": {errorCodeStateValidationFailed}},
		},
		{
			name:          "State cookie missing",
			query:         "code=abc123&state=state-123",
			storedState:   "",
			storedVerifer: "verifier-1",
			expectedError: errorCodeStateValidationFailed,
			expectedQuery: url.Values{"error": {errorCodeStateValidationFailed}},
		},
		{
			name:          "State differs only in case",
			query:         "code=abc123&state=STATE-123",
			storedState:   "state-123",
			storedVerifer: "verifier-1",
			expectedError: errorCodeStateValidationFailed,
			expectedQuery: url.Values{"error": {errorCodeStateValidationFailed}},
		},
		{
			name:          "Code missing",
			query:         "state=state-123",
			storedState:   "state-123",
			storedVerifer: "verifier-1",
			expectedError: errorCodeAuthCodeMissing,
			expectedQuery: url.Values{"error": {errorCodeAuthCodeMissing}},
		},
		{
			name:          "Verifier missing",
			query:         "code=abc123&state=state-123",
			storedState:   "state-123",
			storedVerifer: "",
			expectedError: errorCodeCodeVerifierMissing,
			expectedQuery: url.Values{"error": {errorCodeCodeVerifierMissing}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// setup
			router, _, _, publisher := setup(t, ctrl, exampleConfig())

			// given
			publisher.EXPECT().Publish(gomock.Any(), socialevents.TopicName, socialevents.LoginFailed{
				ProviderName: "tiktok",
				ErrorCode:    tc.expectedError,
				Details:      tc.expectedQuery.Get("details"),
			}).Return(nil)

			// when
			response := doCallback(router, tc.query, tc.storedState, tc.storedVerifer)

			// then
			assert.Equal(t, http.StatusSeeOther, response.Code)
			assertRedirectedToDashboard(t, response, tc.expectedQuery)
			assertCleared(t, findCookie(response, cookieAuthState))
			assertCleared(t, findCookie(response, cookieCodeVerifier))
			assert.Nil(t, findCookie(response, cookieAccessToken))
			assert.Nil(t, findCookie(response, cookieRefreshToken))
		})
	}

	t.Run("Missing client secret", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		cfg := exampleConfig()
		cfg.Social.ClientSecret = ""
		router, _, _, publisher := setup(t, ctrl, cfg)

		// given
		publisher.EXPECT().Publish(gomock.Any(), socialevents.TopicName, gomock.Any()).Return(nil)

		// when
		response := doCallback(router, "code=abc123&state=state-123", "state-123", "verifier-1")

		// then
		assertRedirectedToDashboard(t, response, url.Values{"error": {errorCodeServerConfig}})
	})

	t.Run("Token exchange rejected by provider", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, _, publisher := setup(t, ctrl, exampleConfig())

		// given
		client.EXPECT().GetAccessToken(gomock.Any(), gomock.Any()).Return(socialclient.GetTokenResponse{},
			&socialclient.UpstreamError{HTTPStatus: 400, Detail: "Authorization code is expired."})
		publisher.EXPECT().Publish(gomock.Any(), socialevents.TopicName, socialevents.LoginFailed{
			ProviderName: "tiktok",
			ErrorCode:    errorCodeTokenExchangeFailed,
			Details:      "Authorization code is expired.",
		}).Return(nil)

		// when
		response := doCallback(router, "code=abc123&state=state-123", "state-123", "verifier-1")

		// then
		assertRedirectedToDashboard(t, response, url.Values{
			"error":   {errorCodeTokenExchangeFailed},
			"details": {"Authorization code is expired."},
		})
		assert.Nil(t, findCookie(response, cookieAccessToken))
	})

	t.Run("Token exchange network failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, _, publisher := setup(t, ctrl, exampleConfig())

		// given
		client.EXPECT().GetAccessToken(gomock.Any(), gomock.Any()).Return(socialclient.GetTokenResponse{},
			fmt.Errorf("connection refused"))
		publisher.EXPECT().Publish(gomock.Any(), socialevents.TopicName, gomock.Any()).Return(nil)

		// when
		response := doCallback(router, "code=abc123&state=state-123", "state-123", "verifier-1")

		// then
		assertRedirectedToDashboard(t, response, url.Values{
			"error":   {errorCodeTokenExchangeFailed},
			"details": {"connection refused"},
		})
	})

	t.Run("Panic is turned into redirect", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, _, _ := setup(t, ctrl, exampleConfig())

		// given
		client.EXPECT().GetAccessToken(gomock.Any(), gomock.Any()).DoAndReturn(
			func(c context.Context, req socialclient.GetTokenRequest) (socialclient.GetTokenResponse, error) {
				panic("unexpected")
			})

		// when
		response := doCallback(router, "code=abc123&state=state-123", "state-123", "verifier-1")

		// then
		assert.Equal(t, http.StatusSeeOther, response.Code)
		assertRedirectedToDashboard(t, response, url.Values{"error": {errorCodeInternal}})
		assertCleared(t, findCookie(response, cookieAuthState))
	})
}

func TestUserInfo(t *testing.T) {

	t.Run("No access token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, _, _, _ := setup(t, ctrl, exampleConfig())

		// when
		response := doUserInfo(router, "")

		// then
		assert.Equal(t, http.StatusUnauthorized, response.Code)
		assert.JSONEq(t, `{"error":"Not authenticated","isAuthenticated":false}`, response.Body.String())
	})

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, _, _ := setup(t, ctrl, exampleConfig())

		// given
		client.EXPECT().GetUserInfo(gomock.Any(), "tok1", userInfoFields).
			Return(json.RawMessage(`{"display_name":"Ola","follower_count":100}`), nil)

		// when
		response := doUserInfo(router, "tok1")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.JSONEq(t, `{"userData":{"display_name":"Ola","follower_count":100},"isAuthenticated":true}`, response.Body.String())
		assert.Empty(t, response.Result().Cookies())
	})

	t.Run("Success without data", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, _, _ := setup(t, ctrl, exampleConfig())

		// given
		client.EXPECT().GetUserInfo(gomock.Any(), "tok1", gomock.Any()).Return(nil, nil)

		// when
		response := doUserInfo(router, "tok1")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.JSONEq(t, `{"isAuthenticated":true}`, response.Body.String())
	})

	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(fmt.Sprintf("Upstream %d clears tokens", status), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// setup
			router, client, _, _ := setup(t, ctrl, exampleConfig())

			// given
			client.EXPECT().GetUserInfo(gomock.Any(), "tok1", gomock.Any()).
				Return(nil, &socialclient.UpstreamError{HTTPStatus: status, Detail: "access_token_invalid"})

			// when
			response := doUserInfo(router, "tok1")

			// then
			assert.Equal(t, http.StatusUnauthorized, response.Code)
			assert.JSONEq(t, `{"error":"Access token invalid or expired","isAuthenticated":false}`, response.Body.String())
			assertCleared(t, findCookie(response, cookieAccessToken))
			assertCleared(t, findCookie(response, cookieRefreshToken))
			assertCleared(t, findCookie(response, cookieOpenID))
		})
	}

	t.Run("Upstream other failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, _, _ := setup(t, ctrl, exampleConfig())

		// given
		client.EXPECT().GetUserInfo(gomock.Any(), "tok1", gomock.Any()).
			Return(nil, &socialclient.UpstreamError{HTTPStatus: http.StatusTooManyRequests, Detail: "rate_limit_exceeded"})

		// when
		response := doUserInfo(router, "tok1")

		// then
		assert.Equal(t, http.StatusTooManyRequests, response.Code)
		assert.JSONEq(t, `{"error":"Failed to fetch user info","details":"rate_limit_exceeded","isAuthenticated":true}`, response.Body.String())
		assert.Empty(t, response.Result().Cookies())
	})

	t.Run("Local failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, _, _ := setup(t, ctrl, exampleConfig())

		// given
		client.EXPECT().GetUserInfo(gomock.Any(), "tok1", gomock.Any()).Return(nil, errors.New("dns failure"))

		// when
		response := doUserInfo(router, "tok1")

		// then
		assert.Equal(t, http.StatusInternalServerError, response.Code)
		assert.JSONEq(t, `{"error":"Internal server error","isAuthenticated":true}`, response.Body.String())
	})

	t.Run("Panic is turned into internal error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, _, _ := setup(t, ctrl, exampleConfig())

		// given
		client.EXPECT().GetUserInfo(gomock.Any(), "tok1", gomock.Any()).DoAndReturn(
			func(c context.Context, accessToken string, fields []string) (json.RawMessage, error) {
				panic("unexpected")
			})

		// when
		response := doUserInfo(router, "tok1")

		// then
		assert.Equal(t, http.StatusInternalServerError, response.Code)
		assert.JSONEq(t, `{"error":"Internal server error","isAuthenticated":true}`, response.Body.String())
		assert.Empty(t, response.Result().Cookies())
	})
}

func TestRefresh(t *testing.T) {

	t.Run("No refresh token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, _, _, _ := setup(t, ctrl, exampleConfig())

		// when
		response := doRefresh(router, "")

		// then
		assert.Equal(t, http.StatusUnauthorized, response.Code)
		assert.JSONEq(t, `{"error":"No refresh token","isAuthenticated":false}`, response.Body.String())
	})

	t.Run("Success rewrites token cookies", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, _, _ := setup(t, ctrl, exampleConfig())

		// given
		client.EXPECT().RefreshAccessToken(gomock.Any(), socialclient.RefreshTokenRequest{RefreshToken: "ref1"}).
			Return(socialclient.GetTokenResponse{AccessToken: "tok2", RefreshToken: "ref2", ExpiresIn: 1800, OpenID: "u1"}, nil)

		// when
		response := doRefresh(router, "ref1")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.JSONEq(t, `{"isAuthenticated":true}`, response.Body.String())
		assert.Equal(t, "tok2", findCookie(response, cookieAccessToken).Value)
		assert.Equal(t, 1800, findCookie(response, cookieAccessToken).MaxAge)
		assert.Equal(t, "ref2", findCookie(response, cookieRefreshToken).Value)
	})

	t.Run("Rejected refresh token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, _, _ := setup(t, ctrl, exampleConfig())

		// given
		client.EXPECT().RefreshAccessToken(gomock.Any(), gomock.Any()).
			Return(socialclient.GetTokenResponse{}, &socialclient.UpstreamError{HTTPStatus: 400, Detail: "invalid_grant"})

		// when
		response := doRefresh(router, "ref1")

		// then
		assert.Equal(t, http.StatusUnauthorized, response.Code)
		assert.JSONEq(t, `{"error":"Access token invalid or expired","isAuthenticated":false}`, response.Body.String())
		assertCleared(t, findCookie(response, cookieAccessToken))
		assertCleared(t, findCookie(response, cookieRefreshToken))
		assertCleared(t, findCookie(response, cookieOpenID))
	})

	t.Run("Provider unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, _, _ := setup(t, ctrl, exampleConfig())

		// given
		client.EXPECT().RefreshAccessToken(gomock.Any(), gomock.Any()).
			Return(socialclient.GetTokenResponse{}, &socialclient.UpstreamError{HTTPStatus: 503, Detail: "maintenance"})

		// when
		response := doRefresh(router, "ref1")

		// then
		assert.Equal(t, http.StatusBadGateway, response.Code)
		assert.JSONEq(t, `{"error":"Failed to refresh access token","details":"maintenance","isAuthenticated":true}`, response.Body.String())
		assert.Empty(t, response.Result().Cookies())
	})

	t.Run("Missing configuration", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		cfg := exampleConfig()
		cfg.Social.ClientSecret = ""
		router, _, _, _ := setup(t, ctrl, cfg)

		// when
		response := doRefresh(router, "ref1")

		// then
		assert.Equal(t, http.StatusInternalServerError, response.Code)
		assert.JSONEq(t, `{"error":"Internal server error","isAuthenticated":true}`, response.Body.String())
	})
}

func TestLogout(t *testing.T) {

	t.Run("Revokes and clears", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, _, publisher := setup(t, ctrl, exampleConfig())

		// given
		client.EXPECT().RevokeAccessToken(gomock.Any(), socialclient.RevokeTokenRequest{AccessToken: "tok1"}).Return(nil)
		publisher.EXPECT().Publish(gomock.Any(), socialevents.TopicName, socialevents.LoggedOut{
			ProviderName: "tiktok",
			OpenID:       "u1",
			Revoked:      true,
		}).Return(nil)

		// when
		request, _ := http.NewRequest(http.MethodPost, "/api/social/auth/logout", nil)
		request.AddCookie(&http.Cookie{Name: cookieAccessToken, Value: "tok1"})
		request.AddCookie(&http.Cookie{Name: cookieOpenID, Value: "u1"})
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusSeeOther, response.Code)
		assert.Equal(t, "/dashboard", response.Header().Get("Location"))
		assertCleared(t, findCookie(response, cookieAccessToken))
		assertCleared(t, findCookie(response, cookieRefreshToken))
		assertCleared(t, findCookie(response, cookieOpenID))
	})

	t.Run("Revoke failure still clears", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, client, _, publisher := setup(t, ctrl, exampleConfig())

		// given
		client.EXPECT().RevokeAccessToken(gomock.Any(), gomock.Any()).Return(fmt.Errorf("timeout"))
		publisher.EXPECT().Publish(gomock.Any(), socialevents.TopicName, socialevents.LoggedOut{
			ProviderName: "tiktok",
			Revoked:      false,
		}).Return(nil)

		// when
		request, _ := http.NewRequest(http.MethodPost, "/api/social/auth/logout", nil)
		request.AddCookie(&http.Cookie{Name: cookieAccessToken, Value: "tok1"})
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusSeeOther, response.Code)
		assertCleared(t, findCookie(response, cookieAccessToken))
	})
}

func setup(t *testing.T, ctrl *gomock.Controller, cfg myconfig.Config) (*mux.Router, *socialclient.MockSocialClient, *myuuid.MockUUIDer, *mypublisher.MockPublisher) {
	client := socialclient.NewMockSocialClient(ctrl)
	uuider := myuuid.NewMockUUIDer(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)

	generator := codeverifier.NewGeneratorFromReader(bytes.NewReader(bytes.Repeat([]byte{0xab}, 32)))
	router := newRouter(t, cfg, client, generator, uuider, publisher)

	return router, client, uuider, publisher
}

func newRouter(t *testing.T, cfg myconfig.Config, client socialclient.SocialClient, generator codeverifier.Generator, uuider myuuid.UUIDer, publisher *mypublisher.MockPublisher) *mux.Router {
	publisher.EXPECT().CreateTopic(gomock.Any(), socialevents.TopicName).Return(nil)

	router := mux.NewRouter()
	err := NewService(cfg, client, generator, uuider, publisher).RegisterEndpoints(context.TODO(), router)
	require.NoError(t, err)

	return router
}

func exampleConfig() myconfig.Config {
	return myconfig.Config{
		Environment:   "development",
		DashboardPath: "/dashboard",
		Social: myconfig.SocialConfig{
			ClientKey:    "key1",
			ClientSecret: "secret1",
			RedirectURI:  "https://agency.example/api/social/auth/callback",
			AuthHostname: "https://www.tiktok.com",
			APIHostname:  "https://open.tiktokapis.com",
		},
	}
}

func doCallback(router *mux.Router, query string, storedState string, storedVerifier string) *httptest.ResponseRecorder {
	request, _ := http.NewRequest(http.MethodGet, "/api/social/auth/callback?"+query, nil)
	if storedState != "" {
		request.AddCookie(&http.Cookie{Name: cookieAuthState, Value: storedState})
	}
	if storedVerifier != "" {
		request.AddCookie(&http.Cookie{Name: cookieCodeVerifier, Value: storedVerifier})
	}
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func doUserInfo(router *mux.Router, accessToken string) *httptest.ResponseRecorder {
	request, _ := http.NewRequest(http.MethodGet, "/api/social/user", nil)
	if accessToken != "" {
		request.AddCookie(&http.Cookie{Name: cookieAccessToken, Value: accessToken})
	}
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func doRefresh(router *mux.Router, refreshToken string) *httptest.ResponseRecorder {
	request, _ := http.NewRequest(http.MethodPost, "/api/social/auth/refresh", nil)
	if refreshToken != "" {
		request.AddCookie(&http.Cookie{Name: cookieRefreshToken, Value: refreshToken})
	}
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func findCookie(response *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range response.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func assertFlowCookie(t *testing.T, cookie *http.Cookie) {
	assert.Equal(t, 300, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.False(t, cookie.Secure)
}

func assertCleared(t *testing.T, cookie *http.Cookie) {
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}

func assertRedirectedToDashboard(t *testing.T, response *httptest.ResponseRecorder, expectedQuery url.Values) {
	location, err := url.Parse(response.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", location.Path)
	assert.Equal(t, expectedQuery, location.Query())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}
