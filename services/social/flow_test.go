package social

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcGrol/agencyportal/lib/codeverifier"
	"github.com/MarcGrol/agencyportal/lib/myevents"
	"github.com/MarcGrol/agencyportal/lib/myhttpclient"
	"github.com/MarcGrol/agencyportal/lib/mypublisher"
	"github.com/MarcGrol/agencyportal/lib/mypubsub"
	"github.com/MarcGrol/agencyportal/lib/myqueue"
	"github.com/MarcGrol/agencyportal/lib/mystore"
	"github.com/MarcGrol/agencyportal/lib/mytime"
	"github.com/MarcGrol/agencyportal/lib/myuuid"
	"github.com/MarcGrol/agencyportal/services/social/socialclient"
)

// TestLoginFlow runs login, callback and user-info against a fake provider, with real cookies and clients.
func TestLoginFlow(t *testing.T) {
	c := context.TODO()

	// setup
	provider := httptest.NewServer(fakeProvider(t))
	defer provider.Close()

	cfg := exampleConfig()
	cfg.Social.AuthHostname = provider.URL
	cfg.Social.APIHostname = provider.URL

	outbox, _, err := mystore.NewInMemoryStore[myevents.EventEnvelope](c)
	require.NoError(t, err)
	pubsub, _, err := mypubsub.New(c, "")
	require.NoError(t, err)

	router := mux.NewRouter()
	queue, _, err := myqueue.New(c, "", "", "", router)
	require.NoError(t, err)
	publisher := mypublisher.New(outbox, pubsub, queue, mytime.RealNower{})
	publisher.RegisterEndpoints(c, router)

	client := socialclient.New(cfg.Social, myhttpclient.New())
	err = NewService(cfg, client, codeverifier.NewGenerator(), myuuid.RealUUIDer{}, publisher).RegisterEndpoints(c, router)
	require.NoError(t, err)

	// step 1: login
	request, _ := http.NewRequest(http.MethodGet, "/api/social/auth/login", nil)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)

	require.Equal(t, http.StatusSeeOther, response.Code)
	authURL, err := url.Parse(response.Header().Get("Location"))
	require.NoError(t, err)
	stateCookie := findCookie(response, cookieAuthState)
	verifierCookie := findCookie(response, cookieCodeVerifier)
	require.NotNil(t, stateCookie)
	require.NotNil(t, verifierCookie)

	assert.Equal(t, "/v2/auth/authorize/", authURL.Path)
	assert.Equal(t, "S256", authURL.Query().Get("code_challenge_method"))
	assert.Equal(t, stateCookie.Value, authURL.Query().Get("state"))
	assert.Equal(t, "key1", authURL.Query().Get("client_key"))
	assert.Len(t, verifierCookie.Value, 64)
	assert.NotContains(t, authURL.String(), verifierCookie.Value)
	codeChallenge := authURL.Query().Get("code_challenge")
	_, challenge := codeverifier.NewVerifierFrom(verifierCookie.Value).CreateChallenge()
	assert.Equal(t, challenge, codeChallenge)

	// step 2: provider redirects back
	callbackURL := fmt.Sprintf("/api/social/auth/callback?code=abc123&state=%s", url.QueryEscape(stateCookie.Value))
	request, _ = http.NewRequest(http.MethodGet, callbackURL, nil)
	request.AddCookie(stateCookie)
	request.AddCookie(verifierCookie)
	response = httptest.NewRecorder()
	router.ServeHTTP(response, request)

	assert.Equal(t, http.StatusSeeOther, response.Code)
	assert.Equal(t, "/dashboard", response.Header().Get("Location"))
	accessToken := findCookie(response, cookieAccessToken)
	require.NotNil(t, accessToken)
	assert.Equal(t, "tok1", accessToken.Value)
	assert.Equal(t, 3600, accessToken.MaxAge)
	assert.Equal(t, "u1", findCookie(response, cookieOpenID).Value)

	// login event went through the outbox
	envelopes, err := outbox.List(c)
	require.NoError(t, err)
	require.Len(t, envelopes, 1)
	assert.Equal(t, "social.login.completed", envelopes[0].EventTypeName)
	assert.True(t, envelopes[0].Published)

	// step 3: dashboard asks for user info
	request, _ = http.NewRequest(http.MethodGet, "/api/social/user", nil)
	request.AddCookie(&http.Cookie{Name: cookieAccessToken, Value: "tok1"})
	response = httptest.NewRecorder()
	router.ServeHTTP(response, request)

	assert.Equal(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `{"userData":{"display_name":"Ola","follower_count":100},"isAuthenticated":true}`, response.Body.String())

	// step 4: the same callback replayed with a stale state cookie cannot succeed again
	request, _ = http.NewRequest(http.MethodGet, callbackURL, nil)
	request.AddCookie(stateCookie)
	response = httptest.NewRecorder()
	router.ServeHTTP(response, request)

	assertRedirectedToDashboard(t, response, url.Values{"error": {errorCodeCodeVerifierMissing}})
	assert.Nil(t, findCookie(response, cookieAccessToken))

	// step 5: replayed without any cookie, as a browser would after step 2
	request, _ = http.NewRequest(http.MethodGet, callbackURL, nil)
	response = httptest.NewRecorder()
	router.ServeHTTP(response, request)

	assertRedirectedToDashboard(t, response, url.Values{"error": {errorCodeStateValidationFailed}})
	assert.Nil(t, findCookie(response, cookieAccessToken))
}

func fakeProvider(t *testing.T) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/v2/oauth/token/", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "abc123" || len(r.PostForm.Get("code_verifier")) != 64 {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant","error_description":"Code or verifier mismatch"}`)
			return
		}
		fmt.Fprint(w, `{"access_token":"tok1","open_id":"u1","expires_in":3600}`)
	}).Methods("POST")
	router.HandleFunc("/v2/user/info/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"data":{"display_name":"Ola","follower_count":100}}`)
	}).Methods("GET")
	return router
}
