package social

import (
	"net/http"

	"github.com/MarcGrol/agencyportal/services/social/socialclient"
)

const (
	cookieAuthState    = "auth_state"
	cookieCodeVerifier = "code_verifier"
	cookieAccessToken  = "access_token"
	cookieRefreshToken = "refresh_token"
	cookieOpenID       = "open_id"

	flowCookieMaxAge          = 300
	defaultAccessTokenMaxAge  = 3600
	defaultRefreshTokenMaxAge = 30 * 24 * 60 * 60
)

// cookieJar holds all handshake and token state in the browser: the server keeps none.
type cookieJar struct {
	secure bool
}

func newCookieJar(secure bool) cookieJar {
	return cookieJar{
		secure: secure,
	}
}

func (j cookieJar) set(w http.ResponseWriter, name string, value string, maxAge int, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (j cookieJar) clear(w http.ResponseWriter, name string, httpOnly bool) {
	j.set(w, name, "", -1, httpOnly)
}

func (j cookieJar) setFlowCookies(w http.ResponseWriter, state string, verifier string) {
	j.set(w, cookieAuthState, state, flowCookieMaxAge, true)
	j.set(w, cookieCodeVerifier, verifier, flowCookieMaxAge, true)
}

// consumeFlowCookies reads state and verifier and deletes both, whatever happens next.
func (j cookieJar) consumeFlowCookies(w http.ResponseWriter, r *http.Request) (string, string) {
	state := valueOf(r, cookieAuthState)
	verifier := valueOf(r, cookieCodeVerifier)

	j.clear(w, cookieAuthState, true)
	j.clear(w, cookieCodeVerifier, true)

	return state, verifier
}

func (j cookieJar) setTokenCookies(w http.ResponseWriter, tokens socialclient.GetTokenResponse) {
	accessTokenMaxAge := tokens.ExpiresIn
	if accessTokenMaxAge <= 0 {
		accessTokenMaxAge = defaultAccessTokenMaxAge
	}
	refreshTokenMaxAge := tokens.RefreshExpiresIn
	if refreshTokenMaxAge <= 0 {
		refreshTokenMaxAge = defaultRefreshTokenMaxAge
	}

	j.set(w, cookieAccessToken, tokens.AccessToken, accessTokenMaxAge, true)
	if tokens.RefreshToken != "" {
		j.set(w, cookieRefreshToken, tokens.RefreshToken, refreshTokenMaxAge, true)
	}
	if tokens.OpenID != "" {
		// readable by client script
		j.set(w, cookieOpenID, tokens.OpenID, refreshTokenMaxAge, false)
	}
}

func (j cookieJar) clearTokenCookies(w http.ResponseWriter) {
	j.clear(w, cookieAccessToken, true)
	j.clear(w, cookieRefreshToken, true)
	j.clear(w, cookieOpenID, false)
}

func valueOf(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
