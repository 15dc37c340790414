package socialclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/MarcGrol/agencyportal/lib/myconfig"
	"github.com/MarcGrol/agencyportal/lib/myhttpclient"
)

const (
	ProviderName = "tiktok"

	authorizePath = "/v2/auth/authorize/"
	tokenPath     = "/v2/oauth/token/"
	revokePath    = "/v2/oauth/revoke/"
	userInfoPath  = "/v2/user/info/"

	formContentType = "application/x-www-form-urlencoded"
)

type ComposeAuthURLRequest struct {
	Scopes              []string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
}

type GetTokenRequest struct {
	Code         string
	CodeVerifier string
}

type RefreshTokenRequest struct {
	RefreshToken string
}

type RevokeTokenRequest struct {
	AccessToken string
}

type GetTokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
	OpenID           string `json:"open_id"`
	Scope            string `json:"scope"`
	TokenType        string `json:"token_type"`
}

type userInfoResponse struct {
	Data json.RawMessage `json:"data"`
}

//go:generate mockgen -source=social_client.go -package socialclient -destination social_client_mock.go SocialClient
type SocialClient interface {
	ComposeAuthURL(c context.Context, req ComposeAuthURLRequest) (string, error)
	GetAccessToken(c context.Context, req GetTokenRequest) (GetTokenResponse, error)
	RefreshAccessToken(c context.Context, req RefreshTokenRequest) (GetTokenResponse, error)
	RevokeAccessToken(c context.Context, req RevokeTokenRequest) error
	GetUserInfo(c context.Context, accessToken string, fields []string) (json.RawMessage, error)
}

type socialClient struct {
	config     myconfig.SocialConfig
	endpoint   oauth2.Endpoint
	httpSender myhttpclient.HTTPSender
}

func New(config myconfig.SocialConfig, httpSender myhttpclient.HTTPSender) *socialClient {
	return &socialClient{
		config: config,
		endpoint: oauth2.Endpoint{
			AuthURL:   strings.TrimSuffix(config.AuthHostname, "/") + authorizePath,
			TokenURL:  strings.TrimSuffix(config.APIHostname, "/") + tokenPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		httpSender: httpSender,
	}
}

func (sc *socialClient) apiURL(path string) string {
	return strings.TrimSuffix(sc.config.APIHostname, "/") + path
}

func (sc *socialClient) ComposeAuthURL(c context.Context, req ComposeAuthURLRequest) (string, error) {
	u, err := url.Parse(sc.endpoint.AuthURL)
	if err != nil {
		return "", fmt.Errorf("error parsing authorization url %s: %w", sc.endpoint.AuthURL, err)
	}

	/* Example:
	https://www.tiktok.com/v2/auth/authorize/
		?client_key=awxyz
		&code_challenge=9b5c0c1a8c3b...
		&code_challenge_method=S256
		&redirect_uri=https%3A%2F%2Fagency.example%2Fapi%2Fsocial%2Fauth%2Fcallback
		&response_type=code
		&scope=user.info.basic+user.info.profile
		&state=892f0b86-daca-4272-89e7-1a0d49a3ad71
	*/
	u.RawQuery = url.Values{
		"client_key":            {sc.config.ClientKey},
		"scope":                 {strings.Join(req.Scopes, " ")},
		"response_type":         {"code"},
		"redirect_uri":          {sc.config.RedirectURI},
		"state":                 {req.State},
		"code_challenge":        {req.CodeChallenge},
		"code_challenge_method": {req.CodeChallengeMethod},
	}.Encode()

	return u.String(), nil
}

func (sc *socialClient) GetAccessToken(c context.Context, req GetTokenRequest) (GetTokenResponse, error) {
	return sc.postForToken(c, url.Values{
		"client_key":    {sc.config.ClientKey},
		"client_secret": {sc.config.ClientSecret},
		"code":          {req.Code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {sc.config.RedirectURI},
		"code_verifier": {req.CodeVerifier},
	})
}

func (sc *socialClient) RefreshAccessToken(c context.Context, req RefreshTokenRequest) (GetTokenResponse, error) {
	return sc.postForToken(c, url.Values{
		"client_key":    {sc.config.ClientKey},
		"client_secret": {sc.config.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {req.RefreshToken},
	})
}

func (sc *socialClient) postForToken(c context.Context, form url.Values) (GetTokenResponse, error) {
	httpRespCode, respBody, err := sc.httpSender.Send(c, http.MethodPost, sc.endpoint.TokenURL,
		map[string]string{"Content-Type": formContentType}, []byte(form.Encode()))
	if err != nil {
		return GetTokenResponse{}, fmt.Errorf("error calling token endpoint: %w", err)
	}

	if !isSuccess(httpRespCode) {
		return GetTokenResponse{}, newUpstreamError(httpRespCode, respBody)
	}

	resp := GetTokenResponse{}
	err = json.Unmarshal(respBody, &resp)
	if err != nil {
		return GetTokenResponse{}, newUpstreamError(httpRespCode, respBody)
	}

	// the provider may answer 200 with an error body
	if resp.AccessToken == "" {
		return GetTokenResponse{}, newUpstreamError(httpRespCode, respBody)
	}

	return resp, nil
}

func (sc *socialClient) RevokeAccessToken(c context.Context, req RevokeTokenRequest) error {
	form := url.Values{
		"client_key":    {sc.config.ClientKey},
		"client_secret": {sc.config.ClientSecret},
		"token":         {req.AccessToken},
	}

	httpRespCode, respBody, err := sc.httpSender.Send(c, http.MethodPost, sc.apiURL(revokePath),
		map[string]string{"Content-Type": formContentType}, []byte(form.Encode()))
	if err != nil {
		return fmt.Errorf("error calling revoke endpoint: %w", err)
	}

	if !isSuccess(httpRespCode) {
		return newUpstreamError(httpRespCode, respBody)
	}

	return nil
}

// GetUserInfo returns the raw "data" object, nil when the provider returned none.
func (sc *socialClient) GetUserInfo(c context.Context, accessToken string, fields []string) (json.RawMessage, error) {
	userInfoURL := fmt.Sprintf("%s?%s", sc.apiURL(userInfoPath), url.Values{"fields": {strings.Join(fields, ",")}}.Encode())

	httpRespCode, respBody, err := sc.httpSender.Send(c, http.MethodGet, userInfoURL,
		map[string]string{"Authorization": "Bearer " + accessToken}, nil)
	if err != nil {
		return nil, fmt.Errorf("error calling user-info endpoint: %w", err)
	}

	if !isSuccess(httpRespCode) {
		return nil, newUpstreamError(httpRespCode, respBody)
	}

	resp := userInfoResponse{}
	err = json.Unmarshal(respBody, &resp)
	if err != nil {
		return nil, fmt.Errorf("error parsing user-info response: %w", err)
	}

	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil, nil
	}

	return resp.Data, nil
}

func isSuccess(httpStatus int) bool {
	return httpStatus >= 200 && httpStatus < 300
}
