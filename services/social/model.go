package social

import (
	"encoding/json"
)

const (
	errorCodeStateValidationFailed = "state_validation_failed"
	errorCodeAuthCodeMissing       = "auth_code_missing"
	errorCodeCodeVerifierMissing   = "code_verifier_missing"
	errorCodeServerConfig          = "server_config_error_token_exchange"
	errorCodeTokenExchangeFailed   = "token_exchange_failed"
	errorCodeInternal              = "internal_server_error_token_exchange"
)

const (
	messageNotAuthenticated   = "Not authenticated"
	messageTokenExpired       = "Access token invalid or expired"
	messageUserInfoFailed     = "Failed to fetch user info"
	messageRefreshFailed      = "Failed to refresh access token"
	messageInternalError      = "Internal server error"
	messageRefreshTokenAbsent = "No refresh token"
)

var requestedScopes = []string{
	"user.info.basic",
	"user.info.profile",
	"user.info.stats",
	"video.list",
}

var userInfoFields = []string{
	"open_id",
	"union_id",
	"avatar_url",
	"display_name",
	"bio_description",
	"profile_deep_link",
	"is_verified",
	"follower_count",
	"following_count",
	"likes_count",
	"video_count",
}

// UserInfoResult is the normalized answer of the analytics proxy.
type UserInfoResult struct {
	HTTPStatus      int             `json:"-"`
	TokensInvalid   bool            `json:"-"`
	UserData        json.RawMessage `json:"userData,omitempty"`
	Error           string          `json:"error,omitempty"`
	Details         string          `json:"details,omitempty"`
	IsAuthenticated bool            `json:"isAuthenticated"`
}

type authStatusResponse struct {
	Error           string `json:"error,omitempty"`
	Details         string `json:"details,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

type callbackRequest struct {
	ProviderError            string
	ProviderErrorDescription string
	State                    string
	Code                     string
	StoredState              string
	StoredVerifier           string
}

// callbackError ends the callback with a redirect to the dashboard carrying code and details.
type callbackError struct {
	code    string
	details string
}

func newCallbackError(code string, details string) *callbackError {
	return &callbackError{
		code:    code,
		details: details,
	}
}

func (e *callbackError) Error() string {
	if e.details == "" {
		return e.code
	}
	return e.code + ": " + e.details
}
