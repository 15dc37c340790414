package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/MarcGrol/agencyportal/services/social"
)

type pageState string

const (
	stateLoading         pageState = "loading"
	stateUnauthenticated pageState = "unauthenticated"
	stateAuthenticated   pageState = "authenticated"
	stateDataProblem     pageState = "dataProblem"
	stateUpstreamFailure pageState = "upstreamFailure"
)

const (
	loginURL  = "/api/social/auth/login"
	logoutURL = "/api/social/auth/logout"
	userURL   = "/api/social/user"
)

var errorCodeMessages = map[string]string{
	"state_validation_failed":              "Your login attempt expired or could not be verified. Please try again.",
	"auth_code_missing":                    "The provider did not return an authorization code.",
	"code_verifier_missing":                "Your login attempt expired. Please start again.",
	"server_config_error_token_exchange":   "The social integration is not configured correctly.",
	"token_exchange_failed":                "We could not complete the login with the provider.",
	"internal_server_error_token_exchange": "Something went wrong while logging you in.",
	"access_denied":                        "You cancelled the login at the provider.",
}

type userProfile struct {
	OpenID          string `json:"open_id"`
	DisplayName     string `json:"display_name"`
	AvatarURL       string `json:"avatar_url"`
	BioDescription  string `json:"bio_description"`
	ProfileDeepLink string `json:"profile_deep_link"`
	IsVerified      bool   `json:"is_verified"`
	FollowerCount   int64  `json:"follower_count"`
	FollowingCount  int64  `json:"following_count"`
	LikesCount      int64  `json:"likes_count"`
	VideoCount      int64  `json:"video_count"`
}

type pageModel struct {
	State        pageState
	ErrorCode    string
	ErrorMessage string
	ErrorDetails string
	Problem      string
	ProblemInfo  string
	User         *userProfile
	LoginURL     string
	LogoutURL    string
	UserURL      string
}

func newPageModel(errorCode string, errorDetails string) pageModel {
	model := pageModel{
		ErrorCode:    errorCode,
		ErrorDetails: errorDetails,
		LoginURL:     loginURL,
		LogoutURL:    logoutURL,
		UserURL:      userURL,
	}
	if errorCode != "" {
		model.ErrorMessage = errorCodeMessages[errorCode]
		if model.ErrorMessage == "" {
			model.ErrorMessage = "Login failed."
		}
	}
	return model
}

// classify maps a proxy result on one of the page states.
func (m pageModel) classify(result social.UserInfoResult) pageModel {
	switch {
	case !result.IsAuthenticated:
		m.State = stateUnauthenticated
	case result.HTTPStatus != http.StatusOK:
		m.State = stateUpstreamFailure
		m.Problem = result.Error
		m.ProblemInfo = result.Details
	default:
		profile, ok := parseProfile(result.UserData)
		if !ok {
			m.State = stateDataProblem
			return m
		}
		m.State = stateAuthenticated
		m.User = profile
	}
	return m
}

func parseProfile(data json.RawMessage) (*userProfile, bool) {
	if len(data) == 0 {
		return nil, false
	}

	profile := userProfile{}
	err := json.Unmarshal(data, &profile)
	if err != nil {
		return nil, false
	}

	if profile.OpenID == "" && profile.DisplayName == "" {
		return nil, false
	}

	return &profile, true
}
