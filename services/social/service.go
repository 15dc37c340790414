package social

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/MarcGrol/agencyportal/lib/codeverifier"
	"github.com/MarcGrol/agencyportal/lib/myconfig"
	"github.com/MarcGrol/agencyportal/lib/myerrors"
	"github.com/MarcGrol/agencyportal/lib/myevents"
	"github.com/MarcGrol/agencyportal/lib/mylog"
	"github.com/MarcGrol/agencyportal/lib/mypublisher"
	"github.com/MarcGrol/agencyportal/lib/myuuid"
	"github.com/MarcGrol/agencyportal/services/social/socialclient"
	"github.com/MarcGrol/agencyportal/services/social/socialevents"
)

type service struct {
	config    myconfig.SocialConfig
	client    socialclient.SocialClient
	generator codeverifier.Generator
	uuider    myuuid.UUIDer
	publisher mypublisher.Publisher
	logger    mylog.Logger
}

func newService(config myconfig.SocialConfig, client socialclient.SocialClient, generator codeverifier.Generator, uuider myuuid.UUIDer, pub mypublisher.Publisher) *service {
	return &service{
		config:    config,
		client:    client,
		generator: generator,
		uuider:    uuider,
		publisher: pub,
		logger:    mylog.New("social"),
	}
}

func (s *service) CreateTopics(c context.Context) error {
	err := s.publisher.CreateTopic(c, socialevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %w", socialevents.TopicName, err)
	}

	return nil
}

// startLogin returns the authorization url together with the state and verifier the browser must keep.
func (s *service) startLogin(c context.Context) (string, string, string, error) {
	missing := s.config.MissingForLogin()
	if len(missing) > 0 {
		return "", "", "", myerrors.NewInternalError(fmt.Errorf("configuration error: missing %s", strings.Join(missing, ", ")))
	}

	state := s.uuider.Create()

	verifier, err := s.generator.NewVerifier()
	if err != nil {
		return "", "", "", myerrors.NewInternalError(fmt.Errorf("error generating pkce verifier: %w", err))
	}
	method, challenge := verifier.CreateChallenge()

	authURL, err := s.client.ComposeAuthURL(c, socialclient.ComposeAuthURLRequest{
		Scopes:              requestedScopes,
		State:               state,
		CodeChallenge:       challenge,
		CodeChallengeMethod: method,
	})
	if err != nil {
		return "", "", "", myerrors.NewInternalError(fmt.Errorf("error composing auth url: %w", err))
	}

	s.logger.Log(c, state, mylog.SeverityInfo, "Started social login %s", state)

	return authURL, state, verifier.GetValue(), nil
}

// completeLogin walks the callback gates in order; every failure is a *callbackError.
func (s *service) completeLogin(c context.Context, req callbackRequest) (socialclient.GetTokenResponse, error) {
	tokens, err := s.exchangeCode(c, req)
	if err != nil {
		s.publishLoginFailed(c, err)
		return socialclient.GetTokenResponse{}, err
	}

	s.logger.Log(c, tokens.OpenID, mylog.SeverityInfo, "Completed social login for %s", tokens.OpenID)

	s.publish(c, socialevents.LoginCompleted{
		ProviderName: socialclient.ProviderName,
		OpenID:       tokens.OpenID,
		Scope:        tokens.Scope,
	})

	return tokens, nil
}

func (s *service) exchangeCode(c context.Context, req callbackRequest) (socialclient.GetTokenResponse, error) {
	if req.ProviderError != "" {
		return socialclient.GetTokenResponse{}, newCallbackError(req.ProviderError, req.ProviderErrorDescription)
	}

	if req.State == "" || req.StoredState == "" ||
		subtle.ConstantTimeCompare([]byte(req.State), []byte(req.StoredState)) != 1 {
		return socialclient.GetTokenResponse{}, newCallbackError(errorCodeStateValidationFailed, "")
	}

	if req.Code == "" {
		return socialclient.GetTokenResponse{}, newCallbackError(errorCodeAuthCodeMissing, "")
	}

	if req.StoredVerifier == "" {
		return socialclient.GetTokenResponse{}, newCallbackError(errorCodeCodeVerifierMissing, "")
	}

	missing := s.config.MissingForTokenExchange()
	if len(missing) > 0 {
		s.logger.Log(c, "", mylog.SeverityError, "Cannot exchange code: missing %s", strings.Join(missing, ", "))
		return socialclient.GetTokenResponse{}, newCallbackError(errorCodeServerConfig, "")
	}

	tokens, err := s.client.GetAccessToken(c, socialclient.GetTokenRequest{
		Code:         req.Code,
		CodeVerifier: req.StoredVerifier,
	})
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityWarn, "Token exchange failed: %s", err)

		details := err.Error()
		if upstreamErr, ok := socialclient.AsUpstreamError(err); ok {
			details = upstreamErr.Detail
		}
		return socialclient.GetTokenResponse{}, newCallbackError(errorCodeTokenExchangeFailed, details)
	}

	return tokens, nil
}

func (s *service) fetchUserInfo(c context.Context, accessToken string) UserInfoResult {
	if accessToken == "" {
		return UserInfoResult{
			HTTPStatus:      http.StatusUnauthorized,
			Error:           messageNotAuthenticated,
			IsAuthenticated: false,
		}
	}

	userData, err := s.client.GetUserInfo(c, accessToken, userInfoFields)
	if err != nil {
		upstreamErr, ok := socialclient.AsUpstreamError(err)
		if !ok {
			s.logger.Log(c, "", mylog.SeverityError, "Error fetching user info: %s", err)
			return UserInfoResult{
				HTTPStatus:      http.StatusInternalServerError,
				Error:           messageInternalError,
				IsAuthenticated: true,
			}
		}

		if upstreamErr.IsAuthExpired() {
			s.logger.Log(c, "", mylog.SeverityInfo, "Access token rejected with status %d", upstreamErr.HTTPStatus)
			return UserInfoResult{
				HTTPStatus:      http.StatusUnauthorized,
				TokensInvalid:   true,
				Error:           messageTokenExpired,
				IsAuthenticated: false,
			}
		}

		s.logger.Log(c, "", mylog.SeverityWarn, "Error fetching user info: %s", upstreamErr)
		return UserInfoResult{
			HTTPStatus:      upstreamErr.HTTPStatus,
			Error:           messageUserInfoFailed,
			Details:         upstreamErr.Detail,
			IsAuthenticated: true,
		}
	}

	return UserInfoResult{
		HTTPStatus:      http.StatusOK,
		UserData:        userData,
		IsAuthenticated: true,
	}
}

func (s *service) refreshTokens(c context.Context, refreshToken string) (socialclient.GetTokenResponse, error) {
	missing := s.config.MissingForTokenExchange()
	if len(missing) > 0 {
		return socialclient.GetTokenResponse{}, myerrors.NewInternalError(fmt.Errorf("configuration error: missing %s", strings.Join(missing, ", ")))
	}

	tokens, err := s.client.RefreshAccessToken(c, socialclient.RefreshTokenRequest{
		RefreshToken: refreshToken,
	})
	if err != nil {
		upstreamErr, ok := socialclient.AsUpstreamError(err)
		if ok && upstreamErr.IsClientError() {
			return socialclient.GetTokenResponse{}, myerrors.NewNotAuthorizedError(err)
		}
		return socialclient.GetTokenResponse{}, myerrors.NewBadGatewayError(err)
	}

	s.logger.Log(c, tokens.OpenID, mylog.SeverityInfo, "Refreshed access token of %s", tokens.OpenID)

	return tokens, nil
}

// logout revokes best-effort: the caller clears the cookies regardless.
func (s *service) logout(c context.Context, accessToken string, openID string) {
	revoked := false
	if accessToken != "" && len(s.config.MissingForTokenExchange()) == 0 {
		err := s.client.RevokeAccessToken(c, socialclient.RevokeTokenRequest{
			AccessToken: accessToken,
		})
		if err != nil {
			s.logger.Log(c, openID, mylog.SeverityWarn, "Error revoking access token of %s: %s", openID, err)
		} else {
			revoked = true
		}
	}

	s.publish(c, socialevents.LoggedOut{
		ProviderName: socialclient.ProviderName,
		OpenID:       openID,
		Revoked:      revoked,
	})
}

func (s *service) publishLoginFailed(c context.Context, err error) {
	event := socialevents.LoginFailed{
		ProviderName: socialclient.ProviderName,
		ErrorCode:    errorCodeInternal,
	}
	if cbErr, ok := err.(*callbackError); ok {
		event.ErrorCode = cbErr.code
		event.Details = cbErr.details
	}

	s.publish(c, event)
}

// publish never fails the flow it reports on
func (s *service) publish(c context.Context, event myevents.Event) {
	err := s.publisher.Publish(c, socialevents.TopicName, event)
	if err != nil {
		s.logger.Log(c, event.GetAggregateName(), mylog.SeverityError, "Error publishing event %s: %s", event.GetEventTypeName(), err)
	}
}
