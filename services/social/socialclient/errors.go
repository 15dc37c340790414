package socialclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// UpstreamError means the provider was reached but did not answer with success.
type UpstreamError struct {
	HTTPStatus int
	Detail     string
	Body       string
}

func newUpstreamError(httpStatus int, body []byte) *UpstreamError {
	return &UpstreamError{
		HTTPStatus: httpStatus,
		Detail:     extractErrorDetail(body),
		Body:       string(body),
	}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider responded with status %d: %s", e.HTTPStatus, e.Detail)
}

// IsAuthExpired is true when the provider rejected the credentials themselves
func (e *UpstreamError) IsAuthExpired() bool {
	return e.HTTPStatus == http.StatusUnauthorized || e.HTTPStatus == http.StatusForbidden
}

// IsClientError is true for any 4xx: retrying with the same input is pointless
func (e *UpstreamError) IsClientError() bool {
	return e.HTTPStatus >= 400 && e.HTTPStatus < 500
}

func AsUpstreamError(err error) (*UpstreamError, bool) {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr, true
	}
	return nil, false
}

type errorBody struct {
	Error            json.RawMessage `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

type nestedError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// extractErrorDetail prefers error_description, then error (string or {code,message}), then the raw body.
func extractErrorDetail(body []byte) string {
	parsed := errorBody{}
	err := json.Unmarshal(body, &parsed)
	if err != nil {
		return string(body)
	}

	if parsed.ErrorDescription != "" {
		return parsed.ErrorDescription
	}

	if len(parsed.Error) > 0 {
		asString := ""
		if json.Unmarshal(parsed.Error, &asString) == nil && asString != "" {
			return asString
		}

		nested := nestedError{}
		if json.Unmarshal(parsed.Error, &nested) == nil {
			if nested.Message != "" {
				return nested.Message
			}
			if nested.Code != "" {
				return nested.Code
			}
		}
	}

	return string(body)
}
