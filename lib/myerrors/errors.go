package myerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type httpErrorCoder interface {
	error
	GetHTTPErrorCode() int
}

type httpError struct {
	httpCode int
	err      error
}

func (e httpError) Error() string {
	return fmt.Sprintf("status: %d, err: %s", e.httpCode, e.err.Error())
}

func (e httpError) Unwrap() error {
	return e.err
}

func (e httpError) GetHTTPErrorCode() int {
	return e.httpCode
}

func newError(httpCode int, err error) *httpError {
	return &httpError{
		httpCode: httpCode,
		err:      err,
	}
}

func NewInvalidInputError(err error) error {
	return newError(http.StatusBadRequest, err)
}

func NewInvalidInputErrorf(format string, args ...any) error {
	return NewInvalidInputError(fmt.Errorf(format, args...))
}

func NewNotAuthorizedError(err error) error {
	return newError(http.StatusUnauthorized, err)
}

func NewAuthenticationError(err error) error {
	return newError(http.StatusForbidden, err)
}

func NewNotFoundError(err error) error {
	return newError(http.StatusNotFound, err)
}

func NewUnsupportedMediaTypeError(err error) error {
	return newError(http.StatusUnsupportedMediaType, err)
}

func NewInternalError(err error) error {
	return newError(http.StatusInternalServerError, err)
}

func NewNotImplementedError(err error) error {
	return newError(http.StatusNotImplemented, err)
}

func NewBadGatewayError(err error) error {
	return newError(http.StatusBadGateway, err)
}

func NewUnavailableError(err error) error {
	return newError(http.StatusServiceUnavailable, err)
}

// GetHTTPStatus returns the status of the outermost http-error in the chain, 500 otherwise.
func GetHTTPStatus(err error) int {
	if err == nil {
		return http.StatusInternalServerError
	}

	var coder httpErrorCoder
	if errors.As(err, &coder) {
		return coder.GetHTTPErrorCode()
	}

	return http.StatusInternalServerError
}
