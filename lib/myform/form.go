package myform

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	formcodec "github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"

	"github.com/MarcGrol/agencyportal/lib/myerrors"
)

var (
	decoder  = formcodec.NewDecoder()
	validate = validator.New(validator.WithRequiredStructEnabled())
)

// DecodeRequest fills target from the posted form and validates it; problems are invalid-input errors.
func DecodeRequest(r *http.Request, target any) error {
	err := r.ParseForm()
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}
	return DecodeValues(r.PostForm, target)
}

func DecodeValues(values url.Values, target any) error {
	err := decoder.Decode(target, values)
	if err != nil {
		return myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %w", err))
	}

	err = validate.Struct(target)
	if err != nil {
		return myerrors.NewInvalidInputError(errors.New(formatValidationErrors(err)))
	}

	return nil
}

func formatValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	messages := []string{}
	for _, fieldError := range validationErrors {
		switch fieldError.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fieldError.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email address", fieldError.Field()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", fieldError.Field(), fieldError.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", fieldError.Field(), fieldError.Param()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of [%s]", fieldError.Field(), fieldError.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", fieldError.Field()))
		}
	}
	return strings.Join(messages, "; ")
}
