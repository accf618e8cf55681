package models

import (
	"errors"
	"net/http"
)

// UnknownErrorMessage is the fallback shown when a captured failure carries
// no message of its own.
const UnknownErrorMessage = "Unknown error occurred"

// ErrorKind classifies a purchase failure for logging and status mapping.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindConfiguration ErrorKind = "configuration"
	KindAutomation    ErrorKind = "automation"
	KindUnknown       ErrorKind = "unknown"
)

// ValidationError reports order input the flow cannot proceed with, such as
// a missing MAC address or an email the username derivation rejects.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConfigurationError reports a required environment value that is missing
// at the point the flow needs it.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// AutomationError reports a failed browser step: navigation, a selector
// wait, a timeout, or a provider-side rejection.
type AutomationError struct {
	Step string
	Err  error
}

func (e *AutomationError) Error() string { return e.Step + ": " + e.Err.Error() }

func (e *AutomationError) Unwrap() error { return e.Err }

// Classify maps any error onto its failure kind.
func Classify(err error) ErrorKind {
	var (
		validationErr    *ValidationError
		configurationErr *ConfigurationError
		automationErr    *AutomationError
	)
	switch {
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &configurationErr):
		return KindConfiguration
	case errors.As(err, &automationErr):
		return KindAutomation
	default:
		return KindUnknown
	}
}

// HTTPStatus maps a failure kind onto the status code served alongside a
// failed purchase result.
func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAutomation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage renders err for the result payload, substituting the fixed
// fallback when there is no message to show.
func ErrorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return UnknownErrorMessage
	}
	return err.Error()
}
