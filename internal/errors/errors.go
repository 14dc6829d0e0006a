// Package errors defines the service-level error returned to callers of the
// ledger services when a request breaks a business rule.
package errors

import (
	"errors"
	"fmt"
)

// ServiceError is a business-rule violation reported to the caller. It is
// never retried.
type ServiceError struct {
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches any ServiceError carrying the same code, so the package-level
// values can be used with errors.Is after Wrap or Withf.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Withf returns a copy of e with a more specific message.
func (e *ServiceError) Withf(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Code: e.Code, Message: fmt.Sprintf(format, args...), Err: e.Err}
}

// Wrap returns a copy of e carrying cause.
func (e *ServiceError) Wrap(cause error) *ServiceError {
	return &ServiceError{Code: e.Code, Message: e.Message, Err: cause}
}

func New(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

// AsServiceError unwraps err into a ServiceError when it carries one.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsServiceError reports whether err is a business-rule violation.
func IsServiceError(err error) bool {
	_, ok := AsServiceError(err)
	return ok
}

var ErrInvalidRequest = &ServiceError{
	Code:    "INVALID_REQUEST",
	Message: "invalid request",
}
