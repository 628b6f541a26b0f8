package genai

import (
	"errors"
	"fmt"
)

// ConfigurationError means the service cannot be called at all. It is
// terminal: callers surface it and never retry.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: missing %s", e.Missing)
}

// ServiceError is a failed or non-successful call to the generation service.
// Status is 0 when the request never produced an HTTP response.
type ServiceError struct {
	Status  int
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e == nil {
		return ""
	}
	if e.Status != 0 {
		return fmt.Sprintf("generation service error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("generation service error: %s", e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IsConfiguration reports whether err is, or wraps, a ConfigurationError
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
