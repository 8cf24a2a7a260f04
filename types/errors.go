package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrUnknownModel indicates a model identifier missing from the registry
	ErrUnknownModel = errors.New("unknown model")

	// ErrConfig indicates a backend could not be built from the configuration
	ErrConfig = errors.New("configuration error")

	// ErrBackend indicates an embedding backend failed to load or encode
	ErrBackend = errors.New("embedding backend error")

	// ErrValidation indicates input or overrides the engine refuses to process
	ErrValidation = errors.New("validation error")
)

// UnknownModelError is returned when a model identifier is not registered.
type UnknownModelError struct {
	ModelID   string
	Available []string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model ID: %s. Available: [%s]", e.ModelID, strings.Join(e.Available, ", "))
}

func (e *UnknownModelError) Is(target error) bool { return target == ErrUnknownModel }

// ConfigError is returned when a required setting, usually a credential,
// is missing at backend construction time.
type ConfigError struct {
	Provider string
	Setting  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: missing required setting %s", e.Provider, e.Setting)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// BackendError wraps a failure raised by a backend while loading a model or
// encoding texts.
type BackendError struct {
	ModelID string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.ModelID, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Is(target error) bool { return target == ErrBackend }

// ValidationError reports input the engine refuses to process.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid input: " + e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalidf builds a ValidationError from a format string.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
