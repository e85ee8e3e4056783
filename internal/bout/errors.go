package bout

import (
	"errors"
	"fmt"
)

var (
	// ErrBoutFinished is returned by Step once a fencer has reached the
	// win threshold. The bout is left untouched.
	ErrBoutFinished = errors.New("bout already finished")

	// ErrRoundLimit is returned by Run when the round cap is hit before
	// either fencer reaches the threshold.
	ErrRoundLimit = errors.New("round limit reached without a winner")
)

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeInvalidSkill indicates a skill level outside [0,1] or not finite.
	ErrCodeInvalidSkill ConfigErrorCode = "INVALID_SKILL"

	// ErrCodeInvalidThreshold indicates a non-positive win threshold.
	ErrCodeInvalidThreshold ConfigErrorCode = "INVALID_THRESHOLD"

	// ErrCodeInvalidName indicates an empty fencer name.
	ErrCodeInvalidName ConfigErrorCode = "INVALID_NAME"

	// ErrCodeUnknownKind indicates a distance, action or defense that is
	// not in the rule catalogue.
	ErrCodeUnknownKind ConfigErrorCode = "UNKNOWN_KIND"
)

// ConfigError is returned when a bout is created from invalid input.
// Values are never coerced into range.
type ConfigError struct {
	Code    ConfigErrorCode
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// IsConfigError reports whether err is, or wraps, a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ConfigErrorCodeOf returns the code of a wrapped *ConfigError, or "".
func ConfigErrorCodeOf(err error) ConfigErrorCode {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
