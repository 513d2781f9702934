package harness

import (
	"errors"
	"fmt"
)

// LoadError reports a scenario that could not be loaded.
type LoadError struct {
	// Code identifies the failing stage.
	Code string

	// File is the scenario path, when loaded from disk.
	File string

	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Load error codes.
const (
	ErrCodeRead    = "READ_FAILED"
	ErrCodeParse   = "PARSE_FAILED"
	ErrCodeSchema  = "SCHEMA_VIOLATION"
	ErrCodeInvalid = "INVALID_SCENARIO"
)

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsSchemaError reports whether err is a schema violation.
// Uses errors.As to handle wrapped errors.
func IsSchemaError(err error) bool {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code == ErrCodeSchema
	}
	return false
}

// IsInvalidScenario reports whether err is a scenario that parsed but
// does not build.
func IsInvalidScenario(err error) bool {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code == ErrCodeInvalid
	}
	return false
}
