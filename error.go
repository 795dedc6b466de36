package premortem

import (
	"errors"
	"fmt"
)

type ErrorCode int

const (
	Unknown ErrorCode = iota
	// LookupUnavailable means a reference catalog could not be reached or evaluated.
	LookupUnavailable
	// GenerationFailure means the upstream document could not be produced or failed schema checks.
	GenerationFailure
	// MalformedScenario means a scenario lacks fields required by a rule.
	MalformedScenario
	// PolicyConfigInvalid means a policy rule or matcher could not be built from configuration.
	PolicyConfigInvalid
)

func (c ErrorCode) String() string {
	switch c {
	case LookupUnavailable:
		return "LookupUnavailable"
	case GenerationFailure:
		return "GenerationFailure"
	case MalformedScenario:
		return "MalformedScenario"
	case PolicyConfigInvalid:
		return "PolicyConfigInvalid"
	}
	return "Unknown"
}

// Error is the coded error returned across package boundaries.
type Error struct {
	Code     ErrorCode
	Err      error
	UserData any
}

func (e Error) Error() string {
	if e.UserData == nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v, user data: %v", e.Code, e.Err, e.UserData)
}

func (e Error) Unwrap() error { return e.Err }

// NewError wraps err with code.
func NewError(code ErrorCode, err error, userData any) error {
	return Error{Code: code, Err: err, UserData: userData}
}

// CodeOf returns the code of the first Error found in err's chain, or Unknown.
func CodeOf(err error) ErrorCode {
	var e Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unknown
}

// IsGenerationFailure reports whether err carries the GenerationFailure code.
func IsGenerationFailure(err error) bool { return CodeOf(err) == GenerationFailure }

// IsLookupUnavailable reports whether err carries the LookupUnavailable code.
func IsLookupUnavailable(err error) bool { return CodeOf(err) == LookupUnavailable }
