package core

// errors.go defines the error taxonomy for the event-recording subsystem
// and maps errors to coded user-facing messages.
//
// Error codes:
//
//	VAL001 - Validation: a required field is missing or a field value does
//	         not fit its schema. Always raised before any write.
//	VAL002 - Unsupported site type: the type is outside {cloud, network, grid}.
//	NF001  - Event not found: no fact row exists for the requested event id.
//	INT001 - Integrity: a fact row exists but its detail row is missing.
//	DB001  - Store failure (generic).
//	DB002  - Store unreachable: connection refused or reset.
//	DB003  - Store timeout.

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEventNotFound indicates the locator found no fact row for an event id.
// Used identically by the read and delete paths.
var ErrEventNotFound = errors.New("event not found")

// ErrDetailMissing indicates a fact row exists but the detail table located
// for it holds no matching row. This state violates the one-detail-per-fact
// invariant and is reported rather than silently returned as a null detail.
var ErrDetailMissing = errors.New("detail row missing for existing event")

// ValidationError reports input that fails schema validation.
// It is always raised before any write occurs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Reason)
	}
	return fmt.Sprintf("validation: field %q: %s", e.Field, e.Reason)
}

// UnsupportedSiteTypeError reports a site type outside the closed
// enumeration.
type UnsupportedSiteTypeError struct {
	Value string
}

func (e *UnsupportedSiteTypeError) Error() string {
	return fmt.Sprintf("unsupported site_type %q", e.Value)
}

// IsClientError reports whether err should surface as a 4xx class failure
// rather than a store failure.
func IsClientError(err error) bool {
	var ve *ValidationError
	var ue *UnsupportedSiteTypeError
	return errors.As(err, &ve) || errors.As(err, &ue) || errors.Is(err, ErrEventNotFound)
}

// UserMessage is a user-facing description of a failure.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// MapError converts an error into a coded user message.
// Typed domain errors are matched first; store errors fall back to
// pattern matching on the error text, most specific pattern first.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return UserMessage{
			Message: ve.Error(),
			Action:  "Correct the submission payload and retry",
			Code:    "VAL001",
		}
	}

	var ue *UnsupportedSiteTypeError
	if errors.As(err, &ue) {
		return UserMessage{
			Message: ue.Error(),
			Action:  "Use one of: cloud, network, grid",
			Code:    "VAL002",
		}
	}

	if errors.Is(err, ErrEventNotFound) {
		return UserMessage{
			Message: "Event not found",
			Action:  "Check the event id",
			Code:    "NF001",
		}
	}

	if errors.Is(err, ErrDetailMissing) {
		return UserMessage{
			Message: "Stored event is missing its detail row",
			Action:  "Report the event id so the record can be repaired",
			Code:    "INT001",
		}
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "connection refused"), strings.Contains(errStr, "connection reset"):
		return UserMessage{
			Message: "Unable to reach the database",
			Action:  "Try again in a few moments",
			Code:    "DB002",
		}
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline exceeded"):
		return UserMessage{
			Message: "Database operation timed out",
			Action:  "Try again later",
			Code:    "DB003",
		}
	}

	return UserMessage{
		Message: "Database operation failed",
		Action:  "Try again; contact support if the problem persists",
		Code:    "DB001",
	}
}
