/*
errors.go - Centralized error types for the booking engine

PURPOSE:
  All booking errors in one place. The taxonomy matters because each
  class drives a different recovery path in the conversation layer:

  1. ParseError        - recoverable: re-prompt the same step
  2. AvailabilityError - terminal for the attempt: explain and cancel
  3. SourceError       - retryable: keep collected fields, retry the step

  Stale selection keys are a separate, session-local concern and live in
  the session package.

USAGE:
  Callers branch with the standard helpers:

    if errors.Is(err, booking.ErrUnavailable) { ... }
    var pe *booking.ParseError
    if errors.As(err, &pe) && pe.Kind == booking.ParseBadDate { ... }
*/
package booking

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnavailable is wrapped by every AvailabilityError. Matching it
	// answers "was the request rejected?" without caring why.
	ErrUnavailable = errors.New("requested resources unavailable")

	// ErrSourceUnavailable is wrapped by every SourceError. It marks
	// failures of the external inventory/ledger store, which are not
	// locally recoverable but safe to retry.
	ErrSourceUnavailable = errors.New("external source unavailable")
)

// =============================================================================
// PARSE ERRORS - Malformed user input
// =============================================================================

type ParseErrorKind string

const (
	ParseBadDate   ParseErrorKind = "bad_date"
	ParseBadTime   ParseErrorKind = "bad_time"
	ParseEmptyText ParseErrorKind = "empty_text"
)

// ParseError reports malformed free-text input with an explicit kind so
// callers branch on cause rather than on the absence of a value.
type ParseError struct {
	Kind  ParseErrorKind
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %q", e.Kind, e.Input)
}

// =============================================================================
// AVAILABILITY ERRORS - Request cannot be granted
// =============================================================================

type AvailabilityErrorKind string

const (
	// UnknownResource: the name did not resolve against inventory, or
	// resolved to a resource with zero total stock.
	UnknownResource AvailabilityErrorKind = "unknown_resource"

	// InsufficientQuantity: the resource exists but the free count in
	// the probed window is below the requested count.
	InsufficientQuantity AvailabilityErrorKind = "insufficient_quantity"
)

// AvailabilityError explains why a request was rejected. It names the
// constraining resource and, for quantity shortfalls, the probed window
// and the free vs. requested counts - enough to reconstruct the cause.
type AvailabilityError struct {
	Kind      AvailabilityErrorKind
	Resource  string
	Date      Date
	Start     TimeOfDay
	End       TimeOfDay
	Free      int
	Requested int
}

func (e *AvailabilityError) Error() string {
	switch e.Kind {
	case UnknownResource:
		return fmt.Sprintf("resource %q not found in inventory or has zero stock", e.Resource)
	default:
		return fmt.Sprintf("only %d of %q free on %s between %s and %s, requested %d",
			e.Free, e.Resource, e.Date, e.Start, e.End, e.Requested)
	}
}

func (e *AvailabilityError) Unwrap() error { return ErrUnavailable }

// =============================================================================
// SOURCE ERRORS - External store failures
// =============================================================================

// SourceError wraps a failure of the external inventory or ledger store.
// It unwraps to both ErrSourceUnavailable (for classification) and the
// underlying error (for diagnostics).
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}
