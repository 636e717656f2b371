package order

import (
	"errors"
	"fmt"

	"tracker/internal/pkg/errs"
)

// Status represents the lifecycle state of a delivery order.
// It implements a strictly forward-moving state machine:
//
//	Created ──> InTransit ──> Shipped ──> Delivered
//
// States may be skipped (an order can go straight from InTransit to
// Delivered) but a status never moves backwards. Delivered is terminal.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Created is the initial status of a registered order that has not
	// started moving yet.
	Created

	// InTransit indicates the order occupies its starting position and the
	// simulation has picked it up.
	InTransit

	// Shipped indicates the order has moved away from its source, i.e. an
	// intermediate waypoint has been reached.
	Shipped

	// Delivered indicates the order reached its destination.
	// This is a final state with no further transitions allowed.
	Delivered
)

// getStatusStrings returns a map of Status values to their string
// representations. All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "Unknown",
		Created:   "Created",
		InTransit: "InTransit",
		Shipped:   "Shipped",
		Delivered: "Delivered",
	}
}

// getValidStatusStrings returns a map of only valid Status values,
// supporting validation and parsing.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Created:   "Created",
		InTransit: "InTransit",
		Shipped:   "Shipped",
		Delivered: "Delivered",
	}
}

// ParseStatus converts a wire label back into a Status.
// Returns an error for labels outside the valid set.
func ParseStatus(label string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == label {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status", fmt.Errorf("%q is not a valid status label", label))
}

// Validate checks if the Status value is valid.
// Valid statuses are Created, InTransit, Shipped and Delivered;
// Unknown (0) and any other values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status, or "Unknown" for
// invalid values. Implements fmt.Stringer; the same labels travel on the
// wire inside location events.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == Delivered
}

// Advance transitions the status to target, enforcing forward-only movement.
//
// Valid transitions move to any later state in the
// Created -> InTransit -> Shipped -> Delivered ordering, including the
// current state itself (idempotent). Any move backwards, any transition out
// of Delivered, and any invalid target are rejected.
//
// Returns:
//   - (target, nil) on a valid transition
//   - (0, error) if the transition is not allowed
func (s Status) Advance(target Status) (Status, error) {
	if err := errors.Join(s.Validate(), target.Validate()); err != nil {
		return 0, err
	}

	if s.IsTerminal() && target != s {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is terminal and cannot transition to %s", s, target),
		)
	}

	if target < s {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("cannot move status backwards from %s to %s", s, target),
		)
	}

	return target, nil
}
