package commands

import (
	"errors"

	"tracker/internal/pkg/guard"
)

var ErrStopTrackingCommandIsNotConstructed = errors.New(
	"StopTrackingCommand must be created via NewStopTrackingCommand constructor",
)

// StopTrackingCommand represents a request to pause movement of an order.
// The order keeps its persisted position and status and can be re-activated
// later.
type StopTrackingCommand struct { //nolint:recvcheck //using for validation
	orderID string

	guard guard.ConstructorGuard
}

// NewStopTrackingCommand creates a command to deactivate order tracking.
func NewStopTrackingCommand(orderID string) (StopTrackingCommand, error) {
	if orderID == "" {
		return StopTrackingCommand{}, ErrOrderIDIsRequired
	}

	return StopTrackingCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrStopTrackingCommandIsNotConstructed if validation fails.
func (c StopTrackingCommand) Validate() error {
	return c.guard.Validate(ErrStopTrackingCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to stop tracking.
func (c StopTrackingCommand) OrderID() string {
	return c.orderID
}
