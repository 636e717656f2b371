package commands

import (
	"errors"

	"tracker/internal/pkg/guard"
)

var (
	ErrStartTrackingCommandIsNotConstructed = errors.New(
		"StartTrackingCommand must be created via NewStartTrackingCommand constructor",
	)
	ErrOrderIDIsRequired = errors.New("orderID is required")
)

// StartTrackingCommand represents a request to begin moving an order.
// When useRoute is set, a driving route is fetched from the directions
// service and replayed waypoint by waypoint; otherwise the order advances
// with randomized steps toward its destination.
type StartTrackingCommand struct { //nolint:recvcheck //using for validation
	orderID  string
	useRoute bool

	guard guard.ConstructorGuard
}

// NewStartTrackingCommand creates a command to activate order tracking.
func NewStartTrackingCommand(orderID string, useRoute bool) (StartTrackingCommand, error) {
	if orderID == "" {
		return StartTrackingCommand{}, ErrOrderIDIsRequired
	}

	return StartTrackingCommand{
		orderID:  orderID,
		useRoute: useRoute,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrStartTrackingCommandIsNotConstructed if validation fails.
func (c StartTrackingCommand) Validate() error {
	return c.guard.Validate(ErrStartTrackingCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to track.
func (c StartTrackingCommand) OrderID() string {
	return c.orderID
}

// UseRoute reports whether a driving route should be fetched before
// activation.
func (c StartTrackingCommand) UseRoute() bool {
	return c.useRoute
}
