package commands

import (
	"context"
)

// StopTrackingCommandHandler pauses the movement simulation for an order.
// No storage access happens here; the last persisted position stays as is.
type StopTrackingCommandHandler struct {
	simulator OrderSimulator
}

// NewStopTrackingCommandHandler creates a handler for tracking deactivation.
func NewStopTrackingCommandHandler(simulator OrderSimulator) StopTrackingCommandHandler {
	return StopTrackingCommandHandler{
		simulator: simulator,
	}
}

// Handle processes the tracking deactivation command.
// Returns errs.ObjectNotFoundError when the order is not registered.
func (h *StopTrackingCommandHandler) Handle(_ context.Context, cmd StopTrackingCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.simulator.Deactivate(cmd.OrderID())
}
