package commands

import (
	"context"

	"tracker/internal/core/domain/model/order"
)

// Simulation interfaces decouple command handlers from the concrete engine.
type (
	// OrderSimulator manages the in-memory set of simulated orders.
	OrderSimulator interface {
		// Register adds or refreshes an order in the simulation set without
		// changing its activation state.
		Register(o *order.Order) error

		// Announce publishes the order's current position without moving it.
		Announce(o *order.Order)

		// Activate enables periodic ticks for the order.
		Activate(id string) error

		// Deactivate stops periodic ticks for the order.
		Deactivate(id string) error
	}

	// SimulationTicker advances every activated order by one step.
	SimulationTicker interface {
		TickAll(ctx context.Context)
	}
)
