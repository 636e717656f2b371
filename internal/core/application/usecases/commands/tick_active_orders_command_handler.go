package commands

import (
	"context"
)

// TickActiveOrdersCommandHandler runs one simulation round over every
// activated order. Per-order failures are handled inside the ticker and
// never abort the round.
//
// This would typically be called periodically by a scheduler.
type TickActiveOrdersCommandHandler struct {
	ticker SimulationTicker
}

// NewTickActiveOrdersCommandHandler creates a handler for simulation rounds.
func NewTickActiveOrdersCommandHandler(ticker SimulationTicker) TickActiveOrdersCommandHandler {
	return TickActiveOrdersCommandHandler{
		ticker: ticker,
	}
}

// Handle processes the simulation round command.
func (h *TickActiveOrdersCommandHandler) Handle(ctx context.Context, cmd TickActiveOrdersCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	h.ticker.TickAll(ctx)
	return nil
}
