package commands

import (
	"context"
	"time"

	"tracker/internal/core/domain/model/order"
)

// RegisterOrderCommandHandler handles the business logic for order registration.
// Persists the new order, adds it to the simulation set in a deactivated state
// and emits the initial location event.
type RegisterOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	simulator  OrderSimulator
}

// NewRegisterOrderCommandHandler creates a handler for order registration.
// Requires an OrderUoWFactory for transactional persistence and an
// OrderSimulator to announce the new order.
func NewRegisterOrderCommandHandler(
	uowFactory OrderUoWFactory,
	simulator OrderSimulator,
) RegisterOrderCommandHandler {
	return RegisterOrderCommandHandler{
		uowFactory: uowFactory,
		simulator:  simulator,
	}
}

// Handle processes the order registration command.
// The order starts in Created status at its source coordinate and does not
// move until tracking is enabled. The initial event is published only after
// the order has been committed to storage.
func (h *RegisterOrderCommandHandler) Handle(ctx context.Context, cmd RegisterOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	aggregate, err := order.NewOrder(
		cmd.OrderID(),
		cmd.Items(),
		cmd.TruckID(),
		time.Now(),
		cmd.Source(),
		cmd.Destination(),
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if err = h.simulator.Register(aggregate); err != nil {
		return err
	}
	h.simulator.Announce(aggregate)

	return nil
}
