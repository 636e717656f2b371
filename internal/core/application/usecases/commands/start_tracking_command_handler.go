package commands

import (
	"context"
	"errors"
	"time"

	"tracker/internal/core/ports"
	"tracker/internal/pkg/errs"
)

const defaultRouteTimeout = 10 * time.Second

// StartTrackingCommandHandler activates the movement simulation for an order.
//
// With route mode requested, the handler fetches a driving route first and
// refuses to activate when the directions service cannot provide one; the
// order stays registered and its status is left untouched. Without route
// mode the order is activated directly and will take randomized steps.
type StartTrackingCommandHandler struct {
	uowFactory   OrderUoWFactory
	simulator    OrderSimulator
	routes       ports.RouteProvider
	routeTimeout time.Duration
}

// NewStartTrackingCommandHandler creates a handler for tracking activation.
// A non-positive routeTimeout falls back to a ten second default.
func NewStartTrackingCommandHandler(
	uowFactory OrderUoWFactory,
	simulator OrderSimulator,
	routes ports.RouteProvider,
	routeTimeout time.Duration,
) StartTrackingCommandHandler {
	if routeTimeout <= 0 {
		routeTimeout = defaultRouteTimeout
	}

	return StartTrackingCommandHandler{
		uowFactory:   uowFactory,
		simulator:    simulator,
		routes:       routes,
		routeTimeout: routeTimeout,
	}
}

// Handle processes the tracking activation command.
// Loads the order, optionally attaches a fetched route, persists the result
// and finally enables ticking. Route fetch failures abort the activation.
func (h *StartTrackingCommandHandler) Handle(ctx context.Context, cmd StartTrackingCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	aggregate, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if aggregate.IsDelivered() {
		return errs.NewValueIsInvalidError("order is already delivered")
	}

	if cmd.UseRoute() {
		routeCtx, cancel := context.WithTimeout(ctx, h.routeTimeout)
		defer cancel()

		route, routeErr := h.routes.FetchRoute(routeCtx, aggregate.Source(), aggregate.Destination())
		if routeErr != nil {
			if errors.Is(routeErr, errs.ErrRouteUnavailable) {
				return routeErr
			}
			return errs.NewRouteUnavailableError(cmd.OrderID(), routeErr)
		}

		if err = aggregate.AttachRoute(route); err != nil {
			return err
		}

		if err = repo.Update(ctx, aggregate); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if err = h.simulator.Register(aggregate); err != nil {
		return err
	}

	return h.simulator.Activate(cmd.OrderID())
}
