package commands

import (
	"errors"

	"tracker/internal/core/domain/model/kernel"
	"tracker/internal/pkg/guard"

	"github.com/google/uuid"
)

var ErrRegisterOrderCommandIsNotConstructed = errors.New(
	"RegisterOrderCommand must be created via NewRegisterOrderCommand constructor",
)

// RegisterOrderCommand represents a request to register a new delivery order
// with its pickup and drop-off coordinates.
//
// Example:
//
//	src, _ := kernel.NewGeoPoint(17.3850, 78.4867)
//	dst, _ := kernel.NewGeoPoint(17.4065, 78.4772)
//	cmd, err := NewRegisterOrderCommand("", []string{"keyboard"}, "7", src, dst)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewRegisterOrderCommandHandler(uowFactory, engine)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to register order: %w", err)
//	}
//	fmt.Printf("Order %s registered", cmd.OrderID())
type RegisterOrderCommand struct { //nolint:recvcheck //using for validation
	orderID     string
	items       []string
	truckID     string
	source      kernel.GeoPoint
	destination kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewRegisterOrderCommand creates a command to register a new delivery order.
// An empty orderID is replaced with a generated UUID. Both coordinates must
// be valid geographic points.
func NewRegisterOrderCommand(
	orderID string,
	items []string,
	truckID string,
	source kernel.GeoPoint,
	destination kernel.GeoPoint,
) (RegisterOrderCommand, error) {
	if orderID == "" {
		orderID = uuid.NewString()
	}

	cmd := RegisterOrderCommand{
		orderID: orderID,
		items:   append([]string(nil), items...),
		truckID: truckID,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setSource(source),
		cmd.setDestination(destination),
	); err != nil {
		return RegisterOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrRegisterOrderCommandIsNotConstructed if validation fails.
func (c RegisterOrderCommand) Validate() error {
	return c.guard.Validate(ErrRegisterOrderCommandIsNotConstructed)
}

// OrderID returns the identifier the order will be registered under.
func (c RegisterOrderCommand) OrderID() string {
	return c.orderID
}

// Items returns the order line descriptions.
func (c RegisterOrderCommand) Items() []string {
	return append([]string(nil), c.items...)
}

// TruckID returns the identifier of the assigned vehicle, if any.
func (c RegisterOrderCommand) TruckID() string {
	return c.truckID
}

// Source returns the pickup coordinate.
func (c RegisterOrderCommand) Source() kernel.GeoPoint {
	return c.source
}

// Destination returns the drop-off coordinate.
func (c RegisterOrderCommand) Destination() kernel.GeoPoint {
	return c.destination
}

func (c *RegisterOrderCommand) setSource(source kernel.GeoPoint) error {
	if err := source.Validate(); err != nil {
		return err
	}

	c.source = source
	return nil
}

func (c *RegisterOrderCommand) setDestination(destination kernel.GeoPoint) error {
	if err := destination.Validate(); err != nil {
		return err
	}

	c.destination = destination
	return nil
}
