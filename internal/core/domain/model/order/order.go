package order

import (
	"errors"
	"time"

	"tracker/internal/core/domain/model/kernel"
	"tracker/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not created
// through the NewOrder or RestoreOrder factory functions.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

// Order represents a delivery order moving from a source coordinate to a
// destination. It is the aggregate root managed by the motion engine.
//
// Invariants:
//   - The id is an opaque non-empty string, immutable once created.
//   - Source and destination are valid coordinates; the destination never
//     changes after creation.
//   - The current coordinate is nil until the first simulation tick and from
//     then on only advances through the movement methods.
//   - Status transitions are monotonic (see Status); Delivered freezes the
//     aggregate.
type Order struct {
	id          string
	items       []string
	truckID     string
	createdAt   time.Time
	source      kernel.GeoPoint
	destination kernel.GeoPoint
	current     *kernel.GeoPoint
	route       []kernel.GeoPoint
	routeNext   int
	assignment  string
	status      Status

	isConstructed bool
}

// NewOrder creates a new Order in Created status with no current position.
// The id must be non-empty and both coordinates must be valid. A zero
// createdAt defaults to the current time.
func NewOrder(
	id string,
	items []string,
	truckID string,
	createdAt time.Time,
	source kernel.GeoPoint,
	destination kernel.GeoPoint,
) (*Order, error) {
	if id == "" {
		return nil, errs.NewValueIsRequiredError("id")
	}
	if err := errors.Join(source.Validate(), destination.Validate()); err != nil {
		return nil, err
	}

	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return &Order{
		id:            id,
		items:         append([]string(nil), items...),
		truckID:       truckID,
		createdAt:     createdAt,
		source:        source,
		destination:   destination,
		status:        Created,
		isConstructed: true,
	}, nil
}

// RestoreOrder reconstructs an Order from persistence, bypassing the
// creation-time defaults but not the validation rules.
func RestoreOrder(
	id string,
	items []string,
	truckID string,
	createdAt time.Time,
	source kernel.GeoPoint,
	destination kernel.GeoPoint,
	current *kernel.GeoPoint,
	route []kernel.GeoPoint,
	routeNext int,
	assignment string,
	status Status,
) (*Order, error) {
	o, err := NewOrder(id, items, truckID, createdAt, source, destination)
	if err != nil {
		return nil, err
	}
	if err = status.Validate(); err != nil {
		return nil, err
	}
	if current != nil {
		if err = current.Validate(); err != nil {
			return nil, err
		}
		cp := *current
		o.current = &cp
	}
	if routeNext < 0 || routeNext > len(route) {
		return nil, errs.NewValueIsOutOfRangeError("routeNext", routeNext, 0, len(route))
	}

	o.route = append([]kernel.GeoPoint(nil), route...)
	o.routeNext = routeNext
	o.assignment = assignment
	o.status = status
	return o, nil
}

// Validate ensures the Order was constructed through a factory function.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// ID returns the order's opaque identifier.
func (o *Order) ID() string {
	return o.id
}

// Items returns a copy of the ordered item list.
func (o *Order) Items() []string {
	return append([]string(nil), o.items...)
}

// TruckID returns the numeric truck label assigned at creation.
func (o *Order) TruckID() string {
	return o.truckID
}

// CreatedAt returns the creation timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// Source returns the pickup coordinate.
func (o *Order) Source() kernel.GeoPoint {
	return o.source
}

// Destination returns the delivery coordinate. It is fixed at creation.
func (o *Order) Destination() kernel.GeoPoint {
	return o.destination
}

// Current returns the order's present coordinate, or nil before the first
// simulation tick.
func (o *Order) Current() *kernel.GeoPoint {
	if o.current == nil {
		return nil
	}
	cp := *o.current
	return &cp
}

// Route returns a copy of the precomputed waypoint sequence, which is empty
// when the order moves by random walk.
func (o *Order) Route() []kernel.GeoPoint {
	return append([]kernel.GeoPoint(nil), o.route...)
}

// HasRoute reports whether a precomputed route is attached.
func (o *Order) HasRoute() bool {
	return len(o.route) > 0
}

// RouteNext returns the index of the first unvisited waypoint.
func (o *Order) RouteNext() int {
	return o.routeNext
}

// Assignment returns the delivery agent identity, empty when unassigned.
func (o *Order) Assignment() string {
	return o.assignment
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// IsDelivered reports whether the order reached its terminal state.
func (o *Order) IsDelivered() bool {
	return o.status.IsTerminal()
}

// Assign records the delivery agent responsible for the order.
// Rejected once the order is delivered.
func (o *Order) Assign(agent string) error {
	if agent == "" {
		return errs.NewValueIsRequiredError("agent")
	}
	if o.IsDelivered() {
		return errs.NewValueIsInvalidError("order is already delivered")
	}

	o.assignment = agent
	return nil
}

// AttachRoute stores the precomputed waypoint sequence and resets the
// replay cursor. The route must be non-empty and every waypoint valid.
func (o *Order) AttachRoute(points []kernel.GeoPoint) error {
	if len(points) == 0 {
		return errs.NewValueIsRequiredError("route")
	}
	if o.IsDelivered() {
		return errs.NewValueIsInvalidError("order is already delivered")
	}
	for _, p := range points {
		if err := p.Validate(); err != nil {
			return err
		}
	}

	o.route = append([]kernel.GeoPoint(nil), points...)
	o.routeNext = 0
	return nil
}

// NextWaypoint returns the first unvisited waypoint of the attached route.
// The second result is false when no route is attached or the route is
// exhausted.
func (o *Order) NextWaypoint() (kernel.GeoPoint, bool) {
	if o.routeNext >= len(o.route) {
		return kernel.GeoPoint{}, false
	}
	return o.route[o.routeNext], true
}

// MarkWaypointReached advances the route replay cursor by one.
func (o *Order) MarkWaypointReached() {
	if o.routeNext < len(o.route) {
		o.routeNext++
	}
}

// StartTransit places the order at its source coordinate and moves the
// status to InTransit. Applied exactly once, on the order's first tick.
func (o *Order) StartTransit() error {
	if o.current != nil {
		return errs.NewValueIsInvalidError("order is already in transit")
	}

	next, err := o.status.Advance(InTransit)
	if err != nil {
		return err
	}

	src := o.source
	o.current = &src
	o.status = next
	return nil
}

// MoveTo advances the current coordinate. The order must have started
// transit and must not be delivered.
func (o *Order) MoveTo(p kernel.GeoPoint) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if o.current == nil {
		return errs.NewValueIsInvalidError("order has not started transit")
	}
	if o.IsDelivered() {
		return errs.NewValueIsInvalidError("order is already delivered")
	}

	cp := p
	o.current = &cp
	return nil
}

// MarkShipped records that the order moved away from its source.
func (o *Order) MarkShipped() error {
	next, err := o.status.Advance(Shipped)
	if err != nil {
		return err
	}

	o.status = next
	return nil
}

// Deliver pins the order onto its destination and moves the status to the
// terminal Delivered state. Applied exactly once; subsequent ticks must
// skip delivered orders entirely.
func (o *Order) Deliver() error {
	next, err := o.status.Advance(Delivered)
	if err != nil {
		return err
	}

	dst := o.destination
	o.current = &dst
	o.status = next
	return nil
}

// DistanceToDestinationKm returns the haversine distance from the order's
// present position (or its source before the first tick) to the destination.
func (o *Order) DistanceToDestinationKm() (float64, error) {
	from := o.source
	if o.current != nil {
		from = *o.current
	}
	return from.DistanceKm(o.destination)
}
