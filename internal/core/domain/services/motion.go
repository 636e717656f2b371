package services

import (
	"math/rand/v2"

	"tracker/internal/core/domain/model/kernel"
	"tracker/internal/core/domain/model/order"
	"tracker/internal/pkg/errs"
)

// MotionService is a domain service responsible for advancing an order one
// simulation step along its delivery path.
//
// Key responsibilities:
//   - Starting transit on the first step after creation
//   - Replaying a fetched route waypoint by waypoint
//   - Falling back to a randomized walk toward the destination when no route exists
//   - Completing delivery once the order is within the arrival threshold
//
// Business rules:
//   - The first step only places the order at its source; movement begins on the next step
//   - An order moves at most one waypoint, or one step size, per invocation
//   - First movement promotes the order from InTransit to Shipped
//   - Arrival pins the order to its exact destination and terminates the lifecycle
//   - Delivered orders are never moved again
type MotionService struct {
	epsilon   float64
	stepSize  float64
	randFloat func() float64
}

// NewMotionService creates a MotionService.
//
// Parameters:
//   - epsilon: Arrival threshold in coordinate degrees; non-positive values fall back to kernel.DefaultEpsilon
//   - stepSize: Maximum per-axis displacement of a single randomized step, in degrees (must be positive)
//   - randFloat: Source of uniform values in [0, 1); nil falls back to the global generator
func NewMotionService(epsilon float64, stepSize float64, randFloat func() float64) (MotionService, error) {
	if stepSize <= 0 {
		return MotionService{}, errs.NewValueIsInvalidError("stepSize")
	}
	if epsilon <= 0 {
		epsilon = kernel.DefaultEpsilon
	}
	if randFloat == nil {
		randFloat = rand.Float64
	}
	return MotionService{
		epsilon:   epsilon,
		stepSize:  stepSize,
		randFloat: randFloat,
	}, nil
}

// Advance performs one simulation step on the order.
//
// A Created order only starts transit, taking up position at its source.
// An order in motion either replays the next route waypoint or takes a
// randomized step toward the destination, then is delivered if it ended
// up within the arrival threshold. Delivered orders are left untouched.
func (s MotionService) Advance(o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.IsDelivered() {
		return nil
	}
	if o.Status() == order.Created {
		return o.StartTransit()
	}

	if err := s.move(o); err != nil {
		return err
	}
	if o.IsDelivered() {
		return nil
	}

	arrived, err := o.Current().IsNear(o.Destination(), s.epsilon)
	if err != nil {
		return err
	}
	if arrived {
		return o.Deliver()
	}
	if o.Status() == order.InTransit {
		return o.MarkShipped()
	}
	return nil
}

func (s MotionService) move(o *order.Order) error {
	if o.HasRoute() {
		waypoint, ok := o.NextWaypoint()
		if !ok {
			// Route exhausted without reaching the threshold; the last
			// waypoint is treated as arrival.
			return o.Deliver()
		}
		if err := o.MoveTo(waypoint); err != nil {
			return err
		}
		o.MarkWaypointReached()
		return nil
	}

	position := o.Source()
	if c := o.Current(); c != nil {
		position = *c
	}
	next, err := position.StepToward(o.Destination(), s.stepSize, s.randFloat)
	if err != nil {
		return err
	}
	return o.MoveTo(next)
}
