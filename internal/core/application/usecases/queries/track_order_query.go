package queries

import (
	"errors"

	"tracker/internal/core/domain/model/kernel"
	"tracker/internal/core/domain/model/order"
	"tracker/internal/pkg/guard"
)

var (
	ErrTrackOrderQueryIsNotConstructed = errors.New(
		"TrackOrderQuery must be created via NewTrackOrderQuery constructor",
	)
	ErrTrackOrderIDIsRequired = errors.New("orderID is required")
)

// TrackOrderQuery retrieves the current position of a single order together
// with the remaining distance to its destination.
//
// Example:
//
//	query, _ := NewTrackOrderQuery("ord-1")
//	handler := NewTrackOrderQueryHandler(db)
//
//	track, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to track order: %w", err)
//	}
//	fmt.Printf("%s is %.2f km from delivery\n", track.ID, track.DistanceToDestinationKm)
type TrackOrderQuery struct { //nolint:recvcheck //using for validation
	orderID string

	guard guard.ConstructorGuard
}

// NewTrackOrderQuery creates a query for a single order's position.
func NewTrackOrderQuery(orderID string) (TrackOrderQuery, error) {
	if orderID == "" {
		return TrackOrderQuery{}, ErrTrackOrderIDIsRequired
	}

	return TrackOrderQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrTrackOrderQueryIsNotConstructed if validation fails.
func (q TrackOrderQuery) Validate() error {
	return q.guard.Validate(ErrTrackOrderQueryIsNotConstructed)
}

// OrderID returns the identifier of the order to track.
func (q TrackOrderQuery) OrderID() string {
	return q.orderID
}

// TrackOrderQueryResponse represents the tracked position of one order.
type TrackOrderQueryResponse struct {
	ID                      string
	Source                  kernel.GeoPoint
	Current                 kernel.GeoPoint
	Destination             kernel.GeoPoint
	Status                  order.Status
	DistanceToDestinationKm float64
}
