package queries

import (
	"context"
	"database/sql"
	"errors"

	"tracker/internal/core/domain/model/kernel"
	"tracker/internal/core/domain/model/order"
	"tracker/internal/pkg/errs"

	"gorm.io/gorm"
)

// TrackOrderQueryHandler retrieves the position of a single order from the
// database and computes the remaining distance to its destination.
type TrackOrderQueryHandler struct {
	db *gorm.DB
}

// NewTrackOrderQueryHandler creates a handler for single order tracking.
// Requires a GORM database connection for query execution.
func NewTrackOrderQueryHandler(db *gorm.DB) TrackOrderQueryHandler {
	return TrackOrderQueryHandler{db: db}
}

// Handle executes the tracking query.
// Returns errs.ObjectNotFoundError when the order does not exist.
func (h TrackOrderQueryHandler) Handle(
	ctx context.Context,
	query TrackOrderQuery,
) (TrackOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return TrackOrderQueryResponse{}, err
	}

	var (
		resp             TrackOrderQueryResponse
		srcLat, srcLon   float64
		curLat, curLon   *float64
		destLat, destLon float64
		status           int
	)

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			source_lat,
			source_lon,
			current_lat,
			current_lon,
			destination_lat,
			destination_lon,
			status
		FROM orders
		WHERE id = ?
	`, query.OrderID()).Row()

	err := row.Scan(
		&resp.ID,
		&srcLat, &srcLon,
		&curLat, &curLon,
		&destLat, &destLon,
		&status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return TrackOrderQueryResponse{}, errs.NewObjectNotFoundError("orderId", query.OrderID())
	}
	if err != nil {
		return TrackOrderQueryResponse{}, err
	}

	if resp.Source, err = kernel.NewGeoPoint(srcLat, srcLon); err != nil {
		return TrackOrderQueryResponse{}, err
	}
	if resp.Destination, err = kernel.NewGeoPoint(destLat, destLon); err != nil {
		return TrackOrderQueryResponse{}, err
	}

	resp.Current = resp.Source
	if curLat != nil && curLon != nil {
		if resp.Current, err = kernel.NewGeoPoint(*curLat, *curLon); err != nil {
			return TrackOrderQueryResponse{}, err
		}
	}

	resp.Status = order.Status(status)
	if resp.DistanceToDestinationKm, err = resp.Current.DistanceKm(resp.Destination); err != nil {
		return TrackOrderQueryResponse{}, err
	}

	return resp, nil
}
