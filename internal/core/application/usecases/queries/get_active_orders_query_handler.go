package queries

import (
	"context"
	"time"

	"tracker/internal/core/domain/model/kernel"
	"tracker/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// GetActiveOrdersQueryHandler retrieves in-flight orders from the database.
// Filters out delivered orders to provide the current simulation workload.
type GetActiveOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveOrdersQueryHandler creates a handler for active order queries.
// Requires a GORM database connection for query execution.
func NewGetActiveOrdersQueryHandler(db *gorm.DB) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{db: db}
}

// Handle executes the query to retrieve all non-delivered orders.
// Results are sorted by order ID for consistent output.
func (h GetActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveOrdersQuery,
) ([]GetActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetActiveOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			truck_id,
			source_lat,
			source_lon,
			current_lat,
			current_lon,
			destination_lat,
			destination_lon,
			status,
			created_at
		FROM orders
		WHERE status != ?
		ORDER BY id
	`, order.Delivered).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			resp               GetActiveOrdersQueryResponse
			srcLat, srcLon     float64
			curLat, curLon     *float64
			destLat, destLon   float64
			status             int
			createdAt          time.Time
		)

		err = rows.Scan(
			&resp.ID,
			&resp.TruckID,
			&srcLat, &srcLon,
			&curLat, &curLon,
			&destLat, &destLon,
			&status,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		if resp.Source, err = kernel.NewGeoPoint(srcLat, srcLon); err != nil {
			return nil, err
		}
		if resp.Destination, err = kernel.NewGeoPoint(destLat, destLon); err != nil {
			return nil, err
		}

		resp.Current = resp.Source
		if curLat != nil && curLon != nil {
			if resp.Current, err = kernel.NewGeoPoint(*curLat, *curLon); err != nil {
				return nil, err
			}
		}

		resp.Status = order.Status(status)
		resp.CreatedAt = createdAt
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
