package ports

import (
	"context"

	"tracker/internal/core/domain/model/kernel"
)

// RouteProvider fetches a driving route between two coordinates from an
// external directions service. The returned slice is ordered from the point
// after the source up to and including the destination.
type RouteProvider interface {
	FetchRoute(ctx context.Context, source kernel.GeoPoint, destination kernel.GeoPoint) ([]kernel.GeoPoint, error)
}

// RouteCache stores fetched routes keyed by their source and destination so
// repeated tracking requests for the same leg skip the directions service.
// A miss is reported with found == false, not an error.
type RouteCache interface {
	Get(ctx context.Context, source kernel.GeoPoint, destination kernel.GeoPoint) (route []kernel.GeoPoint, found bool, err error)
	Set(ctx context.Context, source kernel.GeoPoint, destination kernel.GeoPoint, route []kernel.GeoPoint) error
}
