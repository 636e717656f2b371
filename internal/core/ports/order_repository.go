// Package ports defines the contracts between the application core and
// infrastructure adapters. These interfaces establish dependency inversion
// boundaries for persistence, routing, caching, and event publication.
package ports

import (
	"context"

	"tracker/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Provides methods for storing, retrieving, and querying order entities
// based on their status.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The order must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	// Returns errs.ObjectNotFoundError when no such order exists.
	Get(ctx context.Context, id string) (*order.Order, error)

	// GetAllActive retrieves every order that has not reached the terminal
	// Delivered status. Used to rebuild the simulation set on startup.
	GetAllActive(ctx context.Context) ([]*order.Order, error)
}
