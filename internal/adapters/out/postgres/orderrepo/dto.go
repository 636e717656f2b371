// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"tracker/internal/core/domain/model/kernel"
	"tracker/internal/core/domain/model/order"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Maps order domain entities to relational database tables with proper indexing
// for efficient querying by status.
type OrderDTO struct {
	ID             string        `gorm:"type:varchar(64);primaryKey"`
	Items          []string      `gorm:"serializer:json;type:jsonb"`
	TruckID        string        `gorm:"type:varchar(64)"`
	CreatedAt      time.Time
	SourceLat      float64
	SourceLon      float64
	CurrentLat     *float64
	CurrentLon     *float64
	DestinationLat float64
	DestinationLon float64
	Route          []GeoPointDTO `gorm:"serializer:json;type:jsonb"`
	RouteNext      int
	Assignment     string `gorm:"type:varchar(128)"`
	Status         int    `gorm:"index"`
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// GeoPointDTO represents a single route waypoint serialized into the route column.
type GeoPointDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// fromDomain converts an order domain aggregate to its database representation.
// The current position stays NULL until the order starts moving.
func fromDomain(aggregate *order.Order) OrderDTO {
	var currentLat, currentLon *float64
	if c := aggregate.Current(); c != nil {
		lat, lon := c.Latitude(), c.Longitude()
		currentLat, currentLon = &lat, &lon
	}

	route := make([]GeoPointDTO, 0, len(aggregate.Route()))
	for _, p := range aggregate.Route() {
		route = append(route, GeoPointDTO{Lat: p.Latitude(), Lon: p.Longitude()})
	}

	return OrderDTO{
		ID:             aggregate.ID(),
		Items:          aggregate.Items(),
		TruckID:        aggregate.TruckID(),
		CreatedAt:      aggregate.CreatedAt(),
		SourceLat:      aggregate.Source().Latitude(),
		SourceLon:      aggregate.Source().Longitude(),
		CurrentLat:     currentLat,
		CurrentLon:     currentLon,
		DestinationLat: aggregate.Destination().Latitude(),
		DestinationLon: aggregate.Destination().Longitude(),
		Route:          route,
		RouteNext:      aggregate.RouteNext(),
		Assignment:     aggregate.Assignment(),
		Status:         int(aggregate.Status()),
	}
}

// toDomain converts a database DTO to an order domain aggregate.
// Reconstructs the complete aggregate including route progress using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	source, err := kernel.NewGeoPoint(dto.SourceLat, dto.SourceLon)
	if err != nil {
		return nil, err
	}

	destination, err := kernel.NewGeoPoint(dto.DestinationLat, dto.DestinationLon)
	if err != nil {
		return nil, err
	}

	var current *kernel.GeoPoint
	if dto.CurrentLat != nil && dto.CurrentLon != nil {
		p, pointErr := kernel.NewGeoPoint(*dto.CurrentLat, *dto.CurrentLon)
		if pointErr != nil {
			return nil, pointErr
		}
		current = &p
	}

	route := make([]kernel.GeoPoint, 0, len(dto.Route))
	for _, wp := range dto.Route {
		p, pointErr := kernel.NewGeoPoint(wp.Lat, wp.Lon)
		if pointErr != nil {
			return nil, pointErr
		}
		route = append(route, p)
	}

	return order.RestoreOrder(
		dto.ID,
		dto.Items,
		dto.TruckID,
		dto.CreatedAt,
		source,
		destination,
		current,
		route,
		dto.RouteNext,
		dto.Assignment,
		order.Status(dto.Status),
	)
}
