package tracking

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tracker/internal/core/domain/model/kernel"
	"tracker/internal/core/domain/model/order"
	"tracker/internal/pkg/errs"
)

// Topic is the logical channel all location events are published to.
const Topic = "delivery-locations"

// fieldCount is the number of delimited fields in an encoded record.
const fieldCount = 9

// LocationEvent is a snapshot of an order's position at a point in time.
// It is the unit of publication and the payload relayed to live watchers.
type LocationEvent struct {
	OrderID     string
	Source      kernel.GeoPoint
	Current     kernel.GeoPoint
	Destination kernel.GeoPoint
	Status      order.Status
	Timestamp   int64
}

// NewLocationEvent captures the order's state at the given instant.
// Orders that have not started moving yet report the source as their
// current position.
func NewLocationEvent(o *order.Order, at time.Time) (LocationEvent, error) {
	if err := o.Validate(); err != nil {
		return LocationEvent{}, err
	}

	current := o.Source()
	if c := o.Current(); c != nil {
		current = *c
	}
	if at.IsZero() {
		at = time.Now()
	}

	return LocationEvent{
		OrderID:     o.ID(),
		Source:      o.Source(),
		Current:     current,
		Destination: o.Destination(),
		Status:      o.Status(),
		Timestamp:   at.UnixMilli(),
	}, nil
}

// Encode renders the event as a colon-delimited record:
//
//	orderId:srcLat:srcLon:curLat:curLon:desLat:desLon:status:timestampMillis
//
// Coordinates are fixed to six decimal places.
func (e LocationEvent) Encode() string {
	return fmt.Sprintf("%s:%.6f:%.6f:%.6f:%.6f:%.6f:%.6f:%s:%d",
		e.OrderID,
		e.Source.Latitude(), e.Source.Longitude(),
		e.Current.Latitude(), e.Current.Longitude(),
		e.Destination.Latitude(), e.Destination.Longitude(),
		e.Status,
		e.Timestamp,
	)
}

// DecodeLocationEvent parses a colon-delimited record produced by Encode.
// Order identifiers may themselves contain colons, so the record is split
// from the right: the trailing eight fields are fixed and everything before
// them is the identifier.
func DecodeLocationEvent(record string) (LocationEvent, error) {
	parts := strings.Split(record, ":")
	if len(parts) < fieldCount {
		return LocationEvent{}, errs.NewValueIsInvalidError("record")
	}

	tail := parts[len(parts)-(fieldCount-1):]
	orderID := strings.Join(parts[:len(parts)-(fieldCount-1)], ":")
	if orderID == "" {
		return LocationEvent{}, errs.NewValueIsRequiredError("orderId")
	}

	coords := make([]float64, 6)
	for i := range coords {
		v, err := strconv.ParseFloat(tail[i], 64)
		if err != nil {
			return LocationEvent{}, errs.NewValueIsInvalidErrorWithCause("record", err)
		}
		coords[i] = v
	}

	source, err := kernel.NewGeoPoint(coords[0], coords[1])
	if err != nil {
		return LocationEvent{}, err
	}
	current, err := kernel.NewGeoPoint(coords[2], coords[3])
	if err != nil {
		return LocationEvent{}, err
	}
	destination, err := kernel.NewGeoPoint(coords[4], coords[5])
	if err != nil {
		return LocationEvent{}, err
	}

	status, err := order.ParseStatus(tail[6])
	if err != nil {
		return LocationEvent{}, err
	}

	ts, err := strconv.ParseInt(tail[7], 10, 64)
	if err != nil {
		return LocationEvent{}, errs.NewValueIsInvalidErrorWithCause("timestamp", err)
	}

	return LocationEvent{
		OrderID:     orderID,
		Source:      source,
		Current:     current,
		Destination: destination,
		Status:      status,
		Timestamp:   ts,
	}, nil
}
