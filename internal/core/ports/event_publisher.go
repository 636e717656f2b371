package ports

import (
	"tracker/internal/core/domain/model/tracking"
)

// EventPublisher delivers location events to the message bus. Publication
// happens after the owning transaction commits; implementations must preserve
// per-order ordering of events.
type EventPublisher interface {
	Publish(event tracking.LocationEvent) error
}
