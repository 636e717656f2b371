// Package natsbus implements the inbound side of the event pipeline.
// The relay consumes location events from the message bus and fans them out
// to live watchers, such as server-sent event streams.
package natsbus

import (
	"fmt"
	"log/slog"
	"sync"

	"tracker/internal/core/domain/model/tracking"
	"tracker/internal/pkg/errs"

	"github.com/nats-io/nats.go"
)

// watcherBuffer bounds each watcher channel. A watcher that cannot keep up
// loses events instead of stalling the relay.
const watcherBuffer = 16

// Relay subscribes to the location topic and distributes decoded events to
// registered watchers. A watcher follows either a single order or, with an
// empty order id, every order.
type Relay struct {
	conn   *nats.Conn
	topic  string
	logger *slog.Logger

	mu       sync.Mutex
	sub      *nats.Subscription
	nextID   int
	watchers map[string]map[int]chan tracking.LocationEvent
	closed   bool
}

// NewRelay creates a Relay for the given topic.
func NewRelay(conn *nats.Conn, topic string, logger *slog.Logger) (*Relay, error) {
	if conn == nil {
		return nil, errs.NewValueIsRequiredError("conn")
	}
	if topic == "" {
		topic = tracking.Topic
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Relay{
		conn:     conn,
		topic:    topic,
		logger:   logger.With("component", "relay"),
		watchers: make(map[string]map[int]chan tracking.LocationEvent),
	}, nil
}

// Start subscribes to every order subject under the topic.
func (r *Relay) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errs.NewValueIsInvalidError("relay is closed")
	}
	if r.sub != nil {
		return nil
	}

	sub, err := r.conn.Subscribe(r.topic+".>", r.dispatch)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", r.topic, err)
	}

	r.sub = sub
	return nil
}

// Watch registers a live feed for the given order; an empty orderID follows
// all orders. The returned cancel function must be called when the watcher
// goes away; it closes the channel.
func (r *Relay) Watch(orderID string) (<-chan tracking.LocationEvent, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, nil, errs.NewValueIsInvalidError("relay is closed")
	}

	id := r.nextID
	r.nextID++

	ch := make(chan tracking.LocationEvent, watcherBuffer)
	if r.watchers[orderID] == nil {
		r.watchers[orderID] = make(map[int]chan tracking.LocationEvent)
	}
	r.watchers[orderID][id] = ch

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		group, ok := r.watchers[orderID]
		if !ok {
			return
		}
		if c, live := group[id]; live {
			delete(group, id)
			close(c)
		}
		if len(group) == 0 {
			delete(r.watchers, orderID)
		}
	}

	return ch, cancel, nil
}

// Close drains the subscription and closes every watcher channel.
func (r *Relay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var err error
	if r.sub != nil {
		err = r.sub.Drain()
		r.sub = nil
	}

	for orderID, group := range r.watchers {
		for id, ch := range group {
			delete(group, id)
			close(ch)
		}
		delete(r.watchers, orderID)
	}

	return err
}

func (r *Relay) dispatch(msg *nats.Msg) {
	event, err := tracking.DecodeLocationEvent(string(msg.Data))
	if err != nil {
		r.logger.Error("drop malformed event", "subject", msg.Subject, "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.deliver(r.watchers[event.OrderID], event)
	r.deliver(r.watchers[""], event)
}

// deliver never blocks; a full watcher loses the event.
func (r *Relay) deliver(group map[int]chan tracking.LocationEvent, event tracking.LocationEvent) {
	for _, ch := range group {
		select {
		case ch <- event:
		default:
			r.logger.Debug("watcher lagging, event dropped", "orderId", event.OrderID)
		}
	}
}
