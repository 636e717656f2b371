package simulation_test

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"tracker/internal/core/application/simulation"
	"tracker/internal/core/domain/model/kernel"
	"tracker/internal/core/domain/model/order"
	"tracker/internal/core/domain/model/tracking"
	"tracker/internal/core/domain/services"
	"tracker/internal/core/ports"
	"tracker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory stand-in for the order storage shared by every
// unit of work the fake factory hands out.
type memoryStore struct {
	mu        sync.Mutex
	orders    map[string]*order.Order
	updateErr error
	// When set, the next Get consumes the gate and blocks on it. Used to
	// hold a tick open while a second one is attempted.
	getGate *repoGate
}

// repoGate lets a test observe that a repository read started and decide
// when it may finish.
type repoGate struct {
	entered chan struct{}
	release chan struct{}
}

func newRepoGate() *repoGate {
	return &repoGate{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func newMemoryStore() *memoryStore {
	return &memoryStore{orders: make(map[string]*order.Order)}
}

func (s *memoryStore) put(o *order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID()] = o
}

func (s *memoryStore) get(t *testing.T, id string) *order.Order {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	require.True(t, ok)
	return o
}

type memoryUoWFactory struct{ store *memoryStore }

func (f memoryUoWFactory) Create() ports.UnitOfWork {
	return &memoryUoW{store: f.store}
}

type memoryUoW struct{ store *memoryStore }

func (u *memoryUoW) Begin(context.Context) error    { return nil }
func (u *memoryUoW) Commit(context.Context) error   { return nil }
func (u *memoryUoW) Rollback(context.Context) error { return nil }
func (u *memoryUoW) OrderRepository() ports.OrderRepository {
	return &memoryRepo{store: u.store}
}

type memoryRepo struct{ store *memoryStore }

func (r *memoryRepo) Add(_ context.Context, o *order.Order) error {
	r.store.put(o)
	return nil
}

func (r *memoryRepo) Update(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.updateErr != nil {
		return r.store.updateErr
	}
	r.store.orders[o.ID()] = o
	return nil
}

func (r *memoryRepo) Get(_ context.Context, id string) (*order.Order, error) {
	r.store.mu.Lock()
	gate := r.store.getGate
	r.store.getGate = nil
	o, ok := r.store.orders[id]
	r.store.mu.Unlock()

	if gate != nil {
		close(gate.entered)
		<-gate.release
	}
	if !ok {
		return nil, errs.NewObjectNotFoundError("orderId", id)
	}
	return cloneOrder(o)
}

func (r *memoryRepo) GetAllActive(context.Context) ([]*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []*order.Order
	for _, o := range r.store.orders {
		if o.IsDelivered() {
			continue
		}
		clone, err := cloneOrder(o)
		if err != nil {
			return nil, err
		}
		result = append(result, clone)
	}
	return result, nil
}

// cloneOrder rebuilds the aggregate the way a repository load would.
func cloneOrder(o *order.Order) (*order.Order, error) {
	return order.RestoreOrder(
		o.ID(), o.Items(), o.TruckID(), o.CreatedAt(),
		o.Source(), o.Destination(), o.Current(),
		o.Route(), o.RouteNext(), o.Assignment(), o.Status(),
	)
}

type capturePublisher struct {
	mu     sync.Mutex
	events []tracking.LocationEvent
	err    error
}

func (p *capturePublisher) Publish(e tracking.LocationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) all() []tracking.LocationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]tracking.LocationEvent(nil), p.events...)
}

func mustPoint(t *testing.T, lat, lon float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	return p
}

func newTestOrder(t *testing.T, id string) *order.Order {
	t.Helper()
	o, err := order.NewOrder(id, nil, "", time.Now(),
		mustPoint(t, 17.3850, 78.4867),
		mustPoint(t, 17.4065, 78.4772))
	require.NoError(t, err)
	return o
}

type fixture struct {
	engine    *simulation.Engine
	store     *memoryStore
	publisher *capturePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	seeded := rand.New(rand.NewPCG(3, 5))
	motion, err := services.NewMotionService(kernel.DefaultEpsilon, 0.005, seeded.Float64)
	require.NoError(t, err)

	store := newMemoryStore()
	publisher := &capturePublisher{}
	engine, err := simulation.NewEngine(
		memoryUoWFactory{store: store},
		publisher,
		motion,
		slog.New(slog.DiscardHandler),
	)
	require.NoError(t, err)

	return &fixture{engine: engine, store: store, publisher: publisher}
}

func (f *fixture) register(t *testing.T, o *order.Order) {
	t.Helper()
	f.store.put(o)
	require.NoError(t, f.engine.Register(o))
}

func TestEngine_Tick_FirstStepAnnouncesTransit(t *testing.T) {
	f := newFixture(t)
	o := newTestOrder(t, "ord-1")
	f.register(t, o)
	require.NoError(t, f.engine.Activate("ord-1"))

	require.NoError(t, f.engine.Tick(t.Context(), "ord-1"))

	events := f.publisher.all()
	require.Len(t, events, 1)
	assert.Equal(t, "ord-1", events[0].OrderID)
	assert.Equal(t, order.InTransit, events[0].Status)
	assert.Equal(t, events[0].Source, events[0].Current)

	assert.Equal(t, order.InTransit, f.store.get(t, "ord-1").Status())
}

func TestEngine_Tick_RouteReplayToDelivery(t *testing.T) {
	f := newFixture(t)
	o := newTestOrder(t, "ord-1")
	route := []kernel.GeoPoint{
		mustPoint(t, 17.3950, 78.4820),
		mustPoint(t, 17.4065, 78.4772),
	}
	require.NoError(t, o.AttachRoute(route))
	f.register(t, o)
	require.NoError(t, f.engine.Activate("ord-1"))

	ctx := t.Context()
	for i := 0; i < 3; i++ {
		require.NoError(t, f.engine.Tick(ctx, "ord-1"))
	}

	events := f.publisher.all()
	require.Len(t, events, 3)
	assert.Equal(t, order.InTransit, events[0].Status)
	assert.Equal(t, order.Shipped, events[1].Status)
	assert.Equal(t, route[0], events[1].Current)
	assert.Equal(t, order.Delivered, events[2].Status)
	assert.Equal(t, events[2].Destination, events[2].Current)

	// Delivery removes the order from the active set.
	assert.False(t, f.engine.IsActive("ord-1"))
	assert.Empty(t, f.engine.ActiveIDs())
}

func TestEngine_TickAll_RandomWalkRunsToCompletion(t *testing.T) {
	f := newFixture(t)
	f.register(t, newTestOrder(t, "ord-1"))
	f.register(t, newTestOrder(t, "ord-2"))
	require.NoError(t, f.engine.Activate("ord-1"))
	require.NoError(t, f.engine.Activate("ord-2"))

	ctx := t.Context()
	for i := 0; i < 300 && len(f.engine.ActiveIDs()) > 0; i++ {
		f.engine.TickAll(ctx)
	}

	require.Empty(t, f.engine.ActiveIDs(), "all orders must eventually be delivered")
	for _, id := range []string{"ord-1", "ord-2"} {
		o := f.store.get(t, id)
		assert.True(t, o.IsDelivered())
		assert.Equal(t, o.Destination(), *o.Current())
	}

	// Events for each order keep their emission order.
	var last = map[string]tracking.LocationEvent{}
	for _, e := range f.publisher.all() {
		if prev, ok := last[e.OrderID]; ok {
			assert.GreaterOrEqual(t, e.Status, prev.Status)
		}
		last[e.OrderID] = e
	}
	assert.Equal(t, order.Delivered, last["ord-1"].Status)
	assert.Equal(t, order.Delivered, last["ord-2"].Status)
}

func TestEngine_Tick_ConflictWhilePreviousTickRuns(t *testing.T) {
	f := newFixture(t)
	f.register(t, newTestOrder(t, "ord-1"))
	require.NoError(t, f.engine.Activate("ord-1"))

	gate := newRepoGate()
	f.store.mu.Lock()
	f.store.getGate = gate
	f.store.mu.Unlock()

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- f.engine.Tick(context.Background(), "ord-1")
	}()

	// Wait for the first tick to reach the blocked repository read, then
	// attempt an overlapping one.
	<-gate.entered
	err := f.engine.Tick(context.Background(), "ord-1")
	require.ErrorIs(t, err, simulation.ErrTickInProgress)

	close(gate.release)
	require.NoError(t, <-firstDone)
	require.Len(t, f.publisher.all(), 1, "only the first tick may emit an event")
}

func TestEngine_Tick_SkipsDeactivatedOrder(t *testing.T) {
	f := newFixture(t)
	f.register(t, newTestOrder(t, "ord-1"))
	require.NoError(t, f.engine.Activate("ord-1"))
	require.NoError(t, f.engine.Deactivate("ord-1"))

	require.NoError(t, f.engine.Tick(t.Context(), "ord-1"))

	assert.Empty(t, f.publisher.all())
	assert.Equal(t, order.Created, f.store.get(t, "ord-1").Status())
}

func TestEngine_Tick_PersistenceFailureEmitsNoEvent(t *testing.T) {
	f := newFixture(t)
	f.register(t, newTestOrder(t, "ord-1"))
	require.NoError(t, f.engine.Activate("ord-1"))

	f.store.updateErr = errors.New("connection reset")

	require.Error(t, f.engine.Tick(t.Context(), "ord-1"))
	assert.Empty(t, f.publisher.all())
	assert.Equal(t, order.Created, f.store.get(t, "ord-1").Status())
}

func TestEngine_Tick_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.register(t, newTestOrder(t, "ord-1"))
	require.NoError(t, f.engine.Activate("ord-1"))

	f.publisher.err = errors.New("broker unavailable")

	require.NoError(t, f.engine.Tick(t.Context(), "ord-1"))
	assert.Equal(t, order.InTransit, f.store.get(t, "ord-1").Status())
}

func TestEngine_Tick_UnknownOrder(t *testing.T) {
	f := newFixture(t)
	err := f.engine.Tick(t.Context(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestEngine_Restore(t *testing.T) {
	f := newFixture(t)

	created := newTestOrder(t, "ord-created")
	inFlight := newTestOrder(t, "ord-moving")
	require.NoError(t, inFlight.StartTransit())
	require.NoError(t, inFlight.MarkShipped())
	delivered := newTestOrder(t, "ord-done")
	require.NoError(t, delivered.StartTransit())
	require.NoError(t, delivered.Deliver())

	f.store.put(created)
	f.store.put(inFlight)
	f.store.put(delivered)

	require.NoError(t, f.engine.Restore(t.Context()))

	assert.False(t, f.engine.IsActive("ord-created"))
	assert.True(t, f.engine.IsActive("ord-moving"))
	assert.False(t, f.engine.IsActive("ord-done"))

	_, err := f.engine.Snapshot("ord-created")
	require.NoError(t, err)
	_, err = f.engine.Snapshot("ord-done")
	require.Error(t, err, "delivered orders are not restored")
}

func TestEngine_Announce(t *testing.T) {
	f := newFixture(t)
	o := newTestOrder(t, "ord-1")
	f.register(t, o)

	f.engine.Announce(o)

	events := f.publisher.all()
	require.Len(t, events, 1)
	assert.Equal(t, order.Created, events[0].Status)
	assert.Equal(t, events[0].Source, events[0].Current)
}
