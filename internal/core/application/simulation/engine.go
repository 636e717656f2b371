package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"tracker/internal/core/domain/model/order"
	"tracker/internal/core/domain/model/tracking"
	"tracker/internal/core/domain/services"
	"tracker/internal/core/ports"
	"tracker/internal/pkg/errs"
)

// ErrTickInProgress is returned when a tick is requested for an order whose
// previous tick has not finished yet. The caller is expected to skip the
// order and retry on the next scheduling round.
var ErrTickInProgress = errors.New("tick already in progress")

// Engine owns the set of simulated orders and drives their movement.
//
// Every known order has a slot holding its activation flag and the last
// persisted state. A tick loads the order from storage, advances it through
// the MotionService, persists the result and, only after the transaction
// commits, publishes a location event. Per-slot locking guarantees at most
// one in-flight tick per order while ticks for distinct orders run
// concurrently.
type Engine struct {
	uowFactory ports.UnitOfWorkFactory
	publisher  ports.EventPublisher
	motion     services.MotionService
	logger     *slog.Logger
	now        func() time.Time

	mu    sync.RWMutex
	slots map[string]*slot
}

type slot struct {
	// tickMu serializes ticks for a single order. Acquired with TryLock so
	// an overlapping scheduling round reports a conflict instead of queueing.
	tickMu sync.Mutex

	mu     sync.RWMutex
	active bool
	record *order.Order
}

func (s *slot) isActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *slot) setActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *slot) snapshot() *order.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record
}

func (s *slot) setRecord(o *order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = o
}

// NewEngine creates an Engine with no registered orders.
func NewEngine(
	uowFactory ports.UnitOfWorkFactory,
	publisher ports.EventPublisher,
	motion services.MotionService,
	logger *slog.Logger,
) (*Engine, error) {
	if uowFactory == nil {
		return nil, errs.NewValueIsRequiredError("uowFactory")
	}
	if publisher == nil {
		return nil, errs.NewValueIsRequiredError("publisher")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		uowFactory: uowFactory,
		publisher:  publisher,
		motion:     motion,
		logger:     logger.With("component", "simulation"),
		now:        time.Now,
		slots:      make(map[string]*slot),
	}, nil
}

// Register adds the order to the simulation set in a deactivated state.
// Registering an already known order refreshes its cached state and keeps
// the activation flag untouched.
func (e *Engine) Register(o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.slots[o.ID()]; ok {
		s.setRecord(o)
		return nil
	}
	e.slots[o.ID()] = &slot{record: o}
	return nil
}

// Restore loads every non-delivered order from storage and rebuilds the
// simulation set. Orders that had already left their source resume movement
// immediately; freshly created ones stay inactive until tracking is enabled.
func (e *Engine) Restore(ctx context.Context) error {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders, err := uow.OrderRepository().GetAllActive(ctx)
	if err != nil {
		return err
	}

	for _, o := range orders {
		if err = e.Register(o); err != nil {
			return err
		}
		if o.Status() != order.Created {
			if err = e.Activate(o.ID()); err != nil {
				return err
			}
		}
	}

	e.logger.Info("simulation set restored", "orders", len(orders), "active", len(e.ActiveIDs()))
	return nil
}

// Activate enables ticking for the order.
func (e *Engine) Activate(id string) error {
	s, err := e.slot(id)
	if err != nil {
		return err
	}
	s.setActive(true)
	return nil
}

// Deactivate disables ticking for the order. The order stays registered and
// can be re-activated later.
func (e *Engine) Deactivate(id string) error {
	s, err := e.slot(id)
	if err != nil {
		return err
	}
	s.setActive(false)
	return nil
}

// IsActive reports whether the order currently receives ticks.
func (e *Engine) IsActive(id string) bool {
	s, err := e.slot(id)
	if err != nil {
		return false
	}
	return s.isActive()
}

// ActiveIDs returns the identifiers of all activated orders in a stable order.
func (e *Engine) ActiveIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.slots))
	for id, s := range e.slots {
		if s.isActive() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns the last known state of a registered order.
func (e *Engine) Snapshot(id string) (*order.Order, error) {
	s, err := e.slot(id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// Announce publishes the current position of the order without advancing it.
// Used to emit the initial event right after registration. Publish failures
// are logged and swallowed.
func (e *Engine) Announce(o *order.Order) {
	e.publish(o)
}

// Tick advances a single order by one simulation step.
//
// The fresh aggregate is loaded from storage, moved, and persisted before
// the location event goes out; a failed transaction produces no event.
// Returns ErrTickInProgress when the previous tick of the same order is
// still running. Deactivated orders are skipped silently.
func (e *Engine) Tick(ctx context.Context, id string) error {
	s, err := e.slot(id)
	if err != nil {
		return err
	}

	if !s.tickMu.TryLock() {
		return fmt.Errorf("order %s: %w", id, ErrTickInProgress)
	}
	defer s.tickMu.Unlock()

	if !s.isActive() {
		return nil
	}

	uow := e.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	o, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err = e.motion.Advance(o); err != nil {
		return err
	}

	if err = repo.Update(ctx, o); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	s.setRecord(o)
	if o.IsDelivered() {
		s.setActive(false)
	}

	e.publish(o)
	return nil
}

// TickAll runs one simulation step for every activated order. Ticks run
// concurrently across orders and an individual failure never stops the
// round; conflicts with a still-running tick are skipped quietly.
func (e *Engine) TickAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, id := range e.ActiveIDs() {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			err := e.Tick(ctx, id)
			switch {
			case err == nil:
			case errors.Is(err, ErrTickInProgress):
				e.logger.Debug("tick skipped", "orderId", id)
			default:
				e.logger.Error("tick failed", "orderId", id, "error", err)
			}
		}(id)
	}
	wg.Wait()
}

func (e *Engine) slot(id string) (*slot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, ok := e.slots[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("orderId", id)
	}
	return s, nil
}

func (e *Engine) publish(o *order.Order) {
	event, err := tracking.NewLocationEvent(o, e.now())
	if err != nil {
		e.logger.Error("build location event", "orderId", o.ID(), "error", err)
		return
	}

	if err = e.publisher.Publish(event); err != nil {
		e.logger.Error("publish location event", "orderId", o.ID(), "error", err)
	}
}
