package services_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"tracker/internal/core/domain/model/kernel"
	"tracker/internal/core/domain/model/order"
	"tracker/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPoint(t *testing.T, lat, lon float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	return p
}

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder("ord-1", nil, "", time.Now(),
		mustPoint(t, 17.3850, 78.4867),
		mustPoint(t, 17.4065, 78.4772))
	require.NoError(t, err)
	return o
}

func newMotion(t *testing.T) services.MotionService {
	t.Helper()
	seeded := rand.New(rand.NewPCG(11, 17))
	m, err := services.NewMotionService(kernel.DefaultEpsilon, 0.005, seeded.Float64)
	require.NoError(t, err)
	return m
}

func TestNewMotionService(t *testing.T) {
	t.Run("rejects non-positive step size", func(t *testing.T) {
		_, err := services.NewMotionService(1e-4, 0, nil)
		require.Error(t, err)
	})

	t.Run("defaults epsilon and random source", func(t *testing.T) {
		_, err := services.NewMotionService(0, 0.005, nil)
		require.NoError(t, err)
	})
}

func TestMotionService_Advance(t *testing.T) {
	t.Run("first step starts transit at the source", func(t *testing.T) {
		m := newMotion(t)
		o := newTestOrder(t)

		require.NoError(t, m.Advance(o))

		assert.Equal(t, order.InTransit, o.Status())
		require.NotNil(t, o.Current())
		assert.Equal(t, o.Source(), *o.Current())
	})

	t.Run("second step moves and promotes to Shipped", func(t *testing.T) {
		m := newMotion(t)
		o := newTestOrder(t)
		require.NoError(t, m.Advance(o))

		require.NoError(t, m.Advance(o))

		assert.Equal(t, order.Shipped, o.Status())
		assert.NotEqual(t, o.Source(), *o.Current())
	})

	t.Run("ignores delivered orders", func(t *testing.T) {
		m := newMotion(t)
		o := newTestOrder(t)
		require.NoError(t, o.StartTransit())
		require.NoError(t, o.Deliver())

		require.NoError(t, m.Advance(o))
		assert.Equal(t, order.Delivered, o.Status())
	})

	t.Run("rejects unconstructed order", func(t *testing.T) {
		m := newMotion(t)
		require.Error(t, m.Advance(&order.Order{}))
	})
}

func TestMotionService_Advance_RouteReplay(t *testing.T) {
	m := newMotion(t)
	o := newTestOrder(t)
	route := []kernel.GeoPoint{
		mustPoint(t, 17.3920, 78.4840),
		mustPoint(t, 17.4000, 78.4800),
		mustPoint(t, 17.4065, 78.4772),
	}
	require.NoError(t, o.AttachRoute(route))

	require.NoError(t, m.Advance(o)) // transit start

	require.NoError(t, m.Advance(o))
	assert.Equal(t, route[0], *o.Current())
	assert.Equal(t, order.Shipped, o.Status())

	require.NoError(t, m.Advance(o))
	assert.Equal(t, route[1], *o.Current())

	// The last waypoint coincides with the destination, so replaying it
	// completes the delivery.
	require.NoError(t, m.Advance(o))
	assert.Equal(t, order.Delivered, o.Status())
	assert.Equal(t, o.Destination(), *o.Current())
}

func TestMotionService_Advance_ExhaustedRouteDelivers(t *testing.T) {
	m := newMotion(t)
	o := newTestOrder(t)
	// A short route that ends well away from the destination.
	require.NoError(t, o.AttachRoute([]kernel.GeoPoint{mustPoint(t, 17.3900, 78.4850)}))

	require.NoError(t, m.Advance(o)) // transit start
	require.NoError(t, m.Advance(o)) // replay the only waypoint
	require.NoError(t, m.Advance(o)) // route exhausted

	assert.Equal(t, order.Delivered, o.Status())
	assert.Equal(t, o.Destination(), *o.Current())
}

func TestMotionService_Advance_RandomWalkConverges(t *testing.T) {
	m := newMotion(t)
	o := newTestOrder(t)

	const maxSteps = 200
	prev, err := o.DistanceToDestinationKm()
	require.NoError(t, err)

	for i := 0; i < maxSteps && !o.IsDelivered(); i++ {
		require.NoError(t, m.Advance(o))

		d, err := o.DistanceToDestinationKm()
		require.NoError(t, err)
		assert.LessOrEqual(t, d, prev+1e-9, "distance must not increase on step %d", i)
		prev = d
	}

	require.True(t, o.IsDelivered(), "order must reach its destination within %d steps", maxSteps)
	assert.Equal(t, o.Destination(), *o.Current())
}
