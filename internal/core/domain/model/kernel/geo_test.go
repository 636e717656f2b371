package kernel_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"tracker/internal/core/domain/model/kernel"
	"tracker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"valid point", 17.3850, 78.4867, false},
		{"boundary north pole", 90, 0, false},
		{"boundary date line", 0, -180, false},
		{"latitude too large", 90.0001, 0, true},
		{"latitude too small", -91, 0, true},
		{"longitude too large", 0, 180.5, true},
		{"longitude too small", 0, -181, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := kernel.NewGeoPoint(tt.lat, tt.lon)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lat, p.Latitude())
			assert.Equal(t, tt.lon, p.Longitude())
		})
	}

	t.Run("zero value fails validation", func(t *testing.T) {
		var p kernel.GeoPoint
		require.Error(t, p.Validate())
	})
}

func TestGeoPoint_DistanceKm(t *testing.T) {
	t.Run("hyderabad city pair", func(t *testing.T) {
		src, err := kernel.NewGeoPoint(17.3850, 78.4867)
		require.NoError(t, err)
		dst, err := kernel.NewGeoPoint(17.4065, 78.4772)
		require.NoError(t, err)

		d, err := src.DistanceKm(dst)
		require.NoError(t, err)
		assert.InDelta(t, 2.59, d, 0.05)

		// Distance is symmetric.
		back, err := dst.DistanceKm(src)
		require.NoError(t, err)
		assert.InDelta(t, d, back, 1e-9)
	})

	t.Run("same point is zero", func(t *testing.T) {
		p, err := kernel.NewGeoPoint(37.7749, -122.4194)
		require.NoError(t, err)

		d, err := p.DistanceKm(p)
		require.NoError(t, err)
		assert.InDelta(t, 0, d, 1e-9)
	})

	t.Run("unconstructed point is rejected", func(t *testing.T) {
		p, err := kernel.NewGeoPoint(1, 1)
		require.NoError(t, err)

		_, err = p.DistanceKm(kernel.GeoPoint{})
		require.Error(t, err)
	})
}

func TestGeoPoint_IsNear(t *testing.T) {
	base, err := kernel.NewGeoPoint(17.3850, 78.4867)
	require.NoError(t, err)

	t.Run("within default epsilon", func(t *testing.T) {
		close, err := kernel.NewGeoPoint(17.38505, 78.48665)
		require.NoError(t, err)

		near, err := base.IsNear(close, kernel.DefaultEpsilon)
		require.NoError(t, err)
		assert.True(t, near)
	})

	t.Run("one axis outside epsilon", func(t *testing.T) {
		far, err := kernel.NewGeoPoint(17.3850, 78.4870)
		require.NoError(t, err)

		near, err := base.IsNear(far, kernel.DefaultEpsilon)
		require.NoError(t, err)
		assert.False(t, near)
	})

	t.Run("non-positive epsilon falls back to default", func(t *testing.T) {
		near, err := base.IsNear(base, 0)
		require.NoError(t, err)
		assert.True(t, near)
	})
}

func TestGeoPoint_StepToward(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 13))
	step := 0.001

	src, err := kernel.NewGeoPoint(17.3850, 78.4867)
	require.NoError(t, err)
	dst, err := kernel.NewGeoPoint(17.4065, 78.4772)
	require.NoError(t, err)

	t.Run("every step is bounded and makes progress", func(t *testing.T) {
		cur := src
		for i := 0; i < 50; i++ {
			next, err := cur.StepToward(dst, step, rng.Float64)
			require.NoError(t, err)

			assert.LessOrEqual(t, math.Abs(next.Latitude()-cur.Latitude()), step+1e-12)
			assert.LessOrEqual(t, math.Abs(next.Longitude()-cur.Longitude()), step+1e-12)

			before := math.Abs(dst.Latitude()-cur.Latitude()) + math.Abs(dst.Longitude()-cur.Longitude())
			after := math.Abs(dst.Latitude()-next.Latitude()) + math.Abs(dst.Longitude()-next.Longitude())
			assert.Less(t, after, before+1e-12)

			cur = next
		}
	})

	t.Run("snaps onto target within one step", func(t *testing.T) {
		almost, err := kernel.NewGeoPoint(dst.Latitude()-step/2, dst.Longitude()+step/2)
		require.NoError(t, err)

		next, err := almost.StepToward(dst, step, rng.Float64)
		require.NoError(t, err)
		assert.Equal(t, dst.Latitude(), next.Latitude())
		assert.Equal(t, dst.Longitude(), next.Longitude())
	})

	t.Run("converges to destination", func(t *testing.T) {
		cur := src
		arrived := false
		for i := 0; i < 200; i++ {
			next, err := cur.StepToward(dst, step, rng.Float64)
			require.NoError(t, err)
			cur = next

			near, err := cur.IsNear(dst, kernel.DefaultEpsilon)
			require.NoError(t, err)
			if near {
				arrived = true
				break
			}
		}
		assert.True(t, arrived, "walk did not reach destination within 200 steps")
	})

	t.Run("invalid step size", func(t *testing.T) {
		_, err := src.StepToward(dst, 0, rng.Float64)
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}
