package kernel

import (
	"errors"
	"fmt"
	"math"

	"tracker/internal/pkg/errs"
	"tracker/internal/pkg/guard"
)

const (
	// MinLatitude is the southernmost valid latitude in degrees.
	MinLatitude = -90.0
	// MaxLatitude is the northernmost valid latitude in degrees.
	MaxLatitude = 90.0
	// MinLongitude is the westernmost valid longitude in degrees.
	MinLongitude = -180.0
	// MaxLongitude is the easternmost valid longitude in degrees.
	MaxLongitude = 180.0

	// EarthRadiusKm is the mean Earth radius used for great-circle distances.
	EarthRadiusKm = 6371.0

	// DefaultEpsilon is the proximity threshold in degrees (~11 m) used to
	// decide that two points occupy the same place.
	DefaultEpsilon = 1e-4
)

// ErrGeoPointIsNotConstructed is returned when attempting to use an
// improperly initialized GeoPoint. Points must be created via NewGeoPoint.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint constructor")

// GeoPoint represents a WGS84 coordinate with validated latitude and
// longitude. GeoPoint is an immutable value object; the zero value is
// invalid and fails validation.
//
// Example:
//
//	p, err := kernel.NewGeoPoint(17.3850, 78.4867)
//	if err != nil {
//	    // handle validation error
//	}
//	fmt.Println(p) // Output: GeoPoint(17.385000,78.486700)
type GeoPoint struct { //nolint:recvcheck //using for validation
	lat   float64
	lon   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint creates a GeoPoint from latitude and longitude in degrees.
// Latitude must be within [-90, 90] and longitude within [-180, 180];
// returns an error if either is outside its bounds.
func NewGeoPoint(lat float64, lon float64) (GeoPoint, error) {
	p := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(p.setLat(lat), p.setLon(lon)); err != nil {
		return GeoPoint{}, err
	}

	return p, nil
}

// Validate checks that the GeoPoint was created through its constructor.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Latitude returns the latitude in degrees.
func (p GeoPoint) Latitude() float64 {
	return p.lat
}

// Longitude returns the longitude in degrees.
func (p GeoPoint) Longitude() float64 {
	return p.lon
}

// String implements fmt.Stringer with six-decimal precision, matching the
// precision used on the wire.
func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%.6f,%.6f)", p.lat, p.lon)
}

// DistanceKm returns the haversine great-circle distance to other in
// kilometers. Both points must be properly constructed.
func (p GeoPoint) DistanceKm(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := p.lat * math.Pi / 180
	lat2 := other.lat * math.Pi / 180
	dLat := (other.lat - p.lat) * math.Pi / 180
	dLon := (other.lon - p.lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c, nil
}

// IsNear reports whether both coordinate deltas to other are strictly below
// epsilon degrees. A non-positive epsilon falls back to DefaultEpsilon.
func (p GeoPoint) IsNear(other GeoPoint, epsilon float64) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}

	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return math.Abs(p.lat-other.lat) < epsilon && math.Abs(p.lon-other.lon) < epsilon, nil
}

// StepToward returns a new point moved toward target by at most stepSize
// degrees per axis. Each axis advances by three quarters of a step plus
// uniform noise in ±stepSize/4, and snaps onto the target once it is within
// a single step, so repeated calls always converge. randFloat must return
// values in [0, 1).
func (p GeoPoint) StepToward(target GeoPoint, stepSize float64, randFloat func() float64) (GeoPoint, error) {
	if err := errors.Join(p.Validate(), target.Validate()); err != nil {
		return GeoPoint{}, err
	}
	if stepSize <= 0 {
		return GeoPoint{}, errs.NewValueIsInvalidError("stepSize")
	}

	lat := stepAxis(p.lat, target.lat, stepSize, randFloat)
	lon := stepAxis(p.lon, target.lon, stepSize, randFloat)

	return NewGeoPoint(
		clamp(lat, MinLatitude, MaxLatitude),
		clamp(lon, MinLongitude, MaxLongitude),
	)
}

func stepAxis(current, target, step float64, randFloat func() float64) float64 {
	delta := target - current
	if math.Abs(delta) <= step {
		return target
	}

	dir := 1.0
	if delta < 0 {
		dir = -1.0
	}
	noise := (randFloat() - 0.5) * step / 2
	return current + dir*step*0.75 + noise
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// setLat sets the latitude with validation.
// Pointer receiver is intentional on these private setters so construction
// can self-encapsulate its range checks, as elsewhere in the domain model.
func (p *GeoPoint) setLat(lat float64) error {
	if lat < MinLatitude || lat > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", lat, MinLatitude, MaxLatitude)
	}

	p.lat = lat
	return nil
}

func (p *GeoPoint) setLon(lon float64) error {
	if lon < MinLongitude || lon > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", lon, MinLongitude, MaxLongitude)
	}

	p.lon = lon
	return nil
}
