package tumbler

import (
	"fmt"
	"math"
)

// LocationTolerance is the per-axis tolerance, in degrees, within which an
// observed coordinate matches the allowed one.
const LocationTolerance = 0.01

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat" msgpack:"lat" bson:"lat" xml:"lat"`
	Lon float64 `json:"lon" yaml:"lon" msgpack:"lon" bson:"lon" xml:"lon"`
}

// Validate checks that the coordinate is finite and within range.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinate, c.Lat)
	}
	if math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinate, c.Lon)
	}
	return nil
}

// Near reports whether o is within LocationTolerance of c on both axes.
func (c Coordinate) Near(o Coordinate) bool {
	return math.Abs(c.Lat-o.Lat) < LocationTolerance && math.Abs(c.Lon-o.Lon) < LocationTolerance
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%g,%g", c.Lat, c.Lon)
}

// LocationCondition gates decryption on an observed position.
// Its transforms are identity; the condition only gates.
type LocationCondition struct {
	allowed  Coordinate
	observed Coordinate
	known    bool
}

// Location returns a condition satisfied when observed is near allowed.
func Location(allowed, observed Coordinate) (*LocationCondition, error) {
	if err := allowed.Validate(); err != nil {
		return nil, err
	}
	if err := observed.Validate(); err != nil {
		return nil, err
	}
	return &LocationCondition{allowed: allowed, observed: observed, known: true}, nil
}

// Unobserved returns a location condition with no position reading.
// It is never satisfied.
func Unobserved(allowed Coordinate) (*LocationCondition, error) {
	if err := allowed.Validate(); err != nil {
		return nil, err
	}
	return &LocationCondition{allowed: allowed}, nil
}

// Allowed returns the coordinate the condition unlocks at.
func (c *LocationCondition) Allowed() Coordinate {
	return c.allowed
}

// Satisfied reports whether the observed coordinate is within tolerance.
func (c *LocationCondition) Satisfied() bool {
	return c.known && c.allowed.Near(c.observed)
}

func (c *LocationCondition) Forward(data []byte) ([]byte, error) {
	return identity(data), nil
}

func (c *LocationCondition) Inverse(data []byte) ([]byte, error) {
	if !c.Satisfied() {
		return nil, fmt.Errorf("%w: location outside allowed area", ErrConditionNotSatisfied)
	}
	return identity(data), nil
}

// Describe implements Describer.
func (c *LocationCondition) Describe() ConditionSpec {
	allowed := c.allowed
	return ConditionSpec{Kind: KindLocation, Allowed: &allowed}
}
