// Public domain.

// Package mangle represents regions of the sky as mangle-style masks.
//
// A spherical cap is the region within some angular radius of an axis.
// A polygon is the intersection of one or more caps, and a mask is the
// union of any number of polygons.  Masks are read and written in the flat
// polygon format used by the mangle tools.  A mask can classify points as
// inside or outside, and can generate random points uniformly distributed
// inside it.
package mangle

import (
	"errors"
	"fmt"
	"math"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/unit"
)

// Errors returned for invalid cap parameters.
var (
	ErrInvalidRadius      = errors.New("mangle: cap radius must be in [0, 180] degrees")
	ErrInvalidDeclination = errors.New("mangle: declination must be in [-90, 90] degrees")
	ErrInvalidCap         = errors.New("mangle: invalid cap vector")
)

// Cap is a spherical cap in the 4-vector form used in mangle polygon files.
//
// Normal is the unit vector of the cap axis.  Depth is 1-cos(radius), signed.
// A positive depth selects points within the radius of the axis, a negative
// depth selects everything outside the cap of size -Depth.
type Cap struct {
	Normal coord.Cart
	Depth  float64
}

// unit vector tolerance for caps read from files of limited precision.
const normTol = 1e-5

// NewCap constructs a cap centered on ra, dec with angular radius radius.
//
// RA is taken modulo 24h by type unit.RA and may be constructed either
// from hours or degrees.  Dec must be within [-90, 90] degrees and radius
// within [0, 180] degrees.
func NewCap(ra unit.RA, dec, radius unit.Angle) (Cap, error) {
	if d := dec.Deg(); d < -90 || d > 90 || math.IsNaN(d) {
		return Cap{}, fmt.Errorf("%w: dec = %g", ErrInvalidDeclination, d)
	}
	if r := radius.Deg(); r < 0 || r > 180 || math.IsNaN(r) {
		return Cap{}, fmt.Errorf("%w: radius = %g", ErrInvalidRadius, r)
	}
	// 1 - sin(90-r) rather than 1 - cos(r) to match the way cap sizes
	// are stated in terms of the complementary latitude.
	return Cap{
		Normal: Cart(ra, dec),
		Depth:  1 - math.Sin(math.Pi/2-radius.Rad()),
	}, nil
}

// NewCapDeg is NewCap with all arguments in degrees.
func NewCapDeg(ra, dec, radius float64) (Cap, error) {
	return NewCap(unit.RAFromDeg(ra), unit.AngleFromDeg(dec),
		unit.AngleFromDeg(radius))
}

// CapFromVector constructs a cap from the 4 numbers of the file format,
// checking that the first three form a unit vector and |d| <= 2.
func CapFromVector(x, y, z, d float64) (Cap, error) {
	c := Cap{coord.Cart{X: x, Y: y, Z: z}, d}
	return c, c.Validate()
}

// Validate checks the invariants of a cap.
func (c Cap) Validate() error {
	n := c.Normal.Square()
	if math.IsNaN(n) || math.Abs(n-1) > normTol {
		return fmt.Errorf("%w: |normal| = %g", ErrInvalidCap, math.Sqrt(n))
	}
	if !(math.Abs(c.Depth) <= 2) {
		return fmt.Errorf("%w: depth = %g", ErrInvalidCap, c.Depth)
	}
	return nil
}

// Flip returns the complement of c.  The receiver is not modified.
func (c Cap) Flip() Cap {
	c.Depth = -c.Depth
	return c
}

// Contains reports whether unit vector p lies in the cap.
//
// A positive cap includes its boundary, so the complement excludes it.
func (c *Cap) Contains(p *coord.Cart) bool {
	cd := p.Dot(&c.Normal)
	if c.Depth >= 0 {
		return cd >= 1-c.Depth
	}
	return cd < 1+c.Depth
}

// Vector returns the cap as the 4 numbers of the file format.
func (c Cap) Vector() [4]float64 {
	return [4]float64{c.Normal.X, c.Normal.Y, c.Normal.Z, c.Depth}
}

// Radius returns the angular radius of the cap, ignoring the sign of Depth.
func (c Cap) Radius() unit.Angle {
	return unit.Angle(math.Acos(1 - math.Abs(c.Depth)))
}

// Area returns the solid angle of the cap in steradians.
func (c Cap) Area() float64 {
	if c.Depth >= 0 {
		return 2 * math.Pi * c.Depth
	}
	return 4*math.Pi + 2*math.Pi*c.Depth
}

// RABound returns the great circle cap through the poles and ra whose
// inside is the half sphere of increasing RA from ra, that is, ra to ra+12h.
// The axis is on the equator 6h east of ra.
func RABound(ra unit.RA) Cap {
	c, _ := NewCap(unit.RAFromHour(ra.Hour()+6), 0, unit.AngleFromDeg(90))
	return c
}

// DecBound returns the cap about the north pole whose inside is the
// region of declination >= dec.
func DecBound(dec unit.Angle) (Cap, error) {
	if d := dec.Deg(); d < -90 || d > 90 {
		return Cap{}, fmt.Errorf("%w: dec = %g", ErrInvalidDeclination, d)
	}
	return NewCap(0, unit.AngleFromDeg(90), unit.AngleFromDeg(90)-dec)
}

// Cart returns the unit vector of equatorial coordinates ra, dec.
func Cart(ra unit.RA, dec unit.Angle) coord.Cart {
	sdec, cdec := math.Sincos(dec.Rad())
	sra, cra := math.Sincos(unit.Angle(ra).Rad())
	return coord.Cart{
		X: cra * cdec,
		Y: sra * cdec,
		Z: sdec,
	}
}

// EquaCart returns the unit vector of e.
func EquaCart(e *coord.Equa) coord.Cart {
	return Cart(e.RA, e.Dec)
}
