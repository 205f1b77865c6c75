// Public domain.

package mangle

import (
	"errors"
	"fmt"
	"math"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/skymask/box"
	"github.com/soniakeys/unit"
)

// ErrEmptyPolygon is returned when constructing a polygon with no caps.
var ErrEmptyPolygon = errors.New("mangle: polygon must have at least one cap")

// Polygon is the intersection of its caps.
//
// Area is the solid angle of the polygon in steradians, or 0 if unknown.
// It is carried through the file format but not computed from the caps.
type Polygon struct {
	Caps []Cap
	Area float64
}

// NewPolygon validates caps and returns a polygon holding a copy of them.
func NewPolygon(area float64, caps ...Cap) (Polygon, error) {
	if len(caps) == 0 {
		return Polygon{}, ErrEmptyPolygon
	}
	for i := range caps {
		if err := caps[i].Validate(); err != nil {
			return Polygon{}, fmt.Errorf("cap %d: %w", i+1, err)
		}
	}
	return Polygon{Caps: append([]Cap{}, caps...), Area: area}, nil
}

// Contains reports whether unit vector p is inside every cap of the polygon.
func (g *Polygon) Contains(p *coord.Cart) bool {
	for i := range g.Caps {
		if !g.Caps[i].Contains(p) {
			return false
		}
	}
	return true
}

// NewRect returns the lat-long rectangle polygon bounded by raMin, raMax,
// decMin, decMax, with Area set.
//
// The rectangle may not span more than 12h of RA.  It is built from four
// caps: a great circle at raMin, the flipped great circle at raMax, the
// declination cap at decMin and the flipped declination cap at decMax.
func NewRect(raMin, raMax unit.RA, decMin, decMax unit.Angle) (Polygon, error) {
	span := unit.PMod(raMax.Hour()-raMin.Hour(), 24)
	if span == 0 || span > 12 {
		return Polygon{}, fmt.Errorf("%w: RA span %gh not in (0, 12]",
			box.ErrInvalidBox, span)
	}
	if decMax <= decMin {
		return Polygon{}, fmt.Errorf("%w: dec %g to %g",
			box.ErrInvalidBox, decMin.Deg(), decMax.Deg())
	}
	lo, err := DecBound(decMin)
	if err != nil {
		return Polygon{}, err
	}
	hi, err := DecBound(decMax)
	if err != nil {
		return Polygon{}, err
	}
	return Polygon{
		Caps: []Cap{RABound(raMin), RABound(raMax).Flip(), lo, hi.Flip()},
		Area: RectArea(span*15, decMin, decMax),
	}, nil
}

// NewRectBox returns the rectangle polygon for box b.
func NewRectBox(b box.Box) (Polygon, error) {
	if err := b.Validate(); err != nil {
		return Polygon{}, err
	}
	if b.RAMax-b.RAMin >= 360 {
		// whole band of declination.  RA caps can't express this.
		lo, err := DecBound(unit.AngleFromDeg(b.DecMin))
		if err != nil {
			return Polygon{}, err
		}
		hi, err := DecBound(unit.AngleFromDeg(b.DecMax))
		if err != nil {
			return Polygon{}, err
		}
		return Polygon{Caps: []Cap{lo, hi.Flip()}, Area: b.Area()}, nil
	}
	return NewRect(unit.RAFromDeg(b.RAMin), unit.RAFromDeg(b.RAMax),
		unit.AngleFromDeg(b.DecMin), unit.AngleFromDeg(b.DecMax))
}

// RectArea computes the solid angle in steradians of a lat-long rectangle
// spanning raSpan degrees of RA between decMin and decMax.
func RectArea(raSpan float64, decMin, decMax unit.Angle) float64 {
	return math.Abs(raSpan * math.Pi / 180 *
		(math.Sin(decMax.Rad()) - math.Sin(decMin.Rad())))
}

// Mask is the union of its polygons.  A mask with no polygons is empty.
type Mask struct {
	Polygons []Polygon
}

// NewMask returns a mask holding copies of polygons.
func NewMask(polygons ...Polygon) *Mask {
	m := &Mask{Polygons: make([]Polygon, len(polygons))}
	for i, g := range polygons {
		m.Polygons[i] = Polygon{Caps: append([]Cap{}, g.Caps...), Area: g.Area}
	}
	return m
}

// Contains reports whether unit vector p is inside any polygon of the mask.
func (m *Mask) Contains(p *coord.Cart) bool {
	for i := range m.Polygons {
		if m.Polygons[i].Contains(p) {
			return true
		}
	}
	return false
}

// ContainsEqua reports whether equatorial point e is inside the mask.
func (m *Mask) ContainsEqua(e *coord.Equa) bool {
	p := EquaCart(e)
	return m.Contains(&p)
}

// Classify returns the membership of each of points in the mask.
func (m *Mask) Classify(points []coord.Cart) []bool {
	in := make([]bool, len(points))
	for i := range points {
		in[i] = m.Contains(&points[i])
	}
	return in
}

// ClassifyEqua is Classify for equatorial points.
func (m *Mask) ClassifyEqua(points []coord.Equa) []bool {
	in := make([]bool, len(points))
	for i := range points {
		in[i] = m.ContainsEqua(&points[i])
	}
	return in
}

// Area returns the sum of the recorded polygon areas.
func (m *Mask) Area() (a float64) {
	for _, g := range m.Polygons {
		a += g.Area
	}
	return
}

// Validate checks that every polygon has caps and that each cap is valid.
func (m *Mask) Validate() error {
	for i, g := range m.Polygons {
		if len(g.Caps) == 0 {
			return fmt.Errorf("polygon %d: %w", i+1, ErrEmptyPolygon)
		}
		for j := range g.Caps {
			if err := g.Caps[j].Validate(); err != nil {
				return fmt.Errorf("polygon %d cap %d: %w", i+1, j+1, err)
			}
		}
	}
	return nil
}
