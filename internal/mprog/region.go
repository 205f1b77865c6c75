// Public domain.

package mprog

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/soniakeys/skymask/box"
	"github.com/soniakeys/skymask/mangle"
	"github.com/soniakeys/unit"
)

// region file layout.  a polygon is given by exactly one of caps, rect,
// or sweep.
type regionFile struct {
	Polygons []polygonSpec `yaml:"polygons"`
}

type polygonSpec struct {
	Area  *float64  `yaml:"area"`
	Caps  []capSpec `yaml:"caps"`
	Rect  []float64 `yaml:"rect"`
	Sweep string    `yaml:"sweep"`
}

// cap center RA is either ra in degrees or rah in hours.
type capSpec struct {
	RA     *float64 `yaml:"ra"`
	RAHour *float64 `yaml:"rah"`
	Dec    float64  `yaml:"dec"`
	Radius float64  `yaml:"radius"`
	Flip   bool     `yaml:"flip"`
}

// ReadRegion reads a YAML region description and returns the mask it
// describes.
func ReadRegion(r io.Reader) (*mangle.Mask, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var rf regionFile
	if err := dec.Decode(&rf); err != nil {
		if err == io.EOF {
			return nil, errors.New("empty region file")
		}
		return nil, err
	}
	m := &mangle.Mask{}
	for i, ps := range rf.Polygons {
		g, err := ps.polygon()
		if err != nil {
			return nil, fmt.Errorf("polygon %d: %w", i+1, err)
		}
		m.Polygons = append(m.Polygons, g)
	}
	return m, nil
}

func (ps *polygonSpec) polygon() (g mangle.Polygon, err error) {
	n := 0
	if len(ps.Caps) > 0 {
		n++
	}
	if ps.Rect != nil {
		n++
	}
	if ps.Sweep != "" {
		n++
	}
	if n != 1 {
		return g, errors.New("need exactly one of caps, rect, or sweep")
	}
	switch {
	case ps.Rect != nil:
		if len(ps.Rect) != 4 {
			return g, errors.New("rect needs ramin, ramax, decmin, decmax")
		}
		g, err = mangle.NewRectBox(box.Box{RAMin: ps.Rect[0],
			RAMax: ps.Rect[1], DecMin: ps.Rect[2], DecMax: ps.Rect[3]})
	case ps.Sweep != "":
		var b box.Box
		if b, err = box.DecodeSweepName(ps.Sweep); err != nil {
			return
		}
		g, err = mangle.NewRectBox(b)
	default:
		caps := make([]mangle.Cap, len(ps.Caps))
		for i, cs := range ps.Caps {
			if caps[i], err = cs.capVector(); err != nil {
				return g, fmt.Errorf("cap %d: %w", i+1, err)
			}
		}
		g, err = mangle.NewPolygon(0, caps...)
	}
	if err == nil && ps.Area != nil {
		g.Area = *ps.Area
	}
	return
}

func (cs *capSpec) capVector() (mangle.Cap, error) {
	var ra unit.RA
	switch {
	case cs.RA != nil && cs.RAHour != nil:
		return mangle.Cap{}, errors.New("give only one of ra and rah")
	case cs.RA == nil && cs.RAHour == nil:
		return mangle.Cap{}, errors.New("need one of ra or rah")
	case cs.RA != nil:
		ra = unit.RAFromDeg(*cs.RA)
	case cs.RAHour != nil:
		ra = unit.RAFromHour(*cs.RAHour)
	}
	c, err := mangle.NewCap(ra, unit.AngleFromDeg(cs.Dec),
		unit.AngleFromDeg(cs.Radius))
	if err != nil {
		return c, err
	}
	if cs.Flip {
		c = c.Flip()
	}
	return c, nil
}
