// Public domain.

// Package box tests points against rectangular RA/Dec regions such as the
// regions covered by Legacy Survey sweep files.
package box

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
)

// Errors for bad boxes and bad sweep file names.
var (
	ErrInvalidBox   = errors.New("box: invalid RA/Dec box")
	ErrBadSweepName = errors.New("box: can't decode sweep file name")
)

// Box is a region of RA and Dec, in degrees.
//
// Minimums are inclusive and maximums exclusive.
type Box struct {
	RAMin, RAMax, DecMin, DecMax float64
}

// Validate checks for some common mistakes.
func (b Box) Validate() error {
	if b.DecMin < -90 || b.DecMax > 90 ||
		!(b.DecMax > b.DecMin) || !(b.RAMax > b.RAMin) {
		return fmt.Errorf("%w: [ramin, ramax, decmin, decmax] = %v",
			ErrInvalidBox, b.Slice())
	}
	return nil
}

// Slice returns the box as [ramin, ramax, decmin, decmax].
func (b Box) Slice() []float64 {
	return []float64{b.RAMin, b.RAMax, b.DecMin, b.DecMax}
}

// Contains reports whether ra, dec (degrees) is in the box.
//
// The box is not validated.
func (b Box) Contains(ra, dec float64) bool {
	return ra >= b.RAMin && ra < b.RAMax && dec >= b.DecMin && dec < b.DecMax
}

// InBox reports which of the points ra[i], dec[i] are inside b.
func InBox(ra, dec []float64, b Box) ([]bool, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if len(ra) != len(dec) {
		return nil, fmt.Errorf("box: %d RAs but %d Decs", len(ra), len(dec))
	}
	in := make([]bool, len(ra))
	for i, r := range ra {
		in[i] = b.Contains(r, dec[i])
	}
	return in, nil
}

// Any reports whether any of the points ra[i], dec[i] are inside b.
func Any(ra, dec []float64, b Box) (bool, error) {
	in, err := InBox(ra, dec, b)
	if err != nil {
		return false, err
	}
	for _, x := range in {
		if x {
			return true, nil
		}
	}
	return false, nil
}

// Area returns the solid angle of the box in steradians.
func (b Box) Area() float64 {
	return math.Abs((b.RAMax - b.RAMin) * math.Pi / 180 *
		(math.Sin(b.DecMax*math.Pi/180) - math.Sin(b.DecMin*math.Pi/180)))
}

// DecodeSweepName returns the box covered by a sweep file.
//
// Any directory part of name is ignored.  The file name encodes the box
// in fixed columns, as in sweep-350m005-360p005.fits for the box
// [350, 360, -5, 5].  The RA fields are three digits of degrees, the Dec
// fields a sign character, 'm' or 'p', followed by three digits.
func DecodeSweepName(name string) (b Box, err error) {
	s := filepath.Base(name)
	if len(s) < 21 {
		return b, fmt.Errorf("%w: %q too short", ErrBadSweepName, s)
	}
	// fields are exactly three decimal digits
	f := func(field string) float64 {
		if err != nil {
			return 0
		}
		for i := 0; i < len(field); i++ {
			if field[i] < '0' || field[i] > '9' {
				err = fmt.Errorf("%w: %q: field %q", ErrBadSweepName, s, field)
				return 0
			}
		}
		n, _ := strconv.Atoi(field)
		return float64(n)
	}
	sign := func(c byte) float64 {
		switch {
		case err != nil:
		case c == 'm':
			return -1
		case c == 'p':
			return 1
		default:
			err = fmt.Errorf("%w: %q: sign %q", ErrBadSweepName, s, c)
		}
		return 0
	}
	b.RAMin, b.RAMax = f(s[6:9]), f(s[14:17])
	b.DecMin = f(s[10:13]) * sign(s[9])
	b.DecMax = f(s[18:21]) * sign(s[17])
	if err != nil {
		return Box{}, err
	}
	return b, nil
}

// SweepName encodes b as a sweep file name, the inverse of DecodeSweepName.
// Bounds are rounded to whole degrees.
func SweepName(b Box) string {
	sc := func(d float64) (byte, float64) {
		if d < 0 {
			return 'm', -d
		}
		return 'p', d
	}
	s0, d0 := sc(b.DecMin)
	s1, d1 := sc(b.DecMax)
	return fmt.Sprintf("sweep-%03.0f%c%03.0f-%03.0f%c%03.0f.fits",
		b.RAMin, s0, d0, b.RAMax, s1, d1)
}
