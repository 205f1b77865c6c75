// Public domain.

package mangle

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/skymask/box"
	"github.com/soniakeys/unit"
	xrand "golang.org/x/exp/rand"
)

// ErrSamplingExhausted is matched by errors from a Sampler that gave up
// before generating the requested number of points.
var ErrSamplingExhausted = errors.New("mangle: sampling exhausted")

// ExhaustedError reports a sampling run that hit its attempt or time limit.
// Points holds what was accepted before the limit.
type ExhaustedError struct {
	Requested, Attempts int
	TimedOut            bool
	Points              []coord.Equa
}

func (e *ExhaustedError) Error() string {
	why := "attempts"
	if e.TimedOut {
		why = "time"
	}
	return fmt.Sprintf("%v: %d of %d points after %d attempts, out of %s",
		ErrSamplingExhausted, len(e.Points), e.Requested, e.Attempts, why)
}

// Is makes ExhaustedError match ErrSamplingExhausted.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrSamplingExhausted
}

// Rand is the source of uniform deviates in [0, 1) used by a Sampler.
// *rand.Rand of both math/rand and golang.org/x/exp/rand satisfy it.
type Rand interface {
	Float64() float64
}

// DefaultMaxAttempts is the attempt limit used when Sampler.MaxAttempts is 0.
const DefaultMaxAttempts = 10000000

// Sampler generates random points inside masks by rejection.
//
// A Sampler with nil Rand gets a PCG generator with seed 0 on first use.
type Sampler struct {
	Rand        Rand
	MaxAttempts int           // total candidates drawn, 0 for the default
	Timeout     time.Duration // 0 for none
}

// NewSampler returns a Sampler using a PCG generator seeded with seed.
func NewSampler(seed uint64) *Sampler {
	return &Sampler{Rand: pcg(seed)}
}

func pcg(seed uint64) *xrand.Rand {
	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(seed)
	return rnd
}

// Sample returns n points uniformly distributed over the sphere and
// inside m.
func (s *Sampler) Sample(m *Mask, n int) ([]coord.Equa, error) {
	return s.sample(m, n, s.sphere)
}

// SampleBox returns n points uniformly distributed inside both box b and
// mask m.  Drawing candidates only from b makes sampling much faster for
// masks small compared to the whole sky.
func (s *Sampler) SampleBox(m *Mask, n int, b box.Box) ([]coord.Equa, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	ra0 := b.RAMin
	raSpan := b.RAMax - b.RAMin
	sd0 := math.Sin(b.DecMin * math.Pi / 180)
	sdSpan := math.Sin(b.DecMax*math.Pi/180) - sd0
	return s.sample(m, n, func() coord.Equa {
		return coord.Equa{
			RA:  unit.RAFromDeg(ra0 + raSpan*s.Rand.Float64()),
			Dec: unit.Angle(math.Asin(sd0 + sdSpan*s.Rand.Float64())),
		}
	})
}

// sphere draws a point uniformly over the whole sphere.
func (s *Sampler) sphere() coord.Equa {
	return coord.Equa{
		RA:  unit.RAFromDeg(360 * s.Rand.Float64()),
		Dec: unit.Angle(math.Asin(1 - 2*s.Rand.Float64())),
	}
}

// time is checked once per this many attempts.
const clockStride = 1024

func (s *Sampler) sample(m *Mask, n int, draw func() coord.Equa) ([]coord.Equa, error) {
	if n <= 0 {
		return []coord.Equa{}, nil
	}
	if s.Rand == nil {
		s.Rand = pcg(0)
	}
	limit := s.MaxAttempts
	if limit <= 0 {
		limit = DefaultMaxAttempts
	}
	var deadline time.Time
	if s.Timeout > 0 {
		deadline = time.Now().Add(s.Timeout)
	}
	pts := make([]coord.Equa, 0, n)
	for a := 1; ; a++ {
		e := draw()
		if m.ContainsEqua(&e) {
			if pts = append(pts, e); len(pts) == n {
				return pts, nil
			}
		}
		if a == limit {
			return nil, &ExhaustedError{Requested: n, Attempts: a, Points: pts}
		}
		if !deadline.IsZero() && a%clockStride == 0 && time.Now().After(deadline) {
			return nil, &ExhaustedError{Requested: n, Attempts: a,
				TimedOut: true, Points: pts}
		}
	}
}
