// Package spline provides the shape-preserving piecewise cubic Hermite
// interpolant (PCHIP) used to describe road centerlines as smooth functions
// of arc length.
//
// The interpolant is once continuously differentiable and never overshoots
// the data between samples. Periodicity is the caller's concern: a closed
// loop is modelled by extending the sample set across the seam before
// construction, so that the slopes at both copies of the seam are computed
// from identical neighbourhoods.
package spline

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrTooFewSamples is returned when fewer than two samples are given.
	ErrTooFewSamples = errors.New("spline: at least two samples are required")
	// ErrLengthMismatch is returned when t and v differ in length.
	ErrLengthMismatch = errors.New("spline: sample slices differ in length")
	// ErrNotIncreasing is returned when the independent variable is not
	// strictly increasing.
	ErrNotIncreasing = errors.New("spline: independent variable must be strictly increasing")
	// ErrOutOfDomain is returned by Evaluate for queries outside the sampled
	// range. It indicates a caller bug, not a recoverable condition.
	ErrOutOfDomain = errors.New("spline: query outside interpolation domain")
)

// Sample is the interpolant and its first two derivatives at one point.
type Sample struct {
	Value     float64
	Slope     float64 // first derivative
	Curvature float64 // second derivative
}

// Cyclic is a PCHIP interpolant over samples that the caller has already
// extended across a loop seam. A Cyclic is immutable after construction.
type Cyclic struct {
	t []float64
	v []float64
	// Per-segment cubic coefficients in the local variable u = t - t[i]:
	// v[i] + u*(d[i] + u*(c[i] + u*b[i])).
	d []float64 // slope at each knot
	c []float64
	b []float64
}

// NewCyclic builds the interpolant through (t[i], v[i]). The slices are
// copied.
func NewCyclic(t, v []float64) (*Cyclic, error) {
	if len(t) != len(v) {
		return nil, fmt.Errorf("%w: %d knots, %d values", ErrLengthMismatch, len(t), len(v))
	}
	n := len(t)
	if n < 2 {
		return nil, ErrTooFewSamples
	}
	for i := 1; i < n; i++ {
		if !(t[i] > t[i-1]) {
			return nil, fmt.Errorf("%w: t[%d]=%g, t[%d]=%g", ErrNotIncreasing, i-1, t[i-1], i, t[i])
		}
	}

	s := &Cyclic{
		t: append([]float64(nil), t...),
		v: append([]float64(nil), v...),
	}

	h := make([]float64, n-1)
	delta := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = s.t[i+1] - s.t[i]
		delta[i] = (s.v[i+1] - s.v[i]) / h[i]
	}

	s.d = pchipSlopes(h, delta)

	s.c = make([]float64, n-1)
	s.b = make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		s.c[i] = (3*delta[i] - 2*s.d[i] - s.d[i+1]) / h[i]
		s.b[i] = (s.d[i] - 2*delta[i] + s.d[i+1]) / (h[i] * h[i])
	}
	return s, nil
}

// pchipSlopes computes knot slopes following Fritsch & Carlson: a weighted
// harmonic mean of the neighbouring secants in the interior, zero at local
// extrema, and a one-sided three-point estimate at both ends.
func pchipSlopes(h, delta []float64) []float64 {
	n := len(h) + 1
	d := make([]float64, n)
	if n == 2 {
		d[0], d[1] = delta[0], delta[0]
		return d
	}

	for k := 1; k < n-1; k++ {
		if delta[k-1]*delta[k] <= 0 {
			d[k] = 0
			continue
		}
		w1 := 2*h[k] + h[k-1]
		w2 := h[k] + 2*h[k-1]
		d[k] = (w1 + w2) / (w1/delta[k-1] + w2/delta[k])
	}

	d[0] = endSlope(h[0], h[1], delta[0], delta[1])
	d[n-1] = endSlope(h[n-2], h[n-3], delta[n-2], delta[n-3])
	return d
}

// endSlope is the shape-preserving three-point end condition.
func endSlope(h0, h1, del0, del1 float64) float64 {
	d := ((2*h0+h1)*del0 - h0*del1) / (h0 + h1)
	if sign(d) != sign(del0) {
		return 0
	}
	if sign(del0) != sign(del1) && math.Abs(d) > math.Abs(3*del0) {
		return 3 * del0
	}
	return d
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// Domain returns the closed range [lo, hi] on which Evaluate is defined.
func (s *Cyclic) Domain() (lo, hi float64) {
	return s.t[0], s.t[len(s.t)-1]
}

// Len returns the number of knots.
func (s *Cyclic) Len() int {
	return len(s.t)
}

// Evaluate returns the interpolant and its derivatives at t.
//
// hint is an optional in/out segment index. When the previous call's index is
// passed back in, monotonically increasing queries resolve their segment in
// O(1); otherwise the segment is found by binary search. A nil hint is
// allowed. The hint never changes the result.
func (s *Cyclic) Evaluate(t float64, hint *int) (Sample, error) {
	lo, hi := s.Domain()
	if !(t >= lo && t <= hi) {
		return Sample{}, fmt.Errorf("%w: t=%g not in [%g, %g]", ErrOutOfDomain, t, lo, hi)
	}

	i := s.segment(t, hint)
	if hint != nil {
		*hint = i
	}

	u := t - s.t[i]
	d, c, b := s.d[i], s.c[i], s.b[i]
	return Sample{
		Value:     s.v[i] + u*(d+u*(c+u*b)),
		Slope:     d + u*(2*c+3*u*b),
		Curvature: 2*c + 6*u*b,
	}, nil
}

// segment returns i such that t[i] <= t < t[i+1] (t <= t[i+1] on the last
// segment). t must be in the domain.
func (s *Cyclic) segment(t float64, hint *int) int {
	last := len(s.t) - 2
	if hint != nil {
		i := *hint
		if i >= 0 && i <= last {
			if s.contains(i, t) {
				return i
			}
			if i < last && s.contains(i+1, t) {
				return i + 1
			}
		}
	}
	// First knot strictly greater than t, minus one, clamped to the last
	// segment so that t == t[n-1] evaluates on the final segment.
	i := sort.SearchFloat64s(s.t, t)
	if i < len(s.t) && s.t[i] == t {
		i++
	}
	i--
	if i > last {
		i = last
	}
	if i < 0 {
		i = 0
	}
	return i
}

// contains treats segments as half-open [t[i], t[i+1]) except the last, which
// is closed, so hinted and unhinted lookups agree on knots.
func (s *Cyclic) contains(i int, t float64) bool {
	if t < s.t[i] {
		return false
	}
	return t < s.t[i+1] || (i == len(s.t)-2 && t == s.t[i+1])
}
