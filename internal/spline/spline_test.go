package spline

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCyclic(t *testing.T, ts, vs []float64) *Cyclic {
	t.Helper()
	s, err := NewCyclic(ts, vs)
	require.NoError(t, err)
	return s
}

func TestNewCyclic_Errors(t *testing.T) {
	tests := []struct {
		name string
		t, v []float64
		want error
	}{
		{"empty", nil, nil, ErrTooFewSamples},
		{"single", []float64{0}, []float64{1}, ErrTooFewSamples},
		{"mismatch", []float64{0, 1}, []float64{1}, ErrLengthMismatch},
		{"repeated knot", []float64{0, 1, 1}, []float64{0, 1, 2}, ErrNotIncreasing},
		{"decreasing", []float64{0, 2, 1}, []float64{0, 1, 2}, ErrNotIncreasing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCyclic(tt.t, tt.v)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestEvaluate_ReproducesLinearData(t *testing.T) {
	ts := []float64{-3, 0, 2, 5, 9, 10}
	vs := make([]float64, len(ts))
	for i, x := range ts {
		vs[i] = 2*x + 1
	}
	s := mustCyclic(t, ts, vs)

	for x := -3.0; x <= 10; x += 0.25 {
		got, err := s.Evaluate(x, nil)
		require.NoError(t, err)
		assert.InDelta(t, 2*x+1, got.Value, 1e-9, "value at %g", x)
		assert.InDelta(t, 2, got.Slope, 1e-9, "slope at %g", x)
		assert.InDelta(t, 0, got.Curvature, 1e-9, "curvature at %g", x)
	}
}

func TestEvaluate_InterpolatesKnots(t *testing.T) {
	ts := []float64{0, 1, 2.5, 4, 6}
	vs := []float64{3, -1, 0.5, 7, 2}
	s := mustCyclic(t, ts, vs)

	for i := range ts {
		got, err := s.Evaluate(ts[i], nil)
		require.NoError(t, err)
		assert.InDelta(t, vs[i], got.Value, 1e-12)
	}
}

func TestEvaluate_TwoSamplesIsLinear(t *testing.T) {
	s := mustCyclic(t, []float64{0, 4}, []float64{1, 9})
	got, err := s.Evaluate(1, nil)
	require.NoError(t, err)
	assert.InDelta(t, 3, got.Value, 1e-12)
	assert.InDelta(t, 2, got.Slope, 1e-12)
}

func TestEvaluate_ShapePreserving(t *testing.T) {
	// Step-like monotone data: a natural cubic spline would overshoot here.
	ts := []float64{0, 1, 2, 3, 4, 5}
	vs := []float64{0, 0, 0, 1, 1, 1}
	s := mustCyclic(t, ts, vs)

	prev := math.Inf(-1)
	for x := 0.0; x <= 5; x += 0.01 {
		got, err := s.Evaluate(x, nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.Value, -1e-12)
		assert.LessOrEqual(t, got.Value, 1+1e-12)
		assert.GreaterOrEqual(t, got.Value, prev-1e-12, "not monotone at %g", x)
		prev = got.Value
	}
}

func TestEvaluate_DerivativesMatchFiniteDifferences(t *testing.T) {
	ts := []float64{0, 0.7, 1.5, 3, 3.2, 5}
	vs := []float64{0, 0.64, 0.99, 0.14, -0.05, -0.95}
	s := mustCyclic(t, ts, vs)

	const h = 1e-6
	for _, x := range []float64{0.3, 1.1, 2.2, 3.1, 4.4} {
		mid, err := s.Evaluate(x, nil)
		require.NoError(t, err)
		lo, _ := s.Evaluate(x-h, nil)
		hi, _ := s.Evaluate(x+h, nil)
		assert.InDelta(t, (hi.Value-lo.Value)/(2*h), mid.Slope, 1e-5, "slope at %g", x)
		assert.InDelta(t, (hi.Slope-lo.Slope)/(2*h), mid.Curvature, 1e-4, "curvature at %g", x)
	}
}

func TestEvaluate_SlopeContinuousAtKnots(t *testing.T) {
	ts := []float64{0, 1, 2, 3.5, 4, 6}
	vs := []float64{1, 3, 2, 2.5, 5, 4}
	s := mustCyclic(t, ts, vs)

	const eps = 1e-9
	for _, k := range ts[1 : len(ts)-1] {
		left, err := s.Evaluate(k-eps, nil)
		require.NoError(t, err)
		right, err := s.Evaluate(k+eps, nil)
		require.NoError(t, err)
		assert.InDelta(t, left.Value, right.Value, 1e-7, "value jump at %g", k)
		assert.InDelta(t, left.Slope, right.Slope, 1e-6, "slope jump at %g", k)
	}
}

func TestEvaluate_OutOfDomain(t *testing.T) {
	s := mustCyclic(t, []float64{-1, 0, 1}, []float64{0, 1, 0})

	for _, x := range []float64{-1.0001, 1.0001, math.NaN(), math.Inf(1)} {
		_, err := s.Evaluate(x, nil)
		assert.ErrorIs(t, err, ErrOutOfDomain, "x=%g", x)
	}

	lo, hi := s.Domain()
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 1.0, hi)
	assert.Equal(t, 3, s.Len())
}

func TestEvaluate_HintDoesNotChangeResult(t *testing.T) {
	ts := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	vs := []float64{0, 2, 1, 4, 3, 5, 8, 6}
	s := mustCyclic(t, ts, vs)

	hint := -1
	for x := 0.0; x <= 7; x += 0.05 {
		want, err := s.Evaluate(x, nil)
		require.NoError(t, err)
		got, err := s.Evaluate(x, &hint)
		require.NoError(t, err)
		assert.Equal(t, want, got, "x=%g", x)
		assert.GreaterOrEqual(t, hint, 0)
		assert.LessOrEqual(t, hint, len(ts)-2)
	}

	// A stale hint far from the query falls back to the full search.
	hint = 6
	got, err := s.Evaluate(0.5, &hint)
	require.NoError(t, err)
	want, _ := s.Evaluate(0.5, nil)
	assert.Equal(t, want, got)
	assert.Equal(t, 0, hint)

	// Garbage hints are tolerated.
	hint = 1000
	_, err = s.Evaluate(3.3, &hint)
	require.NoError(t, err)
	assert.Equal(t, 3, hint)
}

func TestEvaluate_EndKnotsUseBoundarySegments(t *testing.T) {
	s := mustCyclic(t, []float64{0, 1, 2}, []float64{0, 1, 4})

	hint := -1
	_, err := s.Evaluate(0, &hint)
	require.NoError(t, err)
	assert.Equal(t, 0, hint)

	_, err = s.Evaluate(2, &hint)
	require.NoError(t, err)
	assert.Equal(t, 1, hint)
}

func TestCyclicExtension_SeamIsSmooth(t *testing.T) {
	// A closed loop sampled at uneven arc lengths, extended the way the road
	// model does it: last sample before zero, first two after the loop length.
	const period = 10.0
	knots := []float64{0, 1.5, 3, 5, 6.5, 8}
	f := func(x float64) float64 { return math.Sin(2 * math.Pi * x / period) }

	ts := []float64{knots[len(knots)-1] - period}
	vs := []float64{f(knots[len(knots)-1])}
	for _, k := range knots {
		ts = append(ts, k)
		vs = append(vs, f(k))
	}
	ts = append(ts, period, period+knots[1])
	vs = append(vs, f(0), f(knots[1]))

	s := mustCyclic(t, ts, vs)

	atZero, err := s.Evaluate(0, nil)
	require.NoError(t, err)
	atPeriod, err := s.Evaluate(period, nil)
	require.NoError(t, err)
	assert.InDelta(t, atZero.Value, atPeriod.Value, 1e-12)
	assert.InDelta(t, atZero.Slope, atPeriod.Slope, 1e-12)

	const eps = 1e-7
	before, err := s.Evaluate(period-eps, nil)
	require.NoError(t, err)
	wrapped, err := s.Evaluate(-eps, nil)
	require.NoError(t, err)
	assert.InDelta(t, before.Value, wrapped.Value, 1e-6)
	assert.InDelta(t, before.Slope, wrapped.Slope, 1e-5)
}
