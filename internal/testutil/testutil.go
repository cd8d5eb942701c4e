// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/roadframe/internal/geom"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Near reports whether |a-b| <= tol. NaN is never near anything.
func Near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// AssertNear reports an error when got is further than tol from want.
func AssertNear(t testing.TB, name string, got, want, tol float64) {
	t.Helper()
	if !Near(got, want, tol) {
		t.Errorf("%s = %g, want %g (tol %g)", name, got, want, tol)
	}
}

// AssertVecNear reports an error when got is further than tol from want.
func AssertVecNear(t testing.TB, name string, got, want geom.Vec2, tol float64) {
	t.Helper()
	if d := got.Sub(want).Norm(); !(d <= tol) {
		t.Errorf("%s = (%g, %g), want (%g, %g) (off by %g, tol %g)", name, got.X, got.Y, want.X, want.Y, d, tol)
	}
}

// WriteFile writes content to name inside a per-test temporary directory
// and returns its path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
