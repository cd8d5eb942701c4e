package trajectory

// Kinematics is the (position, velocity, acceleration) triple of one axis.
type Kinematics struct {
	Position     float64
	Velocity     float64
	Acceleration float64
}

// Evaluator is a one-dimensional function of time.
type Evaluator interface {
	// StateAt returns value, first and second derivative at time t.
	StateAt(t float64) Kinematics
	// Value returns the position at time t.
	Value(t float64) float64
	// Knot is the time after which the terminal zero-acceleration segment
	// governs evaluation.
	Knot() float64
	// Rebase returns an equivalent evaluator whose time origin is t, so that
	// Rebase(t).StateAt(u) == StateAt(t+u).
	Rebase(t float64) Evaluator
}

// Polynomial is an Evaluator given by p(t) = Σ c[i]·tⁱ for t <= knot, and by
// the tangent line of p at the knot afterwards.
type Polynomial struct {
	coeffs []float64
	knot   float64
}

// NewPolynomial returns the polynomial with the given ascending coefficients.
// The coefficient slice is copied. An empty slice is the zero polynomial.
func NewPolynomial(coeffs []float64, knot float64) Polynomial {
	c := append([]float64(nil), coeffs...)
	if len(c) == 0 {
		c = []float64{0}
	}
	return Polynomial{coeffs: c, knot: knot}
}

// FromKinematics returns the constant-acceleration trajectory through k,
// p(t) = x + v·t + a/2·t², valid until knot.
func FromKinematics(k Kinematics, knot float64) Polynomial {
	return Polynomial{
		coeffs: []float64{k.Position, k.Velocity, k.Acceleration / 2},
		knot:   knot,
	}
}

// Coefficients returns a copy of the ascending coefficients.
func (p Polynomial) Coefficients() []float64 {
	return append([]float64(nil), p.coeffs...)
}

func (p Polynomial) Knot() float64 {
	return p.knot
}

func (p Polynomial) StateAt(t float64) Kinematics {
	if t <= p.knot {
		return p.eval(t)
	}
	k := p.eval(p.knot)
	return Kinematics{
		Position: k.Position + k.Velocity*(t-p.knot),
		Velocity: k.Velocity,
	}
}

func (p Polynomial) Value(t float64) float64 {
	return p.StateAt(t).Position
}

// Rebase shifts the time origin to t. Before the knot the coefficients are
// Taylor-shifted; past the knot the result is the terminal line.
func (p Polynomial) Rebase(t float64) Evaluator {
	if t > p.knot {
		k := p.StateAt(t)
		return Polynomial{coeffs: []float64{k.Position, k.Velocity}, knot: 0}
	}
	c := append([]float64(nil), p.coeffs...)
	n := len(c)
	for i := 0; i < n; i++ {
		for j := n - 2; j >= i; j-- {
			c[j] += t * c[j+1]
		}
	}
	return Polynomial{coeffs: c, knot: p.knot - t}
}

// eval evaluates the polynomial and two derivatives with Horner's scheme.
func (p Polynomial) eval(t float64) Kinematics {
	var v, d1, d2 float64
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		d2 = d2*t + 2*d1
		d1 = d1*t + v
		v = v*t + p.coeffs[i]
	}
	return Kinematics{Position: v, Velocity: d1, Acceleration: d2}
}
