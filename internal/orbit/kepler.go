package orbit

import "math"

const (
	// DefaultTolerance is the convergence threshold on the eccentric
	// anomaly step, in radians.
	DefaultTolerance = 1e-8
	// DefaultMaxIterations bounds the Newton-Raphson loop.
	DefaultMaxIterations = 50
)

// KeplerSolver solves Kepler's equation M = E - e*sin(E) for the
// eccentric anomaly E via Newton-Raphson iteration. The zero value uses
// DefaultTolerance and DefaultMaxIterations.
type KeplerSolver struct {
	Tolerance     float64
	MaxIterations int
}

// Solve returns the eccentric anomaly for the given mean anomaly and
// eccentricity (0 <= e < 1). The initial guess E0 = M is adequate for
// the near-circular Earth orbits this service deals with. Returns a
// *ConvergenceError when the iteration budget runs out; a partially
// converged value is never returned.
func (s KeplerSolver) Solve(meanAnomaly, eccentricity float64) (float64, error) {
	tol := s.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	maxIter := s.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	M := wrapTwoPi(meanAnomaly)
	E := M
	var delta float64
	for i := 0; i < maxIter; i++ {
		f := E - eccentricity*math.Sin(E) - M
		fPrime := 1 - eccentricity*math.Cos(E)
		delta = f / fPrime
		E -= delta
		if math.Abs(delta) < tol {
			return E, nil
		}
	}
	return 0, &ConvergenceError{Iterations: maxIter, LastDelta: delta}
}
