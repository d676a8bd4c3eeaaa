package orbit

import "fmt"

// DegenerateOrbitError reports an input state outside the elliptical
// two-body model: zero angular momentum, eccentricity >= 1, or a
// non-positive semi-major axis.
type DegenerateOrbitError struct {
	Reason string
}

func (e *DegenerateOrbitError) Error() string {
	return fmt.Sprintf("degenerate orbit: %s", e.Reason)
}

// ConvergenceError reports that the Kepler solver exhausted its
// iteration budget. The partially converged value is never returned.
type ConvergenceError struct {
	Iterations int
	LastDelta  float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("kepler solver did not converge after %d iterations (last delta %.3e rad)", e.Iterations, e.LastDelta)
}
