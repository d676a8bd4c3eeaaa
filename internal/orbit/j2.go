package orbit

import (
	"math"
	"time"
)

// J2Propagator advances orbital elements in time under two-body motion
// plus first-order J2 secular drift. Semi-major axis, eccentricity and
// inclination are held fixed; RAAN, argument of perigee and mean
// anomaly drift linearly.
type J2Propagator struct {
	consts Constants
}

// NewJ2Propagator returns a propagator for the given Earth model.
func NewJ2Propagator(c Constants) J2Propagator {
	return J2Propagator{consts: c}
}

// MeanMotion returns the unperturbed mean motion n = sqrt(mu/a^3) in
// rad/s for the given element set.
func (p J2Propagator) MeanMotion(el Elements) float64 {
	return math.Sqrt(p.consts.Mu / math.Pow(el.SemiMajorAxis, 3))
}

// Advance returns the element set at epoch + delta. The closed-form
// secular update is time-symmetric, so delta may be negative.
func (p J2Propagator) Advance(el Elements, delta time.Duration) Elements {
	dt := delta.Seconds()
	n := p.MeanMotion(el)

	// Secular rates from first-order J2 theory, scaled by the squared
	// ratio of the equatorial radius to the semi-latus rectum.
	semiLatus := el.SemiMajorAxis * (1 - el.Eccentricity*el.Eccentricity)
	k := n * p.consts.J2 * math.Pow(p.consts.EquatorialRadius/semiLatus, 2)
	cosI := math.Cos(el.Inclination)

	raanDot := -1.5 * k * cosI
	argPerigeeDot := 0.75 * k * (5*cosI*cosI - 1)
	meanAnomalyDot := n + 0.75*k*math.Sqrt(1-el.Eccentricity*el.Eccentricity)*(3*cosI*cosI-1)

	out := el
	out.RAAN = wrapTwoPi(el.RAAN + raanDot*dt)
	out.ArgPerigee = wrapTwoPi(el.ArgPerigee + argPerigeeDot*dt)
	out.MeanAnomaly = wrapTwoPi(el.MeanAnomaly + meanAnomalyDot*dt)
	out.Epoch = el.Epoch.Add(delta)
	return out
}
