package orbit

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// rectilinearEps is the angular momentum magnitude (m^2/s) below which
// a trajectory is treated as rectilinear.
const rectilinearEps = 1e-6

// circularEps is the eccentricity below which the eccentricity vector
// direction is numerically meaningless and perigee is pinned to the
// ascending node.
const circularEps = 1e-11

// StateVector is a satellite's Cartesian state in the Earth-centered
// inertial frame at one instant. Immutable once constructed.
type StateVector struct {
	Epoch    time.Time
	Position r3.Vec // meters
	Velocity r3.Vec // m/s
}

// Elements are classical orbital elements referenced to an epoch.
// Invariant: SemiMajorAxis > 0 and Eccentricity < 1 (elliptical only);
// all angles are radians, with RAAN, ArgPerigee and MeanAnomaly wrapped
// into [0, 2π).
type Elements struct {
	SemiMajorAxis float64 // meters
	Eccentricity  float64
	Inclination   float64
	RAAN          float64
	ArgPerigee    float64
	MeanAnomaly   float64
	Epoch         time.Time
}

// Converter maps Cartesian state vectors to classical orbital elements
// and back. The mapping is a bijection for non-degenerate elliptical
// orbits.
type Converter struct {
	consts Constants
	solver KeplerSolver
}

// NewConverter returns a converter for the given Earth model.
func NewConverter(c Constants) Converter {
	return Converter{consts: c}
}

// ToElements extracts classical orbital elements from a state vector.
// Vallado's RV2COE with atan2-based RAAN and explicit sign branches on
// the quadrant-ambiguous angles. Returns a *DegenerateOrbitError when
// the state is rectilinear or not a closed ellipse.
func (cv Converter) ToElements(sv StateVector) (Elements, error) {
	mu := cv.consts.Mu
	r := r3.Norm(sv.Position)
	v := r3.Norm(sv.Velocity)

	h := r3.Cross(sv.Position, sv.Velocity)
	hNorm := r3.Norm(h)
	if hNorm < rectilinearEps {
		return Elements{}, &DegenerateOrbitError{Reason: "zero angular momentum (rectilinear trajectory)"}
	}

	// Node vector z × h lies along the ascending node.
	node := r3.Cross(zAxis, h)

	// Eccentricity vector points from focus to perigee.
	eVec := r3.Sub(r3.Scale(1/mu, r3.Cross(sv.Velocity, h)), r3.Scale(1/r, sv.Position))
	ecc := r3.Norm(eVec)
	if ecc >= 1 {
		return Elements{}, &DegenerateOrbitError{Reason: "non-elliptical orbit (eccentricity >= 1)"}
	}

	energy := v*v/2 - mu/r
	a := -mu / (2 * energy)
	if a <= 0 {
		return Elements{}, &DegenerateOrbitError{Reason: "non-positive semi-major axis"}
	}

	inc := math.Acos(clampCos(h.Z / hNorm))
	raan := wrapTwoPi(math.Atan2(node.Y, node.X))

	var argPerigee, trueAnomaly float64
	if ecc < circularEps {
		// Circular orbit: perigee is undefined, measure the satellite
		// angle from the ascending node instead.
		argPerigee = 0
		if nodeNorm := r3.Norm(node); nodeNorm < rectilinearEps {
			// Circular equatorial: no node either, measure from the
			// inertial x axis, mirrored for retrograde motion.
			trueAnomaly = math.Acos(clampCos(sv.Position.X / r))
			if sv.Position.Y < 0 {
				trueAnomaly = 2*math.Pi - trueAnomaly
			}
			if h.Z < 0 {
				trueAnomaly = wrapTwoPi(-trueAnomaly)
			}
		} else {
			trueAnomaly = math.Acos(clampCos(r3.Dot(node, sv.Position) / (nodeNorm * r)))
			if sv.Position.Z < 0 {
				trueAnomaly = 2*math.Pi - trueAnomaly
			}
		}
	} else {
		if nodeNorm := r3.Norm(node); nodeNorm < rectilinearEps {
			// Elliptical equatorial: no ascending node, so perigee is
			// measured from the inertial x axis as the true longitude
			// of periapsis, mirrored for retrograde motion.
			argPerigee = math.Atan2(eVec.Y, eVec.X)
			if h.Z < 0 {
				argPerigee = -argPerigee
			}
		} else {
			argPerigee = math.Acos(clampCos(r3.Dot(node, eVec) / (nodeNorm * ecc)))
			if eVec.Z < 0 {
				argPerigee = 2*math.Pi - argPerigee
			}
		}
		trueAnomaly = math.Acos(clampCos(r3.Dot(eVec, sv.Position) / (ecc * r)))
		if r3.Dot(sv.Position, sv.Velocity) < 0 {
			trueAnomaly = 2*math.Pi - trueAnomaly
		}
	}

	// True anomaly -> eccentric anomaly -> mean anomaly.
	sinNu, cosNu := math.Sincos(trueAnomaly)
	E := math.Atan2(math.Sqrt(1-ecc*ecc)*sinNu, ecc+cosNu)
	M := wrapTwoPi(E - ecc*math.Sin(E))

	return Elements{
		SemiMajorAxis: a,
		Eccentricity:  ecc,
		Inclination:   inc,
		RAAN:          raan,
		ArgPerigee:    wrapTwoPi(argPerigee),
		MeanAnomaly:   M,
		Epoch:         sv.Epoch,
	}, nil
}

// ToStateVector reconstructs the Cartesian state for the given element
// set. Solves Kepler's equation for the eccentric anomaly, builds the
// perifocal-plane state and rotates it into the inertial frame.
func (cv Converter) ToStateVector(el Elements) (StateVector, error) {
	E, err := cv.solver.Solve(el.MeanAnomaly, el.Eccentricity)
	if err != nil {
		return StateVector{}, err
	}

	sinE, cosE := math.Sincos(E)
	ecc := el.Eccentricity
	nu := math.Atan2(math.Sqrt(1-ecc*ecc)*sinE, cosE-ecc)
	radius := el.SemiMajorAxis * (1 - ecc*cosE)
	p := el.SemiMajorAxis * (1 - ecc*ecc)

	sinNu, cosNu := math.Sincos(nu)
	posPQW := r3.Vec{X: radius * cosNu, Y: radius * sinNu}
	velPQW := r3.Scale(math.Sqrt(cv.consts.Mu/p), r3.Vec{X: -sinNu, Y: ecc + cosNu})

	return StateVector{
		Epoch:    el.Epoch,
		Position: perifocalToInertial(el.Inclination, el.ArgPerigee, el.RAAN, posPQW),
		Velocity: perifocalToInertial(el.Inclination, el.ArgPerigee, el.RAAN, velPQW),
	}, nil
}
