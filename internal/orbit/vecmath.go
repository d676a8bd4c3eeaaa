package orbit

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	xAxis = r3.Vec{X: 1}
	zAxis = r3.Vec{Z: 1}
)

// wrapTwoPi normalizes an angle into [0, 2π). All angle wrap-around in
// this package goes through here so boundary behavior is consistent.
func wrapTwoPi(angle float64) float64 {
	wrapped := math.Mod(angle, 2*math.Pi)
	if wrapped < 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped
}

// rotX rotates v about the x axis by the given angle (right-hand rule).
func rotX(angle float64, v r3.Vec) r3.Vec {
	return r3.NewRotation(angle, xAxis).Rotate(v)
}

// rotZ rotates v about the z axis by the given angle (right-hand rule).
func rotZ(angle float64, v r3.Vec) r3.Vec {
	return r3.NewRotation(angle, zAxis).Rotate(v)
}

// perifocalToInertial rotates a perifocal-frame vector into the inertial
// frame using the classical 3-1-3 sequence: argument of perigee about z,
// inclination about x, RAAN about z.
func perifocalToInertial(inclination, argPerigee, raan float64, v r3.Vec) r3.Vec {
	return rotZ(raan, rotX(inclination, rotZ(argPerigee, v)))
}

// clampCos keeps a computed cosine inside [-1, 1] so rounding noise
// cannot turn math.Acos into NaN.
func clampCos(c float64) float64 {
	if c > 1 {
		return 1
	}
	if c < -1 {
		return -1
	}
	return c
}
