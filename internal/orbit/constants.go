package orbit

// Constants holds the Earth model parameters used by every computation.
// Immutable once constructed; inject a copy at construction time rather
// than sharing mutable globals.
type Constants struct {
	Mu               float64 // standard gravitational parameter, m^3/s^2
	EquatorialRadius float64 // equatorial radius, m
	J2               float64 // second zonal harmonic coefficient, dimensionless
}

// DefaultConstants returns the WGS-84 Earth model.
func DefaultConstants() Constants {
	return Constants{
		Mu:               3.986004418e14,
		EquatorialRadius: 6378137.0,
		J2:               1.08263e-3,
	}
}
