package orbit

import (
	"errors"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Predictor runs the full state-vector pipeline: extract elements,
// advance them to the target time, convert back to a state vector.
// It is stateless and safe for concurrent use.
type Predictor struct {
	conv Converter
	j2   J2Propagator
}

// NewPredictor returns a predictor for the given Earth model.
func NewPredictor(c Constants) *Predictor {
	return &Predictor{
		conv: NewConverter(c),
		j2:   NewJ2Propagator(c),
	}
}

// Converter exposes the predictor's element converter.
func (p *Predictor) Converter() Converter {
	return p.conv
}

// StateAt propagates the initial state to the target time. States that
// do not describe a closed ellipse (rectilinear, parabolic, hyperbolic)
// cannot be advanced through orbital elements; they coast on an
// unaccelerated straight line instead, which keeps the prediction
// defined and time-symmetric for every input.
func (p *Predictor) StateAt(initial StateVector, target time.Time) (StateVector, error) {
	el, err := p.conv.ToElements(initial)
	if err != nil {
		var degenerate *DegenerateOrbitError
		if errors.As(err, &degenerate) {
			return linearCoast(initial, target), nil
		}
		return StateVector{}, err
	}
	return p.conv.ToStateVector(p.j2.Advance(el, target.Sub(initial.Epoch)))
}

func linearCoast(sv StateVector, target time.Time) StateVector {
	dt := target.Sub(sv.Epoch).Seconds()
	return StateVector{
		Epoch:    target,
		Position: r3.Add(sv.Position, r3.Scale(dt, sv.Velocity)),
		Velocity: sv.Velocity,
	}
}
