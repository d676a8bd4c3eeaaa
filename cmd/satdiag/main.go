// Command satdiag exercises the prediction pipeline from the command
// line: it extracts orbital elements from a reference state vector,
// propagates one orbital period ahead and samples a short track.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/OorjitSethi/SatelliteTrackingAPI/internal/orbit"
	"github.com/OorjitSethi/SatelliteTrackingAPI/internal/track"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	consts := orbit.DefaultConstants()
	pred := orbit.NewPredictor(consts)

	epoch := time.Date(2025, 3, 3, 7, 59, 4, 0, time.UTC)
	// ISS-like circular orbit at ~400 km altitude, 51.6 degree inclination.
	radius := consts.EquatorialRadius + 400e3
	speed := math.Sqrt(consts.Mu / radius)
	incl := 51.6 * math.Pi / 180
	initial := orbit.StateVector{
		Epoch:    epoch,
		Position: r3.Vec{X: radius},
		Velocity: r3.Vec{Y: speed * math.Cos(incl), Z: speed * math.Sin(incl)},
	}

	el, err := pred.Converter().ToElements(initial)
	if err != nil {
		fmt.Println("ERROR extracting elements:", err)
		os.Exit(1)
	}
	fmt.Printf("Elements: a=%.1f m e=%.6f i=%.3f rad raan=%.3f rad M=%.3f rad\n",
		el.SemiMajorAxis, el.Eccentricity, el.Inclination, el.RAAN, el.MeanAnomaly)

	period := 2 * math.Pi * math.Sqrt(math.Pow(el.SemiMajorAxis, 3)/consts.Mu)
	fmt.Printf("Orbital period: %.1f s\n", period)

	target := epoch.Add(time.Duration(period * float64(time.Second)))
	state, err := pred.StateAt(initial, target)
	if err != nil {
		fmt.Println("ERROR propagating:", err)
		os.Exit(1)
	}
	drift := r3.Norm(r3.Sub(state.Position, initial.Position))
	fmt.Printf("Position after one period: [%.1f, %.1f, %.1f] m (J2 drift %.1f m)\n",
		state.Position.X, state.Position.Y, state.Position.Z, drift)

	sampler := track.NewSampler(pred, track.Config{Workers: 4, MaxPoints: 10000}, logger)
	points, err := sampler.Sample(context.Background(), initial, 24*time.Hour, time.Hour)
	if err != nil {
		fmt.Println("ERROR sampling track:", err)
		os.Exit(1)
	}
	fmt.Printf("Sampled %d track points over 24h:\n", len(points))
	for _, p := range points[:3] {
		fmt.Printf("  %s  [%.1f, %.1f, %.1f] m\n",
			p.Time.Format(time.RFC3339), p.Position.X, p.Position.Y, p.Position.Z)
	}
	fmt.Println("  ...")
}
