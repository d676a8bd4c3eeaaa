package track

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/OorjitSethi/SatelliteTrackingAPI/internal/orbit"
)

// Sampling validation errors.
var (
	ErrNonPositiveInterval = errors.New("interval must be positive")
	ErrNegativeDuration    = errors.New("duration must not be negative")
)

// BudgetExceededError reports a request whose time grid is larger than
// the per-request point budget.
type BudgetExceededError struct {
	Points    int
	MaxPoints int
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("track would produce %d points, budget is %d", e.Points, e.MaxPoints)
}

// Point is one sampled position on a track.
type Point struct {
	Time     time.Time
	Position r3.Vec // meters
}

// Config holds track sampling configuration.
type Config struct {
	Workers   int // parallel sampling goroutines per request
	MaxPoints int // per-request point budget
}

// Sampler drives the predictor across an evenly spaced time grid and
// returns the resulting positions in chronological order. Every call
// computes fresh; nothing is cached between requests.
type Sampler struct {
	pred   *orbit.Predictor
	config Config
	logger *slog.Logger
}

// NewSampler creates a track sampler.
func NewSampler(pred *orbit.Predictor, config Config, logger *slog.Logger) *Sampler {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Sampler{pred: pred, config: config, logger: logger}
}

// Sample computes floor(duration/interval)+1 points starting at the
// initial epoch. The first point is the caller's own position; the grid
// includes the end time only when it falls on the grid. Points are
// independent, so they are fanned out over the worker pool and
// reassembled in index order.
func (s *Sampler) Sample(ctx context.Context, initial orbit.StateVector, duration, interval time.Duration) ([]Point, error) {
	if interval <= 0 {
		return nil, ErrNonPositiveInterval
	}
	if duration < 0 {
		return nil, ErrNegativeDuration
	}

	numPoints := int(duration/interval) + 1
	if s.config.MaxPoints > 0 && numPoints > s.config.MaxPoints {
		return nil, &BudgetExceededError{Points: numPoints, MaxPoints: s.config.MaxPoints}
	}

	start := time.Now()
	points := make([]Point, numPoints)
	points[0] = Point{Time: initial.Epoch, Position: initial.Position}

	if numPoints > 1 {
		if err := s.sampleParallel(ctx, initial, interval, points); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("track sampled",
		"points", numPoints,
		"interval_seconds", interval.Seconds(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return points, nil
}

// sampleParallel fills points[1:] using a bounded worker pool. Each
// worker writes to its own index, so no result ordering pass is needed.
func (s *Sampler) sampleParallel(ctx context.Context, initial orbit.StateVector, interval time.Duration, points []Point) error {
	workers := s.config.Workers
	if workers > len(points)-1 {
		workers = len(points) - 1
	}

	jobs := make(chan int, workers*2)
	errs := make(chan error, workers)
	done := make(chan struct{})

	for i := 0; i < workers; i++ {
		go func() {
			for k := range jobs {
				target := initial.Epoch.Add(time.Duration(k) * interval)
				sv, err := s.pred.StateAt(initial, target)
				if err != nil {
					select {
					case errs <- fmt.Errorf("point %d at %s: %w", k, target.UTC().Format(time.RFC3339), err):
					default:
					}
					continue
				}
				points[k] = Point{Time: target, Position: sv.Position}
			}
			done <- struct{}{}
		}()
	}

	feed := func() error {
		defer close(jobs)
		for k := 1; k < len(points); k++ {
			select {
			case jobs <- k:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}
	feedErr := feed()

	for i := 0; i < workers; i++ {
		<-done
	}

	if feedErr != nil {
		return feedErr
	}
	select {
	case err := <-errs:
		return err
	default:
	}
	return nil
}
