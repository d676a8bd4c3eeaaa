package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/OorjitSethi/SatelliteTrackingAPI/internal/metrics"
	"github.com/OorjitSethi/SatelliteTrackingAPI/internal/orbit"
	"github.com/OorjitSethi/SatelliteTrackingAPI/internal/track"
)

// timeLayout is the only accepted timestamp format: UTC, no offset.
const timeLayout = "2006-01-02 15:04:05"

// Track request defaults, applied when the field is absent.
const (
	defaultDurationDays  = 30.0
	defaultIntervalHours = 6.0
)

type vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type predictRequest struct {
	InitialTimeUTC  string    `json:"initial_time_utc" validate:"required"`
	InitialPosition []float64 `json:"initial_position" validate:"required,len=3"`
	Velocity        []float64 `json:"velocity" validate:"required,len=3"`
	FinalTimeUTC    string    `json:"final_time_utc" validate:"required"`
}

type predictResponse struct {
	FinalPosition  vec3   `json:"final_position"`
	InitialTimeUTC string `json:"initial_time_utc"`
	FinalTimeUTC   string `json:"final_time_utc"`
}

type trackRequest struct {
	InitialTimeUTC  string    `json:"initial_time_utc" validate:"required"`
	InitialPosition []float64 `json:"initial_position" validate:"required,len=3"`
	Velocity        []float64 `json:"velocity" validate:"required,len=3"`
	DurationDays    *float64  `json:"duration_days"`
	IntervalHours   *float64  `json:"interval_hours"`
}

type trackPoint struct {
	TimeUTC  string `json:"time_utc"`
	Position vec3   `json:"position"`
}

type trackResponse struct {
	SatelliteTrack []trackPoint `json:"satellite_track"`
	InitialTimeUTC string       `json:"initial_time_utc"`
	TotalPoints    int          `json:"total_points"`
	IntervalHours  float64      `json:"interval_hours"`
}

func predictHandler(logger *slog.Logger, pred *orbit.Predictor, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.Wrap(err, "decode request"))
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		initialTime, err := parseTimestamp(req.InitialTimeUTC, "initial_time_utc")
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		finalTime, err := parseTimestamp(req.FinalTimeUTC, "final_time_utc")
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if finalTime.Before(initialTime) {
			writeError(w, http.StatusBadRequest, errors.New("final_time_utc must not be earlier than initial_time_utc"))
			return
		}

		initial := orbit.StateVector{
			Epoch:    initialTime,
			Position: toVec(req.InitialPosition),
			Velocity: toVec(req.Velocity),
		}

		start := time.Now()
		state, err := pred.StateAt(initial, finalTime)
		if err != nil {
			metrics.RecordPrediction(time.Since(start), "error")
			logger.Error("prediction failed", "error", err)
			writeError(w, statusForError(err), err)
			return
		}
		metrics.RecordPrediction(time.Since(start), "ok")

		writeJSON(w, http.StatusOK, predictResponse{
			FinalPosition:  vec3{X: state.Position.X, Y: state.Position.Y, Z: state.Position.Z},
			InitialTimeUTC: req.InitialTimeUTC,
			FinalTimeUTC:   req.FinalTimeUTC,
		})
	}
}

func trackHandler(logger *slog.Logger, sampler *track.Sampler, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req trackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.Wrap(err, "decode request"))
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		initialTime, err := parseTimestamp(req.InitialTimeUTC, "initial_time_utc")
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		durationDays := defaultDurationDays
		if req.DurationDays != nil {
			durationDays = *req.DurationDays
		}
		intervalHours := defaultIntervalHours
		if req.IntervalHours != nil {
			intervalHours = *req.IntervalHours
		}
		duration := time.Duration(durationDays * 24 * float64(time.Hour))
		interval := time.Duration(intervalHours * float64(time.Hour))

		initial := orbit.StateVector{
			Epoch:    initialTime,
			Position: toVec(req.InitialPosition),
			Velocity: toVec(req.Velocity),
		}

		start := time.Now()
		points, err := sampler.Sample(r.Context(), initial, duration, interval)
		if err != nil {
			metrics.RecordPrediction(time.Since(start), "error")
			var budget *track.BudgetExceededError
			if errors.As(err, &budget) {
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"error":      budget.Error(),
					"max_points": budget.MaxPoints,
				})
				return
			}
			if errors.Is(err, track.ErrNonPositiveInterval) || errors.Is(err, track.ErrNegativeDuration) {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			logger.Error("track sampling failed", "error", err)
			writeError(w, statusForError(err), err)
			return
		}
		metrics.RecordPrediction(time.Since(start), "ok")
		metrics.ObserveTrackPoints(len(points))

		out := make([]trackPoint, len(points))
		for i, p := range points {
			out[i] = trackPoint{
				TimeUTC:  p.Time.UTC().Format(timeLayout),
				Position: vec3{X: p.Position.X, Y: p.Position.Y, Z: p.Position.Z},
			}
		}

		writeJSON(w, http.StatusOK, trackResponse{
			SatelliteTrack: out,
			InitialTimeUTC: req.InitialTimeUTC,
			TotalPoints:    len(points),
			IntervalHours:  intervalHours,
		})
	}
}

func parseTimestamp(value, field string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, errors.Errorf("invalid %s: expected YYYY-MM-DD HH:MM:SS in UTC", field)
	}
	return t, nil
}

// statusForError maps core error kinds to HTTP status codes. Degenerate
// orbits are a caller problem (the model does not apply to the input);
// convergence failures are an internal computation fault. The 422
// mapping covers handlers that call the element converter directly:
// the prediction pipeline itself never surfaces DegenerateOrbitError,
// it falls back to a straight-line coast instead.
func statusForError(err error) int {
	var degenerate *orbit.DegenerateOrbitError
	if errors.As(err, &degenerate) {
		return http.StatusUnprocessableEntity
	}
	var convergence *orbit.ConvergenceError
	if errors.As(err, &convergence) {
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func toVec(v []float64) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
