package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/OorjitSethi/SatelliteTrackingAPI/internal/orbit"
	"github.com/OorjitSethi/SatelliteTrackingAPI/internal/track"
)

func newPredictHandler() http.HandlerFunc {
	return predictHandler(testLogger(), orbit.NewPredictor(orbit.DefaultConstants()), validator.New())
}

func newTrackHandler(maxPoints int) http.HandlerFunc {
	logger := testLogger()
	pred := orbit.NewPredictor(orbit.DefaultConstants())
	sampler := track.NewSampler(pred, track.Config{Workers: 2, MaxPoints: maxPoints}, logger)
	return trackHandler(logger, sampler, validator.New())
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

// leoBody returns a request body fragment for an ISS-like circular
// orbit at ~400 km altitude.
func leoBody() (position, velocity string) {
	c := orbit.DefaultConstants()
	radius := c.EquatorialRadius + 400e3
	speed := math.Sqrt(c.Mu / radius)
	incl := 51.6 * math.Pi / 180
	position = fmt.Sprintf("[%g, 0, 0]", radius)
	velocity = fmt.Sprintf("[0, %g, %g]", speed*math.Cos(incl), speed*math.Sin(incl))
	return
}

func TestPredictZeroDeltaEchoesPosition(t *testing.T) {
	position, velocity := leoBody()
	body := fmt.Sprintf(`{
		"initial_time_utc": "2025-03-03 07:59:04",
		"initial_position": %s,
		"velocity": %s,
		"final_time_utc": "2025-03-03 07:59:04"
	}`, position, velocity)

	w := postJSON(t, newPredictHandler(), body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var resp predictResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	c := orbit.DefaultConstants()
	wantX := c.EquatorialRadius + 400e3
	if math.Abs(resp.FinalPosition.X-wantX) > 1e-3 || math.Abs(resp.FinalPosition.Y) > 1e-3 || math.Abs(resp.FinalPosition.Z) > 1e-3 {
		t.Errorf("final_position = %+v, want [%g, 0, 0] within 1e-3 m", resp.FinalPosition, wantX)
	}
	if resp.InitialTimeUTC != "2025-03-03 07:59:04" || resp.FinalTimeUTC != "2025-03-03 07:59:04" {
		t.Errorf("echoed timestamps wrong: %+v", resp)
	}
}

// TestPredictReferenceScenario submits the documented example state
// vector and checks zero-delta prediction returns the input position.
func TestPredictReferenceScenario(t *testing.T) {
	body := `{
		"initial_time_utc": "2025-03-03 07:59:04",
		"initial_position": [-33555551.4377, -2752187.075, 5223462.1788],
		"velocity": [3574.178, -6667.428, -1209.336],
		"final_time_utc": "2025-03-03 07:59:04"
	}`

	w := postJSON(t, newPredictHandler(), body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var resp predictResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if math.Abs(resp.FinalPosition.X+33555551.4377) > 1e-3 ||
		math.Abs(resp.FinalPosition.Y+2752187.075) > 1e-3 ||
		math.Abs(resp.FinalPosition.Z-5223462.1788) > 1e-3 {
		t.Errorf("final_position = %+v, want input position within 1e-3 m", resp.FinalPosition)
	}
}

// TestPredictRectilinearCoasts submits a state whose velocity is
// parallel to its position. Such a trajectory has no orbital elements;
// the prediction still succeeds by coasting on a straight line.
func TestPredictRectilinearCoasts(t *testing.T) {
	body := `{
		"initial_time_utc": "2025-03-03 07:59:04",
		"initial_position": [7000000, 0, 0],
		"velocity": [5000, 0, 0],
		"final_time_utc": "2025-03-03 08:59:04"
	}`

	w := postJSON(t, newPredictHandler(), body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var resp predictResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// 7000 km + 5 km/s over one hour.
	wantX := 7000e3 + 5000*3600.0
	if math.Abs(resp.FinalPosition.X-wantX) > 1e-3 ||
		math.Abs(resp.FinalPosition.Y) > 1e-3 ||
		math.Abs(resp.FinalPosition.Z) > 1e-3 {
		t.Errorf("final_position = %+v, want [%g, 0, 0]", resp.FinalPosition, wantX)
	}
}

func TestPredictValidation(t *testing.T) {
	position, velocity := leoBody()

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing velocity", fmt.Sprintf(`{"initial_time_utc":"2025-03-03 07:59:04","initial_position":%s,"final_time_utc":"2025-03-03 08:59:04"}`, position)},
		{"short position vector", fmt.Sprintf(`{"initial_time_utc":"2025-03-03 07:59:04","initial_position":[1,2],"velocity":%s,"final_time_utc":"2025-03-03 08:59:04"}`, velocity)},
		{"non-numeric component", fmt.Sprintf(`{"initial_time_utc":"2025-03-03 07:59:04","initial_position":[1,2,"x"],"velocity":%s,"final_time_utc":"2025-03-03 08:59:04"}`, velocity)},
		{"bad timestamp format", fmt.Sprintf(`{"initial_time_utc":"2025-03-03T07:59:04Z","initial_position":%s,"velocity":%s,"final_time_utc":"2025-03-03 08:59:04"}`, position, velocity)},
		{"final before initial", fmt.Sprintf(`{"initial_time_utc":"2025-03-03 07:59:04","initial_position":%s,"velocity":%s,"final_time_utc":"2025-03-03 06:59:04"}`, position, velocity)},
		{"not json", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, newPredictHandler(), tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			var resp map[string]any
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp["error"] == nil {
				t.Error("expected error field in response")
			}
		})
	}
}

func TestTrackPointCountAndOrdering(t *testing.T) {
	position, velocity := leoBody()
	body := fmt.Sprintf(`{
		"initial_time_utc": "2025-03-03 07:59:04",
		"initial_position": %s,
		"velocity": %s,
		"duration_days": 1,
		"interval_hours": 6
	}`, position, velocity)

	w := postJSON(t, newTrackHandler(10000), body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var resp trackResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.TotalPoints != 5 {
		t.Errorf("total_points = %d, want 5 (1 day / 6 hours + start)", resp.TotalPoints)
	}
	if len(resp.SatelliteTrack) != resp.TotalPoints {
		t.Errorf("len(satellite_track) = %d, want total_points %d", len(resp.SatelliteTrack), resp.TotalPoints)
	}
	if resp.IntervalHours != 6 {
		t.Errorf("interval_hours = %v, want 6", resp.IntervalHours)
	}
	if resp.SatelliteTrack[0].TimeUTC != "2025-03-03 07:59:04" {
		t.Errorf("first point time = %q, want request epoch", resp.SatelliteTrack[0].TimeUTC)
	}

	c := orbit.DefaultConstants()
	wantX := c.EquatorialRadius + 400e3
	if math.Abs(resp.SatelliteTrack[0].Position.X-wantX) > 1e-6 {
		t.Errorf("first point x = %v, want echoed input %v", resp.SatelliteTrack[0].Position.X, wantX)
	}

	for i := 1; i < len(resp.SatelliteTrack); i++ {
		if resp.SatelliteTrack[i].TimeUTC <= resp.SatelliteTrack[i-1].TimeUTC {
			t.Errorf("time_utc not increasing at index %d: %q then %q", i, resp.SatelliteTrack[i-1].TimeUTC, resp.SatelliteTrack[i].TimeUTC)
		}
	}
}

func TestTrackDefaults(t *testing.T) {
	position, velocity := leoBody()
	body := fmt.Sprintf(`{
		"initial_time_utc": "2025-03-03 07:59:04",
		"initial_position": %s,
		"velocity": %s
	}`, position, velocity)

	w := postJSON(t, newTrackHandler(10000), body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var resp trackResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// 30 days at 6-hour intervals.
	if resp.TotalPoints != 121 {
		t.Errorf("total_points = %d, want 121 with default duration and interval", resp.TotalPoints)
	}
	if resp.IntervalHours != 6 {
		t.Errorf("interval_hours = %v, want default 6", resp.IntervalHours)
	}
}

func TestTrackValidation(t *testing.T) {
	position, velocity := leoBody()

	tests := []struct {
		name string
		body string
	}{
		{"zero interval", fmt.Sprintf(`{"initial_time_utc":"2025-03-03 07:59:04","initial_position":%s,"velocity":%s,"interval_hours":0}`, position, velocity)},
		{"negative interval", fmt.Sprintf(`{"initial_time_utc":"2025-03-03 07:59:04","initial_position":%s,"velocity":%s,"interval_hours":-1}`, position, velocity)},
		{"negative duration", fmt.Sprintf(`{"initial_time_utc":"2025-03-03 07:59:04","initial_position":%s,"velocity":%s,"duration_days":-2}`, position, velocity)},
		{"missing position", fmt.Sprintf(`{"initial_time_utc":"2025-03-03 07:59:04","velocity":%s}`, velocity)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, newTrackHandler(10000), tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body: %s", w.Code, w.Body.String())
			}
		})
	}
}

// TestTrackBudget verifies that oversized grids are rejected up front
// with the budget reported, instead of being computed or truncated.
func TestTrackBudget(t *testing.T) {
	position, velocity := leoBody()
	body := fmt.Sprintf(`{
		"initial_time_utc": "2025-03-03 07:59:04",
		"initial_position": %s,
		"velocity": %s,
		"duration_days": 30,
		"interval_hours": 0.01
	}`, position, velocity)

	w := postJSON(t, newTrackHandler(100), body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] == nil {
		t.Error("expected error field in response")
	}
	if resp["max_points"] == nil {
		t.Error("expected max_points field in response")
	}
	if got, ok := resp["max_points"].(float64); !ok || int(got) != 100 {
		t.Errorf("max_points = %v, want 100", resp["max_points"])
	}
}
