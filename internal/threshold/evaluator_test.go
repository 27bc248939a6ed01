package threshold

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

type fakeSource struct {
	thresholds map[string][]models.Threshold
	err        error
}

func (f *fakeSource) ActiveThresholds(_ context.Context, name string) ([]models.Threshold, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.thresholds[name], nil
}

func fptr(v float64) *float64 { return &v }

func TestEvaluateMinOnly(t *testing.T) {
	src := &fakeSource{thresholds: map[string][]models.Threshold{
		"inlet_pressure_bar": {{ID: 7, ParameterName: "inlet_pressure_bar", MinValue: fptr(2.0), AlertLevel: models.SeverityMedium}},
	}}
	ev := NewEvaluator(src)

	v, err := ev.Evaluate(context.Background(), "inlet_pressure_bar", 1.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v == nil {
		t.Fatal("expected violation for value below minimum, got nil")
	}
	if v.AlertLevel != models.SeverityMedium {
		t.Errorf("alert level = %s, want MEDIUM", v.AlertLevel)
	}
	if !strings.Contains(v.Message, "por debajo del minimo") {
		t.Errorf("unexpected message: %q", v.Message)
	}

	// Values at or above the minimum never violate a min-only threshold
	for _, ok := range []float64{2.0, 2.1, 99} {
		v, _ := ev.Evaluate(context.Background(), "inlet_pressure_bar", ok)
		if v != nil {
			t.Errorf("value %v unexpectedly violated: %s", ok, v.Message)
		}
	}
}

func TestEvaluateMaxOnly(t *testing.T) {
	src := &fakeSource{thresholds: map[string][]models.Threshold{
		"precipitation_mm": {{ID: 3, ParameterName: "precipitation_mm", MaxValue: fptr(30.0), AlertLevel: models.SeverityHigh}},
	}}
	ev := NewEvaluator(src)

	v, err := ev.Evaluate(context.Background(), "precipitation_mm", 42.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v == nil {
		t.Fatal("expected violation above maximum")
	}
	if !strings.Contains(v.Message, "excede el maximo") {
		t.Errorf("unexpected message: %q", v.Message)
	}

	if v, _ := ev.Evaluate(context.Background(), "precipitation_mm", 30.0); v != nil {
		t.Errorf("value equal to maximum should not violate, got %q", v.Message)
	}
}

func TestEvaluateWaterLevel(t *testing.T) {
	src := &fakeSource{thresholds: map[string][]models.Threshold{
		"water_level": {{ID: 1, ParameterName: "water_level", MinValue: fptr(0.5), MaxValue: fptr(3.0), AlertLevel: models.SeverityHigh}},
	}}
	ev := NewEvaluator(src)

	v, err := ev.Evaluate(context.Background(), "water_level", 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v == nil {
		t.Fatal("expected violation for 0.3 < 0.5")
	}
	if v.AlertLevel != models.SeverityHigh {
		t.Errorf("alert level = %s, want HIGH", v.AlertLevel)
	}
	if !strings.Contains(v.Message, "0.3") || !strings.Contains(v.Message, "0.5") {
		t.Errorf("message should contain observed and bound values, got %q", v.Message)
	}
}

func TestEvaluateMissingConfigFailOpen(t *testing.T) {
	ev := NewEvaluator(&fakeSource{})

	v, err := ev.Evaluate(context.Background(), "unconfigured_param", 9999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != nil {
		t.Errorf("missing configuration must not violate, got %q", v.Message)
	}
}

func TestEvaluateFirstMatchWins(t *testing.T) {
	src := &fakeSource{thresholds: map[string][]models.Threshold{
		"water_level": {
			{ID: 1, ParameterName: "water_level", MinValue: fptr(1.0), AlertLevel: models.SeverityHigh},
			{ID: 2, ParameterName: "water_level", MinValue: fptr(2.0), AlertLevel: models.SeverityCritical},
		},
	}}
	ev := NewEvaluator(src)

	v, _ := ev.Evaluate(context.Background(), "water_level", 0.5)
	if v == nil {
		t.Fatal("expected violation")
	}
	if v.ThresholdID != 1 {
		t.Errorf("first threshold in lookup order should win, got id %d", v.ThresholdID)
	}
}

func TestEvaluateSourceError(t *testing.T) {
	ev := NewEvaluator(&fakeSource{err: errors.New("db down")})

	if _, err := ev.Evaluate(context.Background(), "water_level", 1.0); err == nil {
		t.Fatal("expected error when the threshold source fails")
	}
}
