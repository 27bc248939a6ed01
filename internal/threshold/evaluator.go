// Package threshold evaluates raw readings against the configured
// parameter bounds and reports violations for the alert pipeline.
package threshold

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

// Source looks up the active thresholds for a parameter name.
// Lookup order is authoritative: the first matching bound wins.
type Source interface {
	ActiveThresholds(ctx context.Context, parameterName string) ([]models.Threshold, error)
}

// Violation describes one exceeded bound
type Violation struct {
	ThresholdID int             `json:"threshold_id"`
	Parameter   string          `json:"parameter"`
	Value       float64         `json:"value"`
	AlertLevel  models.Severity `json:"alert_level"`
	Message     string          `json:"message"`
}

// Evaluator checks observed values against configured thresholds
type Evaluator struct {
	source Source
}

// NewEvaluator creates an evaluator over the given threshold source
func NewEvaluator(source Source) *Evaluator {
	return &Evaluator{source: source}
}

// Evaluate returns the first violation of an active threshold for the
// parameter, or nil when the value is inside every configured bound.
// A parameter with no configured thresholds never violates: telemetry
// ingestion must not be blocked by missing configuration.
func (e *Evaluator) Evaluate(ctx context.Context, parameterName string, value float64) (*Violation, error) {
	thresholds, err := e.source.ActiveThresholds(ctx, parameterName)
	if err != nil {
		return nil, fmt.Errorf("consultar umbrales de %s: %w", parameterName, err)
	}

	for _, th := range thresholds {
		if th.MinValue != nil && value < *th.MinValue {
			return &Violation{
				ThresholdID: th.ID,
				Parameter:   parameterName,
				Value:       value,
				AlertLevel:  th.AlertLevel,
				Message: fmt.Sprintf("%s (%s) por debajo del minimo (%s)",
					parameterName, formatValue(value), formatValue(*th.MinValue)),
			}, nil
		}
		if th.MaxValue != nil && value > *th.MaxValue {
			return &Violation{
				ThresholdID: th.ID,
				Parameter:   parameterName,
				Value:       value,
				AlertLevel:  th.AlertLevel,
				Message: fmt.Sprintf("%s (%s) excede el maximo (%s)",
					parameterName, formatValue(value), formatValue(*th.MaxValue)),
			}, nil
		}
	}

	return nil, nil
}

// formatValue renders a reading without trailing zeros (0.3, not 0.30)
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
