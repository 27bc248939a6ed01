// Package control implements the automatic pump controller: the fixed
// priority decision cascade, per-station evaluation and the periodic
// control cycle over every station with automatic control enabled.
package control

import (
	"fmt"
	"strings"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

// Thresholds are the resolved control bounds for one station. Fields
// keep their documented defaults when no active threshold row covers
// them.
type Thresholds struct {
	MinWaterLevel       float64
	MaxWaterLevel       float64
	MinInletPressure    float64
	MaxRain2hForPumping float64
}

// DefaultThresholds returns the documented fallback bounds
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinWaterLevel:       0.5,
		MaxWaterLevel:       3.0,
		MinInletPressure:    2.0,
		MaxRain2hForPumping: 30.0,
	}
}

// ResolveThresholds overlays the station's active threshold rows onto
// the defaults. Parameter names are matched by substring, the way the
// configuration has always been written (water_level, pressure,
// precipitation/rain).
func ResolveThresholds(rows []models.Threshold) Thresholds {
	th := DefaultThresholds()
	for _, row := range rows {
		name := strings.ToLower(row.ParameterName)
		switch {
		case strings.Contains(name, "water_level") || strings.Contains(name, "nivel"):
			if row.MinValue != nil {
				th.MinWaterLevel = *row.MinValue
			}
			if row.MaxValue != nil {
				th.MaxWaterLevel = *row.MaxValue
			}
		case strings.Contains(name, "pressure") || strings.Contains(name, "presion"):
			if row.MinValue != nil {
				th.MinInletPressure = *row.MinValue
			}
		case strings.Contains(name, "precipitation") || strings.Contains(name, "rain") || strings.Contains(name, "lluvia"):
			if row.MaxValue != nil {
				th.MaxRain2hForPumping = *row.MaxValue
			}
		}
	}
	return th
}

// Inputs are the readings one decision is based on. WaterLevel is nil
// when the station has no level reading yet.
type Inputs struct {
	WaterLevel    *float64
	Rainfall2h    float64
	Rainfall24h   float64
	Tariff        models.TariffPeriod
	PumpRunning   bool
	InletPressure float64
}

// Decision is the outcome of the cascade: whether the pump should run
// and why. It is ephemeral, only the resulting control log entry is
// persisted.
type Decision struct {
	ShouldRun bool
	Reason    string
}

// Decide runs the fixed-priority rule cascade. The first matching rule
// decides; later rules are never consulted.
func Decide(in Inputs, th Thresholds) Decision {
	// REGLA 1: nivel crítico bajo, bombear incluso con lluvia moderada
	if in.WaterLevel != nil && *in.WaterLevel < th.MinWaterLevel*0.5 {
		if in.Rainfall2h < 15.0 {
			if in.InletPressure >= th.MinInletPressure {
				return Decision{
					ShouldRun: true,
					Reason:    fmt.Sprintf("Nivel crítico (%.2fm < %.2fm)", *in.WaterLevel, th.MinWaterLevel*0.5),
				}
			}
			return Decision{
				ShouldRun: false,
				Reason:    fmt.Sprintf("Presión insuficiente (%.2f bar < %.1f bar)", in.InletPressure, th.MinInletPressure),
			}
		}
		// demasiada lluvia para arrancar con seguridad, seguir evaluando
	}

	// REGLA 2: lluvia fuerte reciente
	if in.Rainfall2h > th.MaxRain2hForPumping {
		return Decision{
			ShouldRun: false,
			Reason:    fmt.Sprintf("Lluvia fuerte reciente (%.1fmm en 2h)", in.Rainfall2h),
		}
	}

	// REGLA 3: nivel máximo alcanzado
	if in.WaterLevel != nil && *in.WaterLevel > th.MaxWaterLevel {
		return Decision{
			ShouldRun: false,
			Reason:    fmt.Sprintf("Nivel máximo alcanzado (%.2fm > %.2fm)", *in.WaterLevel, th.MaxWaterLevel),
		}
	}

	// REGLA 4: optimización por tarifa energética
	if in.Tariff == models.TariffPeak {
		if in.WaterLevel != nil && *in.WaterLevel < th.MinWaterLevel*0.7 {
			return Decision{
				ShouldRun: true,
				Reason:    fmt.Sprintf("Nivel bajo en tarifa pico (%.2fm < %.2fm)", *in.WaterLevel, th.MinWaterLevel*0.7),
			}
		}
		return Decision{
			ShouldRun: false,
			Reason:    fmt.Sprintf("Tarifa PICO - esperar tarifa valle (nivel actual: %sm)", levelOrND(in.WaterLevel)),
		}
	}

	// REGLA 5: condiciones normales de operación
	if in.WaterLevel != nil && *in.WaterLevel < th.MinWaterLevel &&
		in.Rainfall2h < 5.0 && in.InletPressure >= th.MinInletPressure {
		return Decision{
			ShouldRun: true,
			Reason:    fmt.Sprintf("Nivel bajo (%.2fm < %.2fm), condiciones óptimas", *in.WaterLevel, th.MinWaterLevel),
		}
	}

	// REGLA 6: nivel dentro de banda, mantener estado actual
	if in.WaterLevel != nil && *in.WaterLevel >= th.MinWaterLevel && *in.WaterLevel <= th.MaxWaterLevel {
		return Decision{
			ShouldRun: in.PumpRunning,
			Reason:    fmt.Sprintf("Nivel aceptable (%.2fm), mantener estado", *in.WaterLevel),
		}
	}

	// Por defecto: apagar
	return Decision{ShouldRun: false, Reason: "Condiciones no requieren bombeo"}
}

func levelOrND(level *float64) string {
	if level == nil {
		return "N/D"
	}
	return fmt.Sprintf("%.2f", *level)
}
