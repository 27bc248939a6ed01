// Package tariff maps the hour of day to the Colombian energy tariff
// period used to bias pumping toward cheaper hours.
package tariff

import (
	"time"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

// ForHour returns the tariff period for an hour of day (0..23).
// The mapping is fixed: valley overnight, peak in the morning and
// evening ramps, standard in between.
func ForHour(hour int) models.TariffPeriod {
	switch {
	case hour >= 0 && hour < 6:
		return models.TariffValley
	case hour >= 6 && hour < 10:
		return models.TariffPeak
	case hour >= 10 && hour < 18:
		return models.TariffStandard
	case hour >= 18 && hour < 22:
		return models.TariffPeak
	default: // 22-24
		return models.TariffValley
	}
}

// At returns the tariff period in effect at t
func At(t time.Time) models.TariffPeriod {
	return ForHour(t.Hour())
}
