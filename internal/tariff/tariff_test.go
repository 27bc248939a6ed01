package tariff

import (
	"testing"
	"time"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

func TestForHour(t *testing.T) {
	cases := []struct {
		hour int
		want models.TariffPeriod
	}{
		{0, models.TariffValley},
		{5, models.TariffValley},
		{6, models.TariffPeak},
		{9, models.TariffPeak},
		{10, models.TariffStandard},
		{17, models.TariffStandard},
		{18, models.TariffPeak},
		{21, models.TariffPeak},
		{22, models.TariffValley},
		{23, models.TariffValley},
	}

	for _, c := range cases {
		if got := ForHour(c.hour); got != c.want {
			t.Errorf("ForHour(%d) = %s, want %s", c.hour, got, c.want)
		}
	}
}

func TestForHourTotal(t *testing.T) {
	for h := 0; h < 24; h++ {
		got := ForHour(h)
		if got != models.TariffPeak && got != models.TariffStandard && got != models.TariffValley {
			t.Errorf("ForHour(%d) returned unknown period %q", h, got)
		}
	}
}

func TestAt(t *testing.T) {
	ts := time.Date(2026, 2, 20, 19, 30, 0, 0, time.Local)
	if got := At(ts); got != models.TariffPeak {
		t.Errorf("At(19:30) = %s, want PEAK", got)
	}
}
