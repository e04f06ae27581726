// Package display shows the current clothesline status locally. The core
// treats the display as an output-only sink refreshed every cycle.
package display

import (
	"github.com/rs/zerolog"
)

// Presenter receives the current status once per control cycle
type Presenter interface {
	Show(headline, detail string, raining bool, moisture int, temperatureC, humidityPct float64)
}

// LogPresenter renders the status line through the structured logger. It
// stands in for the OLED panel on boards that have none attached.
type LogPresenter struct {
	logger zerolog.Logger
}

// NewLogPresenter creates a presenter that writes status to the logger
func NewLogPresenter(logger zerolog.Logger) *LogPresenter {
	return &LogPresenter{logger: logger}
}

// Show writes one status line
func (p *LogPresenter) Show(headline, detail string, raining bool, moisture int, temperatureC, humidityPct float64) {
	p.logger.Info().
		Str("headline", headline).
		Str("detail", detail).
		Bool("raining", raining).
		Int("moisture", moisture).
		Float64("temperature", temperatureC).
		Float64("humidity", humidityPct).
		Msg("Status")
}

// NopPresenter discards status updates
type NopPresenter struct{}

func (NopPresenter) Show(string, string, bool, int, float64, float64) {}
