package models

import (
	"fmt"
	"time"
)

// SensorReading is the combined sample taken at the top of every control cycle.
// MoistureRaw is the sensor-native analog value, lower = wetter; no unit
// conversion happens anywhere in the core.
type SensorReading struct {
	MoistureRaw  int       `json:"moisture_raw"`
	TemperatureC float64   `json:"temperature"`
	HumidityPct  float64   `json:"humidity"`
	Valid        bool      `json:"valid"`
	Timestamp    time.Time `json:"timestamp"`
}

// IsRaining reports whether the reading counts as rain against the given
// threshold. The comparison is strict and uses the instantaneous value only;
// there is no hysteresis band.
func (r *SensorReading) IsRaining(threshold int) bool {
	return r.MoistureRaw < threshold
}

// UpdateClimate merges a climate sample into the reading. When ok is false the
// previous temperature and humidity are kept and the reading is marked invalid;
// a failed climate read is never an error, just a stale sample.
func (r *SensorReading) UpdateClimate(temperatureC, humidityPct float64, ok bool) {
	if !ok {
		r.Valid = false
		return
	}
	r.TemperatureC = temperatureC
	r.HumidityPct = humidityPct
	r.Valid = true
}

func (r *SensorReading) String() string {
	return fmt.Sprintf("moisture=%d temp=%.1f°C humidity=%.1f%% valid=%t",
		r.MoistureRaw, r.TemperatureC, r.HumidityPct, r.Valid)
}
