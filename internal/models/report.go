package models

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Report is a telemetry record as received and stored by the log server,
// stamped with the time it arrived.
type Report struct {
	ID           int64     `json:"id,omitempty"`
	MoistureRaw  int       `json:"rain_value"`
	Raining      bool      `json:"is_raining"`
	Cover        string    `json:"clothes_status"`
	TemperatureC float64   `json:"temperature"`
	HumidityPct  float64   `json:"humidity"`
	ReceivedAt   time.Time `json:"received_at"`
}

// ReportFromQuery parses and validates the device's query parameters.
// All five parameters are required; unknown labels and non-numeric values
// are rejected so garbage never reaches storage.
func ReportFromQuery(q url.Values) (*Report, error) {
	moisture, err := strconv.Atoi(q.Get(ParamRainValue))
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", ParamRainValue, q.Get(ParamRainValue))
	}

	var raining bool
	switch q.Get(ParamIsRaining) {
	case "Yes":
		raining = true
	case "No":
		raining = false
	default:
		return nil, fmt.Errorf("invalid %s %q", ParamIsRaining, q.Get(ParamIsRaining))
	}

	status := q.Get(ParamClothesStatus)
	if _, ok := CoverStateFromClothesStatus(status); !ok {
		return nil, fmt.Errorf("invalid %s %q", ParamClothesStatus, status)
	}

	temp, err := strconv.ParseFloat(q.Get(ParamTemperature), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", ParamTemperature, q.Get(ParamTemperature))
	}
	humidity, err := strconv.ParseFloat(q.Get(ParamHumidity), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", ParamHumidity, q.Get(ParamHumidity))
	}

	return &Report{
		MoistureRaw:  moisture,
		Raining:      raining,
		Cover:        status,
		TemperatureC: temp,
		HumidityPct:  humidity,
		ReceivedAt:   time.Now(),
	}, nil
}

// Copy returns a deep copy of the report.
func (r *Report) Copy() *Report {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

func (r *Report) String() string {
	return fmt.Sprintf("moisture=%d raining=%t cover=%q temp=%.1f humidity=%.1f",
		r.MoistureRaw, r.Raining, r.Cover, r.TemperatureC, r.HumidityPct)
}
