package models

import (
	"net/url"
	"strconv"
	"strings"
)

// TelemetryRecord is the payload shape delivered to the remote logging
// endpoint. It is constructed fresh for every send attempt and never stored
// on the device.
type TelemetryRecord struct {
	MoistureRaw  int
	Raining      bool
	Cover        CoverState
	TemperatureC float64
	HumidityPct  float64
}

// Query parameter names fixed by the remote endpoint's contract.
const (
	ParamRainValue     = "rain_value"
	ParamIsRaining     = "is_raining"
	ParamClothesStatus = "clothes_status"
	ParamTemperature   = "temperature"
	ParamHumidity      = "humidity"
)

// EncodeQuery renders the record as the endpoint's query string. Spaces are
// percent-encoded (%20, not +) because that is what the endpoint expects in
// clothes_status.
func (t TelemetryRecord) EncodeQuery() string {
	v := url.Values{}
	v.Set(ParamRainValue, strconv.Itoa(t.MoistureRaw))
	v.Set(ParamIsRaining, yesNo(t.Raining))
	v.Set(ParamClothesStatus, t.Cover.ClothesStatus())
	v.Set(ParamTemperature, strconv.FormatFloat(t.TemperatureC, 'f', 2, 64))
	v.Set(ParamHumidity, strconv.FormatFloat(t.HumidityPct, 'f', 2, 64))
	return strings.ReplaceAll(v.Encode(), "+", "%20")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
