package sensor

import (
	"fmt"

	"github.com/afroash/dht"
)

// ClimateSensor defines the interface for reading temperature and humidity
type ClimateSensor interface {
	// Read performs a single reading from the sensor
	// Returns temperature (°C), humidity (%), and any error
	Read() (temperature float64, humidity float64, err error)

	// Close cleans up GPIO resources
	Close() error
}

// DHT11Climate implements ClimateSensor for DHT11 hardware
type DHT11Climate struct {
	pin        int
	maxRetries int
	sensor     *dht.Sensor
}

// NewDHT11Climate creates a new DHT11 climate sensor on the given GPIO pin
func NewDHT11Climate(pin int) (*DHT11Climate, error) {
	sensor, err := dht.NewDHT11(pin)
	if err != nil {
		return nil, fmt.Errorf("failed to init DHT11 on pin %d: %w", pin, err)
	}
	return &DHT11Climate{
		pin:        pin,
		maxRetries: 3,
		sensor:     sensor,
	}, nil
}

// Read performs a reading from the DHT11 sensor with retry logic
func (d *DHT11Climate) Read() (float64, float64, error) {
	reading, err := d.sensor.ReadRetry(d.maxRetries)
	if err != nil {
		return 0, 0, fmt.Errorf("after %d retries, failed to read from sensor", d.maxRetries)
	}
	if err := validateClimate(reading.Temperature, reading.Humidity); err != nil {
		return 0, 0, fmt.Errorf("invalid reading: %w", err)
	}

	return reading.Temperature, reading.Humidity, nil
}

// Close cleans up GPIO resources
func (d *DHT11Climate) Close() error {
	return d.sensor.Close()
}

// validateClimate checks if temperature and humidity values are reasonable
func validateClimate(temp, humidity float64) error {

	// Relaxed bounds for sanity checking, wider than the DHT11 spec sheet:
	const (
		minTemp     = -20.0
		maxTemp     = 60.0
		minHumidity = 0.0
		maxHumidity = 100.0
	)
	if temp < minTemp || temp > maxTemp {
		return fmt.Errorf("temperature %.1f°C outside %v..%v", temp, minTemp, maxTemp)
	}
	if humidity < minHumidity || humidity > maxHumidity {
		return fmt.Errorf("humidity %.1f%% outside %v..%v", humidity, minHumidity, maxHumidity)
	}
	return nil
}
