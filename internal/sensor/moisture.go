package sensor

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MoistureSensor defines the interface for reading the rain sensor's analog
// channel. Values are sensor-native, lower = wetter.
type MoistureSensor interface {
	// Read returns the current raw analog value
	Read() (int, error)

	// Close releases sensor resources
	Close() error
}

// IIOMoistureSensor reads the rain board's analog output through a Linux
// industrial I/O ADC channel, e.g.
// /sys/bus/iio/devices/iio:device0/in_voltage0_raw for an ADS1115.
type IIOMoistureSensor struct {
	path string
}

// NewIIOMoistureSensor creates a moisture sensor backed by the given IIO
// channel file. Fails if the channel cannot be read, so a missing ADC is
// caught at startup rather than mid-loop.
func NewIIOMoistureSensor(path string) (*IIOMoistureSensor, error) {
	s := &IIOMoistureSensor{path: path}
	if _, err := s.Read(); err != nil {
		return nil, fmt.Errorf("failed to probe ADC channel %s: %w", path, err)
	}
	return s, nil
}

// Read returns the current raw ADC value
func (s *IIOMoistureSensor) Read() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("failed to read ADC channel: %w", err)
	}
	value, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("unexpected ADC value %q: %w", strings.TrimSpace(string(data)), err)
	}
	return value, nil
}

// Close releases sensor resources. The sysfs channel holds no state.
func (s *IIOMoistureSensor) Close() error {
	return nil
}
