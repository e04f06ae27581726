package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the clothesline device daemon
type Config struct {
	Sensors   SensorsConfig   `yaml:"sensors"`
	Actuator  ActuatorConfig  `yaml:"actuator"`
	Control   ControlConfig   `yaml:"control"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Command   CommandConfig   `yaml:"command"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SensorsConfig contains the hardware wiring of both sensors
type SensorsConfig struct {
	// MoistureChannel is the IIO sysfs path of the rain board's ADC channel
	MoistureChannel string `yaml:"moisture_channel"`
	// DHTPin is the GPIO pin of the DHT11 climate sensor
	DHTPin int `yaml:"dht_pin"`
}

// ActuatorConfig contains the cover motor wiring and travel timing
type ActuatorConfig struct {
	Chip       string        `yaml:"chip"`
	ExtendPin  int           `yaml:"extend_pin"`
	RetractPin int           `yaml:"retract_pin"`
	Travel     time.Duration `yaml:"travel"`
}

// ControlConfig contains the protection loop thresholds and cadences
type ControlConfig struct {
	RainThreshold int           `yaml:"rain_threshold"`
	CycleInterval time.Duration `yaml:"cycle_interval"`
	SendInterval  time.Duration `yaml:"send_interval"`
	RetryTimeout  time.Duration `yaml:"retry_timeout"`
}

// TelemetryConfig contains the remote logging endpoint settings. The endpoint
// identifier itself is not here: it lives in the script store and is updated
// over the command channel.
type TelemetryConfig struct {
	EndpointTemplate   string        `yaml:"endpoint_template"`
	ResponseTimeout    time.Duration `yaml:"response_timeout"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	ScriptStorePath    string        `yaml:"script_store_path"`
}

// CommandConfig contains the configuration-channel source
type CommandConfig struct {
	// Device is the serial device to read commands from; "stdin" or empty
	// reads standard input.
	Device string `yaml:"device"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	yamlData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var config Config
	if err := yaml.Unmarshal(yamlData, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.ApplyDefaults()
	config.OverrideFromEnv()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// ApplyDefaults sets default values for any unset fields
func (c *Config) ApplyDefaults() {
	// Only set defaults if fields are zero values
	if c.Sensors.MoistureChannel == "" {
		c.Sensors.MoistureChannel = "/sys/bus/iio/devices/iio:device0/in_voltage0_raw"
	}
	if c.Actuator.Chip == "" {
		c.Actuator.Chip = "gpiochip0"
	}
	if c.Actuator.Travel == 0 {
		c.Actuator.Travel = 8 * time.Second
	}
	if c.Control.RainThreshold == 0 {
		c.Control.RainThreshold = 2000
	}
	if c.Control.CycleInterval == 0 {
		c.Control.CycleInterval = 5 * time.Second
	}
	if c.Control.SendInterval == 0 {
		c.Control.SendInterval = 30 * time.Second
	}
	if c.Control.RetryTimeout == 0 {
		c.Control.RetryTimeout = 15 * time.Second
	}
	if c.Telemetry.EndpointTemplate == "" {
		c.Telemetry.EndpointTemplate = "https://script.google.com/macros/s/%s/exec"
	}
	if c.Telemetry.ResponseTimeout == 0 {
		c.Telemetry.ResponseTimeout = 10 * time.Second
	}
	if c.Telemetry.ScriptStorePath == "" {
		c.Telemetry.ScriptStorePath = "./data/script_id"
	}
	if c.Command.Device == "" {
		c.Command.Device = "stdin"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// OverrideFromEnv overrides config values from environment variables
func (c *Config) OverrideFromEnv() {
	// Only override if environment variable is set (non-empty)
	if v := os.Getenv("MOISTURE_CHANNEL"); v != "" {
		c.Sensors.MoistureChannel = v
	}
	if v := os.Getenv("DHT_PIN"); v != "" {
		if pin, err := strconv.Atoi(v); err == nil {
			c.Sensors.DHTPin = pin
		}
	}
	if v := os.Getenv("ENDPOINT_TEMPLATE"); v != "" {
		c.Telemetry.EndpointTemplate = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Sensors.DHTPin <= 0 {
		return fmt.Errorf("DHT pin must be greater than 0")
	}
	if c.Actuator.ExtendPin <= 0 || c.Actuator.RetractPin <= 0 {
		return fmt.Errorf("actuator pins must be greater than 0")
	}
	if c.Actuator.ExtendPin == c.Actuator.RetractPin {
		return fmt.Errorf("actuator pins must differ")
	}
	if c.Control.RainThreshold <= 0 {
		return fmt.Errorf("rain threshold must be greater than 0")
	}
	if c.Control.CycleInterval < time.Second {
		return fmt.Errorf("cycle interval must be at least 1 second")
	}
	if !strings.Contains(c.Telemetry.EndpointTemplate, "%s") {
		return fmt.Errorf("endpoint template must contain a %%s placeholder")
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{Sensors: %+v, Actuator: %+v, Control: %+v, Telemetry: %+v, Logging: %+v}",
		c.Sensors,
		c.Actuator,
		c.Control,
		c.Telemetry,
		c.Logging,
	)
}
