// Package actuator drives the motorized clothesline cover. Motion is
// synchronous: MoveTo blocks for the full mechanical travel, which is the
// accepted latency cost of a slow mechanism relative to the sensing cadence.
package actuator

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/warthog618/go-gpiocdev"

	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/models"
)

// Actuator moves the cover mechanism to a target position, blocking until the
// mechanism has reached it.
type Actuator interface {
	MoveTo(position models.CoverState) error
	Close() error
}

// GPIOCoverMotor drives an H-bridge motor through two GPIO output lines, one
// per direction. Energizing a line for the travel duration runs the mechanism
// end to end; the mechanical end stops bound the motion.
type GPIOCoverMotor struct {
	extend  *gpiocdev.Line
	retract *gpiocdev.Line
	travel  time.Duration
	logger  zerolog.Logger
}

// GPIOCoverMotorConfig holds the wiring and timing for the cover motor
type GPIOCoverMotorConfig struct {
	Chip       string        // GPIO chip name, e.g. "gpiochip0"
	ExtendPin  int           // line driving the motor towards the covered position
	RetractPin int           // line driving the motor back outside
	Travel     time.Duration // full end-to-end travel time
}

// NewGPIOCoverMotor requests the two motor lines as outputs, both low
func NewGPIOCoverMotor(cfg GPIOCoverMotorConfig, logger zerolog.Logger) (*GPIOCoverMotor, error) {
	extend, err := gpiocdev.RequestLine(cfg.Chip, cfg.ExtendPin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("failed to request extend line %d: %w", cfg.ExtendPin, err)
	}
	retract, err := gpiocdev.RequestLine(cfg.Chip, cfg.RetractPin, gpiocdev.AsOutput(0))
	if err != nil {
		extend.Close()
		return nil, fmt.Errorf("failed to request retract line %d: %w", cfg.RetractPin, err)
	}
	return &GPIOCoverMotor{
		extend:  extend,
		retract: retract,
		travel:  cfg.Travel,
		logger:  logger,
	}, nil
}

// MoveTo runs the motor towards the requested position and blocks for the
// travel duration. The caller is responsible for not requesting a position
// that is already reached.
func (m *GPIOCoverMotor) MoveTo(position models.CoverState) error {
	line := m.retract
	if position == models.CoverCovered {
		line = m.extend
	}

	m.logger.Info().Str("position", position.String()).Dur("travel", m.travel).Msg("Moving cover")

	if err := line.SetValue(1); err != nil {
		return fmt.Errorf("failed to energize motor line: %w", err)
	}
	time.Sleep(m.travel)
	if err := line.SetValue(0); err != nil {
		// Motor may still be energized; treat as fatal-worthy by the caller.
		return fmt.Errorf("failed to release motor line: %w", err)
	}

	m.logger.Info().Str("position", position.String()).Msg("Cover in position")
	return nil
}

// Close de-energizes and releases both motor lines
func (m *GPIOCoverMotor) Close() error {
	m.extend.SetValue(0)
	m.retract.SetValue(0)
	if err := m.extend.Close(); err != nil {
		m.retract.Close()
		return err
	}
	return m.retract.Close()
}
