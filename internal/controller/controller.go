// Package controller implements the protection loop: sample the sensors,
// decide the cover position, refresh the display, and report state to the
// remote logging endpoint on a best-effort schedule.
package controller

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/actuator"
	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/command"
	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/display"
	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/models"
	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/sensor"
	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/telemetry"
)

// Config holds the fixed thresholds and cadences of the protection loop
type Config struct {
	// RainThreshold is the moisture value below which rain is considered
	// present. The comparison is strict and applied to the instantaneous
	// reading; there is no hysteresis.
	RainThreshold int

	CycleInterval time.Duration // nominal loop cadence
	SendInterval  time.Duration // regular telemetry cadence
	RetryTimeout  time.Duration // staleness bound that re-arms the retry branch
}

// CommandSource hands pending configuration commands to the loop without
// blocking it.
type CommandSource interface {
	Poll() (command.Command, bool)
}

// Settings applies configuration commands, persisting them across restarts
type Settings interface {
	SetScriptID(id string) error
}

// Collaborators are the external capabilities the controller drives. Commands
// and Settings are optional; everything else is required.
type Collaborators struct {
	Moisture  sensor.MoistureSensor
	Climate   sensor.ClimateSensor
	Cover     actuator.Actuator
	Sink      telemetry.Sink
	Presenter display.Presenter
	Commands  CommandSource
	Settings  Settings
}

// Controller owns the cover state machine and the send schedule. All state
// mutation happens inside Cycle, on a single logical thread of control.
type Controller struct {
	cfg    Config
	co     Collaborators
	logger zerolog.Logger

	reading  models.SensorReading
	state    models.CoverState
	schedule SendSchedule

	// endpointMissing suppresses the retry branch while no endpoint
	// identifier is configured, so a missing config is not retried faster
	// than the normal cadence.
	endpointMissing bool
}

// New creates a controller in the initial state: cover outside, first send
// forced.
func New(cfg Config, co Collaborators, logger zerolog.Logger) *Controller {
	return &Controller{
		cfg:      cfg,
		co:       co,
		logger:   logger,
		state:    models.CoverOutside,
		schedule: SendSchedule{ForceSend: true},
	}
}

// State returns the current cover position
func (c *Controller) State() models.CoverState {
	return c.state
}

// Reading returns the latest sensor sample
func (c *Controller) Reading() models.SensorReading {
	return c.reading
}

// Run executes the loop at the configured cadence until the context is
// cancelled. The first cycle runs immediately.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.CycleInterval)
	defer ticker.Stop()

	c.Cycle(time.Now())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Cycle(time.Now())
		}
	}
}

// Cycle runs one full iteration: sample, evaluate the state machine, refresh
// the presenter, evaluate the send policy, poll for configuration commands.
// Actuation and sending are synchronous; the cycle blocks while they run.
func (c *Controller) Cycle(now time.Time) {
	if c.schedule.LastSendAt.IsZero() {
		// Boot: anchor the timers so staleness is measured from startup.
		// ForceSend is already set, so the first evaluation still sends.
		c.schedule.LastSendAt = now
		c.schedule.LastSuccessAt = now
	}

	c.sample(now)
	c.evaluateCover()
	c.present()
	c.report(now)
	c.pollCommands()
}

// sample reads both sensors. Failures keep the previous values and mark the
// reading invalid; they are never surfaced as errors.
func (c *Controller) sample(now time.Time) {
	c.reading.Timestamp = now

	temp, humidity, err := c.co.Climate.Read()
	if err != nil {
		c.logger.Warn().Err(err).Msg("Climate read failed, keeping cached values")
	}
	c.reading.UpdateClimate(temp, humidity, err == nil)

	moisture, err := c.co.Moisture.Read()
	if err != nil {
		c.logger.Warn().Err(err).Msg("Moisture read failed, keeping previous value")
		c.reading.Valid = false
		return
	}
	c.reading.MoistureRaw = moisture
}

// evaluateCover runs the two-state machine. Actuation is issued only on a
// transition; a failed actuation leaves the state unchanged so the next cycle
// retries the move.
func (c *Controller) evaluateCover() {
	target := models.CoverOutside
	if c.reading.IsRaining(c.cfg.RainThreshold) {
		target = models.CoverCovered
	}

	if target == c.state {
		return
	}

	if err := c.co.Cover.MoveTo(target); err != nil {
		c.logger.Error().Err(err).Str("target", target.String()).Msg("Cover actuation failed")
		return
	}

	c.state = target
	c.schedule.ForceSend = true
	c.logger.Info().
		Str("state", target.String()).
		Int("moisture", c.reading.MoistureRaw).
		Msg("Cover state changed")
}

// present refreshes the status display every cycle, transitions or not
func (c *Controller) present() {
	raining := c.reading.IsRaining(c.cfg.RainThreshold)

	headline := "All clear"
	if raining {
		headline = "Rain detected"
	}

	c.co.Presenter.Show(headline, c.state.ClothesStatus(), raining,
		c.reading.MoistureRaw, c.reading.TemperatureC, c.reading.HumidityPct)
}

// report evaluates the send policy. The interval branch runs first, so a send
// there resets LastSendAt and the retry branch stays quiet in the same cycle.
func (c *Controller) report(now time.Time) {
	if c.schedule.IntervalDue(now, c.cfg.SendInterval) {
		c.schedule.MarkAttempt(now)
		c.attemptSend(now)
	}

	if !c.endpointMissing && c.schedule.RetryDue(now, c.cfg.RetryTimeout) {
		c.schedule.MarkAttempt(now)
		c.attemptSend(now)
	}
}

// attemptSend builds a fresh record and hands it to the sink. Failure only
// means LastSuccessAt does not advance; the retry branch picks it up later.
func (c *Controller) attemptSend(now time.Time) {
	record := models.TelemetryRecord{
		MoistureRaw:  c.reading.MoistureRaw,
		Raining:      c.reading.IsRaining(c.cfg.RainThreshold),
		Cover:        c.state,
		TemperatureC: c.reading.TemperatureC,
		HumidityPct:  c.reading.HumidityPct,
	}

	err := c.co.Sink.Send(record)
	switch {
	case err == nil:
		c.schedule.MarkSuccess(now)
		c.endpointMissing = false
		c.logger.Debug().Msg("Telemetry delivered")
	case errors.Is(err, telemetry.ErrNoEndpoint):
		c.endpointMissing = true
		c.logger.Warn().Msg("Telemetry skipped, no endpoint identifier configured")
	default:
		c.logger.Warn().Err(err).Msg("Telemetry delivery failed")
	}
}

// pollCommands drains pending configuration commands, at least once per cycle
// before the loop sleeps.
func (c *Controller) pollCommands() {
	if c.co.Commands == nil {
		return
	}
	for {
		cmd, ok := c.co.Commands.Poll()
		if !ok {
			return
		}
		c.applyCommand(cmd)
	}
}

func (c *Controller) applyCommand(cmd command.Command) {
	switch cmd.Name {
	case command.CmdSetScriptID:
		if c.co.Settings == nil {
			c.logger.Warn().Msg("No settings store wired, ignoring SET_SCRIPT_ID")
			return
		}
		if err := c.co.Settings.SetScriptID(cmd.Value); err != nil {
			c.logger.Error().Err(err).Msg("Failed to update endpoint identifier")
			return
		}
		c.endpointMissing = false
		c.logger.Info().Msg("Remote endpoint identifier updated")
	default:
		c.logger.Warn().Str("command", cmd.Name).Msg("Unknown command")
	}
}
