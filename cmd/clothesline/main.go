package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/actuator"
	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/command"
	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/config"
	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/controller"
	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/display"
	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/sensor"
	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/telemetry"
)

const version = "v0.1.0"

func main() {
	configPath := flag.String("config", "configs/clothesline.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := setupLogger(cfg.Logging)

	logger.Info().
		Str("version", version).
		Int("rain_threshold", cfg.Control.RainThreshold).
		Dur("cycle_interval", cfg.Control.CycleInterval).
		Msg("Starting clothesline controller")

	// Any sensor or actuator that cannot initialize is fatal: the device is
	// useless without its hardware.
	moisture, err := sensor.NewIIOMoistureSensor(cfg.Sensors.MoistureChannel)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to init moisture sensor")
	}
	defer moisture.Close()

	climate, err := sensor.NewDHT11Climate(cfg.Sensors.DHTPin)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to init DHT11 sensor")
	}
	defer climate.Close()

	cover, err := actuator.NewGPIOCoverMotor(actuator.GPIOCoverMotorConfig{
		Chip:       cfg.Actuator.Chip,
		ExtendPin:  cfg.Actuator.ExtendPin,
		RetractPin: cfg.Actuator.RetractPin,
		Travel:     cfg.Actuator.Travel,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to init cover motor")
	}
	defer cover.Close()

	if dir := filepath.Dir(cfg.Telemetry.ScriptStorePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal().Err(err).Msg("Failed to create data directory")
		}
	}
	scriptStore, err := command.NewScriptStore(cfg.Telemetry.ScriptStorePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open script store")
	}
	if scriptStore.ScriptID() == "" {
		logger.Warn().Msg("No endpoint identifier configured, telemetry disabled until SET_SCRIPT_ID")
	}

	sink := telemetry.NewHTTPSink(telemetry.HTTPSinkConfig{
		EndpointTemplate:   cfg.Telemetry.EndpointTemplate,
		ResponseTimeout:    cfg.Telemetry.ResponseTimeout,
		InsecureSkipVerify: cfg.Telemetry.InsecureSkipVerify,
	}, scriptStore, logger)

	commands, err := openCommandChannel(cfg.Command, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open command channel")
	}

	ctrl := controller.New(controller.Config{
		RainThreshold: cfg.Control.RainThreshold,
		CycleInterval: cfg.Control.CycleInterval,
		SendInterval:  cfg.Control.SendInterval,
		RetryTimeout:  cfg.Control.RetryTimeout,
	}, controller.Collaborators{
		Moisture:  moisture,
		Climate:   climate,
		Cover:     cover,
		Sink:      sink,
		Presenter: display.NewLogPresenter(logger),
		Commands:  commands,
		Settings:  scriptStore,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ctrl.Run(ctx); err != nil && err != context.Canceled {
		logger.Error().Err(err).Msg("Control loop stopped")
	}

	logger.Info().Msg("Shutting down")
}

// openCommandChannel wires the configuration channel: stdin by default, or a
// serial device when one is configured.
func openCommandChannel(cfg config.CommandConfig, logger zerolog.Logger) (*command.Listener, error) {
	if cfg.Device == "" || cfg.Device == "stdin" {
		return command.NewListener(os.Stdin, logger), nil
	}
	f, err := os.Open(cfg.Device)
	if err != nil {
		return nil, err
	}
	return command.NewListener(f, logger), nil
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	if cfg.Format == "console" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger
}
