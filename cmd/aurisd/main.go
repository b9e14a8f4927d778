package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aurislabs/auris-core/internal/bus"
	"github.com/aurislabs/auris-core/internal/config"
	"github.com/aurislabs/auris-core/internal/enhance"
	"github.com/aurislabs/auris-core/internal/history"
	"github.com/aurislabs/auris-core/internal/natsserver"
	"github.com/aurislabs/auris-core/internal/pipeline"
	"github.com/aurislabs/auris-core/internal/runtime"
	"github.com/aurislabs/auris-core/internal/service"
	"github.com/aurislabs/auris-core/internal/speaker"
	"github.com/aurislabs/auris-core/internal/synth"
)

var version = "0.1.0-dev"

func main() {
	var (
		configPath  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "auris.yaml", "Path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	embedded, err := natsserver.Start(cfg.Bus, logger)
	if err != nil {
		logger.Error("failed to start embedded bus", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer embedded.Shutdown()

	busClient, err := bus.Connect(ctx, cfg.Bus, logger)
	if err != nil {
		logger.Error("failed to connect to bus", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer busClient.Close()

	if err := os.MkdirAll(cfg.Speakers.Directory, 0o755); err != nil {
		logger.Error("failed to create speaker directory", slog.String("error", err.Error()))
		os.Exit(1)
	}
	speakers, err := speaker.NewStore(cfg.Speakers.Directory, logger)
	if err != nil {
		logger.Error("failed to open speaker store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	styles := speaker.NewStyleStore()
	if cfg.Styles.Path != "" {
		styles, err = speaker.LoadStyleFile(cfg.Styles.Path)
		if err != nil {
			logger.Error("failed to load style library", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	synthesizer, err := buildSynthesizer(cfg.Synthesis)
	if err != nil {
		logger.Error("failed to build synthesizer", slog.String("error", err.Error()))
		os.Exit(1)
	}
	enhancer, err := buildEnhancer(cfg.Enhancer)
	if err != nil {
		logger.Error("failed to build enhancer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	pipe := pipeline.New(speakers, styles, synthesizer, cfg.Synthesis.SampleRate, enhancer, pipeline.Options{
		MaxTotalChars:  cfg.Synthesis.MaxTotalChars,
		EncoderCommand: cfg.Encoder.Command,
		DefaultSpeaker: speaker.BySeed{Seed: cfg.Synthesis.DefaultSpeakerSeed},
		Timeout:        time.Duration(cfg.Synthesis.TimeoutMS) * time.Millisecond,
	}, logger)

	journal, err := history.Open(ctx, cfg.History, logger)
	if err != nil {
		logger.Error("failed to open history journal", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer journal.Close()

	svc := service.New(ctx, busClient, pipe, speakers, styles, journal, logger)
	if err := svc.Start(); err != nil {
		logger.Error("failed to start speech service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer svc.Close()

	rt := runtime.New(cfg, logger)
	rt.AddHealthCheck("bus", busClient.Healthy)
	rt.AddHealthCheck("speech-service", svc.Healthy)

	if err := rt.Start(ctx); err != nil {
		logger.Error("runtime exited with error", slog.String("error", err.Error()))
		time.Sleep(1 * time.Second)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

func buildSynthesizer(cfg config.SynthesisConfig) (synth.Synthesizer, error) {
	if cfg.Mode == "exec" {
		return synth.NewExecSynth(cfg.Command)
	}
	return synth.NewMockSynth(cfg.SampleRate, 0), nil
}

func buildEnhancer(cfg config.EnhancerConfig) (enhance.Enhancer, error) {
	if cfg.Mode == "exec" {
		return enhance.NewExecEnhancer(cfg.Command)
	}
	return enhance.NewMockEnhancer(), nil
}
