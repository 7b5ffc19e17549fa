package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"hadassah/internal/config"
	"hadassah/internal/ipc"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	cfgPath := cli.StringP("config", "c", "", "Config file (default $HADASSAH_CONFIG or ~/.config/hadassah/config.yaml)")
	logLevel := cli.StringP("log", "l", "", "Log level, overrides the config file")
	platformName := cli.StringP("platform", "p", "", "web or native, overrides the config file")
	socket := cli.StringP("socket", "s", "", "Control socket path")
	cli.Parse()

	// a missing .env is fine
	_ = godotenv.Load(*envFile)

	cfg, err := config.Load(*cfgPath)
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[cfg.LogLevel],
	})))
	if err != nil {
		log.Error("Failed to load config", "err", err)
		os.Exit(1)
	}
	if *platformName != "" {
		cfg.Platform = *platformName
		if err := cfg.Validate(); err != nil {
			log.Error("Bad platform", "err", err)
			os.Exit(1)
		}
	}
	if err := cfg.ValidateSpeech(); err != nil {
		log.Error("Bad speech config", "err", err)
		os.Exit(1)
	}
	if *socket != "" {
		cfg.Socket = *socket
	}

	log.Info("Booting up", "platform", cfg.Platform, "speech", cfg.Speech.Engine)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := wire(ctx, cfg)
	if err != nil {
		log.Error("Failed to start", "err", err)
		os.Exit(1)
	}
	defer d.Close()

	sockPath := cfg.Socket
	if sockPath == "" {
		sockPath = ipc.DefaultSocketPath()
	}
	srv, err := ipc.Listen(sockPath, d.session.Control)
	if err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}
	defer srv.Close()

	if d.bus != nil {
		go func() {
			if err := d.session.ServeBus(ctx, d.bus); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Bus loop stopped", "err", err)
			}
		}()
	}

	log.Info("Boot up - successful", "socket", sockPath)
	<-ctx.Done()
	log.Info("Shutting down")

	d.session.StopListening()
	d.session.StopSpeaking()
}

