package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/glassbox/internal/config"
	"github.com/dgnsrekt/glassbox/internal/ingest"
	"github.com/dgnsrekt/glassbox/internal/producer"
)

func main() {
	cfg, err := config.LoadSimulator()
	if err != nil {
		slog.Error("failed to load simulator config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	tracked, err := config.LoadSymbols(cfg.SymbolsFile, ingest.NormalizeSymbol)
	if err != nil {
		slog.Error("failed to load tracked symbols", "file", cfg.SymbolsFile, "error", err)
		os.Exit(1)
	}

	slog.Info("simulator config loaded",
		"relay_url", cfg.RelayURL,
		"interval", cfg.Interval,
		"symbols", len(tracked),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := producer.New(cfg.RelayURL, nil)
	demo := producer.NewDemo(tracked, uint64(time.Now().UnixNano()))

	for {
		env := demo.Next(time.Now())
		sendCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := client.Send(sendCtx, env); err != nil {
			slog.Warn("signal not delivered", "type", env.Type, "error", err)
		} else {
			slog.Debug("signal delivered", "type", env.Type)
		}
		cancel()

		wait := cfg.Interval
		if wait == 0 {
			wait = demo.Interval()
		}
		select {
		case <-ctx.Done():
			slog.Info("simulator stopped")
			return
		case <-time.After(wait):
		}
	}
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
