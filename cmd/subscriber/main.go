package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/glassbox/internal/api"
	"github.com/dgnsrekt/glassbox/internal/config"
	"github.com/dgnsrekt/glassbox/internal/cue"
	"github.com/dgnsrekt/glassbox/internal/dashboard"
	"github.com/dgnsrekt/glassbox/internal/diag"
	"github.com/dgnsrekt/glassbox/internal/feed"
	"github.com/dgnsrekt/glassbox/internal/ingest"
	"github.com/dgnsrekt/glassbox/internal/netutil"
)

func main() {
	cfg, err := config.LoadSubscriber()
	if err != nil {
		slog.Error("failed to load subscriber config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	slog.Info("subscriber config loaded",
		"url", cfg.URL,
		"bind_addr", cfg.BindAddr,
		"reconnect_delay", cfg.ReconnectDelay,
		"log_capacity", cfg.LogCapacity,
		"symbols_file", cfg.SymbolsFile,
		"diag_dir", cfg.DiagDir,
		"audio_enabled", cfg.AudioEnabled,
		"log_level", cfg.LogLevel,
	)

	tracked, err := config.LoadSymbols(cfg.SymbolsFile, ingest.NormalizeSymbol)
	if err != nil {
		slog.Error("failed to load tracked symbols", "file", cfg.SymbolsFile, "error", err)
		os.Exit(1)
	}
	store := dashboard.NewStore(cfg.LogCapacity, tracked)

	sink := diag.NewFileSink(cfg.DiagDir, diag.Options{})
	defer func() {
		if err := sink.Close(); err != nil {
			slog.Warn("diagnostic sink close failed", "error", err)
		}
	}()

	player := cue.LogPlayer{Volume: cfg.AudioVolume}
	cues := cue.NewDispatcher(cue.Config{Enabled: cfg.AudioEnabled}, player, player)
	defer cues.Close()

	sub, err := feed.New(feed.Config{
		URL:            cfg.URL,
		ReconnectDelay: cfg.ReconnectDelay,
		Store:          store,
		Cues:           cues,
		Diag:           sink,
	})
	if err != nil {
		slog.Error("failed to build subscriber", "error", err)
		os.Exit(1)
	}

	ln, err := netutil.Listen(cfg.BindAddr, nil, false)
	if err != nil {
		slog.Error("failed to bind dashboard api", "addr", cfg.BindAddr, "error", err)
		os.Exit(1)
	}
	addr := ln.Addr().String()
	srv := &http.Server{Handler: api.NewDashboardServer(store), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		slog.Info("dashboard api listening", "addr", addr, "snapshot", "http://"+addr+"/api/v1/dashboard")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("dashboard api failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("subscriber stopped", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("dashboard api shutdown failed", "error", err)
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
