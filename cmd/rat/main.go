// Package main is the entry point for the Rat Engine viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/rat-engine/internal/config"
	"github.com/Faultbox/rat-engine/internal/game"
	"github.com/Faultbox/rat-engine/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// The history ring backs the console overlay.
	history := logger.NewHistory(cfg.Logging.HistoryLines)
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, history); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Rat Engine ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	g, err := game.New(cfg, history)
	if err != nil {
		logger.Error("failed to start engine", zap.Error(err))
		os.Exit(1)
	}
	defer g.Close()

	if err := g.Run(); err != nil {
		logger.Error("engine error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("engine closed normally")
}
