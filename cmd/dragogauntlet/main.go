// dragogauntlet runs the game simulation and serves it to the browser
// renderer and level editor.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lawnchairsociety/dragogauntlet/internal/config"
	"github.com/lawnchairsociety/dragogauntlet/internal/database"
	"github.com/lawnchairsociety/dragogauntlet/internal/game"
	"github.com/lawnchairsociety/dragogauntlet/internal/gameloop"
	"github.com/lawnchairsociety/dragogauntlet/internal/logger"
	"github.com/lawnchairsociety/dragogauntlet/internal/server"
)

// frameRate is how often the scheduler is offered a frame, standing in for
// the display refresh.
const frameRate = 60

func main() {
	configFile := flag.String("config", "data/config.yaml", "Path to config YAML file")
	seed := flag.Int64("seed", 0, "Level generation seed (default: config value, else random)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	logger.Info("Starting DragoGauntlet", "config", *configFile)

	runSeed := *seed
	if runSeed == 0 {
		runSeed = cfg.Generator.Seed
	}
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
		logger.Info("Level seed selected", "seed", runSeed, "random", true)
	} else {
		logger.Info("Level seed selected", "seed", runSeed, "random", false)
	}

	store, err := database.OpenStore(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to open level storage: %v", err)
	}
	defer store.Close()
	logger.Info("Level storage ready", "driver", cfg.Storage.Driver)

	if len(cfg.Server.AllowedOrigins) == 0 {
		logger.Info("WebSocket CORS policy", "mode", "same-origin")
	} else {
		logger.Info("WebSocket CORS policy", "allowed_origins", cfg.Server.AllowedOrigins)
	}
	if cfg.Server.EditorPasswordHash == "" {
		logger.Warning("Level saving is open to anyone; set server.editor_password_hash to restrict it")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := game.New(cfg, store, runSeed)
	if err := g.Start(ctx); err != nil {
		log.Fatalf("Failed to start game: %v", err)
	}

	sched := gameloop.NewScheduler(cfg.Simulation.TickRate, g.Step)
	frames := time.NewTicker(time.Second / frameRate)
	defer frames.Stop()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- sched.Run(ctx, frames.C)
	}()

	srv := server.New(cfg.Server, g, store)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	logger.Info("DragoGauntlet running", "address", cfg.Server.Address, "tick_rate", cfg.Simulation.TickRate)
	logger.Info("Press Ctrl+C to shutdown")

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			logger.Error("HTTP server failed", "error", err)
		}
	case <-loopDone:
		if err := g.Err(); err != nil {
			logger.Error("Simulation stopped", "error", err)
		} else {
			logger.Info("Run finished", "score", g.Snapshot().Score)
		}
		// Keep serving the final frame until interrupted.
		<-ctx.Done()
	}

	logger.Info("Shutting down server")
	sched.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warning("Shutdown incomplete", "error", err)
	}
	logger.Info("Server stopped")
}
