package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"mahjong-realm/config"
	"mahjong-realm/game"
	"mahjong-realm/handlers"
	"mahjong-realm/metrics"
	"mahjong-realm/persistence"
	"mahjong-realm/services"
	"mahjong-realm/templates"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults to $GAME_CONFIG)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	db, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	defer db.Close()
	logger.Info("persistence initialized", "type", cfg.Storage.Type)

	registry := templates.NewRegistry()
	if cfg.Game.TemplatesFile != "" {
		n, err := registry.LoadFile(cfg.Game.TemplatesFile)
		if err != nil {
			return err
		}
		logger.Info("loaded templates", "file", cfg.Game.TemplatesFile, "count", n)
	}
	if _, err := registry.Get(cfg.Game.DefaultTemplate); err != nil {
		return fmt.Errorf("game.default_template: %w", err)
	}

	rule, err := game.ParseMatchRule(cfg.Game.MatchRule)
	if err != nil {
		return err
	}
	boardOpts := game.DefaultOptions()
	boardOpts.TileSize = cfg.Game.TileSize
	boardOpts.Breakpoints = cfg.Game.Breakpoints
	boardOpts.Lerp = cfg.Game.Lerp
	boardOpts.MatchRule = rule
	boardOpts.DisableInputDuringMatch = cfg.Game.InputDisabledDuringMatch()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	gameMetrics := metrics.NewGameMetrics("mahjong", reg)

	players := services.NewPlayerService(db)
	games := services.NewGameService(services.GameServiceConfig{
		Registry:        registry,
		Players:         players,
		Storage:         db,
		Metrics:         gameMetrics,
		Board:           boardOpts,
		DefaultTemplate: cfg.Game.DefaultTemplate,
		TickInterval:    cfg.Game.TickInterval(),
		Logger:          logger,
	})
	clients := handlers.NewClientManager(logger)
	games.SetNotifier(clients.SendToSession)

	if level > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.RouterConfig{
		Deps: handlers.Deps{
			Games:     games,
			Players:   players,
			Templates: registry,
			Clients:   clients,
			Metrics:   gameMetrics,
			Logger:    logger,
		},
		Layouts:        services.NewLayoutCache(registry, cfg.Game.TileSize),
		Storage:        db,
		HTTPMetrics:    metrics.NewHTTPMetrics("mahjong", reg),
		Gatherer:       reg,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go games.Run(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	clients.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStorage(cfg config.StorageConfig) (persistence.Storage, error) {
	switch cfg.Type {
	case "memory":
		return persistence.NewMemoryStore(), nil
	case "postgres":
		return persistence.NewPostgresStore(cfg.DSN)
	case "badger":
		return persistence.NewBadgerStore(cfg.Dir)
	default:
		return persistence.NewJSONStore(cfg.File)
	}
}
