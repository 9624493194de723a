package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"catering/internal/api"
	"catering/internal/auth"
	"catering/internal/config"
	"catering/internal/database"
	"catering/internal/events"
	"catering/internal/live"
	"catering/internal/logger"
	"catering/internal/monitoring"
	"catering/internal/orders"
	"catering/internal/recipes"
	"catering/internal/recipes/providers"
	"catering/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the metrics server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "Seed the menu when it is empty")
	return cmd
}

func serve(ctx context.Context, seed bool) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	level := logger.ParseLevel(cfg.Log.Level)
	lg := logger.NewLogger(cfg.Log.Service, level)
	if level != logger.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return err
	}
	if seed {
		if err := database.Seed(db); err != nil {
			return err
		}
	}

	metrics := monitoring.NewMetricsCollector()
	hub := live.NewHub(lg)
	hub.OnClientsChanged = metrics.SetLiveClients
	publisher := initPublisher(cfg, hub, lg)
	defer publisher.Close()

	authenticator := auth.NewAuthenticator(cfg.Auth, lg)
	if !authenticator.Enabled() {
		lg.Warn("", "startup", "no admin password configured, admin API is open")
	}

	s := store.New(db)
	server := api.NewServer(api.Deps{
		Config:    cfg,
		Store:     s,
		Writer:    orders.NewWriter(s, lg, loc),
		Auth:      authenticator,
		Finder:    initFinder(cfg, lg),
		Hub:       hub,
		Publisher: publisher,
		Metrics:   metrics,
		Monitor:   monitoring.NewMonitor(),
		Log:       lg,
		Location:  loc,
	})

	servers := []*http.Server{{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.Metrics.Enabled {
		metricsRouter := gin.New()
		metricsRouter.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
		servers = append(servers, &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           metricsRouter,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			lg.Info("", "startup", "listening on "+srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("", "shutdown", "shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		hub.Close()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		lg.Error("", "shutdown", "server stopped with error", err)
		return err
	}
	lg.Info("", "shutdown", "servers stopped")
	return nil
}

// initPublisher always feeds the live hub and adds the broker when one is
// configured. An unreachable broker is logged and skipped.
func initPublisher(cfg *config.Config, hub *live.Hub, lg *logger.Logger) events.Publisher {
	fanout := events.Fanout{hub}
	if cfg.Events.AMQPURL == "" {
		return fanout
	}
	broker, err := events.DialAMQP(cfg.Events.AMQPURL, cfg.Events.Exchange, lg)
	if err != nil {
		lg.Error("", "startup", "order events will not reach the broker", err)
		return fanout
	}
	return append(fanout, broker)
}

// initFinder returns nil when the language model cannot be set up
func initFinder(cfg *config.Config, lg *logger.Logger) *recipes.Finder {
	provider, err := providers.New(cfg.LLM)
	if err != nil {
		lg.Warn("", "startup", "recipe finder disabled: "+err.Error())
		return nil
	}
	return recipes.NewFinder(provider, lg)
}
