package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/logging"
	"github.com/jonathan/resume-screener/internal/ranking"
	"github.com/jonathan/resume-screener/internal/server"
	"github.com/jonathan/resume-screener/internal/server/ratelimit"
	"github.com/jonathan/resume-screener/internal/storage"
)

type serveOptions struct {
	port       int
	configPath string
}

func newServeCmd(_ *globalOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start an HTTP server exposing authentication, résumé upload, job management,
bulk screening and admin endpoints. Configuration comes from an optional JSON
file overridden by environment variables (DATABASE_URL, JWT_SECRET, ...).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.port, "port", 0, "Port to listen on (overrides config and PORT)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to a JSON config file")
	return cmd
}

// loadServeConfig layers the config file, defaults, environment and flags.
func loadServeConfig(opts *serveOptions) (*config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		fileCfg, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(config.Defaults())
	} else {
		cfg = config.Defaults()
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if opts.port != 0 {
		cfg.Port = opts.port
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return &cfg, nil
}

func runServe(ctx context.Context, opts *serveOptions) error {
	cfg, err := loadServeConfig(opts)
	if err != nil {
		return err
	}
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	passwordCfg, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create file store: %w", err)
	}

	srv, err := server.New(fmt.Sprintf(":%d", cfg.Port), server.Deps{
		DB:             database,
		Store:          store,
		Logger:         logger,
		JWT:            jwtCfg,
		Passwords:      passwordCfg,
		RateLimit:      ratelimit.LoadConfig(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
		Ranker:         ranking.NewRanker(logger, cfg.ScreeningConcurrency),
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if email, password := os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD"); email != "" && password != "" {
		if err := srv.EnsureAdmin(ctx, email, password); err != nil {
			return fmt.Errorf("failed to create admin account: %w", err)
		}
	} else {
		logger.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set; no admin account bootstrapped")
	}

	logger.Info("starting resume screener",
		zap.Int("port", cfg.Port),
		zap.String("storage", cfg.StorageBackend),
		zap.Int("screening_concurrency", cfg.ScreeningConcurrency),
	)
	return srv.Start(ctx)
}
