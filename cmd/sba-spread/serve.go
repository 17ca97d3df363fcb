package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/sba-spread/internal/config"
	"github.com/iwvelando/sba-spread/internal/deal"
	"github.com/iwvelando/sba-spread/internal/server"
	"github.com/iwvelando/sba-spread/internal/store"
	"github.com/iwvelando/sba-spread/pkg/constants"
	"github.com/iwvelando/sba-spread/pkg/spread"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type serveOptions struct {
	serverConfig  string
	address       string
	maxUploadSize string
	database      string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI and spread API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.serverConfig, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&opts.address, "address", "", "listen address override")
	cmd.Flags().StringVar(&opts.maxUploadSize, "max-upload-size", "", "upload limit override, e.g. 512K or 2M")
	cmd.Flags().StringVar(&opts.database, "db", "", "SQLite file to autosave the working deal to")
	return cmd
}

// seedDeal picks the working deal: the saved one when present, else the
// configured deal file, else an empty deal.
func seedDeal(logger *zap.Logger, db *store.DB, cfg *server.Config) (spread.Deal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if db != nil {
		d, err := db.Get(cfg.DealKey)
		if err == nil {
			logger.Info("resuming saved deal",
				zap.String("op", "main.seedDeal"),
				zap.String("key", cfg.DealKey),
			)
			return d, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return spread.Deal{}, err
		}
	}

	if cfg.DealFile == "" {
		return spread.Deal{}, nil
	}
	conf, err := config.LoadConfiguration(cfg.DealFile)
	if err != nil {
		return spread.Deal{}, fmt.Errorf("failed to load deal file %s: %w", cfg.DealFile, err)
	}
	return conf.Deal, nil
}

func runServe(ctx context.Context, root *rootOptions, opts *serveOptions) error {
	cfg, err := server.LoadConfig(opts.serverConfig)
	if err != nil {
		return err
	}
	if opts.address != "" {
		cfg.Address = opts.address
	}
	if opts.maxUploadSize != "" {
		size, err := server.ParseSize(opts.maxUploadSize)
		if err != nil {
			return err
		}
		cfg.SetUploadSizeBytes(size)
	}
	if opts.database != "" {
		cfg.Database = opts.database
	}

	logger, err := initializeLogger(cfg.Logging, root.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	var db *store.DB
	if cfg.Database != "" {
		db, err = store.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
	}

	seed, err := seedDeal(logger, db, cfg)
	if err != nil {
		return err
	}
	deals := deal.NewStore(logger, seed)

	var saver *store.Saver
	if db != nil {
		saver = store.NewSaver(logger, db, cfg.DealKey, cfg.AutosaveDelayDuration())
		deals.Subscribe(saver.Schedule)
		defer func() {
			if err := saver.Flush(); err != nil {
				logger.Error("final save failed", zap.String("op", "main.runServe"), zap.Error(err))
			}
		}()
	}

	handler := server.NewHandler(logger, server.Options{
		MaxUploadSize: cfg.UploadSizeBytes(),
		Version:       version,
		Deals:         deals,
		Saver:         saver,
	})

	httpServer := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logger.Info("serving",
		zap.String("op", "main.runServe"),
		zap.String("address", cfg.Address),
		zap.Int64("maxUploadSize", cfg.UploadSizeBytes()),
		zap.String("database", cfg.Database),
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}
