// Package commands implements the pipeline subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/retailsync/internal/cli/config"
	"github.com/leapstack-labs/retailsync/internal/engine"
	"github.com/leapstack-labs/retailsync/internal/mailbox"
	"github.com/leapstack-labs/retailsync/internal/objstore"
	"github.com/leapstack-labs/retailsync/internal/state"
	"github.com/leapstack-labs/retailsync/internal/warehouse"
)

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openJournal(cfg *config.Config) (*state.SQLiteStore, error) {
	dir := filepath.Dir(cfg.StatePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func newObjectStore(cfg *config.Config, logger *slog.Logger) (objstore.Store, error) {
	if err := cfg.ValidateStorage(); err != nil {
		return nil, err
	}
	return objstore.NewS3(cfg.Storage.Bucket, cfg.Storage.Region, logger)
}

func openWarehouse(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*warehouse.Client, error) {
	if err := cfg.ValidateWarehouse(); err != nil {
		return nil, err
	}
	return warehouse.Open(ctx, warehouse.Config{
		Host:                  cfg.Warehouse.Host,
		Port:                  cfg.Warehouse.Port,
		Database:              cfg.Warehouse.Database,
		User:                  cfg.Warehouse.User,
		Password:              cfg.Warehouse.Password,
		Schema:                cfg.Warehouse.Schema,
		SSLMode:               cfg.Warehouse.SSLMode,
		IAMRole:               cfg.Warehouse.IAMRole,
		StagingSalesTable:     cfg.Warehouse.StagingSalesTable,
		StagingInventoryTable: cfg.Warehouse.StagingInventoryTable,
		FinalSalesTable:       cfg.Warehouse.FinalSalesTable,
		FinalInventoryTable:   cfg.Warehouse.FinalInventoryTable,
		DropRecreateStaging:   cfg.Warehouse.DropRecreateStaging,
		DropRecreateFinal:     cfg.Warehouse.DropRecreateFinal,
	}, logger)
}

func newMail(ctx context.Context, cfg *config.Config, logger *slog.Logger) (mailbox.Service, error) {
	if err := cfg.ValidateMail(); err != nil {
		return nil, err
	}
	credentials, err := os.ReadFile(cfg.Mail.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read mail credentials: %w", err)
	}
	token, err := os.ReadFile(cfg.Mail.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read mail token: %w", err)
	}
	return mailbox.NewGmail(ctx, credentials, token, cfg.DownloadDir, logger)
}

func engineConfig(cfg *config.Config) (engine.Config, error) {
	infos, err := cfg.RetailerInfos()
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		UnprocessedPrefix: cfg.Storage.UnprocessedPrefix,
		ProcessedPrefix:   cfg.Storage.ProcessedPrefix,
		RawPrefix:         cfg.Storage.RawPrefix,
		Retailers:         infos,
		SearchCriteria:    cfg.Mail.SearchCriteria,
		NotifyErrors:      cfg.Mail.NotifyErrors,
		NotifyFrom:        cfg.Mail.NotifyFrom,
		NotifyTo:          cfg.Mail.NotifyTo,
		NotifyCc:          cfg.Mail.NotifyCc,
	}, nil
}
