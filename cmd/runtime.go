package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/shaharia-lab/notifier/internal/channel"
	"github.com/shaharia-lab/notifier/internal/config"
	"github.com/shaharia-lab/notifier/internal/notification"
	"github.com/shaharia-lab/notifier/internal/registry"
	"github.com/shaharia-lab/notifier/internal/storage"
)

// runtime holds the storage and registry shared by the serve and import
// commands.
type runtime struct {
	db         *sql.DB
	triggers   storage.TriggerStore
	deliveries storage.DeliveryStore
	registry   *registry.Registry
}

func openRuntime(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*runtime, error) {
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", cfg.DataDir, err)
	}

	db, fresh, err := storage.NewSQLiteDB(cfg.DatabaseFile())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if fresh {
		logger.Info("created database", "path", cfg.DatabaseFile())
	}

	triggers, err := storage.OpenTriggerStore(cfg.StorageDriver, cfg.SnapshotFile(), db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	catalog := channel.NewCatalog(channel.Deps{
		Mailer: notification.NewSMTPProvider(cfg.SMTP()),
		Poster: channel.NewHTTPPoster(channel.WithTimeout(cfg.WebhookTimeout)),
		Logger: logger,
	})

	reg := registry.New(triggers, catalog, logger)
	// A failed load is logged by the registry, which then starts empty.
	_ = reg.Load(ctx)

	return &runtime{
		db:         db,
		triggers:   triggers,
		deliveries: storage.NewSQLiteDeliveryStore(db),
		registry:   reg,
	}, nil
}

func (r *runtime) Close() error {
	return r.db.Close()
}
