package store

import (
	"context"
	"fmt"

	"github.com/okulik/mealsync/internal/config"
	"github.com/okulik/mealsync/internal/logger"
)

type Storages struct {
	RecordRepository   RecordRepository
	BatchRepository    BatchRepository
	ConflictRepository ConflictRepository
}

// NewStorages opens the configured database, runs pending migrations, and
// wires up the repositories.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	db, err := connect(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		log.Err(err).Str("func", "NewStorages").Msg("error applying migrations")
		return nil, err
	}

	return &Storages{
		RecordRepository:   NewRecordRepository(db, log),
		BatchRepository:    NewBatchRepository(db, log),
		ConflictRepository: NewConflictRepository(db, log),
	}, nil
}

func connect(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	switch cfg.Driver {
	case "sqlite3":
		return NewConnectSQLite(ctx, cfg, log)
	case "", "pgx", "postgres":
		return NewConnectPostgres(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
