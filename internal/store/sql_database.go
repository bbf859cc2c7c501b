package store

import (
	"database/sql"

	"github.com/okulik/mealsync/internal/logger"
	"github.com/okulik/mealsync/migrations"
)

type DB struct {
	*sql.DB
	dialect            string
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.dialect)
}
