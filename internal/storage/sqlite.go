package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gitlab.com/smsdesk/sms-contact-service/internal/apperrors"
	"gitlab.com/smsdesk/sms-contact-service/pkg/logger"
)

// SQLiteRepo owns the single long-lived handle to the local contacts
// database. All storage operations go through it; nothing else touches the
// file.
type SQLiteRepo struct {
	db *gorm.DB
}

const (
	contactsTableDDL = `
	CREATE TABLE contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		firstname TEXT NOT NULL,
		lastname TEXT,
		email TEXT,
		address TEXT,
		tel_number TEXT NOT NULL,
		picture TEXT
	);`

	// contact_id is deliberately not a declared foreign key: deleting a
	// contact keeps its message history, so the reference may dangle.
	messagesTableDDL = `
	CREATE TABLE messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		contact_id INTEGER NOT NULL,
		msg TEXT NOT NULL,
		date INTEGER NOT NULL,
		is_send INTEGER NOT NULL
	);`

	schemaVersionTableDDL = `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	);`
)

// indexDDL is applied after table creation. The unique index on tel_number is
// what makes concurrent resolve-or-create of the same sender safe.
var indexDDL = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_tel_number ON contacts (tel_number);`,
	`CREATE INDEX IF NOT EXISTS idx_messages_contact_id ON messages (contact_id);`,
}

// NewSQLiteRepo opens (or creates) the database file and brings the schema to
// the requested version. A version mismatch drops and recreates both tables:
// stored contacts and messages are lost. That wipe is the upgrade contract,
// not an accident.
func NewSQLiteRepo(path string, schemaVersion int) (*SQLiteRepo, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	repo := &SQLiteRepo{db: db}
	if err := repo.migrate(schemaVersion); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, err
	}

	logger.Log.Info("Initialized SQLite repository",
		zap.String("path", path),
		zap.Int("schema_version", schemaVersion),
	)
	return repo, nil
}

// migrate creates the tables on first use and handles the destructive
// version upgrade.
func (r *SQLiteRepo) migrate(targetVersion int) error {
	if err := r.db.Exec(schemaVersionTableDDL).Error; err != nil {
		return fmt.Errorf("failed to ensure schema_version table: %w", err)
	}

	var storedVersion int
	var count int64
	if err := r.db.Table("schema_version").Count(&count).Error; err != nil {
		return fmt.Errorf("failed to read schema_version: %w", err)
	}

	if count == 0 {
		// First use: create everything and record the version.
		if err := r.createTables(); err != nil {
			return err
		}
		if err := r.db.Exec("INSERT INTO schema_version (version) VALUES (?)", targetVersion).Error; err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
		logger.Log.Info("Created database schema", zap.Int("version", targetVersion))
		return nil
	}

	if err := r.db.Raw("SELECT version FROM schema_version LIMIT 1").Scan(&storedVersion).Error; err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if storedVersion == targetVersion {
		return nil
	}

	// Version bump: drop and recreate, no data migration. Everything stored
	// is wiped.
	logger.Log.Warn("Schema version changed, dropping and recreating all tables",
		zap.Int("stored_version", storedVersion),
		zap.Int("target_version", targetVersion),
	)
	for _, stmt := range []string{
		"DROP TABLE IF EXISTS messages",
		"DROP TABLE IF EXISTS contacts",
	} {
		if err := r.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to drop table during upgrade: %w", err)
		}
	}
	if err := r.createTables(); err != nil {
		return err
	}
	if err := r.db.Exec("UPDATE schema_version SET version = ?", targetVersion).Error; err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) createTables() error {
	for _, ddl := range []string{contactsTableDDL, messagesTableDDL} {
		if err := r.db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if err := r.db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database handle.
func (r *SQLiteRepo) Close(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	logger.FromContext(ctx).Info("Closing SQLite database")
	return sqlDB.Close()
}

// checkConstraintViolation maps constraint errors onto the apperrors
// sentinels so callers can distinguish a lost uniqueness race from a broken
// foreign key.
func checkConstraintViolation(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", apperrors.ErrDuplicate, err)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: foreign key violated: %v", apperrors.ErrBadRequest, err)
	}
	// Fallback string checks; the sqlite driver does not translate every shape.
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", apperrors.ErrDuplicate, err)
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return fmt.Errorf("%w: foreign key violated: %v", apperrors.ErrBadRequest, err)
	}
	return fmt.Errorf("%w: %v", apperrors.ErrDatabase, err)
}
