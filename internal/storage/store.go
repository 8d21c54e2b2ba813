// Package storage provides the transactional unit the services run inside:
// one transaction per operation at a caller-selected isolation level, with
// scoped repositories bound to that transaction, plus bounded randomized
// retry on transient store conflicts.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/crownfall/farm-coordinator/internal/domain"
)

type Isolation int

const (
	// Autocommit runs the unit body outside an explicit transaction.
	Autocommit Isolation = iota
	ReadCommitted
	RepeatableRead
	Serializable
)

func (i Isolation) String() string {
	switch i {
	case Autocommit:
		return "autocommit"
	case ReadCommitted:
		return "read_committed"
	case RepeatableRead:
		return "repeatable_read"
	case Serializable:
		return "serializable"
	default:
		return "unknown"
	}
}

func (i Isolation) sqlLevel() sql.IsolationLevel {
	switch i {
	case ReadCommitted:
		return sql.LevelReadCommitted
	case RepeatableRead:
		return sql.LevelRepeatableRead
	case Serializable:
		return sql.LevelSerializable
	default:
		return sql.LevelDefault
	}
}

// Store owns the database handle and hands out transactional units. It is
// safe for concurrent use; each Run gets its own transaction, never shared
// across goroutines.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger

	// sqlite has a single serializable isolation level and its driver
	// rejects explicit levels, so units degrade to the driver default there.
	sqlite bool
}

func New(db *gorm.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		logger: logger,
		sqlite: db.Dialector.Name() == "sqlite",
	}
}

// Open connects to PostgreSQL and returns a Store. TranslateError is on so
// duplicate-key violations surface as gorm.ErrDuplicatedKey uniformly.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return New(db, logger), nil
}

// Migrate creates or updates the schema for every persisted entity.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&domain.User{},
		&domain.Client{},
		&domain.Account{},
		&domain.Lobby{},
		&domain.Game{},
		&domain.Session{},
		&domain.VPNAccount{},
		&domain.Report{},
		&domain.Launcher{},
	)
}

func (s *Store) DB() *gorm.DB { return s.db }

// Ping verifies connectivity, for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Run executes fn inside one transaction at the requested isolation level.
// The unit commits when fn returns nil and rolls back otherwise; the
// underlying connection is released on every exit path.
func (s *Store) Run(ctx context.Context, level Isolation, fn func(u *Unit) error) error {
	if level == Autocommit {
		return fn(newUnit(s.db.WithContext(ctx)))
	}
	opts := &sql.TxOptions{}
	if !s.sqlite {
		opts.Isolation = level.sqlLevel()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newUnit(tx))
	}, opts)
}
