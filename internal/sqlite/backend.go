// Package sqlite implements the catalog storage backend on top of SQL.
// SQLite (modernc.org/sqlite) is the default engine; the same queries run
// against PostgreSQL when the config selects it.
package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/stopidhan/backend-buzjet-api/internal/logger"
	"github.com/stopidhan/backend-buzjet-api/pkg/types"
)

// DatabaseFile is the SQLite file created inside Config.DataDir.
const DatabaseFile = "buzjet.db"

func init() {
	// sqlx does not know modernc's driver name.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

var _ types.Catalog = (*Backend)(nil)

// Backend implements types.Catalog: the entity store, the association store
// and the user directory share one database handle.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dialect  dialect
	db       *sqlx.DB
	log      *logger.Logger
}

// NewBackend creates a new backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(log *logger.Logger) *Backend {
	if log == nil {
		log = logger.Nop()
	}
	return &Backend{log: log.With("component", "sqlite")}
}

// Attach opens the database described by config and creates the schema if
// it does not exist. For SQLite, DataDir is created when missing.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(ctx context.Context, config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	var (
		db  *sqlx.DB
		d   dialect
		err error
	)
	switch config.Backend {
	case types.BackendPostgres:
		d = postgresDialect
		db, err = sqlx.Open(d.driver, config.DSN)
	default:
		d = sqliteDialect
		db, err = openSQLite(config.DataDir)
	}
	if err != nil {
		return fmt.Errorf("opening %s database: %w", config.Backend, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("connecting to %s database: %w", config.Backend, err)
	}

	for _, stmt := range d.statements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	b.db = db
	b.dialect = d
	b.config = config
	b.attached = true

	b.log.Info("catalog attached", "backend", config.Backend, "data_dir", config.DataDir)
	return nil
}

// openSQLite opens (creating if needed) the database file in dataDir.
// A single connection serializes writers; every transaction therefore sees
// a committed state.
func openSQLite(dataDir string) (*sqlx.DB, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	dsn := filepath.Join(dataDir, DatabaseFile) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// Detach releases all resources held by the backend.
// After Detach, all operations return ErrCatalogDetached.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	b.log.Info("catalog detached")
	return nil
}

// handle returns the open database or ErrCatalogDetached.
func (b *Backend) handle() (*sqlx.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrCatalogDetached
	}
	return b.db, nil
}
