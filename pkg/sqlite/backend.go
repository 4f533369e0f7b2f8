// Package sqlite provides the public API for the SQL catalog backend.
// This package exposes the factory function for creating backends while
// keeping implementation details internal.
package sqlite

import (
	"github.com/stopidhan/backend-buzjet-api/internal/logger"
	"github.com/stopidhan/backend-buzjet-api/internal/sqlite"
	"github.com/stopidhan/backend-buzjet-api/pkg/types"
)

// NewBackend creates a new catalog backend instance. A nil log discards
// output. The backend is not attached; call Attach with a Config to
// initialize.
//
// Example:
//
//	catalog := sqlite.NewBackend(nil)
//	err := catalog.Attach(ctx, types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".buzjet",
//	})
//	defer catalog.Detach()
func NewBackend(log *logger.Logger) types.Catalog {
	return sqlite.NewBackend(log)
}
