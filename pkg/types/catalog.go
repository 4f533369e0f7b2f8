package types

import "context"

// Catalog is a storage backend serving all three collaborator interfaces.
// Callers attach to a backend, use it, and detach when done.
type Catalog interface {
	EntityStore
	AssociationStore
	UserDirectory

	// Attach connects the Catalog to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(ctx context.Context, config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations return ErrCatalogDetached.
	Detach() error
}
