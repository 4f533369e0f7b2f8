package types

import "context"

// Filter restricts ListAll results. Keys are column names (or the virtual
// keys a table documents); an empty or nil filter matches every row.
type Filter map[string]any

// EntityStore provides uniform CRUD operations over the standard tables.
// FindByID, Update and ListAll return any; callers type-assert to the
// concrete entity struct (*Hotel, *Package, ...).
type EntityStore interface {
	// Create inserts entity into table, assigns its ID and returns it.
	// Returns an error wrapping ErrInvalidData if the entity fails its
	// field rules or does not match the table.
	Create(ctx context.Context, table string, entity Entity) (int64, error)

	// FindByID retrieves the entity with the given ID.
	// Returns a *NotFoundError if no entity exists with that ID.
	FindByID(ctx context.Context, table string, id int64) (any, error)

	// ExistsByID reports whether an entity with the given ID exists.
	ExistsByID(ctx context.Context, table string, id int64) (bool, error)

	// Update applies fields (column name to value) to the entity with the
	// given ID and returns the updated entity. Columns absent from fields
	// keep their value.
	Update(ctx context.Context, table string, id int64, fields map[string]any) (any, error)

	// Delete removes the entity with the given ID.
	// Returns a *NotFoundError if no entity exists with that ID.
	Delete(ctx context.Context, table string, id int64) error

	// ListAll returns all entities matching the filter, ordered by ID.
	ListAll(ctx context.Context, table string, filter Filter) ([]any, error)
}

// AssociationStore persists the two link sets owned by a package.
type AssociationStore interface {
	// ReplaceAll atomically substitutes the whole link set of packageID for
	// relation with ids. Readers observe either the old or the new set.
	ReplaceAll(ctx context.Context, packageID int64, relation Relation, ids []int64) error

	// GetLinked returns the linked ids in ascending order. A package without
	// links, or an unknown package, yields an empty slice.
	GetLinked(ctx context.Context, packageID int64, relation Relation) ([]int64, error)

	// DeleteAll removes every link of packageID for relation.
	DeleteAll(ctx context.Context, packageID int64, relation Relation) error
}

// UserDirectory resolves users by id. It is read-only to the catalog.
type UserDirectory interface {
	// FindUser returns a *NotFoundError if the user does not exist.
	FindUser(ctx context.Context, id int64) (*User, error)
}
