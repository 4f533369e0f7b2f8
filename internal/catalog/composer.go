package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stopidhan/backend-buzjet-api/internal/logger"
	"github.com/stopidhan/backend-buzjet-api/pkg/types"
)

// ErrOwnerNotAdmin is returned by Composer.Create when the input was not
// cleared as owned by an admin.
var ErrOwnerNotAdmin = errors.New("package owner must be an admin")

// Composer writes a package row together with its destination and hotel
// link sets. Writes on the same package id are serialized.
type Composer struct {
	store types.EntityStore
	links types.AssociationStore
	locks *keyedMutex
	log   *logger.Logger
}

// NewComposer returns a Composer over store and links. A nil log discards
// output.
func NewComposer(store types.EntityStore, links types.AssociationStore, log *logger.Logger) (*Composer, error) {
	if store == nil {
		return nil, fmt.Errorf("new composer: entity store is nil")
	}
	if links == nil {
		return nil, fmt.Errorf("new composer: association store is nil")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Composer{
		store: store,
		links: links,
		locks: newKeyedMutex(),
		log:   log.With("component", "composer"),
	}, nil
}

// Create inserts the package row, then replaces both link sets. If the row
// insert fails nothing is written. If a link set fails afterwards the row
// stays and Create returns the package with a *types.IntegrityError.
func (c *Composer) Create(ctx context.Context, in types.PackageInput) (*types.Package, error) {
	if !in.OwnerIsAdmin {
		return nil, ErrOwnerNotAdmin
	}
	if missing := in.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", types.ErrInvalidData, strings.Join(missing, ", "))
	}

	pkg := in.Package()
	if _, err := c.store.Create(ctx, types.TablePackages, pkg); err != nil {
		return nil, fmt.Errorf("creating package: %w", err)
	}
	// The row is visible from here on; hold the id until both link sets land.
	unlock := c.locks.Lock(pkg.ID)
	defer unlock()

	if err := c.replaceLinks(ctx, pkg.ID, in); err != nil {
		return pkg, err
	}

	c.log.Info("package created", "package_id", pkg.ID, "owner_id", pkg.OwnerID)
	return pkg, nil
}

// Update applies the scalar fields present in in, then replaces each link
// set whose ids were supplied. Absent fields and relations are untouched.
func (c *Composer) Update(ctx context.Context, id int64, in types.PackageInput) (*types.Package, error) {
	unlock := c.locks.Lock(id)
	defer unlock()

	var (
		entity any
		err    error
	)
	if fields := in.Fields(); len(fields) > 0 {
		entity, err = c.store.Update(ctx, types.TablePackages, id, fields)
	} else {
		entity, err = c.store.FindByID(ctx, types.TablePackages, id)
	}
	if err != nil {
		return nil, fmt.Errorf("updating package %d: %w", id, err)
	}

	pkg := entity.(*types.Package)
	if err := c.replaceLinks(ctx, pkg.ID, in); err != nil {
		return pkg, err
	}

	c.log.Info("package updated", "package_id", pkg.ID)
	return pkg, nil
}

// replaceLinks overwrites each relation carried by in. The first failure
// stops the sequence and is reported as an IntegrityError: the package row
// is already committed at this point.
func (c *Composer) replaceLinks(ctx context.Context, id int64, in types.PackageInput) error {
	for _, rel := range types.Relations {
		ids, ok := in.Links(rel)
		if !ok {
			continue
		}
		if err := c.links.ReplaceAll(ctx, id, rel, ids); err != nil {
			c.log.Warn("package links not written", "package_id", id, "relation", string(rel), "error", err.Error())
			return &types.IntegrityError{PackageID: id, Relation: rel, Err: err}
		}
	}
	return nil
}

// Delete removes both link sets, then the package row. The row is kept if
// either link set could not be removed.
func (c *Composer) Delete(ctx context.Context, id int64) error {
	unlock := c.locks.Lock(id)
	defer unlock()

	ok, err := c.store.ExistsByID(ctx, types.TablePackages, id)
	if err != nil {
		return fmt.Errorf("deleting package %d: %w", id, err)
	}
	if !ok {
		return &types.NotFoundError{Kind: types.TablePackages, ID: id}
	}

	for _, rel := range types.Relations {
		if err := c.links.DeleteAll(ctx, id, rel); err != nil {
			return fmt.Errorf("deleting %s of package %d: %w", rel, id, err)
		}
	}
	if err := c.store.Delete(ctx, types.TablePackages, id); err != nil {
		return fmt.Errorf("deleting package %d: %w", id, err)
	}

	c.log.Info("package deleted", "package_id", id)
	return nil
}
