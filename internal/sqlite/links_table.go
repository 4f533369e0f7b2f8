// This file implements the association store: the destination and hotel
// link sets owned by each package.
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stopidhan/backend-buzjet-api/pkg/types"
)

// linkTable returns the SQL table holding relation's links.
func linkTable(relation types.Relation) (string, error) {
	switch relation {
	case types.RelationDestinations:
		return "package_destinations", nil
	case types.RelationHotels:
		return "package_hotels", nil
	default:
		return "", fmt.Errorf("%w: %q", types.ErrInvalidRelation, relation)
	}
}

// ReplaceAll substitutes the link set of packageID for relation with ids in
// a single transaction. Duplicate ids collapse to one link.
func (b *Backend) ReplaceAll(ctx context.Context, packageID int64, relation types.Relation, ids []int64) error {
	table, err := linkTable(relation)
	if err != nil {
		return err
	}
	if packageID <= 0 {
		return fmt.Errorf("%w: package %d", types.ErrInvalidID, packageID)
	}
	db, err := b.handle()
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM "+table+" WHERE package_id = ?"), packageID); err != nil {
		return fmt.Errorf("clearing %s of package %d: %w", relation, packageID, err)
	}

	now := time.Now().UTC()
	insert := tx.Rebind("INSERT INTO " + table + " (link_id, package_id, target_id, created_at) VALUES (?, ?, ?, ?)")
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		linkID, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generating UUID v7: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insert, linkID.String(), packageID, id, now); err != nil {
			return fmt.Errorf("linking package %d to %s %d: %w", packageID, relation, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s of package %d: %w", relation, packageID, err)
	}
	b.log.Debug("links replaced", "package_id", packageID, "relation", string(relation), "count", len(seen))
	return nil
}

// GetLinked returns the ids linked to packageID for relation, ascending.
func (b *Backend) GetLinked(ctx context.Context, packageID int64, relation types.Relation) ([]int64, error) {
	table, err := linkTable(relation)
	if err != nil {
		return nil, err
	}
	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	ids := []int64{}
	err = db.SelectContext(ctx, &ids,
		db.Rebind("SELECT target_id FROM "+table+" WHERE package_id = ? ORDER BY target_id"), packageID)
	if err != nil {
		return nil, fmt.Errorf("reading %s of package %d: %w", relation, packageID, err)
	}
	return ids, nil
}

// DeleteAll removes every link of packageID for relation. Deleting an empty
// set is not an error.
func (b *Backend) DeleteAll(ctx context.Context, packageID int64, relation types.Relation) error {
	table, err := linkTable(relation)
	if err != nil {
		return err
	}
	db, err := b.handle()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, db.Rebind("DELETE FROM "+table+" WHERE package_id = ?"), packageID); err != nil {
		return fmt.Errorf("deleting %s of package %d: %w", relation, packageID, err)
	}
	return nil
}

// ListLinks returns the full link records of packageID for relation, ordered
// by target id.
func (b *Backend) ListLinks(ctx context.Context, packageID int64, relation types.Relation) ([]types.Link, error) {
	table, err := linkTable(relation)
	if err != nil {
		return nil, err
	}
	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	links := []types.Link{}
	err = db.SelectContext(ctx, &links,
		db.Rebind("SELECT link_id, package_id, target_id, created_at FROM "+table+" WHERE package_id = ? ORDER BY target_id"),
		packageID)
	if err != nil {
		return nil, fmt.Errorf("listing %s links of package %d: %w", relation, packageID, err)
	}
	return links, nil
}
