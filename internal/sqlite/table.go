package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stopidhan/backend-buzjet-api/pkg/types"
)

// reference is a foreign id column whose target must exist when written.
type reference struct {
	column string
	table  string
}

// tableSpec describes how one entity kind maps onto its SQL table.
type tableSpec struct {
	name       string
	columns    []string          // insertable columns, excluding id
	mutable    map[string]bool   // columns Update may change
	filters    map[string]string // filter key to a condition with one placeholder
	references []reference
	dependents []reference // rows in other tables that block Delete
	readOnly   bool        // Update and Delete are refused
	timestamps bool        // created_at / updated_at maintained by the store
}

func (s tableSpec) selectSQL() string {
	return "SELECT id, " + strings.Join(s.columns, ", ") + " FROM " + s.name
}

func (s tableSpec) insertSQL() string {
	named := make([]string, len(s.columns))
	for i, c := range s.columns {
		named[i] = ":" + c
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		s.name, strings.Join(s.columns, ", "), strings.Join(named, ", "))
}

func mutableSet(columns ...string) map[string]bool {
	m := make(map[string]bool, len(columns))
	for _, c := range columns {
		m[c] = true
	}
	return m
}

var locationRef = reference{column: "location_id", table: types.TableLocations}

var tableSpecs = map[string]tableSpec{
	types.TableLocations: {
		name:    types.TableLocations,
		columns: []string{"city", "province", "country"},
		mutable: mutableSet("city", "province", "country"),
		filters: map[string]string{
			"city":     "city = ?",
			"province": "province = ?",
			"country":  "country = ?",
		},
		dependents: []reference{
			{column: "location_id", table: types.TableDestinations},
			{column: "location_id", table: types.TableHotels},
			{column: "location_id", table: types.TableTransportations},
		},
	},
	types.TableDestinations: {
		name:       types.TableDestinations,
		columns:    []string{"name", "location_id", "description", "image_url"},
		mutable:    mutableSet("name", "location_id", "description", "image_url"),
		filters:    map[string]string{"location_id": "location_id = ?"},
		references: []reference{locationRef},
	},
	types.TableHotels: {
		name:       types.TableHotels,
		columns:    []string{"name", "location_id", "price_per_night", "rating"},
		mutable:    mutableSet("name", "location_id", "price_per_night", "rating"),
		filters:    map[string]string{"location_id": "location_id = ?"},
		references: []reference{locationRef},
	},
	types.TableTransportations: {
		name:    types.TableTransportations,
		columns: []string{"type", "name", "price", "provider", "location_id"},
		mutable: mutableSet("type", "name", "price", "provider", "location_id"),
		filters: map[string]string{
			"location_id": "location_id = ?",
			"type":        "type = ?",
		},
		references: []reference{locationRef},
	},
	types.TablePackages: {
		name:    types.TablePackages,
		columns: []string{"name", "description", "price", "duration_days", "nights", "capacity", "owner_id", "created_at", "updated_at"},
		mutable: mutableSet("name", "description", "price", "duration_days", "nights", "capacity", "owner_id"),
		filters: map[string]string{
			"owner_id":       "owner_id = ?",
			"destination_id": "id IN (SELECT package_id FROM package_destinations WHERE target_id = ?)",
			"hotel_id":       "id IN (SELECT package_id FROM package_hotels WHERE target_id = ?)",
		},
		references: []reference{{column: "owner_id", table: types.TableUsers}},
		timestamps: true,
	},
	types.TableUsers: {
		name:     types.TableUsers,
		columns:  []string{"name", "role"},
		mutable:  mutableSet(),
		filters:  map[string]string{"role": "role = ?"},
		readOnly: true,
	},
}

func lookupSpec(table string) (tableSpec, error) {
	spec, ok := tableSpecs[table]
	if !ok {
		return tableSpec{}, fmt.Errorf("%w: %q", types.ErrTableNotFound, table)
	}
	return spec, nil
}

// Create inserts entity and assigns its generated id.
func (b *Backend) Create(ctx context.Context, table string, entity types.Entity) (int64, error) {
	spec, err := lookupSpec(table)
	if err != nil {
		return 0, err
	}
	if entity == nil || reflect.TypeOf(entity) != reflect.TypeOf(types.NewEntity(table)) {
		return 0, fmt.Errorf("%w: %T cannot be stored in %s", types.ErrInvalidData, entity, table)
	}
	db, err := b.handle()
	if err != nil {
		return 0, err
	}

	if spec.timestamps {
		if p, ok := entity.(*types.Package); ok {
			now := time.Now().UTC()
			p.CreatedAt, p.UpdatedAt = now, now
		}
	}
	if err := entity.Validate(); err != nil {
		return 0, err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkReferences(ctx, tx, spec.references, entity); err != nil {
		return 0, err
	}

	query, args, err := sqlx.Named(spec.insertSQL(), entity)
	if err != nil {
		return 0, fmt.Errorf("binding %s insert: %w", table, err)
	}
	var id int64
	if err := tx.QueryRowxContext(ctx, tx.Rebind(query), args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing %s insert: %w", table, err)
	}

	entity.SetEntityID(id)
	return id, nil
}

// FindByID retrieves the entity with the given id.
func (b *Backend) FindByID(ctx context.Context, table string, id int64) (any, error) {
	spec, err := lookupSpec(table)
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, &types.NotFoundError{Kind: table, ID: id}
	}
	db, err := b.handle()
	if err != nil {
		return nil, err
	}
	return getEntity(ctx, db, spec, id)
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

// getEntity loads one row through q, which is either the database or an
// open transaction.
func getEntity(ctx context.Context, q queryer, spec tableSpec, id int64) (types.Entity, error) {
	entity := types.NewEntity(spec.name)
	err := sqlx.GetContext(ctx, q, entity, q.Rebind(spec.selectSQL()+" WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &types.NotFoundError{Kind: spec.name, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s %d: %w", spec.name, id, err)
	}
	return entity, nil
}

// ExistsByID reports whether a row with id exists in table.
func (b *Backend) ExistsByID(ctx context.Context, table string, id int64) (bool, error) {
	spec, err := lookupSpec(table)
	if err != nil {
		return false, err
	}
	if id <= 0 {
		return false, nil
	}
	db, err := b.handle()
	if err != nil {
		return false, err
	}
	return exists(ctx, db, spec.name, id)
}

func exists(ctx context.Context, q queryer, table string, id int64) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n, q.Rebind("SELECT COUNT(*) FROM "+table+" WHERE id = ?"), id)
	if err != nil {
		return false, fmt.Errorf("checking %s %d: %w", table, id, err)
	}
	return n > 0, nil
}

// Update applies fields to the row with id inside one transaction and
// returns the updated entity. Unknown or immutable columns are rejected
// with ErrInvalidField before anything is read.
func (b *Backend) Update(ctx context.Context, table string, id int64, fields map[string]any) (any, error) {
	spec, err := lookupSpec(table)
	if err != nil {
		return nil, err
	}
	if spec.readOnly {
		return nil, fmt.Errorf("%w: %s", types.ErrReadOnlyTable, table)
	}
	columns := make([]string, 0, len(fields))
	for k := range fields {
		if !spec.mutable[k] {
			return nil, fmt.Errorf("%w: %s.%s", types.ErrInvalidField, table, k)
		}
		columns = append(columns, k)
	}
	sort.Strings(columns)

	if id <= 0 {
		return nil, &types.NotFoundError{Kind: table, ID: id}
	}
	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	entity, err := getEntity(ctx, tx, spec, id)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return entity, nil
	}

	if err := applyFields(entity, fields); err != nil {
		return nil, err
	}
	if spec.timestamps {
		if p, ok := entity.(*types.Package); ok {
			p.UpdatedAt = time.Now().UTC()
			columns = append(columns, "updated_at")
		}
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}

	var touched []reference
	for _, ref := range spec.references {
		if _, ok := fields[ref.column]; ok {
			touched = append(touched, ref)
		}
	}
	if err := checkReferences(ctx, tx, touched, entity); err != nil {
		return nil, err
	}

	sets := make([]string, len(columns))
	for i, c := range columns {
		sets[i] = c + " = :" + c
	}
	query, args, err := sqlx.Named("UPDATE "+table+" SET "+strings.Join(sets, ", ")+" WHERE id = :id", entity)
	if err != nil {
		return nil, fmt.Errorf("binding %s update: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("updating %s %d: %w", table, id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing %s update: %w", table, err)
	}
	return entity, nil
}

// applyFields decodes fields onto entity. Entity JSON names equal column
// names, so a partial object leaves the other fields untouched.
func applyFields(entity types.Entity, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	if err := json.Unmarshal(raw, entity); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return nil
}

// checkReferences verifies that every referenced row exists.
func checkReferences(ctx context.Context, tx *sqlx.Tx, refs []reference, entity types.Entity) error {
	v := reflect.ValueOf(entity)
	for _, ref := range refs {
		field := tx.Mapper.FieldByName(v, ref.column)
		if field.Kind() != reflect.Int64 {
			return fmt.Errorf("%w: no column %s", types.ErrInvalidData, ref.column)
		}
		id := field.Int()
		ok, err := exists(ctx, tx, ref.table, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s %d does not exist in %s", types.ErrInvalidData, ref.column, id, ref.table)
		}
	}
	return nil
}

// Delete removes the row with id from table.
func (b *Backend) Delete(ctx context.Context, table string, id int64) error {
	spec, err := lookupSpec(table)
	if err != nil {
		return err
	}
	if spec.readOnly {
		return fmt.Errorf("%w: %s", types.ErrReadOnlyTable, table)
	}
	if id <= 0 {
		return &types.NotFoundError{Kind: table, ID: id}
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

	for _, dep := range spec.dependents {
		var n int
		q := tx.Rebind("SELECT COUNT(*) FROM " + dep.table + " WHERE " + dep.column + " = ?")
		if err := tx.GetContext(ctx, &n, q, id); err != nil {
			return fmt.Errorf("checking %s referencing %s %d: %w", dep.table, table, id, err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %s %d has %d %s", types.ErrInUse, table, id, n, dep.table)
		}
	}

	res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM "+table+" WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting %s %d: %w", table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s %d: %w", table, id, err)
	}
	if n == 0 {
		return &types.NotFoundError{Kind: table, ID: id}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s delete: %w", table, err)
	}
	return nil
}

// ListAll returns the rows of table matching filter, ordered by id.
// Filter keys must be documented for the table; values are compared for
// equality.
func (b *Backend) ListAll(ctx context.Context, table string, filter types.Filter) ([]any, error) {
	spec, err := lookupSpec(table)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		if _, ok := spec.filters[k]; !ok {
			return nil, fmt.Errorf("%w: %s on %s", types.ErrInvalidFilter, k, table)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	query := spec.selectSQL()
	args := make([]any, 0, len(keys))
	if len(keys) > 0 {
		conditions := make([]string, len(keys))
		for i, k := range keys {
			conditions[i] = spec.filters[k]
			args = append(args, filter[k])
		}
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	db, err := b.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryxContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	defer rows.Close()

	results := []any{}
	for rows.Next() {
		entity := types.NewEntity(table)
		if err := rows.StructScan(entity); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		results = append(results, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", table, err)
	}
	return results, nil
}

// FindUser implements types.UserDirectory.
func (b *Backend) FindUser(ctx context.Context, id int64) (*types.User, error) {
	entity, err := b.FindByID(ctx, types.TableUsers, id)
	if err != nil {
		return nil, err
	}
	return entity.(*types.User), nil
}
