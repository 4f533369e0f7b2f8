package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/stopidhan/backend-buzjet-api/pkg/types"
)

// Operation selects the rule set the Gate applies.
type Operation string

// Gate operations.
const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
)

// Gate validates package payloads before anything is written. It reads the
// entity store and user directory to resolve foreign ids but never mutates
// them.
type Gate struct {
	store types.EntityStore
	users types.UserDirectory
}

// NewGate returns a Gate reading from store and users.
func NewGate(store types.EntityStore, users types.UserDirectory) (*Gate, error) {
	if store == nil {
		return nil, fmt.Errorf("new gate: entity store is nil")
	}
	if users == nil {
		return nil, fmt.Errorf("new gate: user directory is nil")
	}
	return &Gate{store: store, users: users}, nil
}

// Validate checks payload for op and returns the typed input. Violations are
// collected into a *types.ValidationError; any other error comes from the
// stores and means validation could not finish.
//
// A key whose value is JSON null is treated as absent. Id arrays are
// de-duplicated, keeping the first occurrence.
func (g *Gate) Validate(ctx context.Context, op Operation, payload map[string]any) (types.PackageInput, error) {
	var in types.PackageInput
	if op != OpCreate && op != OpUpdate {
		return in, fmt.Errorf("validate: unknown operation %q", op)
	}
	create := op == OpCreate
	ve := types.NewValidationError()

	present := func(key string) (any, bool) {
		v, ok := payload[key]
		if !ok || v == nil {
			if create {
				ve.Add(key, fmt.Sprintf("The %s field is required.", key))
			}
			return nil, false
		}
		return v, true
	}

	if v, ok := present("name"); ok {
		in.Name = text(ve, "name", v, types.MaxNameLength)
	}
	if v, ok := present("description"); ok {
		in.Description = text(ve, "description", v, 0)
	}
	if v, ok := present("price"); ok {
		if n, ok := asNumber(v); !ok {
			ve.Add("price", "The price must be a number.")
		} else if n < 0 {
			ve.Add("price", "The price must be at least 0.")
		} else {
			in.Price = &n
		}
	}
	if v, ok := present("duration_days"); ok {
		in.DurationDays = count(ve, "duration_days", v, 1)
	}
	if v, ok := present("nights"); ok {
		in.Nights = count(ve, "nights", v, 0)
	}
	if v, ok := present("capacity"); ok {
		in.Capacity = count(ve, "capacity", v, 1)
	}

	if v, ok := present("owner_id"); ok {
		owner, isAdmin, err := g.owner(ctx, ve, v, create)
		if err != nil {
			return in, err
		}
		in.OwnerID = owner
		in.OwnerIsAdmin = isAdmin
	}

	for _, rel := range types.Relations {
		key := idsKey(rel)
		v, ok := present(key)
		if !ok {
			continue
		}
		ids, err := g.links(ctx, ve, key, rel.TargetTable(), v, create)
		if err != nil {
			return in, err
		}
		switch rel {
		case types.RelationDestinations:
			in.DestinationIDs = ids
		case types.RelationHotels:
			in.HotelIDs = ids
		}
	}

	if !ve.Empty() {
		return types.PackageInput{}, ve
	}
	return in, nil
}

// idsKey returns the payload key carrying relation's ids.
func idsKey(rel types.Relation) string {
	switch rel {
	case types.RelationDestinations:
		return "destination_ids"
	case types.RelationHotels:
		return "hotel_ids"
	}
	return string(rel) + "_ids"
}

// text checks a non-empty string of at most limit characters (0 means no
// bound).
func text(ve *types.ValidationError, key string, v any, limit int) *string {
	s, ok := v.(string)
	if !ok {
		ve.Add(key, fmt.Sprintf("The %s must be a string.", key))
		return nil
	}
	if strings.TrimSpace(s) == "" {
		ve.Add(key, fmt.Sprintf("The %s field is required.", key))
		return nil
	}
	if limit > 0 && utf8.RuneCountInString(s) > limit {
		ve.Add(key, fmt.Sprintf("The %s may not be greater than %d characters.", key, limit))
		return nil
	}
	return &s
}

// count checks an integer of at least floor.
func count(ve *types.ValidationError, key string, v any, floor int64) *int {
	n, ok := asInteger(v)
	if !ok {
		ve.Add(key, fmt.Sprintf("The %s must be an integer.", key))
		return nil
	}
	if n < floor {
		ve.Add(key, fmt.Sprintf("The %s must be at least %d.", key, floor))
		return nil
	}
	if n > math.MaxInt32 {
		ve.Add(key, fmt.Sprintf("The %s may not be greater than %d.", key, math.MaxInt32))
		return nil
	}
	i := int(n)
	return &i
}

// owner resolves owner_id. At create time the owner must also be an admin.
func (g *Gate) owner(ctx context.Context, ve *types.ValidationError, v any, create bool) (*int64, bool, error) {
	id, ok := asInteger(v)
	if !ok {
		ve.Add("owner_id", "The owner_id must be an integer.")
		return nil, false, nil
	}
	user, err := g.users.FindUser(ctx, id)
	if errors.Is(err, types.ErrNotFound) {
		ve.Add("owner_id", "The selected owner_id is invalid.")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("resolving owner %d: %w", id, err)
	}
	if create && !user.IsAdmin() {
		ve.Add("owner_id", "The selected owner_id must be an admin.")
		return nil, false, nil
	}
	return &id, user.IsAdmin(), nil
}

// links checks an id array against table. The returned slice is never nil
// when the array itself was well formed, so an empty update clears the
// relation.
func (g *Gate) links(ctx context.Context, ve *types.ValidationError, key, table string, v any, create bool) ([]int64, error) {
	elems, ok := asSlice(v)
	if !ok {
		ve.Add(key, fmt.Sprintf("The %s must be an array.", key))
		return nil, nil
	}
	if create && len(elems) == 0 {
		ve.Add(key, fmt.Sprintf("The %s field is required.", key))
		return nil, nil
	}

	ids := make([]int64, 0, len(elems))
	seen := make(map[int64]bool, len(elems))
	valid := true
	for i, e := range elems {
		id, ok := asInteger(e)
		if !ok {
			ve.Add(key, fmt.Sprintf("The %s.%d must be an integer.", key, i))
			valid = false
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		found, err := g.store.ExistsByID(ctx, table, id)
		if err != nil {
			return nil, fmt.Errorf("resolving %s %d: %w", table, id, err)
		}
		if !found {
			ve.Add(key, fmt.Sprintf("The selected %s.%d is invalid.", key, i))
			valid = false
			continue
		}
		ids = append(ids, id)
	}
	if !valid {
		return nil, nil
	}
	return ids, nil
}

// asSlice accepts a decoded JSON array or a Go slice of ids.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []int64:
		out := make([]any, len(s))
		for i, id := range s {
			out[i] = id
		}
		return out, true
	case []int:
		out := make([]any, len(s))
		for i, id := range s {
			out[i] = id
		}
		return out, true
	}
	return nil, false
}

// asNumber accepts JSON and Go numeric values. Strings and booleans are
// rejected.
func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		x, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = x
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// asInteger accepts numbers with no fractional part.
func asInteger(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	f, ok := asNumber(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}
