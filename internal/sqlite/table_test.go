package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stopidhan/backend-buzjet-api/pkg/types"
)

func TestEntityStore_HotelCRUD(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	loc := mustCreate(t, b, types.TableLocations, &types.Location{City: "Bali", Province: "Bali", Country: "Indonesia"})
	hotel := &types.Hotel{Name: "Grand Bali Hotel", LocationID: loc, PricePerNight: 500000, Rating: 4.5}
	id := mustCreate(t, b, types.TableHotels, hotel)
	assert.Equal(t, id, hotel.ID, "Create assigns the id to the entity")

	got, err := b.FindByID(ctx, types.TableHotels, id)
	require.NoError(t, err)
	assert.Equal(t, hotel, got.(*types.Hotel))

	updated, err := b.Update(ctx, types.TableHotels, id, map[string]any{"rating": 4.9})
	require.NoError(t, err)
	h := updated.(*types.Hotel)
	assert.Equal(t, 4.9, h.Rating)
	assert.Equal(t, "Grand Bali Hotel", h.Name, "absent fields keep their value")

	ok, err := b.ExistsByID(ctx, types.TableHotels, id)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, b.Delete(ctx, types.TableHotels, id))

	_, err = b.FindByID(ctx, types.TableHotels, id)
	assert.ErrorIs(t, err, types.ErrNotFound)
	ok, err = b.ExistsByID(ctx, types.TableHotels, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntityStore_CreateRejects(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	loc := mustCreate(t, b, types.TableLocations, &types.Location{City: "Bali", Country: "Indonesia"})

	tests := []struct {
		name   string
		table  string
		entity types.Entity
		want   error
	}{
		{name: "unknown table", table: "trails", entity: &types.Hotel{}, want: types.ErrTableNotFound},
		{name: "entity for another table", table: types.TableHotels, entity: &types.Destination{Name: "Kuta", LocationID: loc}, want: types.ErrInvalidData},
		{name: "nil entity", table: types.TableHotels, entity: nil, want: types.ErrInvalidData},
		{name: "field rule", table: types.TableHotels, entity: &types.Hotel{Name: "H", LocationID: loc, Rating: 6}, want: types.ErrInvalidData},
		{name: "missing location", table: types.TableHotels, entity: &types.Hotel{Name: "H", LocationID: loc + 100, Rating: 4}, want: types.ErrInvalidData},
		{name: "package owner missing", table: types.TablePackages, entity: &types.Package{Name: "P", Description: "d", DurationDays: 1, Capacity: 1, OwnerID: 99}, want: types.ErrInvalidData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Create(ctx, tt.table, tt.entity)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	all, err := b.ListAll(ctx, types.TableHotels, nil)
	require.NoError(t, err)
	assert.Empty(t, all, "rejected creates leave no rows")
}

func TestEntityStore_FindByIDNotFound(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	for _, id := range []int64{0, -1, 42} {
		_, err := b.FindByID(ctx, types.TablePackages, id)
		var nf *types.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, types.TablePackages, nf.Kind)
		assert.Equal(t, id, nf.ID)
	}
}

func TestEntityStore_UpdateRejects(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	loc := mustCreate(t, b, types.TableLocations, &types.Location{City: "Bali", Country: "Indonesia"})
	hotel := mustCreate(t, b, types.TableHotels, &types.Hotel{Name: "H", LocationID: loc, PricePerNight: 1, Rating: 4})
	user := mustCreate(t, b, types.TableUsers, &types.User{Name: "Admin", Role: types.RoleAdmin})

	tests := []struct {
		name   string
		table  string
		id     int64
		fields map[string]any
		want   error
	}{
		{name: "unknown column", table: types.TableHotels, id: hotel, fields: map[string]any{"stars": 5}, want: types.ErrInvalidField},
		{name: "id is immutable", table: types.TableHotels, id: hotel, fields: map[string]any{"id": 9}, want: types.ErrInvalidField},
		{name: "missing row", table: types.TableHotels, id: hotel + 1, fields: map[string]any{"rating": 3}, want: types.ErrNotFound},
		{name: "field rule", table: types.TableHotels, id: hotel, fields: map[string]any{"rating": -1}, want: types.ErrInvalidData},
		{name: "wrong type", table: types.TableHotels, id: hotel, fields: map[string]any{"rating": "high"}, want: types.ErrInvalidData},
		{name: "dangling location", table: types.TableHotels, id: hotel, fields: map[string]any{"location_id": loc + 5}, want: types.ErrInvalidData},
		{name: "users are read-only", table: types.TableUsers, id: user, fields: map[string]any{"role": types.RoleCustomer}, want: types.ErrReadOnlyTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Update(ctx, tt.table, tt.id, tt.fields)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	got, err := b.FindByID(ctx, types.TableHotels, hotel)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.(*types.Hotel).Rating, "rejected updates change nothing")
}

func TestEntityStore_UpdateEmptyFields(t *testing.T) {
	b := setupBackend(t)
	loc := mustCreate(t, b, types.TableLocations, &types.Location{City: "Bali", Country: "Indonesia"})

	got, err := b.Update(context.Background(), types.TableLocations, loc, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "Bali", got.(*types.Location).City)
}

func TestEntityStore_PackageTimestamps(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	owner := mustCreate(t, b, types.TableUsers, &types.User{Name: "Admin", Role: types.RoleAdmin})

	before := time.Now().UTC().Add(-time.Second)
	pkg := &types.Package{Name: "Bali Explorer", Description: "d", Price: 1, DurationDays: 5, Nights: 4, Capacity: 10, OwnerID: owner}
	id := mustCreate(t, b, types.TablePackages, pkg)
	assert.True(t, pkg.CreatedAt.After(before))
	assert.Equal(t, pkg.CreatedAt, pkg.UpdatedAt)

	time.Sleep(5 * time.Millisecond)
	updated, err := b.Update(ctx, types.TablePackages, id, map[string]any{"capacity": 12})
	require.NoError(t, err)
	p := updated.(*types.Package)
	assert.Equal(t, 12, p.Capacity)
	assert.True(t, p.UpdatedAt.After(p.CreatedAt))

	reread, err := b.FindByID(ctx, types.TablePackages, id)
	require.NoError(t, err)
	assert.WithinDuration(t, p.UpdatedAt, reread.(*types.Package).UpdatedAt, time.Millisecond)
	assert.WithinDuration(t, pkg.CreatedAt, reread.(*types.Package).CreatedAt, time.Millisecond)
}

func TestEntityStore_Delete(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	user := mustCreate(t, b, types.TableUsers, &types.User{Name: "Admin", Role: types.RoleAdmin})

	assert.ErrorIs(t, b.Delete(ctx, types.TableHotels, 7), types.ErrNotFound)
	assert.ErrorIs(t, b.Delete(ctx, types.TableUsers, user), types.ErrReadOnlyTable)
	assert.ErrorIs(t, b.Delete(ctx, "bookings", 1), types.ErrTableNotFound)
}

func TestEntityStore_ListAll(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	bali := mustCreate(t, b, types.TableLocations, &types.Location{City: "Bali", Country: "Indonesia"})
	jakarta := mustCreate(t, b, types.TableLocations, &types.Location{City: "Jakarta", Country: "Indonesia"})
	mustCreate(t, b, types.TableHotels, &types.Hotel{Name: "Grand Bali Hotel", LocationID: bali, PricePerNight: 500000, Rating: 4.5})
	mustCreate(t, b, types.TableHotels, &types.Hotel{Name: "Jakarta City Hotel", LocationID: jakarta, PricePerNight: 350000, Rating: 4.2})
	mustCreate(t, b, types.TableHotels, &types.Hotel{Name: "Bali Beach Resort", LocationID: bali, PricePerNight: 700000, Rating: 4.8})

	tests := []struct {
		name   string
		filter types.Filter
		want   []string
	}{
		{name: "nil filter", filter: nil, want: []string{"Grand Bali Hotel", "Jakarta City Hotel", "Bali Beach Resort"}},
		{name: "by location", filter: types.Filter{"location_id": bali}, want: []string{"Grand Bali Hotel", "Bali Beach Resort"}},
		{name: "no match", filter: types.Filter{"location_id": int64(999)}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := b.ListAll(ctx, types.TableHotels, tt.filter)
			require.NoError(t, err)
			names := []string{}
			for _, r := range rows {
				names = append(names, r.(*types.Hotel).Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	_, err := b.ListAll(ctx, types.TableHotels, types.Filter{"stars": 5})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestEntityStore_PackageLinkFilters(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	owner := mustCreate(t, b, types.TableUsers, &types.User{Name: "Admin", Role: types.RoleAdmin})

	newPackage := func(name string) int64 {
		return mustCreate(t, b, types.TablePackages, &types.Package{Name: name, Description: "d", DurationDays: 1, Capacity: 1, OwnerID: owner})
	}
	p1 := newPackage("One")
	p2 := newPackage("Two")
	require.NoError(t, b.ReplaceAll(ctx, p1, types.RelationDestinations, []int64{1, 2}))
	require.NoError(t, b.ReplaceAll(ctx, p2, types.RelationDestinations, []int64{2}))
	require.NoError(t, b.ReplaceAll(ctx, p2, types.RelationHotels, []int64{3}))

	ids := func(filter types.Filter) []int64 {
		rows, err := b.ListAll(ctx, types.TablePackages, filter)
		require.NoError(t, err)
		out := []int64{}
		for _, r := range rows {
			out = append(out, r.(*types.Package).ID)
		}
		return out
	}

	assert.Equal(t, []int64{p1}, ids(types.Filter{"destination_id": int64(1)}))
	assert.Equal(t, []int64{p1, p2}, ids(types.Filter{"destination_id": int64(2)}))
	assert.Equal(t, []int64{p2}, ids(types.Filter{"destination_id": int64(2), "hotel_id": int64(3)}))
	assert.Equal(t, []int64{p1, p2}, ids(types.Filter{"owner_id": owner}))
}

func TestFindUser(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	id := mustCreate(t, b, types.TableUsers, &types.User{Name: "Admin", Role: types.RoleAdmin})

	u, err := b.FindUser(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	_, err = b.FindUser(ctx, id+1)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestEntityStore_LocationDeleteBlockedWhileReferenced(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	bali := mustCreate(t, b, types.TableLocations, &types.Location{City: "Bali", Country: "Indonesia"})
	bandung := mustCreate(t, b, types.TableLocations, &types.Location{City: "Bandung", Country: "Indonesia"})
	hotel := mustCreate(t, b, types.TableHotels, &types.Hotel{Name: "Grand Bali Hotel", LocationID: bali, Rating: 4.5})

	assert.ErrorIs(t, b.Delete(ctx, types.TableLocations, bali), types.ErrInUse)
	assert.NoError(t, b.Delete(ctx, types.TableLocations, bandung))

	require.NoError(t, b.Delete(ctx, types.TableHotels, hotel))
	assert.NoError(t, b.Delete(ctx, types.TableLocations, bali))
}
