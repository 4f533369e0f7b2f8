package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityValidate(t *testing.T) {
	tests := []struct {
		name    string
		entity  Entity
		wantErr bool
	}{
		{name: "valid location", entity: &Location{City: "Bali", Country: "Indonesia"}},
		{name: "location without city", entity: &Location{Country: "Indonesia"}, wantErr: true},
		{name: "valid destination", entity: &Destination{Name: "Kuta Beach", LocationID: 1}},
		{name: "destination without location", entity: &Destination{Name: "Kuta Beach"}, wantErr: true},
		{name: "valid hotel", entity: &Hotel{Name: "Grand Bali Hotel", LocationID: 1, PricePerNight: 500000, Rating: 4.5}},
		{name: "hotel rating above 5", entity: &Hotel{Name: "H", LocationID: 1, Rating: 5.1}, wantErr: true},
		{name: "hotel negative price", entity: &Hotel{Name: "H", LocationID: 1, PricePerNight: -1}, wantErr: true},
		{name: "valid transportation", entity: &Transportation{Type: "Bus", Name: "Shuttle", Price: 1, LocationID: 1}},
		{name: "transportation without type", entity: &Transportation{Name: "Shuttle", LocationID: 1}, wantErr: true},
		{name: "valid user", entity: &User{Name: "Admin", Role: RoleAdmin}},
		{name: "user without role", entity: &User{Name: "Admin"}, wantErr: true},
		{
			name:   "valid package",
			entity: &Package{Name: "Bali Explorer", Description: "d", Price: 0, DurationDays: 5, Nights: 0, Capacity: 1, OwnerID: 1},
		},
		{
			name:    "package name too long",
			entity:  &Package{Name: strings.Repeat("x", 256), Description: "d", DurationDays: 1, Capacity: 1, OwnerID: 1},
			wantErr: true,
		},
		{
			name:    "package zero duration",
			entity:  &Package{Name: "P", Description: "d", DurationDays: 0, Capacity: 1, OwnerID: 1},
			wantErr: true,
		},
		{
			name:    "package zero capacity",
			entity:  &Package{Name: "P", Description: "d", DurationDays: 1, Capacity: 0, OwnerID: 1},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entity.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidData)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewEntity(t *testing.T) {
	for _, table := range StandardTableNames {
		e := NewEntity(table)
		require.NotNil(t, e, table)
		e.SetEntityID(42)
		assert.Equal(t, int64(42), e.EntityID())
	}
	assert.Nil(t, NewEntity("bookings"))
}

func TestUserIsAdmin(t *testing.T) {
	var nobody *User
	assert.False(t, nobody.IsAdmin())
	assert.False(t, (&User{Role: RoleCustomer}).IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
}

func TestPackageInput(t *testing.T) {
	name := "Bali Explorer"
	price := 100.0
	in := PackageInput{Name: &name, Price: &price, DestinationIDs: []int64{}}

	assert.Equal(t, map[string]any{"name": name, "price": price}, in.Fields())

	ids, ok := in.Links(RelationDestinations)
	assert.True(t, ok)
	assert.Empty(t, ids)

	_, ok = in.Links(RelationHotels)
	assert.False(t, ok)

	assert.ElementsMatch(t,
		[]string{"description", "duration_days", "nights", "capacity", "owner_id", "hotel_ids"},
		in.Missing())

	p := in.Package()
	assert.Equal(t, name, p.Name)
	assert.Equal(t, price, p.Price)
}

func TestRelation(t *testing.T) {
	assert.True(t, RelationDestinations.Valid())
	assert.True(t, RelationHotels.Valid())
	assert.False(t, Relation("transportations").Valid())
	assert.Equal(t, TableDestinations, RelationDestinations.TargetTable())
	assert.Equal(t, TableHotels, RelationHotels.TargetTable())
	assert.Equal(t, "", Relation("x").TargetTable())
}
