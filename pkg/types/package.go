package types

// PackageInput is a validated create or update request for a package.
// Scalar pointers are nil when the field was absent from the request.
// DestinationIDs and HotelIDs are nil when their key was absent; a non-nil
// empty slice clears the relation.
type PackageInput struct {
	Name         *string
	Description  *string
	Price        *float64
	DurationDays *int
	Nights       *int
	Capacity     *int
	OwnerID      *int64

	// OwnerIsAdmin is decided by the validation gate at create time. The
	// composer refuses to create a package whose owner is not an admin.
	OwnerIsAdmin bool

	DestinationIDs []int64
	HotelIDs       []int64
}

// Links returns the requested link set for relation and whether the request
// carried it at all.
func (in PackageInput) Links(relation Relation) ([]int64, bool) {
	switch relation {
	case RelationDestinations:
		return in.DestinationIDs, in.DestinationIDs != nil
	case RelationHotels:
		return in.HotelIDs, in.HotelIDs != nil
	default:
		return nil, false
	}
}

// Fields returns the present scalar fields keyed by column name, for
// EntityStore.Update.
func (in PackageInput) Fields() map[string]any {
	fields := make(map[string]any)
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.DurationDays != nil {
		fields["duration_days"] = *in.DurationDays
	}
	if in.Nights != nil {
		fields["nights"] = *in.Nights
	}
	if in.Capacity != nil {
		fields["capacity"] = *in.Capacity
	}
	if in.OwnerID != nil {
		fields["owner_id"] = *in.OwnerID
	}
	return fields
}

// Missing returns the names of the fields a create request must carry but
// in does not.
func (in PackageInput) Missing() []string {
	var missing []string
	if in.Name == nil {
		missing = append(missing, "name")
	}
	if in.Description == nil {
		missing = append(missing, "description")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if in.DurationDays == nil {
		missing = append(missing, "duration_days")
	}
	if in.Nights == nil {
		missing = append(missing, "nights")
	}
	if in.Capacity == nil {
		missing = append(missing, "capacity")
	}
	if in.OwnerID == nil {
		missing = append(missing, "owner_id")
	}
	if in.DestinationIDs == nil {
		missing = append(missing, "destination_ids")
	}
	if in.HotelIDs == nil {
		missing = append(missing, "hotel_ids")
	}
	return missing
}

// Package builds the scalar row described by a complete create input.
// Fields missing from in are left at their zero value.
func (in PackageInput) Package() *Package {
	p := &Package{}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.DurationDays != nil {
		p.DurationDays = *in.DurationDays
	}
	if in.Nights != nil {
		p.Nights = *in.Nights
	}
	if in.Capacity != nil {
		p.Capacity = *in.Capacity
	}
	if in.OwnerID != nil {
		p.OwnerID = *in.OwnerID
	}
	return p
}

// PackageView is the hydrated read model of a package: its scalar fields
// plus the destinations, hotels and owner its ids currently resolve to.
// Ids that no longer resolve are omitted.
type PackageView struct {
	*Package
	Destinations []*Destination `json:"destinations"`
	Hotels       []*Hotel       `json:"hotels"`
	Owner        *User          `json:"user"`
}

// DestinationIDs returns the ids of the resolved destinations.
func (v *PackageView) DestinationIDs() []int64 {
	ids := make([]int64, 0, len(v.Destinations))
	for _, d := range v.Destinations {
		ids = append(ids, d.ID)
	}
	return ids
}

// HotelIDs returns the ids of the resolved hotels.
func (v *PackageView) HotelIDs() []int64 {
	ids := make([]int64, 0, len(v.Hotels))
	for _, h := range v.Hotels {
		ids = append(ids, h.ID)
	}
	return ids
}
