package types

import "time"

// Relation names one of the two association sets owned by a package.
type Relation string

// Package relations.
const (
	RelationDestinations Relation = "destinations"
	RelationHotels       Relation = "hotels"
)

// Relations lists both package relations in a stable order.
var Relations = []Relation{RelationDestinations, RelationHotels}

// Valid reports whether r is a known relation.
func (r Relation) Valid() bool {
	return r == RelationDestinations || r == RelationHotels
}

// TargetTable returns the entity table the relation's ids refer to.
func (r Relation) TargetTable() string {
	switch r {
	case RelationDestinations:
		return TableDestinations
	case RelationHotels:
		return TableHotels
	default:
		return ""
	}
}

// Link is one member of a package association set.
type Link struct {
	// LinkID is a UUID v7, generated when the link is written.
	LinkID string `json:"link_id" db:"link_id"`

	// PackageID is the owning package.
	PackageID int64 `json:"package_id" db:"package_id"`

	// TargetID is the linked destination or hotel id.
	TargetID int64 `json:"target_id" db:"target_id"`

	// CreatedAt is the time the link set containing this link was written.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
