package types

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxNameLength bounds every entity name, in characters.
const MaxNameLength = 255

// User roles known to the catalog.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Entity is implemented by every record the EntityStore persists. Identity
// is assigned by the store on Create.
type Entity interface {
	EntityID() int64
	SetEntityID(id int64)

	// Validate checks the field rules the store enforces on every write.
	// Returns an error wrapping ErrInvalidData.
	Validate() error
}

// Location is a city/province/country triple referenced by destinations,
// hotels and transportations.
type Location struct {
	ID       int64  `json:"id" db:"id"`
	City     string `json:"city" db:"city"`
	Province string `json:"province" db:"province"`
	Country  string `json:"country" db:"country"`
}

func (l *Location) EntityID() int64      { return l.ID }
func (l *Location) SetEntityID(id int64) { l.ID = id }

// Validate requires a city and a country.
func (l *Location) Validate() error {
	if err := validName("city", l.City); err != nil {
		return err
	}
	if err := validName("country", l.Country); err != nil {
		return err
	}
	return nil
}

// Destination is a point of interest that packages link to.
type Destination struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	LocationID  int64  `json:"location_id" db:"location_id"`
	Description string `json:"description" db:"description"`
	ImageURL    string `json:"image_url" db:"image_url"`
}

func (d *Destination) EntityID() int64      { return d.ID }
func (d *Destination) SetEntityID(id int64) { d.ID = id }

// Validate requires a name and a location reference.
func (d *Destination) Validate() error {
	if err := validName("name", d.Name); err != nil {
		return err
	}
	if d.LocationID <= 0 {
		return invalid("location_id is required")
	}
	return nil
}

// Hotel is an accommodation that packages link to.
type Hotel struct {
	ID            int64   `json:"id" db:"id"`
	Name          string  `json:"name" db:"name"`
	LocationID    int64   `json:"location_id" db:"location_id"`
	PricePerNight float64 `json:"price_per_night" db:"price_per_night"`
	Rating        float64 `json:"rating" db:"rating"`
}

func (h *Hotel) EntityID() int64      { return h.ID }
func (h *Hotel) SetEntityID(id int64) { h.ID = id }

// Validate checks the name, location, nightly price and the 0-5 rating range.
func (h *Hotel) Validate() error {
	if err := validName("name", h.Name); err != nil {
		return err
	}
	if h.LocationID <= 0 {
		return invalid("location_id is required")
	}
	if h.PricePerNight < 0 {
		return invalid("price_per_night must be at least 0")
	}
	if h.Rating < 0 || h.Rating > 5 {
		return invalid("rating must be between 0 and 5")
	}
	return nil
}

// Transportation is a transport offer available at a location. Packages do
// not link to transportations.
type Transportation struct {
	ID         int64   `json:"id" db:"id"`
	Type       string  `json:"type" db:"type"`
	Name       string  `json:"name" db:"name"`
	Price      float64 `json:"price" db:"price"`
	Provider   string  `json:"provider" db:"provider"`
	LocationID int64   `json:"location_id" db:"location_id"`
}

func (t *Transportation) EntityID() int64      { return t.ID }
func (t *Transportation) SetEntityID(id int64) { t.ID = id }

func (t *Transportation) Validate() error {
	if err := validName("type", t.Type); err != nil {
		return err
	}
	if err := validName("name", t.Name); err != nil {
		return err
	}
	if t.Price < 0 {
		return invalid("price must be at least 0")
	}
	if t.LocationID <= 0 {
		return invalid("location_id is required")
	}
	return nil
}

// User is a directory entry. The catalog only reads users; the owner of a
// package must have the admin role when the package is created.
type User struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Role string `json:"role" db:"role"`
}

func (u *User) EntityID() int64      { return u.ID }
func (u *User) SetEntityID(id int64) { u.ID = id }

func (u *User) Validate() error {
	if err := validName("name", u.Name); err != nil {
		return err
	}
	if strings.TrimSpace(u.Role) == "" {
		return invalid("role is required")
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Package is the scalar row of a package offering. Its destination and hotel
// links live in the AssociationStore, keyed by ID.
type Package struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	Price        float64   `json:"price" db:"price"`
	DurationDays int       `json:"duration_days" db:"duration_days"`
	Nights       int       `json:"nights" db:"nights"`
	Capacity     int       `json:"capacity" db:"capacity"`
	OwnerID      int64     `json:"owner_id" db:"owner_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

func (p *Package) EntityID() int64      { return p.ID }
func (p *Package) SetEntityID(id int64) { p.ID = id }

// Validate checks the scalar field rules of a package row.
func (p *Package) Validate() error {
	if err := validName("name", p.Name); err != nil {
		return err
	}
	if strings.TrimSpace(p.Description) == "" {
		return invalid("description is required")
	}
	if p.Price < 0 {
		return invalid("price must be at least 0")
	}
	if p.DurationDays <= 0 {
		return invalid("duration_days must be greater than 0")
	}
	if p.Nights < 0 {
		return invalid("nights must be at least 0")
	}
	if p.Capacity <= 0 {
		return invalid("capacity must be greater than 0")
	}
	if p.OwnerID <= 0 {
		return invalid("owner_id is required")
	}
	return nil
}

// NewEntity returns a pointer to the zero entity stored in table, or nil
// for an unknown table.
func NewEntity(table string) Entity {
	switch table {
	case TableLocations:
		return &Location{}
	case TableDestinations:
		return &Destination{}
	case TableHotels:
		return &Hotel{}
	case TableTransportations:
		return &Transportation{}
	case TablePackages:
		return &Package{}
	case TableUsers:
		return &User{}
	default:
		return nil
	}
}

func validName(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return invalid(field + " is required")
	}
	if utf8.RuneCountInString(value) > MaxNameLength {
		return invalid(fmt.Sprintf("%s may not be greater than %d characters", field, MaxNameLength))
	}
	return nil
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidData, reason)
}
