// This file implements reference-data seeding: locations, destinations,
// hotels, transportations and the demo users.
package sqlite

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/stopidhan/backend-buzjet-api/pkg/types"
)

//go:embed seeddata/seed.yaml
var seedYAML []byte

// seedData mirrors seeddata/seed.yaml. Child records name their location by
// city; ids are assigned on insert.
type seedData struct {
	Locations []struct {
		City     string `yaml:"city"`
		Province string `yaml:"province"`
		Country  string `yaml:"country"`
	} `yaml:"locations"`
	Destinations []struct {
		Name        string `yaml:"name"`
		City        string `yaml:"city"`
		Description string `yaml:"description"`
		ImageURL    string `yaml:"image_url"`
	} `yaml:"destinations"`
	Hotels []struct {
		Name          string  `yaml:"name"`
		City          string  `yaml:"city"`
		PricePerNight float64 `yaml:"price_per_night"`
		Rating        float64 `yaml:"rating"`
	} `yaml:"hotels"`
	Transportations []struct {
		Type     string  `yaml:"type"`
		Name     string  `yaml:"name"`
		Price    float64 `yaml:"price"`
		Provider string  `yaml:"provider"`
		City     string  `yaml:"city"`
	} `yaml:"transportations"`
	Users []struct {
		Name string `yaml:"name"`
		Role string `yaml:"role"`
	} `yaml:"users"`
}

// SeedReport counts the rows a Seed call inserted.
type SeedReport struct {
	Locations       int `json:"locations"`
	Destinations    int `json:"destinations"`
	Hotels          int `json:"hotels"`
	Transportations int `json:"transportations"`
	Users           int `json:"users"`
}

// Skipped reports whether Seed found existing data and inserted nothing.
func (r SeedReport) Skipped() bool {
	return r == SeedReport{}
}

func loadSeedData() (*seedData, error) {
	var data seedData
	if err := yaml.Unmarshal(seedYAML, &data); err != nil {
		return nil, fmt.Errorf("parsing seed data: %w", err)
	}
	return &data, nil
}

// Seed inserts the bundled reference data. It only runs when the locations
// table is empty, so calling it on a populated catalog is a no-op.
func (b *Backend) Seed(ctx context.Context) (SeedReport, error) {
	var report SeedReport

	existing, err := b.ListAll(ctx, types.TableLocations, nil)
	if err != nil {
		return report, err
	}
	if len(existing) > 0 {
		b.log.Info("seed skipped", "locations", len(existing))
		return report, nil
	}

	data, err := loadSeedData()
	if err != nil {
		return report, err
	}

	cities := make(map[string]int64, len(data.Locations))
	for _, l := range data.Locations {
		id, err := b.Create(ctx, types.TableLocations, &types.Location{City: l.City, Province: l.Province, Country: l.Country})
		if err != nil {
			return report, fmt.Errorf("seeding location %s: %w", l.City, err)
		}
		cities[l.City] = id
		report.Locations++
	}

	locationOf := func(city string) (int64, error) {
		id, ok := cities[city]
		if !ok {
			return 0, fmt.Errorf("%w: seed references unknown city %q", types.ErrInvalidData, city)
		}
		return id, nil
	}

	for _, d := range data.Destinations {
		loc, err := locationOf(d.City)
		if err != nil {
			return report, err
		}
		dest := &types.Destination{Name: d.Name, LocationID: loc, Description: d.Description, ImageURL: d.ImageURL}
		if _, err := b.Create(ctx, types.TableDestinations, dest); err != nil {
			return report, fmt.Errorf("seeding destination %s: %w", d.Name, err)
		}
		report.Destinations++
	}

	for _, h := range data.Hotels {
		loc, err := locationOf(h.City)
		if err != nil {
			return report, err
		}
		hotel := &types.Hotel{Name: h.Name, LocationID: loc, PricePerNight: h.PricePerNight, Rating: h.Rating}
		if _, err := b.Create(ctx, types.TableHotels, hotel); err != nil {
			return report, fmt.Errorf("seeding hotel %s: %w", h.Name, err)
		}
		report.Hotels++
	}

	for _, tr := range data.Transportations {
		loc, err := locationOf(tr.City)
		if err != nil {
			return report, err
		}
		t := &types.Transportation{Type: tr.Type, Name: tr.Name, Price: tr.Price, Provider: tr.Provider, LocationID: loc}
		if _, err := b.Create(ctx, types.TableTransportations, t); err != nil {
			return report, fmt.Errorf("seeding transportation %s: %w", tr.Name, err)
		}
		report.Transportations++
	}

	// The users table refuses updates and deletes but accepts inserts.
	for _, u := range data.Users {
		if _, err := b.Create(ctx, types.TableUsers, &types.User{Name: u.Name, Role: u.Role}); err != nil {
			return report, fmt.Errorf("seeding user %s: %w", u.Name, err)
		}
		report.Users++
	}

	b.log.Info("catalog seeded",
		"locations", report.Locations,
		"destinations", report.Destinations,
		"hotels", report.Hotels,
		"transportations", report.Transportations,
		"users", report.Users,
	)
	return report, nil
}
