package sqlite

import "fmt"

// dialect captures the column types that differ between the SQL engines the
// backend runs on. Queries are written with ? placeholders and rebound per
// driver.
type dialect struct {
	driver    string
	idColumn  string
	realType  string
	timestamp string
}

var (
	sqliteDialect = dialect{
		driver:    "sqlite",
		idColumn:  "INTEGER PRIMARY KEY AUTOINCREMENT",
		realType:  "REAL",
		timestamp: "TIMESTAMP",
	}
	postgresDialect = dialect{
		driver:    "postgres",
		idColumn:  "BIGSERIAL PRIMARY KEY",
		realType:  "DOUBLE PRECISION",
		timestamp: "TIMESTAMPTZ",
	}
)

// Schema DDL templates. %[1]s is the id column, %[2]s the real type and
// %[3]s the timestamp type of the dialect.
const (
	createLocations = `CREATE TABLE IF NOT EXISTS locations (
    id %[1]s,
    city TEXT NOT NULL,
    province TEXT NOT NULL DEFAULT '',
    country TEXT NOT NULL
);`

	createDestinations = `CREATE TABLE IF NOT EXISTS destinations (
    id %[1]s,
    name TEXT NOT NULL,
    location_id BIGINT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT ''
);`

	createHotels = `CREATE TABLE IF NOT EXISTS hotels (
    id %[1]s,
    name TEXT NOT NULL,
    location_id BIGINT NOT NULL,
    price_per_night %[2]s NOT NULL,
    rating %[2]s NOT NULL
);`

	createTransportations = `CREATE TABLE IF NOT EXISTS transportations (
    id %[1]s,
    type TEXT NOT NULL,
    name TEXT NOT NULL,
    price %[2]s NOT NULL,
    provider TEXT NOT NULL DEFAULT '',
    location_id BIGINT NOT NULL
);`

	createUsers = `CREATE TABLE IF NOT EXISTS users (
    id %[1]s,
    name TEXT NOT NULL,
    role TEXT NOT NULL
);`

	createPackages = `CREATE TABLE IF NOT EXISTS packages (
    id %[1]s,
    name TEXT NOT NULL,
    description TEXT NOT NULL,
    price %[2]s NOT NULL,
    duration_days INTEGER NOT NULL,
    nights INTEGER NOT NULL,
    capacity INTEGER NOT NULL,
    owner_id BIGINT NOT NULL,
    created_at %[3]s NOT NULL,
    updated_at %[3]s NOT NULL
);`

	// Link tables carry no foreign keys: a destination or hotel may be
	// deleted while still linked, and reads drop the dangling id.
	createPackageDestinations = `CREATE TABLE IF NOT EXISTS package_destinations (
    link_id TEXT NOT NULL UNIQUE,
    package_id BIGINT NOT NULL,
    target_id BIGINT NOT NULL,
    created_at %[3]s NOT NULL,
    PRIMARY KEY (package_id, target_id)
);`

	createPackageHotels = `CREATE TABLE IF NOT EXISTS package_hotels (
    link_id TEXT NOT NULL UNIQUE,
    package_id BIGINT NOT NULL,
    target_id BIGINT NOT NULL,
    created_at %[3]s NOT NULL,
    PRIMARY KEY (package_id, target_id)
);`
)

// Index DDL for common queries.
const (
	idxDestinationsLocation    = `CREATE INDEX IF NOT EXISTS idx_destinations_location ON destinations(location_id);`
	idxHotelsLocation          = `CREATE INDEX IF NOT EXISTS idx_hotels_location ON hotels(location_id);`
	idxTransportationsLocation = `CREATE INDEX IF NOT EXISTS idx_transportations_location ON transportations(location_id);`
	idxPackagesOwner           = `CREATE INDEX IF NOT EXISTS idx_packages_owner ON packages(owner_id);`
	idxPackageDestinationsTo   = `CREATE INDEX IF NOT EXISTS idx_package_destinations_target ON package_destinations(target_id);`
	idxPackageHotelsTo         = `CREATE INDEX IF NOT EXISTS idx_package_hotels_target ON package_hotels(target_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createLocations,
	createDestinations,
	createHotels,
	createTransportations,
	createUsers,
	createPackages,
	createPackageDestinations,
	createPackageHotels,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxDestinationsLocation,
	idxHotelsLocation,
	idxTransportationsLocation,
	idxPackagesOwner,
	idxPackageDestinationsTo,
	idxPackageHotelsTo,
}

// statements renders the schema for d.
func (d dialect) statements() []string {
	out := make([]string, 0, len(schemaDDL)+len(indexDDL))
	for _, ddl := range schemaDDL {
		out = append(out, fmt.Sprintf(ddl, d.idColumn, d.realType, d.timestamp))
	}
	return append(out, indexDDL...)
}
