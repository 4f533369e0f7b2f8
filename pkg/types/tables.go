package types

// Standard table names accepted by EntityStore methods.
const (
	TableLocations       = "locations"
	TableDestinations    = "destinations"
	TableHotels          = "hotels"
	TableTransportations = "transportations"
	TablePackages        = "packages"
	TableUsers           = "users"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	TableLocations,
	TableDestinations,
	TableHotels,
	TableTransportations,
	TablePackages,
	TableUsers,
}

// ValidTableName reports whether name is one of the standard tables.
func ValidTableName(name string) bool {
	for _, n := range StandardTableNames {
		if n == name {
			return true
		}
	}
	return false
}
