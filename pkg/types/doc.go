// Package types defines the catalog entities, the storage interfaces the
// package composition core depends on, and the error taxonomy shared by the
// storage backends, the catalog service and the CLI.
//
// Entity kinds (locations, destinations, hotels, transportations, packages,
// users) are addressed by table name. Packages own two association sets,
// one per Relation, holding the ids of linked destinations and hotels.
package types
