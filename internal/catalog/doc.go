// Package catalog composes travel packages out of the catalog's entity and
// association stores.
//
// A request flows through three stages. The Gate checks a raw payload and
// resolves every foreign id it names. The Composer writes the package row and
// replaces its destination and hotel link sets. The Reader hydrates a package
// into a PackageView, silently dropping links whose target has since been
// deleted. Service chains the three and maps outcomes onto a types.Result.
package catalog
