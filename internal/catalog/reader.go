package catalog

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/stopidhan/backend-buzjet-api/pkg/types"
)

// DefaultListConcurrency bounds how many packages List hydrates at once.
const DefaultListConcurrency = 8

// Reader builds PackageViews. Links whose target no longer exists are
// dropped from the view without error.
type Reader struct {
	store       types.EntityStore
	links       types.AssociationStore
	users       types.UserDirectory
	concurrency int
}

// NewReader returns a Reader over the three collaborators.
func NewReader(store types.EntityStore, links types.AssociationStore, users types.UserDirectory) (*Reader, error) {
	if store == nil {
		return nil, fmt.Errorf("new reader: entity store is nil")
	}
	if links == nil {
		return nil, fmt.Errorf("new reader: association store is nil")
	}
	if users == nil {
		return nil, fmt.Errorf("new reader: user directory is nil")
	}
	return &Reader{store: store, links: links, users: users, concurrency: DefaultListConcurrency}, nil
}

// Get returns the hydrated view of package id.
func (r *Reader) Get(ctx context.Context, id int64) (*types.PackageView, error) {
	entity, err := r.store.FindByID(ctx, types.TablePackages, id)
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, entity.(*types.Package))
}

// List returns the hydrated views of every package matching filter, ordered
// by id. Accepted filter keys are owner_id, destination_id and hotel_id.
func (r *Reader) List(ctx context.Context, filter types.Filter) ([]*types.PackageView, error) {
	rows, err := r.store.ListAll(ctx, types.TablePackages, filter)
	if err != nil {
		return nil, fmt.Errorf("listing packages: %w", err)
	}

	views := make([]*types.PackageView, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, row := range rows {
		i := i
		pkg := row.(*types.Package)
		g.Go(func() error {
			v, err := r.hydrate(gctx, pkg)
			if err != nil {
				return err
			}
			views[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

func (r *Reader) hydrate(ctx context.Context, pkg *types.Package) (*types.PackageView, error) {
	view := &types.PackageView{
		Package:      pkg,
		Destinations: []*types.Destination{},
		Hotels:       []*types.Hotel{},
	}

	destinations, err := r.resolve(ctx, pkg.ID, types.RelationDestinations)
	if err != nil {
		return nil, err
	}
	for _, e := range destinations {
		view.Destinations = append(view.Destinations, e.(*types.Destination))
	}

	hotels, err := r.resolve(ctx, pkg.ID, types.RelationHotels)
	if err != nil {
		return nil, err
	}
	for _, e := range hotels {
		view.Hotels = append(view.Hotels, e.(*types.Hotel))
	}

	owner, err := r.users.FindUser(ctx, pkg.OwnerID)
	switch {
	case errors.Is(err, types.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("resolving owner of package %d: %w", pkg.ID, err)
	default:
		view.Owner = owner
	}
	return view, nil
}

// resolve loads the current targets of one link set, skipping ids that no
// longer exist.
func (r *Reader) resolve(ctx context.Context, packageID int64, rel types.Relation) ([]any, error) {
	ids, err := r.links.GetLinked(ctx, packageID, rel)
	if err != nil {
		return nil, fmt.Errorf("reading %s of package %d: %w", rel, packageID, err)
	}
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		e, err := r.store.FindByID(ctx, rel.TargetTable(), id)
		if errors.Is(err, types.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolving %s %d: %w", rel.TargetTable(), id, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// HotelsNearDestination returns the hotels sharing the location of
// destination id.
func (r *Reader) HotelsNearDestination(ctx context.Context, id int64) ([]*types.Hotel, error) {
	rows, err := r.nearDestination(ctx, id, types.TableHotels)
	if err != nil {
		return nil, err
	}
	hotels := make([]*types.Hotel, 0, len(rows))
	for _, row := range rows {
		hotels = append(hotels, row.(*types.Hotel))
	}
	return hotels, nil
}

// TransportationsNearDestination returns the transportations serving the
// location of destination id.
func (r *Reader) TransportationsNearDestination(ctx context.Context, id int64) ([]*types.Transportation, error) {
	rows, err := r.nearDestination(ctx, id, types.TableTransportations)
	if err != nil {
		return nil, err
	}
	out := make([]*types.Transportation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.(*types.Transportation))
	}
	return out, nil
}

func (r *Reader) nearDestination(ctx context.Context, id int64, table string) ([]any, error) {
	entity, err := r.store.FindByID(ctx, types.TableDestinations, id)
	if err != nil {
		return nil, err
	}
	dest := entity.(*types.Destination)
	rows, err := r.store.ListAll(ctx, table, types.Filter{"location_id": dest.LocationID})
	if err != nil {
		return nil, fmt.Errorf("listing %s near destination %d: %w", table, id, err)
	}
	return rows, nil
}
