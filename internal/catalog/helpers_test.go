package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stopidhan/backend-buzjet-api/internal/sqlite"
	"github.com/stopidhan/backend-buzjet-api/pkg/types"
)

var errStorage = errors.New("storage unavailable")

// fixture is a seeded catalog with the ids of the records tests refer to.
type fixture struct {
	backend *sqlite.Backend

	admin, customer int64

	bali, jakarta int64

	kuta, uluwatu, monas int64

	grandBali, baliBeach, jakartaCity int64
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	b := sqlite.NewBackend(nil)
	require.NoError(t, b.Attach(ctx, types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })

	_, err := b.Seed(ctx)
	require.NoError(t, err)

	f := &fixture{backend: b}
	f.admin = findID(t, b, types.TableUsers, "role", types.RoleAdmin)
	f.customer = findID(t, b, types.TableUsers, "role", types.RoleCustomer)
	f.bali = findID(t, b, types.TableLocations, "city", "Bali")
	f.jakarta = findID(t, b, types.TableLocations, "city", "Jakarta")
	f.kuta = findByName(t, b, types.TableDestinations, "Kuta Beach")
	f.uluwatu = findByName(t, b, types.TableDestinations, "Uluwatu Temple")
	f.monas = findByName(t, b, types.TableDestinations, "Monas")
	f.grandBali = findByName(t, b, types.TableHotels, "Grand Bali Hotel")
	f.baliBeach = findByName(t, b, types.TableHotels, "Bali Beach Resort")
	f.jakartaCity = findByName(t, b, types.TableHotels, "Jakarta City Hotel")
	return f
}

// findID returns the id of the single row of table whose key equals value.
func findID(t *testing.T, b *sqlite.Backend, table, key string, value any) int64 {
	t.Helper()
	rows, err := b.ListAll(context.Background(), table, types.Filter{key: value})
	require.NoError(t, err)
	require.Len(t, rows, 1, "%s where %s = %v", table, key, value)
	return rows[0].(types.Entity).EntityID()
}

func findByName(t *testing.T, b *sqlite.Backend, table, name string) int64 {
	t.Helper()
	rows, err := b.ListAll(context.Background(), table, nil)
	require.NoError(t, err)
	for _, r := range rows {
		switch e := r.(type) {
		case *types.Destination:
			if e.Name == name {
				return e.ID
			}
		case *types.Hotel:
			if e.Name == name {
				return e.ID
			}
		}
	}
	t.Fatalf("%s %q not seeded", table, name)
	return 0
}

// baliExplorer is a complete create payload.
func (f *fixture) baliExplorer() map[string]any {
	return map[string]any{
		"name":            "Bali Explorer",
		"description":     "Five days across the island.",
		"price":           1500000,
		"duration_days":   5,
		"nights":          4,
		"capacity":        20,
		"owner_id":        f.admin,
		"destination_ids": []any{f.kuta, f.uluwatu},
		"hotel_ids":       []any{f.grandBali},
	}
}

func (f *fixture) service(t *testing.T) *Service {
	t.Helper()
	svc, err := New(f.backend, nil)
	require.NoError(t, err)
	return svc
}

func (f *fixture) gate(t *testing.T) *Gate {
	t.Helper()
	g, err := NewGate(f.backend, f.backend)
	require.NoError(t, err)
	return g
}

func (f *fixture) composer(t *testing.T, links types.AssociationStore) *Composer {
	t.Helper()
	if links == nil {
		links = f.backend
	}
	c, err := NewComposer(f.backend, links, nil)
	require.NoError(t, err)
	return c
}

func (f *fixture) reader(t *testing.T) *Reader {
	t.Helper()
	r, err := NewReader(f.backend, f.backend, f.backend)
	require.NoError(t, err)
	return r
}

// createBaliExplorer creates the standard package through gate and composer.
func (f *fixture) createBaliExplorer(t *testing.T) *types.Package {
	t.Helper()
	ctx := context.Background()
	in, err := f.gate(t).Validate(ctx, OpCreate, f.baliExplorer())
	require.NoError(t, err)
	pkg, err := f.composer(t, nil).Create(ctx, in)
	require.NoError(t, err)
	return pkg
}

// flakyLinks fails selected association writes.
type flakyLinks struct {
	types.AssociationStore
	failReplace types.Relation
	failDelete  types.Relation
}

func (l *flakyLinks) ReplaceAll(ctx context.Context, packageID int64, rel types.Relation, ids []int64) error {
	if rel == l.failReplace {
		return errStorage
	}
	return l.AssociationStore.ReplaceAll(ctx, packageID, rel, ids)
}

func (l *flakyLinks) DeleteAll(ctx context.Context, packageID int64, rel types.Relation) error {
	if rel == l.failDelete {
		return errStorage
	}
	return l.AssociationStore.DeleteAll(ctx, packageID, rel)
}

// gatedLinks parks the first write of one relation until release is closed.
// The package id of the parked write is sent on entered.
type gatedLinks struct {
	types.AssociationStore
	rel     types.Relation
	entered chan int64
	release chan struct{}
	once    sync.Once
}

func newGatedLinks(store types.AssociationStore, rel types.Relation) *gatedLinks {
	return &gatedLinks{
		AssociationStore: store,
		rel:              rel,
		entered:          make(chan int64, 1),
		release:          make(chan struct{}),
	}
}

func (l *gatedLinks) ReplaceAll(ctx context.Context, packageID int64, rel types.Relation, ids []int64) error {
	if rel == l.rel {
		l.once.Do(func() {
			l.entered <- packageID
			<-l.release
		})
	}
	return l.AssociationStore.ReplaceAll(ctx, packageID, rel, ids)
}

// brokenStore fails every existence check.
type brokenStore struct {
	types.EntityStore
}

func (brokenStore) ExistsByID(context.Context, string, int64) (bool, error) {
	return false, errStorage
}

// noUsers resolves no user at all.
type noUsers struct{}

func (noUsers) FindUser(_ context.Context, id int64) (*types.User, error) {
	return nil, &types.NotFoundError{Kind: types.TableUsers, ID: id}
}

func ptr[T any](v T) *T { return &v }
