package sqlite

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stopidhan/backend-buzjet-api/pkg/types"
)

func TestAssociationStore_ReplaceAll(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	tests := []struct {
		name string
		ids  []int64
		want []int64
	}{
		{name: "initial set", ids: []int64{3, 1, 2}, want: []int64{1, 2, 3}},
		{name: "replace shrinks", ids: []int64{2}, want: []int64{2}},
		{name: "duplicates collapse", ids: []int64{5, 5, 4}, want: []int64{4, 5}},
		{name: "empty clears", ids: []int64{}, want: []int64{}},
		{name: "nil clears", ids: nil, want: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, b.ReplaceAll(ctx, 1, types.RelationDestinations, tt.ids))
			got, err := b.GetLinked(ctx, 1, types.RelationDestinations)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssociationStore_RelationsAreIndependent(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	require.NoError(t, b.ReplaceAll(ctx, 1, types.RelationDestinations, []int64{1, 2}))
	require.NoError(t, b.ReplaceAll(ctx, 1, types.RelationHotels, []int64{7}))
	require.NoError(t, b.ReplaceAll(ctx, 2, types.RelationHotels, []int64{8}))

	require.NoError(t, b.DeleteAll(ctx, 1, types.RelationHotels))

	dests, err := b.GetLinked(ctx, 1, types.RelationDestinations)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, dests)

	hotels, err := b.GetLinked(ctx, 1, types.RelationHotels)
	require.NoError(t, err)
	assert.Empty(t, hotels)

	other, err := b.GetLinked(ctx, 2, types.RelationHotels)
	require.NoError(t, err)
	assert.Equal(t, []int64{8}, other)
}

func TestAssociationStore_UnknownPackage(t *testing.T) {
	b := setupBackend(t)
	got, err := b.GetLinked(context.Background(), 404, types.RelationHotels)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.NoError(t, b.DeleteAll(context.Background(), 404, types.RelationHotels))
}

func TestAssociationStore_InvalidArguments(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	assert.ErrorIs(t, b.ReplaceAll(ctx, 1, types.Relation("transportations"), []int64{1}), types.ErrInvalidRelation)
	assert.ErrorIs(t, b.ReplaceAll(ctx, 0, types.RelationHotels, []int64{1}), types.ErrInvalidID)
	_, err := b.GetLinked(ctx, 1, types.Relation("users"))
	assert.ErrorIs(t, err, types.ErrInvalidRelation)
	assert.ErrorIs(t, b.DeleteAll(ctx, 1, types.Relation("")), types.ErrInvalidRelation)
}

func TestAssociationStore_ListLinks(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	require.NoError(t, b.ReplaceAll(ctx, 9, types.RelationHotels, []int64{4, 2}))
	links, err := b.ListLinks(ctx, 9, types.RelationHotels)
	require.NoError(t, err)
	require.Len(t, links, 2)

	assert.Equal(t, int64(2), links[0].TargetID)
	assert.Equal(t, int64(4), links[1].TargetID)
	for _, l := range links {
		assert.Equal(t, int64(9), l.PackageID)
		id, err := uuid.Parse(l.LinkID)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), id.Version())
		assert.False(t, l.CreatedAt.IsZero())
	}
	assert.NotEqual(t, links[0].LinkID, links[1].LinkID)
}

// Concurrent replacements must never interleave: every reader sees exactly
// one of the written sets, or nothing before the first write commits.
func TestAssociationStore_ReplaceAllIsAtomic(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	sets := [][]int64{{1, 2, 3}, {4, 5}, {6}}
	var writers, readers sync.WaitGroup
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				got, err := b.GetLinked(ctx, 1, types.RelationDestinations)
				if !assert.NoError(t, err) {
					return
				}
				if len(got) > 0 {
					assert.Contains(t, sets, got)
				}
			}
		}()
	}
	for i := 0; i < 30; i++ {
		writers.Add(1)
		go func(set []int64) {
			defer writers.Done()
			assert.NoError(t, b.ReplaceAll(ctx, 1, types.RelationDestinations, set))
		}(sets[i%len(sets)])
	}
	writers.Wait()
	close(done)
	readers.Wait()

	got, err := b.GetLinked(ctx, 1, types.RelationDestinations)
	require.NoError(t, err)
	assert.Contains(t, sets, got)
}
