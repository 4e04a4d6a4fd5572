package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"localizer/internal/database"
	"localizer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()

	db, err := database.New("sqlite://" + filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"db":     NewDBStore(db.DB),
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			rec, err := store.Get(context.Background(), 404)
			require.NoError(t, err)
			assert.Nil(t, rec)
		})
	}
}

func TestUpsertThenGet(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().UTC().Truncate(time.Second)

			err := store.Upsert(ctx, &models.ProcessingRecord{
				ItemID:             101,
				LastProcessedAt:    now,
				ContentFingerprint: "abc123",
				ExternalRefs:       models.ExternalRefs{IGPostID: "ig-1", FBPostID: "fb-1"},
			})
			require.NoError(t, err)

			rec, err := store.Get(ctx, 101)
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, int64(101), rec.ItemID)
			assert.Equal(t, "abc123", rec.ContentFingerprint)
			assert.Equal(t, "ig-1", rec.ExternalRefs.IGPostID)
			assert.Equal(t, "fb-1", rec.ExternalRefs.FBPostID)
			assert.True(t, rec.LastProcessedAt.Equal(now))
		})
	}
}

func TestUpsertReplacesExistingRecord(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Upsert(ctx, &models.ProcessingRecord{
				ItemID:             202,
				LastProcessedAt:    time.Now().Add(-time.Hour),
				ContentFingerprint: "old",
				ExternalRefs:       models.ExternalRefs{IGPostID: "ig-old"},
			}))
			require.NoError(t, store.Upsert(ctx, &models.ProcessingRecord{
				ItemID:             202,
				LastProcessedAt:    time.Now(),
				ContentFingerprint: "new",
			}))

			rec, err := store.Get(ctx, 202)
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, "new", rec.ContentFingerprint)
			assert.True(t, rec.ExternalRefs.Empty())

			n, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
		})
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Upsert(ctx, &models.ProcessingRecord{
				ItemID:          303,
				LastProcessedAt: time.Now(),
			}))
			require.NoError(t, store.Delete(ctx, 303))

			rec, err := store.Get(ctx, 303)
			require.NoError(t, err)
			assert.Nil(t, rec)
		})
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, store.Delete(context.Background(), 999))
		})
	}
}

func TestCount(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			n, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(0), n)

			for i := int64(1); i <= 3; i++ {
				require.NoError(t, store.Upsert(ctx, &models.ProcessingRecord{
					ItemID:          i,
					LastProcessedAt: time.Now(),
				}))
			}

			n, err = store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(3), n)
		})
	}
}
