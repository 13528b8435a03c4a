package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub-backend/infrastructure/persistence/abstractions"
	apperrors "learnhub-backend/pkg/errors"
)

func TestStoreGetAbsent(t *testing.T) {
	store := NewStore()

	doc, err := store.Get(context.Background(), "workshops", "missing")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestStoreSetAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.Set(ctx, "workshops", "w1", abstractions.Document{
		"id":    "w1",
		"slug":  "go-basics",
		"price": 499.0,
	})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "workshops", "w1")
	require.NoError(t, err)
	assert.Equal(t, "go-basics", doc["slug"])
	assert.Equal(t, 499.0, doc["price"])
}

func TestStoreReturnsCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "workshops", "w1", abstractions.Document{"slug": "original"}))

	doc, err := store.Get(ctx, "workshops", "w1")
	require.NoError(t, err)
	doc["slug"] = "mutated"

	again, err := store.Get(ctx, "workshops", "w1")
	require.NoError(t, err)
	assert.Equal(t, "original", again["slug"])
}

func TestStoreQueryEqualityFilters(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "enrollments", "e1", abstractions.Document{"userId": "u1", "status": "active"}))
	require.NoError(t, store.Set(ctx, "enrollments", "e2", abstractions.Document{"userId": "u1", "status": "cancelled"}))
	require.NoError(t, store.Set(ctx, "enrollments", "e3", abstractions.Document{"userId": "u2", "status": "active"}))

	docs, err := store.Query(ctx, "enrollments", abstractions.QueryCriteria{
		Filters: []abstractions.Filter{
			{Field: "userId", Value: "u1"},
			{Field: "status", Value: "active"},
		},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "active", docs[0]["status"])
}

func TestStoreUpdateAbsentIsNotFound(t *testing.T) {
	store := NewStore()

	err := store.Update(context.Background(), "payments", "missing", abstractions.Document{"status": "completed"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestStoreUpdateMergesFields(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "payments", "p1", abstractions.Document{
		"status": "pending",
		"amount": 999.0,
	}))
	require.NoError(t, store.Update(ctx, "payments", "p1", abstractions.Document{
		"status": "completed",
	}))

	doc, err := store.Get(ctx, "payments", "p1")
	require.NoError(t, err)
	assert.Equal(t, "completed", doc["status"])
	assert.Equal(t, 999.0, doc["amount"])
}

func TestStoreDeleteAbsentIsNotFound(t *testing.T) {
	store := NewStore()

	err := store.Delete(context.Background(), "modules", "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAtomicBatchAppliesAllOps(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	ops := []abstractions.BatchOp{
		{Kind: abstractions.BatchSet, Collection: "payments", ID: "p1", Doc: abstractions.Document{"status": "completed"}},
		{Kind: abstractions.BatchSet, Collection: "enrollments", ID: "e1", Doc: abstractions.Document{"status": "active"}},
		{Kind: abstractions.BatchUpdate, Collection: "payments", ID: "p1", Doc: abstractions.Document{"enrollmentId": "e1"}},
	}
	require.NoError(t, store.AtomicBatch(ctx, ops))

	payment, err := store.Get(ctx, "payments", "p1")
	require.NoError(t, err)
	assert.Equal(t, "e1", payment["enrollmentId"])

	enrollment, err := store.Get(ctx, "enrollments", "e1")
	require.NoError(t, err)
	assert.Equal(t, "active", enrollment["status"])
}

func TestAtomicBatchRejectsUpdateOfAbsentDoc(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	ops := []abstractions.BatchOp{
		{Kind: abstractions.BatchSet, Collection: "enrollments", ID: "e1", Doc: abstractions.Document{"status": "active"}},
		{Kind: abstractions.BatchUpdate, Collection: "users", ID: "missing", Doc: abstractions.Document{"stats": "x"}},
	}
	err := store.AtomicBatch(ctx, ops)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	// Nothing from the batch may be visible.
	doc, err := store.Get(ctx, "enrollments", "e1")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestFailNextBatchIsOneShot(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	store.FailNextBatch()

	ops := []abstractions.BatchOp{
		{Kind: abstractions.BatchSet, Collection: "enrollments", ID: "e1", Doc: abstractions.Document{"status": "active"}},
	}
	err := store.AtomicBatch(ctx, ops)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))

	doc, err := store.Get(ctx, "enrollments", "e1")
	require.NoError(t, err)
	assert.Nil(t, doc)

	// The failure is armed once; the retry succeeds.
	require.NoError(t, store.AtomicBatch(ctx, ops))
}

func TestFailNextQueryIsOneShot(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "workshops", "w1", abstractions.Document{"id": "w1"}))

	store.FailNextQuery()
	_, err := store.Query(ctx, "workshops", abstractions.QueryCriteria{})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))

	docs, err := store.Query(ctx, "workshops", abstractions.QueryCriteria{})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestStoreQueryLimitCountsMatchesOnly(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "payments", "p1", abstractions.Document{"id": "p1", "userId": "u1"}))
	require.NoError(t, store.Set(ctx, "payments", "p2", abstractions.Document{"id": "p2", "userId": "u2"}))
	require.NoError(t, store.Set(ctx, "payments", "p3", abstractions.Document{"id": "p3", "userId": "u1"}))

	docs, err := store.Query(ctx, "payments", abstractions.QueryCriteria{
		Filters: []abstractions.Filter{{Field: "userId", Value: "u1"}},
		Limit:   1,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "u1", docs[0]["userId"])
}
