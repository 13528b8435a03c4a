package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"learnhub-backend/domain"
	"learnhub-backend/infrastructure/persistence/memory"
	apperrors "learnhub-backend/pkg/errors"
)

func newTestWorkshop(slug string, status domain.WorkshopStatus, price float64) *domain.Workshop {
	return &domain.Workshop{
		Slug:     slug,
		Title:    "Workshop " + slug,
		Price:    price,
		Currency: "INR",
		Level:    domain.LevelBeginner,
		Status:   status,
	}
}

func TestWorkshopCreateAndGet(t *testing.T) {
	repo := NewWorkshopRepository(memory.NewStore(), zap.NewNop())
	ctx := context.Background()

	id, err := repo.Create(ctx, newTestWorkshop("go-basics", domain.WorkshopStatusActive, 499))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	w, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, "go-basics", w.Slug)
	assert.False(t, w.CreatedAt.IsZero())
}

func TestWorkshopGetAbsent(t *testing.T) {
	repo := NewWorkshopRepository(memory.NewStore(), zap.NewNop())

	w, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestWorkshopSlugUniqueAmongActive(t *testing.T) {
	repo := NewWorkshopRepository(memory.NewStore(), zap.NewNop())
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestWorkshop("go-basics", domain.WorkshopStatusActive, 499))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newTestWorkshop("go-basics", domain.WorkshopStatusActive, 999))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestWorkshopSlugReusableByDraft(t *testing.T) {
	repo := NewWorkshopRepository(memory.NewStore(), zap.NewNop())
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestWorkshop("go-basics", domain.WorkshopStatusActive, 499))
	require.NoError(t, err)

	// A draft with the same slug is allowed; only active workshops
	// contend for the slug.
	_, err = repo.Create(ctx, newTestWorkshop("go-basics", domain.WorkshopStatusDraft, 499))
	require.NoError(t, err)
}

func TestWorkshopGetBySlugSkipsNonActive(t *testing.T) {
	repo := NewWorkshopRepository(memory.NewStore(), zap.NewNop())
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestWorkshop("drafted", domain.WorkshopStatusDraft, 0))
	require.NoError(t, err)

	w, err := repo.GetBySlug(ctx, "drafted")
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestWorkshopListNewestFirst(t *testing.T) {
	store := memory.NewStore()
	repo := NewWorkshopRepository(store, zap.NewNop())
	ctx := context.Background()

	first := newTestWorkshop("first", domain.WorkshopStatusActive, 0)
	_, err := repo.Create(ctx, first)
	require.NoError(t, err)

	// Creation timestamps need to differ for the ordering to be
	// observable.
	time.Sleep(2 * time.Millisecond)

	second := newTestWorkshop("second", domain.WorkshopStatusActive, 0)
	_, err = repo.Create(ctx, second)
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Slug)
	assert.Equal(t, "first", list[1].Slug)
}

func TestWorkshopListExcludesOtherStatuses(t *testing.T) {
	repo := NewWorkshopRepository(memory.NewStore(), zap.NewNop())
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestWorkshop("live", domain.WorkshopStatusActive, 0))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestWorkshop("wip", domain.WorkshopStatusDraft, 0))
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "live", list[0].Slug)
}

func TestWorkshopUpdateRefreshesUpdatedAt(t *testing.T) {
	repo := NewWorkshopRepository(memory.NewStore(), zap.NewNop())
	ctx := context.Background()

	w := newTestWorkshop("go-basics", domain.WorkshopStatusActive, 499)
	id, err := repo.Create(ctx, w)
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	require.NoError(t, repo.Update(ctx, id, map[string]interface{}{"price": 999.0}))

	updated, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 999.0, updated.Price)
	assert.True(t, updated.UpdatedAt.After(w.UpdatedAt))
}

func TestWorkshopUpdateAbsentIsNotFound(t *testing.T) {
	repo := NewWorkshopRepository(memory.NewStore(), zap.NewNop())

	err := repo.Update(context.Background(), "missing", map[string]interface{}{"price": 1.0})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
