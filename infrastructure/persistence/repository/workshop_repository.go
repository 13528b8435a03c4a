package repository

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"learnhub-backend/application/ports"
	"learnhub-backend/domain"
	"learnhub-backend/infrastructure/persistence/abstractions"
	"learnhub-backend/infrastructure/persistence/normalize"
	apperrors "learnhub-backend/pkg/errors"
)

// WorkshopRepository implements ports.WorkshopRepository.
type WorkshopRepository struct {
	store  abstractions.Store
	logger *zap.Logger
}

// NewWorkshopRepository creates a workshop repository over the given
// store.
func NewWorkshopRepository(store abstractions.Store, logger *zap.Logger) ports.WorkshopRepository {
	return &WorkshopRepository{store: store, logger: logger}
}

// Create stores a new workshop. Slug uniqueness is enforced among
// active workshops via a pre-check; like the enrollment existence
// check, it is not race-free across concurrent writers.
func (r *WorkshopRepository) Create(ctx context.Context, workshop *domain.Workshop) (string, error) {
	if workshop.Slug == "" {
		return "", apperrors.NewValidationError("workshop slug is required")
	}
	if workshop.Status == domain.WorkshopStatusActive {
		existing, err := r.GetBySlug(ctx, workshop.Slug)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return "", apperrors.NewConflictError("workshop slug already in use: " + workshop.Slug).
				WithCode(apperrors.CodeDuplicateSlug)
		}
	}

	if workshop.ID == "" {
		workshop.ID = newID()
	}
	now := time.Now().UTC()
	workshop.CreatedAt = now
	workshop.UpdatedAt = now

	doc, err := toDoc(workshop)
	if err != nil {
		return "", apperrors.NewDatabaseError("create workshop", err)
	}
	if err := r.store.Set(ctx, CollectionWorkshops, workshop.ID, doc); err != nil {
		return "", err
	}

	r.logger.Info("Workshop created",
		zap.String("workshopID", workshop.ID),
		zap.String("slug", workshop.Slug),
	)
	return workshop.ID, nil
}

// GetByID returns (nil, nil) when the workshop does not exist.
func (r *WorkshopRepository) GetByID(ctx context.Context, id string) (*domain.Workshop, error) {
	doc, err := r.store.Get(ctx, CollectionWorkshops, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return normalize.Workshop(doc), nil
}

// GetBySlug returns the active workshop with the given slug, or
// (nil, nil). Drafts and archived workshops with a matching slug are
// not returned. The status filter runs in memory so no slug+status
// composite index is needed.
func (r *WorkshopRepository) GetBySlug(ctx context.Context, slug string) (*domain.Workshop, error) {
	docs, err := r.store.Query(ctx, CollectionWorkshops, abstractions.QueryCriteria{
		Filters: []abstractions.Filter{{Field: "slug", Value: slug}},
	})
	if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		w := normalize.Workshop(doc)
		if w.Status == domain.WorkshopStatusActive {
			return w, nil
		}
	}
	return nil, nil
}

// List returns active workshops, newest first.
func (r *WorkshopRepository) List(ctx context.Context) ([]*domain.Workshop, error) {
	return r.ListByStatus(ctx, domain.WorkshopStatusActive)
}

// ListByStatus returns workshops in the given lifecycle state, newest
// first.
func (r *WorkshopRepository) ListByStatus(ctx context.Context, status domain.WorkshopStatus) ([]*domain.Workshop, error) {
	docs, err := r.store.Query(ctx, CollectionWorkshops, abstractions.QueryCriteria{
		Filters: []abstractions.Filter{{Field: "status", Value: string(status)}},
	})
	if err != nil {
		return nil, err
	}

	workshops := make([]*domain.Workshop, 0, len(docs))
	for _, doc := range docs {
		workshops = append(workshops, normalize.Workshop(doc))
	}
	sort.Slice(workshops, func(i, j int) bool {
		return workshops[i].CreatedAt.After(workshops[j].CreatedAt)
	})
	return workshops, nil
}

// Update merges the given fields and refreshes updatedAt.
func (r *WorkshopRepository) Update(ctx context.Context, id string, partial abstractions.Document) error {
	partial["updatedAt"] = nowString(time.Now())
	return r.store.Update(ctx, CollectionWorkshops, id, partial)
}

// Delete removes the workshop document.
func (r *WorkshopRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, CollectionWorkshops, id); err != nil {
		return err
	}
	r.logger.Info("Workshop deleted", zap.String("workshopID", id))
	return nil
}
