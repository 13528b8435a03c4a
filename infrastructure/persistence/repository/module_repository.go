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

// ModuleRepository implements ports.ModuleRepository for the
// standalone per-module admin path.
type ModuleRepository struct {
	store  abstractions.Store
	logger *zap.Logger
}

// NewModuleRepository creates a module repository over the given
// store.
func NewModuleRepository(store abstractions.Store, logger *zap.Logger) ports.ModuleRepository {
	return &ModuleRepository{store: store, logger: logger}
}

// Create stores a new module document.
func (r *ModuleRepository) Create(ctx context.Context, module *domain.Module) (string, error) {
	if module.WorkshopID == "" {
		return "", apperrors.NewValidationError("module requires workshopId")
	}

	if module.ID == "" {
		module.ID = newID()
	}
	now := time.Now().UTC()
	module.CreatedAt = now
	module.UpdatedAt = now

	doc, err := toDoc(module)
	if err != nil {
		return "", apperrors.NewDatabaseError("create module", err)
	}
	if err := r.store.Set(ctx, CollectionModules, module.ID, doc); err != nil {
		return "", err
	}

	r.logger.Info("Module created",
		zap.String("moduleID", module.ID),
		zap.String("workshopID", module.WorkshopID),
	)
	return module.ID, nil
}

// GetByID returns (nil, nil) when the module does not exist.
func (r *ModuleRepository) GetByID(ctx context.Context, id string) (*domain.Module, error) {
	doc, err := r.store.Get(ctx, CollectionModules, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return normalize.Module(doc), nil
}

// Update merges the given fields and refreshes updatedAt.
func (r *ModuleRepository) Update(ctx context.Context, id string, partial abstractions.Document) error {
	partial["updatedAt"] = nowString(time.Now())
	return r.store.Update(ctx, CollectionModules, id, partial)
}

// Delete removes the module document.
func (r *ModuleRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionModules, id)
}

// ListByWorkshop returns a workshop's modules sorted by their
// curriculum order index.
func (r *ModuleRepository) ListByWorkshop(ctx context.Context, workshopID string) ([]*domain.Module, error) {
	docs, err := r.store.Query(ctx, CollectionModules, abstractions.QueryCriteria{
		Filters: []abstractions.Filter{{Field: "workshopId", Value: workshopID}},
	})
	if err != nil {
		return nil, err
	}

	modules := make([]*domain.Module, 0, len(docs))
	for _, doc := range docs {
		modules = append(modules, normalize.Module(doc))
	}
	sort.Slice(modules, func(i, j int) bool {
		return modules[i].Order < modules[j].Order
	})
	return modules, nil
}
