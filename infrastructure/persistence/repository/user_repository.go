package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"learnhub-backend/application/ports"
	"learnhub-backend/domain"
	"learnhub-backend/infrastructure/persistence/abstractions"
	"learnhub-backend/infrastructure/persistence/normalize"
	apperrors "learnhub-backend/pkg/errors"
)

// UserRepository implements ports.UserRepository.
type UserRepository struct {
	store  abstractions.Store
	logger *zap.Logger
}

// NewUserRepository creates a user repository over the given store.
func NewUserRepository(store abstractions.Store, logger *zap.Logger) ports.UserRepository {
	return &UserRepository{store: store, logger: logger}
}

// Create stores a new user profile keyed by the auth UID.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (string, error) {
	if user.UID == "" {
		return "", apperrors.NewValidationError("user uid is required")
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	doc, err := toDoc(user)
	if err != nil {
		return "", apperrors.NewDatabaseError("create user", err)
	}
	if err := r.store.Set(ctx, CollectionUsers, user.UID, doc); err != nil {
		return "", err
	}

	r.logger.Info("User created", zap.String("uid", user.UID))
	return user.UID, nil
}

// GetByID returns (nil, nil) when the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, uid string) (*domain.User, error) {
	doc, err := r.store.Get(ctx, CollectionUsers, uid)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return normalize.User(doc), nil
}

// Update merges the given fields and refreshes updatedAt.
func (r *UserRepository) Update(ctx context.Context, uid string, partial abstractions.Document) error {
	partial["updatedAt"] = nowString(time.Now())
	return r.store.Update(ctx, CollectionUsers, uid, partial)
}

// Delete removes the user document. Enrollments referencing the user
// are not cascaded.
func (r *UserRepository) Delete(ctx context.Context, uid string) error {
	if err := r.store.Delete(ctx, CollectionUsers, uid); err != nil {
		return err
	}
	r.logger.Info("User deleted", zap.String("uid", uid))
	return nil
}

// StageStatsUpdate stages the aggregate-stat bump recorded alongside
// a successful enrollment. The new absolute values are computed from
// the loaded user, matching the read-then-batch model used across
// the data layer.
func (r *UserRepository) StageStatsUpdate(user *domain.User, amountSpent float64) abstractions.BatchOp {
	stats := user.Stats
	stats.EnrolledWorkshops++
	stats.TotalSpent += amountSpent

	return abstractions.BatchOp{
		Kind:       abstractions.BatchUpdate,
		Collection: CollectionUsers,
		ID:         user.UID,
		Doc: abstractions.Document{
			"stats": abstractions.Document{
				"enrolledWorkshops":  float64(stats.EnrolledWorkshops),
				"completedWorkshops": float64(stats.CompletedWorkshops),
				"totalSpent":         stats.TotalSpent,
			},
			"updatedAt": nowString(time.Now()),
		},
	}
}
