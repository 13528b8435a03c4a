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

// EnrollmentRepository implements ports.EnrollmentRepository.
type EnrollmentRepository struct {
	store  abstractions.Store
	logger *zap.Logger
}

// NewEnrollmentRepository creates an enrollment repository over the
// given store.
func NewEnrollmentRepository(store abstractions.Store, logger *zap.Logger) ports.EnrollmentRepository {
	return &EnrollmentRepository{store: store, logger: logger}
}

// NewID allocates an enrollment id for staged batch writes.
func (r *EnrollmentRepository) NewID() string {
	return newID()
}

// Create stores a new enrollment, assigning enrolledAt.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *domain.Enrollment) (string, error) {
	if enrollment.UserID == "" || enrollment.WorkshopID == "" {
		return "", apperrors.NewValidationError("enrollment requires userId and workshopId")
	}

	if enrollment.ID == "" {
		enrollment.ID = newID()
	}
	enrollment.EnrolledAt = time.Now().UTC()

	doc, err := toDoc(enrollment)
	if err != nil {
		return "", apperrors.NewDatabaseError("create enrollment", err)
	}
	if err := r.store.Set(ctx, CollectionEnrollments, enrollment.ID, doc); err != nil {
		return "", err
	}

	r.logger.Info("Enrollment created",
		zap.String("enrollmentID", enrollment.ID),
		zap.String("userID", enrollment.UserID),
		zap.String("workshopID", enrollment.WorkshopID),
	)
	return enrollment.ID, nil
}

// GetByID returns (nil, nil) when the enrollment does not exist.
func (r *EnrollmentRepository) GetByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	doc, err := r.store.Get(ctx, CollectionEnrollments, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return normalize.Enrollment(doc), nil
}

// Update merges the given fields. Enrollment lifecycle timestamps
// (completedAt, progress.lastAccessed) are managed explicitly by the
// caller, so no timestamp is refreshed here.
func (r *EnrollmentRepository) Update(ctx context.Context, id string, partial abstractions.Document) error {
	return r.store.Update(ctx, CollectionEnrollments, id, partial)
}

// Delete removes the enrollment document.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionEnrollments, id)
}

// ListByUser returns the user's enrollments sorted newest first by
// enrolledAt, regardless of the store's native ordering.
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Enrollment, error) {
	docs, err := r.store.Query(ctx, CollectionEnrollments, abstractions.QueryCriteria{
		Filters: []abstractions.Filter{{Field: "userId", Value: userID}},
	})
	if err != nil {
		return nil, err
	}

	enrollments := make([]*domain.Enrollment, 0, len(docs))
	for _, doc := range docs {
		enrollments = append(enrollments, normalize.Enrollment(doc))
	}
	sort.Slice(enrollments, func(i, j int) bool {
		return enrollments[i].EnrolledAt.After(enrollments[j].EnrolledAt)
	})
	return enrollments, nil
}

// ExistsActiveOrCompleted reports whether the user already holds an
// active or completed enrollment for the workshop. The workshop and
// status predicates run in memory over the user's enrollments so no
// userId+workshopId+status composite index is required.
func (r *EnrollmentRepository) ExistsActiveOrCompleted(ctx context.Context, userID, workshopID string) (bool, error) {
	enrollments, err := r.ListByUser(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, e := range enrollments {
		if e.WorkshopID != workshopID {
			continue
		}
		if e.Status == domain.EnrollmentStatusActive || e.Status == domain.EnrollmentStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

// StageCreate stages the enrollment write for an atomic batch. The
// document shape matches Create exactly; the caller owns id
// allocation and timestamps.
func (r *EnrollmentRepository) StageCreate(enrollment *domain.Enrollment) abstractions.BatchOp {
	doc, err := toDoc(enrollment)
	if err != nil {
		// Enrollment is a plain JSON-marshalable struct; this cannot
		// fail at runtime.
		r.logger.Error("Failed to stage enrollment", zap.Error(err))
		doc = abstractions.Document{}
	}
	return abstractions.BatchOp{
		Kind:       abstractions.BatchSet,
		Collection: CollectionEnrollments,
		ID:         enrollment.ID,
		Doc:        doc,
	}
}

// StageSnapshotStatus stages a rewrite of the enrollment's embedded
// payment snapshot with the given status, keeping the snapshot in
// step when a payment's lifecycle advances after enrollment.
func (r *EnrollmentRepository) StageSnapshotStatus(enrollment *domain.Enrollment, status domain.PaymentStatus) abstractions.BatchOp {
	snapshot := enrollment.Payment
	snapshot.Status = status
	doc, err := toDoc(snapshot)
	if err != nil {
		r.logger.Error("Failed to stage payment snapshot", zap.Error(err))
		doc = abstractions.Document{}
	}
	return abstractions.BatchOp{
		Kind:       abstractions.BatchUpdate,
		Collection: CollectionEnrollments,
		ID:         enrollment.ID,
		Doc: abstractions.Document{
			"payment": doc,
		},
	}
}
