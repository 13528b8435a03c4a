package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"learnhub-backend/application/ports"
	"learnhub-backend/application/services"
	"learnhub-backend/domain"
	"learnhub-backend/infrastructure/persistence/abstractions"
	"learnhub-backend/pkg/auth"
	"learnhub-backend/pkg/common"
	"learnhub-backend/pkg/utils"
)

// EnrollmentHandler handles enrollment-related HTTP requests
type EnrollmentHandler struct {
	enrollments ports.EnrollmentRepository
	enroller    *services.EnrollmentService
	subs        *services.SubscriptionService
	logger      *zap.Logger
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(
	enrollments ports.EnrollmentRepository,
	enroller *services.EnrollmentService,
	subs *services.SubscriptionService,
	logger *zap.Logger,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollments: enrollments,
		enroller:    enroller,
		subs:        subs,
		logger:      logger,
	}
}

// EnrollRequest represents the request body for enrolling in a workshop
type EnrollRequest struct {
	WorkshopID string        `json:"workshopId" validate:"required"`
	Payment    *PaymentBlock `json:"payment,omitempty"`
}

// PaymentBlock carries payment details for paid workshops
type PaymentBlock struct {
	Amount     *float64 `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Currency   string   `json:"currency,omitempty" validate:"omitempty,len=3"`
	Status     string   `json:"status,omitempty" validate:"omitempty,oneof=pending completed failed refunded"`
	Method     string   `json:"method,omitempty"`
	GatewayRef string   `json:"gatewayRef,omitempty"`
}

// Enroll handles POST /enrollments
func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req EnrollRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	// The orchestrator itself does not enforce uniqueness, so the
	// duplicate check lives here.
	exists, err := h.enrollments.ExistsActiveOrCompleted(r.Context(), userCtx.UserID, req.WorkshopID)
	if err != nil {
		h.logger.Error("Failed to check existing enrollment",
			zap.String("userID", userCtx.UserID),
			zap.String("workshopID", req.WorkshopID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	if exists {
		common.RespondError(w, http.StatusConflict, "ALREADY_ENROLLED", "User is already enrolled in this workshop")
		return
	}

	var input *services.PaymentInput
	if req.Payment != nil {
		input = &services.PaymentInput{
			Amount:     req.Payment.Amount,
			Currency:   req.Payment.Currency,
			Status:     domain.PaymentStatus(req.Payment.Status),
			Method:     req.Payment.Method,
			GatewayRef: req.Payment.GatewayRef,
		}
	}

	result, err := h.enroller.EnrollUserInWorkshop(r.Context(), userCtx.UserID, req.WorkshopID, input)
	if err != nil {
		h.logger.Error("Failed to enroll user",
			zap.String("userID", userCtx.UserID),
			zap.String("workshopID", req.WorkshopID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, result)
}

// ListMyEnrollments handles GET /enrollments
func (h *EnrollmentHandler) ListMyEnrollments(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	list, err := h.enrollments.ListByUser(r.Context(), userCtx.UserID)
	if err != nil {
		h.logger.Error("Failed to list enrollments",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, list)
}

// GetEnrollment handles GET /enrollments/{enrollmentID}
func (h *EnrollmentHandler) GetEnrollment(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	enrollmentID := chi.URLParam(r, "enrollmentID")

	enrollment, err := h.enrollments.GetByID(r.Context(), enrollmentID)
	if err != nil {
		h.logger.Error("Failed to get enrollment",
			zap.String("enrollmentID", enrollmentID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	if enrollment == nil || (enrollment.UserID != userCtx.UserID && !userCtx.HasRole("admin")) {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "Enrollment not found")
		return
	}

	common.RespondJSON(w, http.StatusOK, enrollment)
}

// UpdateProgressRequest represents the request body for progress updates
type UpdateProgressRequest struct {
	CurrentModule      *int     `json:"currentModule,omitempty" validate:"omitempty,gte=0"`
	CompletedModules   *[]int   `json:"completedModules,omitempty"`
	PercentageComplete *float64 `json:"percentageComplete,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// UpdateProgress handles PUT /enrollments/{enrollmentID}/progress.
// Reaching 100 percent flips the enrollment to completed and stamps
// completedAt.
func (h *EnrollmentHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	enrollmentID := chi.URLParam(r, "enrollmentID")

	var req UpdateProgressRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	enrollment, err := h.enrollments.GetByID(r.Context(), enrollmentID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if enrollment == nil || enrollment.UserID != userCtx.UserID {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "Enrollment not found")
		return
	}

	now := time.Now().UTC()
	progress := enrollment.Progress
	if req.CurrentModule != nil {
		progress.CurrentModule = *req.CurrentModule
	}
	if req.CompletedModules != nil {
		progress.CompletedModules = *req.CompletedModules
	}
	if req.PercentageComplete != nil {
		progress.PercentageComplete = *req.PercentageComplete
	}
	progress.LastAccessed = now

	partial := abstractions.Document{
		"progress": abstractions.Document{
			"currentModule":      progress.CurrentModule,
			"completedModules":   progress.CompletedModules,
			"percentageComplete": progress.PercentageComplete,
			"lastAccessed":       progress.LastAccessed.Format(time.RFC3339Nano),
		},
	}
	if progress.PercentageComplete >= 100 && enrollment.Status == domain.EnrollmentStatusActive {
		partial["status"] = string(domain.EnrollmentStatusCompleted)
		partial["completedAt"] = now.Format(time.RFC3339Nano)
	}

	if err := h.enrollments.Update(r.Context(), enrollmentID, partial); err != nil {
		h.logger.Error("Failed to update progress",
			zap.String("enrollmentID", enrollmentID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"id": enrollmentID})
}

// CancelEnrollment handles POST /enrollments/{enrollmentID}/cancel
func (h *EnrollmentHandler) CancelEnrollment(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	enrollmentID := chi.URLParam(r, "enrollmentID")

	enrollment, err := h.enrollments.GetByID(r.Context(), enrollmentID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if enrollment == nil || (enrollment.UserID != userCtx.UserID && !userCtx.HasRole("admin")) {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "Enrollment not found")
		return
	}
	if enrollment.Status != domain.EnrollmentStatusActive {
		common.RespondError(w, http.StatusConflict, "NOT_ACTIVE", "Only active enrollments can be cancelled")
		return
	}

	partial := abstractions.Document{
		"status": string(domain.EnrollmentStatusCancelled),
	}
	if err := h.enrollments.Update(r.Context(), enrollmentID, partial); err != nil {
		h.logger.Error("Failed to cancel enrollment",
			zap.String("enrollmentID", enrollmentID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"id": enrollmentID})
}

// StreamMyEnrollments handles GET /enrollments/stream. It holds the
// connection open and pushes the caller's full enrollment list as a
// server-sent event whenever the subscription polls, until the client
// disconnects.
func (h *EnrollmentHandler) StreamMyEnrollments(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		common.RespondError(w, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()

	// The watcher goroutine is the sole writer after this point; the
	// handler goroutine only waits for disconnect.
	unsub := h.subs.SubscribeToUserEnrollments(ctx, userCtx.UserID, func(list []*domain.Enrollment) {
		payload, err := json.Marshal(list)
		if err != nil {
			h.logger.Error("Failed to marshal enrollment event", zap.Error(err))
			return
		}
		fmt.Fprintf(w, "event: enrollments\ndata: %s\n\n", payload)
		flusher.Flush()
	})

	<-ctx.Done()
	unsub()
}
