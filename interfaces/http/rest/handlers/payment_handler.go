package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"learnhub-backend/application/ports"
	"learnhub-backend/domain"
	"learnhub-backend/infrastructure/persistence/abstractions"
	"learnhub-backend/pkg/auth"
	"learnhub-backend/pkg/common"
	"learnhub-backend/pkg/utils"
)

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	payments    ports.PaymentRepository
	enrollments ports.EnrollmentRepository
	store       abstractions.Store
	logger      *zap.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(
	payments ports.PaymentRepository,
	enrollments ports.EnrollmentRepository,
	store abstractions.Store,
	logger *zap.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		payments:    payments,
		enrollments: enrollments,
		store:       store,
		logger:      logger,
	}
}

// ListMyPayments handles GET /payments
func (h *PaymentHandler) ListMyPayments(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	list, err := h.payments.ListByUser(r.Context(), userCtx.UserID)
	if err != nil {
		h.logger.Error("Failed to list payments",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, list)
}

// ListAllPayments handles GET /payments/all (admin)
func (h *PaymentHandler) ListAllPayments(w http.ResponseWriter, r *http.Request) {
	list, err := h.payments.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list all payments", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	params := common.ExtractPaginationParams(r)
	start, end := params.Bounds(len(list))

	common.RespondWithMeta(w, http.StatusOK, list[start:end], &common.MetaInfo{
		Pagination: common.BuildPaginationMeta(params.Page, params.PageSize, len(list)),
	})
}

// GetPayment handles GET /payments/{paymentID}
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	paymentID := chi.URLParam(r, "paymentID")

	payment, err := h.payments.GetByID(r.Context(), paymentID)
	if err != nil {
		h.logger.Error("Failed to get payment",
			zap.String("paymentID", paymentID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	if payment == nil || (payment.UserID != userCtx.UserID && !userCtx.HasRole("admin")) {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "Payment not found")
		return
	}

	common.RespondJSON(w, http.StatusOK, payment)
}

// ConfirmPaymentRequest represents the gateway confirmation body
type ConfirmPaymentRequest struct {
	Status     string `json:"status" validate:"required,oneof=completed failed refunded"`
	GatewayRef string `json:"gatewayRef,omitempty"`
}

// ConfirmPayment handles POST /payments/{paymentID}/confirm (admin).
// It records the gateway outcome on a pending payment and rewrites
// the linked enrollment's embedded payment snapshot in the same
// atomic batch, so the two documents never disagree on status.
func (h *PaymentHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")

	var req ConfirmPaymentRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	payment, err := h.payments.GetByID(r.Context(), paymentID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if payment == nil {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "Payment not found")
		return
	}
	if payment.Status != domain.PaymentStatusPending {
		common.RespondError(w, http.StatusConflict, "NOT_PENDING", "Payment is not pending")
		return
	}

	status := domain.PaymentStatus(req.Status)
	now := time.Now().UTC()
	var paidAt *time.Time
	if status == domain.PaymentStatusCompleted {
		paidAt = &now
	}

	ops := []abstractions.BatchOp{
		h.payments.StageConfirm(paymentID, status, req.GatewayRef, paidAt, now),
	}

	if payment.EnrollmentID != "" {
		enrollment, err := h.enrollments.GetByID(r.Context(), payment.EnrollmentID)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		if enrollment != nil {
			ops = append(ops, h.enrollments.StageSnapshotStatus(enrollment, status))
		}
	}

	if err := h.store.AtomicBatch(r.Context(), ops); err != nil {
		h.logger.Error("Failed to confirm payment",
			zap.String("paymentID", paymentID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"id": paymentID})
}
