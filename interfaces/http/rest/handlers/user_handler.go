package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"learnhub-backend/application/ports"
	"learnhub-backend/domain"
	"learnhub-backend/infrastructure/persistence/abstractions"
	"learnhub-backend/pkg/auth"
	"learnhub-backend/pkg/common"
	"learnhub-backend/pkg/utils"
	"learnhub-backend/pkg/verify"
)

// UserHandler handles profile-related HTTP requests. All routes
// operate on the authenticated caller's own profile.
type UserHandler struct {
	users   ports.UserRepository
	limiter *verify.Limiter
	logger  *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users ports.UserRepository, limiter *verify.Limiter, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:   users,
		limiter: limiter,
		logger:  logger,
	}
}

// CreateProfileRequest represents the request body for creating a profile
type CreateProfileRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName,omitempty" validate:"omitempty,max=100"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,e164"`
	PhotoURL    string `json:"photoURL,omitempty" validate:"omitempty,url"`
}

// CreateProfile handles POST /users. The document id is the caller's
// auth UID.
func (h *UserHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req CreateProfileRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	user := &domain.User{
		UID:         userCtx.UserID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		PhotoURL:    req.PhotoURL,
	}

	uid, err := h.users.Create(r.Context(), user)
	if err != nil {
		h.logger.Error("Failed to create profile",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]string{"uid": uid})
}

// GetProfile handles GET /users/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	user, err := h.users.GetByID(r.Context(), userCtx.UserID)
	if err != nil {
		h.logger.Error("Failed to get profile",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	if user == nil {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "Profile not found")
		return
	}

	common.RespondJSON(w, http.StatusOK, user)
}

// UpdateProfileRequest represents the request body for updating a profile
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName,omitempty" validate:"omitempty,max=100"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,e164"`
	PhotoURL    *string `json:"photoURL,omitempty" validate:"omitempty,url"`
}

// UpdateProfile handles PUT /users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	partial := abstractions.Document{}
	if req.DisplayName != nil {
		partial["displayName"] = *req.DisplayName
	}
	if req.Phone != nil {
		partial["phone"] = *req.Phone
	}
	if req.PhotoURL != nil {
		partial["photoURL"] = *req.PhotoURL
	}
	if len(partial) == 0 {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "No fields to update")
		return
	}

	if err := h.users.Update(r.Context(), userCtx.UserID, partial); err != nil {
		h.logger.Error("Failed to update profile",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"uid": userCtx.UserID})
}

// DeleteProfile handles DELETE /users/me. Enrollments referencing the
// user are left untouched.
func (h *UserHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	if err := h.users.Delete(r.Context(), userCtx.UserID); err != nil {
		h.logger.Error("Failed to delete profile",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RequestVerificationRequest represents a phone verification request
type RequestVerificationRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
}

// RequestPhoneVerification handles POST /users/me/verify-phone. The
// actual code delivery is owned by the auth subsystem; this endpoint
// only enforces the attempt cap.
func (h *UserHandler) RequestPhoneVerification(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req RequestVerificationRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.limiter.Allow(r.Context(), req.Phone); err != nil {
		h.logger.Warn("Phone verification attempt rejected",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusAccepted, map[string]string{"phone": req.Phone})
}
