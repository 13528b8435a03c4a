package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"learnhub-backend/application/ports"
	"learnhub-backend/domain"
	"learnhub-backend/infrastructure/persistence/abstractions"
	"learnhub-backend/pkg/common"
	"learnhub-backend/pkg/utils"
)

// ModuleHandler handles the admin-managed standalone module documents
type ModuleHandler struct {
	modules ports.ModuleRepository
	logger  *zap.Logger
}

// NewModuleHandler creates a new module handler
func NewModuleHandler(modules ports.ModuleRepository, logger *zap.Logger) *ModuleHandler {
	return &ModuleHandler{
		modules: modules,
		logger:  logger,
	}
}

// CreateModuleRequest represents the request body for creating a module
type CreateModuleRequest struct {
	WorkshopID  string          `json:"workshopId" validate:"required"`
	Title       string          `json:"title" validate:"required,min=1,max=200"`
	Description string          `json:"description,omitempty"`
	Order       int             `json:"order" validate:"gte=0"`
	Lessons     []domain.Lesson `json:"lessons,omitempty"`
	Status      string          `json:"status,omitempty" validate:"omitempty,oneof=active draft"`
}

// CreateModule handles POST /modules
func (h *ModuleHandler) CreateModule(w http.ResponseWriter, r *http.Request) {
	var req CreateModuleRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	module := &domain.Module{
		WorkshopID:  req.WorkshopID,
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
		Lessons:     req.Lessons,
		Status:      domain.ModuleStatus(req.Status),
	}
	if module.Status == "" {
		module.Status = domain.ModuleStatusDraft
	}

	id, err := h.modules.Create(r.Context(), module)
	if err != nil {
		h.logger.Error("Failed to create module",
			zap.String("workshopID", req.WorkshopID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// GetModule handles GET /modules/{moduleID}
func (h *ModuleHandler) GetModule(w http.ResponseWriter, r *http.Request) {
	moduleID := chi.URLParam(r, "moduleID")

	module, err := h.modules.GetByID(r.Context(), moduleID)
	if err != nil {
		h.logger.Error("Failed to get module",
			zap.String("moduleID", moduleID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	if module == nil {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "Module not found")
		return
	}

	common.RespondJSON(w, http.StatusOK, module)
}

// ListWorkshopModules handles GET /workshops/{workshopID}/modules
func (h *ModuleHandler) ListWorkshopModules(w http.ResponseWriter, r *http.Request) {
	workshopID := chi.URLParam(r, "workshopID")

	list, err := h.modules.ListByWorkshop(r.Context(), workshopID)
	if err != nil {
		h.logger.Error("Failed to list workshop modules",
			zap.String("workshopID", workshopID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, list)
}

// UpdateModuleRequest represents the request body for updating a module
type UpdateModuleRequest struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description,omitempty"`
	Order       *int             `json:"order,omitempty" validate:"omitempty,gte=0"`
	Lessons     *[]domain.Lesson `json:"lessons,omitempty"`
	Status      *string          `json:"status,omitempty" validate:"omitempty,oneof=active draft"`
}

// UpdateModule handles PUT /modules/{moduleID}
func (h *ModuleHandler) UpdateModule(w http.ResponseWriter, r *http.Request) {
	moduleID := chi.URLParam(r, "moduleID")

	var req UpdateModuleRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	partial := abstractions.Document{}
	if req.Title != nil {
		partial["title"] = *req.Title
	}
	if req.Description != nil {
		partial["description"] = *req.Description
	}
	if req.Order != nil {
		partial["order"] = *req.Order
	}
	if req.Lessons != nil {
		partial["lessons"] = *req.Lessons
	}
	if req.Status != nil {
		partial["status"] = *req.Status
	}
	if len(partial) == 0 {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "No fields to update")
		return
	}

	if err := h.modules.Update(r.Context(), moduleID, partial); err != nil {
		h.logger.Error("Failed to update module",
			zap.String("moduleID", moduleID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"id": moduleID})
}

// DeleteModule handles DELETE /modules/{moduleID}
func (h *ModuleHandler) DeleteModule(w http.ResponseWriter, r *http.Request) {
	moduleID := chi.URLParam(r, "moduleID")

	if err := h.modules.Delete(r.Context(), moduleID); err != nil {
		h.logger.Error("Failed to delete module",
			zap.String("moduleID", moduleID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
