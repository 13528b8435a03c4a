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

// WorkshopHandler handles workshop-related HTTP requests
type WorkshopHandler struct {
	workshops ports.WorkshopRepository
	logger    *zap.Logger
}

// NewWorkshopHandler creates a new workshop handler
func NewWorkshopHandler(workshops ports.WorkshopRepository, logger *zap.Logger) *WorkshopHandler {
	return &WorkshopHandler{
		workshops: workshops,
		logger:    logger,
	}
}

// CreateWorkshopRequest represents the request body for creating a workshop
type CreateWorkshopRequest struct {
	Slug        string                    `json:"slug" validate:"required,min=1,max=100"`
	Title       string                    `json:"title" validate:"required,min=1,max=200"`
	Description string                    `json:"description,omitempty"`
	Price       float64                   `json:"price" validate:"gte=0"`
	Currency    string                    `json:"currency,omitempty" validate:"omitempty,len=3"`
	Level       string                    `json:"level,omitempty" validate:"omitempty,oneof=beginner foundation advanced"`
	Status      string                    `json:"status,omitempty" validate:"omitempty,oneof=active draft archived"`
	Curriculum  []domain.CurriculumModule `json:"curriculum,omitempty"`
}

// CreateWorkshop handles POST /workshops
func (h *WorkshopHandler) CreateWorkshop(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkshopRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	workshop := &domain.Workshop{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		Level:       domain.WorkshopLevel(req.Level),
		Status:      domain.WorkshopStatus(req.Status),
		Curriculum:  req.Curriculum,
	}
	if workshop.Level == "" {
		workshop.Level = domain.LevelBeginner
	}
	if workshop.Status == "" {
		workshop.Status = domain.WorkshopStatusDraft
	}

	id, err := h.workshops.Create(r.Context(), workshop)
	if err != nil {
		h.logger.Error("Failed to create workshop",
			zap.String("slug", req.Slug),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// GetWorkshop handles GET /workshops/{workshopID}
func (h *WorkshopHandler) GetWorkshop(w http.ResponseWriter, r *http.Request) {
	workshopID := chi.URLParam(r, "workshopID")

	workshop, err := h.workshops.GetByID(r.Context(), workshopID)
	if err != nil {
		h.logger.Error("Failed to get workshop",
			zap.String("workshopID", workshopID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	if workshop == nil {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "Workshop not found")
		return
	}

	common.RespondJSON(w, http.StatusOK, workshop)
}

// GetWorkshopBySlug handles GET /workshops/slug/{slug}
func (h *WorkshopHandler) GetWorkshopBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	workshop, err := h.workshops.GetBySlug(r.Context(), slug)
	if err != nil {
		h.logger.Error("Failed to get workshop by slug",
			zap.String("slug", slug),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	if workshop == nil {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "Workshop not found")
		return
	}

	common.RespondJSON(w, http.StatusOK, workshop)
}

// ListWorkshops handles GET /workshops. Admins may pass ?status= to
// list non-active workshops; everyone else sees the active catalog.
func (h *WorkshopHandler) ListWorkshops(w http.ResponseWriter, r *http.Request) {
	var (
		list []*domain.Workshop
		err  error
	)

	if status := r.URL.Query().Get("status"); status != "" {
		list, err = h.workshops.ListByStatus(r.Context(), domain.WorkshopStatus(status))
	} else {
		list, err = h.workshops.List(r.Context())
	}
	if err != nil {
		h.logger.Error("Failed to list workshops", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	params := common.ExtractPaginationParams(r)
	start, end := params.Bounds(len(list))

	common.RespondWithMeta(w, http.StatusOK, list[start:end], &common.MetaInfo{
		Pagination: common.BuildPaginationMeta(params.Page, params.PageSize, len(list)),
	})
}

// UpdateWorkshopRequest represents the request body for updating a workshop
type UpdateWorkshopRequest struct {
	Title       *string                    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string                    `json:"description,omitempty"`
	Price       *float64                   `json:"price,omitempty" validate:"omitempty,gte=0"`
	Currency    *string                    `json:"currency,omitempty" validate:"omitempty,len=3"`
	Level       *string                    `json:"level,omitempty" validate:"omitempty,oneof=beginner foundation advanced"`
	Status      *string                    `json:"status,omitempty" validate:"omitempty,oneof=active draft archived"`
	Curriculum  *[]domain.CurriculumModule `json:"curriculum,omitempty"`
}

// UpdateWorkshop handles PUT /workshops/{workshopID}
func (h *WorkshopHandler) UpdateWorkshop(w http.ResponseWriter, r *http.Request) {
	workshopID := chi.URLParam(r, "workshopID")

	var req UpdateWorkshopRequest
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
	if req.Price != nil {
		partial["price"] = *req.Price
	}
	if req.Currency != nil {
		partial["currency"] = *req.Currency
	}
	if req.Level != nil {
		partial["level"] = *req.Level
	}
	if req.Status != nil {
		partial["status"] = *req.Status
	}
	if req.Curriculum != nil {
		partial["curriculum"] = *req.Curriculum
	}
	if len(partial) == 0 {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "No fields to update")
		return
	}

	if err := h.workshops.Update(r.Context(), workshopID, partial); err != nil {
		h.logger.Error("Failed to update workshop",
			zap.String("workshopID", workshopID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"id": workshopID})
}

// DeleteWorkshop handles DELETE /workshops/{workshopID}
func (h *WorkshopHandler) DeleteWorkshop(w http.ResponseWriter, r *http.Request) {
	workshopID := chi.URLParam(r, "workshopID")

	if err := h.workshops.Delete(r.Context(), workshopID); err != nil {
		h.logger.Error("Failed to delete workshop",
			zap.String("workshopID", workshopID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
