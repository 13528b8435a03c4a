package domain

import "time"

// ModuleStatus is the admin-managed lifecycle of a standalone module
// document.
type ModuleStatus string

const (
	ModuleStatusActive ModuleStatus = "active"
	ModuleStatusDraft  ModuleStatus = "draft"
)

// Module is a standalone curriculum unit belonging to a workshop.
// It exists for the per-module admin query path; the workshop's
// embedded curriculum remains the authoritative read model, and
// enrollment progress references modules by index only.
type Module struct {
	ID          string       `json:"id"`
	WorkshopID  string       `json:"workshopId"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Order       int          `json:"order"`
	Lessons     []Lesson     `json:"lessons,omitempty"`
	Status      ModuleStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
