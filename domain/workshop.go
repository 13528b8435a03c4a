package domain

import "time"

// WorkshopStatus is the lifecycle state of a workshop.
type WorkshopStatus string

const (
	WorkshopStatusActive   WorkshopStatus = "active"
	WorkshopStatusDraft    WorkshopStatus = "draft"
	WorkshopStatusArchived WorkshopStatus = "archived"
)

// WorkshopLevel is the difficulty tier shown to learners.
type WorkshopLevel string

const (
	LevelBeginner   WorkshopLevel = "beginner"
	LevelFoundation WorkshopLevel = "foundation"
	LevelAdvanced   WorkshopLevel = "advanced"
)

// Lesson is a single unit of content inside a curriculum module.
type Lesson struct {
	Title    string `json:"title"`
	Duration string `json:"duration,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
}

// CurriculumModule is an ordered module embedded in a workshop's
// curriculum. The embedded curriculum is the authoritative
// representation; standalone Module documents are a parallel
// admin-managed view (see ModuleRepository).
type CurriculumModule struct {
	Title   string   `json:"title"`
	Order   int      `json:"order"`
	Lessons []Lesson `json:"lessons,omitempty"`
}

// Workshop is a purchasable course. Slug is unique among active
// workshops; Price == 0 marks a free workshop and changes enrollment
// behavior (no Payment document is created).
type Workshop struct {
	ID          string             `json:"id"`
	Slug        string             `json:"slug"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Price       float64            `json:"price"`
	Currency    string             `json:"currency"`
	Level       WorkshopLevel      `json:"level"`
	Status      WorkshopStatus     `json:"status"`
	Curriculum  []CurriculumModule `json:"curriculum,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// IsFree reports whether enrolling requires no payment.
func (w *Workshop) IsFree() bool {
	return w.Price <= 0
}
