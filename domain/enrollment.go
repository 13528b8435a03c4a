package domain

import "time"

// EnrollmentStatus is the lifecycle state of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
	EnrollmentStatusExpired   EnrollmentStatus = "expired"
)

// PaymentSnapshot is the payment summary embedded in an enrollment.
// For paid workshops PaymentID back-references the standalone Payment
// document; for free workshops it is empty and Amount is zero.
type PaymentSnapshot struct {
	PaymentID string        `json:"paymentId,omitempty"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
	Status    PaymentStatus `json:"status"`
	Method    string        `json:"method,omitempty"`
}

// Progress tracks how far a learner is through the workshop
// curriculum. Modules are referenced by index, not by id.
type Progress struct {
	CurrentModule      int       `json:"currentModule"`
	CompletedModules   []int     `json:"completedModules"`
	PercentageComplete float64   `json:"percentageComplete"`
	LastAccessed       time.Time `json:"lastAccessed"`
}

// Enrollment links one user to one workshop. At most one
// active/completed enrollment should exist per (UserID, WorkshopID)
// pair; the orchestrator relies on callers pre-checking via
// ExistsActiveOrCompleted.
type Enrollment struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	WorkshopID  string           `json:"workshopId"`
	Status      EnrollmentStatus `json:"status"`
	Payment     PaymentSnapshot  `json:"payment"`
	Progress    Progress         `json:"progress"`
	EnrolledAt  time.Time        `json:"enrolledAt"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
}
