package domain

import "time"

// User is the canonical profile record for an authenticated user.
// Identity is owned by the external auth subsystem; UID is the unique,
// immutable identity key and doubles as the document id.
type User struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	Stats       UserStats `json:"stats"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UserStats carries aggregate enrollment counters that are maintained
// inside the same atomic batch as the enrollment itself.
type UserStats struct {
	EnrolledWorkshops  int     `json:"enrolledWorkshops"`
	CompletedWorkshops int     `json:"completedWorkshops"`
	TotalSpent         float64 `json:"totalSpent"`
}
