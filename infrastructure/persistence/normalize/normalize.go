// Package normalize converts raw stored documents into canonical
// entity records. Documents written over the years carry temporal
// fields in three shapes: RFC3339 strings, epoch milliseconds, and
// Go-native time values handed back by test stores. Every read path
// goes through this package so those shapes never leak past the
// persistence boundary. Normalization is idempotent and is never
// applied on writes.
package normalize

import (
	"time"

	"learnhub-backend/domain"
	"learnhub-backend/infrastructure/persistence/abstractions"
)

// Timestamp converts any stored temporal representation to time.Time.
// Accepted shapes: time.Time (already canonical), RFC3339/RFC3339Nano
// strings, and epoch milliseconds as float64 or int64. Returns false
// for absent, null, or unparseable values.
func Timestamp(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		if t == "" {
			return time.Time{}, false
		}
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed, true
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
		return time.Time{}, false
	case float64:
		return time.UnixMilli(int64(t)).UTC(), true
	case int64:
		return time.UnixMilli(t).UTC(), true
	case int:
		return time.UnixMilli(int64(t)).UTC(), true
	default:
		return time.Time{}, false
	}
}

// Str returns a string field, tolerating absence and null.
func Str(doc abstractions.Document, field string) string {
	if v, ok := doc[field].(string); ok {
		return v
	}
	return ""
}

// Num returns a numeric field as float64. JSON decoding yields
// float64, but int values written by older tooling show up too.
func Num(doc abstractions.Document, field string) float64 {
	switch v := doc[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// Int returns a numeric field truncated to int.
func Int(doc abstractions.Document, field string) int {
	return int(Num(doc, field))
}

// Ints returns an integer-slice field.
func Ints(doc abstractions.Document, field string) []int {
	raw, ok := doc[field].([]interface{})
	if !ok {
		return []int{}
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case float64:
			out = append(out, int(n))
		case int:
			out = append(out, n)
		}
	}
	return out
}

// Sub returns a nested document field, or an empty document.
func Sub(doc abstractions.Document, field string) abstractions.Document {
	if v, ok := doc[field].(abstractions.Document); ok {
		return v
	}
	return abstractions.Document{}
}

// ts is Timestamp with the zero value for the missing case.
func ts(doc abstractions.Document, field string) time.Time {
	t, _ := Timestamp(doc[field])
	return t
}

// tsPtr is Timestamp returning nil for the missing case.
func tsPtr(doc abstractions.Document, field string) *time.Time {
	if t, ok := Timestamp(doc[field]); ok {
		return &t
	}
	return nil
}

// User builds the canonical user record from a raw document.
func User(doc abstractions.Document) *domain.User {
	stats := Sub(doc, "stats")
	return &domain.User{
		UID:         Str(doc, "uid"),
		Email:       Str(doc, "email"),
		DisplayName: Str(doc, "displayName"),
		Phone:       Str(doc, "phone"),
		PhotoURL:    Str(doc, "photoURL"),
		Stats: domain.UserStats{
			EnrolledWorkshops:  Int(stats, "enrolledWorkshops"),
			CompletedWorkshops: Int(stats, "completedWorkshops"),
			TotalSpent:         Num(stats, "totalSpent"),
		},
		CreatedAt: ts(doc, "createdAt"),
		UpdatedAt: ts(doc, "updatedAt"),
	}
}

// Workshop builds the canonical workshop record from a raw document.
func Workshop(doc abstractions.Document) *domain.Workshop {
	w := &domain.Workshop{
		ID:          Str(doc, "id"),
		Slug:        Str(doc, "slug"),
		Title:       Str(doc, "title"),
		Description: Str(doc, "description"),
		Price:       Num(doc, "price"),
		Currency:    Str(doc, "currency"),
		Level:       domain.WorkshopLevel(Str(doc, "level")),
		Status:      domain.WorkshopStatus(Str(doc, "status")),
		CreatedAt:   ts(doc, "createdAt"),
		UpdatedAt:   ts(doc, "updatedAt"),
	}

	if rawModules, ok := doc["curriculum"].([]interface{}); ok {
		w.Curriculum = make([]domain.CurriculumModule, 0, len(rawModules))
		for _, rm := range rawModules {
			m, ok := rm.(abstractions.Document)
			if !ok {
				continue
			}
			w.Curriculum = append(w.Curriculum, domain.CurriculumModule{
				Title:   Str(m, "title"),
				Order:   Int(m, "order"),
				Lessons: lessons(m),
			})
		}
	}
	return w
}

func lessons(doc abstractions.Document) []domain.Lesson {
	raw, ok := doc["lessons"].([]interface{})
	if !ok {
		return nil
	}
	out := make([]domain.Lesson, 0, len(raw))
	for _, rl := range raw {
		l, ok := rl.(abstractions.Document)
		if !ok {
			continue
		}
		out = append(out, domain.Lesson{
			Title:    Str(l, "title"),
			Duration: Str(l, "duration"),
			VideoURL: Str(l, "videoUrl"),
		})
	}
	return out
}

// Enrollment builds the canonical enrollment record from a raw
// document.
func Enrollment(doc abstractions.Document) *domain.Enrollment {
	payment := Sub(doc, "payment")
	progress := Sub(doc, "progress")
	return &domain.Enrollment{
		ID:         Str(doc, "id"),
		UserID:     Str(doc, "userId"),
		WorkshopID: Str(doc, "workshopId"),
		Status:     domain.EnrollmentStatus(Str(doc, "status")),
		Payment: domain.PaymentSnapshot{
			PaymentID: Str(payment, "paymentId"),
			Amount:    Num(payment, "amount"),
			Currency:  Str(payment, "currency"),
			Status:    domain.PaymentStatus(Str(payment, "status")),
			Method:    Str(payment, "method"),
		},
		Progress: domain.Progress{
			CurrentModule:      Int(progress, "currentModule"),
			CompletedModules:   Ints(progress, "completedModules"),
			PercentageComplete: Num(progress, "percentageComplete"),
			LastAccessed:       ts(progress, "lastAccessed"),
		},
		EnrolledAt:  ts(doc, "enrolledAt"),
		CompletedAt: tsPtr(doc, "completedAt"),
	}
}

// Payment builds the canonical payment record from a raw document.
func Payment(doc abstractions.Document) *domain.Payment {
	return &domain.Payment{
		ID:               Str(doc, "id"),
		UserID:           Str(doc, "userId"),
		WorkshopID:       Str(doc, "workshopId"),
		EnrollmentID:     Str(doc, "enrollmentId"),
		Amount:           Num(doc, "amount"),
		Currency:         Str(doc, "currency"),
		Status:           domain.PaymentStatus(Str(doc, "status")),
		Method:           Str(doc, "method"),
		OriginalAmount:   Num(doc, "originalAmount"),
		OriginalCurrency: Str(doc, "originalCurrency"),
		ExchangeRate:     Num(doc, "exchangeRate"),
		GatewayRef:       Str(doc, "gatewayRef"),
		PaidAt:           tsPtr(doc, "paidAt"),
		CreatedAt:        ts(doc, "createdAt"),
		UpdatedAt:        ts(doc, "updatedAt"),
	}
}

// Module builds the canonical module record from a raw document.
func Module(doc abstractions.Document) *domain.Module {
	return &domain.Module{
		ID:          Str(doc, "id"),
		WorkshopID:  Str(doc, "workshopId"),
		Title:       Str(doc, "title"),
		Description: Str(doc, "description"),
		Order:       Int(doc, "order"),
		Lessons:     lessons(doc),
		Status:      domain.ModuleStatus(Str(doc, "status")),
		CreatedAt:   ts(doc, "createdAt"),
		UpdatedAt:   ts(doc, "updatedAt"),
	}
}
