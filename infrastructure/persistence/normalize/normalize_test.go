package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub-backend/domain"
	"learnhub-backend/infrastructure/persistence/abstractions"
)

func TestTimestampShapes(t *testing.T) {
	want := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	t.Run("time.Time passes through", func(t *testing.T) {
		got, ok := Timestamp(want)
		require.True(t, ok)
		assert.True(t, got.Equal(want))
	})

	t.Run("RFC3339 string", func(t *testing.T) {
		got, ok := Timestamp("2025-03-14T09:26:53Z")
		require.True(t, ok)
		assert.True(t, got.Equal(want))
	})

	t.Run("RFC3339Nano string", func(t *testing.T) {
		got, ok := Timestamp("2025-03-14T09:26:53.000000001Z")
		require.True(t, ok)
		assert.Equal(t, 1, got.Nanosecond())
	})

	t.Run("epoch millis as float64", func(t *testing.T) {
		got, ok := Timestamp(float64(want.UnixMilli()))
		require.True(t, ok)
		assert.True(t, got.Equal(want))
	})

	t.Run("epoch millis as int64", func(t *testing.T) {
		got, ok := Timestamp(want.UnixMilli())
		require.True(t, ok)
		assert.True(t, got.Equal(want))
	})

	t.Run("absent and junk values", func(t *testing.T) {
		for _, v := range []interface{}{nil, "", "not-a-time", true, []string{"x"}} {
			_, ok := Timestamp(v)
			assert.False(t, ok, "value %v", v)
		}
	})
}

func TestTimestampIdempotent(t *testing.T) {
	first, ok := Timestamp("2025-03-14T09:26:53Z")
	require.True(t, ok)

	second, ok := Timestamp(first)
	require.True(t, ok)
	assert.True(t, second.Equal(first))
}

func TestEnrollmentFromDocument(t *testing.T) {
	doc := abstractions.Document{
		"id":         "e1",
		"userId":     "u1",
		"workshopId": "w1",
		"status":     "active",
		"payment": map[string]interface{}{
			"paymentId": "p1",
			"amount":    float64(499),
			"currency":  "INR",
			"status":    "completed",
			"method":    "upi",
		},
		"progress": map[string]interface{}{
			"currentModule":      float64(2),
			"completedModules":   []interface{}{float64(0), float64(1)},
			"percentageComplete": float64(40),
			"lastAccessed":       "2025-03-14T09:26:53Z",
		},
		"enrolledAt": "2025-03-01T00:00:00Z",
	}

	e := Enrollment(doc)
	assert.Equal(t, "e1", e.ID)
	assert.Equal(t, domain.EnrollmentStatusActive, e.Status)
	assert.Equal(t, "p1", e.Payment.PaymentID)
	assert.Equal(t, 499.0, e.Payment.Amount)
	assert.Equal(t, []int{0, 1}, e.Progress.CompletedModules)
	assert.Equal(t, 40.0, e.Progress.PercentageComplete)
	assert.False(t, e.Progress.LastAccessed.IsZero())
	assert.Nil(t, e.CompletedAt)
}

func TestWorkshopFromDocumentWithMixedTimestamps(t *testing.T) {
	doc := abstractions.Document{
		"id":        "w1",
		"slug":      "go-basics",
		"title":     "Go Basics",
		"price":     float64(0),
		"currency":  "INR",
		"level":     "beginner",
		"status":    "active",
		"createdAt": float64(1700000000000), // epoch millis from legacy writer
		"updatedAt": "2025-03-14T09:26:53Z",
		"curriculum": []interface{}{
			map[string]interface{}{
				"title": "Getting Started",
				"order": float64(0),
				"lessons": []interface{}{
					map[string]interface{}{"title": "Hello", "duration": "10m"},
				},
			},
		},
	}

	w := Workshop(doc)
	assert.True(t, w.IsFree())
	assert.Equal(t, int64(1700000000), w.CreatedAt.Unix())
	assert.False(t, w.UpdatedAt.IsZero())
	require.Len(t, w.Curriculum, 1)
	require.Len(t, w.Curriculum[0].Lessons, 1)
	assert.Equal(t, "Hello", w.Curriculum[0].Lessons[0].Title)
}

func TestPaymentFromDocumentTolerantOfAbsence(t *testing.T) {
	p := Payment(abstractions.Document{"id": "p1", "status": "pending"})
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, domain.PaymentStatusPending, p.Status)
	assert.Nil(t, p.PaidAt)
	assert.Zero(t, p.Amount)
	assert.True(t, p.CreatedAt.IsZero())
}

func TestUserStatsDefaultToZero(t *testing.T) {
	u := User(abstractions.Document{"uid": "u1", "email": "a@b.c"})
	assert.Equal(t, 0, u.Stats.EnrolledWorkshops)
	assert.Equal(t, 0.0, u.Stats.TotalSpent)
}
