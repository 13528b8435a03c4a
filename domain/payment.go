package domain

import "time"

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment is a financial transaction record, created only for paid
// workshops. Once the paired enrollment exists, EnrollmentID and the
// enrollment's payment snapshot must reference each other; both sides
// of that link are written in one atomic batch.
type Payment struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	WorkshopID   string `json:"workshopId"`
	EnrollmentID string `json:"enrollmentId,omitempty"`

	Amount   float64       `json:"amount"`
	Currency string        `json:"currency"`
	Status   PaymentStatus `json:"status"`
	Method   string        `json:"method,omitempty"`

	// Original charge details for cross-currency display.
	OriginalAmount   float64 `json:"originalAmount,omitempty"`
	OriginalCurrency string  `json:"originalCurrency,omitempty"`
	ExchangeRate     float64 `json:"exchangeRate,omitempty"`

	// GatewayRef is the payment gateway's transaction id, recorded by
	// the (external) payment-confirmation route.
	GatewayRef string `json:"gatewayRef,omitempty"`

	PaidAt    *time.Time `json:"paidAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
