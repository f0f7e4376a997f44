package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

type Appointment struct {
	ID             int64     `json:"id"`
	ClientID       int64     `json:"client_id"`
	ServiceID      int64     `json:"service_id"`
	ProfessionalID *int64    `json:"professional_id"`
	UserID         int64     `json:"user_id"`
	Date           time.Time `json:"date"`
	EndDate        time.Time `json:"end_date"`
	Notes          *string   `json:"notes"`
	Status         string    `json:"status"`
	PaymentStatus  string    `json:"payment_status"`
	BookingRef     *string   `json:"booking_ref,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AppointmentDetail is an appointment joined with the names the calendar
// and details modal render.
type AppointmentDetail struct {
	Appointment
	ClientName       string          `json:"client_name"`
	ClientPhone      string          `json:"client_phone"`
	ServiceName      string          `json:"service_name"`
	ServicePrice     decimal.Decimal `json:"service_price"`
	ServiceDuration  int             `json:"service_duration"`
	ProfessionalName *string         `json:"professional_name"`
}

// ValidAppointmentStatus reports whether s is one of the lifecycle states.
func ValidAppointmentStatus(s string) bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}
