package entity

import (
	"time"
)

// BotpressReservation mirrors chatbot-channel metadata for a reservation.
// ReservationID is a weak reference: deleting the canonical reservation
// sets it to null instead of cascading.
type BotpressReservation struct {
	ID            int64             `json:"id" db:"id"`
	Email         string            `json:"email" db:"email"`
	Datetime      string            `json:"datetime" db:"datetime"`
	PartySize     int               `json:"party_size" db:"party_size"`
	Status        ReservationStatus `json:"status" db:"status"`
	ReservationID *int64            `json:"reservation_id" db:"reservation_id"`
	ConfNumber    *int              `json:"conf_number" db:"conf_number"`
	Source        string            `json:"source" db:"source"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`

	// Joined from the canonical reservation for the admin list; empty when
	// the reference has been nulled.
	CustomerName    string `json:"customer_name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`
}
