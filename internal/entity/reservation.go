package entity

import (
	"time"
)

type ReservationStatus string

const (
	ReservationStatusPending               ReservationStatus = "pending"
	ReservationStatusConfirmed             ReservationStatus = "confirmed"
	ReservationStatusCancelled             ReservationStatus = "cancelled"
	ReservationStatusCompleted             ReservationStatus = "completed"
	ReservationStatusNoShow                ReservationStatus = "no-show"
	ReservationStatusCancelledByCustomer   ReservationStatus = "cancelled-by-customer"
	ReservationStatusCancelledByRestaurant ReservationStatus = "cancelled-by-restaurant"
)

// BotpressUserID is the sentinel user_id for reservations created by the
// chatbot, where no authenticated owner exists.
const BotpressUserID = "botpress"

// ValidStatus reports whether s is one of the seven reservation statuses.
func ValidStatus(s ReservationStatus) bool {
	switch s {
	case ReservationStatusPending,
		ReservationStatusConfirmed,
		ReservationStatusCancelled,
		ReservationStatusCompleted,
		ReservationStatusNoShow,
		ReservationStatusCancelledByCustomer,
		ReservationStatusCancelledByRestaurant:
		return true
	}
	return false
}

type Reservation struct {
	ID              int64             `json:"id" db:"id"`
	UserID          string            `json:"user_id" db:"user_id"`
	CustomerName    string            `json:"customer_name" db:"customer_name"`
	Phone           string            `json:"phone,omitempty" db:"phone"`
	Email           string            `json:"email,omitempty" db:"email"`
	Date            string            `json:"date" db:"date"`
	Time            string            `json:"time" db:"time"`
	PartySize       int               `json:"party_size" db:"party_size"`
	SpecialRequests string            `json:"special_requests,omitempty" db:"special_requests"`
	Status          ReservationStatus `json:"status" db:"status"`
	Review          *Review           `json:"review,omitempty"`
	Source          string            `json:"source,omitempty"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// Review is only present on completed reservations. The store does not
// enforce that, the service layer does.
type Review struct {
	Rating  int       `json:"rating"`
	Comment string    `json:"comment"`
	Date    time.Time `json:"date"`
}

// ReservationFilter narrows admin listing queries. Zero values mean "no
// filter"; Email and CustomerName match as substrings.
type ReservationFilter struct {
	Status       ReservationStatus
	Date         string
	Email        string
	CustomerName string
}

// ReservationStat is one row of the status-per-day aggregation used by the
// admin dashboard.
type ReservationStat struct {
	Status ReservationStatus `json:"status"`
	Count  int               `json:"count"`
	Date   string            `json:"reservation_date"`
}
