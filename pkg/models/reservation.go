package models

import "time"

const (
	ReservationPending   = "pending"
	ReservationAccepted  = "accepted"
	ReservationRejected  = "rejected"
	ReservationCancelled = "cancelled"
)

// Status transition actions accepted by the backend.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
	ActionCancel = "cancel"
)

// Reservation timestamps travel in canonical UTC form "2006-01-02 15:04:05".
// Display conversion is the caller's job (pkg/timeutil).
type Reservation struct {
	ID        int64     `json:"id"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	Phone     *string   `json:"phone"`
	Email     *string   `json:"email"`
	StartAt   string    `json:"start_at"`
	EndAt     *string   `json:"end_at"`
	RoomID    *int64    `json:"room_id"`
	TableID   *int64    `json:"table_id"`
	PartySize int       `json:"party_size"`
	Status    string    `json:"status"`
	// StatusReason holds the optional free text given on reject/cancel.
	StatusReason *string   `json:"status_reason"`
	Notes        *string   `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r *Reservation) GuestName() string {
	name := ""
	if r.FirstName != nil {
		name = *r.FirstName
	}
	if r.LastName != nil {
		if name != "" {
			name += " "
		}
		name += *r.LastName
	}
	return name
}
