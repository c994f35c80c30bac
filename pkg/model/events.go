package model

import "time"

const (
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is the payload published to the notification topic after
// a reservation commits or is cancelled. It carries everything a dispatcher
// needs to render a message without calling back into the service.
type ReservationEvent struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservation_id"`
	ThingID       string    `json:"thing_id"`
	ThingName     string    `json:"thing_name"`
	TimeZone      string    `json:"time_zone"`
	BookerName    string    `json:"booker_name"`
	BookerEmail   string    `json:"booker_email"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	Instructions  string    `json:"instructions,omitempty"`
	CancelToken   string    `json:"cancel_token,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
