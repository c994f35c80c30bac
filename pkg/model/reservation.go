package model

import "time"

// Reservation is a committed interval on a thing's timeline. Rows are never
// hard-deleted; cancellation sets CancelledAt. No two non-cancelled
// reservations on a thing may overlap on [StartsAt, EndsAt); the admission
// pipeline checks this in the application and the slot claim unique index
// enforces it in storage.
type Reservation struct {
	ID             string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ThingID        string     `json:"thing_id" bson:"thing_id" validate:"required,mongodb"`
	BookerName     string     `json:"booker_name" bson:"booker_name" validate:"required,min=1,max=100"`
	BookerEmail    string     `json:"booker_email" bson:"booker_email" validate:"required,email"`
	StartsAt       time.Time  `json:"starts_at" bson:"starts_at" validate:"required"`
	EndsAt         time.Time  `json:"ends_at" bson:"ends_at" validate:"required,gtfield=StartsAt"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancelToken    string     `json:"-" bson:"cancel_token"`
	ReminderOptIn  bool       `json:"reminder_opt_in" bson:"reminder_opt_in"`
	ReminderNote   string     `json:"reminder_note,omitempty" bson:"reminder_note" validate:"omitempty,max=500"`
	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty" bson:"reminder_sent_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at,omitempty" bson:"created_at" validate:"omitempty"`
}

func (r *Reservation) IsCancelled() bool {
	return r.CancelledAt != nil
}

// DurationMins is the booked length in whole minutes.
func (r *Reservation) DurationMins() int {
	return int(r.EndsAt.Sub(r.StartsAt) / time.Minute)
}

type ReminderUpdate struct {
	ReminderOptIn bool   `json:"reminder_opt_in"`
	ReminderNote  string `json:"reminder_note,omitempty" validate:"omitempty,max=500"`
}
