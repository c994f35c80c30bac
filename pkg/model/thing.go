package model

import "time"

// Thing is the single bookable resource an owner publishes. The rule fields
// (window, max length, book-ahead, concurrency cap, buffer) drive the
// admission pipeline; edits never retroactively affect existing reservations.
type Thing struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID       string    `json:"owner_id" bson:"owner_id" validate:"required,min=1,max=64"`
	Name          string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Icon          string    `json:"icon,omitempty" bson:"icon" validate:"omitempty,max=50"`
	TimeZone      string    `json:"time_zone" bson:"time_zone" validate:"required,timezone"`
	AvailStart    string    `json:"avail_start" bson:"avail_start" validate:"required,time_hhmm"`
	AvailEnd      string    `json:"avail_end" bson:"avail_end" validate:"required,time_hhmm"`
	AvailWeekends bool      `json:"avail_weekends" bson:"avail_weekends"`
	MaxLengthMins int       `json:"max_length_mins" bson:"max_length_mins" validate:"required,min=30,max=1440"`
	BookAheadDays int       `json:"book_ahead_days" bson:"book_ahead_days" validate:"required,min=1,max=365"`
	MaxConcurrent int       `json:"max_concurrent" bson:"max_concurrent" validate:"required,min=1,max=100"`
	BufferMins    int       `json:"buffer_mins" bson:"buffer_mins" validate:"min=0,max=480"`
	Instructions  string    `json:"instructions,omitempty" bson:"instructions" validate:"omitempty,max=2000"`
	IsActive      bool      `json:"is_active" bson:"is_active"`
	CreatedAt     time.Time `json:"created_at,omitempty" bson:"created_at" validate:"omitempty"`
}

type ThingUpdate struct {
	Name          string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Icon          *string `json:"icon,omitempty" validate:"omitempty,max=50"`
	TimeZone      string  `json:"time_zone,omitempty" validate:"omitempty,timezone"`
	AvailStart    string  `json:"avail_start,omitempty" validate:"omitempty,time_hhmm"`
	AvailEnd      string  `json:"avail_end,omitempty" validate:"omitempty,time_hhmm"`
	AvailWeekends *bool   `json:"avail_weekends,omitempty"`
	MaxLengthMins *int    `json:"max_length_mins,omitempty" validate:"omitempty,min=30,max=1440"`
	BookAheadDays *int    `json:"book_ahead_days,omitempty" validate:"omitempty,min=1,max=365"`
	MaxConcurrent *int    `json:"max_concurrent,omitempty" validate:"omitempty,min=1,max=100"`
	BufferMins    *int    `json:"buffer_mins,omitempty" validate:"omitempty,min=0,max=480"`
	Instructions  *string `json:"instructions,omitempty" validate:"omitempty,max=2000"`
}

// Location resolves the thing's IANA timezone. The zone is validated at
// create/update time, so failure here is a data corruption, not user error.
func (t *Thing) Location() (*time.Location, error) {
	return time.LoadLocation(t.TimeZone)
}
