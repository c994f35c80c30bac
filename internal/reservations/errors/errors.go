// Package errors defines the reservation domain's sentinel errors and the
// typed admission rejections. Every rejection carries the data needed to
// render a reason-specific message, never a bare boolean.
package errors

import (
	"errors"
	"net/http"

	apperrors "bookable/pkg/errors"
)

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	ErrInvalidCancelToken = errors.New("invalid or already used cancel token")

	// ErrSlotTaken is the storage constraint firing: a claim for the same
	// thing and half-hour already exists.
	ErrSlotTaken = errors.New("time slot already claimed")
)

// Admission rejection codes. Clients branch on these to render specific
// messages; the strings are part of the API contract.
const (
	CodeMaxLength     = "MAX_LENGTH"
	CodeBookAhead     = "BOOK_AHEAD"
	CodeAvailHours    = "AVAIL_HOURS"
	CodeAvailWeekends = "AVAIL_WEEKENDS"
	CodeMaxConcurrent = "MAX_CONCURRENT"
	CodeOverlap       = "OVERLAP"
)

// MaxLength rejects a candidate longer than the resource allows. Carries the
// configured maximum so the message can name it.
func MaxLength(maxLengthMins int) *apperrors.AppError {
	return &apperrors.AppError{
		Code:       CodeMaxLength,
		Message:    "reservation exceeds the maximum allowed length",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"max_length_mins": maxLengthMins,
		},
	}
}

// BookAhead rejects a candidate starting further out than the booking
// horizon.
func BookAhead() *apperrors.AppError {
	return &apperrors.AppError{
		Code:       CodeBookAhead,
		Message:    "reservation starts beyond the booking horizon",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// AvailHours rejects a candidate outside the resource's daily availability
// window. Carries the window so the message can quote it.
func AvailHours(availStart, availEnd string) *apperrors.AppError {
	return &apperrors.AppError{
		Code:       CodeAvailHours,
		Message:    "reservation falls outside the available hours",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"avail_start": availStart,
			"avail_end":   availEnd,
		},
	}
}

// AvailWeekends rejects a weekend candidate on a weekday-only resource.
func AvailWeekends() *apperrors.AppError {
	return &apperrors.AppError{
		Code:       CodeAvailWeekends,
		Message:    "reservations are not available on weekends",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// MaxConcurrent rejects a booker already holding the maximum number of
// active future reservations. Carries the current count.
func MaxConcurrent(currentCount int) *apperrors.AppError {
	return &apperrors.AppError{
		Code:       CodeMaxConcurrent,
		Message:    "maximum number of active reservations reached",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"current_count": currentCount,
		},
	}
}

// Overlap rejects a candidate that conflicts with an existing reservation,
// whether the pipeline's advisory check or the storage constraint caught it.
// The two causes are deliberately indistinguishable to the caller.
func Overlap() *apperrors.AppError {
	return &apperrors.AppError{
		Code:       CodeOverlap,
		Message:    "the selected time is no longer available",
		HTTPStatus: http.StatusConflict,
	}
}
