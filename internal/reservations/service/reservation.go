package service

import (
	"context"
	"errors"
	"time"

	reservationserrors "bookable/internal/reservations/errors"
	"bookable/internal/reservations/repository"
	"bookable/internal/reservations/validator"
	"bookable/internal/timegrid"
	"bookable/pkg/config"
	apperrors "bookable/pkg/errors"
	"bookable/pkg/kafka"
	"bookable/pkg/model"
	"bookable/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// ThingDirectory is the slice of the things domain the admission pipeline
// needs: resolving a thing with its booking rules.
type ThingDirectory interface {
	GetByID(ctx context.Context, id string) (*model.Thing, error)
}

// EventPublisher sends reservation lifecycle events to the notification
// topic. Publishing is best-effort; a nil publisher disables it.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// DayView is one local calendar day of a thing's timeline, pre-grouped for
// rendering.
type DayView struct {
	ThingID  string         `json:"thing_id"`
	Date     string         `json:"date"`
	TimeZone string         `json:"time_zone"`
	Runs     []timegrid.Run `json:"runs"`
}

type ReservationService interface {
	Create(ctx context.Context, reservation *model.Reservation) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	Cancel(ctx context.Context, id string) error
	CancelByToken(ctx context.Context, token string) error
	UpdateReminder(ctx context.Context, id string, update *model.ReminderUpdate) error
	DayView(ctx context.Context, thingID string, date string) (*DayView, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	claimRepo repository.SlotClaimRepository
	things    ThingDirectory
	validator *validator.ReservationValidator
	publisher EventPublisher
	cfg       *config.Config

	// nowFunc is swapped in tests; everything in the pipeline reads one
	// snapshot of it per request.
	nowFunc func() time.Time
}

func NewReservationService(
	repo repository.ReservationRepository,
	claimRepo repository.SlotClaimRepository,
	things ThingDirectory,
	validator *validator.ReservationValidator,
	publisher EventPublisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		claimRepo: claimRepo,
		things:    things,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		nowFunc:   func() time.Time { return time.Now().UTC() },
	}
}

// Create runs the full admission pipeline and persists the candidate. The
// ordered checks are advisory; the slot claim insert inside the transaction
// is the hard guarantee, and a race lost there surfaces as the same overlap
// rejection as the advisory check.
func (s *reservationService) Create(ctx context.Context, reservation *model.Reservation) (*model.Reservation, error) {
	s.sanitize(reservation)
	if err := s.validator.Validate(reservation); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}

	thing, err := s.things.GetByID(ctx, reservation.ThingID)
	if err != nil {
		return nil, err
	}
	if !thing.IsActive {
		return nil, apperrors.Forbidden("This resource is not accepting reservations")
	}

	env, err := s.loadAdmissionEnv(ctx, thing, reservation)
	if err != nil {
		return nil, err
	}

	if rejection := runAdmissionChecks(thing, reservation, env); rejection != nil {
		s.cfg.Log.Info("Reservation rejected",
			"thing_id", reservation.ThingID,
			"code", rejection.Code,
			"starts_at", reservation.StartsAt,
			"ends_at", reservation.EndsAt,
		)
		return nil, rejection
	}

	loc, err := thing.Location()
	if err != nil {
		return nil, apperrors.Internal("Failed to resolve resource timezone", err)
	}

	reservation.CancelToken = uuid.NewString()
	reservation.CancelledAt = nil

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Create(sessCtx, reservation); err != nil {
			return apperrors.Internal("Failed to create reservation", err)
		}

		claims := buildClaims(reservation, loc)
		if err := s.claimRepo.CreateMany(sessCtx, claims); err != nil {
			if errors.Is(err, reservationserrors.ErrSlotTaken) {
				return reservationserrors.Overlap()
			}
			return apperrors.Internal("Failed to claim time slots", err)
		}

		return nil
	})
	if err != nil {
		appErr := apperrors.AsAppError(err)
		if appErr.Code != reservationserrors.CodeOverlap {
			s.cfg.Log.Error("Failed to create reservation", "thing_id", reservation.ThingID, "error", err)
		}
		return nil, appErr
	}

	s.cfg.Log.Info("Reservation created successfully",
		"id", reservation.ID,
		"thing_id", reservation.ThingID,
		"starts_at", reservation.StartsAt,
		"ends_at", reservation.EndsAt,
	)

	s.publishEvent(model.EventReservationConfirmed, thing, reservation)

	return reservation, nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reservationserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}

	return reservation, nil
}

// Cancel soft-deletes the reservation and releases its slot claims in one
// transaction. Cancelling twice succeeds quietly.
func (s *reservationService) Cancel(ctx context.Context, id string) error {
	reservation, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return s.cancel(ctx, reservation)
}

// CancelByToken is the booker-facing path: the opaque token from the
// confirmation email authorizes cancellation without any account.
func (s *reservationService) CancelByToken(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.InvalidInput("Cancel token cannot be empty")
	}

	reservation, err := s.repo.FindByCancelToken(ctx, token)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return apperrors.NotFound("Reservation")
		}
		return apperrors.Internal("Failed to retrieve reservation", err)
	}

	return s.cancel(ctx, reservation)
}

func (s *reservationService) cancel(ctx context.Context, reservation *model.Reservation) error {
	if reservation.IsCancelled() {
		return nil
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Cancel(sessCtx, reservation.ID, s.nowFunc()); err != nil {
			if errors.Is(err, reservationserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Reservation", reservation.ID)
			}
			return apperrors.Internal("Failed to cancel reservation", err)
		}
		if err := s.claimRepo.DeleteByReservation(sessCtx, reservation.ID); err != nil {
			return apperrors.Internal("Failed to release time slots", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel reservation", "id", reservation.ID, "error", err)
		return apperrors.AsAppError(err)
	}

	s.cfg.Log.Info("Reservation cancelled successfully", "id", reservation.ID, "thing_id", reservation.ThingID)

	if thing, err := s.things.GetByID(ctx, reservation.ThingID); err == nil {
		s.publishEvent(model.EventReservationCancelled, thing, reservation)
	} else {
		s.cfg.Log.Warn("Skipping cancellation event, thing lookup failed",
			"reservation_id", reservation.ID,
			"thing_id", reservation.ThingID,
			"error", err,
		)
	}

	return nil
}

func (s *reservationService) UpdateReminder(ctx context.Context, id string, update *model.ReminderUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	if err := s.validator.ValidateReminder(update); err != nil {
		return apperrors.Validation("Invalid reminder preferences", map[string]any{"error": err.Error()})
	}
	update.ReminderNote = sanitizer.TrimAndNormalize(update.ReminderNote)

	if err := s.repo.UpdateReminder(ctx, id, update); err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reservationserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid reservation ID format")
		}
		return apperrors.Internal("Failed to update reminder preferences", err)
	}

	s.cfg.Log.Info("Reminder preferences updated", "id", id, "opt_in", update.ReminderOptIn)
	return nil
}

// DayView returns one local day of the thing's timeline grouped into display
// runs. date is "2006-01-02" in the thing's zone.
func (s *reservationService) DayView(ctx context.Context, thingID string, date string) (*DayView, error) {
	thing, err := s.things.GetByID(ctx, thingID)
	if err != nil {
		return nil, err
	}

	loc, err := thing.Location()
	if err != nil {
		return nil, apperrors.Internal("Failed to resolve resource timezone", err)
	}

	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, apperrors.InvalidInput("Date must be in YYYY-MM-DD format")
	}

	from := day
	to := day.AddDate(0, 0, 1)
	reservations, err := s.repo.FindActiveInRange(ctx, thingID, from, to)
	if err != nil {
		s.cfg.Log.Error("Failed to load day view", "thing_id", thingID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to load day view", err)
	}

	idx := timegrid.BuildDayIndex(day, loc, reservations)
	return &DayView{
		ThingID:  thingID,
		Date:     date,
		TimeZone: thing.TimeZone,
		Runs:     idx.Runs(),
	}, nil
}

// --- Helpers ---

func (s *reservationService) sanitize(r *model.Reservation) {
	r.BookerName = sanitizer.NormalizeName(r.BookerName)
	// The concurrency cap matches by exact email, so normalization here is
	// load-bearing, not cosmetic.
	r.BookerEmail = sanitizer.NormalizeEmail(r.BookerEmail)
	r.ReminderNote = sanitizer.TrimAndNormalize(r.ReminderNote)
}

// loadAdmissionEnv reads everything the checks need in one place. The
// neighbor window is padded by the buffer so buffer violations are visible.
func (s *reservationService) loadAdmissionEnv(ctx context.Context, thing *model.Thing, candidate *model.Reservation) (*admissionEnv, error) {
	now := s.nowFunc()
	buffer := time.Duration(thing.BufferMins) * time.Minute

	neighbors, err := s.repo.FindActiveInRange(ctx,
		candidate.ThingID,
		candidate.StartsAt.Add(-buffer),
		candidate.EndsAt.Add(buffer),
	)
	if err != nil {
		return nil, apperrors.Internal("Failed to check existing reservations", err)
	}

	count, err := s.repo.CountActiveFutureByEmail(ctx, candidate.ThingID, candidate.BookerEmail, now)
	if err != nil {
		return nil, apperrors.Internal("Failed to count active reservations", err)
	}

	return &admissionEnv{
		now:         now,
		neighbors:   neighbors,
		activeCount: int(count),
	}, nil
}

func buildClaims(reservation *model.Reservation, loc *time.Location) []*model.SlotClaim {
	ticks := timegrid.Ticks(reservation.StartsAt, reservation.EndsAt, loc)
	claims := make([]*model.SlotClaim, 0, len(ticks))
	for _, tick := range ticks {
		claims = append(claims, &model.SlotClaim{
			ID:            model.SlotClaimID(reservation.ThingID, tick),
			ThingID:       reservation.ThingID,
			ReservationID: reservation.ID,
			SlotStart:     tick,
		})
	}
	return claims
}

// publishEvent fires and forgets. A notification that cannot be sent is
// logged; it never rolls back or masks the booking it describes.
func (s *reservationService) publishEvent(eventType string, thing *model.Thing, reservation *model.Reservation) {
	if s.publisher == nil {
		return
	}

	event := model.ReservationEvent{
		Type:          eventType,
		ReservationID: reservation.ID,
		ThingID:       thing.ID,
		ThingName:     thing.Name,
		TimeZone:      thing.TimeZone,
		BookerName:    reservation.BookerName,
		BookerEmail:   reservation.BookerEmail,
		StartsAt:      reservation.StartsAt,
		EndsAt:        reservation.EndsAt,
		Instructions:  thing.Instructions,
		CancelToken:   reservation.CancelToken,
		OccurredAt:    s.nowFunc(),
	}

	msg := kafka.NewMessage().
		WithKey(reservation.ThingID).
		WithValue(event).
		WithEventType(eventType).
		WithSource(s.cfg.ServiceName).
		Build()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.Publish(ctx, msg); err != nil {
			s.cfg.Log.Warn("Failed to publish reservation event",
				"event_type", eventType,
				"reservation_id", reservation.ID,
				"error", err,
			)
		}
	}()
}
