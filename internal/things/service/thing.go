package service

import (
	"context"
	"errors"
	"sync"

	thingserrors "bookable/internal/things/errors"
	"bookable/internal/things/repository"
	"bookable/internal/things/validator"
	"bookable/pkg/config"
	apperrors "bookable/pkg/errors"
	"bookable/pkg/model"
	"bookable/pkg/sanitizer"
)

type ThingService interface {
	Create(ctx context.Context, thing *model.Thing) error
	GetByID(ctx context.Context, id string) (*model.Thing, error)
	GetByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Thing, int64, error)
	Update(ctx context.Context, id string, updates *model.ThingUpdate) error
	Deactivate(ctx context.Context, id string) error
}

type thingService struct {
	repo      repository.ThingRepository
	validator *validator.ThingValidator
	cfg       *config.Config
}

func NewThingService(
	repo repository.ThingRepository,
	validator *validator.ThingValidator,
	cfg *config.Config,
) ThingService {
	return &thingService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *thingService) Create(ctx context.Context, thing *model.Thing) error {
	s.applyDefaults(thing)
	s.sanitize(thing)
	if err := s.validate(thing); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, thing); err != nil {
		s.cfg.Log.Error("Failed to create thing", "owner_id", thing.OwnerID, "error", err)
		return apperrors.Internal("Failed to create thing", err)
	}

	s.cfg.Log.Info("Thing created successfully",
		"id", thing.ID,
		"owner_id", thing.OwnerID,
		"name", thing.Name,
	)
	return nil
}

func (s *thingService) GetByID(ctx context.Context, id string) (*model.Thing, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Thing ID cannot be empty")
	}

	thing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, thingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Thing", id)
		}
		if errors.Is(err, thingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid thing ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve thing", err)
	}

	return thing, nil
}

func (s *thingService) GetByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Thing, int64, error) {
	if ownerID == "" {
		return nil, 0, apperrors.InvalidInput("Owner ID cannot be empty")
	}

	var count int64
	var things []*model.Thing
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByOwner(ctx, ownerID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count things", "owner_id", ownerID, "error", errCount)
			errCount = apperrors.Internal("Failed to count things", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		things, errFind = s.repo.FindByOwner(ctx, ownerID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list things", "owner_id", ownerID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve things", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return things, count, nil
}

// Update edits the thing's rules going forward. Existing reservations are
// never revalidated against the new rules.
func (s *thingService) Update(ctx context.Context, id string, updates *model.ThingUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Thing ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Thing update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeThingUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, thingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Thing", id)
		}
		s.cfg.Log.Error("Failed to update thing", "id", id, "error", err)
		return apperrors.Internal("Failed to update thing", err)
	}

	s.cfg.Log.Info("Thing updated successfully", "id", id)
	return nil
}

// Deactivate retires the thing from new bookings. The record stays; history
// and active reservations survive.
func (s *thingService) Deactivate(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Thing ID cannot be empty")
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, thingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Thing", id)
		}
		if errors.Is(err, thingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid thing ID format")
		}
		return apperrors.Internal("Failed to deactivate thing", err)
	}

	s.cfg.Log.Info("Thing deactivated successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *thingService) applyDefaults(t *model.Thing) {
	if t.TimeZone == "" {
		t.TimeZone = s.cfg.DefaultTimeZone
	}
	if t.AvailStart == "" {
		t.AvailStart = s.cfg.DefaultAvailStart
	}
	if t.AvailEnd == "" {
		t.AvailEnd = s.cfg.DefaultAvailEnd
	}
	if t.MaxLengthMins == 0 {
		t.MaxLengthMins = s.cfg.DefaultMaxLengthMins
	}
	if t.BookAheadDays == 0 {
		t.BookAheadDays = s.cfg.DefaultBookAheadDays
	}
	if t.MaxConcurrent == 0 {
		t.MaxConcurrent = s.cfg.DefaultMaxConcurrent
	}
	if t.BufferMins == 0 {
		t.BufferMins = s.cfg.DefaultBufferMins
	}
	t.IsActive = true
}

func (s *thingService) sanitize(t *model.Thing) {
	t.Name = sanitizer.NormalizeName(t.Name)
	t.Icon = sanitizer.NormalizeLabel(t.Icon)
	t.Instructions = sanitizer.TrimAndNormalize(t.Instructions)
}

func (s *thingService) mergeThingUpdates(existing *model.Thing, updates *model.ThingUpdate) *model.Thing {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Icon != nil {
		merged.Icon = *updates.Icon
	}
	if updates.TimeZone != "" {
		merged.TimeZone = updates.TimeZone
	}
	if updates.AvailStart != "" {
		merged.AvailStart = updates.AvailStart
	}
	if updates.AvailEnd != "" {
		merged.AvailEnd = updates.AvailEnd
	}
	if updates.AvailWeekends != nil {
		merged.AvailWeekends = *updates.AvailWeekends
	}
	if updates.MaxLengthMins != nil {
		merged.MaxLengthMins = *updates.MaxLengthMins
	}
	if updates.BookAheadDays != nil {
		merged.BookAheadDays = *updates.BookAheadDays
	}
	if updates.MaxConcurrent != nil {
		merged.MaxConcurrent = *updates.MaxConcurrent
	}
	if updates.BufferMins != nil {
		merged.BufferMins = *updates.BufferMins
	}
	if updates.Instructions != nil {
		merged.Instructions = *updates.Instructions
	}

	return &merged
}

func (s *thingService) validate(thing *model.Thing) error {
	if err := s.validator.Validate(thing); err != nil {
		s.cfg.Log.Warn("Thing validation failed", "error", err)
		return apperrors.Validation("Thing validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}
