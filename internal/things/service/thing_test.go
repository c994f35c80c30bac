package service

import (
	"context"
	"testing"

	thingserrors "bookable/internal/things/errors"
	"bookable/internal/things/validator"
	"bookable/pkg/config"
	apperrors "bookable/pkg/errors"
	"bookable/pkg/logger"
	"bookable/pkg/model"
)

type stubThingRepo struct {
	createFunc       func(ctx context.Context, thing *model.Thing) error
	findByIDFunc     func(ctx context.Context, id string) (*model.Thing, error)
	findByOwnerFunc  func(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Thing, error)
	countByOwnerFunc func(ctx context.Context, ownerID string) (int64, error)
	updateFunc       func(ctx context.Context, id string, thing *model.Thing) error
	deactivateFunc   func(ctx context.Context, id string) error
}

func (s *stubThingRepo) Create(ctx context.Context, thing *model.Thing) error {
	return s.createFunc(ctx, thing)
}

func (s *stubThingRepo) FindByID(ctx context.Context, id string) (*model.Thing, error) {
	return s.findByIDFunc(ctx, id)
}

func (s *stubThingRepo) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Thing, error) {
	return s.findByOwnerFunc(ctx, ownerID, limit, offset)
}

func (s *stubThingRepo) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	return s.countByOwnerFunc(ctx, ownerID)
}

func (s *stubThingRepo) Update(ctx context.Context, id string, thing *model.Thing) error {
	return s.updateFunc(ctx, id, thing)
}

func (s *stubThingRepo) Deactivate(ctx context.Context, id string) error {
	return s.deactivateFunc(ctx, id)
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT}),

		DefaultAvailStart:    "09:00",
		DefaultAvailEnd:      "17:00",
		DefaultMaxLengthMins: 120,
		DefaultBookAheadDays: 30,
		DefaultMaxConcurrent: 3,
		DefaultBufferMins:    0,
		DefaultTimeZone:      "UTC",
	}
}

func newService(repo *stubThingRepo) ThingService {
	cfg := testConfig()
	return NewThingService(repo, validator.NewThingValidator(cfg.Log), cfg)
}

func validThing() *model.Thing {
	return &model.Thing{
		OwnerID:       "owner-1",
		Name:          "Meeting Room",
		TimeZone:      "Europe/Berlin",
		AvailStart:    "08:00",
		AvailEnd:      "18:00",
		MaxLengthMins: 90,
		BookAheadDays: 14,
		MaxConcurrent: 2,
	}
}

func TestCreateAppliesConfiguredDefaults(t *testing.T) {
	var stored *model.Thing
	repo := &stubThingRepo{
		createFunc: func(_ context.Context, thing *model.Thing) error {
			thing.ID = "65a000000000000000000001"
			stored = thing
			return nil
		},
	}
	svc := newService(repo)

	thing := &model.Thing{OwnerID: "owner-1", Name: "  Meeting   Room  "}
	if err := svc.Create(context.Background(), thing); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if stored.TimeZone != "UTC" || stored.AvailStart != "09:00" || stored.AvailEnd != "17:00" {
		t.Errorf("defaults not applied: %+v", stored)
	}
	if stored.MaxLengthMins != 120 || stored.BookAheadDays != 30 || stored.MaxConcurrent != 3 {
		t.Errorf("rule defaults not applied: %+v", stored)
	}
	if !stored.IsActive {
		t.Error("new thing not active")
	}
	if stored.Name != "Meeting Room" {
		t.Errorf("name = %q, want normalized", stored.Name)
	}
}

func TestCreateRejectsInvertedWindow(t *testing.T) {
	repo := &stubThingRepo{
		createFunc: func(_ context.Context, _ *model.Thing) error {
			t.Fatal("repository reached with invalid input")
			return nil
		},
	}
	svc := newService(repo)

	thing := validThing()
	thing.AvailStart = "18:00"
	thing.AvailEnd = "08:00"

	err := svc.Create(context.Background(), thing)
	if err == nil {
		t.Fatal("inverted window accepted")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeValidation {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeValidation)
	}
}

func TestCreateRejectsBadTimezone(t *testing.T) {
	repo := &stubThingRepo{
		createFunc: func(_ context.Context, _ *model.Thing) error {
			t.Fatal("repository reached with invalid input")
			return nil
		},
	}
	svc := newService(repo)

	thing := validThing()
	thing.TimeZone = "Mars/Olympus"

	if err := svc.Create(context.Background(), thing); err == nil {
		t.Fatal("invalid timezone accepted")
	}
}

func TestGetByIDMapsNotFound(t *testing.T) {
	repo := &stubThingRepo{
		findByIDFunc: func(_ context.Context, _ string) (*model.Thing, error) {
			return nil, thingserrors.ErrNotFound
		},
	}
	svc := newService(repo)

	_, err := svc.GetByID(context.Background(), "65a000000000000000000001")
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotFound {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeNotFound)
	}
}

func TestUpdateMergesOnlyProvidedFields(t *testing.T) {
	existing := validThing()
	existing.ID = "65a000000000000000000001"
	existing.IsActive = true

	var updated *model.Thing
	repo := &stubThingRepo{
		findByIDFunc: func(_ context.Context, _ string) (*model.Thing, error) {
			clone := *existing
			return &clone, nil
		},
		updateFunc: func(_ context.Context, _ string, thing *model.Thing) error {
			updated = thing
			return nil
		},
	}
	svc := newService(repo)

	newBuffer := 15
	weekends := true
	err := svc.Update(context.Background(), existing.ID, &model.ThingUpdate{
		BufferMins:    &newBuffer,
		AvailWeekends: &weekends,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.BufferMins != 15 || !updated.AvailWeekends {
		t.Errorf("updates not applied: %+v", updated)
	}
	if updated.Name != existing.Name || updated.MaxLengthMins != existing.MaxLengthMins {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestDeactivate(t *testing.T) {
	var deactivated string
	repo := &stubThingRepo{
		deactivateFunc: func(_ context.Context, id string) error {
			deactivated = id
			return nil
		},
	}
	svc := newService(repo)

	if err := svc.Deactivate(context.Background(), "65a000000000000000000001"); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if deactivated != "65a000000000000000000001" {
		t.Errorf("deactivated = %q", deactivated)
	}

	if err := svc.Deactivate(context.Background(), ""); err == nil {
		t.Error("empty ID accepted")
	}
}
