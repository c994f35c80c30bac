package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	reservationserrors "bookable/internal/reservations/errors"
	"bookable/internal/reservations/validator"
	"bookable/pkg/config"
	mongotx "bookable/pkg/db/mongo"
	apperrors "bookable/pkg/errors"
	"bookable/pkg/logger"
	"bookable/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// --- Fakes ---

type stubThings struct {
	thing *model.Thing
	err   error
}

func (s *stubThings) GetByID(_ context.Context, _ string) (*model.Thing, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.thing, nil
}

// memReservationRepo is an in-memory repository. Transactions call the
// function with a detached session context and track inserts so a failed
// transaction can undo them, mirroring an aborted Mongo transaction.
type memReservationRepo struct {
	mu     sync.Mutex
	nextID int
	rows   map[string]*model.Reservation
}

func newMemReservationRepo() *memReservationRepo {
	return &memReservationRepo{rows: map[string]*model.Reservation{}}
}

func (m *memReservationRepo) Create(_ context.Context, r *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = fmt.Sprintf("65a0000000000000000000%02d", m.nextID)
	r.CreatedAt = time.Now().UTC()
	clone := *r
	m.rows[r.ID] = &clone
	return nil
}

func (m *memReservationRepo) FindByID(_ context.Context, id string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, reservationserrors.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (m *memReservationRepo) FindByCancelToken(_ context.Context, token string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.CancelToken == token {
			clone := *r
			return &clone, nil
		}
	}
	return nil, reservationserrors.ErrNotFound
}

func (m *memReservationRepo) FindActiveInRange(_ context.Context, thingID string, from, to time.Time) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Reservation
	for _, r := range m.rows {
		if r.ThingID != thingID || r.IsCancelled() {
			continue
		}
		if r.StartsAt.Before(to) && r.EndsAt.After(from) {
			clone := *r
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memReservationRepo) CountActiveFutureByEmail(_ context.Context, thingID, email string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, r := range m.rows {
		if r.ThingID == thingID && r.BookerEmail == email && !r.IsCancelled() && r.StartsAt.After(now) {
			count++
		}
	}
	return count, nil
}

func (m *memReservationRepo) Cancel(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return reservationserrors.ErrNotFound
	}
	if r.CancelledAt == nil {
		r.CancelledAt = &at
	}
	return nil
}

func (m *memReservationRepo) UpdateReminder(_ context.Context, id string, update *model.ReminderUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return reservationserrors.ErrNotFound
	}
	r.ReminderOptIn = update.ReminderOptIn
	r.ReminderNote = update.ReminderNote
	return nil
}

func (m *memReservationRepo) delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
}

func (m *memReservationRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

// memClaimRepo enforces claim uniqueness under a mutex, standing in for the
// unique _id index.
type memClaimRepo struct {
	mu     sync.Mutex
	claims map[string]*model.SlotClaim

	// onRollback removes the reservation row when the claim insert loses a
	// race, mimicking the transaction abort.
	onRollback func(reservationID string)
}

func newMemClaimRepo() *memClaimRepo {
	return &memClaimRepo{claims: map[string]*model.SlotClaim{}}
}

func (m *memClaimRepo) CreateMany(_ context.Context, claims []*model.SlotClaim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range claims {
		if _, exists := m.claims[c.ID]; exists {
			if m.onRollback != nil && len(claims) > 0 {
				m.onRollback(claims[0].ReservationID)
			}
			return reservationserrors.ErrSlotTaken
		}
	}
	for _, c := range claims {
		clone := *c
		m.claims[c.ID] = &clone
	}
	return nil
}

func (m *memClaimRepo) DeleteByReservation(_ context.Context, reservationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.claims {
		if c.ReservationID == reservationID {
			delete(m.claims, id)
		}
	}
	return nil
}

// --- Harness ---

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT}),
	}
}

func newTestService(things *stubThings) (*reservationService, *memReservationRepo, *memClaimRepo) {
	repo := newMemReservationRepo()
	claims := newMemClaimRepo()
	claims.onRollback = repo.delete

	svc := &reservationService{
		repo:      repo,
		claimRepo: claims,
		things:    things,
		validator: validator.NewReservationValidator(testConfigLogger()),
		cfg:       testConfig(),
		nowFunc:   func() time.Time { return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) },
	}
	return svc, repo, claims
}

func testConfigLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
}

func serviceCandidate() *model.Reservation {
	return &model.Reservation{
		ThingID:     "65a000000000000000000001",
		BookerName:  "Dana",
		BookerEmail: "Dana@Example.com",
		StartsAt:    time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
		EndsAt:      time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC),
	}
}

// --- Tests ---

func TestCreateAdmitsValidCandidate(t *testing.T) {
	svc, _, claims := newTestService(&stubThings{thing: testThing()})

	created, err := svc.Create(context.Background(), serviceCandidate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.ID == "" {
		t.Error("created reservation has no ID")
	}
	if created.CancelToken == "" {
		t.Error("created reservation has no cancel token")
	}
	if created.BookerEmail != "dana@example.com" {
		t.Errorf("email = %q, want normalized lowercase", created.BookerEmail)
	}
	// One hour books two half-hour claims.
	if got := len(claims.claims); got != 2 {
		t.Errorf("claims = %d, want 2", got)
	}
}

func TestCreateRejectsInactiveThing(t *testing.T) {
	thing := testThing()
	thing.IsActive = false
	svc, _, _ := newTestService(&stubThings{thing: thing})

	_, err := svc.Create(context.Background(), serviceCandidate())
	if err == nil {
		t.Fatal("expected rejection")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeForbidden {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeForbidden)
	}
}

func TestCreateRejectsOverlapAgainstExisting(t *testing.T) {
	svc, _, _ := newTestService(&stubThings{thing: testThing()})

	if _, err := svc.Create(context.Background(), serviceCandidate()); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	second := serviceCandidate()
	second.BookerEmail = "other@example.com"
	second.StartsAt = second.StartsAt.Add(30 * time.Minute)
	second.EndsAt = second.EndsAt.Add(30 * time.Minute)

	_, err := svc.Create(context.Background(), second)
	if err == nil {
		t.Fatal("overlapping candidate admitted")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != reservationserrors.CodeOverlap {
		t.Errorf("code = %s, want %s", appErr.Code, reservationserrors.CodeOverlap)
	}
}

func TestCreateAdmitsBackToBack(t *testing.T) {
	svc, _, _ := newTestService(&stubThings{thing: testThing()})

	if _, err := svc.Create(context.Background(), serviceCandidate()); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	second := serviceCandidate()
	second.BookerEmail = "other@example.com"
	second.StartsAt = time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC)
	second.EndsAt = time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	if _, err := svc.Create(context.Background(), second); err != nil {
		t.Fatalf("back-to-back candidate rejected: %v", err)
	}
}

func TestCreateAdmitsBackToBackInQuarterOffsetZone(t *testing.T) {
	// Kathmandu's +05:45 offset puts local slot boundaries at :15/:45 UTC.
	// The claim keys must follow the thing's local grid or the second of two
	// exactly adjacent reservations collides on a spilled claim.
	loc, err := time.LoadLocation("Asia/Kathmandu")
	if err != nil {
		t.Fatal(err)
	}
	thing := testThing()
	thing.TimeZone = "Asia/Kathmandu"
	svc, _, claims := newTestService(&stubThings{thing: thing})

	first := serviceCandidate()
	first.StartsAt = time.Date(2026, 3, 9, 10, 0, 0, 0, loc)
	first.EndsAt = time.Date(2026, 3, 9, 10, 30, 0, 0, loc)
	if _, err := svc.Create(context.Background(), first); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if got := len(claims.claims); got != 1 {
		t.Fatalf("claims after first = %d, want 1", got)
	}

	second := serviceCandidate()
	second.BookerEmail = "other@example.com"
	second.StartsAt = time.Date(2026, 3, 9, 10, 30, 0, 0, loc)
	second.EndsAt = time.Date(2026, 3, 9, 11, 0, 0, 0, loc)
	if _, err := svc.Create(context.Background(), second); err != nil {
		t.Fatalf("adjacent candidate rejected: %v", err)
	}
	if got := len(claims.claims); got != 2 {
		t.Errorf("claims after second = %d, want 2", got)
	}
}

func TestCreateEnforcesConcurrencyCapAcrossEmailCase(t *testing.T) {
	thing := testThing()
	thing.MaxConcurrent = 2
	svc, _, _ := newTestService(&stubThings{thing: thing})

	hours := []int{9, 11, 13}
	var lastErr error
	for i, hour := range hours {
		c := serviceCandidate()
		// Varying case on every submission; normalization must collapse
		// them to one booker.
		if i%2 == 1 {
			c.BookerEmail = "DANA@EXAMPLE.COM"
		}
		c.StartsAt = time.Date(2026, 3, 9, hour, 0, 0, 0, time.UTC)
		c.EndsAt = c.StartsAt.Add(time.Hour)
		_, lastErr = svc.Create(context.Background(), c)
		if i < 2 && lastErr != nil {
			t.Fatalf("Create %d: %v", i, lastErr)
		}
	}

	if lastErr == nil {
		t.Fatal("third reservation admitted past cap of 2")
	}
	appErr := apperrors.AsAppError(lastErr)
	if appErr.Code != reservationserrors.CodeMaxConcurrent {
		t.Fatalf("code = %s, want %s", appErr.Code, reservationserrors.CodeMaxConcurrent)
	}
	if got := appErr.Details["current_count"]; got != 2 {
		t.Errorf("current_count = %v, want 2", got)
	}
}

// TestConcurrentSubmissionsAdmitExactlyOne fires N racing submissions for
// the same interval. The advisory checks all pass on the same stale
// snapshot; the claim uniqueness must still let exactly one through.
func TestConcurrentSubmissionsAdmitExactlyOne(t *testing.T) {
	const n = 16
	svc, _, _ := newTestService(&stubThings{thing: testThing()})

	var wg sync.WaitGroup
	results := make([]error, n)
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := serviceCandidate()
			c.BookerEmail = fmt.Sprintf("booker%d@example.com", i)
			<-start
			_, results[i] = svc.Create(context.Background(), c)
		}(i)
	}
	close(start)
	wg.Wait()

	var succeeded, overlapped int
	for i, err := range results {
		switch {
		case err == nil:
			succeeded++
		case apperrors.AsAppError(err).Code == reservationserrors.CodeOverlap:
			overlapped++
		default:
			t.Errorf("submission %d failed with unexpected error: %v", i, err)
		}
	}

	if succeeded != 1 {
		t.Errorf("succeeded = %d, want exactly 1", succeeded)
	}
	if overlapped != n-1 {
		t.Errorf("overlap rejections = %d, want %d", overlapped, n-1)
	}
}

func TestCancelIsIdempotentAndReleasesClaims(t *testing.T) {
	svc, _, claims := newTestService(&stubThings{thing: testThing()})

	created, err := svc.Create(context.Background(), serviceCandidate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Cancel(context.Background(), created.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got := len(claims.claims); got != 0 {
		t.Errorf("claims after cancel = %d, want 0", got)
	}

	// Second cancel is a quiet success.
	if err := svc.Cancel(context.Background(), created.ID); err != nil {
		t.Fatalf("repeat Cancel: %v", err)
	}

	// The freed interval is bookable again.
	rebook := serviceCandidate()
	rebook.BookerEmail = "other@example.com"
	if _, err := svc.Create(context.Background(), rebook); err != nil {
		t.Fatalf("rebooking freed interval: %v", err)
	}
}

func TestCancelByToken(t *testing.T) {
	svc, repo, _ := newTestService(&stubThings{thing: testThing()})

	created, err := svc.Create(context.Background(), serviceCandidate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.CancelByToken(context.Background(), created.CancelToken); err != nil {
		t.Fatalf("CancelByToken: %v", err)
	}

	stored, err := repo.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !stored.IsCancelled() {
		t.Error("reservation not cancelled")
	}

	if err := svc.CancelByToken(context.Background(), "unknown-token"); err == nil {
		t.Error("unknown token accepted")
	}
}

func TestCancelSucceedsWhenThingLookupFails(t *testing.T) {
	things := &stubThings{thing: testThing()}
	svc, repo, _ := newTestService(things)

	created, err := svc.Create(context.Background(), serviceCandidate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The cancellation event needs the thing; a failed lookup only costs
	// the notification, never the cancellation itself.
	things.err = errors.New("things unavailable")
	if err := svc.Cancel(context.Background(), created.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	stored, err := repo.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !stored.IsCancelled() {
		t.Error("reservation not cancelled")
	}
}

func TestUpdateReminder(t *testing.T) {
	svc, repo, _ := newTestService(&stubThings{thing: testThing()})

	created, err := svc.Create(context.Background(), serviceCandidate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	update := &model.ReminderUpdate{ReminderOptIn: true, ReminderNote: "bring the projector"}
	if err := svc.UpdateReminder(context.Background(), created.ID, update); err != nil {
		t.Fatalf("UpdateReminder: %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), created.ID)
	if !stored.ReminderOptIn || stored.ReminderNote != "bring the projector" {
		t.Errorf("stored reminder = %v %q", stored.ReminderOptIn, stored.ReminderNote)
	}
}

func TestDayViewGroupsReservations(t *testing.T) {
	svc, _, _ := newTestService(&stubThings{thing: testThing()})

	if _, err := svc.Create(context.Background(), serviceCandidate()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	view, err := svc.DayView(context.Background(), "65a000000000000000000001", "2026-03-09")
	if err != nil {
		t.Fatalf("DayView: %v", err)
	}

	if view.TimeZone != "UTC" || view.Date != "2026-03-09" {
		t.Errorf("view header = %s %s", view.TimeZone, view.Date)
	}

	var occupied int
	for _, run := range view.Runs {
		if !run.Free() {
			occupied++
			if run.StartIndex != 20 || run.Length != 2 {
				t.Errorf("occupied run = %+v, want start 20 length 2", run)
			}
		}
	}
	if occupied != 1 {
		t.Errorf("occupied runs = %d, want 1", occupied)
	}
}

func TestDayViewRejectsBadDate(t *testing.T) {
	svc, _, _ := newTestService(&stubThings{thing: testThing()})

	_, err := svc.DayView(context.Background(), "65a000000000000000000001", "03/09/2026")
	if err == nil {
		t.Fatal("malformed date accepted")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeInvalidInput)
	}
}
