package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	reservationserrors "bookable/internal/reservations/errors"
	reservationhandler "bookable/internal/reservations/handler"
	reservationservice "bookable/internal/reservations/service"
	thinghandler "bookable/internal/things/handler"
	"bookable/internal/timegrid"
	"bookable/pkg/client"
	apperrors "bookable/pkg/errors"
	"bookable/pkg/logger"
	"bookable/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// The stubs drive the real handlers so these tests cover the full wire
// round trip: client encoding, routing, envelopes, and decoding.

type stubReservations struct {
	create        func(ctx context.Context, r *model.Reservation) (*model.Reservation, error)
	cancelByToken func(ctx context.Context, token string) error
	dayView       func(ctx context.Context, thingID, date string) (*reservationservice.DayView, error)
}

func (s *stubReservations) Create(ctx context.Context, r *model.Reservation) (*model.Reservation, error) {
	return s.create(ctx, r)
}

func (s *stubReservations) GetByID(_ context.Context, _ string) (*model.Reservation, error) {
	return nil, apperrors.NotFound("Reservation")
}

func (s *stubReservations) Cancel(_ context.Context, _ string) error {
	return nil
}

func (s *stubReservations) CancelByToken(ctx context.Context, token string) error {
	return s.cancelByToken(ctx, token)
}

func (s *stubReservations) UpdateReminder(_ context.Context, _ string, _ *model.ReminderUpdate) error {
	return nil
}

func (s *stubReservations) DayView(ctx context.Context, thingID, date string) (*reservationservice.DayView, error) {
	return s.dayView(ctx, thingID, date)
}

type stubThingService struct {
	getByID func(ctx context.Context, id string) (*model.Thing, error)
}

func (s *stubThingService) Create(_ context.Context, _ *model.Thing) error { return nil }

func (s *stubThingService) GetByID(ctx context.Context, id string) (*model.Thing, error) {
	return s.getByID(ctx, id)
}

func (s *stubThingService) GetByOwner(_ context.Context, _ string, _ int, _ int64) ([]*model.Thing, int64, error) {
	return nil, 0, nil
}

func (s *stubThingService) Update(_ context.Context, _ string, _ *model.ThingUpdate) error {
	return nil
}

func (s *stubThingService) Deactivate(_ context.Context, _ string) error { return nil }

func testLog() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
}

func newTestServer(t *testing.T, reservations *stubReservations, things *stubThingService) *httptest.Server {
	t.Helper()

	router := httprouter.New()
	if things != nil {
		thinghandler.NewThingHandler(things, testLog()).RegisterRoutes(router)
	}
	if reservations != nil {
		reservationhandler.NewReservationHandler(reservations, testLog()).RegisterRoutes(router)
	}

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestReservationClientCreateDecodesConfirmation(t *testing.T) {
	reservations := &stubReservations{
		create: func(_ context.Context, r *model.Reservation) (*model.Reservation, error) {
			r.ID = "65a000000000000000000001"
			r.CancelToken = "token-1"
			return r, nil
		},
	}
	server := newTestServer(t, reservations, nil)
	c := client.NewReservationClient(server.URL)

	resp, err := c.Create(map[string]any{
		"thing_id":     "65a000000000000000000009",
		"booker_name":  "Dana",
		"booker_email": "dana@example.com",
		"starts_at":    time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
		"ends_at":      time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d\n%s", resp.StatusCode, http.StatusCreated, resp.ToString())
	}

	created, err := c.DecodeCreated(resp)
	if err != nil {
		t.Fatalf("DecodeCreated: %v", err)
	}
	if created.ID != "65a000000000000000000001" {
		t.Errorf("id = %q", created.ID)
	}
	if created.CancelToken != "token-1" {
		t.Errorf("cancel_token = %q", created.CancelToken)
	}
}

func TestReservationClientSurfacesRejectionCode(t *testing.T) {
	reservations := &stubReservations{
		create: func(_ context.Context, _ *model.Reservation) (*model.Reservation, error) {
			return nil, reservationserrors.Overlap()
		},
	}
	server := newTestServer(t, reservations, nil)
	c := client.NewReservationClient(server.URL)

	resp, err := c.Create(map[string]any{"thing_id": "x"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	if code := client.GetErrorCode(resp); code != reservationserrors.CodeOverlap {
		t.Errorf("code = %q, want %q", code, reservationserrors.CodeOverlap)
	}
}

func TestReservationClientCancelByToken(t *testing.T) {
	var gotToken string
	reservations := &stubReservations{
		cancelByToken: func(_ context.Context, token string) error {
			gotToken = token
			return nil
		},
	}
	server := newTestServer(t, reservations, nil)
	c := client.NewReservationClient(server.URL)

	resp, err := c.CancelByToken("token-9")
	if err != nil {
		t.Fatalf("CancelByToken: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d\n%s", resp.StatusCode, http.StatusNoContent, resp.ToString())
	}
	if gotToken != "token-9" {
		t.Errorf("token = %q, want token-9", gotToken)
	}
}

func TestReservationClientDecodesDayTimeline(t *testing.T) {
	reservations := &stubReservations{
		dayView: func(_ context.Context, thingID, date string) (*reservationservice.DayView, error) {
			return &reservationservice.DayView{
				ThingID:  thingID,
				Date:     date,
				TimeZone: "UTC",
				Runs: []timegrid.Run{
					{StartIndex: 0, Length: 20},
					{StartIndex: 20, Length: 2, ReservationID: "65a000000000000000000002"},
				},
			}, nil
		},
	}
	server := newTestServer(t, reservations, nil)
	c := client.NewReservationClient(server.URL)

	resp, err := c.GetDay("65a000000000000000000009", "2026-03-09")
	if err != nil {
		t.Fatalf("GetDay: %v", err)
	}

	day, err := c.DecodeDay(resp)
	if err != nil {
		t.Fatalf("DecodeDay: %v", err)
	}
	if day.Date != "2026-03-09" {
		t.Errorf("date = %q", day.Date)
	}
	if len(day.Runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(day.Runs))
	}
	if day.Runs[1].ReservationID != "65a000000000000000000002" {
		t.Errorf("occupied run id = %q", day.Runs[1].ReservationID)
	}
}

func TestThingClientGetByIDDecodesThing(t *testing.T) {
	things := &stubThingService{
		getByID: func(_ context.Context, id string) (*model.Thing, error) {
			return &model.Thing{ID: id, Name: "meeting room", TimeZone: "UTC", IsActive: true}, nil
		},
	}
	server := newTestServer(t, nil, things)
	c := client.NewThingClient(server.URL)

	resp, err := c.GetByID("65a000000000000000000009")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	thing, err := c.DecodeThing(resp)
	if err != nil {
		t.Fatalf("DecodeThing: %v", err)
	}
	if thing.ID != "65a000000000000000000009" || thing.Name != "meeting room" {
		t.Errorf("thing = %+v", thing)
	}
}
