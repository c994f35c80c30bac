package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bookable/pkg/kafka"
	"bookable/pkg/logger"
	"bookable/pkg/model"
)

type recordingSender struct {
	recipients []string
	subjects   []string
	bodies     []string
	err        error
}

func (s *recordingSender) Send(_ context.Context, recipient, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.recipients = append(s.recipients, recipient)
	s.subjects = append(s.subjects, subject)
	s.bodies = append(s.bodies, body)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
}

func confirmedEvent() model.ReservationEvent {
	return model.ReservationEvent{
		Type:          model.EventReservationConfirmed,
		ReservationID: "65a000000000000000000001",
		ThingID:       "65a000000000000000000002",
		ThingName:     "Meeting Room",
		TimeZone:      "UTC",
		BookerName:    "Dana",
		BookerEmail:   "dana@example.com",
		StartsAt:      time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
		EndsAt:        time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC),
		Instructions:  "Badge in at the north entrance.",
		CancelToken:   "2f1a9c58-0000-0000-0000-000000000000",
	}
}

func eventMessage(event model.ReservationEvent) kafka.Message {
	return kafka.NewMessage().
		WithKey(event.ThingID).
		WithValue(event).
		WithEventType(event.Type).
		Build()
}

func TestHandleConfirmedEvent(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, testLogger())

	if err := d.Handle(context.Background(), eventMessage(confirmedEvent())); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(sender.recipients) != 1 || sender.recipients[0] != "dana@example.com" {
		t.Fatalf("recipients = %v", sender.recipients)
	}
	if !strings.Contains(sender.subjects[0], "Meeting Room") {
		t.Errorf("subject = %q", sender.subjects[0])
	}
	body := sender.bodies[0]
	for _, want := range []string{"Dana", "Badge in at the north entrance.", "2f1a9c58"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestHandleCancelledEventOmitsCancelToken(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, testLogger())

	event := confirmedEvent()
	event.Type = model.EventReservationCancelled

	if err := d.Handle(context.Background(), eventMessage(event)); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if strings.Contains(sender.bodies[0], event.CancelToken) {
		t.Error("cancellation notice leaks the cancel token")
	}
	if !strings.Contains(sender.subjects[0], "cancelled") {
		t.Errorf("subject = %q", sender.subjects[0])
	}
}

func TestHandleSkipsEventWithoutEmail(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, testLogger())

	event := confirmedEvent()
	event.BookerEmail = ""

	if err := d.Handle(context.Background(), eventMessage(event)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(sender.recipients) != 0 {
		t.Errorf("sent to %v, want nothing", sender.recipients)
	}
}

func TestHandleDropsUndecodableEvent(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, testLogger())

	msg := kafka.Message{Value: []byte("not json")}
	if err := d.Handle(context.Background(), msg); err != nil {
		t.Errorf("undecodable event should not be retried: %v", err)
	}
	if len(sender.recipients) != 0 {
		t.Errorf("sent to %v, want nothing", sender.recipients)
	}
}

func TestHandlePropagatesDeliveryFailure(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(sender, testLogger())

	if err := d.Handle(context.Background(), eventMessage(confirmedEvent())); err == nil {
		t.Error("delivery failure swallowed; consumer cannot retry")
	}
}

func TestHandleSkipsUnknownEventType(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, testLogger())

	event := confirmedEvent()
	event.Type = "reservation.rescheduled"

	if err := d.Handle(context.Background(), eventMessage(event)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(sender.recipients) != 0 {
		t.Errorf("sent to %v, want nothing", sender.recipients)
	}
}
