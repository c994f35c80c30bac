// Package notifier consumes reservation lifecycle events and sends the
// booker-facing messages: confirmations with the cancel link, and
// cancellation notices. Delivery runs behind the topic; a broken sender
// never blocks or reverses a reservation.
package notifier

import (
	"context"
	"fmt"
	"time"

	"bookable/pkg/kafka"
	"bookable/pkg/logger"
	"bookable/pkg/model"
)

// Sender delivers one rendered notification. The default implementation
// logs; a real mail or SMS gateway plugs in behind this.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogSender writes notifications to the log instead of delivering them.
// Used until a delivery channel is configured, and in tests.
type LogSender struct {
	Log *logger.Logger
}

func (s *LogSender) Send(_ context.Context, recipient, subject, body string) error {
	s.Log.Info("Notification dispatched",
		"recipient", recipient,
		"subject", subject,
		"body", body,
	)
	return nil
}

type Dispatcher struct {
	sender Sender
	log    *logger.Logger
}

func NewDispatcher(sender Sender, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		log:    log,
	}
}

// Handle is the consumer entrypoint. A returned error triggers the
// consumer's retry and DLQ handling, so only genuine delivery failures
// should propagate; malformed events are dropped with a log line since
// retrying cannot fix them.
func (d *Dispatcher) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.ReservationEvent
	if err := msg.DecodeValue(&event); err != nil {
		d.log.Error("Dropping undecodable reservation event",
			"event_id", msg.GetEventID(),
			"error", err,
		)
		return nil
	}

	if event.BookerEmail == "" {
		// Legacy rows may have no email; nothing to deliver.
		d.log.Debug("Skipping event without booker email", "reservation_id", event.ReservationID)
		return nil
	}

	subject, body, ok := d.render(&event)
	if !ok {
		d.log.Warn("Skipping event of unknown type",
			"event_type", event.Type,
			"reservation_id", event.ReservationID,
		)
		return nil
	}

	if err := d.sender.Send(ctx, event.BookerEmail, subject, body); err != nil {
		return fmt.Errorf("failed to send %s notification: %w", event.Type, err)
	}

	d.log.Info("Notification sent",
		"event_type", event.Type,
		"reservation_id", event.ReservationID,
		"recipient", event.BookerEmail,
	)
	return nil
}

func (d *Dispatcher) render(event *model.ReservationEvent) (subject, body string, ok bool) {
	when := d.formatInterval(event)

	switch event.Type {
	case model.EventReservationConfirmed:
		subject = fmt.Sprintf("Reservation confirmed: %s", event.ThingName)
		body = fmt.Sprintf(
			"Hi %s,\n\nYour reservation for %s is confirmed: %s.\n",
			event.BookerName, event.ThingName, when,
		)
		if event.Instructions != "" {
			body += fmt.Sprintf("\n%s\n", event.Instructions)
		}
		body += fmt.Sprintf("\nNeed to cancel? Use this token: %s\n", event.CancelToken)
		return subject, body, true

	case model.EventReservationCancelled:
		subject = fmt.Sprintf("Reservation cancelled: %s", event.ThingName)
		body = fmt.Sprintf(
			"Hi %s,\n\nYour reservation for %s on %s has been cancelled.\n",
			event.BookerName, event.ThingName, when,
		)
		return subject, body, true
	}

	return "", "", false
}

// formatInterval renders the interval in the thing's local zone, falling
// back to UTC when the stored zone no longer resolves.
func (d *Dispatcher) formatInterval(event *model.ReservationEvent) string {
	loc, err := time.LoadLocation(event.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	return fmt.Sprintf("%s to %s",
		event.StartsAt.In(loc).Format("Mon, Jan 2 2006 3:04pm"),
		event.EndsAt.In(loc).Format("3:04pm MST"),
	)
}
