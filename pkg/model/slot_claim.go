package model

import (
	"fmt"
	"time"
)

// SlotClaim is one half-hour of occupied timeline, written inside the same
// transaction as its reservation. The unique _id is the storage-level
// exclusion constraint: two active reservations covering the same half-hour
// on the same thing cannot both insert their claims, no matter what the
// application-level checks concluded. Claims for a reservation are removed
// when it is cancelled.
type SlotClaim struct {
	ID            string    `bson:"_id"`
	ThingID       string    `bson:"thing_id"`
	ReservationID string    `bson:"reservation_id"`
	SlotStart     time.Time `bson:"slot_start"`
	CreatedAt     time.Time `bson:"created_at"`
}

// SlotClaimID keys a claim by thing and the UTC instant of the half-hour it
// covers. Minute precision is enough; claims are built from slot-aligned
// ticks.
func SlotClaimID(thingID string, slotStart time.Time) string {
	return fmt.Sprintf("%s|%s", thingID, slotStart.UTC().Format(time.RFC3339))
}
