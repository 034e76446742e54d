package event

import (
	"context"
	"time"
)

// Type identifies a booking lifecycle event.
type Type string

const (
	TypeBookingCreated   Type = "booking.created"
	TypeBookingCancelled Type = "booking.cancelled"
	TypeBookingApproved  Type = "booking.approved"
	TypeBookingRejected  Type = "booking.rejected"
	TypeSlotBlocked      Type = "slot.blocked"
	TypeSlotUnblocked    Type = "slot.unblocked"
)

// Event describes a booking ledger mutation. Delivery to guests and staff
// (push, messaging templates) is handled by an external notification system;
// the engine only emits.
type Event struct {
	Type        Type
	BookingID   string
	StructureID string
	StayID      string
	Date        string
	StartTime   string
	OccurredAt  time.Time
}

// Publisher receives booking lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}
