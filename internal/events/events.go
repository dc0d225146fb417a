// Package events defines the messages the rental service publishes.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/GearShare/service-rental/internal/domain/money"
)

// Source identifies this service in published CloudEvents.
const Source = "service-rental"

// TopicBookingEvents carries every booking lifecycle event. The configured
// topic prefix is prepended by the producer.
const TopicBookingEvents = "booking.events"

// Event types on TopicBookingEvents.
const (
	BookingRequested     = "booking.requested"
	BookingStatusChanged = "booking.status_changed"
)

// BookingRequestedEvent is published after a renter's request is stored.
type BookingRequestedEvent struct {
	BookingID  uuid.UUID   `json:"bookingId"`
	ListingID  uuid.UUID   `json:"listingId"`
	RenterID   uuid.UUID   `json:"renterId"`
	OwnerID    uuid.UUID   `json:"ownerId"`
	StartDate  string      `json:"startDate"`
	EndDate    string      `json:"endDate"`
	TotalPrice money.Cents `json:"totalPrice"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// BookingStatusChangedEvent is published after an owner or admin moves a
// booking out of PENDING.
type BookingStatusChangedEvent struct {
	BookingID  uuid.UUID `json:"bookingId"`
	ListingID  uuid.UUID `json:"listingId"`
	RenterID   uuid.UUID `json:"renterId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	ChangedBy  uuid.UUID `json:"changedBy"`
	OccurredAt time.Time `json:"occurredAt"`
}
