package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/GearShare/service-rental/internal/domain/money"
	"github.com/GearShare/service-rental/internal/platform/apperror"
)

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id           uuid.UUID
	listingID    uuid.UUID
	renterID     uuid.UUID
	period       DateRange
	totalPrice   money.Cents
	status       Status
	listingTitle string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewBooking creates a new Booking aggregate with status=PENDING. The total
// price is fixed here and never recomputed.
func NewBooking(
	listingID uuid.UUID,
	renterID uuid.UUID,
	period DateRange,
	totalPrice money.Cents,
	listingTitle string,
) (*Booking, error) {
	if listingID == uuid.Nil {
		return nil, apperror.NewValidationError("listing ID is required")
	}
	if renterID == uuid.Nil {
		return nil, apperror.NewValidationError("renter ID is required")
	}
	if period.End.Before(period.Start) || period.Days() < 1 {
		return nil, ErrInvalidRange
	}
	if totalPrice < 0 {
		return nil, apperror.NewValidationError("total price must not be negative")
	}

	now := time.Now().UTC()
	return &Booking{
		id:           uuid.New(),
		listingID:    listingID,
		renterID:     renterID,
		period:       period,
		totalPrice:   totalPrice,
		status:       StatusPending,
		listingTitle: listingTitle,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	listingID uuid.UUID,
	renterID uuid.UUID,
	period DateRange,
	totalPrice money.Cents,
	status Status,
	listingTitle string,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:           id,
		listingID:    listingID,
		renterID:     renterID,
		period:       period,
		totalPrice:   totalPrice,
		status:       status,
		listingTitle: listingTitle,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID           { return b.id }
func (b *Booking) ListingID() uuid.UUID    { return b.listingID }
func (b *Booking) RenterID() uuid.UUID     { return b.renterID }
func (b *Booking) Period() DateRange       { return b.period }
func (b *Booking) TotalPrice() money.Cents { return b.totalPrice }
func (b *Booking) Status() Status          { return b.status }
func (b *Booking) ListingTitle() string    { return b.listingTitle }
func (b *Booking) CreatedAt() time.Time    { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time    { return b.updatedAt }

// --- Behavior ---

// TransitionTo moves the booking to target. Repeating the current terminal
// status is a no-op and reports changed=false.
func (b *Booking) TransitionTo(target Status) (changed bool, err error) {
	if b.status == target && b.status.IsTerminal() {
		return false, nil
	}
	if !b.status.CanTransitionTo(target) {
		return false, apperror.NewInvalidStateError(string(b.status), string(target))
	}
	b.status = target
	b.updatedAt = time.Now().UTC()
	return true, nil
}
