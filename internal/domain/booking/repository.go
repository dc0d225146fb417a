package booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/GearShare/service-rental/internal/domain/money"
)

// ListingSnapshot is the catalog view the engine needs to price and authorize
// a booking.
type ListingSnapshot struct {
	ID          uuid.UUID
	Active      bool
	PricePerDay money.Cents
	Deposit     money.Cents
	ItemOwnerID uuid.UUID
	ItemTitle   string
}

// ListingReader looks up listings joined with their item.
type ListingReader interface {
	// GetListingWithItem returns nil, nil when the listing does not exist.
	GetListingWithItem(ctx context.Context, listingID uuid.UUID) (*ListingSnapshot, error)
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByRenter returns the renter's bookings, latest start date first.
	FindByRenter(ctx context.Context, renterID uuid.UUID) ([]*Booking, error)

	// FindPendingByOwner returns pending bookings on listings whose item is
	// owned by ownerID, latest start date first.
	FindPendingByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Booking, error)

	// HasAcceptedOverlap reports whether an accepted booking on the listing,
	// other than excludeID, intersects period.
	HasAcceptedOverlap(ctx context.Context, listingID uuid.UUID, period DateRange, excludeID uuid.UUID) (bool, error)

	// Insert persists a new booking.
	Insert(ctx context.Context, booking *Booking) error

	// UpdateStatus sets the status only if it is still from. It returns a
	// conflict error when another writer changed it first.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error

	// ListAll retrieves bookings matching filter, newest first, with
	// pagination (admin).
	ListAll(ctx context.Context, filter ListFilter, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

// ListFilter narrows the admin booking list. Nil fields match everything.
type ListFilter struct {
	Status    *Status
	ListingID *uuid.UUID
	// Within keeps bookings whose dates intersect the range.
	Within *DateRange
}

// Matches reports whether a booking with the given fields passes the filter.
func (f ListFilter) Matches(listingID uuid.UUID, period DateRange, status Status) bool {
	if f.Status != nil && *f.Status != status {
		return false
	}
	if f.ListingID != nil && *f.ListingID != listingID {
		return false
	}
	return f.Within == nil || f.Within.Overlaps(period)
}

// TxRepositories are the repositories bound to one locked transaction.
type TxRepositories struct {
	Bookings BookingRepository
	Listings ListingReader
}

// Transactor serializes writes per listing.
type Transactor interface {
	// WithListingLock runs fn in a transaction holding an exclusive lock on
	// the listing. The transaction commits when fn returns nil.
	WithListingLock(ctx context.Context, listingID uuid.UUID, fn func(ctx context.Context, repos TxRepositories) error) error
}
