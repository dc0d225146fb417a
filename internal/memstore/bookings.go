package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/GearShare/service-rental/internal/domain/booking"
	"github.com/GearShare/service-rental/internal/domain/money"
	"github.com/GearShare/service-rental/internal/platform/apperror"
)

// BookingRepo implements booking.BookingRepository. Like the database it
// refuses to store two accepted bookings with overlapping dates on the same
// listing.
type BookingRepo struct{ s *Store }

var _ booking.BookingRepository = (*BookingRepo)(nil)

func (r *BookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.bookings[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Booking", id.String())
	}
	return r.s.toBooking(rec), nil
}

func (r *BookingRepo) FindByRenter(_ context.Context, renterID uuid.UUID) ([]*booking.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.collectBookings(func(b *bookingRec) bool { return b.renterID == renterID }, byStartDesc), nil
}

func (r *BookingRepo) FindPendingByOwner(_ context.Context, ownerID uuid.UUID) ([]*booking.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.collectBookings(func(b *bookingRec) bool {
		return b.status == booking.StatusPending && r.s.ownerOfListing(b.listingID) == ownerID
	}, byStartDesc), nil
}

func (r *BookingRepo) HasAcceptedOverlap(_ context.Context, listingID uuid.UUID, period booking.DateRange, excludeID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.acceptedOverlap(listingID, period, excludeID), nil
}

func (r *BookingRepo) Insert(_ context.Context, b *booking.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.listings[b.ListingID()]; !ok {
		return apperror.NewConflictError("listing does not exist")
	}
	if b.Status().BlocksDates() && r.s.acceptedOverlap(b.ListingID(), b.Period(), b.ID()) {
		return booking.ErrDateConflict
	}
	r.s.bookings[b.ID()] = &bookingRec{
		seq:        r.s.nextSeq(),
		id:         b.ID(),
		listingID:  b.ListingID(),
		renterID:   b.RenterID(),
		period:     b.Period(),
		totalPrice: b.TotalPrice().Int64(),
		status:     b.Status(),
		createdAt:  b.CreatedAt(),
		updatedAt:  b.UpdatedAt(),
	}
	return nil
}

func (r *BookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to booking.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.bookings[id]
	if !ok {
		return apperror.NewNotFoundError("Booking", id.String())
	}
	if rec.status != from {
		return apperror.NewConflictError("booking status was changed concurrently")
	}
	if to.BlocksDates() && r.s.acceptedOverlap(rec.listingID, rec.period, rec.id) {
		return booking.ErrDateConflict
	}
	rec.status = to
	rec.updatedAt = nowUTC()
	return nil
}

func (r *BookingRepo) ListAll(_ context.Context, filter booking.ListFilter, page, limit int) ([]*booking.Booking, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := r.s.collectBookings(func(b *bookingRec) bool {
		return filter.Matches(b.listingID, b.period, b.status)
	}, byCreatedDesc)
	total := int64(len(all))

	offset := (page - 1) * limit
	if offset < 0 || offset >= len(all) || limit <= 0 {
		return []*booking.Booking{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *BookingRepo) CountByStatus(_ context.Context) (map[booking.Status]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[booking.Status]int64)
	for _, b := range r.s.bookings {
		counts[b.status]++
	}
	return counts, nil
}

// --- helpers, callers hold mu ---

func byStartDesc(a, b *bookingRec) bool {
	if !a.period.Start.Equal(b.period.Start) {
		return a.period.Start.After(b.period.Start)
	}
	return a.seq > b.seq
}

func byCreatedDesc(a, b *bookingRec) bool { return a.seq > b.seq }

func (s *Store) collectBookings(keep func(*bookingRec) bool, less func(a, b *bookingRec) bool) []*booking.Booking {
	var recs []*bookingRec
	for _, b := range s.bookings {
		if keep(b) {
			recs = append(recs, b)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return less(recs[i], recs[j]) })

	out := make([]*booking.Booking, len(recs))
	for i, rec := range recs {
		out[i] = s.toBooking(rec)
	}
	return out
}

func (s *Store) acceptedOverlap(listingID uuid.UUID, period booking.DateRange, excludeID uuid.UUID) bool {
	for _, b := range s.bookings {
		if b.listingID != listingID || b.id == excludeID || !b.status.BlocksDates() {
			continue
		}
		if b.period.Overlaps(period) {
			return true
		}
	}
	return false
}

func (s *Store) ownerOfListing(listingID uuid.UUID) uuid.UUID {
	l, ok := s.listings[listingID]
	if !ok {
		return uuid.Nil
	}
	item, ok := s.items[l.itemID]
	if !ok {
		return uuid.Nil
	}
	return item.ownerID
}

func (s *Store) toBooking(rec *bookingRec) *booking.Booking {
	var title string
	if l, ok := s.listings[rec.listingID]; ok {
		if item, ok := s.items[l.itemID]; ok {
			title = item.details.Title
		}
	}
	return booking.ReconstructBooking(rec.id, rec.listingID, rec.renterID, rec.period,
		money.Cents(rec.totalPrice), rec.status, title, rec.createdAt, rec.updatedAt)
}
