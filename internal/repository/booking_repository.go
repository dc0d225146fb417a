package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/GearShare/service-rental/internal/domain/booking"
	"github.com/GearShare/service-rental/internal/platform/apperror"
)

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// withTitle selects bookings together with the title of the listed item.
func (r *GormBookingRepository) withTitle(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Select("bookings.*, items.title AS listing_title").
		Joins("JOIN listings ON listings.id = bookings.listing_id").
		Joins("JOIN items ON items.id = listings.item_id")
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.withTitle(ctx).Where("bookings.id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindByRenter returns the renter's bookings, latest start date first.
func (r *GormBookingRepository) FindByRenter(ctx context.Context, renterID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.withTitle(ctx).
		Where("bookings.renter_id = ?", renterID).
		Order("bookings.start_date DESC, bookings.created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find renter bookings: %w", err)
	}
	return toDomainBookings(models), nil
}

// FindPendingByOwner returns pending bookings on the owner's listings.
func (r *GormBookingRepository) FindPendingByOwner(ctx context.Context, ownerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.withTitle(ctx).
		Where("items.owner_id = ? AND bookings.status = ?", ownerID, string(bookingDomain.StatusPending)).
		Order("bookings.start_date DESC, bookings.created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner bookings: %w", err)
	}
	return toDomainBookings(models), nil
}

// HasAcceptedOverlap reports whether an accepted booking other than
// excludeID intersects period. Both ends are inclusive.
func (r *GormBookingRepository) HasAcceptedOverlap(ctx context.Context, listingID uuid.UUID, period bookingDomain.DateRange, excludeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("listing_id = ? AND status = ?", listingID, string(bookingDomain.StatusAccepted)).
		Where("start_date <= ? AND end_date >= ?", period.End, period.Start).
		Where("id <> ?", excludeID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}
	return count > 0, nil
}

// Insert persists a new booking.
func (r *GormBookingRepository) Insert(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		return translateError(fmt.Errorf("failed to save booking: %w", err))
	}
	return nil
}

// UpdateStatus moves a booking from one status to another. Zero affected
// rows means the booking is gone or another writer got there first.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to bookingDomain.Status) error {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return translateError(fmt.Errorf("failed to update booking status: %w", result.Error))
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check booking: %w", err)
	}
	if count == 0 {
		return apperror.NewNotFoundError("Booking", id.String())
	}
	return apperror.NewConflictError("booking was modified by another transaction")
}

// ListAll retrieves bookings matching filter with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := applyListFilter(r.db.WithContext(ctx).Model(&BookingModel{}), filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := applyListFilter(r.withTitle(ctx), filter).
		Order("bookings.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toDomainBookings(models), total, nil
}

func applyListFilter(q *gorm.DB, f bookingDomain.ListFilter) *gorm.DB {
	if f.Status != nil {
		q = q.Where("bookings.status = ?", string(*f.Status))
	}
	if f.ListingID != nil {
		q = q.Where("bookings.listing_id = ?", *f.ListingID)
	}
	if f.Within != nil {
		q = q.Where("bookings.start_date <= ? AND bookings.end_date >= ?", f.Within.End, f.Within.Start)
	}
	return q
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[bookingDomain.Status]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[bookingDomain.Status]int64, len(results))
	for _, sc := range results {
		counts[bookingDomain.Status(sc.Status)] = sc.Count
	}
	return counts, nil
}

var _ bookingDomain.BookingRepository = (*GormBookingRepository)(nil)
