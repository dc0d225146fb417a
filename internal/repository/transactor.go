package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/GearShare/service-rental/internal/domain/booking"
)

// GormTransactor serializes booking writes per listing with a row lock.
type GormTransactor struct {
	db *gorm.DB
}

// NewGormTransactor creates a new GormTransactor.
func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

// WithListingLock opens a transaction, takes SELECT ... FOR UPDATE on the
// listing row and runs fn with repositories bound to that transaction. A
// missing listing is not an error here; fn sees it through the reader.
func (t *GormTransactor) WithListingLock(ctx context.Context, listingID uuid.UUID, fn func(ctx context.Context, repos bookingDomain.TxRepositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked []ListingModel
		if err := tx.Select("id").
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", listingID).
			Limit(1).
			Find(&locked).Error; err != nil {
			return fmt.Errorf("failed to lock listing: %w", err)
		}

		return fn(ctx, bookingDomain.TxRepositories{
			Bookings: NewGormBookingRepository(tx),
			Listings: NewGormListingRepository(tx),
		})
	})
}

var _ bookingDomain.Transactor = (*GormTransactor)(nil)
