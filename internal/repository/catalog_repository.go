package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/GearShare/service-rental/internal/domain/booking"
	"github.com/GearShare/service-rental/internal/domain/catalog"
	"github.com/GearShare/service-rental/internal/domain/money"
	"github.com/GearShare/service-rental/internal/platform/apperror"
)

const listingsCountColumn = "(SELECT COUNT(*) FROM listings WHERE listings.item_id = items.id) AS listings_count"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, created_at ASC")
}

// GormItemRepository is the GORM-based implementation of catalog.ItemRepository.
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository.
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

func (r *GormItemRepository) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&ItemModel{}).
		Select("items.*, " + listingsCountColumn).
		Preload("Images", orderedImages)
}

// FindByID retrieves an item with its images.
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	var model ItemModel
	if err := r.query(ctx).Where("items.id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Item", id.String())
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return toDomainItem(&model), nil
}

// List returns items newest first. The text query matches title or
// description case-insensitively.
func (r *GormItemRepository) List(ctx context.Context, filter catalog.ItemFilter) ([]*catalog.Item, error) {
	q := r.query(ctx)
	if filter.Category != nil {
		q = q.Where("items.category = ?", string(*filter.Category))
	}
	if text := strings.TrimSpace(filter.Query); text != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
		q = q.Where("LOWER(items.title) LIKE ? OR LOWER(items.description) LIKE ?", pattern, pattern)
	}

	var models []ItemModel
	if err := q.Order("items.created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	items := make([]*catalog.Item, len(models))
	for i := range models {
		items[i] = toDomainItem(&models[i])
	}
	return items, nil
}

// Save persists a new item. Images are stored separately.
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(toItemModel(item)).Error; err != nil {
		return translateError(fmt.Errorf("failed to save item: %w", err))
	}
	return nil
}

// Update writes the item's editable fields.
func (r *GormItemRepository) Update(ctx context.Context, item *catalog.Item) error {
	result := r.db.WithContext(ctx).
		Model(&ItemModel{}).
		Where("id = ?", item.ID()).
		Updates(map[string]any{
			"title":       item.Title(),
			"description": item.Description(),
			"category":    string(item.Category()),
			"condition":   item.Condition(),
			"updated_at":  item.UpdatedAt(),
		})
	if result.Error != nil {
		return translateError(fmt.Errorf("failed to update item: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("Item", item.ID().String())
	}
	return nil
}

// Delete removes the item; images and listings cascade. Listings with
// bookings make the delete fail with a conflict.
func (r *GormItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ItemModel{})
	if result.Error != nil {
		return translateError(fmt.Errorf("failed to delete item: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("Item", id.String())
	}
	return nil
}

// HasBookings reports whether any listing of the item has bookings.
func (r *GormItemRepository) HasBookings(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Joins("JOIN listings ON listings.id = bookings.listing_id").
		Where("listings.item_id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count item bookings: %w", err)
	}
	return count > 0, nil
}

// GormImageRepository is the GORM-based implementation of catalog.ImageRepository.
type GormImageRepository struct {
	db *gorm.DB
}

// NewGormImageRepository creates a new GormImageRepository.
func NewGormImageRepository(db *gorm.DB) *GormImageRepository {
	return &GormImageRepository{db: db}
}

func (r *GormImageRepository) Save(ctx context.Context, img *catalog.Image) error {
	if err := r.db.WithContext(ctx).Create(toImageModel(img)).Error; err != nil {
		return translateError(fmt.Errorf("failed to save image: %w", err))
	}
	return nil
}

func (r *GormImageRepository) FindByItemID(ctx context.Context, itemID uuid.UUID) ([]*catalog.Image, error) {
	var models []ImageModel
	if err := orderedImages(r.db.WithContext(ctx)).Where("item_id = ?", itemID).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find item images: %w", err)
	}
	images := make([]*catalog.Image, len(models))
	for i := range models {
		images[i] = toDomainImage(&models[i])
	}
	return images, nil
}

// NextSortOrder returns one past the highest sort order, 0 for no images.
func (r *GormImageRepository) NextSortOrder(ctx context.Context, itemID uuid.UUID) (int, error) {
	var next int
	if err := r.db.WithContext(ctx).
		Model(&ImageModel{}).
		Select("COALESCE(MAX(sort_order) + 1, 0)").
		Where("item_id = ?", itemID).
		Scan(&next).Error; err != nil {
		return 0, fmt.Errorf("failed to compute image order: %w", err)
	}
	return next, nil
}

// GormListingRepository implements catalog.ListingRepository and the
// booking engine's ListingReader.
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository.
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

func (r *GormListingRepository) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Item").
		Preload("Item.Images", orderedImages)
}

func (r *GormListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Listing, error) {
	var model ListingModel
	if err := r.query(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Listing", id.String())
		}
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	return toDomainListing(&model), nil
}

// List returns listings newest first, optionally only those of one item.
func (r *GormListingRepository) List(ctx context.Context, itemID *uuid.UUID) ([]*catalog.Listing, error) {
	q := r.query(ctx)
	if itemID != nil {
		q = q.Where("item_id = ?", *itemID)
	}
	var models []ListingModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	listings := make([]*catalog.Listing, len(models))
	for i := range models {
		listings[i] = toDomainListing(&models[i])
	}
	return listings, nil
}

func (r *GormListingRepository) Save(ctx context.Context, l *catalog.Listing) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(toListingModel(l)).Error; err != nil {
		return translateError(fmt.Errorf("failed to save listing: %w", err))
	}
	return nil
}

func (r *GormListingRepository) Update(ctx context.Context, l *catalog.Listing) error {
	m := toListingModel(l)
	result := r.db.WithContext(ctx).
		Model(&ListingModel{}).
		Where("id = ?", l.ID()).
		Updates(map[string]any{
			"price_per_day_cents": m.PricePerDayCents,
			"deposit_cents":       m.DepositCents,
			"city":                m.City,
			"lat":                 m.Lat,
			"lng":                 m.Lng,
			"active":              m.Active,
			"updated_at":          m.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(fmt.Errorf("failed to update listing: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("Listing", l.ID().String())
	}
	return nil
}

func (r *GormListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ListingModel{})
	if result.Error != nil {
		return translateError(fmt.Errorf("failed to delete listing: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("Listing", id.String())
	}
	return nil
}

func (r *GormListingRepository) HasBookings(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("listing_id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count listing bookings: %w", err)
	}
	return count > 0, nil
}

// GetListingWithItem returns nil, nil when the listing does not exist.
func (r *GormListingRepository) GetListingWithItem(ctx context.Context, listingID uuid.UUID) (*bookingDomain.ListingSnapshot, error) {
	var models []ListingModel
	if err := r.db.WithContext(ctx).
		Preload("Item").
		Where("id = ?", listingID).
		Limit(1).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	m := models[0]
	return &bookingDomain.ListingSnapshot{
		ID:          m.ID,
		Active:      m.Active,
		PricePerDay: money.Cents(m.PricePerDayCents),
		Deposit:     money.Cents(m.DepositCents),
		ItemOwnerID: m.Item.OwnerID,
		ItemTitle:   m.Item.Title,
	}, nil
}

var (
	_ catalog.ItemRepository      = (*GormItemRepository)(nil)
	_ catalog.ImageRepository     = (*GormImageRepository)(nil)
	_ catalog.ListingRepository   = (*GormListingRepository)(nil)
	_ bookingDomain.ListingReader = (*GormListingRepository)(nil)
)
