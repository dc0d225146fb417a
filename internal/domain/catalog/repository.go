package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ItemFilter narrows an item listing.
type ItemFilter struct {
	// Query matches title or description, case-insensitively.
	Query    string
	Category *Category
}

// ItemRepository defines persistence operations for items. Loaded items
// carry their images in sort order and their listings count.
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	List(ctx context.Context, filter ItemFilter) ([]*Item, error)
	Save(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	// Delete removes the item with its images and listings.
	Delete(ctx context.Context, id uuid.UUID) error
	// HasBookings reports whether any listing of the item has bookings.
	HasBookings(ctx context.Context, id uuid.UUID) (bool, error)
}

// ListingRepository defines persistence operations for listings. Loaded
// listings carry the owning item's owner, title and cover image.
type ListingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	// List returns listings newest first, optionally for one item.
	List(ctx context.Context, itemID *uuid.UUID) ([]*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasBookings(ctx context.Context, id uuid.UUID) (bool, error)
}

// ImageRepository defines persistence operations for item images.
type ImageRepository interface {
	Save(ctx context.Context, image *Image) error
	FindByItemID(ctx context.Context, itemID uuid.UUID) ([]*Image, error)
	// NextSortOrder returns the sort order for a newly appended image.
	NextSortOrder(ctx context.Context, itemID uuid.UUID) (int, error)
}
