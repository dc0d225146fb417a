package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/GearShare/service-rental/internal/platform/apperror"
)

// Image is a stored picture of an item. Path is relative to the public
// uploads root.
type Image struct {
	id        uuid.UUID
	itemID    uuid.UUID
	path      string
	sortOrder int
	createdAt time.Time
}

// NewImage creates an image record for an already stored file.
func NewImage(itemID uuid.UUID, path string, sortOrder int) (*Image, error) {
	if itemID == uuid.Nil {
		return nil, apperror.NewValidationError("item ID is required")
	}
	if path == "" {
		return nil, apperror.NewValidationError("image path is required")
	}
	return &Image{
		id:        uuid.New(),
		itemID:    itemID,
		path:      path,
		sortOrder: sortOrder,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstructImage rebuilds an Image from persistence.
func ReconstructImage(id, itemID uuid.UUID, path string, sortOrder int, createdAt time.Time) *Image {
	return &Image{id: id, itemID: itemID, path: path, sortOrder: sortOrder, createdAt: createdAt}
}

// Getters.
func (m *Image) ID() uuid.UUID        { return m.id }
func (m *Image) ItemID() uuid.UUID    { return m.itemID }
func (m *Image) Path() string         { return m.path }
func (m *Image) SortOrder() int       { return m.sortOrder }
func (m *Image) CreatedAt() time.Time { return m.createdAt }
