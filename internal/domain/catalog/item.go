package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/GearShare/service-rental/internal/platform/apperror"
)

const (
	maxTitleLen       = 120
	maxDescriptionLen = 2000
	defaultCondition  = "GOOD"
)

// Item is the aggregate root for a physical object offered for rent.
type Item struct {
	id            uuid.UUID
	ownerID       uuid.UUID
	title         string
	description   string
	category      Category
	condition     string
	ratingAverage *float64
	images        []*Image
	listingsCount int
	createdAt     time.Time
	updatedAt     time.Time
}

// ItemDetails are the owner-editable fields of an item.
type ItemDetails struct {
	Title       string
	Description string
	Category    Category
	Condition   string
}

func (d ItemDetails) normalize() (ItemDetails, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Condition = strings.TrimSpace(d.Condition)

	if d.Title == "" {
		return d, apperror.NewValidationError("title is required")
	}
	if utf8.RuneCountInString(d.Title) > maxTitleLen {
		return d, apperror.NewValidationError("title must be at most 120 characters")
	}
	if utf8.RuneCountInString(d.Description) > maxDescriptionLen {
		return d, apperror.NewValidationError("description must be at most 2000 characters")
	}
	if !d.Category.IsValid() {
		return d, apperror.NewValidationError("invalid category: " + string(d.Category))
	}
	if d.Condition == "" {
		d.Condition = defaultCondition
	}
	return d, nil
}

// NewItem creates an item owned by ownerID.
func NewItem(ownerID uuid.UUID, details ItemDetails) (*Item, error) {
	if ownerID == uuid.Nil {
		return nil, apperror.NewValidationError("owner ID is required")
	}
	d, err := details.normalize()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Item{
		id:          uuid.New(),
		ownerID:     ownerID,
		title:       d.Title,
		description: d.Description,
		category:    d.Category,
		condition:   d.Condition,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructItem rebuilds an Item from persistence data (no validation).
func ReconstructItem(
	id, ownerID uuid.UUID,
	details ItemDetails,
	ratingAverage *float64,
	images []*Image,
	listingsCount int,
	createdAt, updatedAt time.Time,
) *Item {
	return &Item{
		id:            id,
		ownerID:       ownerID,
		title:         details.Title,
		description:   details.Description,
		category:      details.Category,
		condition:     details.Condition,
		ratingAverage: ratingAverage,
		images:        images,
		listingsCount: listingsCount,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

func (i *Item) ID() uuid.UUID           { return i.id }
func (i *Item) OwnerID() uuid.UUID      { return i.ownerID }
func (i *Item) Title() string           { return i.title }
func (i *Item) Description() string     { return i.description }
func (i *Item) Category() Category      { return i.category }
func (i *Item) Condition() string       { return i.condition }
func (i *Item) RatingAverage() *float64 { return i.ratingAverage }
func (i *Item) Images() []*Image        { return i.images }
func (i *Item) ListingsCount() int      { return i.listingsCount }
func (i *Item) CreatedAt() time.Time    { return i.createdAt }
func (i *Item) UpdatedAt() time.Time    { return i.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the item belongs to the given user.
func (i *Item) IsOwnedBy(userID uuid.UUID) bool {
	return i.ownerID == userID
}

// Update replaces the editable fields.
func (i *Item) Update(details ItemDetails) error {
	d, err := details.normalize()
	if err != nil {
		return err
	}
	i.title = d.Title
	i.description = d.Description
	i.category = d.Category
	i.condition = d.Condition
	i.updatedAt = time.Now().UTC()
	return nil
}

// CoverImage returns the path of the first image, or "" when there is none.
func (i *Item) CoverImage() string {
	if len(i.images) == 0 {
		return ""
	}
	return i.images[0].Path()
}
