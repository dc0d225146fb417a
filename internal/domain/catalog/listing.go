package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GearShare/service-rental/internal/domain/money"
	"github.com/GearShare/service-rental/internal/platform/apperror"
)

// Location is an optional place where the item can be collected.
type Location struct {
	City string
	Lat  *float64
	Lng  *float64
}

// ListingTerms are the owner-editable fields of a listing.
type ListingTerms struct {
	PricePerDay money.Cents
	Deposit     money.Cents
	Location    Location
	Active      bool
}

func (t ListingTerms) validate() (ListingTerms, error) {
	if t.PricePerDay <= 0 {
		return t, apperror.NewValidationError("price per day must be positive")
	}
	if t.Deposit < 0 {
		return t, apperror.NewValidationError("deposit must not be negative")
	}
	t.Location.City = strings.TrimSpace(t.Location.City)
	if lat := t.Location.Lat; lat != nil && (*lat < -90 || *lat > 90) {
		return t, apperror.NewValidationError("latitude must be between -90 and 90")
	}
	if lng := t.Location.Lng; lng != nil && (*lng < -180 || *lng > 180) {
		return t, apperror.NewValidationError("longitude must be between -180 and 180")
	}
	return t, nil
}

// Listing is a rentable offering of an item.
type Listing struct {
	id        uuid.UUID
	itemID    uuid.UUID
	terms     ListingTerms
	createdAt time.Time
	updatedAt time.Time

	// Read-side projection of the owning item.
	itemOwnerID uuid.UUID
	itemTitle   string
	coverImage  string
}

// NewListing creates a listing for item.
func NewListing(item *Item, terms ListingTerms) (*Listing, error) {
	if item == nil {
		return nil, apperror.NewValidationError("item is required")
	}
	t, err := terms.validate()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Listing{
		id:          uuid.New(),
		itemID:      item.ID(),
		terms:       t,
		createdAt:   now,
		updatedAt:   now,
		itemOwnerID: item.OwnerID(),
		itemTitle:   item.Title(),
		coverImage:  item.CoverImage(),
	}, nil
}

// ReconstructListing rebuilds a Listing from persistence data (no validation).
func ReconstructListing(
	id, itemID uuid.UUID,
	terms ListingTerms,
	itemOwnerID uuid.UUID,
	itemTitle, coverImage string,
	createdAt, updatedAt time.Time,
) *Listing {
	return &Listing{
		id:          id,
		itemID:      itemID,
		terms:       terms,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		itemOwnerID: itemOwnerID,
		itemTitle:   itemTitle,
		coverImage:  coverImage,
	}
}

// --- Getters ---

func (l *Listing) ID() uuid.UUID            { return l.id }
func (l *Listing) ItemID() uuid.UUID        { return l.itemID }
func (l *Listing) Terms() ListingTerms      { return l.terms }
func (l *Listing) PricePerDay() money.Cents { return l.terms.PricePerDay }
func (l *Listing) Deposit() money.Cents     { return l.terms.Deposit }
func (l *Listing) Location() Location       { return l.terms.Location }
func (l *Listing) Active() bool             { return l.terms.Active }
func (l *Listing) ItemOwnerID() uuid.UUID   { return l.itemOwnerID }
func (l *Listing) ItemTitle() string        { return l.itemTitle }
func (l *Listing) CoverImage() string       { return l.coverImage }
func (l *Listing) CreatedAt() time.Time     { return l.createdAt }
func (l *Listing) UpdatedAt() time.Time     { return l.updatedAt }

// --- Behavior ---

// Update replaces the listing terms.
func (l *Listing) Update(terms ListingTerms) error {
	t, err := terms.validate()
	if err != nil {
		return err
	}
	l.terms = t
	l.updatedAt = time.Now().UTC()
	return nil
}
