package repository

import (
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/GearShare/service-rental/internal/domain/booking"
	"github.com/GearShare/service-rental/internal/domain/catalog"
	"github.com/GearShare/service-rental/internal/domain/money"
	"github.com/GearShare/service-rental/internal/domain/user"
	"github.com/GearShare/service-rental/internal/platform/auth"
)

// The schema is owned by the SQL migrations; these models only map it.

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	DisplayName  string    `gorm:"size:120;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	Roles        []string  `gorm:"type:jsonb;serializer:json;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }

// ItemModel is the GORM model for the items table.
type ItemModel struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey"`
	OwnerID       uuid.UUID    `gorm:"type:uuid;not null;index"`
	Title         string       `gorm:"size:120;not null"`
	Description   string       `gorm:"size:2000;not null"`
	Category      string       `gorm:"size:16;not null"`
	Condition     string       `gorm:"size:64;not null"`
	RatingAverage *float64     `gorm:"type:numeric(3,2)"`
	Images        []ImageModel `gorm:"foreignKey:ItemID"`
	ListingsCount int          `gorm:"->"`
	CreatedAt     time.Time    `gorm:"not null"`
	UpdatedAt     time.Time    `gorm:"not null"`
}

func (ItemModel) TableName() string { return "items" }

// ImageModel is the GORM model for the item_images table.
type ImageModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null"`
	Path      string    `gorm:"size:512;not null"`
	SortOrder int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (ImageModel) TableName() string { return "item_images" }

// ListingModel is the GORM model for the listings table.
type ListingModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID           uuid.UUID `gorm:"type:uuid;not null"`
	Item             ItemModel `gorm:"foreignKey:ItemID"`
	PricePerDayCents int64     `gorm:"not null"`
	DepositCents     int64     `gorm:"not null"`
	City             string    `gorm:"size:120;not null"`
	Lat              *float64
	Lng              *float64
	Active           bool      `gorm:"not null"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

func (ListingModel) TableName() string { return "listings" }

// BookingModel is the GORM model for the bookings table. ListingTitle is
// read through a join and never written.
type BookingModel struct {
	ID              uuid.UUID          `gorm:"type:uuid;primaryKey"`
	ListingID       uuid.UUID          `gorm:"type:uuid;not null"`
	RenterID        uuid.UUID          `gorm:"type:uuid;not null"`
	StartDate       bookingDomain.Date `gorm:"type:date;not null"`
	EndDate         bookingDomain.Date `gorm:"type:date;not null"`
	TotalPriceCents int64              `gorm:"not null"`
	Status          string             `gorm:"size:16;not null"`
	ListingTitle    string             `gorm:"->"`
	CreatedAt       time.Time          `gorm:"not null"`
	UpdatedAt       time.Time          `gorm:"not null"`
}

func (BookingModel) TableName() string { return "bookings" }

// --- Conversion Helpers ---

func toUserModel(u *user.User) *UserModel {
	roles := make([]string, len(u.Roles()))
	for i, r := range u.Roles() {
		roles[i] = string(r)
	}
	return &UserModel{
		ID:           u.ID(),
		Email:        u.Email(),
		DisplayName:  u.DisplayName(),
		PasswordHash: u.PasswordHash(),
		Roles:        roles,
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
	}
}

func toDomainUser(m *UserModel) *user.User {
	roles := make([]auth.Role, 0, len(m.Roles))
	for _, raw := range m.Roles {
		if r, ok := auth.ParseRole(raw); ok {
			roles = append(roles, r)
		}
	}
	return user.Reconstruct(m.ID, m.Email, m.DisplayName, m.PasswordHash, roles, m.CreatedAt, m.UpdatedAt)
}

func toItemModel(item *catalog.Item) *ItemModel {
	return &ItemModel{
		ID:            item.ID(),
		OwnerID:       item.OwnerID(),
		Title:         item.Title(),
		Description:   item.Description(),
		Category:      string(item.Category()),
		Condition:     item.Condition(),
		RatingAverage: item.RatingAverage(),
		CreatedAt:     item.CreatedAt(),
		UpdatedAt:     item.UpdatedAt(),
	}
}

func toDomainItem(m *ItemModel) *catalog.Item {
	images := make([]*catalog.Image, len(m.Images))
	for i := range m.Images {
		images[i] = toDomainImage(&m.Images[i])
	}
	details := catalog.ItemDetails{
		Title:       m.Title,
		Description: m.Description,
		Category:    catalog.Category(m.Category),
		Condition:   m.Condition,
	}
	return catalog.ReconstructItem(m.ID, m.OwnerID, details, m.RatingAverage, images, m.ListingsCount, m.CreatedAt, m.UpdatedAt)
}

func toImageModel(img *catalog.Image) *ImageModel {
	return &ImageModel{
		ID:        img.ID(),
		ItemID:    img.ItemID(),
		Path:      img.Path(),
		SortOrder: img.SortOrder(),
		CreatedAt: img.CreatedAt(),
	}
}

func toDomainImage(m *ImageModel) *catalog.Image {
	return catalog.ReconstructImage(m.ID, m.ItemID, m.Path, m.SortOrder, m.CreatedAt)
}

func toListingModel(l *catalog.Listing) *ListingModel {
	terms := l.Terms()
	return &ListingModel{
		ID:               l.ID(),
		ItemID:           l.ItemID(),
		PricePerDayCents: terms.PricePerDay.Int64(),
		DepositCents:     terms.Deposit.Int64(),
		City:             terms.Location.City,
		Lat:              terms.Location.Lat,
		Lng:              terms.Location.Lng,
		Active:           terms.Active,
		CreatedAt:        l.CreatedAt(),
		UpdatedAt:        l.UpdatedAt(),
	}
}

func listingTerms(m *ListingModel) catalog.ListingTerms {
	return catalog.ListingTerms{
		PricePerDay: money.Cents(m.PricePerDayCents),
		Deposit:     money.Cents(m.DepositCents),
		Location:    catalog.Location{City: m.City, Lat: m.Lat, Lng: m.Lng},
		Active:      m.Active,
	}
}

// toDomainListing expects Item and Item.Images to be preloaded.
func toDomainListing(m *ListingModel) *catalog.Listing {
	var cover string
	if len(m.Item.Images) > 0 {
		cover = m.Item.Images[0].Path
	}
	return catalog.ReconstructListing(m.ID, m.ItemID, listingTerms(m), m.Item.OwnerID, m.Item.Title, cover, m.CreatedAt, m.UpdatedAt)
}

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:              bk.ID(),
		ListingID:       bk.ListingID(),
		RenterID:        bk.RenterID(),
		StartDate:       bk.Period().Start,
		EndDate:         bk.Period().End,
		TotalPriceCents: bk.TotalPrice().Int64(),
		Status:          string(bk.Status()),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	period := bookingDomain.DateRange{Start: m.StartDate, End: m.EndDate}
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.ListingID,
		m.RenterID,
		period,
		money.Cents(m.TotalPriceCents),
		bookingDomain.Status(m.Status),
		m.ListingTitle,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainBookings(models []BookingModel) []*bookingDomain.Booking {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = toDomainBooking(&models[i])
	}
	return bookings
}
