package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GearShare/service-rental/internal/domain/catalog"
	"github.com/GearShare/service-rental/internal/domain/money"
	"github.com/GearShare/service-rental/internal/platform/apperror"
	"github.com/GearShare/service-rental/internal/platform/auth"
)

// CreateListingRequest is the request DTO for offering an item.
type CreateListingRequest struct {
	ItemID uuid.UUID `json:"itemId" binding:"required"`
	ListingTermsRequest
}

// ListingTermsRequest carries the editable listing fields.
type ListingTermsRequest struct {
	PricePerDay  money.Cents `json:"pricePerDay" binding:"required,gt=0"`
	Deposit      money.Cents `json:"deposit" binding:"gte=0"`
	LocationCity string      `json:"locationCity" binding:"max=120"`
	LocationLat  *float64    `json:"locationLat" binding:"omitempty,latitude"`
	LocationLng  *float64    `json:"locationLng" binding:"omitempty,longitude"`
	Active       *bool       `json:"active"`
}

func (r ListingTermsRequest) terms() catalog.ListingTerms {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return catalog.ListingTerms{
		PricePerDay: r.PricePerDay,
		Deposit:     r.Deposit,
		Location:    catalog.Location{City: r.LocationCity, Lat: r.LocationLat, Lng: r.LocationLng},
		Active:      active,
	}
}

// ListingDTO is the API response representation of a listing.
type ListingDTO struct {
	ID           uuid.UUID   `json:"id"`
	ItemID       uuid.UUID   `json:"itemId"`
	ItemTitle    string      `json:"itemTitle,omitempty"`
	CoverImage   string      `json:"coverImage,omitempty"`
	PricePerDay  money.Cents `json:"pricePerDay"`
	Deposit      money.Cents `json:"deposit"`
	LocationCity string      `json:"locationCity,omitempty"`
	LocationLat  *float64    `json:"locationLat,omitempty"`
	LocationLng  *float64    `json:"locationLng,omitempty"`
	Active       bool        `json:"active"`
}

// ListingService implements use cases for listing management.
type ListingService struct {
	listings catalog.ListingRepository
	items    catalog.ItemRepository
	logger   *zap.Logger
}

// NewListingService creates a new ListingService.
func NewListingService(listings catalog.ListingRepository, items catalog.ItemRepository, logger *zap.Logger) *ListingService {
	return &ListingService{listings: listings, items: items, logger: logger}
}

// ListListings returns listings newest first, optionally for one item.
func (s *ListingService) ListListings(ctx context.Context, itemID *uuid.UUID) ([]ListingDTO, error) {
	listings, err := s.listings.List(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	dtos := make([]ListingDTO, len(listings))
	for i, l := range listings {
		dtos[i] = toListingDTO(l)
	}
	return dtos, nil
}

// GetListing returns a single listing.
func (s *ListingService) GetListing(ctx context.Context, id uuid.UUID) (*ListingDTO, error) {
	l, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toListingDTO(l)
	return &result, nil
}

// CreateListing offers an item the caller owns.
func (s *ListingService) CreateListing(ctx context.Context, caller auth.Caller, req CreateListingRequest) (*ListingDTO, error) {
	item, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) && appErr.Code == apperror.CodeNotFound {
			return nil, apperror.NewValidationError("item not found")
		}
		return nil, err
	}
	if !auth.IsOwnerOrAdmin(item.OwnerID(), caller.ID, caller.Roles) {
		return nil, apperror.NewForbiddenError("you do not own this item")
	}

	listing, err := catalog.NewListing(item, req.terms())
	if err != nil {
		return nil, err
	}
	if err := s.listings.Save(ctx, listing); err != nil {
		s.logger.Error("failed to create listing", zap.Error(err))
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.logger.Info("listing created",
		zap.String("listing_id", listing.ID().String()),
		zap.String("item_id", item.ID().String()),
		zap.String("price_per_day", listing.PricePerDay().String()),
	)
	result := toListingDTO(listing)
	return &result, nil
}

// UpdateListing replaces a listing's terms.
func (s *ListingService) UpdateListing(ctx context.Context, caller auth.Caller, id uuid.UUID, req ListingTermsRequest) error {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.IsOwnerOrAdmin(listing.ItemOwnerID(), caller.ID, caller.Roles) {
		return apperror.NewForbiddenError("you do not own this listing")
	}
	if err := listing.Update(req.terms()); err != nil {
		return err
	}
	if err := s.listings.Update(ctx, listing); err != nil {
		s.logger.Error("failed to update listing", zap.Error(err))
		return fmt.Errorf("failed to update listing: %w", err)
	}

	s.logger.Info("listing updated",
		zap.String("listing_id", id.String()),
		zap.Bool("active", listing.Active()),
	)
	return nil
}

// DeleteListing removes a listing that has no booking history.
func (s *ListingService) DeleteListing(ctx context.Context, caller auth.Caller, id uuid.UUID) error {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.IsOwnerOrAdmin(listing.ItemOwnerID(), caller.ID, caller.Roles) {
		return apperror.NewForbiddenError("you do not own this listing")
	}

	booked, err := s.listings.HasBookings(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check listing bookings: %w", err)
	}
	if booked {
		return apperror.NewConflictError("listing has bookings and cannot be deleted; deactivate it instead")
	}

	if err := s.listings.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	s.logger.Info("listing deleted", zap.String("listing_id", id.String()))
	return nil
}

func toListingDTO(l *catalog.Listing) ListingDTO {
	loc := l.Location()
	return ListingDTO{
		ID:           l.ID(),
		ItemID:       l.ItemID(),
		ItemTitle:    l.ItemTitle(),
		CoverImage:   l.CoverImage(),
		PricePerDay:  l.PricePerDay(),
		Deposit:      l.Deposit(),
		LocationCity: loc.City,
		LocationLat:  loc.Lat,
		LocationLng:  loc.Lng,
		Active:       l.Active(),
	}
}
