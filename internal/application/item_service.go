package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GearShare/service-rental/internal/domain/catalog"
	"github.com/GearShare/service-rental/internal/platform/apperror"
	"github.com/GearShare/service-rental/internal/platform/auth"
)

// ItemRequest is the request DTO for creating or replacing an item.
type ItemRequest struct {
	Title       string `json:"title" binding:"required,max=120"`
	Description string `json:"description" binding:"max=2000"`
	Category    string `json:"category" binding:"required,category"`
	Condition   string `json:"condition" binding:"max=64"`
}

// ItemDTO is the API response representation of an item. Images are
// public paths in display order.
type ItemDTO struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category"`
	Condition     string    `json:"condition"`
	OwnerID       uuid.UUID `json:"ownerId"`
	RatingAvg     *float64  `json:"ratingAvg"`
	Images        []string  `json:"images"`
	ListingsCount int       `json:"listingsCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FileRemover deletes stored files by public path.
type FileRemover interface {
	Delete(ctx context.Context, publicPath string) error
}

// ItemService implements use cases for item management.
type ItemService struct {
	repo   catalog.ItemRepository
	files  FileRemover
	logger *zap.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(repo catalog.ItemRepository, files FileRemover, logger *zap.Logger) *ItemService {
	return &ItemService{repo: repo, files: files, logger: logger}
}

// ListItems returns items newest first, optionally filtered by a text query
// and a category token.
func (s *ItemService) ListItems(ctx context.Context, query, category string) ([]ItemDTO, error) {
	filter := catalog.ItemFilter{Query: query}
	if category != "" {
		c, err := catalog.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		filter.Category = &c
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it)
	}
	return dtos, nil
}

// GetItem returns a single item.
func (s *ItemService) GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toItemDTO(item)
	return &result, nil
}

// CreateItem creates an item owned by the caller.
func (s *ItemService) CreateItem(ctx context.Context, caller auth.Caller, req ItemRequest) (*ItemDTO, error) {
	details, err := itemDetails(req)
	if err != nil {
		return nil, err
	}
	item, err := catalog.NewItem(caller.ID, details)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, item); err != nil {
		s.logger.Error("failed to create item", zap.Error(err))
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.Info("item created",
		zap.String("item_id", item.ID().String()),
		zap.String("owner_id", caller.ID.String()),
	)
	result := toItemDTO(item)
	return &result, nil
}

// UpdateItem replaces an item's details; the caller must own it or be admin.
func (s *ItemService) UpdateItem(ctx context.Context, caller auth.Caller, id uuid.UUID, req ItemRequest) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.IsOwnerOrAdmin(item.OwnerID(), caller.ID, caller.Roles) {
		return apperror.NewForbiddenError("you do not own this item")
	}

	details, err := itemDetails(req)
	if err != nil {
		return err
	}
	if err := item.Update(details); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		s.logger.Error("failed to update item", zap.Error(err))
		return fmt.Errorf("failed to update item: %w", err)
	}

	s.logger.Info("item updated", zap.String("item_id", id.String()))
	return nil
}

// DeleteItem removes an item with its images and listings, then deletes the
// image files. Items whose listings have booking history are kept.
func (s *ItemService) DeleteItem(ctx context.Context, caller auth.Caller, id uuid.UUID) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.IsOwnerOrAdmin(item.OwnerID(), caller.ID, caller.Roles) {
		return apperror.NewForbiddenError("you do not own this item")
	}

	booked, err := s.repo.HasBookings(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check item bookings: %w", err)
	}
	if booked {
		return apperror.NewConflictError("item has bookings and cannot be deleted")
	}

	paths := make([]string, 0, len(item.Images()))
	for _, img := range item.Images() {
		paths = append(paths, img.Path())
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete item", zap.Error(err))
		return fmt.Errorf("failed to delete item: %w", err)
	}

	for _, p := range paths {
		if err := s.files.Delete(ctx, p); err != nil {
			s.logger.Warn("failed to remove image file",
				zap.String("item_id", id.String()),
				zap.String("path", p),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("item deleted", zap.String("item_id", id.String()), zap.Int("images", len(paths)))
	return nil
}

func itemDetails(req ItemRequest) (catalog.ItemDetails, error) {
	category, err := catalog.ParseCategory(req.Category)
	if err != nil {
		return catalog.ItemDetails{}, err
	}
	return catalog.ItemDetails{
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		Condition:   req.Condition,
	}, nil
}

func toItemDTO(item *catalog.Item) ItemDTO {
	images := make([]string, len(item.Images()))
	for i, img := range item.Images() {
		images[i] = img.Path()
	}
	return ItemDTO{
		ID:            item.ID(),
		Title:         item.Title(),
		Description:   item.Description(),
		Category:      string(item.Category()),
		Condition:     item.Condition(),
		OwnerID:       item.OwnerID(),
		RatingAvg:     item.RatingAverage(),
		Images:        images,
		ListingsCount: item.ListingsCount(),
		CreatedAt:     item.CreatedAt(),
	}
}
