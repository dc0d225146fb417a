package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GearShare/service-rental/internal/domain/catalog"
	"github.com/GearShare/service-rental/internal/imaging"
	"github.com/GearShare/service-rental/internal/platform/apperror"
	"github.com/GearShare/service-rental/internal/platform/auth"
)

// ImageProcessor normalizes raw uploads into storable JPEG bytes.
type ImageProcessor interface {
	Process(r io.Reader) ([]byte, error)
}

// ImageStore persists image files.
type ImageStore interface {
	FileRemover
	SaveItemImage(ctx context.Context, itemID uuid.UUID, data []byte) (string, error)
}

// ErrFileTooLarge is returned when an upload exceeds the configured limit.
var ErrFileTooLarge = apperror.New("FILE_TOO_LARGE", http.StatusRequestEntityTooLarge, "file exceeds the upload size limit")

// ImageDTO is the API response representation of an item image.
type ImageDTO struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"itemId"`
	Path      string    `json:"path"`
	SortOrder int       `json:"sortOrder"`
}

// ImageService handles item image use cases.
type ImageService struct {
	items     catalog.ItemRepository
	images    catalog.ImageRepository
	store     ImageStore
	processor ImageProcessor
	logger    *zap.Logger
}

// NewImageService creates a new ImageService.
func NewImageService(
	items catalog.ItemRepository,
	images catalog.ImageRepository,
	store ImageStore,
	processor ImageProcessor,
	logger *zap.Logger,
) *ImageService {
	return &ImageService{items: items, images: images, store: store, processor: processor, logger: logger}
}

// UploadItemImage processes and stores a picture for an item the caller
// owns, appending it after the existing images.
func (s *ImageService) UploadItemImage(ctx context.Context, caller auth.Caller, itemID uuid.UUID, r io.Reader) (*ImageDTO, error) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !auth.IsOwnerOrAdmin(item.OwnerID(), caller.ID, caller.Roles) {
		return nil, apperror.NewForbiddenError("you do not own this item")
	}

	data, err := s.processor.Process(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return nil, ErrFileTooLarge
		case errors.Is(err, imaging.ErrUnsupportedFormat):
			return nil, apperror.NewValidationError("only JPEG and PNG images are accepted")
		default:
			return nil, fmt.Errorf("failed to process image: %w", err)
		}
	}

	path, err := s.store.SaveItemImage(ctx, itemID, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	img, err := s.record(ctx, itemID, path)
	if err != nil {
		if delErr := s.store.Delete(ctx, path); delErr != nil {
			s.logger.Warn("failed to remove orphaned image file", zap.String("path", path), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	s.logger.Info("item image uploaded",
		zap.String("item_id", itemID.String()),
		zap.String("path", path),
		zap.Int("bytes", len(data)),
	)
	return toImageDTO(img), nil
}

func (s *ImageService) record(ctx context.Context, itemID uuid.UUID, path string) (*catalog.Image, error) {
	order, err := s.images.NextSortOrder(ctx, itemID)
	if err != nil {
		return nil, err
	}
	img, err := catalog.NewImage(itemID, path, order)
	if err != nil {
		return nil, err
	}
	if err := s.images.Save(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

// ListItemImages returns an item's images in display order.
func (s *ImageService) ListItemImages(ctx context.Context, itemID uuid.UUID) ([]*ImageDTO, error) {
	if _, err := s.items.FindByID(ctx, itemID); err != nil {
		return nil, err
	}
	images, err := s.images.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	dtos := make([]*ImageDTO, len(images))
	for i, img := range images {
		dtos[i] = toImageDTO(img)
	}
	return dtos, nil
}

func toImageDTO(img *catalog.Image) *ImageDTO {
	return &ImageDTO{
		ID:        img.ID(),
		ItemID:    img.ItemID(),
		Path:      img.Path(),
		SortOrder: img.SortOrder(),
	}
}
