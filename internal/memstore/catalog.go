package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/GearShare/service-rental/internal/domain/booking"
	"github.com/GearShare/service-rental/internal/domain/catalog"
	"github.com/GearShare/service-rental/internal/platform/apperror"
)

// ItemRepo implements catalog.ItemRepository.
type ItemRepo struct{ s *Store }

var _ catalog.ItemRepository = (*ItemRepo)(nil)

func (r *ItemRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.items[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Item", id.String())
	}
	return r.s.toItem(rec), nil
}

func (r *ItemRepo) List(_ context.Context, filter catalog.ItemFilter) ([]*catalog.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	var recs []*itemRec
	for _, rec := range r.s.items {
		if filter.Category != nil && rec.details.Category != *filter.Category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(rec.details.Title), q) &&
			!strings.Contains(strings.ToLower(rec.details.Description), q) {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })

	items := make([]*catalog.Item, len(recs))
	for i, rec := range recs {
		items[i] = r.s.toItem(rec)
	}
	return items, nil
}

func (r *ItemRepo) Save(_ context.Context, item *catalog.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.items[item.ID()] = &itemRec{
		seq:       r.s.nextSeq(),
		id:        item.ID(),
		ownerID:   item.OwnerID(),
		details:   itemDetailsOf(item),
		rating:    item.RatingAverage(),
		createdAt: item.CreatedAt(),
		updatedAt: item.UpdatedAt(),
	}
	return nil
}

func (r *ItemRepo) Update(_ context.Context, item *catalog.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.items[item.ID()]
	if !ok {
		return apperror.NewNotFoundError("Item", item.ID().String())
	}
	rec.details = itemDetailsOf(item)
	rec.updatedAt = item.UpdatedAt()
	return nil
}

func (r *ItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[id]; !ok {
		return apperror.NewNotFoundError("Item", id.String())
	}
	for lid, l := range r.s.listings {
		if l.itemID == id && r.s.listingHasBookings(lid) {
			return apperror.NewConflictError("item has bookings and cannot be deleted")
		}
	}
	for lid, l := range r.s.listings {
		if l.itemID == id {
			delete(r.s.listings, lid)
		}
	}
	delete(r.s.images, id)
	delete(r.s.items, id)
	return nil
}

func (r *ItemRepo) HasBookings(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for lid, l := range r.s.listings {
		if l.itemID == id && r.s.listingHasBookings(lid) {
			return true, nil
		}
	}
	return false, nil
}

// ImageRepo implements catalog.ImageRepository.
type ImageRepo struct{ s *Store }

var _ catalog.ImageRepository = (*ImageRepo)(nil)

func (r *ImageRepo) Save(_ context.Context, img *catalog.Image) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[img.ItemID()]; !ok {
		return apperror.NewNotFoundError("Item", img.ItemID().String())
	}
	r.s.images[img.ItemID()] = append(r.s.images[img.ItemID()], &imageRec{
		id:        img.ID(),
		itemID:    img.ItemID(),
		path:      img.Path(),
		sortOrder: img.SortOrder(),
		createdAt: img.CreatedAt(),
	})
	return nil
}

func (r *ImageRepo) FindByItemID(_ context.Context, itemID uuid.UUID) ([]*catalog.Image, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.imagesOf(itemID), nil
}

func (r *ImageRepo) NextSortOrder(_ context.Context, itemID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	next := 0
	for _, img := range r.s.images[itemID] {
		if img.sortOrder >= next {
			next = img.sortOrder + 1
		}
	}
	return next, nil
}

// ListingRepo implements catalog.ListingRepository and booking.ListingReader.
type ListingRepo struct{ s *Store }

var (
	_ catalog.ListingRepository = (*ListingRepo)(nil)
	_ booking.ListingReader     = (*ListingRepo)(nil)
)

func (r *ListingRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.listings[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Listing", id.String())
	}
	return r.s.toListing(rec), nil
}

func (r *ListingRepo) List(_ context.Context, itemID *uuid.UUID) ([]*catalog.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var recs []*listingRec
	for _, rec := range r.s.listings {
		if itemID != nil && rec.itemID != *itemID {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })

	out := make([]*catalog.Listing, len(recs))
	for i, rec := range recs {
		out[i] = r.s.toListing(rec)
	}
	return out, nil
}

func (r *ListingRepo) Save(_ context.Context, l *catalog.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[l.ItemID()]; !ok {
		return apperror.NewNotFoundError("Item", l.ItemID().String())
	}
	r.s.listings[l.ID()] = &listingRec{
		seq:       r.s.nextSeq(),
		id:        l.ID(),
		itemID:    l.ItemID(),
		terms:     l.Terms(),
		createdAt: l.CreatedAt(),
		updatedAt: l.UpdatedAt(),
	}
	return nil
}

func (r *ListingRepo) Update(_ context.Context, l *catalog.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.listings[l.ID()]
	if !ok {
		return apperror.NewNotFoundError("Listing", l.ID().String())
	}
	rec.terms = l.Terms()
	rec.updatedAt = l.UpdatedAt()
	return nil
}

func (r *ListingRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.listings[id]; !ok {
		return apperror.NewNotFoundError("Listing", id.String())
	}
	if r.s.listingHasBookings(id) {
		return apperror.NewConflictError("listing has bookings and cannot be deleted")
	}
	delete(r.s.listings, id)
	return nil
}

func (r *ListingRepo) HasBookings(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.listingHasBookings(id), nil
}

// GetListingWithItem returns nil, nil for unknown listings.
func (r *ListingRepo) GetListingWithItem(_ context.Context, listingID uuid.UUID) (*booking.ListingSnapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.listings[listingID]
	if !ok {
		return nil, nil
	}
	snap := &booking.ListingSnapshot{
		ID:          rec.id,
		Active:      rec.terms.Active,
		PricePerDay: rec.terms.PricePerDay,
		Deposit:     rec.terms.Deposit,
	}
	if item, ok := r.s.items[rec.itemID]; ok {
		snap.ItemOwnerID = item.ownerID
		snap.ItemTitle = item.details.Title
	}
	return snap, nil
}

// --- record conversion, callers hold mu ---

func itemDetailsOf(item *catalog.Item) catalog.ItemDetails {
	return catalog.ItemDetails{
		Title:       item.Title(),
		Description: item.Description(),
		Category:    item.Category(),
		Condition:   item.Condition(),
	}
}

func (s *Store) listingHasBookings(listingID uuid.UUID) bool {
	for _, b := range s.bookings {
		if b.listingID == listingID {
			return true
		}
	}
	return false
}

func (s *Store) imagesOf(itemID uuid.UUID) []*catalog.Image {
	recs := append([]*imageRec(nil), s.images[itemID]...)
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].sortOrder < recs[j].sortOrder })
	out := make([]*catalog.Image, len(recs))
	for i, rec := range recs {
		out[i] = catalog.ReconstructImage(rec.id, rec.itemID, rec.path, rec.sortOrder, rec.createdAt)
	}
	return out
}

func (s *Store) toItem(rec *itemRec) *catalog.Item {
	count := 0
	for _, l := range s.listings {
		if l.itemID == rec.id {
			count++
		}
	}
	return catalog.ReconstructItem(rec.id, rec.ownerID, rec.details, rec.rating, s.imagesOf(rec.id), count, rec.createdAt, rec.updatedAt)
}

func (s *Store) toListing(rec *listingRec) *catalog.Listing {
	var (
		ownerID uuid.UUID
		title   string
		cover   string
	)
	if item, ok := s.items[rec.itemID]; ok {
		ownerID = item.ownerID
		title = item.details.Title
		if imgs := s.imagesOf(item.id); len(imgs) > 0 {
			cover = imgs[0].Path()
		}
	}
	return catalog.ReconstructListing(rec.id, rec.itemID, rec.terms, ownerID, title, cover, rec.createdAt, rec.updatedAt)
}
