// Package memstore is an in-memory implementation of every repository port
// for tests.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GearShare/service-rental/internal/domain/booking"
	"github.com/GearShare/service-rental/internal/domain/catalog"
	"github.com/GearShare/service-rental/internal/platform/auth"
)

type userRec struct {
	id           uuid.UUID
	email        string
	displayName  string
	passwordHash string
	roles        []auth.Role
	createdAt    time.Time
	updatedAt    time.Time
}

type itemRec struct {
	seq       int64
	id        uuid.UUID
	ownerID   uuid.UUID
	details   catalog.ItemDetails
	rating    *float64
	createdAt time.Time
	updatedAt time.Time
}

type imageRec struct {
	id        uuid.UUID
	itemID    uuid.UUID
	path      string
	sortOrder int
	createdAt time.Time
}

type listingRec struct {
	seq       int64
	id        uuid.UUID
	itemID    uuid.UUID
	terms     catalog.ListingTerms
	createdAt time.Time
	updatedAt time.Time
}

type bookingRec struct {
	seq        int64
	id         uuid.UUID
	listingID  uuid.UUID
	renterID   uuid.UUID
	period     booking.DateRange
	totalPrice int64
	status     booking.Status
	createdAt  time.Time
	updatedAt  time.Time
}

// Store holds all records. Data access is guarded by mu; WithListingLock
// additionally serializes writers per listing with a separate mutex so that
// callbacks can use the repositories freely.
type Store struct {
	mu       sync.RWMutex
	seq      int64
	users    map[uuid.UUID]*userRec
	items    map[uuid.UUID]*itemRec
	images   map[uuid.UUID][]*imageRec
	listings map[uuid.UUID]*listingRec
	bookings map[uuid.UUID]*bookingRec

	lockMu sync.Mutex
	locks  map[uuid.UUID]*sync.Mutex
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:    make(map[uuid.UUID]*userRec),
		items:    make(map[uuid.UUID]*itemRec),
		images:   make(map[uuid.UUID][]*imageRec),
		listings: make(map[uuid.UUID]*listingRec),
		bookings: make(map[uuid.UUID]*bookingRec),
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// Users returns the user repository.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Items returns the item repository.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

// Images returns the image repository.
func (s *Store) Images() *ImageRepo { return &ImageRepo{s: s} }

// Listings returns the listing repository, which also serves booking
// snapshots.
func (s *Store) Listings() *ListingRepo { return &ListingRepo{s: s} }

// Bookings returns the booking repository.
func (s *Store) Bookings() *BookingRepo { return &BookingRepo{s: s} }

// WithListingLock runs fn while holding the listing's write lock. There is
// no rollback: fn is expected to write last.
func (s *Store) WithListingLock(ctx context.Context, listingID uuid.UUID, fn func(ctx context.Context, repos booking.TxRepositories) error) error {
	s.lockMu.Lock()
	l, ok := s.locks[listingID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[listingID] = l
	}
	s.lockMu.Unlock()

	l.Lock()
	defer l.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, booking.TxRepositories{Bookings: s.Bookings(), Listings: s.Listings()})
}

var _ booking.Transactor = (*Store)(nil)
