package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/GearShare/service-rental/internal/domain/booking"
	"github.com/GearShare/service-rental/internal/domain/catalog"
	"github.com/GearShare/service-rental/internal/domain/money"
	"github.com/GearShare/service-rental/internal/memstore"
	"github.com/GearShare/service-rental/internal/platform/auth"
	"github.com/GearShare/service-rental/internal/platform/kafka"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
	topics []string
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic string, evt kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type rentalFixture struct {
	store     *memstore.Store
	publisher *recordingPublisher
	bookings  *BookingService

	owner   auth.Caller
	renter  auth.Caller
	admin   auth.Caller
	item    *catalog.Item
	listing *catalog.Listing
}

func newCaller(roles ...auth.Role) auth.Caller {
	return auth.Caller{ID: uuid.New(), Roles: roles}
}

// newRentalFixture seeds one active listing at 40.00/day with a 150.00
// deposit.
func newRentalFixture(t *testing.T) *rentalFixture {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	pub := &recordingPublisher{}

	f := &rentalFixture{
		store:     store,
		publisher: pub,
		owner:     newCaller(auth.RoleOwner),
		renter:    newCaller(auth.RoleRenter),
		admin:     newCaller(auth.RoleAdmin),
	}
	f.bookings = NewBookingService(store.Bookings(), store.Listings(), store,
		bookingDomain.NewDailyRatePricing(), pub, zap.NewNop())

	var err error
	f.item, err = catalog.NewItem(f.owner.ID, catalog.ItemDetails{Title: "MTB hardtail", Category: catalog.CategorySports})
	require.NoError(t, err)
	require.NoError(t, store.Items().Save(ctx, f.item))

	f.listing = f.addListing(t, f.item, money.FromUnits(40, 0), money.FromUnits(150, 0), true)
	return f
}

func (f *rentalFixture) addListing(t *testing.T, item *catalog.Item, price, deposit money.Cents, active bool) *catalog.Listing {
	t.Helper()
	l, err := catalog.NewListing(item, catalog.ListingTerms{PricePerDay: price, Deposit: deposit, Active: active})
	require.NoError(t, err)
	require.NoError(t, f.store.Listings().Save(context.Background(), l))
	return l
}

func (f *rentalFixture) request(t *testing.T, start, end string) *BookingDTO {
	t.Helper()
	dto, err := f.bookings.CreateBooking(context.Background(), f.renter.ID, CreateBookingRequest{
		ListingID: f.listing.ID(),
		StartDate: start,
		EndDate:   end,
	})
	require.NoError(t, err)
	return dto
}

var errBrokerDown = errors.New("broker down")
