package application

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingDomain "github.com/GearShare/service-rental/internal/domain/booking"
	"github.com/GearShare/service-rental/internal/domain/money"
	"github.com/GearShare/service-rental/internal/events"
	"github.com/GearShare/service-rental/internal/platform/apperror"
	"github.com/GearShare/service-rental/internal/platform/auth"
)

func TestCreateBookingPricesAndPublishes(t *testing.T) {
	f := newRentalFixture(t)

	dto := f.request(t, "2025-06-01", "2025-06-03")
	assert.Equal(t, money.FromUnits(270, 0), dto.TotalPrice)
	assert.Equal(t, string(bookingDomain.StatusPending), dto.Status)
	assert.Equal(t, int64(3), dto.Days)
	assert.Equal(t, "MTB hardtail", dto.ListingTitle)
	assert.Equal(t, f.renter.ID, dto.RenterID)

	require.Equal(t, []string{events.BookingRequested}, f.publisher.types())
	assert.Equal(t, events.TopicBookingEvents, f.publisher.topics[0])

	var payload events.BookingRequestedEvent
	require.NoError(t, f.publisher.events[0].ParseData(&payload))
	assert.Equal(t, dto.ID, payload.BookingID)
	assert.Equal(t, f.owner.ID, payload.OwnerID)
	assert.Equal(t, "2025-06-01", payload.StartDate)
	assert.Equal(t, money.FromUnits(270, 0), payload.TotalPrice)
}

func TestCreateBookingPriceInvariant(t *testing.T) {
	f := newRentalFixture(t)
	odd := f.addListing(t, f.item, money.FromUnits(12, 35), money.FromUnits(0, 99), true)

	cases := []struct {
		start, end string
		days       int64
	}{
		{"2025-01-01", "2025-01-01", 1},
		{"2024-02-28", "2024-03-01", 3},
		{"2025-03-29", "2025-04-02", 5},
		{"2024-12-31", "2025-01-02", 3},
	}
	for _, tc := range cases {
		dto, err := f.bookings.CreateBooking(context.Background(), f.renter.ID, CreateBookingRequest{
			ListingID: odd.ID(), StartDate: tc.start, EndDate: tc.end,
		})
		require.NoError(t, err, tc.start)
		assert.Equal(t, money.Cents(tc.days*1235+99), dto.TotalPrice, tc.start)
	}
}

func TestCreateBookingRejections(t *testing.T) {
	f := newRentalFixture(t)
	inactive := f.addListing(t, f.item, money.FromUnits(10, 0), 0, false)
	pricey := f.addListing(t, f.item, money.FromUnits(30000000000000, 0), 0, true)
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateBookingRequest
		want error
	}{
		{"reversed range", CreateBookingRequest{ListingID: f.listing.ID(), StartDate: "2025-06-03", EndDate: "2025-06-01"}, bookingDomain.ErrInvalidRange},
		{"malformed date", CreateBookingRequest{ListingID: f.listing.ID(), StartDate: "06/01/2025", EndDate: "2025-06-01"}, bookingDomain.ErrInvalidRange},
		{"impossible date", CreateBookingRequest{ListingID: f.listing.ID(), StartDate: "2025-02-30", EndDate: "2025-03-01"}, bookingDomain.ErrInvalidRange},
		{"inactive listing", CreateBookingRequest{ListingID: inactive.ID(), StartDate: "2025-06-01", EndDate: "2025-06-02"}, bookingDomain.ErrListingUnavailable},
		{"unknown listing", CreateBookingRequest{ListingID: uuid.New(), StartDate: "2025-06-01", EndDate: "2025-06-02"}, bookingDomain.ErrListingUnavailable},
		{"reversed range on inactive listing", CreateBookingRequest{ListingID: inactive.ID(), StartDate: "2025-06-02", EndDate: "2025-06-01"}, bookingDomain.ErrInvalidRange},
		{"total beyond int64", CreateBookingRequest{ListingID: pricey.ID(), StartDate: "2000-01-01", EndDate: "9999-12-31"}, bookingDomain.ErrPriceOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.bookings.CreateBooking(ctx, f.renter.ID, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Empty(t, f.publisher.types())
}

func TestPendingDoesNotBlockAcceptedDoes(t *testing.T) {
	f := newRentalFixture(t)
	ctx := context.Background()

	first := f.request(t, "2025-06-01", "2025-06-03")
	second := f.request(t, "2025-06-02", "2025-06-02")
	assert.Equal(t, string(bookingDomain.StatusPending), second.Status)

	require.NoError(t, f.bookings.SetStatus(ctx, first.ID, "accepted", f.owner))

	_, err := f.bookings.CreateBooking(ctx, f.renter.ID, CreateBookingRequest{
		ListingID: f.listing.ID(), StartDate: "2025-06-03", EndDate: "2025-06-04",
	})
	assert.ErrorIs(t, err, bookingDomain.ErrDateConflict)

	adjacent := f.request(t, "2025-06-04", "2025-06-05")
	assert.Equal(t, money.FromUnits(230, 0), adjacent.TotalPrice)

	// Competing pending request stays pending but can no longer be accepted.
	got, err := f.bookings.GetBooking(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusPending), got.Status)
	err = f.bookings.SetStatus(ctx, second.ID, "ACCEPTED", f.owner)
	assert.ErrorIs(t, err, bookingDomain.ErrDateConflict)

	require.NoError(t, f.bookings.SetStatus(ctx, second.ID, "REJECTED", f.owner))
}

func TestSetStatusAuthorization(t *testing.T) {
	f := newRentalFixture(t)
	ctx := context.Background()
	b := f.request(t, "2025-06-01", "2025-06-03")

	otherOwner := newCaller(auth.RoleOwner)
	assert.ErrorIs(t, f.bookings.SetStatus(ctx, b.ID, "ACCEPTED", otherOwner), bookingDomain.ErrForbidden)

	assert.ErrorIs(t, f.bookings.SetStatus(ctx, b.ID, "CANCELLED", f.renter), bookingDomain.ErrForbidden)

	// Authorization is decided before the token is parsed.
	assert.ErrorIs(t, f.bookings.SetStatus(ctx, b.ID, "bogus", otherOwner), bookingDomain.ErrForbidden)

	got, err := f.bookings.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusPending), got.Status)

	require.NoError(t, f.bookings.SetStatus(ctx, b.ID, "ACCEPTED", f.admin))
}

func TestSetStatusErrors(t *testing.T) {
	f := newRentalFixture(t)
	ctx := context.Background()
	b := f.request(t, "2025-06-01", "2025-06-03")

	err := f.bookings.SetStatus(ctx, uuid.New(), "ACCEPTED", f.owner)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)

	for _, token := range []string{"", "PENDING", "approved", "1"} {
		assert.ErrorIs(t, f.bookings.SetStatus(ctx, b.ID, token, f.owner), bookingDomain.ErrUnknownStatus, token)
	}
}

func TestSetStatusReplays(t *testing.T) {
	for _, target := range []string{"ACCEPTED", "REJECTED", "CANCELLED"} {
		t.Run(target, func(t *testing.T) {
			f := newRentalFixture(t)
			ctx := context.Background()
			b := f.request(t, "2025-06-01", "2025-06-03")

			require.NoError(t, f.bookings.SetStatus(ctx, b.ID, target, f.owner))
			require.NoError(t, f.bookings.SetStatus(ctx, b.ID, " "+target+" ", f.owner))

			got, err := f.bookings.GetBooking(ctx, b.ID)
			require.NoError(t, err)
			assert.Equal(t, target, got.Status)
			assert.Equal(t, []string{events.BookingRequested, events.BookingStatusChanged}, f.publisher.types())
		})
	}
}

func TestSetStatusTerminalNeverReverses(t *testing.T) {
	f := newRentalFixture(t)
	ctx := context.Background()
	b := f.request(t, "2025-06-01", "2025-06-03")
	require.NoError(t, f.bookings.SetStatus(ctx, b.ID, "REJECTED", f.owner))

	err := f.bookings.SetStatus(ctx, b.ID, "ACCEPTED", f.owner)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidState, appErr.Code)

	got, err := f.bookings.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", got.Status)
}

func TestStatusChangedEventPayload(t *testing.T) {
	f := newRentalFixture(t)
	ctx := context.Background()
	b := f.request(t, "2025-06-01", "2025-06-03")
	require.NoError(t, f.bookings.SetStatus(ctx, b.ID, "accepted", f.owner))

	require.Len(t, f.publisher.events, 2)
	evt := f.publisher.events[1]
	assert.Equal(t, b.ID.String(), evt.Subject)

	var payload events.BookingStatusChangedEvent
	require.NoError(t, evt.ParseData(&payload))
	assert.Equal(t, "PENDING", payload.From)
	assert.Equal(t, "ACCEPTED", payload.To)
	assert.Equal(t, f.owner.ID, payload.ChangedBy)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	f := newRentalFixture(t)
	f.publisher.err = errBrokerDown
	ctx := context.Background()

	b := f.request(t, "2025-06-01", "2025-06-03")
	require.NoError(t, f.bookings.SetStatus(ctx, b.ID, "ACCEPTED", f.owner))

	got, err := f.bookings.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACCEPTED", got.Status)
}

func TestConcurrentAcceptsOnlyOneWins(t *testing.T) {
	f := newRentalFixture(t)
	ctx := context.Background()

	ids := make([]uuid.UUID, 6)
	for i := range ids {
		ids[i] = f.request(t, "2025-08-01", "2025-08-05").ID
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if err := f.bookings.SetStatus(ctx, id, "ACCEPTED", f.owner); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, bookingDomain.ErrDateConflict)
			}
		}(id)
	}
	wg.Wait()
	assert.Equal(t, 1, accepted)
}

func TestQueryViews(t *testing.T) {
	f := newRentalFixture(t)
	ctx := context.Background()
	older := f.request(t, "2025-05-01", "2025-05-02")
	newer := f.request(t, "2025-07-01", "2025-07-02")
	decided := f.request(t, "2025-09-01", "2025-09-02")
	require.NoError(t, f.bookings.SetStatus(ctx, decided.ID, "REJECTED", f.owner))

	mine, err := f.bookings.MyBookings(ctx, f.renter.ID)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, decided.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[2].ID)

	pending, err := f.bookings.OwnerPendingBookings(ctx, f.owner.ID)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, newer.ID, pending[0].ID)

	others, err := f.bookings.OwnerPendingBookings(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, others)

	// Any authenticated caller can read a single booking.
	_, err = f.bookings.GetBooking(ctx, older.ID)
	assert.NoError(t, err)

	stats, err := f.bookings.GetBookingStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalBookings)
	assert.Equal(t, int64(2), stats.ByStatus["PENDING"])
	assert.Equal(t, int64(1), stats.ByStatus["REJECTED"])
	assert.Equal(t, int64(0), stats.ByStatus["ACCEPTED"])

	page, total, err := f.bookings.ListAllBookings(ctx, AdminBookingQuery{}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)
}

func TestListAllBookingsFilters(t *testing.T) {
	f := newRentalFixture(t)
	ctx := context.Background()
	other := f.addListing(t, f.item, money.FromUnits(25, 0), 0, true)

	june := f.request(t, "2025-06-01", "2025-06-03")
	july := f.request(t, "2025-07-10", "2025-07-12")
	_, err := f.bookings.CreateBooking(ctx, f.renter.ID, CreateBookingRequest{
		ListingID: other.ID(), StartDate: "2025-06-02", EndDate: "2025-06-02",
	})
	require.NoError(t, err)
	require.NoError(t, f.bookings.SetStatus(ctx, june.ID, "accept", f.owner))

	ids := func(list []BookingDTO) []uuid.UUID {
		out := make([]uuid.UUID, len(list))
		for i, b := range list {
			out[i] = b.ID
		}
		return out
	}

	got, total, err := f.bookings.ListAllBookings(ctx, AdminBookingQuery{Status: "accepted"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []uuid.UUID{june.ID}, ids(got))

	got, total, err = f.bookings.ListAllBookings(ctx, AdminBookingQuery{ListingID: f.listing.ID().String()}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.ElementsMatch(t, []uuid.UUID{june.ID, july.ID}, ids(got))

	got, total, err = f.bookings.ListAllBookings(ctx, AdminBookingQuery{
		ListingID: f.listing.ID().String(), From: "2025-06-03", To: "2025-07-09",
	}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []uuid.UUID{june.ID}, ids(got))

	_, _, err = f.bookings.ListAllBookings(ctx, AdminBookingQuery{Status: "maybe"}, 1, 20)
	assert.ErrorIs(t, err, bookingDomain.ErrUnknownStatus)
	_, _, err = f.bookings.ListAllBookings(ctx, AdminBookingQuery{ListingID: "nope"}, 1, 20)
	assert.Equal(t, apperror.CodeValidation, code(t, err))
	_, _, err = f.bookings.ListAllBookings(ctx, AdminBookingQuery{From: "2025-06-01"}, 1, 20)
	assert.ErrorIs(t, err, bookingDomain.ErrInvalidRange)
	_, _, err = f.bookings.ListAllBookings(ctx, AdminBookingQuery{From: "2025-06-05", To: "2025-06-01"}, 1, 20)
	assert.ErrorIs(t, err, bookingDomain.ErrInvalidRange)
}
