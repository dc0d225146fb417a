package booking

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GearShare/service-rental/internal/domain/money"
	"github.com/GearShare/service-rental/internal/platform/apperror"
)

func period(start, end string) DateRange {
	return DateRange{Start: MustParseDate(start), End: MustParseDate(end)}
}

func TestNewBookingStartsPending(t *testing.T) {
	b, err := NewBooking(uuid.New(), uuid.New(), period("2025-06-01", "2025-06-03"), money.FromUnits(270, 0), "MTB")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, b.Status())
	assert.Equal(t, money.Cents(27000), b.TotalPrice())
	assert.NotEqual(t, uuid.Nil, b.ID())
}

func TestNewBookingValidation(t *testing.T) {
	_, err := NewBooking(uuid.Nil, uuid.New(), period("2025-06-01", "2025-06-01"), 100, "")
	assert.Error(t, err)

	_, err = NewBooking(uuid.New(), uuid.New(), period("2025-06-02", "2025-06-01"), 100, "")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestTransitionTo(t *testing.T) {
	for _, target := range []Status{StatusAccepted, StatusRejected, StatusCancelled} {
		t.Run(string(target), func(t *testing.T) {
			b, err := NewBooking(uuid.New(), uuid.New(), period("2025-06-01", "2025-06-01"), 100, "")
			require.NoError(t, err)

			changed, err := b.TransitionTo(target)
			require.NoError(t, err)
			assert.True(t, changed)
			assert.Equal(t, target, b.Status())
			assert.Equal(t, money.Cents(100), b.TotalPrice())

			changed, err = b.TransitionTo(target)
			require.NoError(t, err, "replaying the same terminal status is a no-op")
			assert.False(t, changed)
		})
	}
}

func TestTerminalStatesNeverReverse(t *testing.T) {
	for _, from := range []Status{StatusAccepted, StatusRejected, StatusCancelled} {
		for _, to := range AllStatuses() {
			if from == to {
				continue
			}
			b := ReconstructBooking(uuid.New(), uuid.New(), uuid.New(), period("2025-06-01", "2025-06-01"), 100, from, "", time.Time{}, time.Time{})
			_, err := b.TransitionTo(to)
			appErr, ok := apperror.As(err)
			require.True(t, ok, "%s -> %s", from, to)
			assert.Equal(t, apperror.CodeInvalidState, appErr.Code)
			assert.Equal(t, from, b.Status())
		}
	}
}

func TestParseTargetStatus(t *testing.T) {
	for token, want := range map[string]Status{
		"ACCEPTED":   StatusAccepted,
		"accepted":   StatusAccepted,
		" Rejected ": StatusRejected,
		"cancelled":  StatusCancelled,
	} {
		got, err := ParseTargetStatus(token)
		require.NoError(t, err, token)
		assert.Equal(t, want, got)
	}

	for _, token := range []string{"", "PENDING", "pending", "approved", "CANCELED"} {
		_, err := ParseTargetStatus(token)
		assert.ErrorIs(t, err, ErrUnknownStatus, token)
	}
}

func TestDailyRatePricing(t *testing.T) {
	p := NewDailyRatePricing()

	total, err := p.Calculate(PricingParams{Days: 3, PricePerDay: money.FromUnits(40, 0), Deposit: money.FromUnits(150, 0)})
	require.NoError(t, err)
	assert.Equal(t, "270.00", total.String())

	total, err = p.Calculate(PricingParams{Days: 7, PricePerDay: money.FromUnits(12, 99), Deposit: 0})
	require.NoError(t, err)
	assert.Equal(t, money.Cents(9093), total)

	_, err = p.Calculate(PricingParams{Days: 0, PricePerDay: 100})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestDailyRatePricingRejectsOverflow(t *testing.T) {
	p := NewDailyRatePricing()
	half := money.Cents(math.MaxInt64 / 2)

	total, err := p.Calculate(PricingParams{Days: 2, PricePerDay: half, Deposit: 1})
	require.NoError(t, err)
	assert.Equal(t, money.Cents(math.MaxInt64), total)

	_, err = p.Calculate(PricingParams{Days: 2, PricePerDay: half, Deposit: 2})
	assert.ErrorIs(t, err, ErrPriceOutOfRange)

	// 0001-01-01 through 9999-12-31 at a large daily rate.
	_, err = p.Calculate(PricingParams{Days: 3652059, PricePerDay: money.FromUnits(30000000000000, 0)})
	assert.ErrorIs(t, err, ErrPriceOutOfRange)
}
