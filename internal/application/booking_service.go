package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/GearShare/service-rental/internal/domain/booking"
	"github.com/GearShare/service-rental/internal/domain/money"
	"github.com/GearShare/service-rental/internal/events"
	"github.com/GearShare/service-rental/internal/platform/apperror"
	"github.com/GearShare/service-rental/internal/platform/auth"
	"github.com/GearShare/service-rental/internal/platform/kafka"
)

// EventPublisher sends CloudEvents to the bus.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, evt kafka.CloudEvent) error
}

// CreateBookingRequest holds the data needed to request a booking.
type CreateBookingRequest struct {
	ListingID uuid.UUID `json:"listingId" binding:"required"`
	StartDate string    `json:"startDate" binding:"required"`
	EndDate   string    `json:"endDate" binding:"required"`
}

// UpdateStatusRequest carries the wire status token.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID           uuid.UUID          `json:"id"`
	ListingID    uuid.UUID          `json:"listingId"`
	ListingTitle string             `json:"listingTitle,omitempty"`
	RenterID     uuid.UUID          `json:"renterId"`
	StartDate    bookingDomain.Date `json:"startDate"`
	EndDate      bookingDomain.Date `json:"endDate"`
	Days         int64              `json:"days"`
	TotalPrice   money.Cents        `json:"totalPrice"`
	Status       string             `json:"status"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"totalBookings"`
	ByStatus      map[string]int64 `json:"byStatus"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	bookings  bookingDomain.BookingRepository
	listings  bookingDomain.ListingReader
	tx        bookingDomain.Transactor
	pricing   bookingDomain.PricingStrategy
	publisher EventPublisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	listings bookingDomain.ListingReader,
	tx bookingDomain.Transactor,
	pricing bookingDomain.PricingStrategy,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		listings:  listings,
		tx:        tx,
		pricing:   pricing,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateBooking validates a request against the listing and its accepted
// bookings, prices it and stores it as PENDING. The checks run in order and
// the first failure wins: range, listing availability, overlap, day count.
func (s *BookingService) CreateBooking(ctx context.Context, renterID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	period, err := parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	var (
		created *bookingDomain.Booking
		ownerID uuid.UUID
	)
	err = s.tx.WithListingLock(ctx, req.ListingID, func(ctx context.Context, repos bookingDomain.TxRepositories) error {
		listing, err := repos.Listings.GetListingWithItem(ctx, req.ListingID)
		if err != nil {
			return fmt.Errorf("failed to load listing: %w", err)
		}
		if listing == nil || !listing.Active {
			return bookingDomain.ErrListingUnavailable
		}

		overlap, err := repos.Bookings.HasAcceptedOverlap(ctx, listing.ID, period, uuid.Nil)
		if err != nil {
			return fmt.Errorf("failed to check availability: %w", err)
		}
		if overlap {
			return bookingDomain.ErrDateConflict.WithMessage(
				fmt.Sprintf("dates %s overlap an accepted booking", period))
		}

		days := period.Days()
		if days < 1 {
			return bookingDomain.ErrInvalidRange.WithMessage("booking must span at least one day")
		}

		total, err := s.pricing.Calculate(bookingDomain.PricingParams{
			Days:        days,
			PricePerDay: listing.PricePerDay,
			Deposit:     listing.Deposit,
		})
		if err != nil {
			return err
		}

		bk, err := bookingDomain.NewBooking(listing.ID, renterID, period, total, listing.ItemTitle)
		if err != nil {
			return err
		}
		if err := repos.Bookings.Insert(ctx, bk); err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}

		created = bk
		ownerID = listing.ItemOwnerID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking requested",
		zap.String("booking_id", created.ID().String()),
		zap.String("listing_id", created.ListingID().String()),
		zap.String("period", period.String()),
		zap.String("total", created.TotalPrice().String()),
	)
	s.publishBookingRequested(ctx, created, ownerID)

	result := toBookingDTO(created)
	return &result, nil
}

// SetStatus moves a booking out of PENDING on behalf of the listing owner or
// an admin. Accepting re-checks overlap against other accepted bookings
// while holding the listing lock, so two overlapping requests can never both
// be accepted. Repeating the booking's current terminal status is a no-op.
func (s *BookingService) SetStatus(ctx context.Context, bookingID uuid.UUID, statusToken string, caller auth.Caller) error {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}

	listing, err := s.listings.GetListingWithItem(ctx, bk.ListingID())
	if err != nil {
		return fmt.Errorf("failed to load listing: %w", err)
	}
	var ownerID uuid.UUID
	if listing != nil {
		ownerID = listing.ItemOwnerID
	}
	if !auth.IsOwnerOrAdmin(ownerID, caller.ID, caller.Roles) {
		return bookingDomain.ErrForbidden
	}

	target, err := bookingDomain.ParseTargetStatus(statusToken)
	if err != nil {
		return err
	}

	var (
		from    bookingDomain.Status
		changed bool
	)
	err = s.tx.WithListingLock(ctx, bk.ListingID(), func(ctx context.Context, repos bookingDomain.TxRepositories) error {
		current, err := repos.Bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		from = current.Status()

		changed, err = current.TransitionTo(target)
		if err != nil || !changed {
			return err
		}

		if target.BlocksDates() {
			overlap, err := repos.Bookings.HasAcceptedOverlap(ctx, current.ListingID(), current.Period(), current.ID())
			if err != nil {
				return fmt.Errorf("failed to check availability: %w", err)
			}
			if overlap {
				return bookingDomain.ErrDateConflict.WithMessage(
					fmt.Sprintf("dates %s overlap an accepted booking", current.Period()))
			}
		}

		return repos.Bookings.UpdateStatus(ctx, current.ID(), from, target)
	})
	if err != nil {
		return err
	}

	if !changed {
		s.logger.Debug("status unchanged, replay ignored",
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(target)),
		)
		return nil
	}

	s.logger.Info("booking status changed",
		zap.String("booking_id", bookingID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.String("by", caller.ID.String()),
	)
	s.publishEvent(ctx, events.BookingStatusChanged, bookingID.String(), events.BookingStatusChangedEvent{
		BookingID:  bookingID,
		ListingID:  bk.ListingID(),
		RenterID:   bk.RenterID(),
		From:       string(from),
		To:         string(target),
		ChangedBy:  caller.ID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// GetBooking retrieves a single booking by ID. Any authenticated caller may
// read any booking.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// MyBookings returns the caller's own bookings, latest start date first.
func (s *BookingService) MyBookings(ctx context.Context, renterID uuid.UUID) ([]BookingDTO, error) {
	bookings, err := s.bookings.FindByRenter(ctx, renterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list renter bookings: %w", err)
	}
	return toBookingDTOs(bookings), nil
}

// OwnerPendingBookings returns pending requests on the caller's listings.
func (s *BookingService) OwnerPendingBookings(ctx context.Context, ownerID uuid.UUID) ([]BookingDTO, error) {
	bookings, err := s.bookings.FindPendingByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner bookings: %w", err)
	}
	return toBookingDTOs(bookings), nil
}

// --- Admin methods ---

// AdminBookingQuery holds the optional admin list filters as received on
// the wire. From and To must be given together.
type AdminBookingQuery struct {
	Status    string
	ListingID string
	From      string
	To        string
}

func (q AdminBookingQuery) toFilter() (bookingDomain.ListFilter, error) {
	var f bookingDomain.ListFilter
	if raw := strings.TrimSpace(q.Status); raw != "" {
		st := bookingDomain.Status(strings.ToUpper(raw))
		if !st.IsValid() {
			return f, bookingDomain.ErrUnknownStatus.WithMessage("unknown booking status: " + raw)
		}
		f.Status = &st
	}
	if raw := strings.TrimSpace(q.ListingID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, apperror.NewValidationError("invalid listingId")
		}
		f.ListingID = &id
	}
	if (q.From == "") != (q.To == "") {
		return f, bookingDomain.ErrInvalidRange.WithMessage("from and to must be given together")
	}
	if q.From != "" {
		window, err := parsePeriod(q.From, q.To)
		if err != nil {
			return f, err
		}
		f.Within = &window
	}
	return f, nil
}

// ListAllBookings returns a filtered, paginated list of bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, query AdminBookingQuery, page, limit int) ([]BookingDTO, int64, error) {
	filter, err := query.toFilter()
	if err != nil {
		return nil, 0, err
	}
	bookings, total, err := s.bookings.ListAll(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	stats := &BookingStatsDTO{ByStatus: make(map[string]int64, len(bookingDomain.AllStatuses()))}
	for _, st := range bookingDomain.AllStatuses() {
		stats.ByStatus[string(st)] = counts[st]
		stats.TotalBookings += counts[st]
	}
	return stats, nil
}

// --- Helpers ---

func parsePeriod(startRaw, endRaw string) (bookingDomain.DateRange, error) {
	start, err := bookingDomain.ParseDate(strings.TrimSpace(startRaw))
	if err != nil {
		return bookingDomain.DateRange{}, bookingDomain.ErrInvalidRange.WithMessage("startDate: " + err.Error())
	}
	end, err := bookingDomain.ParseDate(strings.TrimSpace(endRaw))
	if err != nil {
		return bookingDomain.DateRange{}, bookingDomain.ErrInvalidRange.WithMessage("endDate: " + err.Error())
	}
	return bookingDomain.NewDateRange(start, end)
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:           bk.ID(),
		ListingID:    bk.ListingID(),
		ListingTitle: bk.ListingTitle(),
		RenterID:     bk.RenterID(),
		StartDate:    bk.Period().Start,
		EndDate:      bk.Period().End,
		Days:         bk.Period().Days(),
		TotalPrice:   bk.TotalPrice(),
		Status:       string(bk.Status()),
		CreatedAt:    bk.CreatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func (s *BookingService) publishBookingRequested(ctx context.Context, bk *bookingDomain.Booking, ownerID uuid.UUID) {
	evt := events.BookingRequestedEvent{
		BookingID:  bk.ID(),
		ListingID:  bk.ListingID(),
		RenterID:   bk.RenterID(),
		OwnerID:    ownerID,
		StartDate:  bk.Period().Start.String(),
		EndDate:    bk.Period().End.String(),
		TotalPrice: bk.TotalPrice(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingRequested, bk.ID().String(), evt)
}

// publishEvent never fails the caller; the booking is already committed.
func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data any) {
	cloudEvent, err := kafka.NewCloudEvent(events.Source, eventType, key, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
