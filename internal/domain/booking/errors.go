package booking

import (
	"net/http"

	"github.com/GearShare/service-rental/internal/platform/apperror"
)

// Error codes surfaced by the booking engine.
const (
	CodeInvalidRange       = "INVALID_RANGE"
	CodeListingUnavailable = "LISTING_UNAVAILABLE"
	CodeDateConflict       = "DATE_CONFLICT"
	CodeUnknownStatus      = "UNKNOWN_STATUS"
	CodePriceOutOfRange    = "PRICE_OUT_OF_RANGE"
)

// Sentinel errors. Match with errors.Is; wrap with WithMessage for detail.
var (
	ErrInvalidRange       = apperror.New(CodeInvalidRange, http.StatusBadRequest, "invalid date range")
	ErrListingUnavailable = apperror.New(CodeListingUnavailable, http.StatusBadRequest, "listing is missing or inactive")
	ErrDateConflict       = apperror.New(CodeDateConflict, http.StatusConflict, "dates overlap an accepted booking")
	ErrUnknownStatus      = apperror.New(CodeUnknownStatus, http.StatusBadRequest, "unknown booking status")
	ErrPriceOutOfRange    = apperror.New(CodePriceOutOfRange, http.StatusBadRequest, "booking total exceeds the supported amount")
	ErrForbidden          = apperror.NewForbiddenError("only the listing owner or an admin may change this booking")
)
