package booking

import (
	"strings"

	"github.com/GearShare/service-rental/internal/platform/apperror"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// validTransitions is the booking state machine. Every state other than
// PENDING is terminal.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted:  {},
	StatusRejected:  {},
	StatusCancelled: {},
}

// AllStatuses lists every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusAccepted, StatusRejected, StatusCancelled}
}

// IsValid returns true if the status is a recognized booking status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from s to target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// BlocksDates reports whether a booking in this status reserves its range.
func (s Status) BlocksDates() bool {
	return s == StatusAccepted
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a stored value to a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", apperror.NewValidationError("invalid booking status: " + s)
	}
	return status, nil
}

// ParseTargetStatus parses a wire token naming the status a booking should
// move to. Matching is case-insensitive; only ACCEPTED, REJECTED and
// CANCELLED are accepted.
func ParseTargetStatus(token string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(token))); s {
	case StatusAccepted, StatusRejected, StatusCancelled:
		return s, nil
	default:
		return "", ErrUnknownStatus.WithMessage("unknown booking status: " + strings.TrimSpace(token))
	}
}
