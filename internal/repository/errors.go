package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	bookingDomain "github.com/GearShare/service-rental/internal/domain/booking"
	"github.com/GearShare/service-rental/internal/platform/apperror"
)

// translateError maps Postgres constraint violations onto application
// errors. Anything else is returned unchanged.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.ExclusionViolation:
		return bookingDomain.ErrDateConflict.Wrap(err)
	case pgerrcode.UniqueViolation:
		return apperror.NewConflictError("resource already exists").Wrap(err)
	case pgerrcode.ForeignKeyViolation:
		return apperror.NewConflictError("referenced resource is missing or still in use").Wrap(err)
	case pgerrcode.CheckViolation:
		return apperror.NewValidationError("value violates a storage constraint").Wrap(err)
	default:
		return err
	}
}
