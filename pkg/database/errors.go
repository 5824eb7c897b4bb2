package database

import (
	"errors"

	"github.com/lib/pq"

	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

// Postgres SQLSTATE codes surfaced to clients.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeExclusionViolation  = "23P01"
	CodeCheckViolation      = "23514"
)

// ClassifyError maps integrity violations reported by Postgres onto typed
// application errors. Any other error is returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case CodeUniqueViolation:
		return appErrors.Wrap(err, appErrors.ErrDuplicate.Code, appErrors.ErrDuplicate.Status, duplicateMessage(pqErr))
	case CodeForeignKeyViolation:
		return appErrors.Wrap(err, appErrors.ErrIntegrity.Code, appErrors.ErrIntegrity.Status, appErrors.ErrIntegrity.Message)
	case CodeExclusionViolation:
		return appErrors.Wrap(err, appErrors.ErrSchedulingConflict.Code, appErrors.ErrSchedulingConflict.Status, "batch already has a substitution overlapping these dates")
	case CodeCheckViolation:
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "value violates a table constraint")
	default:
		return err
	}
}

// IsUniqueViolation reports whether err is a Postgres unique violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == CodeUniqueViolation
}

func duplicateMessage(pqErr *pq.Error) string {
	if pqErr.Constraint != "" {
		return appErrors.ErrDuplicate.Message + " (" + pqErr.Constraint + ")"
	}
	return appErrors.ErrDuplicate.Message
}
