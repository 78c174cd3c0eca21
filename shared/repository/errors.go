package repository

import (
	"errors"

	"dinebook/shared/constant"

	"github.com/lib/pq"
)

// ErrStateConflict is returned by conditional writes that matched no row
// because the row no longer held the expected state.
var ErrStateConflict = errors.New("row state changed concurrently")

func pqError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}

	return nil, false
}

// UniqueViolation reports whether err is a unique constraint violation and
// which constraint fired.
func UniqueViolation(err error) (string, bool) {
	pqErr, ok := pqError(err)
	if !ok || string(pqErr.Code) != constant.PqErrorCodeUniqueViolation {
		return "", false
	}

	return pqErr.Constraint, true
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	pqErr, ok := pqError(err)

	return ok && string(pqErr.Code) == constant.PqErrorCodeFkViolation
}

// IsTxConflict reports serialization failures and deadlocks, both of which
// mean a concurrent transaction won.
func IsTxConflict(err error) bool {
	pqErr, ok := pqError(err)
	if !ok {
		return false
	}

	switch string(pqErr.Code) {
	case constant.PqErrorCodeSerializationFailure, constant.PqErrorCodeDeadlockDetected:
		return true
	default:
		return false
	}
}
