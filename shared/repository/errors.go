package repository

import (
	"errors"
	"meetflow/shared/constant"

	"github.com/lib/pq"
)

// IsConstraintViolation reports whether err carries a unique or exclusion violation.
func IsConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	code := string(pqErr.Code)

	return code == constant.PqErrorCodeUniqueViolation || code == constant.PqErrorCodeExclusionViolation
}

// ViolatedConstraint returns the constraint name reported by postgres, if any.
func ViolatedConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}

	return ""
}
