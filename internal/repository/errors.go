package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a requested record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when the email unique index rejects an insert.
	ErrDuplicateEmail = errors.New("email already submitted")

	// ErrWeeklyCapReached is returned when the conditional counter increment
	// finds the week already full.
	ErrWeeklyCapReached = errors.New("weekly cap reached")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
