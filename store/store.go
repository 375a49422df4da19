package store

import (
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

// ErrOptimisticLock is returned when a guarded update matches no rows.
var ErrOptimisticLock = errors.New("optimistic lock failed")

// Builder renders postgres placeholders.
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func IsErrNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func IsErrOptimisticLock(err error) bool {
	return errors.Is(err, ErrOptimisticLock)
}

func IsErrUniqueViolation(err error) bool {
	var e *pq.Error
	return errors.As(err, &e) && e.Code == "23505"
}
