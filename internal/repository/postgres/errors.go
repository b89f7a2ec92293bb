package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"library-rental-backend/internal/domain"
)

const pqForeignKeyViolation = "23503"

// notFound translates sql.ErrNoRows into domain.ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}
