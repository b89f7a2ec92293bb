package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-rental-backend/internal/domain"
	"library-rental-backend/internal/repository/postgres"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WithArgs(int32(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name", "last_name", "is_staff", "created_on"}).
			AddRow(7, "reader@example.com", "Ada", "Reader", true, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))

	u, err := repo.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.Equal(t, "2026-01-02", u.CreatedOn)

	mock.ExpectQuery("SELECT (.+) FROM users").WithArgs(int32(8)).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(ctx, 8)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_UpdateName(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewUserRepository(db)

	mock.ExpectExec("UPDATE users SET first_name = \\$1, last_name = \\$2 WHERE id = \\$3").
		WithArgs("Ada", "Lovelace", int32(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateName(context.Background(), &domain.User{ID: 7, FirstName: "Ada", LastName: "Lovelace"}))
}
