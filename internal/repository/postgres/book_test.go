package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-rental-backend/internal/domain"
	"library-rental-backend/internal/repository/postgres"
)

var bookCols = []string{"id", "title", "author", "cover", "inventory", "daily_fee"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestBookRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookRepository(db)

	book := &domain.Book{Title: "Dune", Author: "Frank Herbert", Cover: domain.BookCoverHard, Inventory: 2, DailyFeeCents: 199}
	mock.ExpectQuery("INSERT INTO books").
		WithArgs("Dune", "Frank Herbert", domain.BookCoverHard, int32(2), int32(199)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	err := repo.Create(context.Background(), book)
	assert.NoError(t, err)
	assert.Equal(t, int32(11), book.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM books WHERE id = \\$1").
			WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows(bookCols).AddRow(1, "Dune", "Frank Herbert", "Soft", 0, 199))

		book, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.BookCoverSoft, book.Cover)
		assert.True(t, book.OutOfBooks())
		assert.Equal(t, int32(199), book.DailyFeeCents)
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM books WHERE id = \\$1").
			WithArgs(int32(2)).
			WillReturnError(sql.ErrNoRows)

		book, err := repo.GetByID(ctx, 2)
		assert.Nil(t, book)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookRepository_GetByIDForUpdate(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM books WHERE id = \\$1 FOR UPDATE").
		WithArgs(int32(3)).
		WillReturnRows(sqlmock.NewRows(bookCols).AddRow(3, "Emma", "Jane Austen", "Hard", 4, 50))

	book, err := repo.GetByIDForUpdate(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int32(4), book.Inventory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_AdjustInventory(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookRepository(db)
	ctx := context.Background()

	t.Run("Decrement", func(t *testing.T) {
		mock.ExpectQuery("UPDATE books SET inventory = inventory \\+ \\$1 WHERE id = \\$2 AND inventory \\+ \\$1 >= 0 RETURNING inventory").
			WithArgs(int32(-1), int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"inventory"}).AddRow(0))

		inv, err := repo.AdjustInventory(ctx, 1, -1)
		assert.NoError(t, err)
		assert.Equal(t, int32(0), inv)
	})

	t.Run("Guard rejects negative inventory", func(t *testing.T) {
		mock.ExpectQuery("UPDATE books SET inventory").
			WithArgs(int32(-1), int32(1)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.AdjustInventory(ctx, 1, -1)
		assert.ErrorIs(t, err, domain.ErrBookUnavailable)
	})
}

func TestBookRepository_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookRepository(db)

	book := &domain.Book{ID: 9, Title: "T", Author: "A", Cover: domain.BookCoverSoft, Inventory: 1, DailyFeeCents: 100}
	mock.ExpectExec("UPDATE books SET title").
		WithArgs("T", "A", domain.BookCoverSoft, int32(1), int32(100), int32(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), book)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookRepository_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM books WHERE id = \\$1").
			WithArgs(int32(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Delete(ctx, 1))
	})

	t.Run("Referenced by borrowings", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM books WHERE id = \\$1").
			WithArgs(int32(2)).
			WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})
		assert.ErrorIs(t, repo.Delete(ctx, 2), domain.ErrBookInUse)
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM books WHERE id = \\$1").
			WithArgs(int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Delete(ctx, 3), domain.ErrNotFound)
	})
}

func TestBookRepository_List(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookRepository(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM books").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT (.+) FROM books ORDER BY id LIMIT \\$1 OFFSET \\$2").
		WithArgs(int32(10), int32(0)).
		WillReturnRows(sqlmock.NewRows(bookCols).
			AddRow(1, "Dune", "Frank Herbert", "Hard", 1, 199).
			AddRow(2, "Emma", "Jane Austen", "Soft", 0, 250))

	books, count, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(2), count)
	assert.Len(t, books, 2)
	assert.Equal(t, "Emma", books[1].Title)
}
