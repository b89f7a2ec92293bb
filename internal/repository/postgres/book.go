package postgres

import (
	"context"
	"fmt"

	"library-rental-backend/internal/domain"
	"library-rental-backend/internal/logger"
	"library-rental-backend/internal/repository"
)

// daily_fee is stored as NUMERIC(5,2); the application works in cents.
const bookColumns = `id, title, author, cover, inventory, (daily_fee * 100)::int`

type bookRepository struct {
	db DBTX
}

func NewBookRepository(db DBTX) repository.BookRepository {
	return &bookRepository{db: db}
}

func scanBook(row interface{ Scan(...any) error }, b *domain.Book) error {
	return row.Scan(&b.ID, &b.Title, &b.Author, &b.Cover, &b.Inventory, &b.DailyFeeCents)
}

func (r *bookRepository) Create(ctx context.Context, b *domain.Book) error {
	query := `INSERT INTO books (title, author, cover, inventory, daily_fee)
	          VALUES ($1, $2, $3, $4, $5::numeric / 100) RETURNING id`
	logger.DatabaseCall("INSERT", "books", "title", b.Title)
	err := r.db.QueryRowContext(ctx, query, b.Title, b.Author, b.Cover, b.Inventory, b.DailyFeeCents).Scan(&b.ID)
	logger.DatabaseResult("INSERT", 1, err, "bookID", b.ID)
	return err
}

func (r *bookRepository) GetByID(ctx context.Context, id int32) (*domain.Book, error) {
	b := &domain.Book{}
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	if err := scanBook(r.db.QueryRowContext(ctx, query, id), b); err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

func (r *bookRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Book, error) {
	b := &domain.Book{}
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1 FOR UPDATE`
	logger.DatabaseCall("SELECT FOR UPDATE", "books", "bookID", id)
	if err := scanBook(r.db.QueryRowContext(ctx, query, id), b); err != nil {
		err = notFound(err)
		logger.DatabaseResult("SELECT FOR UPDATE", 0, err, "bookID", id)
		return nil, err
	}
	logger.DatabaseResult("SELECT FOR UPDATE", 1, nil, "bookID", id, "inventory", b.Inventory)
	return b, nil
}

func (r *bookRepository) Update(ctx context.Context, b *domain.Book) error {
	query := `UPDATE books SET title = $1, author = $2, cover = $3, inventory = $4, daily_fee = $5::numeric / 100 WHERE id = $6`
	logger.DatabaseCall("UPDATE", "books", "bookID", b.ID)
	res, err := r.db.ExecContext(ctx, query, b.Title, b.Author, b.Cover, b.Inventory, b.DailyFeeCents, b.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "bookID", b.ID)
		return err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err, "bookID", b.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdjustInventory applies delta in a single statement guarded by inventory >= 0, so the counter
// cannot go negative even if a caller forgot to lock the row first.
func (r *bookRepository) AdjustInventory(ctx context.Context, id int32, delta int32) (int32, error) {
	query := `UPDATE books SET inventory = inventory + $1 WHERE id = $2 AND inventory + $1 >= 0 RETURNING inventory`
	logger.DatabaseCall("UPDATE", "books", "bookID", id, "delta", delta)

	var inventory int32
	err := r.db.QueryRowContext(ctx, query, delta, id).Scan(&inventory)
	if err != nil {
		err = notFound(err)
		if err == domain.ErrNotFound {
			// Row exists (callers lock it first) but the guard rejected the change.
			err = domain.ErrBookUnavailable
		}
		logger.DatabaseResult("UPDATE", 0, err, "bookID", id)
		return 0, err
	}
	logger.DatabaseResult("UPDATE", 1, nil, "bookID", id, "inventory", inventory)
	return inventory, nil
}

func (r *bookRepository) Delete(ctx context.Context, id int32) error {
	logger.DatabaseCall("DELETE", "books", "bookID", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			err = domain.ErrBookInUse
		}
		logger.DatabaseResult("DELETE", 0, err, "bookID", id)
		return err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("DELETE", n, err, "bookID", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *bookRepository) List(ctx context.Context, limit, offset int32) ([]domain.Book, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM books`).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + bookColumns + ` FROM books ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	books := []domain.Book{}
	for rows.Next() {
		var b domain.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, 0, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return books, count, nil
}
