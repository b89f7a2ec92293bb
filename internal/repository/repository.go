package repository

import (
	"context"
	"time"

	"library-rental-backend/internal/domain"
)

type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	GetByID(ctx context.Context, id int32) (*domain.Book, error)
	// GetByIDForUpdate reads the book and locks its row until the enclosing transaction ends.
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Book, error)
	Update(ctx context.Context, book *domain.Book) error
	// AdjustInventory adds delta to the book's inventory. It fails with domain.ErrBookUnavailable
	// when the result would be negative.
	AdjustInventory(ctx context.Context, id int32, delta int32) (int32, error)
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, limit, offset int32) ([]domain.Book, int32, error)
}

type BorrowingRepository interface {
	Create(ctx context.Context, borrowing *domain.Borrowing) error
	GetByID(ctx context.Context, id int32) (*domain.Borrowing, error)
	// GetByIDForUpdate reads the borrowing and locks its row until the enclosing transaction ends.
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Borrowing, error)
	MarkReturned(ctx context.Context, borrowing *domain.Borrowing) error
	List(ctx context.Context, filter domain.BorrowingFilter) ([]domain.Borrowing, error)
	// ListOverdue returns active borrowings whose expected return date is before today.
	ListOverdue(ctx context.Context, today time.Time) ([]domain.OverdueBorrowing, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	UpdateName(ctx context.Context, user *domain.User) error
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, limit, offset int32) ([]domain.Notification, int32, error)
}

// UnitOfWork exposes repositories bound to one open transaction.
type UnitOfWork interface {
	Books() BookRepository
	Borrowings() BorrowingRepository
}

// TxManager runs fn inside a single database transaction. The transaction commits when fn
// returns nil and rolls back otherwise, including on panic or context cancellation.
type TxManager interface {
	WithinTx(ctx context.Context, name string, fn func(ctx context.Context, uow UnitOfWork) error) error
}
