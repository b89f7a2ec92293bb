package service

import (
	"context"
	"time"

	"library-rental-backend/internal/domain"
)

// BorrowingService owns the borrowing lifecycle and the access-scoped queries over the ledger.
// Every call takes the requester explicitly; nothing is read from request-scoped state.
type BorrowingService interface {
	Create(ctx context.Context, requester domain.Requester, bookID int32, expectedReturn time.Time) (*domain.Borrowing, error)
	Return(ctx context.Context, requester domain.Requester, borrowingID int32) error
	List(ctx context.Context, requester domain.Requester, filter domain.BorrowingFilter) ([]domain.Borrowing, error)
	Retrieve(ctx context.Context, requester domain.Requester, borrowingID int32) (*domain.Borrowing, error)
}

type BookService interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id int32) (*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id int32) error
	ListBooks(ctx context.Context, limit, offset int32) ([]domain.Book, int32, error)
}

type UserService interface {
	GetMe(ctx context.Context, requester domain.Requester) (*domain.User, error)
	UpdateMe(ctx context.Context, requester domain.Requester, firstName, lastName *string) (*domain.User, error)
}

type NotificationService interface {
	ListNotifications(ctx context.Context, limit, offset int32) ([]domain.Notification, int32, error)
}

// NotificationSink delivers a text message to a destination. Delivery and retry semantics belong
// to the sink.
type NotificationSink interface {
	Send(ctx context.Context, destination, message string) error
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps limit into [1, maxPageSize] and offset to >= 0.
func normalizePage(limit, offset int32) (int32, int32) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
