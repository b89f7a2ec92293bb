package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"library-rental-backend/internal/logger"
	"library-rental-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run inside or outside a
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.BookRepository
	repository.BorrowingRepository
	repository.UserRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		BookRepository:         NewBookRepository(db),
		BorrowingRepository:    NewBorrowingRepository(db),
		UserRepository:         NewUserRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

type unitOfWork struct {
	books      repository.BookRepository
	borrowings repository.BorrowingRepository
}

func (u *unitOfWork) Books() repository.BookRepository           { return u.books }
func (u *unitOfWork) Borrowings() repository.BorrowingRepository { return u.borrowings }

// WithinTx implements repository.TxManager.
func (s *Store) WithinTx(ctx context.Context, name string, fn func(ctx context.Context, uow repository.UnitOfWork) error) (err error) {
	logger.TxBegin(name)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.TxResult(name, err)
		return fmt.Errorf("begin %s: %w", name, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			logger.TxResult(name, fmt.Errorf("panic: %v", p))
			panic(p)
		}
	}()

	uow := &unitOfWork{
		books:      NewBookRepository(tx),
		borrowings: NewBorrowingRepository(tx),
	}

	if err = fn(ctx, uow); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Error("Failed to roll back transaction", "tx", name, "error", rbErr)
		}
		logger.TxResult(name, err)
		return err
	}

	if err = tx.Commit(); err != nil {
		logger.TxResult(name, err)
		return fmt.Errorf("commit %s: %w", name, err)
	}
	logger.TxResult(name, nil)
	return nil
}

var _ repository.TxManager = (*Store)(nil)
