package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"library-rental-backend/internal/domain"
	"library-rental-backend/internal/logger"
	"library-rental-backend/internal/metrics"
	"library-rental-backend/internal/repository"
)

type borrowingService struct {
	tx         repository.TxManager
	borrowings repository.BorrowingRepository
	now        func() time.Time
	metrics    metrics.MetricsCollector
}

type Option func(*borrowingService)

// WithClock overrides the source of "today" for borrow and return dates.
func WithClock(now func() time.Time) Option {
	return func(s *borrowingService) { s.now = now }
}

func WithMetrics(m metrics.MetricsCollector) Option {
	return func(s *borrowingService) { s.metrics = m }
}

// NewBorrowingService builds the lifecycle service. Writes go through tx so the inventory change
// and the ledger change commit together; reads use borrowings directly.
func NewBorrowingService(tx repository.TxManager, borrowings repository.BorrowingRepository, opts ...Option) BorrowingService {
	s := &borrowingService{
		tx:         tx,
		borrowings: borrowings,
		now:        time.Now,
		metrics:    metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *borrowingService) Create(ctx context.Context, requester domain.Requester, bookID int32, expectedReturn time.Time) (*domain.Borrowing, error) {
	logger.EnterMethod("BorrowingService.Create", "userID", requester.UserID, "bookID", bookID)

	if expectedReturn.IsZero() {
		err := domain.Invalidf("expected_return is required")
		logger.ExitMethodWithError("BorrowingService.Create", err)
		return nil, err
	}

	br := &domain.Borrowing{
		BorrowDate:     domain.TruncateToDate(s.now()),
		ExpectedReturn: domain.TruncateToDate(expectedReturn),
		BookID:         bookID,
		UserID:         requester.UserID,
	}

	err := s.tx.WithinTx(ctx, "create borrowing", func(ctx context.Context, uow repository.UnitOfWork) error {
		book, err := uow.Books().GetByIDForUpdate(ctx, bookID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Invalidf("book %d does not exist", bookID)
		}
		if err != nil {
			return err
		}
		if book.OutOfBooks() {
			return domain.ErrBookUnavailable
		}
		remaining, err := uow.Books().AdjustInventory(ctx, bookID, -1)
		if err != nil {
			return err
		}
		if err := uow.Borrowings().Create(ctx, br); err != nil {
			return err
		}
		book.Inventory = remaining
		br.Book = book
		return nil
	})
	if err != nil {
		s.recordRejection(err)
		logger.ExitMethodWithError("BorrowingService.Create", err, "userID", requester.UserID, "bookID", bookID)
		return nil, fmt.Errorf("create borrowing: %w", err)
	}

	s.metrics.RecordBorrowingCreated()
	logger.ExitMethod("BorrowingService.Create", "borrowingID", br.ID)
	return br, nil
}

// Return closes an active borrowing owned by the requester. A borrowing the requester cannot see
// is domain.ErrNotFound, a closed one is domain.ErrAlreadyReturned, and staff returning someone
// else's get domain.ErrNotBorrower. None of these change state.
func (s *borrowingService) Return(ctx context.Context, requester domain.Requester, borrowingID int32) error {
	logger.EnterMethod("BorrowingService.Return", "userID", requester.UserID, "borrowingID", borrowingID)

	err := s.tx.WithinTx(ctx, "return borrowing", func(ctx context.Context, uow repository.UnitOfWork) error {
		br, err := uow.Borrowings().GetByIDForUpdate(ctx, borrowingID)
		if err != nil {
			return err
		}
		if !requester.CanSee(br.UserID) {
			return domain.ErrNotFound
		}
		if !br.IsActive() {
			return domain.ErrAlreadyReturned
		}
		if br.UserID != requester.UserID {
			return domain.ErrNotBorrower
		}

		today := domain.TruncateToDate(s.now())
		br.ActualReturn = &today
		if err := uow.Borrowings().MarkReturned(ctx, br); err != nil {
			return err
		}
		_, err = uow.Books().AdjustInventory(ctx, br.BookID, 1)
		return err
	})
	if err != nil {
		s.recordRejection(err)
		logger.ExitMethodWithError("BorrowingService.Return", err, "borrowingID", borrowingID)
		return fmt.Errorf("return borrowing %d: %w", borrowingID, err)
	}

	s.metrics.RecordBorrowingReturned()
	logger.ExitMethod("BorrowingService.Return", "borrowingID", borrowingID)
	return nil
}

// List restricts non-staff requesters to their own borrowings whatever filter.UserID says.
func (s *borrowingService) List(ctx context.Context, requester domain.Requester, filter domain.BorrowingFilter) ([]domain.Borrowing, error) {
	logger.EnterMethod("BorrowingService.List", "userID", requester.UserID, "isStaff", requester.IsStaff)

	if !requester.IsStaff {
		own := requester.UserID
		filter.UserID = &own
	}

	list, err := s.borrowings.List(ctx, filter)
	if err != nil {
		logger.ExitMethodWithError("BorrowingService.List", err)
		return nil, fmt.Errorf("list borrowings: %w", err)
	}
	logger.ExitMethod("BorrowingService.List", "count", len(list))
	return list, nil
}

// Retrieve reports a borrowing the requester may not see as domain.ErrNotFound.
func (s *borrowingService) Retrieve(ctx context.Context, requester domain.Requester, borrowingID int32) (*domain.Borrowing, error) {
	br, err := s.borrowings.GetByID(ctx, borrowingID)
	if err != nil {
		return nil, fmt.Errorf("retrieve borrowing %d: %w", borrowingID, err)
	}
	if !requester.CanSee(br.UserID) {
		logger.Debug("Borrowing hidden from requester", "borrowingID", borrowingID, "userID", requester.UserID)
		return nil, fmt.Errorf("retrieve borrowing %d: %w", borrowingID, domain.ErrNotFound)
	}
	return br, nil
}

func (s *borrowingService) recordRejection(err error) {
	switch {
	case errors.Is(err, domain.ErrBookUnavailable):
		s.metrics.RecordBorrowingRejected(metrics.ReasonUnavailable)
	case errors.Is(err, domain.ErrAlreadyReturned):
		s.metrics.RecordBorrowingRejected(metrics.ReasonAlreadyReturned)
	case errors.Is(err, domain.ErrNotBorrower):
		s.metrics.RecordBorrowingRejected(metrics.ReasonNotBorrower)
	case errors.Is(err, domain.ErrNotFound):
		s.metrics.RecordBorrowingRejected(metrics.ReasonNotFound)
	}
}
