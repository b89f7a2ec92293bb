package service

import (
	"context"
	"fmt"

	"library-rental-backend/internal/domain"
	"library-rental-backend/internal/logger"
	"library-rental-backend/internal/repository"
)

type bookService struct {
	bookRepo repository.BookRepository
}

func NewBookService(bookRepo repository.BookRepository) BookService {
	return &bookService{bookRepo: bookRepo}
}

func (s *bookService) CreateBook(ctx context.Context, book *domain.Book) error {
	logger.EnterMethod("BookService.CreateBook", "title", book.Title)
	if err := book.Validate(); err != nil {
		logger.ExitMethodWithError("BookService.CreateBook", err)
		return err
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		logger.ExitMethodWithError("BookService.CreateBook", err)
		return fmt.Errorf("create book: %w", err)
	}
	logger.ExitMethod("BookService.CreateBook", "bookID", book.ID)
	return nil
}

func (s *bookService) GetBook(ctx context.Context, id int32) (*domain.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return book, nil
}

// UpdateBook replaces every editable field, inventory included. This is the administrative edit
// path; borrow and return never go through it.
func (s *bookService) UpdateBook(ctx context.Context, book *domain.Book) error {
	logger.EnterMethod("BookService.UpdateBook", "bookID", book.ID)
	if err := book.Validate(); err != nil {
		logger.ExitMethodWithError("BookService.UpdateBook", err)
		return err
	}
	if err := s.bookRepo.Update(ctx, book); err != nil {
		logger.ExitMethodWithError("BookService.UpdateBook", err)
		return fmt.Errorf("update book %d: %w", book.ID, err)
	}
	logger.ExitMethod("BookService.UpdateBook", "bookID", book.ID)
	return nil
}

func (s *bookService) DeleteBook(ctx context.Context, id int32) error {
	logger.EnterMethod("BookService.DeleteBook", "bookID", id)
	if err := s.bookRepo.Delete(ctx, id); err != nil {
		logger.ExitMethodWithError("BookService.DeleteBook", err)
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	logger.ExitMethod("BookService.DeleteBook", "bookID", id)
	return nil
}

func (s *bookService) ListBooks(ctx context.Context, limit, offset int32) ([]domain.Book, int32, error) {
	limit, offset = normalizePage(limit, offset)
	books, total, err := s.bookRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	return books, total, nil
}
