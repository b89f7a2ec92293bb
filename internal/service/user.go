package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"library-rental-backend/internal/domain"
	"library-rental-backend/internal/logger"
	"library-rental-backend/internal/repository"
)

const maxNameLength = 150

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetMe(ctx context.Context, requester domain.Requester) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, requester.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", requester.UserID, err)
	}
	return user, nil
}

// UpdateMe changes the requester's name. A nil argument leaves that part unchanged.
func (s *userService) UpdateMe(ctx context.Context, requester domain.Requester, firstName, lastName *string) (*domain.User, error) {
	logger.EnterMethod("UserService.UpdateMe", "userID", requester.UserID)

	first, firstErr := cleanName(firstName)
	last, lastErr := cleanName(lastName)
	if err := errors.Join(firstErr, lastErr); err != nil {
		logger.ExitMethodWithError("UserService.UpdateMe", err)
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, requester.UserID)
	if err != nil {
		logger.ExitMethodWithError("UserService.UpdateMe", err)
		return nil, fmt.Errorf("get user %d: %w", requester.UserID, err)
	}
	if first != nil {
		user.FirstName = *first
	}
	if last != nil {
		user.LastName = *last
	}
	if err := s.userRepo.UpdateName(ctx, user); err != nil {
		logger.ExitMethodWithError("UserService.UpdateMe", err)
		return nil, fmt.Errorf("update user %d: %w", requester.UserID, err)
	}

	logger.ExitMethod("UserService.UpdateMe", "userID", requester.UserID)
	return user, nil
}

func cleanName(name *string) (*string, error) {
	if name == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*name)
	if utf8.RuneCountInString(trimmed) > maxNameLength {
		return nil, domain.Invalidf("names must be at most %d characters", maxNameLength)
	}
	return &trimmed, nil
}
