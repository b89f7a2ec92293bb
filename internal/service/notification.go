package service

import (
	"context"
	"fmt"

	"library-rental-backend/internal/domain"
	"library-rental-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) ListNotifications(ctx context.Context, limit, offset int32) ([]domain.Notification, int32, error) {
	limit, offset = normalizePage(limit, offset)
	notes, total, err := s.noteRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return notes, total, nil
}
