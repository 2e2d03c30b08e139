package notification

import (
	"context"
	"io"
	"log"

	"marketplace-api/internal/domain"
	notifrepo "marketplace-api/internal/repository/notification"
)

type Service struct {
	repo   notifrepo.Repository
	logger *log.Logger
}

func New(repo notifrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger}
}

// Notify creates one notification row for the user.
func (s *Service) Notify(ctx context.Context, userID, typ, title, message string) error {
	_, err := s.repo.Create(ctx, domain.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
	})
	return err
}

// Dispatch is the best-effort variant used from business flows: a failed
// insert is logged and swallowed so it can never roll back the state change
// that triggered it.
func (s *Service) Dispatch(ctx context.Context, userID, typ, title, message string) {
	if err := s.Notify(ctx, userID, typ, title, message); err != nil {
		s.logger.Printf("notification: dispatch type=%s user_id=%s failed: %v", typ, userID, err)
	}
}

func (s *Service) ListByUser(ctx context.Context, userID string, onlyUnread bool) ([]domain.Notification, error) {
	return s.repo.ListByUser(ctx, userID, onlyUnread)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, userID, id)
}
