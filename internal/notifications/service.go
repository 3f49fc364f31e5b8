package notifications

import (
	"context"
	"errors"

	"github.com/goliatone/go-social/internal/apperr"
	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/logger"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/google/uuid"
)

// DefaultRecentLimit bounds MostRecent when no limit is configured.
const DefaultRecentLimit = 5

// Dependencies wires the repository into the service.
type Dependencies struct {
	Repository  store.NotificationRepository
	Logger      logger.Logger
	RecentLimit int
}

// Service reads and flips the read state of a recipient's notifications.
type Service struct {
	repo        store.NotificationRepository
	logger      logger.Logger
	recentLimit int
}

var errRepositoryRequired = errors.New("notifications: repository is required")

// NewService constructs the notifications service.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Repository == nil {
		return nil, errRepositoryRequired
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.RecentLimit <= 0 {
		deps.RecentLimit = DefaultRecentLimit
	}
	return &Service{
		repo:        deps.Repository,
		logger:      deps.Logger,
		recentLimit: deps.RecentLimit,
	}, nil
}

// List returns the recipient's notifications newest first. A nil unread
// returns both states.
func (s *Service) List(ctx context.Context, recipientID uuid.UUID, unread *bool, opts store.ListOptions) (store.ListResult[domain.Notification], error) {
	result, err := s.repo.ListByRecipient(ctx, recipientID, unread, opts)
	if err != nil {
		return store.ListResult[domain.Notification]{}, apperr.Store(err, "notifications: list")
	}
	return result, nil
}

// ListUnread returns unread notifications newest first.
func (s *Service) ListUnread(ctx context.Context, recipientID uuid.UUID, opts store.ListOptions) (store.ListResult[domain.Notification], error) {
	unread := true
	return s.List(ctx, recipientID, &unread, opts)
}

// MostRecent returns the latest unread notifications, newest first.
func (s *Service) MostRecent(ctx context.Context, recipientID uuid.UUID) ([]domain.Notification, error) {
	unread := true
	result, err := s.List(ctx, recipientID, &unread, store.ListOptions{Limit: s.recentLimit})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (s *Service) MarkRead(ctx context.Context, recipientID uuid.UUID, slug string) (*domain.Notification, error) {
	return s.setUnread(ctx, recipientID, slug, false)
}

func (s *Service) MarkUnread(ctx context.Context, recipientID uuid.UUID, slug string) (*domain.Notification, error) {
	return s.setUnread(ctx, recipientID, slug, true)
}

func (s *Service) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int, error) {
	n, err := s.repo.SetAllUnread(ctx, recipientID, false)
	if err != nil {
		return 0, apperr.Store(err, "notifications: mark all read")
	}
	return n, nil
}

func (s *Service) MarkAllUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	n, err := s.repo.SetAllUnread(ctx, recipientID, true)
	if err != nil {
		return 0, apperr.Store(err, "notifications: mark all unread")
	}
	return n, nil
}

func (s *Service) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error) {
	n, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, apperr.Store(err, "notifications: count unread")
	}
	return n, nil
}

// setUnread looks the notification up by slug. Another recipient's slug is
// reported as not found.
func (s *Service) setUnread(ctx context.Context, recipientID uuid.UUID, slug string, unread bool) (*domain.Notification, error) {
	n, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, apperr.Store(err, "notifications: lookup")
	}
	if n.RecipientID != recipientID {
		return nil, apperr.NotFound("notifications: not found")
	}
	if n.Unread == unread {
		return n, nil
	}
	if err := s.repo.SetUnread(ctx, n.ID, unread); err != nil {
		return nil, apperr.Store(err, "notifications: update")
	}
	n.Unread = unread
	s.logger.Debug("notification state changed", logger.F("slug", slug), logger.F("unread", unread))
	return n, nil
}
