package news

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-social/internal/apperr"
	"github.com/goliatone/go-social/internal/dispatcher"
	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/logger"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/google/uuid"
)

// Notifier is the slice of the dispatcher the news service uses.
type Notifier interface {
	Notify(ctx context.Context, in dispatcher.NotifyInput) (*domain.Notification, error)
	Announce(ctx context.Context, actor domain.User, key, idValue string)
}

// LikeResult reports the liker state after a toggle.
type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// Interactions summarises the activity on a thread.
type Interactions struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

type Dependencies struct {
	News     store.NewsRepository
	Users    store.UserRepository
	Notifier Notifier
	Logger   logger.Logger
}

// Service publishes short posts, replies and likes.
type Service struct {
	news     store.NewsRepository
	users    store.UserRepository
	notifier Notifier
	logger   logger.Logger
}

var (
	ErrMissingNews     = errors.New("news: repository is required")
	ErrMissingUsers    = errors.New("news: user repository is required")
	ErrMissingNotifier = errors.New("news: notifier is required")
)

func NewService(deps Dependencies) (*Service, error) {
	if deps.News == nil {
		return nil, ErrMissingNews
	}
	if deps.Users == nil {
		return nil, ErrMissingUsers
	}
	if deps.Notifier == nil {
		return nil, ErrMissingNotifier
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Service{
		news:     deps.News,
		users:    deps.Users,
		notifier: deps.Notifier,
		logger:   deps.Logger,
	}, nil
}

// Post creates a thread root and announces it on the global group.
func (s *Service) Post(ctx context.Context, actor domain.User, content string) (*domain.News, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Invalid("news: content cannot be empty")
	}
	item := &domain.News{UserID: actor.ID, Content: content}
	if err := s.news.Create(ctx, item); err != nil {
		return nil, apperr.Store(err, "news: post")
	}
	s.notifier.Announce(ctx, actor, dispatcher.KeyAdditionalNews, item.ID.String())
	return item, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.News, error) {
	item, err := s.news.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Store(err, "news: get")
	}
	return item, nil
}

// Delete removes a post. Only its author may delete it.
func (s *Service) Delete(ctx context.Context, actor domain.User, id uuid.UUID) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if item.UserID != actor.ID {
		return apperr.Forbidden("news: only the author can delete")
	}
	return apperr.Store(s.news.SoftDelete(ctx, id), "news: delete")
}

// List returns thread roots newest first.
func (s *Service) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.News], error) {
	result, err := s.news.ListRoots(ctx, opts)
	if err != nil {
		return store.ListResult[domain.News]{}, apperr.Store(err, "news: list")
	}
	return result, nil
}

// Reply attaches text to the thread root of newsID. Replying to a reply
// attaches to that reply's root, so threads stay one level deep.
func (s *Service) Reply(ctx context.Context, actor domain.User, newsID uuid.UUID, text string) (*domain.News, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Invalid("news: reply cannot be empty")
	}
	root, err := s.root(ctx, newsID)
	if err != nil {
		return nil, err
	}
	reply := &domain.News{UserID: actor.ID, ParentID: root.ID, Content: text, Reply: true}
	if err := s.news.Create(ctx, reply); err != nil {
		return nil, apperr.Store(err, "news: reply")
	}

	if err := s.notifyOwner(ctx, actor, root, domain.VerbReplied, root.ID); err != nil {
		return reply, err
	}
	return reply, nil
}

// Like toggles actor's like on newsID and notifies the author when the like
// was added.
func (s *Service) Like(ctx context.Context, actor domain.User, newsID uuid.UUID) (LikeResult, error) {
	item, err := s.Get(ctx, newsID)
	if err != nil {
		return LikeResult{}, err
	}
	liked, count, err := s.news.ToggleLike(ctx, newsID, actor.ID)
	if err != nil {
		return LikeResult{}, apperr.Store(err, "news: like")
	}
	result := LikeResult{Liked: liked, Likes: count}
	if liked {
		if err := s.notifyOwner(ctx, actor, item, domain.VerbLiked, item.ID); err != nil {
			return result, err
		}
	}
	return result, nil
}

// Thread returns the replies of the root of id, oldest first.
func (s *Service) Thread(ctx context.Context, id uuid.UUID) (*domain.News, []domain.News, error) {
	root, err := s.root(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	replies, err := s.news.Thread(ctx, root.ID)
	if err != nil {
		return nil, nil, apperr.Store(err, "news: thread")
	}
	return root, replies, nil
}

func (s *Service) CommentCount(ctx context.Context, id uuid.UUID) (int, error) {
	root, err := s.root(ctx, id)
	if err != nil {
		return 0, err
	}
	n, err := s.news.CountReplies(ctx, root.ID)
	return n, apperr.Store(err, "news: count replies")
}

func (s *Service) LikeCount(ctx context.Context, id uuid.UUID) (int, error) {
	n, err := s.news.CountLikes(ctx, id)
	return n, apperr.Store(err, "news: count likes")
}

// Likers returns the users who liked id, in like order.
func (s *Service) Likers(ctx context.Context, id uuid.UUID) ([]domain.User, error) {
	ids, err := s.news.Likers(ctx, id)
	if err != nil {
		return nil, apperr.Store(err, "news: likers")
	}
	out := make([]domain.User, 0, len(ids))
	for _, uid := range ids {
		user, err := s.users.GetByID(ctx, uid)
		if err != nil {
			s.logger.Warn("liker lookup failed", logger.F("user_id", uid.String()), logger.Err(err))
			continue
		}
		out = append(out, *user)
	}
	return out, nil
}

func (s *Service) Interactions(ctx context.Context, id uuid.UUID) (Interactions, error) {
	likes, err := s.LikeCount(ctx, id)
	if err != nil {
		return Interactions{}, err
	}
	comments, err := s.CommentCount(ctx, id)
	if err != nil {
		return Interactions{}, err
	}
	return Interactions{Likes: likes, Comments: comments}, nil
}

func (s *Service) root(ctx context.Context, id uuid.UUID) (*domain.News, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rootID := item.RootID(); rootID != item.ID {
		return s.Get(ctx, rootID)
	}
	return item, nil
}

func (s *Service) notifyOwner(ctx context.Context, actor domain.User, item *domain.News, verb domain.Verb, idValue uuid.UUID) error {
	owner, err := s.users.GetByID(ctx, item.UserID)
	if err != nil {
		s.logger.Warn("news owner lookup failed", logger.F("news_id", item.ID.String()), logger.Err(err))
		return nil
	}
	_, err = s.notifier.Notify(ctx, dispatcher.NotifyInput{
		Actor:     actor,
		Recipient: *owner,
		Verb:      verb,
		Target:    domain.Target{Kind: domain.KindNews, ID: item.ID},
		Key:       dispatcher.KeySocialUpdate,
		IDValue:   idValue.String(),
	})
	return err
}
