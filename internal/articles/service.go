package articles

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-social/internal/apperr"
	"github.com/goliatone/go-social/internal/dispatcher"
	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/logger"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Notifier is the slice of the dispatcher the article service uses.
type Notifier interface {
	Notify(ctx context.Context, in dispatcher.NotifyInput) (*domain.Notification, error)
}

// CreateInput describes a new article. Status defaults to draft.
type CreateInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Status  string   `json:"status"`
	Tags    []string `json:"tags"`
}

func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Content, validation.Required),
		validation.Field(&in.Status, validation.In(domain.ArticleDraft, domain.ArticlePublished)),
	)
}

type Dependencies struct {
	Articles store.ArticleRepository
	Comments store.CommentRepository
	Users    store.UserRepository
	Notifier Notifier
	Logger   logger.Logger
}

// Service manages articles and their comments.
type Service struct {
	articles store.ArticleRepository
	comments store.CommentRepository
	users    store.UserRepository
	notifier Notifier
	logger   logger.Logger
}

var (
	ErrMissingArticles = errors.New("articles: repository is required")
	ErrMissingComments = errors.New("articles: comment repository is required")
	ErrMissingUsers    = errors.New("articles: user repository is required")
	ErrMissingNotifier = errors.New("articles: notifier is required")
)

func NewService(deps Dependencies) (*Service, error) {
	switch {
	case deps.Articles == nil:
		return nil, ErrMissingArticles
	case deps.Comments == nil:
		return nil, ErrMissingComments
	case deps.Users == nil:
		return nil, ErrMissingUsers
	case deps.Notifier == nil:
		return nil, ErrMissingNotifier
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Service{
		articles: deps.Articles,
		comments: deps.Comments,
		users:    deps.Users,
		notifier: deps.Notifier,
		logger:   deps.Logger,
	}, nil
}

func (s *Service) Create(ctx context.Context, author domain.User, in CreateInput) (*domain.Article, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = domain.ArticleDraft
	}
	if err := apperr.Validation(in.Validate(), "articles: invalid article"); err != nil {
		return nil, err
	}
	article := &domain.Article{
		UserID:  author.ID,
		Title:   in.Title,
		Slug:    domain.Slugify(in.Title),
		Status:  in.Status,
		Content: in.Content,
		Tags:    domain.StringList(in.Tags),
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, apperr.Store(err, "articles: create")
	}
	return article, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Store(err, "articles: get")
	}
	return article, nil
}

// Publish moves a draft to published. Only the author may publish.
func (s *Service) Publish(ctx context.Context, actor domain.User, id uuid.UUID) (*domain.Article, error) {
	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.UserID != actor.ID {
		return nil, apperr.Forbidden("articles: only the author can publish")
	}
	if article.Status == domain.ArticlePublished {
		return article, nil
	}
	article.Status = domain.ArticlePublished
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, apperr.Store(err, "articles: publish")
	}
	return article, nil
}

func (s *Service) ListPublished(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Article], error) {
	res, err := s.articles.ListByStatus(ctx, domain.ArticlePublished, opts)
	if err != nil {
		return store.ListResult[domain.Article]{}, apperr.Store(err, "articles: list published")
	}
	return res, nil
}

// ListDrafts returns the drafts written by author, newest first.
func (s *Service) ListDrafts(ctx context.Context, author domain.User) ([]domain.Article, error) {
	res, err := s.articles.ListByStatus(ctx, domain.ArticleDraft, store.ListOptions{})
	if err != nil {
		return nil, apperr.Store(err, "articles: list drafts")
	}
	out := res.Items[:0:0]
	for _, a := range res.Items {
		if a.UserID == author.ID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Comment stores a comment on the article and notifies its author.
func (s *Service) Comment(ctx context.Context, actor domain.User, articleID uuid.UUID, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.Invalid("articles: comment cannot be empty")
	}
	article, err := s.Get(ctx, articleID)
	if err != nil {
		return nil, err
	}
	target := domain.Target{Kind: domain.KindArticle, ID: article.ID}
	comment := &domain.Comment{
		UserID:     actor.ID,
		TargetKind: target.Kind,
		TargetID:   target.ID,
		Body:       body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperr.Store(err, "articles: comment")
	}

	owner, err := s.users.GetByID(ctx, article.UserID)
	if err != nil {
		s.logger.Warn("article owner lookup failed", logger.F("article_id", article.ID.String()), logger.Err(err))
		return comment, nil
	}
	if _, err := s.notifier.Notify(ctx, dispatcher.NotifyInput{
		Actor:     actor,
		Recipient: *owner,
		Verb:      domain.VerbCommented,
		Target:    target,
		Key:       dispatcher.KeyNotification,
		IDValue:   article.ID.String(),
	}); err != nil {
		return comment, err
	}
	return comment, nil
}

// Comments returns the comments of an article, oldest first.
func (s *Service) Comments(ctx context.Context, articleID uuid.UUID) ([]domain.Comment, error) {
	items, err := s.comments.ListByTarget(ctx, domain.Target{Kind: domain.KindArticle, ID: articleID})
	if err != nil {
		return nil, apperr.Store(err, "articles: comments")
	}
	return items, nil
}
