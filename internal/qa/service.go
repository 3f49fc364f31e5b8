package qa

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/goliatone/go-social/internal/apperr"
	"github.com/goliatone/go-social/internal/dispatcher"
	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/logger"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Notifier is the slice of the dispatcher the QA service uses.
type Notifier interface {
	Notify(ctx context.Context, in dispatcher.NotifyInput) (*domain.Notification, error)
}

// AskInput describes a new question. Status defaults to open.
type AskInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Status  string   `json:"status"`
	Tags    []string `json:"tags"`
}

func (in AskInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Content, validation.Required),
		validation.Field(&in.Status, validation.In(domain.QuestionOpen, domain.QuestionClosed, domain.QuestionDraft)),
	)
}

// TagCount is one entry of the tag cloud.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type Dependencies struct {
	Questions   store.QuestionRepository
	Answers     store.AnswerRepository
	Votes       store.VoteRepository
	Users       store.UserRepository
	Transaction store.TransactionManager
	Notifier    Notifier
	Logger      logger.Logger
}

// Service runs the question and answer board.
type Service struct {
	questions store.QuestionRepository
	answers   store.AnswerRepository
	votes     store.VoteRepository
	users     store.UserRepository
	tx        store.TransactionManager
	notifier  Notifier
	logger    logger.Logger
}

var (
	ErrMissingQuestions = errors.New("qa: question repository is required")
	ErrMissingAnswers   = errors.New("qa: answer repository is required")
	ErrMissingVotes     = errors.New("qa: vote repository is required")
	ErrMissingUsers     = errors.New("qa: user repository is required")
	ErrMissingNotifier  = errors.New("qa: notifier is required")
)

func NewService(deps Dependencies) (*Service, error) {
	switch {
	case deps.Questions == nil:
		return nil, ErrMissingQuestions
	case deps.Answers == nil:
		return nil, ErrMissingAnswers
	case deps.Votes == nil:
		return nil, ErrMissingVotes
	case deps.Users == nil:
		return nil, ErrMissingUsers
	case deps.Notifier == nil:
		return nil, ErrMissingNotifier
	}
	if deps.Transaction == nil {
		deps.Transaction = &store.SerialTransactionManager{}
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Service{
		questions: deps.Questions,
		answers:   deps.Answers,
		votes:     deps.Votes,
		users:     deps.Users,
		tx:        deps.Transaction,
		notifier:  deps.Notifier,
		logger:    deps.Logger,
	}, nil
}

func (s *Service) Ask(ctx context.Context, author domain.User, in AskInput) (*domain.Question, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = domain.QuestionOpen
	}
	if err := apperr.Validation(in.Validate(), "qa: invalid question"); err != nil {
		return nil, err
	}
	q := &domain.Question{
		UserID:  author.ID,
		Title:   in.Title,
		Slug:    domain.Slugify(in.Title),
		Status:  in.Status,
		Content: in.Content,
		Tags:    normalizeTags(in.Tags),
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, apperr.Store(err, "qa: ask")
	}
	return q, nil
}

func (s *Service) Question(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Store(err, "qa: get question")
	}
	return q, nil
}

// Answer stores an answer and notifies the question owner.
func (s *Service) Answer(ctx context.Context, author domain.User, questionID uuid.UUID, content string) (*domain.Answer, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Invalid("qa: answer cannot be empty")
	}
	q, err := s.Question(ctx, questionID)
	if err != nil {
		return nil, err
	}
	answer := &domain.Answer{UserID: author.ID, QuestionID: q.ID, Content: content}
	if err := s.answers.Create(ctx, answer); err != nil {
		return nil, apperr.Store(err, "qa: answer")
	}
	err = s.notify(ctx, author, q.UserID, domain.VerbAnswered, domain.Target{Kind: domain.KindQuestion, ID: q.ID})
	return answer, err
}

// AcceptAnswer marks answerID as the accepted answer of its question. The
// question flag and the answer flags change in one transaction; the answer
// author is notified once it has committed.
func (s *Service) AcceptAnswer(ctx context.Context, actor domain.User, answerID uuid.UUID) (*domain.Answer, error) {
	var accepted *domain.Answer
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		answer, err := s.answers.GetByID(txCtx, answerID)
		if err != nil {
			return apperr.Store(err, "qa: get answer")
		}
		q, err := s.questions.GetByID(txCtx, answer.QuestionID)
		if err != nil {
			return apperr.Store(err, "qa: get question")
		}
		if q.UserID != actor.ID {
			return apperr.Forbidden("qa: only the question owner can accept an answer")
		}
		if err := s.questions.MarkAnswered(txCtx, q.ID); err != nil {
			return apperr.Store(err, "qa: mark answered")
		}
		if err := s.answers.ClearAccepted(txCtx, q.ID); err != nil {
			return apperr.Store(err, "qa: clear accepted")
		}
		if err := s.answers.SetAccepted(txCtx, answer.ID); err != nil {
			return apperr.Store(err, "qa: set accepted")
		}
		answer.IsAnswer = true
		accepted = answer
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.notify(ctx, actor, accepted.UserID, domain.VerbAccepted, domain.Target{Kind: domain.KindAnswer, ID: accepted.ID})
	return accepted, err
}

// Answers returns the answers of a question, the accepted one first.
func (s *Service) Answers(ctx context.Context, questionID uuid.UUID) ([]domain.Answer, error) {
	items, err := s.answers.ListByQuestion(ctx, questionID)
	return items, apperr.Store(err, "qa: answers")
}

func (s *Service) CountAnswers(ctx context.Context, questionID uuid.UUID) (int, error) {
	n, err := s.answers.CountByQuestion(ctx, questionID)
	return n, apperr.Store(err, "qa: count answers")
}

func (s *Service) ListAnswered(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Question], error) {
	res, err := s.questions.ListByAnswered(ctx, true, opts)
	return res, apperr.Store(err, "qa: list answered")
}

func (s *Service) ListUnanswered(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Question], error) {
	res, err := s.questions.ListByAnswered(ctx, false, opts)
	return res, apperr.Store(err, "qa: list unanswered")
}

// Vote casts an up or down vote on a question or answer. Repeating the same
// vote withdraws it.
func (s *Service) Vote(ctx context.Context, voter domain.User, target domain.Target, up bool) (store.VoteResult, error) {
	if err := s.ensureVotable(ctx, target); err != nil {
		return store.VoteResult{}, err
	}
	res, err := s.votes.Cast(ctx, voter.ID, target, up)
	if err != nil {
		return store.VoteResult{}, apperr.Store(err, "qa: vote")
	}
	return res, nil
}

// TotalVotes returns up votes minus down votes.
func (s *Service) TotalVotes(ctx context.Context, target domain.Target) (int, error) {
	votes, err := s.votes.ListByTarget(ctx, target)
	if err != nil {
		return 0, apperr.Store(err, "qa: total votes")
	}
	total := 0
	for _, v := range votes {
		if v.Value {
			total++
		} else {
			total--
		}
	}
	return total, nil
}

func (s *Service) Upvoters(ctx context.Context, target domain.Target) ([]domain.User, error) {
	return s.voters(ctx, target, true)
}

func (s *Service) Downvoters(ctx context.Context, target domain.Target) ([]domain.User, error) {
	return s.voters(ctx, target, false)
}

// TagCounts counts tag usage across every question, most used first.
func (s *Service) TagCounts(ctx context.Context) ([]TagCount, error) {
	res, err := s.questions.List(ctx, store.ListOptions{})
	if err != nil {
		return nil, apperr.Store(err, "qa: tag counts")
	}
	counts := make(map[string]int)
	for _, q := range res.Items {
		for _, tag := range q.Tags {
			counts[tag]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Tag < out[j].Tag
		}
		return out[i].Count > out[j].Count
	})
	return out, nil
}

func (s *Service) voters(ctx context.Context, target domain.Target, value bool) ([]domain.User, error) {
	votes, err := s.votes.ListByTarget(ctx, target)
	if err != nil {
		return nil, apperr.Store(err, "qa: voters")
	}
	var out []domain.User
	for _, v := range votes {
		if v.Value != value {
			continue
		}
		u, err := s.users.GetByID(ctx, v.UserID)
		if err != nil {
			s.logger.Warn("voter lookup failed", logger.F("user_id", v.UserID.String()), logger.Err(err))
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (s *Service) ensureVotable(ctx context.Context, target domain.Target) error {
	var err error
	switch target.Kind {
	case domain.KindQuestion:
		_, err = s.questions.GetByID(ctx, target.ID)
	case domain.KindAnswer:
		_, err = s.answers.GetByID(ctx, target.ID)
	default:
		return apperr.Invalid("qa: only questions and answers take votes")
	}
	return apperr.Store(err, "qa: vote target")
}

func (s *Service) notify(ctx context.Context, actor domain.User, ownerID uuid.UUID, verb domain.Verb, target domain.Target) error {
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		s.logger.Warn("qa owner lookup failed", logger.F("target", target.String()), logger.Err(err))
		return nil
	}
	_, err = s.notifier.Notify(ctx, dispatcher.NotifyInput{
		Actor:     actor,
		Recipient: *owner,
		Verb:      verb,
		Target:    target,
		IDValue:   target.ID.String(),
	})
	return err
}

func normalizeTags(tags []string) domain.StringList {
	seen := make(map[string]struct{}, len(tags))
	var out domain.StringList
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
