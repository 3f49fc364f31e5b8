package users

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/goliatone/go-social/internal/apperr"
	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/logger"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Required, validation.Length(2, 64), validation.Match(usernamePattern)),
		validation.Field(&in.Nickname, validation.Length(0, 64)),
	)
}

type Dependencies struct {
	Repository store.UserRepository
	Logger     logger.Logger
}

type Service struct {
	repo   store.UserRepository
	logger logger.Logger
}

var errRepositoryRequired = errors.New("users: repository is required")

// reservedUsernames collide with the broadcast group or with fixed routes.
var reservedUsernames = map[string]bool{
	"notifications": true,
	"latest":        true,
}

func NewService(deps Dependencies) (*Service, error) {
	if deps.Repository == nil {
		return nil, errRepositoryRequired
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Service{repo: deps.Repository, logger: deps.Logger}, nil
}

// Register creates a user. Usernames are unique and name the user's
// personal live group.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Nickname = strings.TrimSpace(in.Nickname)
	if err := in.Validate(); err != nil {
		return nil, apperr.Validation(err, "invalid user")
	}
	if reservedUsernames[strings.ToLower(in.Username)] {
		return nil, apperr.Conflict("users: username is reserved")
	}
	user := &domain.User{Username: in.Username, Nickname: in.Nickname}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperr.Store(err, "users: register")
	}
	s.logger.Info("user registered", logger.F("username", user.Username))
	return user, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Store(err, "users: get by username")
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Store(err, "users: get")
	}
	return user, nil
}
