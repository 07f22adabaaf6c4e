package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/zero-sllm-auth/internal/domain/entity"
	repo "github.com/oksasatya/zero-sllm-auth/internal/domain/repository"
	"github.com/oksasatya/zero-sllm-auth/pkg/helpers"
)

var (
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// EventPublisher delivers registration events; *helpers.RabbitPublisher satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type Service struct {
	Repo         repo.UserRepository
	Logger       *logrus.Logger
	Events       EventPublisher
	BcryptCost   int
	StoreTimeout time.Duration
}

func NewService(repo repo.UserRepository, logger *logrus.Logger, events EventPublisher, bcryptCost int, storeTimeout time.Duration) *Service {
	return &Service{
		Repo:         repo,
		Logger:       logger,
		Events:       events,
		BcryptCost:   bcryptCost,
		StoreTimeout: storeTimeout,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// MaxFieldLength bounds name and email in characters, matching the column width.
const MaxFieldLength = 255

var validate = validator.New()

func (in RegisterInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := validate.Var(in.Name, fmt.Sprintf("max=%d", MaxFieldLength)); err != nil {
		return fmt.Errorf("%w: name must be at most %d characters long", ErrInvalidInput, MaxFieldLength)
	}
	if err := validate.Var(in.Email, fmt.Sprintf("required,email,max=%d", MaxFieldLength)); err != nil {
		return fmt.Errorf("%w: email must be a valid email of at most %d characters", ErrInvalidInput, MaxFieldLength)
	}
	// Text columns cannot store NUL.
	if strings.ContainsRune(in.Name, 0) || strings.ContainsRune(in.Email, 0) {
		return fmt.Errorf("%w: name and email must not contain NUL characters", ErrInvalidInput)
	}
	if in.Password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if len(in.Password) > helpers.MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, helpers.MaxPasswordBytes)
	}
	return nil
}

// Register creates a user after checking the email is free. The lookup only
// produces a friendlier error; the unique index on users.email decides races,
// and a conflicting insert is reported as ErrDuplicateEmail as well.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.PublicUser, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	_, err := s.getByEmail(ctx, in.Email)
	switch {
	case err == nil:
		registrationsDuplicate.Add(1)
		return nil, ErrDuplicateEmail
	case errors.Is(err, repo.ErrNotFound):
	default:
		return nil, s.storeFailure("lookup user by email failed", err)
	}

	hash, err := helpers.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		registrationsFailed.Add(1)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			registrationsDuplicate.Add(1)
			return nil, ErrDuplicateEmail
		}
		return nil, s.storeFailure("insert user failed", err)
	}

	registrationsSucceeded.Add(1)
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("user registered")
	}
	s.publishRegistered(ctx, u)

	return u.Public(), nil
}

func (s *Service) getByEmail(ctx context.Context, email string) (*entity.User, error) {
	c, cancel := s.storeContext(ctx)
	defer cancel()
	return s.Repo.GetByEmail(c, email)
}

func (s *Service) create(ctx context.Context, u *entity.User) error {
	c, cancel := s.storeContext(ctx)
	defer cancel()
	return s.Repo.Create(c, u)
}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.StoreTimeout)
}

func (s *Service) storeFailure(msg string, err error) error {
	registrationsFailed.Add(1)
	if s.Logger != nil {
		s.Logger.WithError(err).Error(msg)
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// publishRegistered is best effort: the user row is already committed.
func (s *Service) publishRegistered(ctx context.Context, u *entity.User) {
	if s.Events == nil {
		return
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.Events.PublishJSON(c, entity.NewUserRegistered(u)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("publish user registered event failed")
	}
}
