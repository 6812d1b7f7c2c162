package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/Domenick1991/carrental/internal/pkg/errs"
	"github.com/Domenick1991/carrental/internal/pkg/password"
	"github.com/Domenick1991/carrental/internal/repository"
	"github.com/cockroachdb/errors"
)

const minPasswordLength = 4

type AuthUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, plain string) (*LoginResult, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

type TokenIssuer interface {
	GenerateToken(user *domain.User) (string, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginResult struct {
	User  *domain.User
	Token string
}

type AuthService struct {
	users      repository.UserRepository
	tokens     TokenIssuer
	bcryptCost int
	logger     *slog.Logger
}

type AuthServiceOption func(*AuthService)

func WithBcryptCost(cost int) AuthServiceOption {
	return func(s *AuthService) {
		s.bcryptCost = cost
	}
}

func WithLogger(logger *slog.Logger) AuthServiceOption {
	return func(s *AuthService) {
		s.logger = logger
	}
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer, opts ...AuthServiceOption) *AuthService {
	s := &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: password.DefaultCost,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a USER account. Emails are unique regardless of case.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, domain.InvalidInput("name is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, domain.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.InvalidInputCause(err, "email is not a valid address")
	}

	return s.create(ctx, name, email, input.Password, domain.RoleUser)
}

func (s *AuthService) Login(ctx context.Context, email, plain string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := password.ComparePassword(user.PasswordHash, plain); err != nil {
		return nil, errs.Mark(err, domain.ErrInvalidCredentials)
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, errs.Wrap(err, "generate token")
	}
	return &LoginResult{User: user, Token: token}, nil
}

func (s *AuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// EnsureAdmin creates the configured admin account unless the email is already registered.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, plain string) error {
	if email == "" || plain == "" {
		return nil
	}
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	if name == "" {
		name = "Admin"
	}
	user, err := s.create(ctx, name, email, plain, domain.RoleAdmin)
	if errors.Is(err, domain.ErrEmailTaken) {
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "admin account created", slog.Int64("user_id", user.ID), slog.String("email", user.Email))
	return nil
}

func (s *AuthService) create(ctx context.Context, name, email, plain string, role domain.Role) (*domain.User, error) {
	hash, err := password.HashPasswordWithCost(plain, s.bcryptCost)
	if err != nil {
		return nil, domain.InvalidInputCause(err, "password cannot be used")
	}

	user := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

var _ AuthUseCase = (*AuthService)(nil)
