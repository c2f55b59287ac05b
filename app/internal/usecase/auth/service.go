package auth

import (
	"context"
	"errors"

	domuser "example.com/storefront-cart/app/internal/domain/user"
)

type PasswordComparer interface {
	Compare(hash string, password string) error
}

// Identity is what a bearer token vouches for.
type Identity struct {
	UserID int64
	Email  string
	Name   string
}

type TokenIssuer interface {
	Issue(id Identity) (string, error)
	Verify(token string) (*Identity, error)
}

type Service struct {
	userRepo domuser.Repository
	checker  PasswordComparer
	tokens   TokenIssuer
}

func NewService(userRepo domuser.Repository, checker PasswordComparer, tokens TokenIssuer) *Service {
	return &Service{
		userRepo: userRepo,
		checker:  checker,
		tokens:   tokens,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token    string
	User     *domuser.User
	Identity Identity
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := domuser.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domuser.ErrInvalidCredential
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domuser.ErrUserNotFound) {
			return nil, domuser.ErrUnauthorized
		}
		return nil, err
	}
	if !u.CanLogIn() {
		return nil, domuser.ErrUnauthorized
	}
	if err := s.checker.Compare(u.PasswordHash, in.Password); err != nil {
		return nil, domuser.ErrUnauthorized
	}

	id := identityOf(u)
	token, err := s.tokens.Issue(id)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:    token,
		User:     u,
		Identity: id,
	}, nil
}

// Identify resolves a bearer token to the shopper behind it. The account is
// re-read so a disabled account stops checking out before its token expires.
func (s *Service) Identify(ctx context.Context, token string) (*Identity, error) {
	claimed, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domuser.ErrUnauthorized
	}

	u, err := s.userRepo.GetByID(ctx, claimed.UserID)
	if err != nil {
		if errors.Is(err, domuser.ErrUserNotFound) {
			return nil, domuser.ErrUnauthorized
		}
		return nil, err
	}
	if !u.CanLogIn() {
		return nil, domuser.ErrUnauthorized
	}

	id := identityOf(u)
	return &id, nil
}

func identityOf(u *domuser.User) Identity {
	return Identity{UserID: u.ID, Email: u.Username(), Name: u.Name}
}
