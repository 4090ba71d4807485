package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/congo-pay/signin/internal/validate"
)

// Service registers and authenticates email/password accounts.
type Service struct {
	repo   CredentialRepository
	tokens *Tokens
	cost   int
}

// Option customizes a Service.
type Option func(*Service)

// WithCost sets the bcrypt cost for new password hashes. Values outside bcrypt's range are
// ignored.
func WithCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// NewService creates an auth service.
func NewService(repo CredentialRepository, tokens *Tokens, opts ...Option) *Service {
	s := &Service{repo: repo, tokens: tokens, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a credential for a new account and signs it in.
func (s *Service) Register(ctx context.Context, email, password string) (Session, error) {
	email = validate.NormalizeEmail(email)
	if err := validate.CheckEmail(email); err != nil {
		return Session{}, err
	}
	if err := validate.CheckPassword(password); err != nil {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Session{}, err
	}

	cred := Credential{
		UserID:       uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, cred); err != nil {
		return Session{}, err
	}

	return s.session(cred)
}

// Authenticate checks the password against the stored hash.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Session, error) {
	cred, err := s.repo.FindByEmail(ctx, validate.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	return s.session(cred)
}

// Verify resolves an access token back to its session.
func (s *Service) Verify(token string) (Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return Session{}, err
	}
	return Session{
		UserID:      claims.Subject,
		Email:       claims.Email,
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (s *Service) session(cred Credential) (Session, error) {
	token, exp, err := s.tokens.Issue(cred.UserID, cred.Email)
	if err != nil {
		return Session{}, err
	}
	return Session{UserID: cred.UserID, Email: cred.Email, AccessToken: token, ExpiresAt: exp}, nil
}
