// Package service contains account workflows and token handling
package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"codespeak/internal/core/ident"
	perr "codespeak/internal/platform/errors"
	"codespeak/internal/platform/logger"
	pstr "codespeak/internal/platform/strings"
	"codespeak/internal/services/auth/domain"
	"codespeak/internal/services/auth/repo"
)

// TokenTTL is how long issued tokens stay valid
const TokenTTL = 7 * 24 * time.Hour

// Options configures the auth service
type Options struct {
	// Secret signs and verifies bearer tokens, required
	Secret string

	// TTL overrides the token lifetime, mostly for tests
	TTL time.Duration
}

// Service defines the service contract for auth
type Service interface{ domain.ServicePort }

// Svc implements the Service interface
type Svc struct {
	repo   repo.Repo
	secret []byte
	ttl    time.Duration
	log    logger.Logger
	now    func() time.Time
}

// New creates a new auth service
func New(r repo.Repo, opt Options) *Svc {
	if r == nil {
		panic("auth.Service requires a non nil Repo")
	}
	if opt.Secret == "" {
		panic("auth.Service requires a signing secret")
	}
	if opt.TTL <= 0 {
		opt.TTL = TokenTTL
	}
	return &Svc{
		repo:   r,
		secret: []byte(opt.Secret),
		ttl:    opt.TTL,
		log:    *logger.Named("auth"),
		now:    time.Now,
	}
}

// Register creates an account and returns a fresh token
func (s *Svc) Register(ctx context.Context, in domain.RegisterInput) (domain.AuthOutput, error) {
	if in.Password != in.ConfirmPassword {
		return domain.AuthOutput{}, perr.Validation([]string{"Passwords do not match"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.AuthOutput{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "password hash failed")
	}

	u := domain.User{
		ID:           ident.New(),
		Name:         in.Name,
		Email:        pstr.Fold(in.Email),
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return domain.AuthOutput{}, err
	}

	token, err := s.issue(u.ID)
	if err != nil {
		return domain.AuthOutput{}, err
	}

	s.log.Info().Str("user_id", u.ID).Msg("user registered")
	return domain.AuthOutput{Token: token, User: summaryOf(u)}, nil
}

// Login verifies credentials and returns a fresh token
// unknown email and bad password are indistinguishable to the caller
func (s *Svc) Login(ctx context.Context, in domain.LoginInput) (domain.AuthOutput, error) {
	u, err := s.repo.ByEmail(ctx, pstr.Fold(in.Email))
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.AuthOutput{}, perr.Unauthorizedf("Invalid email or password")
		}
		return domain.AuthOutput{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return domain.AuthOutput{}, perr.Unauthorizedf("Invalid email or password")
	}

	token, err := s.issue(u.ID)
	if err != nil {
		return domain.AuthOutput{}, err
	}
	return domain.AuthOutput{Token: token, User: summaryOf(u)}, nil
}

// Verify parses a bearer token and confirms the account still exists
func (s *Svc) Verify(ctx context.Context, token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, perr.Unauthorizedf("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", perr.Unauthorizedf("Invalid or expired token")
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", perr.Unauthorizedf("Invalid or expired token")
	}

	if _, err := s.repo.ByID(ctx, claims.Subject); err != nil {
		return "", perr.Unauthorizedf("Invalid or expired token")
	}
	return claims.Subject, nil
}

func (s *Svc) issue(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		ID:        uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "token sign failed")
	}
	return token, nil
}

func summaryOf(u domain.User) domain.Summary {
	return domain.Summary{ID: u.ID, Name: u.Name, Email: u.Email}
}
