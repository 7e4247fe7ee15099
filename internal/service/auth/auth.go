package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/taskman/internal/apperrors"
	"github.com/example/taskman/internal/models"
	"github.com/example/taskman/internal/repository"
	"github.com/example/taskman/internal/service/auth/tokenmanager"
)

// Interface to create or compare hashes of passwords and refresh tokens
type Hasher interface {
	// Generate hash from raw value
	Hash(raw string) (string, error)

	// Compare known hash and user provided value
	// Must be protected against timing attacks
	Compare(hashed string, raw string) error
}

// Auth service config with sensible defaults
type Config struct {
	// Hasher for passwords and refresh tokens
	// BcryptHasher is used if not set
	Hasher Hasher

	// Refresh cookie name, 'rt' if not set
	RefreshCookieName string

	// Send the refresh cookie with the Secure flag (production)
	SecureCookies bool
}

type AuthService struct {
	token  *tokenmanager.TokenManager
	hasher Hasher
	users  repository.UserRepo

	refreshCookieName string
	secureCookies     bool
}

func NewService(cfg Config, token *tokenmanager.TokenManager, users repository.UserRepo) (*AuthService, error) {
	if token == nil || users == nil {
		return nil, errors.New("token manager and user repo must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	cookieName := cfg.RefreshCookieName
	if cookieName == "" {
		cookieName = defaultRefreshCookieName
	}

	return &AuthService{
		token:             token,
		hasher:            hasher,
		users:             users,
		refreshCookieName: cookieName,
		secureCookies:     cfg.SecureCookies,
	}, nil
}

// Register creates the user and immediately logs them in: callers always
// get a token pair, registration is not a separate step from login
func (s *AuthService) Register(ctx context.Context, email string, password string, name string) (models.User, models.TokenPair, error) {
	var pair models.TokenPair

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, pair, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err := s.users.CreateUser(ctx, repository.CreateUserParams{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	})
	if err != nil {
		return user, pair, err
	}

	pair, err = s.issuePair(ctx, user)
	return user, pair, err
}

// Login verifies credentials and issues a fresh pair.
// Unknown email and wrong password produce the same error, nothing
// here may leak whether the account exists.
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return models.User{}, pair, apperrors.Wrap(apperrors.ErrInvalidCredentials, err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, pair, apperrors.Wrap(apperrors.ErrInvalidCredentials, err)
	}

	pair, err = s.issuePair(ctx, user)
	return user, pair, err
}

// Refresh validates the presented refresh token and atomically rotates it.
// Any failure along the pipeline collapses into an Unauthorized kind, the
// root cause lands in logs only.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.User, models.TokenPair, error) {
	var pair models.TokenPair

	if refresh == "" {
		return models.User{}, pair, apperrors.ErrRefreshTokenMissing
	}

	// Signature and expiry against the refresh secret. Expired and
	// tampered tokens are indistinguishable from here on.
	claims, err := s.token.ParseRefresh(refresh)
	if err != nil {
		return models.User{}, pair, apperrors.Wrap(apperrors.ErrRefreshTokenInvalid, err)
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return models.User{}, pair, apperrors.Wrap(apperrors.ErrRefreshRequestDenied, err)
	}

	// No stored hash means no live session: logged out or never logged in
	if user.RefreshTokenHash == nil {
		return models.User{}, pair, apperrors.ErrRefreshRequestDenied
	}

	// The store holds a one-way hash of the single live token.
	// A rotated-away token fails here even though its signature is fine.
	if err := s.hasher.Compare(*user.RefreshTokenHash, refresh); err != nil {
		return models.User{}, pair, apperrors.Wrap(apperrors.ErrRefreshTokenInvalid, err)
	}

	pair, err = s.rotatePair(ctx, user)
	return user, pair, err
}

// Logout drops the stored refresh token hash. Idempotent: logging out an
// already logged out user is a no-op, not an error.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	err := s.users.SetRefreshTokenHash(ctx, userID, nil)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}
	return nil
}

// issuePair signs a new pair and unconditionally replaces the stored
// refresh token hash (login and register paths)
func (s *AuthService) issuePair(ctx context.Context, user models.User) (models.TokenPair, error) {
	pair, hash, err := s.signAndHash(user)
	if err != nil {
		return pair, err
	}

	if err := s.users.SetRefreshTokenHash(ctx, user.ID, &hash); err != nil {
		return models.TokenPair{}, fmt.Errorf("error while saving refresh token hash. Err: %w", err)
	}

	return pair, nil
}

// rotatePair signs a new pair and swaps the stored hash only if it still
// equals the hash the presented token was checked against. The previous
// refresh token is dead after this even though not yet expired.
func (s *AuthService) rotatePair(ctx context.Context, user models.User) (models.TokenPair, error) {
	pair, hash, err := s.signAndHash(user)
	if err != nil {
		return pair, err
	}

	if err := s.users.RotateRefreshTokenHash(ctx, user.ID, *user.RefreshTokenHash, hash); err != nil {
		return models.TokenPair{}, err
	}

	return pair, nil
}

func (s *AuthService) signAndHash(user models.User) (models.TokenPair, string, error) {
	pair, err := s.token.Pair(user)
	if err != nil {
		return pair, "", fmt.Errorf("error while generating token pair. Err: %w", err)
	}

	hash, err := s.hasher.Hash(pair.Refresh.Value)
	if err != nil {
		return pair, "", fmt.Errorf("error while hashing refresh token. Err: %w", err)
	}

	return pair, hash, nil
}
