package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/example/taskman/internal/models"
)

const defaultSigningMethod = "HS256"

// Claims carried by both tokens: subject id, email and name.
// The access and refresh tokens differ only in secret and lifetime.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Token manager with sensible defaults
type Config struct {
	// Secrets to sign access and refresh tokens. Both required.
	// Tokens signed with one secret never validate against the other.
	AccessSecret  string
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenManager struct {
	accessKey  []byte
	refreshKey []byte

	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("access and refresh secrets must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, DefaultAccessTTL)
	setDefaultDuration(&cfg.RefreshTTL, DefaultRefreshTTL)

	return &TokenManager{
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		alg:        jwt.GetSigningMethod(cfg.Alg),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// RefreshTTL reports the refresh token lifetime, cookie Max-Age follows it
func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// Pair signs a fresh access/refresh token pair for the user.
// Both tokens carry the same claim payload but are signed with distinct
// secrets and expirations.
func (m *TokenManager) Pair(user models.User) (models.TokenPair, error) {
	var pair models.TokenPair
	now := time.Now().Truncate(time.Second)
	accessExpiresAt := now.Add(m.accessTTL)
	refreshExpiresAt := now.Add(m.refreshTTL)

	sign := func(key []byte, expiresAt time.Time) (string, error) {
		token := jwt.NewWithClaims(
			m.alg,
			tokenClaims{
				RegisteredClaims: jwt.RegisteredClaims{
					ID:        uuid.NewString(),
					Subject:   user.ID.String(),
					IssuedAt:  jwt.NewNumericDate(now),
					ExpiresAt: jwt.NewNumericDate(expiresAt),
				},
				Email: user.Email,
				Name:  user.Name,
			},
		)
		return token.SignedString(key)
	}

	access, err := sign(m.accessKey, accessExpiresAt)
	if err != nil {
		return pair, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	refresh, err := sign(m.refreshKey, refreshExpiresAt)
	if err != nil {
		return pair, fmt.Errorf("error while signing refresh token. Err: %w", err)
	}

	return models.TokenPair{
		Access:  models.IssuedToken{Value: access, ExpiresAt: accessExpiresAt},
		Refresh: models.IssuedToken{Value: refresh, ExpiresAt: refreshExpiresAt},
	}, nil
}

// ParseAccess validates signature and expiry against the access secret
func (m *TokenManager) ParseAccess(tokenString string) (models.Claims, error) {
	return m.parse(tokenString, m.accessKey)
}

// ParseRefresh validates signature and expiry against the refresh secret
func (m *TokenManager) ParseRefresh(tokenString string) (models.Claims, error) {
	return m.parse(tokenString, m.refreshKey)
}

func (m *TokenManager) parse(tokenString string, key []byte) (models.Claims, error) {
	claims := &tokenClaims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		// Expired and tampered tokens deliberately produce the same error shape
		return models.Claims{}, fmt.Errorf("error while parsing or validating token. Err: %w", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.Claims{}, fmt.Errorf("error while parsing token subject. Err: %w", err)
	}

	return models.Claims{
		UserID: userID,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}
