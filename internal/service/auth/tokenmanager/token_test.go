package tokenmanager

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/taskman/internal/models"
)

func Test_TokenManager(t *testing.T) {
	t.Parallel()

	user := models.User{
		ID:    uuid.New(),
		Email: "a@x.com",
		Name:  "A",
	}

	newManager := func(t *testing.T, accessTTL time.Duration, refreshTTL time.Duration) *TokenManager {
		t.Helper()
		m, err := New(Config{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessTTL:     accessTTL,
			RefreshTTL:    refreshTTL,
		})
		require.NoError(t, err)
		return m
	}

	t.Run("new requires both secrets", func(t *testing.T) {
		_, err := New(Config{AccessSecret: "only-access"})
		require.Error(t, err)

		_, err = New(Config{RefreshSecret: "only-refresh"})
		require.Error(t, err)
	})

	t.Run("new sets defaults", func(t *testing.T) {
		m := newManager(t, 0, 0)

		require.Equal(t, DefaultAccessTTL, m.accessTTL)
		require.Equal(t, DefaultRefreshTTL, m.refreshTTL)
		require.Equal(t, "HS256", m.alg.Alg())
	})

	t.Run("pair round trips through parse", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 7*24*time.Hour)

		pair, err := m.Pair(user)
		require.NoError(t, err)
		require.NotEmpty(t, pair.Access.Value)
		require.NotEmpty(t, pair.Refresh.Value)
		require.NotEqual(t, pair.Access.Value, pair.Refresh.Value)

		accessClaims, err := m.ParseAccess(pair.Access.Value)
		require.NoError(t, err)
		assert.Equal(t, user.ID, accessClaims.UserID)
		assert.Equal(t, "a@x.com", accessClaims.Email)
		assert.Equal(t, "A", accessClaims.Name)

		refreshClaims, err := m.ParseRefresh(pair.Refresh.Value)
		require.NoError(t, err)
		assert.Equal(t, accessClaims, refreshClaims, "both tokens carry the same claim payload")
	})

	t.Run("secrets are not interchangeable", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 7*24*time.Hour)

		pair, err := m.Pair(user)
		require.NoError(t, err)

		_, err = m.ParseAccess(pair.Refresh.Value)
		require.Error(t, err, "refresh token must not validate as access token")

		_, err = m.ParseRefresh(pair.Access.Value)
		require.Error(t, err, "access token must not validate as refresh token")
	})

	t.Run("expired token rejected", func(t *testing.T) {
		m := newManager(t, -time.Minute, -time.Minute)

		pair, err := m.Pair(user)
		require.NoError(t, err)

		_, err = m.ParseAccess(pair.Access.Value)
		require.Error(t, err)
		_, err = m.ParseRefresh(pair.Refresh.Value)
		require.Error(t, err)
	})

	t.Run("tampered token rejected", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 7*24*time.Hour)
		other, err := New(Config{AccessSecret: "other-access", RefreshSecret: "other-refresh"})
		require.NoError(t, err)

		pair, err := other.Pair(user)
		require.NoError(t, err)

		_, err = m.ParseAccess(pair.Access.Value)
		require.Error(t, err)
	})

	t.Run("alg none rejected", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 7*24*time.Hour)

		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, tokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   user.ID.String(),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.ParseAccess(tokenString)
		require.Error(t, err)
	})

	t.Run("expiries differ between tokens", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 7*24*time.Hour)

		pair, err := m.Pair(user)
		require.NoError(t, err)

		assert.True(t, pair.Refresh.ExpiresAt.After(pair.Access.ExpiresAt), "refresh must outlive access")
	})
}

func Test_ParseExpiry(t *testing.T) {
	t.Parallel()

	t.Run("valid values", func(t *testing.T) {
		tests := []struct {
			input    string
			expected time.Duration
		}{
			{"15m", 900 * time.Second},
			{"7d", 604800 * time.Second},
			{"3600", 3600 * time.Second},
			{"1h", time.Hour},
			{"30s", 30 * time.Second},
		}

		for _, tt := range tests {
			t.Run(tt.input, func(t *testing.T) {
				got, err := ParseExpiry(tt.input)

				require.NoError(t, err)
				require.Equal(t, tt.expected, got)
			})
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		for _, input := range []string{"", "abc", "15x", "m15", "-5m", "1.5h"} {
			t.Run(input, func(t *testing.T) {
				_, err := ParseExpiry(input)

				require.Error(t, err)
			})
		}
	})

	t.Run("or default", func(t *testing.T) {
		require.Equal(t, 900*time.Second, ExpiryOrDefault("15m"))
		require.Equal(t, DefaultRefreshTTL, ExpiryOrDefault("garbage"), "unparseable input falls back to the single documented default")
	})
}
