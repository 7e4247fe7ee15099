package auth

import (
	"net/http"
	"strings"

	"github.com/example/taskman/internal/apperrors"
	"github.com/example/taskman/internal/models"
)

const (
	defaultRefreshCookieName = "rt"

	accessHeaderName = "Authorization"
	accessAuthScheme = "Bearer"
)

// SetRefreshCookie delivers the refresh token in an HTTP-only cookie.
// The access token is never set as a cookie, handlers return it in the
// response body and the client sends it back as a bearer credential.
func (s *AuthService) SetRefreshCookie(w http.ResponseWriter, refresh models.IssuedToken) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName,
		Value:    refresh.Value,
		Path:     "/",
		MaxAge:   int(s.token.RefreshTTL().Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearRefreshCookie drops the cookie on logout
func (s *AuthService) ClearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadRefreshToken extracts the refresh token string from the request cookie
func (s *AuthService) ReadRefreshToken(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.refreshCookieName)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrRefreshTokenMissing, err)
	}

	return cookie.Value, nil
}

// SetTokenPairToRequest attaches both tokens to an outgoing request the
// way a client would: refresh as cookie, access as bearer header.
// Used by tests and the http client.
func (s *AuthService) SetTokenPairToRequest(r *http.Request, pair models.TokenPair) {
	r.AddCookie(&http.Cookie{Name: s.refreshCookieName, Value: pair.Refresh.Value})
	r.Header.Set(accessHeaderName, accessAuthScheme+" "+pair.Access.Value)
}

// Authenticate validates the bearer access token of an inbound request
// and returns the identity claims it carries
func (s *AuthService) Authenticate(r *http.Request) (models.Claims, error) {
	header := r.Header.Get(accessHeaderName)

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, accessAuthScheme) {
		return models.Claims{}, apperrors.ErrAccessTokenInvalid
	}

	claims, err := s.token.ParseAccess(token)
	if err != nil {
		return models.Claims{}, apperrors.Wrap(apperrors.ErrAccessTokenInvalid, err)
	}

	return claims, nil
}
