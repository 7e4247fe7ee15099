package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"
)

type ctxKey string

// Marks a request that already went through one refresh-and-retry cycle
const retriedKey ctxKey = "retried"

type Config struct {
	// Endpoint the transport posts to when the access token is rejected.
	// The refresh cookie travels via Jar.
	RefreshURL string

	// Cookie jar shared with the owning http.Client, holds the refresh cookie
	Jar http.CookieJar

	// Underlying transport, http.DefaultTransport if not set
	Base http.RoundTripper

	// Called once when a refresh attempt fails. The session is dead at
	// that point and the owner has to log in again.
	OnSessionExpired func()
}

// Transport is an http.RoundTripper that injects the bearer access token
// and transparently rotates the session on 401 responses. Concurrent
// requests hitting a 401 share a single refresh call, each failed request
// is retried at most once.
type Transport struct {
	refreshURL       string
	base             http.RoundTripper
	onSessionExpired func()

	// client used for the refresh call itself, carries the cookie jar
	refreshClient *http.Client

	mu     sync.RWMutex
	access string

	group singleflight.Group
}

func NewTransport(cfg Config) (*Transport, error) {
	if cfg.RefreshURL == "" {
		return nil, errors.New("refresh url must not be empty")
	}

	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport
	}

	return &Transport{
		refreshURL:       cfg.RefreshURL,
		base:             base,
		onSessionExpired: cfg.OnSessionExpired,
		refreshClient:    &http.Client{Transport: base, Jar: cfg.Jar},
	}, nil
}

// SetAccessToken installs the token obtained from login or register
func (t *Transport) SetAccessToken(token string) {
	t.mu.Lock()
	t.access = token
	t.mu.Unlock()
}

func (t *Transport) AccessToken() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.access
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(t.withBearer(req))
	if err != nil {
		return resp, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// One retry per request, a second 401 is final
	if req.Context().Value(retriedKey) != nil {
		return resp, nil
	}

	// Requests without a replayable body can't be retried safely
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	if err := t.refresh(req.Context()); err != nil {
		return resp, nil
	}

	// The original response is replaced by the retry
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	retry := req.Clone(context.WithValue(req.Context(), retriedKey, true))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("can't replay request body. Err: %w", err)
		}
		retry.Body = body
	}

	return t.base.RoundTrip(t.withBearer(retry))
}

func (t *Transport) withBearer(req *http.Request) *http.Request {
	token := t.AccessToken()
	if token == "" {
		return req
	}

	out := req.Clone(req.Context())
	out.Header.Set("Authorization", "Bearer "+token)
	return out
}

// refresh rotates the session once no matter how many requests fail at
// the same time. Losers of the race reuse the winner's result.
func (t *Transport) refresh(ctx context.Context) error {
	_, err, _ := t.group.Do("refresh", func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refreshURL, nil)
		if err != nil {
			return nil, err
		}

		resp, err := t.refreshClient.Do(req)
		if err != nil {
			t.expire()
			return nil, fmt.Errorf("refresh request failed. Err: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			t.expire()
			return nil, fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
		}

		var parsed struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			t.expire()
			return nil, fmt.Errorf("can't decode refresh response. Err: %w", err)
		}

		t.SetAccessToken(parsed.AccessToken)
		return nil, nil
	})

	return err
}

// expire drops the dead token and tells the owner the session is over
func (t *Transport) expire() {
	t.SetAccessToken("")
	if t.onSessionExpired != nil {
		t.onSessionExpired()
	}
}
