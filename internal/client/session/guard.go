// Package session keeps the client's access token fresh. A Guard hands out
// the current token, refreshes it shortly before expiry, coalesces
// concurrent refreshes into one server call, and tells subscribers when the
// session ends.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/walletvault/internal/auth"
	"github.com/dmitrijs2005/walletvault/internal/common"
	"golang.org/x/sync/singleflight"
)

// refreshBuffer is how long before expiry a token is already treated as
// stale, so a request started now does not expire mid-flight.
const refreshBuffer = 30 * time.Second

// RefreshFunc exchanges the refresh credential (held in the HTTP client's
// cookie jar) for a new access token.
type RefreshFunc func(ctx context.Context) (string, error)

type Guard struct {
	refresh RefreshFunc

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	sf singleflight.Group

	subMu sync.Mutex
	subs  map[chan struct{}]struct{}
}

func NewGuard(refresh RefreshFunc) *Guard {
	return &Guard{
		refresh: refresh,
		subs:    make(map[chan struct{}]struct{}),
	}
}

// SetToken installs a token obtained out of band (login, 2FA verification).
func (g *Guard) SetToken(token string) error {
	expiresAt, err := auth.TokenExpiry(token)
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.token = token
	g.expiresAt = expiresAt
	g.mu.Unlock()
	return nil
}

// current returns the stored token and whether it is still comfortably fresh.
func (g *Guard) current() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.token == "" {
		return "", false
	}
	return g.token, time.Until(g.expiresAt) > refreshBuffer
}

// Token returns an access token to attach to a request, refreshing first when
// the stored one is missing or about to expire. Any number of concurrent
// callers produce at most one refresh call.
func (g *Guard) Token(ctx context.Context) (string, error) {
	if token, fresh := g.current(); fresh {
		return token, nil
	}
	return g.refreshNow(ctx, "")
}

// HandleUnauthorized is called after a request bounced with 401 even though
// the token looked valid locally (e.g. it was revoked server-side). stale is
// the rejected token; if another caller already replaced it, the replacement
// is returned without a second refresh.
func (g *Guard) HandleUnauthorized(ctx context.Context, stale string) (string, error) {
	g.mu.Lock()
	if g.token != "" && g.token != stale {
		token := g.token
		g.mu.Unlock()
		return token, nil
	}
	g.mu.Unlock()

	return g.refreshNow(ctx, stale)
}

func (g *Guard) refreshNow(ctx context.Context, stale string) (string, error) {
	v, err, _ := g.sf.Do("refresh", func() (any, error) {
		// a caller that waited on the flight may find the work already done
		if token, fresh := g.current(); fresh && token != stale {
			return token, nil
		}

		token, err := g.refresh(ctx)
		if err != nil {
			return nil, err
		}
		if err := g.SetToken(token); err != nil {
			return nil, err
		}
		return token, nil
	})
	if err != nil {
		// a rejected refresh credential cannot be retried; the session is
		// over, unlike a transient network failure
		if errors.Is(err, common.ErrUnauthorized) {
			g.Clear()
		}
		return "", err
	}

	token, ok := v.(string)
	if !ok {
		return "", common.ErrInternal
	}
	return token, nil
}

// Clear drops the session and notifies every subscriber that the user is
// logged out.
func (g *Guard) Clear() {
	g.mu.Lock()
	g.token = ""
	g.expiresAt = time.Time{}
	g.mu.Unlock()

	g.subMu.Lock()
	defer g.subMu.Unlock()
	for ch := range g.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe returns a channel that receives a value whenever the session is
// cleared. The channel is buffered; a slow consumer misses repeats, not the
// fact of the logout.
func (g *Guard) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	g.subMu.Lock()
	g.subs[ch] = struct{}{}
	g.subMu.Unlock()
	return ch
}

func (g *Guard) Unsubscribe(ch chan struct{}) {
	g.subMu.Lock()
	delete(g.subs, ch)
	g.subMu.Unlock()
}
