package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/walletvault/internal/auth"
	"github.com/dmitrijs2005/walletvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, validity time.Duration) string {
	t.Helper()
	token, err := auth.GenerateToken("acc-1", []byte("test-secret"), validity)
	require.NoError(t, err)
	return token
}

func TestToken_FreshTokenIsReturnedWithoutRefresh(t *testing.T) {
	var calls atomic.Int32
	g := NewGuard(func(ctx context.Context) (string, error) {
		calls.Add(1)
		return mintToken(t, time.Hour), nil
	})

	require.NoError(t, g.SetToken(mintToken(t, time.Hour)))

	_, err := g.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(0), calls.Load())
}

func TestToken_RefreshesWhenMissing(t *testing.T) {
	fresh := mintToken(t, time.Hour)
	var calls atomic.Int32
	g := NewGuard(func(ctx context.Context) (string, error) {
		calls.Add(1)
		return fresh, nil
	})

	token, err := g.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, token)
	assert.Equal(t, int32(1), calls.Load())
}

func TestToken_RefreshesNearExpiry(t *testing.T) {
	fresh := mintToken(t, time.Hour)
	var calls atomic.Int32
	g := NewGuard(func(ctx context.Context) (string, error) {
		calls.Add(1)
		return fresh, nil
	})

	// valid, but inside the proactive-refresh window
	require.NoError(t, g.SetToken(mintToken(t, 5*time.Second)))

	token, err := g.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, token)
	assert.Equal(t, int32(1), calls.Load())
}

func TestToken_ConcurrentCallersShareOneRefresh(t *testing.T) {
	fresh := mintToken(t, time.Hour)
	var calls atomic.Int32
	g := NewGuard(func(ctx context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond) // keep the flight open for everyone
		return fresh, nil
	})

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	tokens := make([]string, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = g.Token(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, fresh, tokens[i])
	}
	assert.Equal(t, int32(1), calls.Load(), "concurrent callers must coalesce into one refresh")
}

func TestToken_RefreshFailure(t *testing.T) {
	g := NewGuard(func(ctx context.Context) (string, error) {
		return "", errors.New("server unavailable")
	})

	_, err := g.Token(context.Background())
	assert.Error(t, err)
}

func TestToken_RejectedRefreshEndsSession(t *testing.T) {
	g := NewGuard(func(ctx context.Context) (string, error) {
		return "", common.ErrUnauthorized // refresh token revoked or expired
	})
	require.NoError(t, g.SetToken(mintToken(t, 5*time.Second)))

	sub := g.Subscribe()
	defer g.Unsubscribe(sub)

	_, err := g.Token(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthorized)

	select {
	case <-sub:
	case <-time.After(time.Second):
		t.Fatal("no logout signal after the server rejected the refresh")
	}

	token, _ := g.current()
	assert.Empty(t, token, "the stale token must be discarded")
}

func TestToken_UnreachableServerKeepsSession(t *testing.T) {
	g := NewGuard(func(ctx context.Context) (string, error) {
		return "", errors.New("connection refused")
	})
	require.NoError(t, g.SetToken(mintToken(t, 5*time.Second)))

	sub := g.Subscribe()
	defer g.Unsubscribe(sub)

	_, err := g.Token(context.Background())
	require.Error(t, err)

	select {
	case <-sub:
		t.Fatal("a transient refresh failure must not end the session")
	case <-time.After(50 * time.Millisecond):
	}

	token, _ := g.current()
	assert.NotEmpty(t, token)
}

func TestHandleUnauthorized(t *testing.T) {
	var calls atomic.Int32
	g := NewGuard(func(ctx context.Context) (string, error) {
		n := calls.Add(1)
		return mintToken(t, time.Duration(n)*time.Hour), nil
	})

	stale := mintToken(t, time.Hour)
	require.NoError(t, g.SetToken(stale))

	// server rejected a token that still looks fresh locally
	replaced, err := g.HandleUnauthorized(context.Background(), stale)
	require.NoError(t, err)
	assert.NotEqual(t, stale, replaced)
	assert.Equal(t, int32(1), calls.Load())

	// a retry carrying the already-replaced token must not refresh again
	again, err := g.HandleUnauthorized(context.Background(), stale)
	require.NoError(t, err)
	assert.Equal(t, replaced, again)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClear_BroadcastsLogout(t *testing.T) {
	g := NewGuard(func(ctx context.Context) (string, error) {
		return "", fmt.Errorf("no session")
	})
	require.NoError(t, g.SetToken(mintToken(t, time.Hour)))

	sub1 := g.Subscribe()
	sub2 := g.Subscribe()
	defer g.Unsubscribe(sub1)
	defer g.Unsubscribe(sub2)

	g.Clear()

	for _, ch := range []chan struct{}{sub1, sub2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("subscriber was not notified of logout")
		}
	}

	// and the token is gone
	_, err := g.Token(context.Background())
	assert.Error(t, err)
}
