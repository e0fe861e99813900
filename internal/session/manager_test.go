package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, ttl time.Duration) Manager {
	t.Helper()
	store := NewMemoryStore()
	mgr := NewManager(store, ttl)
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

func TestIssueAndValidate(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t, time.Hour)

	token, err := mgr.Issue(ctx, "h1@gmail.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	email, err := mgr.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "h1@gmail.com", email)

	other, err := mgr.Issue(ctx, "h1@gmail.com")
	require.NoError(t, err)
	assert.NotEqual(t, token, other, "tokens must be unique per issue")
}

func TestValidateUnknownToken(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t, time.Hour)

	_, err := mgr.Validate(ctx, "deadbeef")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestValidateExpiredToken(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t, 10*time.Millisecond)

	token, err := mgr.Issue(ctx, "h1@gmail.com")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = mgr.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestRevokeIsTerminalAndIdempotent(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t, time.Hour)

	token, err := mgr.Issue(ctx, "h1@gmail.com")
	require.NoError(t, err)

	require.NoError(t, mgr.Revoke(ctx, token))
	_, err = mgr.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrSessionRevoked)

	// revoking again, or revoking garbage, is fine
	require.NoError(t, mgr.Revoke(ctx, token))
	require.NoError(t, mgr.Revoke(ctx, "unknown-token"))

	_, err = mgr.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestRevokeAll(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t, time.Hour)

	first, err := mgr.Issue(ctx, "h1@gmail.com")
	require.NoError(t, err)
	second, err := mgr.Issue(ctx, "h1@gmail.com")
	require.NoError(t, err)
	bystander, err := mgr.Issue(ctx, "other@example.com")
	require.NoError(t, err)

	require.NoError(t, mgr.RevokeAll(ctx, "h1@gmail.com"))

	_, err = mgr.Validate(ctx, first)
	assert.Error(t, err)
	_, err = mgr.Validate(ctx, second)
	assert.Error(t, err)

	email, err := mgr.Validate(ctx, bystander)
	require.NoError(t, err)
	assert.Equal(t, "other@example.com", email)
}

func TestRevokeVisibleToConcurrentValidate(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t, time.Hour)

	token, err := mgr.Issue(ctx, "h1@gmail.com")
	require.NoError(t, err)

	var wg sync.WaitGroup
	revoked := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, mgr.Revoke(ctx, token))
		close(revoked)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		// after Revoke has returned, validation must fail
		<-revoked
		_, err := mgr.Validate(ctx, token)
		assert.ErrorIs(t, err, ErrSessionRevoked)
	}()

	wg.Wait()
}

func TestMemoryStoreSweepDropsExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	sess := &Session{
		Token:     "tok",
		Email:     "h1@gmail.com",
		IssuedAt:  time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, store.Save(ctx, sess, time.Hour))

	store.removeExpired(time.Now())

	_, err := store.Find(ctx, "tok")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
