package users

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(email, name string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		Role:         RoleMember,
		Plan:         PlanFree,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	created, err := store.Create(ctx, newUser("H1@Gmail.com", "h1"))
	require.NoError(t, err)
	assert.Equal(t, "h1@gmail.com", created.Email, "emails are stored normalized")

	got, err := store.Get(ctx, "h1@GMAIL.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = store.Get(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryStoreDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Create(ctx, newUser("h1@gmail.com", "first"))
	require.NoError(t, err)

	_, err = store.Create(ctx, newUser("H1@gmail.COM", "second"))
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestMemoryStoreUpdatePartial(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Create(ctx, newUser("h1@gmail.com", "user"))
	require.NoError(t, err)

	plan := PlanPro
	updated, err := store.Update(ctx, "h1@gmail.com", Update{Plan: &plan})
	require.NoError(t, err)
	assert.Equal(t, PlanPro, updated.Plan)
	assert.Equal(t, "user", updated.Name, "unspecified fields stay unchanged")

	got, err := store.Get(ctx, "h1@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, PlanPro, got.Plan)

	_, err = store.Update(ctx, "missing@example.com", Update{Plan: &plan})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Create(ctx, newUser("h1@gmail.com", "user"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "h1@gmail.com"))
	assert.ErrorIs(t, store.Delete(ctx, "h1@gmail.com"), ErrUserNotFound)

	_, err = store.Get(ctx, "h1@gmail.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryStoreListInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	for _, e := range emails {
		_, err := store.Create(ctx, newUser(e, e))
		require.NoError(t, err)
	}
	require.NoError(t, store.Delete(ctx, "b@example.com"))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a@example.com", list[0].Email)
	assert.Equal(t, "c@example.com", list[1].Email)
}

func TestMemoryStoreConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(ctx, newUser("race@example.com", "racer"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, conflicted int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, ErrEmailExists):
			conflicted++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent create wins")
	assert.Equal(t, workers-1, conflicted)
}

func TestMemoryStoreHonorsContextCancellation(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Create(ctx, newUser("h1@gmail.com", "user"))
	assert.ErrorIs(t, err, context.Canceled)
}
