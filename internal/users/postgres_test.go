package users

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresStore starts a throwaway Postgres container and returns a
// store connected to it.
func setupPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("passport_test"),
		postgres.WithUsername("passport"),
		postgres.WithPassword("passport"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := NewPostgresStore(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestPostgresStoreLifecycle(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, newUser("H1@Gmail.com", "h1"))
	require.NoError(t, err)
	assert.Equal(t, "h1@gmail.com", created.Email)

	_, err = store.Create(ctx, newUser("h1@GMAIL.com", "dup"))
	assert.ErrorIs(t, err, ErrEmailExists)

	got, err := store.Get(ctx, "h1@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	plan := PlanPro
	updated, err := store.Update(ctx, "h1@gmail.com", Update{Plan: &plan})
	require.NoError(t, err)
	assert.Equal(t, PlanPro, updated.Plan)
	assert.Equal(t, "h1", updated.Name)

	// no-field update returns the current record
	same, err := store.Update(ctx, "h1@gmail.com", Update{})
	require.NoError(t, err)
	assert.Equal(t, PlanPro, same.Plan)

	require.NoError(t, store.Delete(ctx, "h1@gmail.com"))
	assert.ErrorIs(t, store.Delete(ctx, "h1@gmail.com"), ErrUserNotFound)

	_, err = store.Get(ctx, "h1@gmail.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPostgresStoreListOrderAndConcurrency(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()

	for _, e := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := store.Create(ctx, newUser(e, e))
		require.NoError(t, err)
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "a@example.com", list[0].Email)
	assert.Equal(t, "c@example.com", list[2].Email)

	const workers = 8
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

	var succeeded int
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrEmailExists)
		}
	}
	assert.Equal(t, 1, succeeded)
}
