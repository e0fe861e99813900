package users

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 64

type shard struct {
	mu      sync.RWMutex
	records map[string]*User
}

// MemoryStore is an in-memory Store used in development mode and tests.
// Records are sharded by email hash so mutations on distinct emails do not
// contend on a single lock.
type MemoryStore struct {
	shards [shardCount]*shard

	// order tracks insertion order of emails for List.
	orderMu sync.Mutex
	order   []string
}

// NewMemoryStore creates an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.shards {
		s.shards[i] = &shard{records: make(map[string]*User)}
	}
	return s
}

func (s *MemoryStore) shardFor(email string) *shard {
	h := fnv.New32a()
	h.Write([]byte(email))
	return s.shards[h.Sum32()%shardCount]
}

// Create inserts a new user, failing with ErrEmailExists on duplicates.
func (s *MemoryStore) Create(ctx context.Context, user *User) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email := NormalizeEmail(user.Email)
	sh := s.shardFor(email)

	sh.mu.Lock()
	if _, ok := sh.records[email]; ok {
		sh.mu.Unlock()
		return nil, ErrEmailExists
	}
	stored := *user
	stored.Email = email
	sh.records[email] = &stored
	sh.mu.Unlock()

	s.orderMu.Lock()
	s.order = append(s.order, email)
	s.orderMu.Unlock()

	out := stored
	return &out, nil
}

// Get returns the user for the email.
func (s *MemoryStore) Get(ctx context.Context, email string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email = NormalizeEmail(email)
	sh := s.shardFor(email)

	sh.mu.RLock()
	defer sh.mu.RUnlock()
	u, ok := sh.records[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// Update applies a partial update under the email's shard lock.
func (s *MemoryStore) Update(ctx context.Context, email string, update Update) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email = NormalizeEmail(email)
	sh := s.shardFor(email)

	sh.mu.Lock()
	defer sh.mu.Unlock()
	u, ok := sh.records[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Plan != nil {
		u.Plan = *update.Plan
	}
	if update.Role != nil {
		u.Role = *update.Role
	}
	u.UpdatedAt = time.Now().UTC()
	out := *u
	return &out, nil
}

// Delete removes the user and its slot in the insertion order.
func (s *MemoryStore) Delete(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	email = NormalizeEmail(email)
	sh := s.shardFor(email)

	sh.mu.Lock()
	if _, ok := sh.records[email]; !ok {
		sh.mu.Unlock()
		return ErrUserNotFound
	}
	delete(sh.records, email)
	sh.mu.Unlock()

	s.orderMu.Lock()
	for i, e := range s.order {
		if e == email {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.orderMu.Unlock()
	return nil
}

// List returns all users in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.orderMu.Lock()
	order := make([]string, len(s.order))
	copy(order, s.order)
	s.orderMu.Unlock()

	out := make([]*User, 0, len(order))
	for _, email := range order {
		sh := s.shardFor(email)
		sh.mu.RLock()
		if u, ok := sh.records[email]; ok {
			clone := *u
			out = append(out, &clone)
		}
		sh.mu.RUnlock()
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
