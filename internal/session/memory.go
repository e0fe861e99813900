package session

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const (
	memoryShardCount = 64
	sweepInterval    = time.Minute
)

type memoryShard struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// MemoryStore is an in-memory session store for development and tests.
// Sessions are sharded by token; revoked entries are retained until their
// natural expiry so a revoked token can never validate again within its
// lifetime. A background sweeper garbage-collects expired entries.
type MemoryStore struct {
	shards [memoryShardCount]*memoryShard

	// byEmail indexes tokens per owner for cascade revocation.
	indexMu sync.Mutex
	byEmail map[string]map[string]struct{}

	stop chan struct{}
	done chan struct{}
}

// NewMemoryStore creates the store and starts its expiry sweeper.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		byEmail: make(map[string]map[string]struct{}),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for i := range s.shards {
		s.shards[i] = &memoryShard{sessions: make(map[string]*Session)}
	}
	go s.sweep()
	return s
}

func (s *MemoryStore) shardFor(token string) *memoryShard {
	h := fnv.New32a()
	h.Write([]byte(token))
	return s.shards[h.Sum32()%memoryShardCount]
}

// Save records a new session.
func (s *MemoryStore) Save(ctx context.Context, sess *Session, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := *sess
	sh := s.shardFor(sess.Token)
	sh.mu.Lock()
	sh.sessions[sess.Token] = &stored
	sh.mu.Unlock()

	s.indexMu.Lock()
	tokens, ok := s.byEmail[sess.Email]
	if !ok {
		tokens = make(map[string]struct{})
		s.byEmail[sess.Email] = tokens
	}
	tokens[sess.Token] = struct{}{}
	s.indexMu.Unlock()
	return nil
}

// Find returns a copy of the session for the token.
func (s *MemoryStore) Find(ctx context.Context, token string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sh := s.shardFor(token)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	sess, ok := sh.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := *sess
	return &out, nil
}

// Revoke flips the revoked flag under the token's shard lock. Once it
// returns, no Find can observe the session as live.
func (s *MemoryStore) Revoke(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sh := s.shardFor(token)
	sh.mu.Lock()
	if sess, ok := sh.sessions[token]; ok {
		sess.Revoked = true
	}
	sh.mu.Unlock()
	return nil
}

// RevokeOwner revokes every session owned by the email.
func (s *MemoryStore) RevokeOwner(ctx context.Context, email string) error {
	s.indexMu.Lock()
	tokens := make([]string, 0, len(s.byEmail[email]))
	for token := range s.byEmail[email] {
		tokens = append(tokens, token)
	}
	s.indexMu.Unlock()

	for _, token := range tokens {
		if err := s.Revoke(ctx, token); err != nil {
			return err
		}
	}
	return nil
}

// Close stops the sweeper.
func (s *MemoryStore) Close() error {
	close(s.stop)
	<-s.done
	return nil
}

// sweep garbage-collects expired sessions until Close.
func (s *MemoryStore) sweep() {
	defer close(s.done)
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.removeExpired(now)
		}
	}
}

func (s *MemoryStore) removeExpired(now time.Time) {
	for _, sh := range s.shards {
		var dropped []*Session
		sh.mu.Lock()
		for token, sess := range sh.sessions {
			if sess.Expired(now) {
				delete(sh.sessions, token)
				dropped = append(dropped, sess)
			}
		}
		sh.mu.Unlock()

		if len(dropped) == 0 {
			continue
		}
		s.indexMu.Lock()
		for _, sess := range dropped {
			if tokens, ok := s.byEmail[sess.Email]; ok {
				delete(tokens, sess.Token)
				if len(tokens) == 0 {
					delete(s.byEmail, sess.Email)
				}
			}
		}
		s.indexMu.Unlock()
	}
}
