package session

import (
	"context"
	"sync"
	"time"

	domsession "example.com/storefront-cart/app/internal/domain/session"
)

// MemoryStore keeps encoded sessions in process memory. A background sweeper
// drops expired entries until Close is called.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string][]byte
	exp   map[string]time.Time
	now   func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewMemoryStore(sweepEvery time.Duration) *MemoryStore {
	s := &MemoryStore{
		items: make(map[string][]byte),
		exp:   make(map[string]time.Time),
		now:   time.Now,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	if sweepEvery <= 0 {
		close(s.done)
		return s
	}
	go s.sweepLoop(sweepEvery)
	return s
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*domsession.Session, error) {
	s.mu.Lock()
	data, ok := s.items[id]
	exp := s.exp[id]
	s.mu.Unlock()

	if !ok || (!exp.IsZero() && s.now().After(exp)) {
		return nil, domsession.ErrSessionNotFound
	}
	return decode(id, data)
}

func (s *MemoryStore) Save(ctx context.Context, sess *domsession.Session) error {
	data, err := encode(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items[sess.ID] = data
	s.exp[sess.ID] = sess.ExpiresAt
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	delete(s.exp, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	<-s.done
	return nil
}

func (s *MemoryStore) sweepLoop(every time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, exp := range s.exp {
		if !exp.IsZero() && now.After(exp) {
			delete(s.items, id)
			delete(s.exp, id)
		}
	}
}
