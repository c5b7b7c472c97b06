package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/Gunvolt24/movies/pkg/metrics"
)

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// Store — in-process LRU с абсолютным TTL на каждую запись.
// Только для разработки: между процессами не разделяется.
type Store struct {
	capacity int
	now      func() time.Time

	ll    *list.List
	index map[string]*list.Element

	mu sync.Mutex
}

// Option — настройка Store.
type Option func(*Store)

// WithClock — подмена часов (тесты).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func New(capacity int, opts ...Option) *Store {
	if capacity <= 0 {
		capacity = 1
	}
	s := &Store{
		capacity: capacity,
		now:      time.Now,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get — попадание поднимает запись в начало LRU, но срок жизни не продлевает.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.index[key]
	if !ok {
		return nil, false, nil
	}
	ent := elem.Value.(*entry)
	if isExpired(ent, now) {
		s.removeElement(elem)
		metrics.CacheOps.WithLabelValues("expired").Inc()
		metrics.CacheSize.Set(float64(len(s.index)))
		return nil, false, nil
	}
	s.ll.MoveToFront(elem)

	return cloneBytes(ent.value), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.index[key]; ok {
		ent := elem.Value.(*entry)
		ent.value = cloneBytes(value)
		ent.expiresAt = now.Add(ttl)
		s.ll.MoveToFront(elem)
		return nil
	}

	s.pruneExpiredFromBack(now)

	elem := s.ll.PushFront(&entry{
		key:       key,
		value:     cloneBytes(value),
		expiresAt: now.Add(ttl),
	})
	s.index[key] = elem
	metrics.CacheSize.Set(float64(len(s.index)))

	if s.ll.Len() > s.capacity {
		s.evictLRU()
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ll.Init()
	s.index = make(map[string]*list.Element)
	metrics.CacheSize.Set(0)
	return nil
}

// Len — число записей, включая ещё не вычищенные просроченные.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ll.Len()
}
