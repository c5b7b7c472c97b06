package memory

import (
	"container/list"
	"time"

	"github.com/Gunvolt24/movies/pkg/metrics"
)

// evictLRU — удаляет наименее используемый элемент.
func (s *Store) evictLRU() {
	if back := s.ll.Back(); back != nil {
		s.removeElement(back)
		metrics.CacheOps.WithLabelValues("evicted").Inc()
		metrics.CacheSize.Set(float64(s.ll.Len()))
	}
}

// removeElement — удаляет элемент из списка и индекса.
func (s *Store) removeElement(elem *list.Element) {
	if elem == nil {
		return
	}
	if ent, ok := elem.Value.(*entry); ok {
		delete(s.index, ent.key)
	}
	s.ll.Remove(elem)
}

// pruneExpiredFromBack — вычищает просроченные записи с хвоста до первой живой.
// Записи с разным TTL могут лежать вперемешку, поэтому это чистка «по пути», а не полная.
func (s *Store) pruneExpiredFromBack(now time.Time) {
	for {
		back := s.ll.Back()
		if back == nil {
			return
		}
		ent, ok := back.Value.(*entry)
		if !ok || isExpired(ent, now) {
			s.removeElement(back)
			metrics.CacheOps.WithLabelValues("expired").Inc()
			metrics.CacheSize.Set(float64(s.ll.Len()))
			continue
		}
		return
	}
}

func isExpired(ent *entry, now time.Time) bool {
	return !now.Before(ent.expiresAt)
}

// cloneBytes — копия значения, чтобы вызывающий не мог менять данные внутри кэша.
func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
