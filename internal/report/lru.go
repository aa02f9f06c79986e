package report

import "sync"

// LRUStore keeps the most recent records in memory and delegates to a
// backing Store on miss. Triage workloads read the same handful of
// recent runs repeatedly, so a tiny cache covers almost every Load.
type LRUStore struct {
	mu    sync.Mutex
	cap   int
	back  Store
	items map[string]*Record
	order []string // least recent first
}

// NewLRUStore creates an LRU cache with the given capacity delegating
// to back. Capacity must be >= 1.
func NewLRUStore(cap int, back Store) *LRUStore {
	if cap < 1 {
		cap = 1
	}
	return &LRUStore{
		cap:   cap,
		back:  back,
		items: make(map[string]*Record, cap),
	}
}

// Save caches the record and writes it through to the backing store.
func (s *LRUStore) Save(rec *Record) error {
	s.mu.Lock()
	s.put(rec)
	s.mu.Unlock()
	return s.back.Save(rec)
}

// Load returns the cached record or falls back to the backing store,
// caching the result.
func (s *LRUStore) Load(runID string) (*Record, error) {
	s.mu.Lock()
	if rec, ok := s.items[runID]; ok {
		s.touch(runID)
		s.mu.Unlock()
		return rec, nil
	}
	s.mu.Unlock()

	rec, err := s.back.Load(runID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.put(rec)
	s.mu.Unlock()
	return rec, nil
}

// put inserts or refreshes a record, evicting the least recent entry
// when over capacity. Caller holds mu.
func (s *LRUStore) put(rec *Record) {
	if _, ok := s.items[rec.ID]; ok {
		s.items[rec.ID] = rec
		s.touch(rec.ID)
		return
	}
	s.items[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	if len(s.order) > s.cap {
		evicted := s.order[0]
		s.order = s.order[1:]
		delete(s.items, evicted)
	}
}

// touch moves runID to the most-recent end. Caller holds mu.
func (s *LRUStore) touch(runID string) {
	for i, id := range s.order {
		if id == runID {
			s.order = append(append(s.order[:i:i], s.order[i+1:]...), runID)
			return
		}
	}
}
