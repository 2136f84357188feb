package domain

// ProcessedSet tracks item ids that already completed classification.
// It keeps insertion order so the oldest ids can be evicted once the
// configured cap is exceeded, bounding growth across the system's lifetime.
type ProcessedSet struct {
	cap   int
	order []string
	index map[string]struct{}
}

// NewProcessedSet builds a set from previously persisted ids, applying the
// cap immediately (oldest first ids are dropped when over cap).
func NewProcessedSet(cap int, ids []string) *ProcessedSet {
	s := &ProcessedSet{
		cap:   cap,
		index: make(map[string]struct{}, len(ids)),
	}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Has reports membership.
func (s *ProcessedSet) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

// Add records an id, evicting the oldest entries once the cap is exceeded.
// Adding an existing id is a no-op and does not refresh its age.
func (s *ProcessedSet) Add(id string) {
	if id == "" {
		return
	}
	if _, ok := s.index[id]; ok {
		return
	}
	s.order = append(s.order, id)
	s.index[id] = struct{}{}
	for s.cap > 0 && len(s.order) > s.cap {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.index, oldest)
	}
}

// IDs returns the ids oldest-first. The returned slice is a copy.
func (s *ProcessedSet) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the current cardinality.
func (s *ProcessedSet) Len() int {
	return len(s.order)
}
