package button

import (
	"errors"
	"fmt"
)

// Set is an ordered collection of named Readers sampled together.
type Set struct {
	names   []string
	readers map[string]*Reader
	stale   map[string]bool
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{readers: make(map[string]*Reader), stale: make(map[string]bool)}
}

// Add registers r under name. Adding a name twice replaces the reader but
// keeps its original position.
func (s *Set) Add(name string, r *Reader) {
	if _, ok := s.readers[name]; !ok {
		s.names = append(s.names, name)
	}
	s.readers[name] = r
	delete(s.stale, name)
}

// Get returns the reader registered under name.
func (s *Set) Get(name string) (*Reader, bool) {
	r, ok := s.readers[name]
	return r, ok
}

// Names returns registered names in insertion order.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// SampleAll samples every reader in insertion order. A failure does not
// stop the pass: each one is wrapped with the reader name and the results
// are joined.
//
// A reader whose signal read failed keeps its previous history; Sampled
// reports false for it until the next pass. A reader that sampled but failed
// to report still counts as sampled.
func (s *Set) SampleAll() error {
	var errs []error
	for _, name := range s.names {
		r := s.readers[name]
		before := r.shifts
		err := r.Sample()
		s.stale[name] = r.shifts == before
		if err != nil {
			errs = append(errs, fmt.Errorf("sample %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Sampled reports whether the latest SampleAll shifted the history of the
// reader registered under name. Edges of a reader that was not sampled
// belong to an earlier cycle.
func (s *Set) Sampled(name string) bool {
	_, ok := s.readers[name]
	return ok && !s.stale[name]
}
