package guides

import "sync/atomic"

// Store holds the current Repository and replaces it atomically on reload.
// Readers always see either the complete old or the complete new set.
type Store struct {
	current atomic.Pointer[Repository]
}

// NewStore returns a Store serving repo.
func NewStore(repo *Repository) *Store {
	s := &Store{}
	s.current.Store(repo)
	return s
}

// Current returns the repository in effect.
func (s *Store) Current() *Repository {
	return s.current.Load()
}

// Swap installs repo and returns the previous repository.
func (s *Store) Swap(repo *Repository) *Repository {
	return s.current.Swap(repo)
}
