package issue

import "context"

// DismissedStore holds the fingerprints a user has dismissed during one
// editing session. Entries are only ever added or wiped wholesale; nothing
// selectively expires a single fingerprint.
type DismissedStore interface {
	Add(ctx context.Context, fingerprint string) error
	Contains(ctx context.Context, fingerprint string) (bool, error)
	Clear(ctx context.Context) error
}

// MemoryStore is the default in-process DismissedStore.
type MemoryStore struct {
	set map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{set: make(map[string]struct{})}
}

func (s *MemoryStore) Add(_ context.Context, fingerprint string) error {
	s.set[fingerprint] = struct{}{}
	return nil
}

func (s *MemoryStore) Contains(_ context.Context, fingerprint string) (bool, error) {
	_, ok := s.set[fingerprint]
	return ok, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.set = make(map[string]struct{})
	return nil
}
