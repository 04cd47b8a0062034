package revocation

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryDenylist is a process-local, non-durable denylist.
// Entries carry their own expiry and are evicted lazily on lookup.
type MemoryDenylist struct {
	entries *lru.LRU[string, time.Time]
	now     func() time.Time
}

// NewMemoryDenylist bounds the set to size entries, each kept at most maxTTL.
func NewMemoryDenylist(size int, maxTTL time.Duration) *MemoryDenylist {
	if size <= 0 {
		size = 10_000
	}
	return &MemoryDenylist{
		entries: lru.NewLRU[string, time.Time](size, nil, maxTTL),
		now:     time.Now,
	}
}

// WithClock replaces the time source used for entry expiry.
func (m *MemoryDenylist) WithClock(now func() time.Time) *MemoryDenylist {
	m.now = now
	return m
}

func (m *MemoryDenylist) Revoke(_ context.Context, token string, until time.Time) error {
	k, err := key(token)
	if err != nil {
		return err
	}
	if !until.After(m.now()) {
		return nil
	}
	m.entries.Add(k, until)
	return nil
}

func (m *MemoryDenylist) IsRevoked(_ context.Context, token string) (bool, error) {
	k, err := key(token)
	if err != nil {
		return false, nil
	}
	until, ok := m.entries.Get(k)
	if !ok {
		return false, nil
	}
	if !m.now().Before(until) {
		m.entries.Remove(k)
		return false, nil
	}
	return true, nil
}

func (m *MemoryDenylist) Len() int { return m.entries.Len() }
