package listcache

import (
	"sync"
	"sync/atomic"

	"github.com/VIJAY-mark/blockd/internal/blocker/common/utils"
	"github.com/VIJAY-mark/blockd/internal/blocker/domain"
	"github.com/VIJAY-mark/blockd/internal/blocker/repos/liststore"
)

// Reader is the subset of the persisted store the mirror needs to hydrate.
type Reader interface {
	GetList(kind domain.ListKind) ([]string, error)
	GetBlockedCount() (uint64, error)
}

// Mirror holds the in-memory copies of the whitelist, the blacklist, and the
// blocked counter. The classifier reads it synchronously on the request path;
// the only mutation paths after hydration are store change notifications
// (full set replace) and IncrementBlocked.
type Mirror struct {
	mu        sync.RWMutex
	whitelist map[string]struct{}
	blacklist map[string]struct{}

	blocked atomic.Uint64
}

// New creates a Mirror with empty lists and a zero counter.
func New() *Mirror {
	return &Mirror{
		whitelist: make(map[string]struct{}),
		blacklist: make(map[string]struct{}),
	}
}

// Hydrate replaces the in-memory state with the store's current contents.
// Called once at startup, before the proxy starts serving, so early requests
// never race an empty mirror.
func (m *Mirror) Hydrate(r Reader) error {
	for _, kind := range []domain.ListKind{domain.ListWhitelist, domain.ListBlacklist} {
		domains, err := r.GetList(kind)
		if err != nil {
			return err
		}
		m.replace(kind, domains)
	}
	n, err := r.GetBlockedCount()
	if err != nil {
		return err
	}
	m.blocked.Store(n)
	return nil
}

// OnStoreChanged implements liststore.ChangeListener: the corresponding
// in-memory set is replaced entirely with the new value. A nil slice maps to
// an empty set.
func (m *Mirror) OnStoreChanged(kind domain.ListKind, domains []string) {
	m.replace(kind, domains)
}

func (m *Mirror) replace(kind domain.ListKind, domains []string) {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		set[utils.CanonicalHostname(d)] = struct{}{}
	}

	m.mu.Lock()
	switch kind {
	case domain.ListWhitelist:
		m.whitelist = set
	case domain.ListBlacklist:
		m.blacklist = set
	}
	m.mu.Unlock()
}

// InWhitelist reports whether the hostname is an exact member of the whitelist.
func (m *Mirror) InWhitelist(host string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.whitelist[host]
	return ok
}

// InBlacklist reports whether the hostname is an exact member of the blacklist.
func (m *Mirror) InBlacklist(host string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blacklist[host]
	return ok
}

// BlockedCount returns the current value of the blocked counter.
func (m *Mirror) BlockedCount() uint64 {
	return m.blocked.Load()
}

// IncrementBlocked bumps the blocked counter by one and returns the new value.
func (m *Mirror) IncrementBlocked() uint64 {
	return m.blocked.Add(1)
}

// Sizes returns the current whitelist and blacklist cardinalities.
func (m *Mirror) Sizes() (whitelist, blacklist int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.whitelist), len(m.blacklist)
}

var _ liststore.ChangeListener = (*Mirror)(nil)
