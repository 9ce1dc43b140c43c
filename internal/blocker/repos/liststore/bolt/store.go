package bolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/VIJAY-mark/blockd/internal/blocker/domain"
	"github.com/VIJAY-mark/blockd/internal/blocker/repos/liststore"
)

var (
	bucketLists = []byte("lists")
	bucketMeta  = []byte("meta")

	keyBlockedCount = []byte("blockedCount")
)

// boltStore implements liststore.Store using bbolt.
type boltStore struct {
	db *bbolt.DB

	mu        sync.RWMutex
	listeners []liststore.ChangeListener
}

// New opens (or creates) a Bolt database at path, ensures buckets exist, and
// seeds missing keys with empty lists and a zero counter. Seeding is
// idempotent: existing values are never overwritten, so reopening the store
// after an upgrade keeps user data intact.
func New(path string) (liststore.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		lists, err := tx.CreateBucketIfNotExists(bucketLists)
		if err != nil {
			return err
		}
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		empty, err := json.Marshal([]string{})
		if err != nil {
			return err
		}
		for _, kind := range []domain.ListKind{domain.ListWhitelist, domain.ListBlacklist} {
			if lists.Get([]byte(kind)) == nil {
				if err := lists.Put([]byte(kind), empty); err != nil {
					return err
				}
			}
		}
		if meta.Get(keyBlockedCount) == nil {
			zero := make([]byte, 8)
			if err := meta.Put(keyBlockedCount, zero); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Close() error { return s.db.Close() }

// GetList returns the persisted domains for the given list kind.
// A missing key yields an empty list, not an error.
func (s *boltStore) GetList(kind domain.ListKind) ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketLists)
		if b == nil {
			return nil
		}
		v := b.Get([]byte(kind))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &out)
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", kind, err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// PutList replaces the persisted list for the given kind and notifies
// subscribers with the new value once the write has committed.
func (s *boltStore) PutList(kind domain.ListKind, domains []string) error {
	if domains == nil {
		domains = []string{}
	}
	v, err := json.Marshal(domains)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketLists).Put([]byte(kind), v)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}
	s.notify(kind, domains)
	return nil
}

func (s *boltStore) GetBlockedCount() (uint64, error) {
	var n uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if b == nil {
			return nil
		}
		if v := b.Get(keyBlockedCount); len(v) == 8 {
			n = binary.BigEndian.Uint64(v)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("read blockedCount: %w", err)
	}
	return n, nil
}

func (s *boltStore) SetBlockedCount(n uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyBlockedCount, buf)
	})
	if err != nil {
		return fmt.Errorf("write blockedCount: %w", err)
	}
	return nil
}

// Subscribe registers a listener fired synchronously after every list write.
func (s *boltStore) Subscribe(l liststore.ChangeListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// notify delivers the new list value to every subscriber. Each listener gets
// its own copy so it can retain the slice without aliasing the caller's.
func (s *boltStore) notify(kind domain.ListKind, domains []string) {
	s.mu.RLock()
	listeners := make([]liststore.ChangeListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		cp := make([]string, len(domains))
		copy(cp, domains)
		l.OnStoreChanged(kind, cp)
	}
}

var _ liststore.Store = (*boltStore)(nil)
