package liststore

import "github.com/VIJAY-mark/blockd/internal/blocker/domain"

// ChangeListener receives a notification whenever one of the persisted list
// keys is written. The new value is the full list; a nil slice means the key
// was cleared. Implementations must treat the notification as a full replace.
type ChangeListener interface {
	OnStoreChanged(kind domain.ListKind, domains []string)
}

// Store abstracts the persisted key-value collaborator that owns the
// whitelist, the blacklist, and the blocked counter.
//
//   - GetList/PutList read and replace a whole list by kind
//   - GetBlockedCount/SetBlockedCount read and replace the counter
//   - Subscribe registers a listener fired on every list write
//   - Close releases resources
//
// PutList notifies subscribers after the write commits. Counter writes do not
// notify; the counter's single writer is the classifier, which already holds
// the current value in memory.
type Store interface {
	GetList(kind domain.ListKind) ([]string, error)
	PutList(kind domain.ListKind, domains []string) error
	GetBlockedCount() (uint64, error)
	SetBlockedCount(n uint64) error
	Subscribe(l ChangeListener)
	Close() error
}
