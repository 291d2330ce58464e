// Package audit records the append-only mutation trail for binders and
// profiles.
package audit

import (
	"context"
	"time"

	"github.com/louisbranch/showbinder/internal/platform/id"
	"github.com/louisbranch/showbinder/internal/storage"
)

// Target types recorded on audit entries.
const (
	TargetBinder  = "binder"
	TargetProfile = "profile"
)

// Emitter records audit entries.
type Emitter struct {
	store       storage.AuditStore
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewEmitter creates a new audit emitter.
func NewEmitter(store storage.AuditStore) *Emitter {
	return &Emitter{store: store, clock: time.Now, idGenerator: id.NewID}
}

// Emit records an audit entry, filling in identity and timestamp when the
// caller leaves them zero. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, entry storage.AuditEntry) error {
	if e == nil || e.store == nil {
		return nil
	}
	if entry.ID == "" {
		generated, err := e.idGenerator()
		if err != nil {
			return err
		}
		entry.ID = generated
	}
	if entry.CreatedAt.IsZero() {
		if e.clock == nil {
			entry.CreatedAt = time.Now().UTC()
		} else {
			entry.CreatedAt = e.clock().UTC()
		}
	}
	return e.store.PutAuditEntry(ctx, entry)
}
