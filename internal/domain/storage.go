package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned by storage backends when a key holds no value.
var ErrNotFound = errors.New("not found")

// StorageUsage reports how much of the vault's storage quota is in use.
// swagger:model StorageUsage
type StorageUsage struct {
	BytesUsed int64 `json:"bytesUsed"`
	Quota     int64 `json:"quota"`
}

// KVStore is the host key/value storage port. Values are opaque JSON
// documents. Get returns ErrNotFound for an absent key.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Usage(ctx context.Context) (StorageUsage, error)
}

// Result is the outcome of a storage-boundary operation. The boundary never
// propagates errors to collection managers; a failed operation reports
// OK=false with the reason captured for diagnostics.
type Result struct {
	OK     bool
	Reason string
}

// Ok is the successful Result.
func Ok() Result { return Result{OK: true} }

// Fail builds a failed Result from err. A nil err yields Ok.
func Fail(err error) Result {
	if err == nil {
		return Ok()
	}
	return Result{OK: false, Reason: err.Error()}
}

// IDGenerator produces unique opaque identifiers for new entities.
type IDGenerator interface {
	NewID() string
}

// CollectionResetter restores an in-memory collection to its first-run
// state after the backing store has been wiped.
type CollectionResetter interface {
	Reset(ctx context.Context)
}
