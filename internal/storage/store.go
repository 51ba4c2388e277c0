// Package storage is the persistence boundary between collection managers
// and the key/value backend. Operations here never return errors: a failure
// is logged and reported as a Result with OK=false, so a single storage
// fault can never leave a manager mid-operation with an exception in flight.
package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strconv"

	"sidevault/internal/domain"
)

// Keys of the three persisted collections. The sidevault_ prefix is the
// extension's historical namespace and must not change, or migrated vaults
// would load empty.
const (
	KeyPages      = "sidevault_pages"
	KeyCategories = "sidevault_categories"
	KeyTags       = "sidevault_tags"
)

// Store wraps a domain.KVStore with JSON (de)serialization, the legacy
// storage-shape repair, and the swallow-and-log error policy.
type Store struct {
	kv     domain.KVStore
	logger *slog.Logger
}

// New creates a Store over the given key/value backend.
func New(kv domain.KVStore, logger *slog.Logger) *Store {
	return &Store{kv: kv, logger: logger}
}

// Get reads key and unmarshals its value into dest. found reports whether
// the key held a value; when it is false dest is left untouched. Failures
// (backend or malformed JSON) yield OK=false and found=false.
func (s *Store) Get(ctx context.Context, key string, dest any) (found bool, res domain.Result) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if err == domain.ErrNotFound {
			return false, domain.Ok()
		}
		s.logger.Error("storage get failed", "key", key, "err", err)
		return false, domain.Fail(err)
	}
	raw = repairLegacyArray(raw)
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Error("storage get: malformed value", "key", key, "err", err)
		return false, domain.Fail(err)
	}
	return true, domain.Ok()
}

// Set marshals value and writes it under key.
func (s *Store) Set(ctx context.Context, key string, value any) domain.Result {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("storage set: marshal failed", "key", key, "err", err)
		return domain.Fail(err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		s.logger.Error("storage set failed", "key", key, "err", err)
		return domain.Fail(err)
	}
	return domain.Ok()
}

// Remove deletes key. Removing an absent key succeeds.
func (s *Store) Remove(ctx context.Context, key string) domain.Result {
	if err := s.kv.Remove(ctx, key); err != nil {
		s.logger.Error("storage remove failed", "key", key, "err", err)
		return domain.Fail(err)
	}
	return domain.Ok()
}

// Clear deletes every key.
func (s *Store) Clear(ctx context.Context) domain.Result {
	if err := s.kv.Clear(ctx); err != nil {
		s.logger.Error("storage clear failed", "err", err)
		return domain.Fail(err)
	}
	return domain.Ok()
}

// Usage reports bytes used and quota. On failure both are zero.
func (s *Store) Usage(ctx context.Context) (domain.StorageUsage, domain.Result) {
	usage, err := s.kv.Usage(ctx)
	if err != nil {
		s.logger.Error("storage usage failed", "err", err)
		return domain.StorageUsage{}, domain.Fail(err)
	}
	return usage, domain.Ok()
}

// repairLegacyArray converts a historical storage shape: collections were
// once written as JSON objects keyed by numeric index strings instead of
// arrays. If raw is such an object its values are reassembled into an array
// in index order; anything else passes through unchanged.
func repairLegacyArray(raw []byte) []byte {
	trimmed := skipSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || len(obj) == 0 {
		return raw
	}
	type entry struct {
		idx int
		val json.RawMessage
	}
	entries := make([]entry, 0, len(obj))
	for k, v := range obj {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 {
			return raw
		}
		entries = append(entries, entry{idx: idx, val: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })
	values := make([]json.RawMessage, len(entries))
	for i, e := range entries {
		values[i] = e.val
	}
	fixed, err := json.Marshal(values)
	if err != nil {
		return raw
	}
	return fixed
}

func skipSpace(b []byte) []byte {
	for len(b) > 0 {
		switch b[0] {
		case ' ', '\t', '\n', '\r':
			b = b[1:]
		default:
			return b
		}
	}
	return b
}
