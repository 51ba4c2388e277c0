package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"sidevault/internal/domain"
	"sidevault/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// usageKV implements domain.KVStore for storage handler tests.
type usageKV struct {
	usage    domain.StorageUsage
	usageErr error
	clearErr error
	cleared  bool
}

func (k *usageKV) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, domain.ErrNotFound
}

func (k *usageKV) Set(ctx context.Context, key string, value []byte) error { return nil }

func (k *usageKV) Remove(ctx context.Context, key string) error { return nil }

func (k *usageKV) Clear(ctx context.Context) error {
	if k.clearErr != nil {
		return k.clearErr
	}
	k.cleared = true
	return nil
}

// resetSpy implements domain.CollectionResetter.
type resetSpy struct {
	calls int
}

func (r *resetSpy) Reset(ctx context.Context) { r.calls++ }

func (k *usageKV) Usage(ctx context.Context) (domain.StorageUsage, error) {
	if k.usageErr != nil {
		return domain.StorageUsage{}, k.usageErr
	}
	return k.usage, nil
}

func TestStorageController_Usage(t *testing.T) {
	t.Run("reports usage", func(t *testing.T) {
		kv := &usageKV{usage: domain.StorageUsage{BytesUsed: 2048, Quota: 10 * 1024 * 1024}}
		c := NewStorageController(testLogger, storage.New(kv, testLogger))

		req := httptest.NewRequest(http.MethodGet, "http://test/storage/usage", nil)
		rr := httptest.NewRecorder()
		c.Usage(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var envelope struct {
			Data domain.StorageUsage `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		assert.Equal(t, int64(2048), envelope.Data.BytesUsed)
		assert.Equal(t, int64(10*1024*1024), envelope.Data.Quota)
	})

	t.Run("backend failure", func(t *testing.T) {
		kv := &usageKV{usageErr: errors.New("connection refused")}
		c := NewStorageController(testLogger, storage.New(kv, testLogger))

		req := httptest.NewRequest(http.MethodGet, "http://test/storage/usage", nil)
		rr := httptest.NewRecorder()
		c.Usage(rr, req)

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		envelope := decodeEnvelope(t, rr)
		require.NotNil(t, envelope.Error)
		assert.Contains(t, envelope.Error.Message, "connection refused")
	})
}

func TestStorageController_Clear(t *testing.T) {
	t.Run("wipes the backend and resets the collections", func(t *testing.T) {
		kv := &usageKV{}
		pages := &resetSpy{}
		tags := &resetSpy{}
		c := NewStorageController(testLogger, storage.New(kv, testLogger), pages, tags)

		req := httptest.NewRequest(http.MethodDelete, "http://test/storage", nil)
		rr := httptest.NewRecorder()
		c.Clear(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var envelope struct {
			Data DeleteStatusResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		assert.Equal(t, "cleared", envelope.Data.Status)
		assert.True(t, kv.cleared)
		assert.Equal(t, 1, pages.calls)
		assert.Equal(t, 1, tags.calls)
	})

	t.Run("backend failure leaves the collections alone", func(t *testing.T) {
		kv := &usageKV{clearErr: errors.New("connection refused")}
		pages := &resetSpy{}
		c := NewStorageController(testLogger, storage.New(kv, testLogger), pages)

		req := httptest.NewRequest(http.MethodDelete, "http://test/storage", nil)
		rr := httptest.NewRecorder()
		c.Clear(rr, req)

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		envelope := decodeEnvelope(t, rr)
		require.NotNil(t, envelope.Error)
		assert.Contains(t, envelope.Error.Message, "connection refused")
		assert.Zero(t, pages.calls)
	})
}
