package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"sidevault/internal/delivery/http/helpers"
	"sidevault/internal/domain"
	"sidevault/internal/storage"
)

type StorageController struct {
	Logger      *slog.Logger
	Store       *storage.Store
	Collections []domain.CollectionResetter
}

func NewStorageController(logger *slog.Logger, store *storage.Store, collections ...domain.CollectionResetter) *StorageController {
	return &StorageController{
		Logger:      logger,
		Store:       store,
		Collections: collections,
	}
}

// Usage godoc
// @Summary Storage usage
// @Description Returns bytes used by the vault and the configured quota.
// @Tags storage
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains bytesUsed and quota"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /storage/usage [get]
func (c *StorageController) Usage(w http.ResponseWriter, r *http.Request) {
	usage, res := c.Store.Usage(r.Context())
	if !res.OK {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", errors.New(res.Reason))
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, res.Reason)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, usage)
}

// Clear godoc
// @Summary Clear the vault
// @Description Wipes the persisted vault and restores every collection to its first-run state.
// @Tags storage
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /storage [delete]
func (c *StorageController) Clear(w http.ResponseWriter, r *http.Request) {
	if res := c.Store.Clear(r.Context()); !res.OK {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", errors.New(res.Reason))
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, res.Reason)
		return
	}
	for _, col := range c.Collections {
		col.Reset(r.Context())
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteStatusResponse{Status: "cleared"})
}
