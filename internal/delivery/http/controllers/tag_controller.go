package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"sidevault/internal/delivery/http/helpers"
	"sidevault/internal/domain"
)

// CreateTagRequest is the request body for POST /tags.
type CreateTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Validate implements Validator.
func (c CreateTagRequest) Validate() []string {
	var errs []string
	if domain.NormalizeTagName(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// UpdateTagRequest is the request body for PATCH /tags/{tagID}.
// All fields optional; omitted fields are unchanged. A new name is stored normalized.
type UpdateTagRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// Validate implements Validator.
func (u UpdateTagRequest) Validate() []string {
	var errs []string
	if u.Name != nil && domain.NormalizeTagName(*u.Name) == "" {
		errs = append(errs, "name must not be blank")
	}
	return errs
}

type TagController struct {
	Logger *slog.Logger
	Tags   domain.TagService
}

func NewTagController(logger *slog.Logger, tags domain.TagService) *TagController {
	return &TagController{
		Logger: logger,
		Tags:   tags,
	}
}

// List godoc
// @Summary List tags with page counts
// @Description Returns all tags, each with its non-archived page count.
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the tag list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /tags [get]
func (c *TagController) List(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Tags.WithCounts())
}

// Popular godoc
// @Summary List the most used tags
// @Description Returns the top tags by non-archived page count, most used first. Tags with zero pages are omitted.
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the popular tags"
// @Router /tags/popular [get]
func (c *TagController) Popular(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Tags.Popular())
}

// Search godoc
// @Summary Search tags by name
// @Description Case-insensitive substring match on tag names. An empty query returns all tags alphabetically.
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search query"
// @Success 200 {object} helpers.APIResponse "data contains the matching tags"
// @Router /tags/search [get]
func (c *TagController) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		helpers.WriteJSONSuccess(w, http.StatusOK, c.Tags.Alphabetical())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Tags.Search(q))
}

// Create godoc
// @Summary Create a tag (or return the existing one)
// @Description Tag names are unique after trimming and lowercasing. Posting an existing name returns the existing tag unchanged.
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tag body CreateTagRequest true "Tag data"
// @Success 201 {object} helpers.APIResponse "data contains the tag"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /tags [post]
func (c *TagController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	tag := c.Tags.AddOrGet(r.Context(), domain.TagCreateInput{
		Name:  req.Name,
		Color: req.Color,
	})
	helpers.WriteJSONSuccess(w, http.StatusCreated, tag)
}

// Update godoc
// @Summary Update a tag
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tagID path string true "Tag ID"
// @Param tag body UpdateTagRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated tag"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /tags/{tagID} [patch]
func (c *TagController) Update(w http.ResponseWriter, r *http.Request) {
	tagID := r.PathValue("tagID")
	var req UpdateTagRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if !c.Tags.Update(r.Context(), tagID, domain.TagUpdateInput{Name: req.Name, Color: req.Color}) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "tag not found")
		return
	}
	tag, _ := c.Tags.FindByID(tagID)
	helpers.WriteJSONSuccess(w, http.StatusOK, tag)
}

// Delete godoc
// @Summary Delete a tag
// @Description Removes the tag. Pages keep the tag id in their tag list; it stops resolving to a name.
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Param tagID path string true "Tag ID"
// @Success 200 {object} helpers.APIResponse "data contains status deleted"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /tags/{tagID} [delete]
func (c *TagController) Delete(w http.ResponseWriter, r *http.Request) {
	tagID := r.PathValue("tagID")
	if !c.Tags.Delete(r.Context(), tagID) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "tag not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteStatusResponse{Status: "deleted"})
}
