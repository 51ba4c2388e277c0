package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"sidevault/internal/delivery/http/helpers"
	"sidevault/internal/domain"
)

// emailRegex matches a simple email format (local@domain with at least one dot in domain).
var emailRegex = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// CreatePageRequest is the request body for POST /pages.
type CreatePageRequest struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CategoryID  string   `json:"categoryId"`
	Tags        []string `json:"tags"`
	Screenshot  string   `json:"screenshot"`
	Favicon     string   `json:"favicon"`
}

// Validate implements Validator.
func (c CreatePageRequest) Validate() []string {
	var errs []string
	raw := strings.TrimSpace(c.URL)
	if raw == "" {
		errs = append(errs, "url is required")
	} else if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "url must be absolute")
	}
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	return errs
}

// UpdatePageRequest is the request body for PATCH /pages/{pageID}.
// All fields optional; omitted fields are unchanged. URL is not updatable.
type UpdatePageRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	CategoryID  *string  `json:"categoryId"`
	Tags        []string `json:"tags"`
	IsFavorite  *bool    `json:"isFavorite"`
	IsArchived  *bool    `json:"isArchived"`
}

// Validate implements Validator.
func (u UpdatePageRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title must not be blank")
	}
	return errs
}

// SharePageRequest is the request body for POST /pages/{pageID}/share.
type SharePageRequest struct {
	To string `json:"to"`
}

// Validate implements Validator.
func (s SharePageRequest) Validate() []string {
	var errs []string
	to := strings.TrimSpace(s.To)
	if to == "" {
		errs = append(errs, "to is required")
	} else if !emailRegex.MatchString(to) {
		errs = append(errs, "invalid email format")
	}
	return errs
}

// DeleteStatusResponse is the success payload for delete endpoints.
type DeleteStatusResponse struct {
	Status string `json:"status"`
}

type PageController struct {
	Logger *slog.Logger
	Pages  domain.PageService
	Share  domain.ShareService
}

func NewPageController(logger *slog.Logger, pages domain.PageService, share domain.ShareService) *PageController {
	return &PageController{
		Logger: logger,
		Pages:  pages,
		Share:  share,
	}
}

// List godoc
// @Summary List pages
// @Description Returns pages matching the query filters, sorted. Archived pages are excluded unless archived=true. category_id= (empty value matches uncategorized), tags= (comma-separated, any match), favorite=true, domain=, search= (title, url, description, and tag names), sort= (createdAt|updatedAt|title|visitCount|lastVisitedAt), order= (asc|desc). url= looks up the single page saved for that URL.
// @Tags pages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the page list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /pages [get]
func (c *PageController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if rawURL := q.Get("url"); rawURL != "" {
		page, ok := c.Pages.FindByURL(rawURL)
		if !ok {
			helpers.WriteJSONSuccess(w, http.StatusOK, []*domain.Page{})
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, []*domain.Page{page})
		return
	}

	var filters domain.PageFilters
	if q.Has("category_id") {
		v := q.Get("category_id")
		filters.CategoryID = &v
	}
	if tags := q.Get("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filters.Tags = append(filters.Tags, t)
			}
		}
	}
	if v := q.Get("favorite"); v != "" {
		fav := v == "true"
		filters.IsFavorite = &fav
	}
	if v := q.Get("archived"); v != "" {
		arch := v == "true"
		filters.IsArchived = &arch
	}
	filters.Domain = q.Get("domain")
	filters.Search = q.Get("search")

	sortField := domain.SortByCreatedAt
	switch domain.PageSortField(q.Get("sort")) {
	case domain.SortByUpdatedAt:
		sortField = domain.SortByUpdatedAt
	case domain.SortByTitle:
		sortField = domain.SortByTitle
	case domain.SortByVisitCount:
		sortField = domain.SortByVisitCount
	case domain.SortByLastVisitedAt:
		sortField = domain.SortByLastVisitedAt
	}
	order := domain.SortDesc
	if q.Get("order") == string(domain.SortAsc) {
		order = domain.SortAsc
	}

	pages := c.Pages.Filtered(filters, sortField, order)
	helpers.WriteJSONSuccess(w, http.StatusOK, pages)
}

// Create godoc
// @Summary Save a page
// @Description Saves a web page into the vault. The domain is derived from the URL; id and timestamps are server-generated.
// @Tags pages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page body CreatePageRequest true "Page data"
// @Success 201 {object} helpers.APIResponse "data contains the saved page"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /pages [post]
func (c *PageController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePageRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	page := c.Pages.Add(r.Context(), domain.PageCreateInput{
		URL:         strings.TrimSpace(req.URL),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Tags:        req.Tags,
		Screenshot:  req.Screenshot,
		Favicon:     req.Favicon,
	})
	helpers.WriteJSONSuccess(w, http.StatusCreated, page)
}

// Get godoc
// @Summary Get a page by ID
// @Tags pages
// @Produce json
// @Security BearerAuth
// @Param pageID path string true "Page ID"
// @Success 200 {object} helpers.APIResponse "data contains the page"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /pages/{pageID} [get]
func (c *PageController) Get(w http.ResponseWriter, r *http.Request) {
	pageID := r.PathValue("pageID")
	page, ok := c.Pages.Get(pageID)
	if !ok {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "page not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}

// Update godoc
// @Summary Update a page
// @Description Updates page fields. Omitted fields are unchanged; url and domain are never updated.
// @Tags pages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pageID path string true "Page ID"
// @Param page body UpdatePageRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated page"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /pages/{pageID} [patch]
func (c *PageController) Update(w http.ResponseWriter, r *http.Request) {
	pageID := r.PathValue("pageID")
	var req UpdatePageRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	page := c.Pages.Update(r.Context(), pageID, domain.PageUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Tags:        req.Tags,
		IsFavorite:  req.IsFavorite,
		IsArchived:  req.IsArchived,
	})
	if page == nil {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "page not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}

// Delete godoc
// @Summary Delete a page
// @Tags pages
// @Produce json
// @Security BearerAuth
// @Param pageID path string true "Page ID"
// @Success 200 {object} helpers.APIResponse "data contains status deleted"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /pages/{pageID} [delete]
func (c *PageController) Delete(w http.ResponseWriter, r *http.Request) {
	pageID := r.PathValue("pageID")
	if !c.Pages.Delete(r.Context(), pageID) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "page not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteStatusResponse{Status: "deleted"})
}

// ToggleFavorite godoc
// @Summary Toggle a page's favorite flag
// @Tags pages
// @Produce json
// @Security BearerAuth
// @Param pageID path string true "Page ID"
// @Success 200 {object} helpers.APIResponse "data contains the updated page"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /pages/{pageID}/favorite [post]
func (c *PageController) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	pageID := r.PathValue("pageID")
	if !c.Pages.ToggleFavorite(r.Context(), pageID) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "page not found")
		return
	}
	page, _ := c.Pages.Get(pageID)
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}

// ToggleArchive godoc
// @Summary Toggle a page's archived flag
// @Tags pages
// @Produce json
// @Security BearerAuth
// @Param pageID path string true "Page ID"
// @Success 200 {object} helpers.APIResponse "data contains the updated page"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /pages/{pageID}/archive [post]
func (c *PageController) ToggleArchive(w http.ResponseWriter, r *http.Request) {
	pageID := r.PathValue("pageID")
	if !c.Pages.ToggleArchive(r.Context(), pageID) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "page not found")
		return
	}
	page, _ := c.Pages.Get(pageID)
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}

// Visit godoc
// @Summary Record a visit to a page
// @Description Increments the page's visit count and stamps lastVisitedAt. Unknown page ids are ignored.
// @Tags pages
// @Produce json
// @Security BearerAuth
// @Param pageID path string true "Page ID"
// @Success 200 {object} helpers.APIResponse "data contains status recorded"
// @Router /pages/{pageID}/visit [post]
func (c *PageController) Visit(w http.ResponseWriter, r *http.Request) {
	pageID := r.PathValue("pageID")
	c.Pages.IncrementVisit(r.Context(), pageID)
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteStatusResponse{Status: "recorded"})
}

// SharePage godoc
// @Summary Share a page by email
// @Description Emails the page's title, link, and description to a recipient.
// @Tags pages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pageID path string true "Page ID"
// @Param body body SharePageRequest true "Recipient"
// @Success 200 {object} helpers.APIResponse "data contains status sent"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /pages/{pageID}/share [post]
func (c *PageController) SharePage(w http.ResponseWriter, r *http.Request) {
	pageID := r.PathValue("pageID")
	var req SharePageRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Share.SharePage(r.Context(), pageID, strings.TrimSpace(req.To)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "page not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteStatusResponse{Status: "sent"})
}

// Domains godoc
// @Summary List page counts per domain
// @Description Returns non-archived page counts grouped by domain, most pages first.
// @Tags pages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the domain counts"
// @Router /pages/domains [get]
func (c *PageController) Domains(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Pages.Domains())
}

// Totals godoc
// @Summary Collection totals
// @Description Returns total non-archived, favorite, and archived page counts.
// @Tags pages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the totals"
// @Router /pages/totals [get]
func (c *PageController) Totals(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Pages.Totals())
}
