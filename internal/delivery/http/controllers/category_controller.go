package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"sidevault/internal/delivery/http/helpers"
	"sidevault/internal/domain"
)

// CreateCategoryRequest is the request body for POST /categories.
type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Validate implements Validator.
func (c CreateCategoryRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.Color != "" && !domain.ValidCategoryColor(domain.CategoryColor(c.Color)) {
		errs = append(errs, "unknown color")
	}
	return errs
}

// UpdateCategoryRequest is the request body for PATCH /categories/{categoryID}.
// All fields optional; omitted fields are unchanged.
type UpdateCategoryRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

// Validate implements Validator.
func (u UpdateCategoryRequest) Validate() []string {
	var errs []string
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name must not be blank")
	}
	if u.Color != nil && !domain.ValidCategoryColor(domain.CategoryColor(*u.Color)) {
		errs = append(errs, "unknown color")
	}
	return errs
}

// ReorderCategoriesRequest is the request body for PUT /categories/reorder.
// IDs are category ids in their new display order; categories not named keep
// their previous relative order after the named ones.
type ReorderCategoriesRequest struct {
	IDs []string `json:"ids"`
}

// Validate implements Validator.
func (r ReorderCategoriesRequest) Validate() []string {
	var errs []string
	if len(r.IDs) == 0 {
		errs = append(errs, "ids is required")
	}
	return errs
}

type CategoryController struct {
	Logger     *slog.Logger
	Categories domain.CategoryService
}

func NewCategoryController(logger *slog.Logger, categories domain.CategoryService) *CategoryController {
	return &CategoryController{
		Logger:     logger,
		Categories: categories,
	}
}

// List godoc
// @Summary List categories with page counts
// @Description Returns all categories in display order, each with its non-archived page count.
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the category list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /categories [get]
func (c *CategoryController) List(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Categories.WithCounts())
}

// Create godoc
// @Summary Create a category
// @Description Creates a category appended at the end of the display order. Color defaults to slate.
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category body CreateCategoryRequest true "Category data"
// @Success 201 {object} helpers.APIResponse "data contains the created category"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /categories [post]
func (c *CategoryController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	category := c.Categories.Add(r.Context(), domain.CategoryCreateInput{
		Name:  strings.TrimSpace(req.Name),
		Color: domain.CategoryColor(req.Color),
		Icon:  req.Icon,
	})
	helpers.WriteJSONSuccess(w, http.StatusCreated, category)
}

// Update godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param categoryID path string true "Category ID"
// @Param category body UpdateCategoryRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated category"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /categories/{categoryID} [patch]
func (c *CategoryController) Update(w http.ResponseWriter, r *http.Request) {
	categoryID := r.PathValue("categoryID")
	var req UpdateCategoryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	var input domain.CategoryUpdateInput
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		input.Name = &name
	}
	if req.Color != nil {
		color := domain.CategoryColor(*req.Color)
		input.Color = &color
	}
	input.Icon = req.Icon
	if !c.Categories.Update(r.Context(), categoryID, input) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "category not found")
		return
	}
	category, _ := c.Categories.FindByID(categoryID)
	helpers.WriteJSONSuccess(w, http.StatusOK, category)
}

// Delete godoc
// @Summary Delete a category
// @Description Removes the category and closes the gap in the display order. Pages keep their categoryId.
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param categoryID path string true "Category ID"
// @Success 200 {object} helpers.APIResponse "data contains status deleted"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /categories/{categoryID} [delete]
func (c *CategoryController) Delete(w http.ResponseWriter, r *http.Request) {
	categoryID := r.PathValue("categoryID")
	if !c.Categories.Delete(r.Context(), categoryID) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "category not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteStatusResponse{Status: "deleted"})
}

// Reorder godoc
// @Summary Reorder categories
// @Description Applies a new display order. Unknown ids are skipped; categories omitted from the list follow the named ones in their previous relative order.
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ReorderCategoriesRequest true "Category ids in new order"
// @Success 200 {object} helpers.APIResponse "data contains the reordered category list"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /categories/reorder [put]
func (c *CategoryController) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderCategoriesRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	c.Categories.Reorder(r.Context(), req.IDs)
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Categories.Sorted())
}
