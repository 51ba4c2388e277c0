package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"sidevault/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes.
// requireAuth wraps every route except login and swagger.
func NewRouter(
	pages *controllers.PageController,
	categories *controllers.CategoryController,
	tags *controllers.TagController,
	auth *controllers.AuthController,
	storage *controllers.StorageController,
	requireAuth func(http.HandlerFunc) http.HandlerFunc,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /auth/login", auth.Login)

	// Pages
	mux.HandleFunc("GET /pages", requireAuth(pages.List))
	mux.HandleFunc("POST /pages", requireAuth(pages.Create))
	mux.HandleFunc("GET /pages/domains", requireAuth(pages.Domains))
	mux.HandleFunc("GET /pages/totals", requireAuth(pages.Totals))
	mux.HandleFunc("GET /pages/{pageID}", requireAuth(pages.Get))
	mux.HandleFunc("PATCH /pages/{pageID}", requireAuth(pages.Update))
	mux.HandleFunc("DELETE /pages/{pageID}", requireAuth(pages.Delete))
	mux.HandleFunc("POST /pages/{pageID}/favorite", requireAuth(pages.ToggleFavorite))
	mux.HandleFunc("POST /pages/{pageID}/archive", requireAuth(pages.ToggleArchive))
	mux.HandleFunc("POST /pages/{pageID}/visit", requireAuth(pages.Visit))
	mux.HandleFunc("POST /pages/{pageID}/share", requireAuth(pages.SharePage))

	// Categories
	mux.HandleFunc("GET /categories", requireAuth(categories.List))
	mux.HandleFunc("POST /categories", requireAuth(categories.Create))
	mux.HandleFunc("PUT /categories/reorder", requireAuth(categories.Reorder))
	mux.HandleFunc("PATCH /categories/{categoryID}", requireAuth(categories.Update))
	mux.HandleFunc("DELETE /categories/{categoryID}", requireAuth(categories.Delete))

	// Tags
	mux.HandleFunc("GET /tags", requireAuth(tags.List))
	mux.HandleFunc("POST /tags", requireAuth(tags.Create))
	mux.HandleFunc("GET /tags/popular", requireAuth(tags.Popular))
	mux.HandleFunc("GET /tags/search", requireAuth(tags.Search))
	mux.HandleFunc("PATCH /tags/{tagID}", requireAuth(tags.Update))
	mux.HandleFunc("DELETE /tags/{tagID}", requireAuth(tags.Delete))

	// Storage
	mux.HandleFunc("GET /storage/usage", requireAuth(storage.Usage))
	mux.HandleFunc("DELETE /storage", requireAuth(storage.Clear))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
