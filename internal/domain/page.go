package domain

import (
	"context"
	"net/url"
	"strings"
)

// Page represents a saved web page in the vault.
// Timestamps are epoch milliseconds and JSON field names are camelCase to
// stay byte-compatible with vaults migrated from the browser extension.
// swagger:model Page
type Page struct {
	ID            string   `json:"id"`
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Favicon       string   `json:"favicon,omitempty"`
	Screenshot    string   `json:"screenshot,omitempty"`
	CategoryID    string   `json:"categoryId,omitempty"`
	Tags          []string `json:"tags"`
	CreatedAt     int64    `json:"createdAt"`
	UpdatedAt     int64    `json:"updatedAt"`
	VisitCount    int      `json:"visitCount"`
	LastVisitedAt int64    `json:"lastVisitedAt,omitempty"`
	Domain        string   `json:"domain"`
	IsFavorite    bool     `json:"isFavorite"`
	IsArchived    bool     `json:"isArchived"`
}

// PageCreateInput holds the fields accepted when saving a page.
type PageCreateInput struct {
	URL         string
	Title       string
	Description string
	CategoryID  string
	Tags        []string
	Screenshot  string
	Favicon     string
}

// PageUpdateInput holds the updatable fields of a page. Nil means "leave
// unchanged". URL and Domain are deliberately absent: the domain is derived
// once at creation and never re-synced.
type PageUpdateInput struct {
	Title       *string
	Description *string
	CategoryID  *string
	Tags        []string
	IsFavorite  *bool
	IsArchived  *bool
}

// PageSortField selects the field used to order a filtered page listing.
type PageSortField string

const (
	SortByCreatedAt     PageSortField = "createdAt"
	SortByUpdatedAt     PageSortField = "updatedAt"
	SortByTitle         PageSortField = "title"
	SortByVisitCount    PageSortField = "visitCount"
	SortByLastVisitedAt PageSortField = "lastVisitedAt"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// PageFilters narrows a page listing. Nil pointer fields mean "no filter".
// A nil IsArchived excludes archived pages; CategoryID pointing at the empty
// string matches uncategorized pages.
type PageFilters struct {
	CategoryID *string
	Tags       []string
	IsFavorite *bool
	IsArchived *bool
	Domain     string
	Search     string
}

// DomainCount is one entry of the per-domain page count view.
// swagger:model DomainCount
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// PageTotals aggregates collection-wide counts. Total excludes archived
// pages; Archived counts them.
// swagger:model PageTotals
type PageTotals struct {
	Total     int `json:"total"`
	Favorites int `json:"favorites"`
	Archived  int `json:"archived"`
}

// PageService owns the page collection and every operation on it.
// Mutating operations persist the whole collection before returning.
// Absent ids are reported with nil/false returns, never errors.
type PageService interface {
	Initialize(ctx context.Context)
	Add(ctx context.Context, input PageCreateInput) *Page
	Update(ctx context.Context, id string, input PageUpdateInput) *Page
	Delete(ctx context.Context, id string) bool
	ToggleFavorite(ctx context.Context, id string) bool
	ToggleArchive(ctx context.Context, id string) bool
	IncrementVisit(ctx context.Context, id string)
	Get(id string) (*Page, bool)
	FindByURL(url string) (*Page, bool)
	Filtered(filters PageFilters, sortField PageSortField, order SortOrder) []*Page
	Domains() []DomainCount
	Totals() PageTotals
}

// PageCounter is the read-only fan-in that category and tag managers use to
// derive per-entity page counts. Archived pages are never counted.
type PageCounter interface {
	CountByCategory(categoryID string) int
	CountByTag(tagID string) int
}

// ExtractDomain returns the hostname of rawURL, or "" if it cannot be
// parsed. Called once when a page is saved; the result is never re-derived.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return u.Hostname()
}
