package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"sidevault/internal/domain"
	"sidevault/internal/storage"
)

// PageService owns the saved-page collection. The collection is held in
// memory and written back wholesale after every mutation; a failed write is
// logged by the storage boundary and the in-memory state stands. Every
// method that hands out pages returns copies, so callers can read them
// without holding the service lock.
type PageService struct {
	store  *storage.Store
	ids    domain.IDGenerator
	logger *slog.Logger
	now    func() time.Time

	mu          sync.RWMutex
	pages       []*domain.Page
	initialized bool
	loadReason  string

	collator *collate.Collator
	tagNames domain.TagNameLookup
}

// NewPageService creates a PageService. Initialize must be called before any
// other operation.
func NewPageService(store *storage.Store, ids domain.IDGenerator, logger *slog.Logger) *PageService {
	return &PageService{
		store:    store,
		ids:      ids,
		logger:   logger,
		now:      time.Now,
		collator: collate.New(language.Und, collate.IgnoreCase),
	}
}

// SetTagNameLookup wires the tag-name resolver used by free-text search.
// Called once during startup, after the tag service exists; search falls
// back to matching raw tag ids when no lookup is set.
func (s *PageService) SetTagNameLookup(lookup domain.TagNameLookup) {
	s.tagNames = lookup
}

// Initialize loads the persisted collection. Idempotent. A failed or
// malformed load still initializes, with an empty collection.
func (s *PageService) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return
	}
	var stored []*domain.Page
	found, res := s.store.Get(ctx, storage.KeyPages, &stored)
	switch {
	case !res.OK:
		s.logger.Warn("pages: load failed, starting empty", "reason", res.Reason)
		s.pages = []*domain.Page{}
		s.loadReason = res.Reason
	case found && stored != nil:
		s.pages = stored
	default:
		s.pages = []*domain.Page{}
	}
	s.initialized = true
}

// Reset drops every page. Part of the vault clear flow, which wipes the
// backend first; nothing is written here.
func (s *PageService) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = []*domain.Page{}
}

// Add saves a new page at the front of the collection and returns it.
func (s *PageService) Add(ctx context.Context, input domain.PageCreateInput) *domain.Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UnixMilli()
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	page := &domain.Page{
		ID:          s.ids.NewID(),
		URL:         input.URL,
		Title:       input.Title,
		Description: input.Description,
		Favicon:     input.Favicon,
		Screenshot:  input.Screenshot,
		CategoryID:  input.CategoryID,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
		Domain:      domain.ExtractDomain(input.URL),
	}
	s.pages = append([]*domain.Page{page}, s.pages...)
	s.persist(ctx)
	return clonePage(page)
}

// Update merges the provided fields over the page with the given id and
// returns the updated page, or nil if the id is absent. URL and domain are
// not updatable.
func (s *PageService) Update(ctx context.Context, id string, input domain.PageUpdateInput) *domain.Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := s.findLocked(id)
	if page == nil {
		return nil
	}
	if input.Title != nil {
		page.Title = *input.Title
	}
	if input.Description != nil {
		page.Description = *input.Description
	}
	if input.CategoryID != nil {
		page.CategoryID = *input.CategoryID
	}
	if input.Tags != nil {
		page.Tags = input.Tags
	}
	if input.IsFavorite != nil {
		page.IsFavorite = *input.IsFavorite
	}
	if input.IsArchived != nil {
		page.IsArchived = *input.IsArchived
	}
	page.UpdatedAt = s.now().UnixMilli()
	s.persist(ctx)
	return clonePage(page)
}

// Delete removes the page with the given id and reports whether it existed.
func (s *PageService) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.pages {
		if p.ID == id {
			s.pages = append(s.pages[:i], s.pages[i+1:]...)
			s.persist(ctx)
			return true
		}
	}
	return false
}

// ToggleFavorite flips the favorite flag. Reports false if the id is absent.
func (s *PageService) ToggleFavorite(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := s.findLocked(id)
	if page == nil {
		return false
	}
	page.IsFavorite = !page.IsFavorite
	page.UpdatedAt = s.now().UnixMilli()
	s.persist(ctx)
	return true
}

// ToggleArchive flips the archive flag. Archived pages stay in storage until
// explicitly deleted.
func (s *PageService) ToggleArchive(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := s.findLocked(id)
	if page == nil {
		return false
	}
	page.IsArchived = !page.IsArchived
	page.UpdatedAt = s.now().UnixMilli()
	s.persist(ctx)
	return true
}

// IncrementVisit bumps the visit counter and stamps the visit time.
// A missing id is silently ignored and nothing is written.
func (s *PageService) IncrementVisit(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := s.findLocked(id)
	if page == nil {
		return
	}
	page.VisitCount++
	page.LastVisitedAt = s.now().UnixMilli()
	s.persist(ctx)
}

// Get returns a copy of the page with the given id.
func (s *PageService) Get(id string) (*domain.Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.findLocked(id)
	if p == nil {
		return nil, false
	}
	return clonePage(p), true
}

// FindByURL returns the page with the exact url, if any. The side panel uses
// this to detect an already-saved page before offering "save".
func (s *PageService) FindByURL(url string) (*domain.Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.pages {
		if p.URL == url {
			return clonePage(p), true
		}
	}
	return nil, false
}

// Filtered applies filters in a fixed order (category, tags, favorite,
// archive, domain, free-text search) and sorts the result. When no archive
// filter is given, archived pages are excluded. The tag filter matches pages
// carrying any of the requested tags.
func (s *PageService) Filtered(filters domain.PageFilters, sortField domain.PageSortField, order domain.SortOrder) []*domain.Page {
	// Snapshot copies under the lock; filtering and sorting then run on
	// private structs while writers keep mutating the live collection.
	s.mu.RLock()
	result := make([]*domain.Page, len(s.pages))
	for i, p := range s.pages {
		result[i] = clonePage(p)
	}
	s.mu.RUnlock()

	if filters.CategoryID != nil {
		result = keep(result, func(p *domain.Page) bool { return p.CategoryID == *filters.CategoryID })
	}
	if len(filters.Tags) > 0 {
		result = keep(result, func(p *domain.Page) bool { return hasAnyTag(p, filters.Tags) })
	}
	if filters.IsFavorite != nil {
		result = keep(result, func(p *domain.Page) bool { return p.IsFavorite == *filters.IsFavorite })
	}
	if filters.IsArchived != nil {
		result = keep(result, func(p *domain.Page) bool { return p.IsArchived == *filters.IsArchived })
	} else {
		result = keep(result, func(p *domain.Page) bool { return !p.IsArchived })
	}
	if filters.Domain != "" {
		result = keep(result, func(p *domain.Page) bool { return p.Domain == filters.Domain })
	}
	if filters.Search != "" {
		needle := strings.ToLower(filters.Search)
		result = keep(result, func(p *domain.Page) bool { return s.matchesSearch(p, needle) })
	}

	s.sortPages(result, sortField, order)
	return result
}

// Domains returns non-archived page counts per domain, most pages first.
func (s *PageService) Domains() []domain.DomainCount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	var seen []string
	for _, p := range s.pages {
		if p.IsArchived {
			continue
		}
		if _, ok := counts[p.Domain]; !ok {
			seen = append(seen, p.Domain)
		}
		counts[p.Domain]++
	}
	out := make([]domain.DomainCount, 0, len(seen))
	for _, d := range seen {
		out = append(out, domain.DomainCount{Domain: d, Count: counts[d]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Totals returns collection-wide counts.
func (s *PageService) Totals() domain.PageTotals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t domain.PageTotals
	for _, p := range s.pages {
		if p.IsArchived {
			t.Archived++
			continue
		}
		t.Total++
		if p.IsFavorite {
			t.Favorites++
		}
	}
	return t
}

// CountByCategory implements domain.PageCounter.
func (s *PageService) CountByCategory(categoryID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, p := range s.pages {
		if !p.IsArchived && p.CategoryID == categoryID {
			n++
		}
	}
	return n
}

// CountByTag implements domain.PageCounter.
func (s *PageService) CountByTag(tagID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, p := range s.pages {
		if p.IsArchived {
			continue
		}
		for _, t := range p.Tags {
			if t == tagID {
				n++
				break
			}
		}
	}
	return n
}

func (s *PageService) matchesSearch(p *domain.Page, needle string) bool {
	if strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.URL), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) {
		return true
	}
	names := p.Tags
	if s.tagNames != nil {
		names = s.tagNames.TagNames(p.Tags)
	}
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), needle) {
			return true
		}
	}
	return false
}

func (s *PageService) sortPages(pages []*domain.Page, field domain.PageSortField, order domain.SortOrder) {
	cmp := func(a, b *domain.Page) int {
		switch field {
		case domain.SortByTitle:
			return s.collator.CompareString(a.Title, b.Title)
		case domain.SortByUpdatedAt:
			return compareInt64(a.UpdatedAt, b.UpdatedAt)
		case domain.SortByVisitCount:
			return compareInt64(int64(a.VisitCount), int64(b.VisitCount))
		case domain.SortByLastVisitedAt:
			return compareInt64(a.LastVisitedAt, b.LastVisitedAt)
		default:
			return compareInt64(a.CreatedAt, b.CreatedAt)
		}
	}
	sort.SliceStable(pages, func(i, j int) bool {
		c := cmp(pages[i], pages[j])
		if order == domain.SortAsc {
			return c < 0
		}
		return c > 0
	})
}

// persist writes the full collection. Write failures are already logged by
// the storage boundary; the in-memory mutation is kept either way.
func (s *PageService) persist(ctx context.Context) {
	s.store.Set(ctx, storage.KeyPages, s.pages)
}

// clonePage copies a page so the live struct never escapes the lock.
func clonePage(p *domain.Page) *domain.Page {
	cp := *p
	cp.Tags = make([]string, len(p.Tags))
	copy(cp.Tags, p.Tags)
	return &cp
}

func (s *PageService) findLocked(id string) *domain.Page {
	for _, p := range s.pages {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func keep(pages []*domain.Page, pred func(*domain.Page) bool) []*domain.Page {
	out := pages[:0:0]
	for _, p := range pages {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

func hasAnyTag(p *domain.Page, tags []string) bool {
	for _, want := range tags {
		for _, have := range p.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
