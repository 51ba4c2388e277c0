package services

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"sidevault/internal/domain"
	"sidevault/internal/storage"
)

// defaultCategories is seeded, in this order, on first run or when the
// persisted collection is missing or empty.
var defaultCategories = []struct {
	Name  string
	Color domain.CategoryColor
}{
	{"Work", domain.ColorBlue},
	{"Personal", domain.ColorGreen},
	{"Research", domain.ColorPurple},
	{"Shopping", domain.ColorOrange},
	{"Read Later", domain.ColorAmber},
}

// CategoryService owns the ordered category collection. Order values are
// kept dense and contiguous 0..N-1 across every structural change. Methods
// that hand out categories return copies, never the live structs.
type CategoryService struct {
	store  *storage.Store
	ids    domain.IDGenerator
	pages  domain.PageCounter
	logger *slog.Logger
	now    func() time.Time

	mu          sync.RWMutex
	categories  []*domain.Category
	initialized bool
}

// NewCategoryService creates a CategoryService. pages is the read-only
// fan-in used for per-category counts.
func NewCategoryService(store *storage.Store, ids domain.IDGenerator, pages domain.PageCounter, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		store:  store,
		ids:    ids,
		pages:  pages,
		logger: logger,
		now:    time.Now,
	}
}

// Initialize loads persisted categories, seeding the default set when none
// exist. Idempotent. A failed load still initializes with the defaults, but
// without persisting them over whatever the backend holds.
func (s *CategoryService) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return
	}
	var stored []*domain.Category
	found, res := s.store.Get(ctx, storage.KeyCategories, &stored)
	switch {
	case !res.OK:
		s.logger.Warn("categories: load failed, using defaults", "reason", res.Reason)
		s.categories = s.buildDefaults()
	case found && len(stored) > 0:
		s.categories = stored
	default:
		s.categories = s.buildDefaults()
		s.persist(ctx)
	}
	s.initialized = true
}

func (s *CategoryService) buildDefaults() []*domain.Category {
	now := s.now().UnixMilli()
	out := make([]*domain.Category, len(defaultCategories))
	for i, d := range defaultCategories {
		out[i] = &domain.Category{
			ID:        s.ids.NewID(),
			Name:      d.Name,
			Color:     d.Color,
			Order:     i,
			CreatedAt: now,
		}
	}
	return out
}

// Reset reseeds the default categories, as on first run. Part of the vault
// clear flow; the seeded set is persisted over the freshly wiped backend.
func (s *CategoryService) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = s.buildDefaults()
	s.persist(ctx)
}

// Add appends a category at the end of the display order and returns it.
func (s *CategoryService) Add(ctx context.Context, input domain.CategoryCreateInput) *domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	color := input.Color
	if color == "" {
		color = domain.ColorSlate
	}
	cat := &domain.Category{
		ID:        s.ids.NewID(),
		Name:      input.Name,
		Color:     color,
		Icon:      input.Icon,
		Order:     len(s.categories),
		CreatedAt: s.now().UnixMilli(),
	}
	s.categories = append(s.categories, cat)
	s.persist(ctx)
	return cloneCategory(cat)
}

// Update merges the provided fields over the category with the given id.
// Reports false if the id is absent.
func (s *CategoryService) Update(ctx context.Context, id string, input domain.CategoryUpdateInput) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat := s.findLocked(id)
	if cat == nil {
		return false
	}
	if input.Name != nil {
		cat.Name = *input.Name
	}
	if input.Color != nil {
		cat.Color = *input.Color
	}
	if input.Icon != nil {
		cat.Icon = *input.Icon
	}
	s.persist(ctx)
	return true
}

// Delete removes the category and renumbers the remaining order values back
// to a dense 0..N-1 sequence, preserving relative order. Pages referencing
// the removed id keep their dangling reference.
func (s *CategoryService) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, c := range s.categories {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}
	s.categories = append(s.categories[:idx], s.categories[idx+1:]...)
	for i, c := range s.categories {
		c.Order = i
	}
	s.persist(ctx)
	return true
}

// Reorder assigns order values by position in orderedIDs. Ids not present in
// the collection are skipped; categories omitted from orderedIDs keep their
// previous relative order and are renumbered after the named ones, so the
// dense 0..N-1 invariant holds for partial input too.
func (s *CategoryService) Reorder(ctx context.Context, orderedIDs []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := make(map[string]int, len(orderedIDs))
	next := 0
	for _, id := range orderedIDs {
		if _, dup := pos[id]; dup {
			continue
		}
		if s.findLocked(id) != nil {
			pos[id] = next
			next++
		}
	}

	sort.SliceStable(s.categories, func(i, j int) bool {
		pi, iNamed := pos[s.categories[i].ID]
		pj, jNamed := pos[s.categories[j].ID]
		switch {
		case iNamed && jNamed:
			return pi < pj
		case iNamed:
			return true
		case jNamed:
			return false
		default:
			return s.categories[i].Order < s.categories[j].Order
		}
	})
	for i, c := range s.categories {
		c.Order = i
	}
	s.persist(ctx)
	return true
}

// FindByID returns a copy of the category with the given id.
func (s *CategoryService) FindByID(id string) (*domain.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.findLocked(id)
	if c == nil {
		return nil, false
	}
	return cloneCategory(c), true
}

// Sorted returns copies of the categories by display order, ascending.
func (s *CategoryService) Sorted() []*domain.Category {
	s.mu.RLock()
	out := make([]*domain.Category, len(s.categories))
	for i, c := range s.categories {
		out[i] = cloneCategory(c)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// WithCounts returns categories in display order joined with their
// non-archived page counts.
func (s *CategoryService) WithCounts() []*domain.CategoryWithCount {
	sorted := s.Sorted()
	out := make([]*domain.CategoryWithCount, len(sorted))
	for i, c := range sorted {
		out[i] = &domain.CategoryWithCount{
			Category:  *c,
			PageCount: s.pages.CountByCategory(c.ID),
		}
	}
	return out
}

func cloneCategory(c *domain.Category) *domain.Category {
	cp := *c
	return &cp
}

func (s *CategoryService) persist(ctx context.Context) {
	s.store.Set(ctx, storage.KeyCategories, s.categories)
}

func (s *CategoryService) findLocked(id string) *domain.Category {
	for _, c := range s.categories {
		if c.ID == id {
			return c
		}
	}
	return nil
}
