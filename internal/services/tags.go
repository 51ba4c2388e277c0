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

// popularTagLimit caps the popularity ranking.
const popularTagLimit = 10

// TagService owns the tag collection. Tag names are stored normalized and
// unique under normalization. Methods that hand out tags return copies,
// never the live structs.
type TagService struct {
	store  *storage.Store
	ids    domain.IDGenerator
	pages  domain.PageCounter
	logger *slog.Logger
	now    func() time.Time

	mu          sync.RWMutex
	tags        []*domain.Tag
	initialized bool

	collator *collate.Collator
}

// NewTagService creates a TagService. pages is the read-only fan-in used for
// per-tag counts.
func NewTagService(store *storage.Store, ids domain.IDGenerator, pages domain.PageCounter, logger *slog.Logger) *TagService {
	return &TagService{
		store:    store,
		ids:      ids,
		pages:    pages,
		logger:   logger,
		now:      time.Now,
		collator: collate.New(language.Und, collate.IgnoreCase),
	}
}

// Initialize loads persisted tags, defaulting to an empty collection.
// Idempotent.
func (s *TagService) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return
	}
	var stored []*domain.Tag
	found, res := s.store.Get(ctx, storage.KeyTags, &stored)
	switch {
	case !res.OK:
		s.logger.Warn("tags: load failed, starting empty", "reason", res.Reason)
		s.tags = []*domain.Tag{}
	case found && stored != nil:
		s.tags = stored
	default:
		s.tags = []*domain.Tag{}
	}
	s.initialized = true
}

// Reset drops every tag. Part of the vault clear flow, which wipes the
// backend first; nothing is written here.
func (s *TagService) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = []*domain.Tag{}
}

// AddOrGet returns the tag whose name normalizes to input.Name, creating it
// if absent. Idempotent: a second call with an equivalent name returns the
// existing tag unchanged and does not grow the collection.
func (s *TagService) AddOrGet(ctx context.Context, input domain.TagCreateInput) *domain.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := domain.NormalizeTagName(input.Name)
	if existing := s.findByNameLocked(name); existing != nil {
		return cloneTag(existing)
	}
	tag := &domain.Tag{
		ID:        s.ids.NewID(),
		Name:      name,
		Color:     input.Color,
		CreatedAt: s.now().UnixMilli(),
	}
	s.tags = append(s.tags, tag)
	s.persist(ctx)
	return cloneTag(tag)
}

// Update merges the provided fields over the tag with the given id; a new
// name is re-normalized before storing. Reports false if the id is absent.
func (s *TagService) Update(ctx context.Context, id string, input domain.TagUpdateInput) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag := s.findByIDLocked(id)
	if tag == nil {
		return false
	}
	if input.Name != nil {
		tag.Name = domain.NormalizeTagName(*input.Name)
	}
	if input.Color != nil {
		tag.Color = *input.Color
	}
	s.persist(ctx)
	return true
}

// Delete removes the tag. Pages referencing the id keep their dangling
// reference; counts and filters simply stop matching it.
func (s *TagService) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tags {
		if t.ID == id {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			s.persist(ctx)
			return true
		}
	}
	return false
}

// Search returns tags whose name contains query (case-insensitive), in
// collection order.
func (s *TagService) Search(query string) []*domain.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	var out []*domain.Tag
	for _, t := range s.tags {
		if strings.Contains(t.Name, q) {
			out = append(out, cloneTag(t))
		}
	}
	return out
}

// FindByID returns a copy of the tag with the given id.
func (s *TagService) FindByID(id string) (*domain.Tag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.findByIDLocked(id)
	if t == nil {
		return nil, false
	}
	return cloneTag(t), true
}

// FindByName returns a copy of the tag whose stored name matches name after
// normalization.
func (s *TagService) FindByName(name string) (*domain.Tag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.findByNameLocked(domain.NormalizeTagName(name))
	if t == nil {
		return nil, false
	}
	return cloneTag(t), true
}

// WithCounts returns every tag joined with its non-archived page count, in
// collection order.
func (s *TagService) WithCounts() []*domain.TagWithCount {
	s.mu.RLock()
	out := make([]*domain.TagWithCount, len(s.tags))
	for i, t := range s.tags {
		out[i] = &domain.TagWithCount{Tag: *t}
	}
	s.mu.RUnlock()

	// Counts come from the page service, so they are read without holding
	// the tag lock.
	for _, t := range out {
		t.PageCount = s.pages.CountByTag(t.ID)
	}
	return out
}

// Popular returns the tags with nonzero page counts, most used first,
// truncated to the top ten.
func (s *TagService) Popular() []*domain.TagWithCount {
	counted := s.WithCounts()
	out := counted[:0:0]
	for _, t := range counted {
		if t.PageCount > 0 {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PageCount > out[j].PageCount })
	if len(out) > popularTagLimit {
		out = out[:popularTagLimit]
	}
	return out
}

// Alphabetical returns copies of the tags sorted by locale-aware name
// comparison.
func (s *TagService) Alphabetical() []*domain.Tag {
	s.mu.RLock()
	out := make([]*domain.Tag, len(s.tags))
	for i, t := range s.tags {
		out[i] = cloneTag(t)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return s.collator.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}

// TagNames implements domain.TagNameLookup. Dangling ids are skipped.
func (s *TagService) TagNames(ids []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for _, id := range ids {
		if t := s.findByIDLocked(id); t != nil {
			names = append(names, t.Name)
		}
	}
	return names
}

func cloneTag(t *domain.Tag) *domain.Tag {
	cp := *t
	return &cp
}

func (s *TagService) persist(ctx context.Context) {
	s.store.Set(ctx, storage.KeyTags, s.tags)
}

func (s *TagService) findByIDLocked(id string) *domain.Tag {
	for _, t := range s.tags {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *TagService) findByNameLocked(normalized string) *domain.Tag {
	for _, t := range s.tags {
		if t.Name == normalized {
			return t
		}
	}
	return nil
}
