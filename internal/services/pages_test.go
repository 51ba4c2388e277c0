package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sidevault/internal/domain"
	"sidevault/internal/storage"
)

// memKV implements domain.KVStore in memory for service tests.
type memKV struct {
	mu       sync.Mutex
	data     map[string][]byte
	getErr   error
	setErr   error
	setCalls int
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	return nil
}

func (m *memKV) Usage(ctx context.Context) (domain.StorageUsage, error) {
	return domain.StorageUsage{}, nil
}

// seqIDs implements domain.IDGenerator with predictable ids.
type seqIDs struct {
	prefix string
	n      int
}

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// stepClock returns a strictly increasing clock with 1ms steps.
func stepClock() func() time.Time {
	base := time.UnixMilli(1_700_000_000_000)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Millisecond)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestPageService(kv *memKV) *PageService {
	svc := NewPageService(storage.New(kv, discardLogger()), &seqIDs{prefix: "page"}, discardLogger())
	svc.now = stepClock()
	svc.Initialize(context.Background())
	return svc
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestPageService_Add(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	svc := newTestPageService(kv)

	p1 := svc.Add(ctx, domain.PageCreateInput{URL: "https://go.dev/blog", Title: "The Go Blog"})
	p2 := svc.Add(ctx, domain.PageCreateInput{URL: "https://example.com", Title: "Example", Tags: []string{"tag-1"}})

	require.NotEmpty(t, p1.ID)
	require.NotEqual(t, p1.ID, p2.ID)
	assert.Equal(t, "go.dev", p1.Domain)
	assert.Equal(t, p1.CreatedAt, p1.UpdatedAt)
	assert.Zero(t, p1.VisitCount)
	assert.False(t, p1.IsFavorite)
	assert.False(t, p1.IsArchived)
	assert.Equal(t, []string{}, p1.Tags)

	// immediately retrievable by id
	got, ok := svc.Get(p1.ID)
	require.True(t, ok)
	assert.Equal(t, p1, got)

	// most recent insertion comes first
	listed := svc.Filtered(domain.PageFilters{}, domain.SortByCreatedAt, domain.SortDesc)
	require.Len(t, listed, 2)
	assert.Equal(t, p2.ID, listed[0].ID)

	// every mutation persisted the whole collection
	assert.Equal(t, 2, kv.setCalls)
}

func TestPageService_InitializeIdempotentAndFailureSafe(t *testing.T) {
	ctx := context.Background()

	t.Run("second call is a no-op", func(t *testing.T) {
		kv := newMemKV()
		svc := newTestPageService(kv)
		svc.Add(ctx, domain.PageCreateInput{URL: "https://example.com", Title: "x"})
		svc.Initialize(ctx)
		assert.Len(t, svc.Filtered(domain.PageFilters{}, domain.SortByCreatedAt, domain.SortDesc), 1)
	})

	t.Run("load failure still initializes empty", func(t *testing.T) {
		kv := newMemKV()
		kv.getErr = errors.New("backend down")
		svc := NewPageService(storage.New(kv, discardLogger()), &seqIDs{prefix: "page"}, discardLogger())
		svc.Initialize(ctx)
		assert.Empty(t, svc.Filtered(domain.PageFilters{}, domain.SortByCreatedAt, domain.SortDesc))
		assert.Equal(t, "backend down", svc.loadReason)
	})

	t.Run("malformed data falls back to empty", func(t *testing.T) {
		kv := newMemKV()
		kv.data[storage.KeyPages] = []byte(`{"oops":`)
		svc := NewPageService(storage.New(kv, discardLogger()), &seqIDs{prefix: "page"}, discardLogger())
		svc.Initialize(ctx)
		assert.Empty(t, svc.Filtered(domain.PageFilters{}, domain.SortByCreatedAt, domain.SortDesc))
	})
}

func TestPageService_ReloadRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	svc := newTestPageService(kv)

	svc.Add(ctx, domain.PageCreateInput{URL: "https://go.dev", Title: "Go", Tags: []string{"t1", "t2"}})
	svc.Add(ctx, domain.PageCreateInput{URL: "https://example.com", Title: "Example", Description: "sample"})

	// a fresh service over the same backend sees identical data
	reloaded := NewPageService(storage.New(kv, discardLogger()), &seqIDs{prefix: "other"}, discardLogger())
	reloaded.Initialize(ctx)
	want := svc.Filtered(domain.PageFilters{}, domain.SortByCreatedAt, domain.SortDesc)
	got := reloaded.Filtered(domain.PageFilters{}, domain.SortByCreatedAt, domain.SortDesc)
	assert.Equal(t, want, got)
}

func TestPageService_Update(t *testing.T) {
	ctx := context.Background()
	svc := newTestPageService(newMemKV())
	p := svc.Add(ctx, domain.PageCreateInput{URL: "https://example.com/a", Title: "Old"})

	updated := svc.Update(ctx, p.ID, domain.PageUpdateInput{
		Title:       strPtr("New"),
		Description: strPtr("desc"),
		CategoryID:  strPtr("cat-1"),
		Tags:        []string{"t1"},
	})
	require.NotNil(t, updated)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "desc", updated.Description)
	assert.Equal(t, "cat-1", updated.CategoryID)
	assert.Equal(t, []string{"t1"}, updated.Tags)
	assert.Greater(t, updated.UpdatedAt, updated.CreatedAt)
	// url and domain survive untouched
	assert.Equal(t, "https://example.com/a", updated.URL)
	assert.Equal(t, "example.com", updated.Domain)

	assert.Nil(t, svc.Update(ctx, "missing", domain.PageUpdateInput{Title: strPtr("x")}))
}

func TestPageService_Delete(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	svc := newTestPageService(kv)
	p := svc.Add(ctx, domain.PageCreateInput{URL: "https://example.com", Title: "x"})

	require.True(t, svc.Delete(ctx, p.ID))
	_, ok := svc.Get(p.ID)
	assert.False(t, ok)
	assert.False(t, svc.Delete(ctx, p.ID))
}

func TestPageService_ToggleFavorite(t *testing.T) {
	ctx := context.Background()
	svc := newTestPageService(newMemKV())
	p := svc.Add(ctx, domain.PageCreateInput{URL: "https://example.com", Title: "x"})

	require.True(t, svc.ToggleFavorite(ctx, p.ID))
	got, _ := svc.Get(p.ID)
	assert.True(t, got.IsFavorite)
	firstToggle := got.UpdatedAt
	assert.Greater(t, firstToggle, got.CreatedAt)

	// a second toggle restores the original value and moves updatedAt again
	require.True(t, svc.ToggleFavorite(ctx, p.ID))
	got, _ = svc.Get(p.ID)
	assert.False(t, got.IsFavorite)
	assert.Greater(t, got.UpdatedAt, firstToggle)

	assert.False(t, svc.ToggleFavorite(ctx, "missing"))
}

func TestPageService_ToggleArchive(t *testing.T) {
	ctx := context.Background()
	svc := newTestPageService(newMemKV())
	p := svc.Add(ctx, domain.PageCreateInput{URL: "https://example.com", Title: "x"})

	require.True(t, svc.ToggleArchive(ctx, p.ID))
	got, _ := svc.Get(p.ID)
	assert.True(t, got.IsArchived)

	// archived is a soft state: the page is still in storage
	_, ok := svc.Get(p.ID)
	assert.True(t, ok)

	assert.False(t, svc.ToggleArchive(ctx, "missing"))
}

func TestPageService_IncrementVisit(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	svc := newTestPageService(kv)
	p := svc.Add(ctx, domain.PageCreateInput{URL: "https://example.com", Title: "x"})
	writesAfterAdd := kv.setCalls

	svc.IncrementVisit(ctx, p.ID)
	svc.IncrementVisit(ctx, p.ID)
	got, _ := svc.Get(p.ID)
	assert.Equal(t, 2, got.VisitCount)
	assert.NotZero(t, got.LastVisitedAt)
	assert.Equal(t, writesAfterAdd+2, kv.setCalls)

	// missing id: no write, no panic
	svc.IncrementVisit(ctx, "missing")
	assert.Equal(t, writesAfterAdd+2, kv.setCalls)
}

func TestPageService_FindByURL(t *testing.T) {
	ctx := context.Background()
	svc := newTestPageService(newMemKV())
	p := svc.Add(ctx, domain.PageCreateInput{URL: "https://example.com/article", Title: "x"})

	got, ok := svc.FindByURL("https://example.com/article")
	require.True(t, ok)
	assert.Equal(t, p.ID, got.ID)

	_, ok = svc.FindByURL("https://example.com/other")
	assert.False(t, ok)
}

func TestPageService_Filtered(t *testing.T) {
	ctx := context.Background()
	svc := newTestPageService(newMemKV())

	p1 := svc.Add(ctx, domain.PageCreateInput{URL: "https://a.example.com/1", Title: "Alpha", CategoryID: "cat-1", Tags: []string{"x"}})
	p2 := svc.Add(ctx, domain.PageCreateInput{URL: "https://b.example.com/2", Title: "Beta", Tags: []string{"y"}})
	p3 := svc.Add(ctx, domain.PageCreateInput{URL: "https://a.example.com/3", Title: "Gamma", CategoryID: "cat-1", Tags: []string{"x", "y"}})
	require.True(t, svc.ToggleArchive(ctx, p2.ID))
	require.True(t, svc.ToggleFavorite(ctx, p3.ID))

	ids := func(pages []*domain.Page) []string {
		out := make([]string, len(pages))
		for i, p := range pages {
			out[i] = p.ID
		}
		return out
	}

	tests := []struct {
		name    string
		filters domain.PageFilters
		want    []string
	}{
		{
			name:    "default excludes archived",
			filters: domain.PageFilters{},
			want:    []string{p3.ID, p1.ID},
		},
		{
			name:    "explicit archived filter",
			filters: domain.PageFilters{IsArchived: boolPtr(true)},
			want:    []string{p2.ID},
		},
		{
			name:    "category exact match",
			filters: domain.PageFilters{CategoryID: strPtr("cat-1")},
			want:    []string{p3.ID, p1.ID},
		},
		{
			name:    "uncategorized only",
			filters: domain.PageFilters{CategoryID: strPtr(""), IsArchived: boolPtr(true)},
			want:    []string{p2.ID},
		},
		{
			name:    "tag filter is OR",
			filters: domain.PageFilters{Tags: []string{"x", "y"}},
			want:    []string{p3.ID, p1.ID},
		},
		{
			name:    "tag filter single",
			filters: domain.PageFilters{Tags: []string{"y"}},
			want:    []string{p3.ID},
		},
		{
			name:    "favorites only",
			filters: domain.PageFilters{IsFavorite: boolPtr(true)},
			want:    []string{p3.ID},
		},
		{
			name:    "no favorites present after unfavoriting",
			filters: domain.PageFilters{IsFavorite: boolPtr(false)},
			want:    []string{p1.ID},
		},
		{
			name:    "domain filter",
			filters: domain.PageFilters{Domain: "a.example.com"},
			want:    []string{p3.ID, p1.ID},
		},
		{
			name:    "search matches title",
			filters: domain.PageFilters{Search: "alph"},
			want:    []string{p1.ID},
		},
		{
			name:    "search matches url",
			filters: domain.PageFilters{Search: "a.example"},
			want:    []string{p3.ID, p1.ID},
		},
		{
			name:    "search no match",
			filters: domain.PageFilters{Search: "zzz"},
			want:    []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Filtered(tt.filters, domain.SortByCreatedAt, domain.SortDesc)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestPageService_FilteredEmptyWhenNoFavorites(t *testing.T) {
	ctx := context.Background()
	svc := newTestPageService(newMemKV())
	svc.Add(ctx, domain.PageCreateInput{URL: "https://example.com", Title: "x"})

	got := svc.Filtered(domain.PageFilters{IsFavorite: boolPtr(true)}, domain.SortByCreatedAt, domain.SortDesc)
	assert.Empty(t, got)
}

// fakeTagNames implements domain.TagNameLookup.
type fakeTagNames struct {
	names map[string]string
}

func (f *fakeTagNames) TagNames(ids []string) []string {
	var out []string
	for _, id := range ids {
		if n, ok := f.names[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

func TestPageService_SearchMatchesTagNames(t *testing.T) {
	ctx := context.Background()
	svc := newTestPageService(newMemKV())
	svc.SetTagNameLookup(&fakeTagNames{names: map[string]string{"tag-1": "golang"}})

	p := svc.Add(ctx, domain.PageCreateInput{URL: "https://example.com", Title: "untitled", Tags: []string{"tag-1", "tag-dangling"}})

	got := svc.Filtered(domain.PageFilters{Search: "golang"}, domain.SortByCreatedAt, domain.SortDesc)
	require.Len(t, got, 1)
	assert.Equal(t, p.ID, got[0].ID)

	// dangling tag ids never match anything
	got = svc.Filtered(domain.PageFilters{Search: "dangling"}, domain.SortByCreatedAt, domain.SortDesc)
	assert.Empty(t, got)
}

func TestPageService_Sorting(t *testing.T) {
	ctx := context.Background()
	svc := newTestPageService(newMemKV())

	pa := svc.Add(ctx, domain.PageCreateInput{URL: "https://1.example.com", Title: "banana"})
	pb := svc.Add(ctx, domain.PageCreateInput{URL: "https://2.example.com", Title: "Apple"})
	pc := svc.Add(ctx, domain.PageCreateInput{URL: "https://3.example.com", Title: "cherry"})
	svc.IncrementVisit(ctx, pa.ID)
	svc.IncrementVisit(ctx, pa.ID)
	svc.IncrementVisit(ctx, pc.ID)

	titleAsc := svc.Filtered(domain.PageFilters{}, domain.SortByTitle, domain.SortAsc)
	require.Len(t, titleAsc, 3)
	// case-insensitive collation: Apple < banana < cherry
	assert.Equal(t, []string{pb.ID, pa.ID, pc.ID}, []string{titleAsc[0].ID, titleAsc[1].ID, titleAsc[2].ID})

	createdDesc := svc.Filtered(domain.PageFilters{}, domain.SortByCreatedAt, domain.SortDesc)
	assert.Equal(t, pc.ID, createdDesc[0].ID, "most recently created first")

	visits := svc.Filtered(domain.PageFilters{}, domain.SortByVisitCount, domain.SortDesc)
	assert.Equal(t, pa.ID, visits[0].ID)
}

func TestPageService_DomainsAndTotals(t *testing.T) {
	ctx := context.Background()
	svc := newTestPageService(newMemKV())

	svc.Add(ctx, domain.PageCreateInput{URL: "https://go.dev/a", Title: "a"})
	svc.Add(ctx, domain.PageCreateInput{URL: "https://go.dev/b", Title: "b"})
	p := svc.Add(ctx, domain.PageCreateInput{URL: "https://example.com/c", Title: "c"})
	svc.ToggleFavorite(ctx, p.ID)
	archived := svc.Add(ctx, domain.PageCreateInput{URL: "https://example.com/d", Title: "d"})
	svc.ToggleArchive(ctx, archived.ID)

	domains := svc.Domains()
	require.Len(t, domains, 2)
	assert.Equal(t, domain.DomainCount{Domain: "go.dev", Count: 2}, domains[0])
	assert.Equal(t, domain.DomainCount{Domain: "example.com", Count: 1}, domains[1])

	totals := svc.Totals()
	assert.Equal(t, domain.PageTotals{Total: 3, Favorites: 1, Archived: 1}, totals)
}

func TestPageService_Counters(t *testing.T) {
	ctx := context.Background()
	svc := newTestPageService(newMemKV())

	svc.Add(ctx, domain.PageCreateInput{URL: "https://a.com", Title: "a", CategoryID: "cat-1", Tags: []string{"t1"}})
	svc.Add(ctx, domain.PageCreateInput{URL: "https://b.com", Title: "b", CategoryID: "cat-1", Tags: []string{"t1", "t2"}})
	archived := svc.Add(ctx, domain.PageCreateInput{URL: "https://c.com", Title: "c", CategoryID: "cat-1", Tags: []string{"t1"}})
	svc.ToggleArchive(ctx, archived.ID)

	assert.Equal(t, 2, svc.CountByCategory("cat-1"))
	assert.Equal(t, 0, svc.CountByCategory("cat-2"))
	assert.Equal(t, 2, svc.CountByTag("t1"))
	assert.Equal(t, 1, svc.CountByTag("t2"))
	assert.Equal(t, 0, svc.CountByTag("missing"))
}

func TestPageService_Reset(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	svc := newTestPageService(kv)
	svc.Add(ctx, domain.PageCreateInput{URL: "https://go.dev", Title: "x"})
	writes := kv.setCalls

	svc.Reset(ctx)
	assert.Empty(t, svc.Filtered(domain.PageFilters{}, domain.SortByCreatedAt, domain.SortDesc))
	// the clear flow wipes the backend itself; reset writes nothing
	assert.Equal(t, writes, kv.setCalls)
}

func TestPageService_ReturnedPagesAreCopies(t *testing.T) {
	ctx := context.Background()
	svc := newTestPageService(newMemKV())

	added := svc.Add(ctx, domain.PageCreateInput{URL: "https://go.dev", Title: "before", Tags: []string{"t1"}})
	got, ok := svc.Get(added.ID)
	require.True(t, ok)
	byURL, ok := svc.FindByURL("https://go.dev")
	require.True(t, ok)
	listed := svc.Filtered(domain.PageFilters{}, domain.SortByCreatedAt, domain.SortDesc)
	require.Len(t, listed, 1)

	svc.Update(ctx, added.ID, domain.PageUpdateInput{Title: strPtr("after"), Tags: []string{"t2"}})

	// entities handed out earlier are detached from later mutations
	assert.Equal(t, "before", added.Title)
	assert.Equal(t, "before", got.Title)
	assert.Equal(t, "before", byURL.Title)
	assert.Equal(t, "before", listed[0].Title)
	assert.Equal(t, []string{"t1"}, got.Tags)

	// and mutating a returned entity never reaches the collection
	got.Title = "scribbled"
	got.Tags[0] = "scribbled"
	fresh, ok := svc.Get(added.ID)
	require.True(t, ok)
	assert.Equal(t, "after", fresh.Title)
	assert.Equal(t, []string{"t2"}, fresh.Tags)
}

func TestPageService_ConcurrentReadsAndWrites(t *testing.T) {
	ctx := context.Background()
	svc := newTestPageService(newMemKV())
	p := svc.Add(ctx, domain.PageCreateInput{URL: "https://go.dev", Title: "start"})

	// readers encode fields while a writer keeps mutating the same page;
	// run with -race to catch any live struct escaping the service
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			svc.Update(ctx, p.ID, domain.PageUpdateInput{Title: strPtr(fmt.Sprintf("title-%d", i))})
			svc.ToggleFavorite(ctx, p.ID)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			for _, pg := range svc.Filtered(domain.PageFilters{}, domain.SortByTitle, domain.SortAsc) {
				_ = pg.Title
				_ = pg.IsFavorite
			}
			if pg, ok := svc.Get(p.ID); ok {
				_ = pg.Title
			}
		}
	}()
	wg.Wait()

	got, ok := svc.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, "title-199", got.Title)
}
