package domain

import (
	"context"
	"strings"
)

// Tag is a free-form label. Name is stored normalized and is unique under
// normalization across the collection.
// swagger:model Tag
type Tag struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// TagCreateInput holds the fields accepted when creating a tag.
type TagCreateInput struct {
	Name  string
	Color string
}

// TagUpdateInput holds the updatable fields of a tag. A new name is
// re-normalized before storing.
type TagUpdateInput struct {
	Name  *string
	Color *string
}

// TagWithCount is a tag joined with its non-archived page count.
// swagger:model TagWithCount
type TagWithCount struct {
	Tag
	PageCount int `json:"pageCount"`
}

// TagService owns the tag collection. AddOrGet is idempotent under name
// normalization. Deleting a tag does not touch pages that reference it.
type TagService interface {
	Initialize(ctx context.Context)
	AddOrGet(ctx context.Context, input TagCreateInput) *Tag
	Update(ctx context.Context, id string, input TagUpdateInput) bool
	Delete(ctx context.Context, id string) bool
	Search(query string) []*Tag
	FindByID(id string) (*Tag, bool)
	FindByName(name string) (*Tag, bool)
	WithCounts() []*TagWithCount
	Popular() []*TagWithCount
	Alphabetical() []*Tag
}

// TagNameLookup resolves tag ids to display names. Ids without a live tag
// are skipped, so dangling references never surface to callers.
type TagNameLookup interface {
	TagNames(ids []string) []string
}

// NormalizeTagName canonicalizes free text into the uniqueness key used for
// tags: trimmed and lowercased.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
