package domain

import "context"

// CategoryColor is one of the fixed palette colors a category may use.
type CategoryColor string

// The full palette. The UI maps these to its theme; the backend only
// validates membership.
const (
	ColorSlate   CategoryColor = "slate"
	ColorGray    CategoryColor = "gray"
	ColorRed     CategoryColor = "red"
	ColorOrange  CategoryColor = "orange"
	ColorAmber   CategoryColor = "amber"
	ColorYellow  CategoryColor = "yellow"
	ColorLime    CategoryColor = "lime"
	ColorGreen   CategoryColor = "green"
	ColorEmerald CategoryColor = "emerald"
	ColorTeal    CategoryColor = "teal"
	ColorCyan    CategoryColor = "cyan"
	ColorSky     CategoryColor = "sky"
	ColorBlue    CategoryColor = "blue"
	ColorIndigo  CategoryColor = "indigo"
	ColorViolet  CategoryColor = "violet"
	ColorPurple  CategoryColor = "purple"
	ColorFuchsia CategoryColor = "fuchsia"
	ColorPink    CategoryColor = "pink"
	ColorRose    CategoryColor = "rose"
)

// CategoryColors is the subset offered by pickers, in display order.
var CategoryColors = []CategoryColor{
	ColorBlue, ColorGreen, ColorPurple, ColorOrange, ColorRed,
	ColorAmber, ColorTeal, ColorPink, ColorIndigo, ColorCyan,
}

// ValidCategoryColor reports whether c belongs to the palette.
func ValidCategoryColor(c CategoryColor) bool {
	switch c {
	case ColorSlate, ColorGray, ColorRed, ColorOrange, ColorAmber,
		ColorYellow, ColorLime, ColorGreen, ColorEmerald, ColorTeal,
		ColorCyan, ColorSky, ColorBlue, ColorIndigo, ColorViolet,
		ColorPurple, ColorFuchsia, ColorPink, ColorRose:
		return true
	}
	return false
}

// Category groups saved pages. Order is dense and contiguous 0..N-1 across
// the collection; managers renumber on every structural change.
// swagger:model Category
type Category struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Color     CategoryColor `json:"color"`
	Icon      string        `json:"icon,omitempty"`
	Order     int           `json:"order"`
	CreatedAt int64         `json:"createdAt"`
}

// CategoryCreateInput holds the fields accepted when creating a category.
type CategoryCreateInput struct {
	Name  string
	Color CategoryColor
	Icon  string
}

// CategoryUpdateInput holds the updatable fields of a category. Nil means
// "leave unchanged".
type CategoryUpdateInput struct {
	Name  *string
	Color *CategoryColor
	Icon  *string
}

// CategoryWithCount is a category joined with its non-archived page count.
// swagger:model CategoryWithCount
type CategoryWithCount struct {
	Category
	PageCount int `json:"pageCount"`
}

// CategoryService owns the ordered category collection. A fixed default set
// is seeded on first run. Deleting a category does not touch pages that
// reference it.
type CategoryService interface {
	Initialize(ctx context.Context)
	Add(ctx context.Context, input CategoryCreateInput) *Category
	Update(ctx context.Context, id string, input CategoryUpdateInput) bool
	Delete(ctx context.Context, id string) bool
	Reorder(ctx context.Context, orderedIDs []string) bool
	FindByID(id string) (*Category, bool)
	Sorted() []*Category
	WithCounts() []*CategoryWithCount
}
