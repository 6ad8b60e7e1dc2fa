package model

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf16"
)

// DefaultCategoryIcon is used whenever a category has no icon of its own.
const DefaultCategoryIcon = "pricetag-outline"

// Category represents a bucket that expenses are filed under.
type Category struct {
	CreatedAt time.Time
	ID        string // Slug, stable across renames of the display label
	Name      string
	Color     string // Hex color, e.g. #EF4444
	Icon      string
	IsSystem  bool // Seeded defaults; never deletable
}

// DefaultCategories is the system set seeded into an empty database.
// CreatedAt is left zero; the seeder stamps every row with one shared timestamp.
func DefaultCategories() []Category {
	return []Category{
		{ID: "food", Name: "Food", Color: "#EF4444", Icon: "restaurant", IsSystem: true},
		{ID: "transport", Name: "Transport", Color: "#3B82F6", Icon: "car", IsSystem: true},
		{ID: "groceries", Name: "Groceries", Color: "#10B981", Icon: "cart", IsSystem: true},
		{ID: "entertainment", Name: "Entertainment", Color: "#A855F7", Icon: "film", IsSystem: true},
		{ID: "others", Name: "Others", Color: "#A855F7", Icon: "film", IsSystem: true},
	}
}

// CategoryPalette is the fixed set of colors handed out to user-created categories.
var CategoryPalette = []string{
	"#E06C75",
	"#98C379",
	"#E5C07B",
	"#61AFEF",
	"#C678DD",
	"#56B6C2",
}

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a category id from its name: lowercase, trim, and replace
// every run of characters outside [a-z0-9] with a single hyphen.
// Leading or trailing hyphens are kept so ids stay identical to previously
// exported data.
func Slugify(name string) string {
	return nonSlugRun.ReplaceAllString(strings.TrimSpace(strings.ToLower(name)), "-")
}

// CategoryColor picks a palette color from a 32-bit string hash of name.
// The same name always maps to the same color.
func CategoryColor(name string) string {
	var hash int64
	for _, unit := range utf16.Encode([]rune(name)) {
		hash = int64(unit) + (int64(int32(hash)<<5) - hash)
	}
	if hash < 0 {
		hash = -hash
	}
	return CategoryPalette[hash%int64(len(CategoryPalette))]
}

// NewCustomCategory builds a user-created category. Empty icon and color fall
// back to DefaultCategoryIcon and CategoryColor(name).
func NewCustomCategory(name, icon, color string, now time.Time) Category {
	name = strings.TrimSpace(name)
	if icon == "" {
		icon = DefaultCategoryIcon
	}
	if color == "" {
		color = CategoryColor(name)
	}
	return Category{
		ID:        Slugify(name),
		Name:      name,
		Color:     color,
		Icon:      icon,
		IsSystem:  false,
		CreatedAt: now,
	}
}
