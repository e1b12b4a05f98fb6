// Package settings groups flat setting rows into per-category collections
// and applies functional updates to them.
package settings

import (
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/kimhsiao/creatorplanner/internal/errors"
	"github.com/kimhsiao/creatorplanner/internal/models"
)

// Titleize upper-cases the first letter of a category name.
func Titleize(category string) string {
	r, size := utf8.DecodeRuneInString(category)
	if r == utf8.RuneError {
		return category
	}
	return string(unicode.ToUpper(r)) + category[size:]
}

// NewGroup synthesizes the display fields for an empty category.
func NewGroup(category string) models.SettingsGroup {
	return models.SettingsGroup{
		Title:          Titleize(category),
		Category:       category,
		Description:    "Manage your " + category,
		Items:          []models.Setting{},
		AddPlaceholder: "Add new " + category,
	}
}

// Group folds flat rows into one group per distinct category, keeping row
// order within each group.
func Group(flat []models.Setting) models.SettingsGroups {
	groups := make(models.SettingsGroups)
	for _, s := range flat {
		g, ok := groups[s.Category]
		if !ok {
			g = NewGroup(s.Category)
		}
		g.Items = append(g.Items, s)
		groups[s.Category] = g
	}
	return groups
}

// CategoryExists reports whether groups has a group for category.
func CategoryExists(category string, groups models.SettingsGroups) bool {
	_, ok := groups[category]
	return ok
}

// Clone copies groups and their item slices.
func Clone(groups models.SettingsGroups) models.SettingsGroups {
	out := make(models.SettingsGroups, len(groups))
	for k, g := range groups {
		items := make([]models.Setting, len(g.Items))
		copy(items, g.Items)
		g.Items = items
		out[k] = g
	}
	return out
}

// AddToGroup returns a copy of groups with s appended to its category,
// creating the group when needed.
func AddToGroup(s models.Setting, groups models.SettingsGroups) models.SettingsGroups {
	out := Clone(groups)
	g, ok := out[s.Category]
	if !ok {
		g = NewGroup(s.Category)
	}
	g.Items = append(g.Items, s)
	out[s.Category] = g
	return out
}

// UpdateInGroup returns a copy of groups with the item matching s.ID
// replaced by s.
func UpdateInGroup(s models.Setting, groups models.SettingsGroups) (models.SettingsGroups, error) {
	if !CategoryExists(s.Category, groups) {
		return nil, apperrors.New(apperrors.ErrCategoryMissing, "category does not exist: "+s.Category)
	}
	out := Clone(groups)
	g := out[s.Category]
	for i, item := range g.Items {
		if item.ID == s.ID {
			g.Items[i] = s
			out[s.Category] = g
			return out, nil
		}
	}
	return nil, apperrors.NotFound("setting", s.ID)
}

// RemoveFromGroup returns a copy of groups without the setting id. Empty
// groups are kept so the category stays selectable.
func RemoveFromGroup(id string, groups models.SettingsGroups) (models.SettingsGroups, error) {
	if _, ok := Find(id, groups); !ok {
		return nil, apperrors.NotFound("setting", id)
	}
	out := Clone(groups)
	for k, g := range out {
		kept := g.Items[:0]
		for _, item := range g.Items {
			if item.ID != id {
				kept = append(kept, item)
			}
		}
		g.Items = kept
		out[k] = g
	}
	return out, nil
}

// Find looks a setting up by id across all groups.
func Find(id string, groups models.SettingsGroups) (models.Setting, bool) {
	for _, g := range groups {
		for _, item := range g.Items {
			if item.ID == id {
				return item, true
			}
		}
	}
	return models.Setting{}, false
}

// IsLockedValue reports whether s is the protected idle status, which can
// never be deleted.
func IsLockedValue(s models.Setting) bool {
	return s.Category == models.CategoryStatus && strings.EqualFold(s.Value, string(models.StatusIdle))
}

// MissingCategories returns the required categories that have no items.
func MissingCategories(groups models.SettingsGroups) []string {
	var missing []string
	for _, c := range RequiredCategories() {
		if len(groups[c].Items) == 0 {
			missing = append(missing, c)
		}
	}
	return missing
}

// RequiredCategories are the categories referenced by idea and video fields.
func RequiredCategories() []string {
	return []string{models.CategoryStatus, models.CategoryType, models.CategoryPriority, models.CategoryAudience}
}
