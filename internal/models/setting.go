package models

// Setting is one selectable value inside a settings category.
type Setting struct {
	ID       string `db:"id" json:"id" yaml:"id,omitempty"`
	Value    string `db:"value" json:"value" yaml:"value"`
	Category string `db:"category" json:"category" yaml:"category"`
}

// TableName returns the table name for Setting.
func (Setting) TableName() string {
	return "settings"
}

// SettingsGroup is the in-memory view of one category.
type SettingsGroup struct {
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Description    string    `json:"description"`
	Items          []Setting `json:"items"`
	AddPlaceholder string    `json:"addPlaceholder"`
}

// SettingsGroups maps a category name to its group.
type SettingsGroups map[string]SettingsGroup

// Settings flattens the groups back into rows.
func (g SettingsGroups) Settings() []Setting {
	var out []Setting
	for _, group := range g {
		out = append(out, group.Items...)
	}
	return out
}

// Catalog indexes every grouped value by category.
func (g SettingsGroups) Catalog() Catalog {
	return NewCatalog(g.Settings())
}
