package settings

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kimhsiao/creatorplanner/internal/models"
	"github.com/kimhsiao/creatorplanner/internal/uuid"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

type catalogFile struct {
	Categories []struct {
		Name   string   `yaml:"name"`
		Values []string `yaml:"values"`
	} `yaml:"categories"`
}

// DefaultCatalog returns the seed rows with freshly generated ids.
func DefaultCatalog() []models.Setting {
	rows, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		// The embedded file is part of the binary; a parse failure is a build defect.
		panic(fmt.Sprintf("settings: embedded catalog: %v", err))
	}
	return rows
}

// LoadCatalogFile reads a seed catalog from a YAML file.
func LoadCatalogFile(path string) ([]models.Setting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog. Every category must have a
// non-blank name and every value must be non-blank.
func ParseCatalog(data []byte) ([]models.Setting, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	var rows []models.Setting
	for _, c := range f.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog category without a name")
		}
		for _, v := range c.Values {
			v = strings.TrimSpace(v)
			if v == "" {
				return nil, fmt.Errorf("catalog category %q has a blank value", name)
			}
			rows = append(rows, models.Setting{ID: uuid.New(), Value: v, Category: name})
		}
	}
	return rows, nil
}
