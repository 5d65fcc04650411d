// Package seed ships the default templates baked into every fresh
// instance. Both backends call DefaultTemplates during Init when the
// template store is empty.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// SeedTemplate is one entry from the embedded template catalog. Sort
// order is the catalog position.
type SeedTemplate struct {
	Title        string `yaml:"title"`
	Content      string `yaml:"content"`
	DocType      string `yaml:"doc_type"`
	LanguageHint string `yaml:"language_hint"`
}

type templateCatalog struct {
	Templates []SeedTemplate `yaml:"templates"`
}

// DefaultTemplates parses the embedded catalog. The catalog is part of
// the binary, so a parse error here is a build defect, not user input.
func DefaultTemplates() ([]SeedTemplate, error) {
	var catalog templateCatalog
	if err := yaml.Unmarshal(templatesYAML, &catalog); err != nil {
		return nil, fmt.Errorf("parse embedded template catalog: %w", err)
	}
	return catalog.Templates, nil
}
