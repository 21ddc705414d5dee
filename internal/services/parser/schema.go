package parser

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/safkanlabs/safkan/internal/interfaces"
)

//go:embed schema.yaml
var schemaYAML []byte

// Schema holds the bounded set of header-based fallbacks for every page
// kind. Changes to the source beyond what this file can express are
// schema drift and degrade that page to an empty result.
type Schema struct {
	Pages map[string]PageSchema `yaml:"pages"`
}

// PageSchema describes one page kind's target table
type PageSchema struct {
	TableHints []string              `yaml:"table_hints"`
	MinColumns int                   `yaml:"min_columns"`
	Columns    map[string]ColumnSpec `yaml:"columns"`
}

// ColumnSpec maps a semantic column to the header texts it may carry.
// Exact columns match the whole header; others match on substring.
type ColumnSpec struct {
	Aliases      []string `yaml:"aliases"`
	Exact        bool     `yaml:"exact"`
	DefaultIndex *int     `yaml:"default_index"`
}

var (
	schemaOnce sync.Once
	schema     *Schema
	schemaErr  error
)

// loadSchema parses the embedded schema once
func loadSchema() (*Schema, error) {
	schemaOnce.Do(func() {
		s := &Schema{}
		if err := yaml.Unmarshal(schemaYAML, s); err != nil {
			schemaErr = fmt.Errorf("parsing embedded page schema: %w", err)
			return
		}
		// every fetched page kind must have an entry, or drift detection
		// for that kind would report a missing schema instead
		for _, kind := range interfaces.AllPageKinds {
			if _, ok := s.Pages[string(kind)]; !ok {
				schemaErr = fmt.Errorf("embedded page schema has no entry for page kind %q", kind)
				return
			}
		}
		schema = s
	})
	return schema, schemaErr
}

// pageSchema returns the schema for a page kind
func pageSchema(kind interfaces.PageKind) (*PageSchema, error) {
	s, err := loadSchema()
	if err != nil {
		return nil, err
	}
	ps, ok := s.Pages[string(kind)]
	if !ok {
		return nil, fmt.Errorf("no schema for page kind %q", kind)
	}
	return &ps, nil
}
