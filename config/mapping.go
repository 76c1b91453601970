package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/voltaic/catalog/models"
)

//go:embed mapping.yaml
var defaultMapping []byte

// ColumnMapping binds one import file column to the attribute it fills.
type ColumnMapping struct {
	Column string
	Slug   string
	Title  string
	Type   models.AttributeType
	Unit   string
}

// Attribute returns the attribute to get-or-create for the column.
func (c ColumnMapping) Attribute() models.Attribute {
	a := models.Attribute{Slug: c.Slug, Title: c.Title, Type: c.Type}
	if c.Unit != "" {
		unit := c.Unit
		a.Unit = &unit
	}
	return a
}

type CategoryMapping struct {
	Slug    string
	Title   string
	Aliases []string
	Columns []ColumnMapping
}

// Mapping is the immutable attribute mapping used by the import pipeline.
type Mapping struct {
	categories map[string]CategoryMapping
	aliases    map[string]string
}

type mappingFile struct {
	Categories map[string]struct {
		Title   string   `yaml:"title"`
		Aliases []string `yaml:"aliases"`
		Columns map[string]struct {
			Slug  string `yaml:"slug"`
			Type  string `yaml:"type"`
			Title string `yaml:"title"`
			Unit  string `yaml:"unit"`
		} `yaml:"columns"`
	} `yaml:"categories"`
}

// DefaultMapping returns the mapping shipped with the binary.
func DefaultMapping() (*Mapping, error) {
	return ParseMapping(defaultMapping)
}

// LoadMapping reads the mapping file at path, or the default mapping when
// path is empty.
func LoadMapping(path string) (*Mapping, error) {
	if path == "" {
		return DefaultMapping()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}
	return ParseMapping(data)
}

func ParseMapping(data []byte) (*Mapping, error) {
	var f mappingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode mapping: %w", err)
	}

	m := &Mapping{
		categories: make(map[string]CategoryMapping, len(f.Categories)),
		aliases:    make(map[string]string),
	}
	for slug, c := range f.Categories {
		if slug == "" {
			return nil, fmt.Errorf("mapping: empty category slug")
		}
		cm := CategoryMapping{Slug: slug, Title: c.Title}
		for _, alias := range append([]string{slug}, c.Aliases...) {
			alias = strings.ToLower(strings.TrimSpace(alias))
			if other, ok := m.aliases[alias]; ok && other != slug {
				return nil, fmt.Errorf("mapping: alias %q used by %q and %q", alias, other, slug)
			}
			m.aliases[alias] = slug
			if alias != slug {
				cm.Aliases = append(cm.Aliases, alias)
			}
		}
		for column, col := range c.Columns {
			t, ok := models.ParseAttributeType(col.Type)
			if !ok {
				return nil, fmt.Errorf("mapping: %s.%s has unknown type %q", slug, column, col.Type)
			}
			if col.Slug == "" {
				return nil, fmt.Errorf("mapping: %s.%s has no attribute slug", slug, column)
			}
			title := col.Title
			if title == "" {
				title = col.Slug
			}
			cm.Columns = append(cm.Columns, ColumnMapping{
				Column: column,
				Slug:   col.Slug,
				Title:  title,
				Type:   t,
				Unit:   col.Unit,
			})
		}
		sort.Slice(cm.Columns, func(i, j int) bool { return cm.Columns[i].Column < cm.Columns[j].Column })
		m.categories[slug] = cm
	}
	return m, nil
}

// Category returns the configured mapping of slug.
func (m *Mapping) Category(slug string) (CategoryMapping, bool) {
	c, ok := m.categories[slug]
	return c, ok
}

// Columns returns the column mappings of a category, empty for unmapped ones.
func (m *Mapping) Columns(slug string) []ColumnMapping {
	return m.categories[slug].Columns
}

// CategoryTitle returns the configured title of slug. Unknown slugs get their
// dashes replaced by spaces and the first letter upper-cased.
func (m *Mapping) CategoryTitle(slug string) string {
	if c, ok := m.categories[slug]; ok && c.Title != "" {
		return c.Title
	}
	title := strings.ReplaceAll(slug, "-", " ")
	r, size := utf8.DecodeRuneInString(title)
	if r == utf8.RuneError {
		return title
	}
	return string(unicode.ToUpper(r)) + title[size:]
}

// ResolveCategory picks the category of an import. An explicit selector wins;
// otherwise the lower-cased file name without extension is looked up in the
// alias table. ok is false when neither yields a category.
func (m *Mapping) ResolveCategory(explicit, source string) (string, bool) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit, true
	}
	base := filepath.Base(source)
	base = strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	slug, ok := m.aliases[base]
	return slug, ok
}
