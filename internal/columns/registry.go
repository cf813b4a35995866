// Package columns is the read-only registry of display metadata for report
// columns, loaded from a YAML asset.
package columns

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/cladeloom/internal/fields"
)

//go:embed nextclade.yaml
var nextcladeYAML []byte

// Registry maps canonical field keys to column metadata. It is immutable after
// loading and safe to share.
type Registry struct {
	columns []ColumnSpec
	index   map[string]int
	summary []ColumnSpec
}

type document struct {
	Columns []ColumnSpec `yaml:"columns"`
	Summary []ColumnSpec `yaml:"summary"`
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := Load(bytes.NewReader(nextcladeYAML))
	if err != nil {
		panic(fmt.Sprintf("columns: embedded registry: %v", err))
	}
	return r
})

// Default returns the built-in Nextclade registry.
func Default() *Registry { return defaultRegistry() }

// Load parses a registry document. Keys must be non-empty, unique, and already
// canonical.
func Load(r io.Reader) (*Registry, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("parse registry: empty document")
		}
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	if err := validate("columns", doc.Columns); err != nil {
		return nil, err
	}
	if err := validate("summary", doc.Summary); err != nil {
		return nil, err
	}
	reg := &Registry{
		columns: doc.Columns,
		index:   make(map[string]int, len(doc.Columns)),
		summary: doc.Summary,
	}
	for i, c := range doc.Columns {
		reg.index[c.Key] = i
	}
	return reg, nil
}

// LoadFile loads a registry from a YAML file on disk.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func validate(section string, specs []ColumnSpec) error {
	seen := make(map[string]struct{}, len(specs))
	for i, c := range specs {
		key := strings.TrimSpace(c.Key)
		if key == "" {
			return fmt.Errorf("%s[%d]: empty key", section, i)
		}
		if fields.Normalize(key) != c.Key {
			return fmt.Errorf("%s[%d]: key %q is not canonical (want %q)", section, i, c.Key, fields.Normalize(key))
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%s[%d]: duplicate key %q", section, i, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Lookup returns the registered spec for key.
func (r *Registry) Lookup(key string) (ColumnSpec, bool) {
	i, ok := r.index[key]
	if !ok {
		return ColumnSpec{}, false
	}
	return r.columns[i], true
}

// Spec returns the registered spec for key, or DefaultSpec(key).
func (r *Registry) Spec(key string) ColumnSpec {
	if c, ok := r.Lookup(key); ok {
		return c
	}
	return DefaultSpec(key)
}

// Columns returns the run-table specs in registry order.
func (r *Registry) Columns() []ColumnSpec {
	return append([]ColumnSpec(nil), r.columns...)
}

// SummaryColumns returns the specs of the summary subset.
func (r *Registry) SummaryColumns() []ColumnSpec {
	return append([]ColumnSpec(nil), r.summary...)
}

// SummaryKeys returns the keys of the summary subset.
func (r *Registry) SummaryKeys() []string {
	keys := make([]string, len(r.summary))
	for i, c := range r.summary {
		keys[i] = c.Key
	}
	return keys
}

// IsSummary reports whether key belongs to the summary subset.
func (r *Registry) IsSummary(key string) bool {
	for _, c := range r.summary {
		if c.Key == key {
			return true
		}
	}
	return false
}
