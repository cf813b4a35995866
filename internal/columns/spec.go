package columns

import (
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/cladeloom/internal/fields"
)

// Scale names the colour scale of a column. The zero value means the
// renderer's default scale; NoScale disables colouring.
type Scale string

// NoScale disables the colour scale (written as `scale: false`).
const NoScale Scale = "false"

// UnmarshalYAML accepts a scale name or a boolean; false maps to NoScale and
// true to the default scale.
func (s *Scale) UnmarshalYAML(n *yaml.Node) error {
	if n.ShortTag() == "!!bool" {
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		if b {
			*s = ""
		} else {
			*s = NoScale
		}
		return nil
	}
	var name string
	if err := n.Decode(&name); err != nil {
		return fmt.Errorf("scale: %w", err)
	}
	*s = Scale(name)
	return nil
}

// Predicate is one comparison against a cell value. Every set field must hold
// for the predicate to match.
type Predicate struct {
	SEq       *string  `yaml:"s_eq,omitempty" json:"s_eq,omitempty"`
	SNe       *string  `yaml:"s_ne,omitempty" json:"s_ne,omitempty"`
	SContains *string  `yaml:"s_contains,omitempty" json:"s_contains,omitempty"`
	Eq        *float64 `yaml:"eq,omitempty" json:"eq,omitempty"`
	Ne        *float64 `yaml:"ne,omitempty" json:"ne,omitempty"`
	Gt        *float64 `yaml:"gt,omitempty" json:"gt,omitempty"`
	Lt        *float64 `yaml:"lt,omitempty" json:"lt,omitempty"`
}

// Match reports whether v satisfies p. Numeric comparisons never match text.
func (p Predicate) Match(v fields.Value) bool {
	s := v.String()
	if p.SEq != nil && s != *p.SEq {
		return false
	}
	if p.SNe != nil && s == *p.SNe {
		return false
	}
	if p.SContains != nil && !containsFold(s, *p.SContains) {
		return false
	}
	if p.Eq != nil || p.Ne != nil || p.Gt != nil || p.Lt != nil {
		f, ok := v.Float()
		if !ok {
			return false
		}
		if (p.Eq != nil && f != *p.Eq) || (p.Ne != nil && f == *p.Ne) ||
			(p.Gt != nil && f <= *p.Gt) || (p.Lt != nil && f >= *p.Lt) {
			return false
		}
	}
	return p.SEq != nil || p.SNe != nil || p.SContains != nil ||
		p.Eq != nil || p.Ne != nil || p.Gt != nil || p.Lt != nil
}

// Rules maps a status label (e.g. "pass") to predicates; any matching
// predicate assigns the label. Rules affect display only.
type Rules map[string][]Predicate

// ColumnSpec is the display metadata of one column.
type ColumnSpec struct {
	Key         string   `yaml:"key"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Hidden      bool     `yaml:"hidden"`
	Min         *float64 `yaml:"min"`
	Scale       Scale    `yaml:"scale"`
	Rules       Rules    `yaml:"cond_formatting_rules"`
}

// DefaultSpec is the metadata used for a field the registry does not know:
// the key as title, default scale, visible.
func DefaultSpec(key string) ColumnSpec {
	return ColumnSpec{Key: key, Title: key}
}

// Status returns the first label, in sorted label order, whose rules match v.
func (c ColumnSpec) Status(v fields.Value) (string, bool) {
	if len(c.Rules) == 0 {
		return "", false
	}
	labels := make([]string, 0, len(c.Rules))
	for l := range c.Rules {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		for _, p := range c.Rules[l] {
			if p.Match(v) {
				return l, true
			}
		}
	}
	return "", false
}

// MarshalJSON writes the renderer's header contract. Unset options are left
// out; a disabled scale is written as false.
func (c ColumnSpec) MarshalJSON() ([]byte, error) {
	m := map[string]any{"title": c.Title}
	if c.Description != "" {
		m["description"] = c.Description
	}
	if c.Hidden {
		m["hidden"] = true
	}
	if c.Min != nil {
		m["min"] = *c.Min
	}
	switch c.Scale {
	case "":
	case NoScale:
		m["scale"] = false
	default:
		m["scale"] = string(c.Scale)
	}
	if len(c.Rules) > 0 {
		m["cond_formatting_rules"] = c.Rules
	}
	return json.Marshal(m)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
