// Package table assembles render-ready table specifications from the
// aggregate dataset and the column registry.
package table

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"github.com/KaramelBytes/cladeloom/internal/columns"
	"github.com/KaramelBytes/cladeloom/internal/dataset"
)

// ErrNoSamples signals that no usable samples remain; callers skip the
// module's output instead of failing.
var ErrNoSamples = errors.New("no usable samples found")

// Options are the table-level settings handed to the renderer.
type Options struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Namespace string `json:"namespace"`
}

// DefaultOptions returns the run-table options.
func DefaultOptions() Options {
	return Options{
		ID:        "nextclade_run_table",
		Title:     "Nextclade Run details",
		Namespace: "Nextclade",
	}
}

// SummaryOptions returns the options of the general statistics contribution.
func SummaryOptions() Options {
	return Options{
		ID:        "nextclade_general_stats",
		Title:     "General Statistics",
		Namespace: "Nextclade",
	}
}

// Module attributes a table to the tool that produced the data.
type Module struct {
	Name   string `json:"name"`
	Anchor string `json:"anchor"`
	Href   string `json:"href,omitempty"`
	Info   string `json:"info,omitempty"`
	Extra  string `json:"extra,omitempty"`
	DOI    string `json:"doi,omitempty"`
}

// Section places a table in the report.
type Section struct {
	Name        string `json:"name"`
	Anchor      string `json:"anchor"`
	Description string `json:"description"`
	Helptext    string `json:"helptext"`
}

// Spec is a render-ready table: the data, the merged column metadata in
// display order, and the table options. Module and Section are optional.
type Spec struct {
	Options Options
	Module  *Module
	Section *Section
	Headers []columns.ColumnSpec
	Data    *dataset.Dataset
}

// Assemble builds the full table. Registry columns come first in registry
// order, followed by dataset-only fields in sorted order with default
// metadata. Only fields present in ds get a header.
func Assemble(ds *dataset.Dataset, reg *columns.Registry, opt Options) (*Spec, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, ErrNoSamples
	}
	var headers []columns.ColumnSpec
	known := map[string]struct{}{}
	for _, c := range reg.Columns() {
		known[c.Key] = struct{}{}
		if ds.HasField(c.Key) {
			headers = append(headers, c)
		}
	}
	for _, key := range ds.Fields() {
		if _, ok := known[key]; !ok {
			headers = append(headers, reg.Spec(key))
		}
	}
	return &Spec{Options: opt, Headers: headers, Data: ds}, nil
}

// AssembleSummary builds the reduced table of registry summary fields only.
// Samples carrying none of them are left out.
func AssembleSummary(ds *dataset.Dataset, reg *columns.Registry, opt Options) (*Spec, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, ErrNoSamples
	}
	sub := ds.Subset(reg.SummaryKeys())
	var headers []columns.ColumnSpec
	for _, c := range reg.SummaryColumns() {
		if sub.HasField(c.Key) {
			headers = append(headers, c)
		}
	}
	return &Spec{Options: opt, Headers: headers, Data: sub}, nil
}

// Keys returns the header keys in display order.
func (s *Spec) Keys() []string {
	keys := make([]string, len(s.Headers))
	for i, h := range s.Headers {
		keys[i] = h.Key
	}
	return keys
}

// Hidden counts the columns hidden by default.
func (s *Spec) Hidden() int {
	n := 0
	for _, h := range s.Headers {
		if h.Hidden {
			n++
		}
	}
	return n
}

// MarshalJSON writes the renderer contract. "columns" carries the display
// order, which a JSON object cannot.
func (s *Spec) MarshalJSON() ([]byte, error) {
	headers := make(map[string]columns.ColumnSpec, len(s.Headers))
	for _, h := range s.Headers {
		headers[h.Key] = h
	}
	return json.Marshal(struct {
		Options
		Module  *Module                       `json:"module,omitempty"`
		Section *Section                      `json:"section,omitempty"`
		Columns []string                      `json:"columns"`
		Headers map[string]columns.ColumnSpec `json:"headers"`
		Data    map[string]dataset.Record     `json:"data"`
	}{
		Options: s.Options,
		Module:  s.Module,
		Section: s.Section,
		Columns: s.Keys(),
		Headers: headers,
		Data:    s.Data.Map(),
	})
}

// Markdown renders a compact preview of the table. Hidden columns are left
// out unless showHidden is set; status labels from conditional formatting
// rules are shown next to the value.
func (s *Spec) Markdown(showHidden bool) string {
	var cols []columns.ColumnSpec
	for _, h := range s.Headers {
		if showHidden || !h.Hidden {
			cols = append(cols, h)
		}
	}
	samples := s.Data.Samples()

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]\n", strings.ToUpper(s.Options.Title)))
	if s.Options.Namespace != "" {
		b.WriteString(fmt.Sprintf("Namespace: %s\n", s.Options.Namespace))
	}
	b.WriteString(fmt.Sprintf("ID: %s\n", s.Options.ID))
	b.WriteString(fmt.Sprintf("Samples: %d\n", len(samples)))
	b.WriteString(fmt.Sprintf("Columns: %d (%d hidden)\n", len(s.Headers), s.Hidden()))
	if len(samples) == 0 || len(cols) == 0 {
		return b.String()
	}

	b.WriteString("\n| Sample")
	for _, c := range cols {
		b.WriteString(" | ")
		b.WriteString(safeVal(c.Title))
	}
	b.WriteString(" |\n| ---")
	for range cols {
		b.WriteString(" | ---")
	}
	b.WriteString(" |\n")
	for _, name := range samples {
		rec, _ := s.Data.Get(name)
		b.WriteString("| ")
		b.WriteString(safeVal(name))
		for _, c := range cols {
			b.WriteString(" | ")
			v, ok := rec[c.Key]
			if !ok {
				continue
			}
			val := truncate(v.String(), 80)
			b.WriteString(safeVal(val))
			if status, ok := c.Status(v); ok {
				b.WriteString(fmt.Sprintf(" (%s)", status))
			}
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
