package export

import (
	"sort"

	"github.com/KaramelBytes/cladeloom/internal/dataset"
)

// DatasetTable adapts a dataset: one row per sample, one column per field.
// Missing cells are empty.
type DatasetTable struct {
	Data *dataset.Dataset
}

func (d DatasetTable) Header() []string {
	return append([]string{"Sample"}, d.Data.Fields()...)
}

func (d DatasetTable) Rows() [][]string {
	keys := d.Data.Fields()
	var rows [][]string
	for _, s := range d.Data.Samples() {
		rec, _ := d.Data.Get(s)
		row := make([]string, 0, len(keys)+1)
		row = append(row, s)
		for _, k := range keys {
			if v, ok := rec[k]; ok {
				row = append(row, v.String())
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (d DatasetTable) Value() any { return d.Data.Map() }

// Source records which file a sample was read from.
type Source struct {
	Module  string `json:"module" yaml:"module"`
	Section string `json:"section" yaml:"section"`
	Sample  string `json:"sample" yaml:"sample"`
	Path    string `json:"path" yaml:"path"`
}

// SourcesTable adapts the data-source list, sorted by module then sample.
type SourcesTable []Source

func (s SourcesTable) sorted() []Source {
	out := append([]Source(nil), s...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		return out[i].Sample < out[j].Sample
	})
	return out
}

func (s SourcesTable) Header() []string {
	return []string{"Module", "Section", "Sample Name", "Source"}
}

func (s SourcesTable) Rows() [][]string {
	var rows [][]string
	for _, src := range s.sorted() {
		rows = append(rows, []string{src.Module, src.Section, src.Sample, src.Path})
	}
	return rows
}

func (s SourcesTable) Value() any { return s.sorted() }
