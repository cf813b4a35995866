// Package dataset holds the aggregate sample → field → value table built by
// the ingestor and read by the table assembler and data dump writers.
package dataset

import (
	"path"
	"sort"

	"github.com/KaramelBytes/cladeloom/internal/fields"
)

// Record maps canonical field keys to coerced values for one sample.
type Record map[string]fields.Value

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset is the aggregate of all accepted sample records of one run.
// It has a single writer and is not safe for concurrent mutation.
type Dataset struct {
	records map[string]Record
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{records: make(map[string]Record)}
}

// Put stores rec under sample and reports whether an earlier record was replaced.
func (d *Dataset) Put(sample string, rec Record) (replaced bool) {
	_, replaced = d.records[sample]
	d.records[sample] = rec
	return replaced
}

// Get returns the record for sample.
func (d *Dataset) Get(sample string) (Record, bool) {
	r, ok := d.records[sample]
	return r, ok
}

// Has reports whether sample is present.
func (d *Dataset) Has(sample string) bool {
	_, ok := d.records[sample]
	return ok
}

// Remove deletes sample if present.
func (d *Dataset) Remove(sample string) {
	delete(d.records, sample)
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.records) }

// Samples returns the sample names in sorted order.
func (d *Dataset) Samples() []string {
	out := make([]string, 0, len(d.records))
	for s := range d.records {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Fields returns the sorted union of field keys across all samples.
func (d *Dataset) Fields() []string {
	seen := map[string]struct{}{}
	for _, r := range d.records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// HasField reports whether any sample carries key.
func (d *Dataset) HasField(key string) bool {
	for _, r := range d.records {
		if _, ok := r[key]; ok {
			return true
		}
	}
	return false
}

// Ignore removes every sample whose name matches one of the shell-style glob
// patterns and returns the removed names in sorted order. Malformed patterns
// never match.
func (d *Dataset) Ignore(patterns []string) []string {
	if len(patterns) == 0 {
		return nil
	}
	var removed []string
	for _, s := range d.Samples() {
		for _, p := range patterns {
			if ok, err := path.Match(p, s); err == nil && ok {
				removed = append(removed, s)
				delete(d.records, s)
				break
			}
		}
	}
	return removed
}

// Subset returns a new dataset restricted to keys. Samples that carry none of
// the keys are left out.
func (d *Dataset) Subset(keys []string) *Dataset {
	out := New()
	for s, r := range d.records {
		sub := Record{}
		for _, k := range keys {
			if v, ok := r[k]; ok {
				sub[k] = v
			}
		}
		if len(sub) > 0 {
			out.records[s] = sub
		}
	}
	return out
}

// Map exposes the dataset as plain nested maps for encoders.
func (d *Dataset) Map() map[string]Record {
	out := make(map[string]Record, len(d.records))
	for s, r := range d.records {
		out[s] = r
	}
	return out
}
