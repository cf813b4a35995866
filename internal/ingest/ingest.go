// Package ingest reads delimited per-sample report files and merges their rows
// into a dataset. Row-level problems are logged and skipped; only a malformed
// file stops that file, and never the run.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/KaramelBytes/cladeloom/internal/dataset"
	"github.com/KaramelBytes/cladeloom/internal/fields"
	"github.com/KaramelBytes/cladeloom/internal/logging"
	"github.com/KaramelBytes/cladeloom/internal/metrics"
)

// ErrMalformed wraps a structural parse failure of a report file.
var ErrMalformed = errors.New("malformed report file")

// Defaults for Nextclade CSV output.
const (
	DefaultDelimiter   = ';'
	DefaultSampleField = "seqName"
)

// DuplicatePolicy decides what happens when a sample name is seen twice.
type DuplicatePolicy string

const (
	// Overwrite keeps the latest record (last wins).
	Overwrite DuplicatePolicy = "overwrite"
	// KeepFirst keeps the earliest record and drops later ones.
	KeepFirst DuplicatePolicy = "keep-first"
)

// ParseDuplicatePolicy validates a policy name. Empty means Overwrite.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", Overwrite:
		return Overwrite, nil
	case KeepFirst:
		return KeepFirst, nil
	default:
		return "", fmt.Errorf("unsupported duplicate policy: %q (use overwrite|keep-first)", s)
	}
}

// Source is one opened report plus the metadata used for diagnostics and
// sample-name cleaning.
type Source struct {
	Name   string // file name
	Root   string // directory the file was found in
	Reader io.Reader
}

// Path joins Root and Name.
func (s Source) Path() string { return filepath.Join(s.Root, s.Name) }

// Cleaner turns the raw identity cell into the final sample name.
type Cleaner func(raw string, src Source) string

// DefaultCleaner trims surrounding whitespace and strips the first matching
// suffix from exts (e.g. ".fasta").
func DefaultCleaner(exts []string) Cleaner {
	return func(raw string, _ Source) string {
		name := strings.TrimSpace(raw)
		for _, ext := range exts {
			if ext != "" && strings.HasSuffix(name, ext) {
				return strings.TrimSuffix(name, ext)
			}
		}
		return name
	}
}

// Options configures an Ingestor. Zero values fall back to the defaults.
type Options struct {
	Delimiter   rune
	SampleField string
	Policy      DuplicatePolicy
	Cleaner     Cleaner
	Logger      *zap.Logger
	Stats       *metrics.Stats
	// OnAccept is called for every record merged into the dataset.
	OnAccept func(sample string, src Source)
}

// Ingestor merges report files into a dataset.
type Ingestor struct {
	delim    rune
	field    string
	policy   DuplicatePolicy
	clean    Cleaner
	log      *zap.Logger
	stats    *metrics.Stats
	onAccept func(string, Source)
}

// New builds an Ingestor from opt.
func New(opt Options) *Ingestor {
	in := &Ingestor{
		delim:    opt.Delimiter,
		field:    opt.SampleField,
		policy:   opt.Policy,
		clean:    opt.Cleaner,
		log:      logging.OrNop(opt.Logger),
		stats:    opt.Stats,
		onAccept: opt.OnAccept,
	}
	if in.delim == 0 {
		in.delim = DefaultDelimiter
	}
	if in.field == "" {
		in.field = DefaultSampleField
	}
	if in.policy == "" {
		in.policy = Overwrite
	}
	if in.clean == nil {
		in.clean = DefaultCleaner(nil)
	}
	if in.stats == nil {
		in.stats = metrics.NewStats()
	}
	return in
}

// IngestFile opens path, ingests it, and closes it before returning.
// Files ending in .gz are decompressed on the fly.
func (in *Ingestor) IngestFile(ds *dataset.Dataset, path string) error {
	f, err := os.Open(path)
	if err != nil {
		in.stats.FileErrors.Inc()
		in.log.Error("could not open report", zap.String("file", path), zap.Error(err))
		return fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			in.stats.FileErrors.Inc()
			in.log.Error("could not open compressed report", zap.String("file", path), zap.Error(err))
			return fmt.Errorf("open gzip %s: %w", name, err)
		}
		defer zr.Close()
		r = zr
	}
	return in.Ingest(ds, Source{Name: name, Root: filepath.Dir(path), Reader: r})
}

// Ingest reads src and merges each row into ds. Records accepted before a
// structural failure stay in ds; the failure is returned wrapped in
// ErrMalformed.
func (in *Ingestor) Ingest(ds *dataset.Dataset, src Source) error {
	log := in.log.With(zap.String("file", src.Name))
	in.stats.FilesProcessed.Inc()

	r := csv.NewReader(src.Reader)
	r.Comma = in.delim
	r.FieldsPerRecord = -1
	// stray quotes inside unquoted cells are kept as text
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			log.Warn("report file is empty")
			return nil
		}
		return in.malformed(log, err)
	}
	keys := make([]string, len(header))
	idIdx := -1
	for i, h := range header {
		if h == in.field && idIdx < 0 {
			idIdx = i
			continue
		}
		keys[i] = fields.Normalize(h)
	}

	for {
		row, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return in.malformed(log, err)
		}
		line, _ := r.FieldPos(0)
		in.merge(ds, src, log.With(zap.Int("line", line)), idIdx, keys, row)
	}
}

func (in *Ingestor) merge(ds *dataset.Dataset, src Source, log *zap.Logger, idIdx int, keys, row []string) {
	if idIdx < 0 || idIdx >= len(row) {
		in.stats.RecordErrors.WithLabelValues(metrics.ReasonMissingSample).Inc()
		log.Error("could not parse record - no sequence name found", zap.String("field", in.field))
		return
	}
	sample := in.clean(row[idIdx], src)
	if sample == "" {
		in.stats.RecordErrors.WithLabelValues(metrics.ReasonEmptySample).Inc()
		log.Error("could not parse record - empty sequence name", zap.String("field", in.field))
		return
	}
	log = log.With(zap.String("sample", sample))

	if ds.Has(sample) {
		in.stats.Duplicates.Inc()
		if in.policy == KeepFirst {
			log.Warn("duplicate sample - keeping first")
			return
		}
		log.Warn("duplicate sample - overwriting")
	}

	rec := make(dataset.Record, len(keys))
	for i, cell := range row {
		if i == idIdx {
			continue
		}
		if i >= len(keys) {
			log.Debug("dropping cells beyond header", zap.Int("extra", len(row)-len(keys)))
			break
		}
		rec[keys[i]] = fields.Coerce(cell)
	}
	ds.Put(sample, rec)
	in.stats.RecordsAccepted.Inc()
	if in.onAccept != nil {
		in.onAccept(sample, src)
	}
}

func (in *Ingestor) malformed(log *zap.Logger, err error) error {
	in.stats.FileErrors.Inc()
	log.Error("report file could not be parsed", zap.Error(err))
	return fmt.Errorf("%w: %w", ErrMalformed, err)
}
