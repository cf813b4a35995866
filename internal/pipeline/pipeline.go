// Package pipeline holds the state of one ingestion run: the dataset being
// built, the column registry, counters, and the data-source list. Nothing is
// kept in package globals, so independent runs can share a process.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/cladeloom/internal/columns"
	"github.com/KaramelBytes/cladeloom/internal/dataset"
	"github.com/KaramelBytes/cladeloom/internal/export"
	"github.com/KaramelBytes/cladeloom/internal/ingest"
	"github.com/KaramelBytes/cladeloom/internal/logging"
	"github.com/KaramelBytes/cladeloom/internal/metrics"
	"github.com/KaramelBytes/cladeloom/internal/table"
)

// Artifact names.
const (
	ModuleName   = "Nextclade"
	DataFileName = "multiqc_nextclade"
	SourcesName  = "multiqc_sources"
	sectionName  = "all_sections"
)

const moduleExtra = "Nextclade assigns input sequences to SARS-Cov-2 clades based on differences between the input sequences " +
	"and [Nextstrain](https://nextstrain.org/) reference sequences. In addition, it judges the validity of " +
	"the samples by performing several quality control checks on the input sequences."

// NextcladeModule describes the tool for attribution in rendered reports.
func NextcladeModule() table.Module {
	return table.Module{
		Name:   ModuleName,
		Anchor: "nextclade",
		Href:   "https://github.com/nextstrain/nextclade",
		Info:   "Viral genome alignment, clade assignment, mutation calling, and quality checks",
		Extra:  moduleExtra,
		DOI:    "10.21105/joss.03773",
	}
}

// RunSection is the report section holding the full run table.
func RunSection() table.Section {
	return table.Section{Name: "Run table", Anchor: "nextclade-run"}
}

// Config configures a Run.
type Config struct {
	Ingest        ingest.Options
	IgnoreSamples []string
	Registry      *columns.Registry
	Table         table.Options
	Summary       table.Options
	DataFormat    string
	Logger        *zap.Logger
}

// Run is the pipeline-scoped context shared by ingestion and assembly.
type Run struct {
	ID string

	cfg       Config
	log       *zap.Logger
	reg       *columns.Registry
	stats     *metrics.Stats
	data      *dataset.Dataset
	ingestor  *ingest.Ingestor
	sources   map[string]export.Source
	finalized bool
}

// Tables are the two render-ready outputs of a finalized run.
type Tables struct {
	Full    *table.Spec
	Summary *table.Spec
}

// New prepares an empty run.
func New(cfg Config) *Run {
	id := uuid.NewString()
	r := &Run{
		ID:      id,
		cfg:     cfg,
		log:     logging.OrNop(cfg.Logger).With(zap.String("run_id", id), zap.String("module", ModuleName)),
		reg:     cfg.Registry,
		stats:   metrics.NewStats(),
		data:    dataset.New(),
		sources: map[string]export.Source{},
	}
	if r.reg == nil {
		r.reg = columns.Default()
	}
	if r.cfg.Table == (table.Options{}) {
		r.cfg.Table = table.DefaultOptions()
	}
	if r.cfg.Summary == (table.Options{}) {
		r.cfg.Summary = table.SummaryOptions()
	}

	opt := cfg.Ingest
	opt.Logger = r.log
	opt.Stats = r.stats
	opt.OnAccept = r.recordSource
	r.ingestor = ingest.New(opt)
	return r
}

func (r *Run) recordSource(sample string, src ingest.Source) {
	// last wins, in step with the dataset
	r.sources[sample] = export.Source{
		Module:  ModuleName,
		Section: sectionName,
		Sample:  sample,
		Path:    src.Path(),
	}
}

// Stats returns the run counters.
func (r *Run) Stats() *metrics.Stats { return r.stats }

// Dataset returns the aggregate dataset. Treat it as read-only.
func (r *Run) Dataset() *dataset.Dataset { return r.data }

// Ingest processes paths one after another. A failing file is logged and
// skipped; the returned slice holds one error per failed file.
func (r *Run) Ingest(paths ...string) []error {
	var errs []error
	for _, p := range paths {
		if r.finalized {
			errs = append(errs, fmt.Errorf("ingest %s: run already finalized", p))
			continue
		}
		r.log.Debug("ingesting report", zap.String("file", p))
		if err := r.ingestor.IngestFile(r.data, p); err != nil {
			errs = append(errs, fmt.Errorf("ingest %s: %w", p, err))
		}
	}
	return errs
}

// Finalize applies the ignore patterns and closes the run for ingestion. It
// returns table.ErrNoSamples when nothing usable is left.
func (r *Run) Finalize() error {
	if !r.finalized {
		r.finalized = true
		for _, s := range r.data.Ignore(r.cfg.IgnoreSamples) {
			delete(r.sources, s)
			r.stats.SamplesIgnored.Inc()
			r.log.Debug("ignoring sample", zap.String("sample", s))
		}
	}
	if r.data.Len() == 0 {
		return table.ErrNoSamples
	}
	r.log.Info(fmt.Sprintf("Found %d samples", r.data.Len()), zap.Int("samples", r.data.Len()))
	return nil
}

// Tables assembles the full and summary tables. Finalize must succeed first.
func (r *Run) Tables() (*Tables, error) {
	if !r.finalized {
		return nil, errors.New("run not finalized")
	}
	full, err := table.Assemble(r.data, r.reg, r.cfg.Table)
	if err != nil {
		return nil, err
	}
	sum, err := table.AssembleSummary(r.data, r.reg, r.cfg.Summary)
	if err != nil {
		return nil, err
	}
	mod, sec := NextcladeModule(), RunSection()
	full.Module, full.Section = &mod, &sec
	sum.Module = &mod
	return &Tables{Full: full, Summary: sum}, nil
}

// WriteArtifacts writes the dataset dump and the data-source list into dir
// and returns the written paths.
func (r *Run) WriteArtifacts(dir string) ([]string, error) {
	if !r.finalized {
		return nil, errors.New("run not finalized")
	}
	dataPath, err := export.WriteFile(dir, DataFileName, r.cfg.DataFormat, export.DatasetTable{Data: r.data})
	if err != nil {
		return nil, fmt.Errorf("write data file: %w", err)
	}
	srcs := make(export.SourcesTable, 0, len(r.sources))
	for _, s := range r.sources {
		srcs = append(srcs, s)
	}
	srcPath, err := export.WriteFile(dir, SourcesName, r.cfg.DataFormat, srcs)
	if err != nil {
		return nil, fmt.Errorf("write sources file: %w", err)
	}
	r.log.Debug("wrote artifacts", zap.String("data", dataPath), zap.String("sources", srcPath))
	return []string{dataPath, srcPath}, nil
}
