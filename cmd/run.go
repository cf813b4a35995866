package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/cladeloom/internal/columns"
	cfgpkg "github.com/KaramelBytes/cladeloom/internal/config"
	"github.com/KaramelBytes/cladeloom/internal/ingest"
	"github.com/KaramelBytes/cladeloom/internal/logging"
	"github.com/KaramelBytes/cladeloom/internal/pipeline"
	"github.com/KaramelBytes/cladeloom/internal/table"
	"github.com/KaramelBytes/cladeloom/internal/utils"
)

var (
	runOutputDir       string
	runDataFormat      string
	runIgnore          []string
	runSampleField     string
	runDelimiter       string
	runDuplicatePolicy string
	runCleanExt        []string
	runColumnsFile     string
	runMetricsFile     string
	runShowHidden      bool
	runQuiet           bool
)

var runCmd = &cobra.Command{
	Use:   "run <reports...>",
	Short: "Ingest Nextclade CSV reports and build the run tables",
	Example: `  cladeloom run results/*/nextclade.csv
  cladeloom run 'runs/**.csv' --ignore 'ctrl_*' --data-format json
  cladeloom run nextclade.csv.gz --metrics-file run.prom`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		applyRunFlags(cmd, c)
		if err := c.Validate(); err != nil {
			return err
		}

		files, err := utils.ExpandInputs(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}

		run, err := newRun(c)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		total := len(files)
		skipped := 0
		for i, path := range files {
			if !runQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			for _, err := range run.Ingest(path) {
				skipped++
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v\n", err)
			}
		}

		if err := run.Finalize(); err != nil {
			if !errors.Is(err, table.ErrNoSamples) {
				return err
			}
			// nothing to report is not a failure
			if !runQuiet {
				fmt.Fprintln(out, "No Nextclade samples found")
			}
			return writeMetrics(run, c.MetricsFile)
		}

		tables, err := run.Tables()
		if err != nil {
			return err
		}
		written, err := run.WriteArtifacts(c.OutputDir)
		if err != nil {
			return err
		}
		for _, t := range []*table.Spec{tables.Full, tables.Summary} {
			b, err := utils.PrettyJSON(t)
			if err != nil {
				return fmt.Errorf("encode table %s: %w", t.Options.ID, err)
			}
			p := filepath.Join(c.OutputDir, t.Options.ID+".json")
			if err := utils.SafeWriteFile(p, append(b, '\n')); err != nil {
				return err
			}
			written = append(written, p)
		}
		if err := writeMetrics(run, c.MetricsFile); err != nil {
			return err
		}

		if !runQuiet {
			fmt.Fprintln(out)
			fmt.Fprint(out, tables.Full.Markdown(runShowHidden))
			fmt.Fprintln(out)
			for _, p := range written {
				fmt.Fprintf(out, "✓ Wrote %s\n", p)
			}
			if skipped > 0 {
				fmt.Fprintf(out, "⚠ %d file(s) skipped\n", skipped)
			}
		}
		return nil
	},
}

// applyRunFlags lets explicitly set flags override the loaded configuration.
func applyRunFlags(cmd *cobra.Command, c *cfgpkg.Global) {
	f := cmd.Flags()
	if f.Changed("output-dir") {
		c.OutputDir = runOutputDir
	}
	if f.Changed("data-format") {
		c.DataFormat = runDataFormat
	}
	if f.Changed("ignore") {
		c.IgnoreSamples = append(c.IgnoreSamples, runIgnore...)
	}
	if f.Changed("sample-field") {
		c.SampleField = runSampleField
	}
	if f.Changed("delimiter") {
		c.Delimiter = runDelimiter
	}
	if f.Changed("duplicate-policy") {
		c.DuplicatePolicy = runDuplicatePolicy
	}
	if f.Changed("clean-ext") {
		c.CleanExtensions = append(c.CleanExtensions, runCleanExt...)
	}
	if f.Changed("columns-file") {
		c.ColumnsFile = runColumnsFile
	}
	if f.Changed("metrics-file") {
		c.MetricsFile = runMetricsFile
	}
}

// newRun translates a validated configuration into a pipeline run.
func newRun(c *cfgpkg.Global) (*pipeline.Run, error) {
	delim, err := c.DelimiterRune()
	if err != nil {
		return nil, err
	}
	policy, err := ingest.ParseDuplicatePolicy(c.DuplicatePolicy)
	if err != nil {
		return nil, err
	}
	reg, err := loadRegistry(c.ColumnsFile)
	if err != nil {
		return nil, err
	}
	log := logging.OrNop(logger)
	log.Debug("starting run", zap.String("sample_field", c.SampleField), zap.String("policy", string(policy)))
	return pipeline.New(pipeline.Config{
		Ingest: ingest.Options{
			Delimiter:   delim,
			SampleField: c.SampleField,
			Policy:      policy,
			Cleaner:     ingest.DefaultCleaner(c.CleanExtensions),
		},
		IgnoreSamples: c.IgnoreSamples,
		Registry:      reg,
		Table:         tableOptions(c),
		Summary:       summaryOptions(c),
		DataFormat:    c.DataFormat,
		Logger:        log,
	}), nil
}

func tableOptions(c *cfgpkg.Global) table.Options {
	opt := table.DefaultOptions()
	if c.TableID != "" {
		opt.ID = c.TableID
	}
	if c.TableTitle != "" {
		opt.Title = c.TableTitle
	}
	if c.Namespace != "" {
		opt.Namespace = c.Namespace
	}
	return opt
}

// summaryOptions keeps the general statistics ID and title; only the
// namespace follows the configuration.
func summaryOptions(c *cfgpkg.Global) table.Options {
	opt := table.SummaryOptions()
	if c.Namespace != "" {
		opt.Namespace = c.Namespace
	}
	return opt
}

func loadRegistry(path string) (*columns.Registry, error) {
	if path == "" {
		return columns.Default(), nil
	}
	reg, err := columns.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load columns file: %w", err)
	}
	return reg, nil
}

func writeMetrics(run *pipeline.Run, path string) error {
	if path == "" {
		return nil
	}
	return run.Stats().WriteTextfile(path)
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runOutputDir, "output-dir", "o", "", "directory for data files and table specs (overrides config)")
	runCmd.Flags().StringVar(&runDataFormat, "data-format", "", "data file format: tsv|json|yaml (overrides config)")
	runCmd.Flags().StringSliceVar(&runIgnore, "ignore", nil, "glob of sample names to drop (repeatable)")
	runCmd.Flags().StringVar(&runSampleField, "sample-field", "", "report column holding the sample name (overrides config)")
	runCmd.Flags().StringVar(&runDelimiter, "delimiter", "", "report field delimiter, e.g. ';' or 'tab' (overrides config)")
	runCmd.Flags().StringVar(&runDuplicatePolicy, "duplicate-policy", "", "overwrite|keep-first (overrides config)")
	runCmd.Flags().StringSliceVar(&runCleanExt, "clean-ext", nil, "suffix to strip from sample names (repeatable)")
	runCmd.Flags().StringVar(&runColumnsFile, "columns-file", "", "YAML column registry replacing the built-in one")
	runCmd.Flags().StringVar(&runMetricsFile, "metrics-file", "", "write run counters in Prometheus text format to this path")
	runCmd.Flags().BoolVar(&runShowHidden, "show-hidden", false, "include hidden columns in the preview")
	runCmd.Flags().BoolVar(&runQuiet, "quiet", false, "suppress progress and preview output")
}
