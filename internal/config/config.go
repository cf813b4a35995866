package config

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/cladeloom/internal/export"
	"github.com/KaramelBytes/cladeloom/internal/ingest"
)

// Global configuration structure.
type Global struct {
	// Input format
	SampleField     string   `mapstructure:"sample_field" yaml:"sample_field"`
	Delimiter       string   `mapstructure:"delimiter" yaml:"delimiter"`
	DuplicatePolicy string   `mapstructure:"duplicate_policy" yaml:"duplicate_policy"`
	CleanExtensions []string `mapstructure:"clean_extensions" yaml:"clean_extensions"`
	IgnoreSamples   []string `mapstructure:"ignore_samples" yaml:"ignore_samples"`

	// Output
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	DataFormat  string `mapstructure:"data_format" yaml:"data_format"`
	ColumnsFile string `mapstructure:"columns_file" yaml:"columns_file"`
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`

	// Table options
	TableID    string `mapstructure:"table_id" yaml:"table_id"`
	TableTitle string `mapstructure:"table_title" yaml:"table_title"`
	Namespace  string `mapstructure:"namespace" yaml:"namespace"`
}

// DelimiterRune returns the configured delimiter as a rune. "tab" and "\t"
// both mean a tab character.
func (g *Global) DelimiterRune() (rune, error) {
	switch g.Delimiter {
	case "", ";":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(g.Delimiter)
	if size != len(g.Delimiter) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("unsupported delimiter: %q", g.Delimiter)
	}
	return r, nil
}

// Validate checks the values that have a closed set of options.
func (g *Global) Validate() error {
	if _, err := g.DelimiterRune(); err != nil {
		return err
	}
	if _, err := ingest.ParseDuplicatePolicy(g.DuplicatePolicy); err != nil {
		return err
	}
	if _, err := export.Lookup(g.DataFormat); err != nil {
		return err
	}
	if g.SampleField == "" {
		return fmt.Errorf("sample_field must not be empty")
	}
	return nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.cladeloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".cladeloom")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CLADELOOM")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sample_field", ingest.DefaultSampleField)
	v.SetDefault("delimiter", ";")
	v.SetDefault("duplicate_policy", string(ingest.Overwrite))
	v.SetDefault("clean_extensions", []string{})
	v.SetDefault("ignore_samples", []string{})
	v.SetDefault("output_dir", "cladeloom_data")
	v.SetDefault("data_format", "tsv")
	v.SetDefault("columns_file", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("table_id", "nextclade_run_table")
	v.SetDefault("table_title", "Nextclade Run details")
	v.SetDefault("namespace", "Nextclade")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".cladeloom"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// a missing default config is fine; an explicit one must be readable
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
