package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/cladeloom/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set CladeLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sample_field: %s\n", c.SampleField)
		fmt.Fprintf(out, "delimiter: %q\n", c.Delimiter)
		fmt.Fprintf(out, "duplicate_policy: %s\n", c.DuplicatePolicy)
		if len(c.CleanExtensions) > 0 {
			fmt.Fprintf(out, "clean_extensions: %s\n", strings.Join(c.CleanExtensions, ","))
		}
		if len(c.IgnoreSamples) > 0 {
			fmt.Fprintf(out, "ignore_samples: %s\n", strings.Join(c.IgnoreSamples, ","))
		}
		fmt.Fprintf(out, "output_dir: %s\n", c.OutputDir)
		fmt.Fprintf(out, "data_format: %s\n", c.DataFormat)
		if c.ColumnsFile != "" {
			fmt.Fprintf(out, "columns_file: %s\n", c.ColumnsFile)
		}
		if c.MetricsFile != "" {
			fmt.Fprintf(out, "metrics_file: %s\n", c.MetricsFile)
		}
		fmt.Fprintf(out, "table_id: %s\n", c.TableID)
		fmt.Fprintf(out, "table_title: %s\n", c.TableTitle)
		fmt.Fprintf(out, "namespace: %s\n", c.Namespace)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		switch key {
		case "sample_field":
			c.SampleField = val
		case "delimiter":
			c.Delimiter = val
		case "duplicate_policy":
			c.DuplicatePolicy = strings.ToLower(val)
		case "clean_extensions":
			c.CleanExtensions = splitList(val)
		case "ignore_samples":
			c.IgnoreSamples = splitList(val)
		case "output_dir":
			c.OutputDir = val
		case "data_format":
			c.DataFormat = strings.ToLower(val)
		case "columns_file":
			c.ColumnsFile = val
		case "metrics_file":
			c.MetricsFile = val
		case "table_id":
			c.TableID = val
		case "table_title":
			c.TableTitle = val
		case "namespace":
			c.Namespace = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = nil
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// splitList parses a comma-separated value; an empty string clears the list.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
