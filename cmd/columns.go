package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cladeloom/internal/columns"
	"github.com/KaramelBytes/cladeloom/internal/utils"
)

var (
	colFormat  string
	colFile    string
	colSummary bool
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Inspect the column metadata registry",
	Example: `  cladeloom columns show
  cladeloom columns show --summary --format markdown
  cladeloom columns validate ./my-columns.yaml`,
}

var columnsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show registry columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := colFile
		if path == "" {
			if c, err := effectiveConfig(); err == nil {
				path = c.ColumnsFile
			}
		}
		reg, err := loadRegistry(path)
		if err != nil {
			return err
		}
		specs := reg.Columns()
		if colSummary {
			specs = reg.SummaryColumns()
		}
		out := cmd.OutOrStdout()
		switch strings.ToLower(colFormat) {
		case "", "json":
			entries := make([]columnEntry, 0, len(specs))
			for _, spec := range specs {
				entries = append(entries, columnEntry{Key: spec.Key, Header: spec})
			}
			b, err := utils.PrettyJSON(entries)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		case "markdown", "md":
			fmt.Fprint(out, columnsMarkdown(specs))
		default:
			return fmt.Errorf("unsupported --format: %s (use json|markdown)", colFormat)
		}
		return nil
	},
}

var columnsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a YAML column registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := columns.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d columns, %d summary columns\n", len(reg.Columns()), len(reg.SummaryColumns()))
		return nil
	},
}

// columnEntry pairs a key with its header, which does not carry the key
// itself when encoded.
type columnEntry struct {
	Key    string             `json:"key"`
	Header columns.ColumnSpec `json:"header"`
}

func columnsMarkdown(specs []columns.ColumnSpec) string {
	var b strings.Builder
	b.WriteString("| Key | Title | Hidden | Min | Scale | Rules | Description |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
	for _, s := range specs {
		minVal := ""
		if s.Min != nil {
			minVal = fmt.Sprintf("%g", *s.Min)
		}
		scale := string(s.Scale)
		if s.Scale == "" {
			scale = "default"
		}
		var labels []string
		for label := range s.Rules {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		b.WriteString(fmt.Sprintf("| %s | %s | %t | %s | %s | %s | %s |\n",
			s.Key, s.Title, s.Hidden, minVal, scale, strings.Join(labels, ","), s.Description))
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(columnsCmd)
	columnsCmd.AddCommand(columnsShowCmd)
	columnsCmd.AddCommand(columnsValidateCmd)
	columnsShowCmd.Flags().StringVar(&colFormat, "format", "json", "output format: json|markdown")
	columnsShowCmd.Flags().StringVar(&colFile, "file", "", "YAML column registry to show instead of the built-in one")
	columnsShowCmd.Flags().BoolVar(&colSummary, "summary", false, "show only the general statistics columns")
}
