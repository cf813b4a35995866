package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/cladeloom/internal/utils"
)

type tsvWriter struct{}

func (tsvWriter) CanWrite(format string) bool { return format == "tsv" || format == "" }
func (tsvWriter) Ext() string                 { return "txt" }

func (tsvWriter) Encode(w io.Writer, t Tabular) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows()); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

type jsonWriter struct{}

func (jsonWriter) CanWrite(format string) bool { return format == "json" }
func (jsonWriter) Ext() string                 { return "json" }

func (jsonWriter) Encode(w io.Writer, t Tabular) error {
	b, err := utils.PrettyJSON(t.Value())
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

type yamlWriter struct{}

func (yamlWriter) CanWrite(format string) bool { return format == "yaml" || format == "yml" }
func (yamlWriter) Ext() string                 { return "yaml" }

func (yamlWriter) Encode(w io.Writer, t Tabular) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t.Value()); err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	return enc.Close()
}
