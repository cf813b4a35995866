// Package export writes run artifacts (the verbatim dataset dump and the data
// source list) in one of the registered data formats.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/cladeloom/internal/utils"
)

// ErrUnsupported indicates a data format has no registered writer.
var ErrUnsupported = errors.New("unsupported data format")

// Tabular is anything that can be written as a flat table or as a structured
// document.
type Tabular interface {
	// Header returns the column names of the flat form.
	Header() []string
	// Rows returns the flat form, one slice per row, aligned with Header.
	Rows() [][]string
	// Value returns the structured form for document formats.
	Value() any
}

// Writer encodes a Tabular in one data format.
type Writer interface {
	CanWrite(format string) bool
	Ext() string
	Encode(w io.Writer, t Tabular) error
}

var registry []Writer

// Register adds a writer implementation to the registry.
func Register(w Writer) {
	registry = append(registry, w)
}

// Lookup returns the writer for format.
func Lookup(format string) (Writer, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	for _, w := range registry {
		if w.CanWrite(f) {
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, format)
}

// WriteFile encodes t into dir/name.<ext> and returns the written path.
func WriteFile(dir, name, format string, t Tabular) (string, error) {
	w, err := Lookup(format)
	if err != nil {
		return "", err
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	var buf bytes.Buffer
	if err := w.Encode(&buf, t); err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(dir, name+"."+w.Ext())
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

func init() {
	// Register default writers
	Register(tsvWriter{})
	Register(jsonWriter{})
	Register(yamlWriter{})
}
