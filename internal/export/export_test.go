package export

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/cladeloom/internal/dataset"
	"github.com/KaramelBytes/cladeloom/internal/fields"
)

func exampleDataset() *dataset.Dataset {
	ds := dataset.New()
	ds.Put("SampleB", dataset.Record{"clade": fields.Text("20B"), "totalgaps": fields.Text("x")})
	ds.Put("SampleA", dataset.Record{"clade": fields.Text("19A"), "totalgaps": fields.Number(3)})
	ds.Put("SampleC", dataset.Record{"clade": fields.Text("21C")})
	return ds
}

func TestWriteDatasetTSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	p, err := WriteFile(dir, "multiqc_nextclade", "tsv", DatasetTable{Data: exampleDataset()})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "multiqc_nextclade.txt"), p)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "Sample\tclade\ttotalgaps\n"+
		"SampleA\t19A\t3\n"+
		"SampleB\t20B\tx\n"+
		"SampleC\t21C\t\n", string(b))
}

func TestWriteDatasetJSON(t *testing.T) {
	dir := t.TempDir()
	p, err := WriteFile(dir, "multiqc_nextclade", "JSON", DatasetTable{Data: exampleDataset()})
	require.NoError(t, err)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"SampleA": {"clade": "19A", "totalgaps": 3},
		"SampleB": {"clade": "20B", "totalgaps": "x"},
		"SampleC": {"clade": "21C"}
	}`, string(b))
}

func TestWriteDatasetYAML(t *testing.T) {
	dir := t.TempDir()
	p, err := WriteFile(dir, "multiqc_nextclade", "yaml", DatasetTable{Data: exampleDataset()})
	require.NoError(t, err)
	assert.Equal(t, ".yaml", filepath.Ext(p))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	var got map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(b, &got))
	assert.Equal(t, "19A", got["SampleA"]["clade"])
	assert.EqualValues(t, 3, got["SampleA"]["totalgaps"])
	assert.Equal(t, "x", got["SampleB"]["totalgaps"])
}

func TestLookupUnsupported(t *testing.T) {
	_, err := Lookup("parquet")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = WriteFile(t.TempDir(), "x", "xlsx", DatasetTable{Data: dataset.New()})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestSourcesTable(t *testing.T) {
	srcs := SourcesTable{
		{Module: "Nextclade", Section: "all_sections", Sample: "S2", Path: "/d/b.csv"},
		{Module: "Nextclade", Section: "all_sections", Sample: "S1", Path: "/d/a.csv"},
	}
	assert.Equal(t, [][]string{
		{"Nextclade", "all_sections", "S1", "/d/a.csv"},
		{"Nextclade", "all_sections", "S2", "/d/b.csv"},
	}, srcs.Rows())

	dir := t.TempDir()
	p, err := WriteFile(dir, "multiqc_sources", "json", srcs)
	require.NoError(t, err)
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	var back []Source
	require.NoError(t, json.Unmarshal(b, &back))
	require.Len(t, back, 2)
	assert.Equal(t, "S1", back[0].Sample)
}
