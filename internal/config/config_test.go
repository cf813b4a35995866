package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolateHome(t)
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "seqName", c.SampleField)
	assert.Equal(t, ";", c.Delimiter)
	assert.Equal(t, "overwrite", c.DuplicatePolicy)
	assert.Equal(t, "tsv", c.DataFormat)
	assert.Equal(t, "cladeloom_data", c.OutputDir)
	assert.Equal(t, "nextclade_run_table", c.TableID)
	assert.Empty(t, c.IgnoreSamples)
	require.NoError(t, c.Validate())
}

func TestSaveThenLoad(t *testing.T) {
	isolateHome(t)
	c, err := Load("")
	require.NoError(t, err)
	c.IgnoreSamples = []string{"ctrl_*"}
	c.DataFormat = "json"
	require.NoError(t, Save(c, ""))

	back, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"ctrl_*"}, back.IgnoreSamples)
	assert.Equal(t, "json", back.DataFormat)
}

func TestEnvOverridesFile(t *testing.T) {
	home := isolateHome(t)
	p := filepath.Join(home, "custom.yaml")
	require.NoError(t, os.WriteFile(p, []byte("data_format: yaml\nduplicate_policy: keep-first\n"), 0o644))
	t.Setenv("CLADELOOM_DATA_FORMAT", "json")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "json", c.DataFormat)
	assert.Equal(t, "keep-first", c.DuplicatePolicy)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolateHome(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Global {
		return &Global{SampleField: "seqName", Delimiter: ";", DuplicatePolicy: "overwrite", DataFormat: "tsv"}
	}
	require.NoError(t, base().Validate())

	c := base()
	c.Delimiter = "tab"
	r, err := c.DelimiterRune()
	require.NoError(t, err)
	assert.Equal(t, '\t', r)

	for name, mutate := range map[string]func(*Global){
		"delimiter": func(g *Global) { g.Delimiter = ";;" },
		"quote":     func(g *Global) { g.Delimiter = `"` },
		"policy":    func(g *Global) { g.DuplicatePolicy = "merge" },
		"format":    func(g *Global) { g.DataFormat = "xlsx" },
		"field":     func(g *Global) { g.SampleField = "" },
	} {
		g := base()
		mutate(g)
		assert.Error(t, g.Validate(), name)
	}
}
