package columns

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/cladeloom/internal/fields"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	cols := reg.Columns()
	require.NotEmpty(t, cols)
	assert.Equal(t, "clade", cols[0].Key)
	assert.Equal(t, "qc_snpclusters_totalsnps", cols[len(cols)-1].Key)

	clade, ok := reg.Lookup("clade")
	require.True(t, ok)
	assert.Equal(t, "Clade", clade.Title)
	assert.Equal(t, NoScale, clade.Scale)
	assert.False(t, clade.Hidden)

	gaps, ok := reg.Lookup("totalgaps")
	require.True(t, ok)
	assert.True(t, gaps.Hidden)
	require.NotNil(t, gaps.Min)
	assert.Equal(t, 0.0, *gaps.Min)
	assert.Equal(t, Scale("RdBu-rev"), gaps.Scale)

	score, _ := reg.Lookup("qc_overallscore")
	assert.Equal(t, Scale(""), score.Scale)
	assert.Nil(t, score.Min)

	assert.Same(t, reg, Default())
}

func TestRegistryKeysAreCanonical(t *testing.T) {
	for _, c := range Default().Columns() {
		assert.Equal(t, fields.Normalize(c.Key), c.Key)
		assert.NotEmpty(t, c.Title, c.Key)
	}
}

func TestStatusRulesShareAnchors(t *testing.T) {
	reg := Default()
	for _, key := range []string{"qc_overallstatus", "qc_missingdata_status", "qc_snpclusters_status"} {
		c, ok := reg.Lookup(key)
		require.True(t, ok, key)
		status, ok := c.Status(fields.Text("good"))
		require.True(t, ok, key)
		assert.Equal(t, "pass", status)
		status, _ = c.Status(fields.Text("bad"))
		assert.Equal(t, "fail", status)
		_, ok = c.Status(fields.Text("mediocre"))
		assert.False(t, ok)
	}
}

func TestSpecFallsBackToDefault(t *testing.T) {
	reg := Default()
	c := reg.Spec("substitutions")
	assert.Equal(t, DefaultSpec("substitutions"), c)
	assert.Equal(t, "substitutions", c.Title)
	assert.False(t, c.Hidden)
	assert.Equal(t, Scale(""), c.Scale)
}

func TestSummarySubset(t *testing.T) {
	reg := Default()
	assert.Equal(t, []string{"clade"}, reg.SummaryKeys())
	assert.True(t, reg.IsSummary("clade"))
	assert.False(t, reg.IsSummary("totalgaps"))

	sum := reg.SummaryColumns()
	require.Len(t, sum, 1)
	assert.Equal(t, "Clade", sum[0].Description)
}

func TestLoadRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"missing key":   "columns:\n  - title: X\n",
		"not canonical": "columns:\n  - key: Qc.Score\n    title: X\n",
		"duplicate":     "columns:\n  - key: a\n    title: A\n  - key: a\n    title: B\n",
		"unknown field": "columns:\n  - key: a\n    colour: red\n",
	}
	for name, doc := range cases {
		_, err := Load(strings.NewReader(doc))
		assert.Error(t, err, name)
	}
}

func TestLoadFileAndScaleTrue(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cols.yaml")
	doc := "columns:\n  - key: depth\n    title: Depth\n    scale: true\n  - key: status\n    title: Status\n    cond_formatting_rules:\n      warn: [{gt: 10}]\n"
	require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))

	reg, err := LoadFile(p)
	require.NoError(t, err)
	d, _ := reg.Lookup("depth")
	assert.Equal(t, Scale(""), d.Scale)
	assert.Empty(t, reg.SummaryKeys())

	s, _ := reg.Lookup("status")
	label, ok := s.Status(fields.Number(11))
	assert.True(t, ok)
	assert.Equal(t, "warn", label)
	_, ok = s.Status(fields.Text("11a"))
	assert.False(t, ok)
}

func TestPredicateMatch(t *testing.T) {
	str := func(s string) *string { return &s }
	num := func(f float64) *float64 { return &f }

	assert.True(t, Predicate{SContains: str("GOO")}.Match(fields.Text("good")))
	assert.False(t, Predicate{SNe: str("bad")}.Match(fields.Text("bad")))
	assert.True(t, Predicate{Lt: num(5), Gt: num(1)}.Match(fields.Number(3)))
	assert.False(t, Predicate{Lt: num(5)}.Match(fields.Number(5)))
	assert.True(t, Predicate{SEq: str("3")}.Match(fields.Number(3)))
	assert.False(t, Predicate{}.Match(fields.Text("x")))
}

func TestColumnSpecJSON(t *testing.T) {
	reg := Default()

	b, err := json.Marshal(reg.Spec("totalgaps"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Gaps","description":"Total number of detected nucleotide gaps","hidden":true,"min":0,"scale":"RdBu-rev"}`, string(b))

	b, err = json.Marshal(reg.Spec("qc_overallstatus"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Overall status","description":"Summarizing status of all QC tests","scale":false,
		"cond_formatting_rules":{"pass":[{"s_eq":"good"}],"fail":[{"s_eq":"bad"}]}}`, string(b))

	b, err = json.Marshal(DefaultSpec("foo"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"foo"}`, string(b))
}
