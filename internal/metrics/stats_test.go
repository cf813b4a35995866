package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsAreIsolated(t *testing.T) {
	a, b := NewStats(), NewStats()
	a.RecordsAccepted.Inc()
	a.RecordErrors.WithLabelValues(ReasonMissingSample).Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.RecordsAccepted))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RecordsAccepted))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.RecordErrors.WithLabelValues(ReasonMissingSample)))
}

func TestWriteTextfile(t *testing.T) {
	s := NewStats()
	s.FilesProcessed.Add(2)
	s.Duplicates.Inc()

	p := filepath.Join(t.TempDir(), "cladeloom.prom")
	require.NoError(t, s.WriteTextfile(p))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	out := string(b)
	assert.True(t, strings.Contains(out, "cladeloom_files_processed_total 2"), out)
	assert.True(t, strings.Contains(out, "cladeloom_duplicate_samples_total 1"), out)
}
