package main

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfg, err := LoadConfig()
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := newRootCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), err
}

var smallRun = []string{"--count", "400", "--dim", "8", "--queries", "25", "--k", "5", "--log-level", "error"}

func TestRunJSON(t *testing.T) {
	args := append([]string{"run", "--json", "--ef-search", "10,100"}, smallRun...)
	out, err := execute(t, args...)
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, 400, report.Build.Points)
	assert.Equal(t, 8, report.Build.Dimension)
	assert.Equal(t, "L2", report.Build.Metric)
	assert.Positive(t, report.Build.MemoryBytes)
	assert.Equal(t, 5, report.K)

	require.Len(t, report.Runs, 2)
	assert.Equal(t, 10, report.Runs[0].EF)
	assert.Equal(t, 100, report.Runs[1].EF)
	for _, run := range report.Runs {
		assert.Positive(t, run.QPS)
		assert.LessOrEqual(t, run.P50Micros, run.P99Micros)
	}
	assert.GreaterOrEqual(t, report.Runs[1].Recall, 0.9)
	assert.GreaterOrEqual(t, report.Runs[1].Recall, report.Runs[0].Recall-0.05)
}

func TestRunTable(t *testing.T) {
	args := append([]string{"run", "--ef-search", "20", "--metric", "cosine", "--dataset", "clustered"}, smallRun...)
	out, err := execute(t, args...)
	require.NoError(t, err)

	assert.Contains(t, out, "built 400 x 8 Cosine (clustered)")
	assert.Contains(t, out, "RECALL@5")
	assert.Contains(t, out, "P99(us)")
}

func TestRunParallel(t *testing.T) {
	args := append([]string{"run", "--json", "--ef-search", "50", "--concurrency", "4"}, smallRun...)
	out, err := execute(t, args...)
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Runs, 1)

	run := report.Runs[0]
	assert.Positive(t, run.QPS)
	assert.Zero(t, run.P50Micros)
	assert.GreaterOrEqual(t, run.Recall, 0.85)
}

func TestRunMemoryLimit(t *testing.T) {
	args := append([]string{"run", "--memory-limit", "1024"}, smallRun...)
	_, err := execute(t, args...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory")
}

func TestRunInvalidFlags(t *testing.T) {
	_, err := execute(t, "run", "--count", "10", "--k", "20")
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = execute(t, "run", "--dataset", "sift")
	assert.ErrorIs(t, err, ErrInvalidDataset)
}

func TestLevels(t *testing.T) {
	args := append([]string{"levels", "--m", "8"}, smallRun...)
	out, err := execute(t, args...)
	require.NoError(t, err)

	assert.Contains(t, out, "M=8 M0=16")
	assert.Contains(t, out, "expected ratio=0.1250")
	assert.Contains(t, out, "LEVEL")
	assert.Contains(t, out, "AVG DEGREE")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "hnswbench version dev\n", out)
}
