package logger

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "")
	l.Banner("Training Start", "=", 5)
	assert.Equal(t, "=====\nTraining Start\n=====\n", buf.String())
}

func TestWarnf(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "")
	l.Warnf("overshoot by %d epochs", 3)
	assert.Contains(t, buf.String(), "warning: overshoot by 3 epochs")
}

func TestDumpTabular(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	l := New(&buf, dir)

	l.RecordTabular("Trained Epochs", 50)
	l.RecordTabular("Average Episodic Reward", 12.5)
	require.NoError(t, l.DumpTabular())
	assert.Contains(t, buf.String(), "Trained Epochs")
	assert.Contains(t, buf.String(), "12.5")

	l.RecordTabular("Trained Epochs", 100)
	l.RecordTabular("Average Episodic Reward", -1.0)
	require.NoError(t, l.DumpTabular())

	file, err := os.Open(filepath.Join(dir, ProgressFile))
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	want := [][]string{
		{"Trained Epochs", "Average Episodic Reward"},
		{"50", "12.5"},
		{"100", "-1"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("progress rows mismatch (-want +got):\n%s", diff)
	}
}

func TestDumpTabularColumnMismatch(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, t.TempDir())

	l.RecordTabular("a", 1)
	require.NoError(t, l.DumpTabular())

	l.RecordTabular("b", 2)
	assert.Error(t, l.DumpTabular())

	// Nothing recorded, nothing to dump
	assert.NoError(t, l.DumpTabular())
}
