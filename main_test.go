package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billing "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/billing/domain"
)

const testConfig = `
year: 2023
seed: 11
scenarios:
  - {name: ZEV, mode: zev}
  - {name: LEG_20, mode: LEG, leg_discount: 0.2}
  - {name: BAD, mode: PEER}
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	return path
}

func TestRun_WritesOutputs(t *testing.T) {
	outDir := t.TempDir()
	var buf bytes.Buffer
	err := run(context.Background(), log.New(&buf, "", 0), runOptions{
		ConfigPath:    writeConfig(t),
		OutDir:        outDir,
		WriteProfiles: true,
	})
	require.NoError(t, err)

	for _, name := range []string{detailsFile, summaryFile, profilesFile, workbookFile, billChartFile, frontierFile, metricsFile} {
		info, err := os.Stat(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
	assert.Contains(t, buf.String(), "scenario skipped: scenario=BAD")
	assert.Contains(t, buf.String(), "run finished with failures: count=1")
}

func TestRun_StrictAbortsOnInvalidMode(t *testing.T) {
	outDir := t.TempDir()
	var buf bytes.Buffer
	err := run(context.Background(), log.New(&buf, "", 0), runOptions{
		ConfigPath: writeConfig(t),
		OutDir:     outDir,
		Strict:     true,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, billing.ErrInvalidMode))

	_, statErr := os.Stat(filepath.Join(outDir, detailsFile))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_MissingConfig(t *testing.T) {
	err := run(context.Background(), log.New(&bytes.Buffer{}, "", 0), runOptions{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
	})
	assert.Error(t, err)
}
