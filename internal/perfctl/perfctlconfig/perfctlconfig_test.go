// Copyright 2026 Peter Edge
//
// All rights reserved.

package perfctlconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bufdev/perfctl/internal/perfctl/perfctlpath"
	"github.com/bufdev/perfctl/internal/pkg/metrics"
	"github.com/stretchr/testify/require"
)

func TestInitConfigTemplateIsValid(t *testing.T) {
	t.Parallel()
	configDirPath := filepath.Join(t.TempDir(), "perfctl")
	filePath, err := InitConfig(configDirPath)
	require.NoError(t, err)
	require.Equal(t, perfctlpath.ConfigFilePath(configDirPath), filePath)
	config, err := ReadConfig(configDirPath)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), config)
	// A second init does not overwrite the file.
	_, err = InitConfig(configDirPath)
	require.Error(t, err)
}

func TestReadConfigMissing(t *testing.T) {
	t.Parallel()
	configDirPath := t.TempDir()
	_, err := ReadConfig(configDirPath)
	require.ErrorContains(t, err, "perfctl config init")
	config, err := ReadConfigOrDefault(configDirPath)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), config)
}

func TestReadConfigFile(t *testing.T) {
	t.Parallel()
	filePath := writeConfig(t, `version: v1
analysis:
  annualization_periods: 52
  max_rows: 1000
  parallelism: 2
tradingview:
  initial_capital: 10000
score:
  win_rate: 0.4
  profit_factor: 0.2
  recovery: 0.2
  sharpe: 0.2
cache:
  disabled: true
journal:
  path: /tmp/journal.db
server:
  address: ":9090"
`)
	config, err := ReadConfigFile(filePath)
	require.NoError(t, err)
	require.Equal(t, &Config{
		AnnualizationPeriods: 52,
		MaxRows:              1000,
		Parallelism:          2,
		InitialCapital:       10000,
		ScoreWeights:         metrics.ScoreWeights{WinRate: 0.4, ProfitFactor: 0.2, Recovery: 0.2, Sharpe: 0.2},
		CacheDisabled:        true,
		JournalPath:          "/tmp/journal.db",
		ServerAddress:        ":9090",
	}, config)
	options := config.ReportOptions()
	require.Equal(t, 1000, options.MaxRows)
	require.Equal(t, 10000.0, options.InitialCapital)
	require.Equal(t, 52.0, options.Metrics.AnnualizationPeriods)
}

func TestReadConfigFileInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
	}{
		{name: "version", content: "version: v2\n"},
		{name: "missing version", content: "analysis:\n  max_rows: 10\n"},
		{name: "unknown field", content: "version: v1\nunknown: true\n"},
		{name: "negative rows", content: "version: v1\nanalysis:\n  max_rows: -1\n"},
		{name: "negative parallelism", content: "version: v1\nanalysis:\n  parallelism: -1\n"},
		{name: "negative capital", content: "version: v1\ntradingview:\n  initial_capital: -5\n"},
		{name: "weights sum", content: "version: v1\nscore:\n  win_rate: 0.5\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			require.Error(t, ValidateConfigFile(writeConfig(t, test.content)))
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), perfctlpath.ConfigFileName)
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	return filePath
}
