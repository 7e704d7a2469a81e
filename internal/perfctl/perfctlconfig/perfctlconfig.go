// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package perfctlconfig provides configuration parsing and validation for perfctl.
//
// Configuration is stored at ~/.config/perfctl/config.yaml (or $PERFCTL_CONFIG_DIR/config.yaml).
// The file is optional for analysis commands, which fall back to DefaultConfig.
package perfctlconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/bufdev/perfctl/internal/perfctl/perfctlpath"
	"github.com/bufdev/perfctl/internal/perfctl/perfctlreport"
	"github.com/bufdev/perfctl/internal/pkg/metrics"
	"github.com/bufdev/perfctl/internal/standard/xos"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultParallelism is the number of files analyzed at once by default.
	DefaultParallelism = 4
	// DefaultServerAddress is the default listen address of "perfctl serve".
	DefaultServerAddress = "localhost:8080"
)

// configTemplate is the default configuration file template with comments.
// yaml.v3 does not preserve comments, so we hardcode the template string.
const configTemplate = `# The configuration file version.
#
# Required. The only current valid version is v1.
version: v1
# Analysis configuration.
#
# Optional.
analysis:
  # The number of periods per year used to annualize the Sharpe ratio.
  #
  # Optional. Defaults to 252.
  annualization_periods: 252
  # The maximum number of rows read per sheet, for fast previews.
  #
  # Optional. Defaults to 0, which reads every row.
  max_rows: 0
  # The number of files analyzed at once.
  #
  # Optional. Defaults to 4.
  parallelism: 4
# TradingView configuration.
#
# Optional.
tradingview:
  # The starting balance added to TradingView cumulative profit, which starts at zero.
  #
  # Optional. Defaults to 0.
  initial_capital: 0
# Trade quality score weights.
#
# Optional. Each weight must be non-negative and the weights must sum to 1.
# Defaults to 0.25 each.
# score:
#   win_rate: 0.25
#   profit_factor: 0.25
#   recovery: 0.25
#   sharpe: 0.25
# Summary cache configuration.
#
# Optional. Summaries are cached by file content in the cache directory.
cache:
  disabled: false
# Journal configuration.
#
# Optional. Defaults to journal.db in the perfctl data directory.
# journal:
#   path: ~/trading/journal.db
# HTTP server configuration for "perfctl serve".
#
# Optional.
server:
  # The listen address.
  #
  # Optional. Defaults to localhost:8080.
  address: localhost:8080
`

// ExternalConfig is the YAML-serializable configuration file structure.
type ExternalConfig struct {
	// Version is the configuration file version (must be "v1").
	Version string `yaml:"version"`
	// Analysis holds the analysis configuration.
	Analysis ExternalAnalysisConfig `yaml:"analysis"`
	// TradingView holds TradingView-specific configuration.
	TradingView ExternalTradingViewConfig `yaml:"tradingview"`
	// Score holds the optional trade quality score weights.
	Score *ExternalScoreConfig `yaml:"score"`
	// Cache holds the summary cache configuration.
	Cache ExternalCacheConfig `yaml:"cache"`
	// Journal holds the journal configuration.
	Journal ExternalJournalConfig `yaml:"journal"`
	// Server holds the HTTP server configuration.
	Server ExternalServerConfig `yaml:"server"`
}

// ExternalAnalysisConfig holds analysis configuration.
type ExternalAnalysisConfig struct {
	// AnnualizationPeriods annualizes the Sharpe ratio.
	AnnualizationPeriods float64 `yaml:"annualization_periods"`
	// MaxRows caps the rows read per sheet.
	MaxRows int `yaml:"max_rows"`
	// Parallelism is the number of files analyzed at once.
	Parallelism int `yaml:"parallelism"`
}

// ExternalTradingViewConfig holds TradingView configuration.
type ExternalTradingViewConfig struct {
	// InitialCapital is the starting balance of TradingView strategies.
	InitialCapital float64 `yaml:"initial_capital"`
}

// ExternalScoreConfig holds the trade quality score weights.
type ExternalScoreConfig struct {
	WinRate      float64 `yaml:"win_rate"`
	ProfitFactor float64 `yaml:"profit_factor"`
	Recovery     float64 `yaml:"recovery"`
	Sharpe       float64 `yaml:"sharpe"`
}

// ExternalCacheConfig holds summary cache configuration.
type ExternalCacheConfig struct {
	// Disabled turns off the summary cache.
	Disabled bool `yaml:"disabled"`
}

// ExternalJournalConfig holds journal configuration.
type ExternalJournalConfig struct {
	// Path is the SQLite journal path. A leading ~/ is expanded to the home directory.
	Path string `yaml:"path"`
}

// ExternalServerConfig holds HTTP server configuration.
type ExternalServerConfig struct {
	// Address is the listen address.
	Address string `yaml:"address"`
}

// Config is the validated runtime configuration derived from the config file.
type Config struct {
	// AnnualizationPeriods annualizes the Sharpe ratio.
	AnnualizationPeriods float64
	// MaxRows caps the rows read per sheet. Zero means no cap.
	MaxRows int
	// Parallelism is the number of files analyzed at once.
	Parallelism int
	// InitialCapital is the starting balance of TradingView strategies.
	InitialCapital float64
	// ScoreWeights weights the trade quality score.
	ScoreWeights metrics.ScoreWeights
	// CacheDisabled turns off the summary cache.
	CacheDisabled bool
	// JournalPath is the SQLite journal path. Empty means the default path
	// in the data directory.
	JournalPath string
	// ServerAddress is the listen address of "perfctl serve".
	ServerAddress string
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		AnnualizationPeriods: metrics.DefaultAnnualizationPeriods,
		Parallelism:          DefaultParallelism,
		ScoreWeights:         metrics.DefaultScoreWeights(),
		ServerAddress:        DefaultServerAddress,
	}
}

// NewConfig validates an ExternalConfig and returns a runtime Config.
func NewConfig(externalConfig ExternalConfig) (*Config, error) {
	if externalConfig.Version != "v1" {
		return nil, fmt.Errorf("unsupported config version %q, must be v1", externalConfig.Version)
	}
	config := DefaultConfig()
	// Zero values keep the defaults, negative values are errors.
	analysis := externalConfig.Analysis
	if analysis.AnnualizationPeriods < 0 {
		return nil, errors.New("analysis.annualization_periods must not be negative")
	}
	if analysis.AnnualizationPeriods > 0 {
		config.AnnualizationPeriods = analysis.AnnualizationPeriods
	}
	if analysis.MaxRows < 0 {
		return nil, errors.New("analysis.max_rows must not be negative")
	}
	config.MaxRows = analysis.MaxRows
	if analysis.Parallelism < 0 {
		return nil, errors.New("analysis.parallelism must not be negative")
	}
	if analysis.Parallelism > 0 {
		config.Parallelism = analysis.Parallelism
	}
	if externalConfig.TradingView.InitialCapital < 0 {
		return nil, errors.New("tradingview.initial_capital must not be negative")
	}
	config.InitialCapital = externalConfig.TradingView.InitialCapital
	if score := externalConfig.Score; score != nil {
		scoreWeights := metrics.ScoreWeights{
			WinRate:      score.WinRate,
			ProfitFactor: score.ProfitFactor,
			Recovery:     score.Recovery,
			Sharpe:       score.Sharpe,
		}
		if err := scoreWeights.Validate(); err != nil {
			return nil, fmt.Errorf("score: %w", err)
		}
		config.ScoreWeights = scoreWeights
	}
	config.CacheDisabled = externalConfig.Cache.Disabled
	journalPath, err := xos.ExpandHome(externalConfig.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("journal.path: %w", err)
	}
	config.JournalPath = journalPath
	if externalConfig.Server.Address != "" {
		config.ServerAddress = externalConfig.Server.Address
	}
	return config, nil
}

// ReportOptions returns the pipeline options for this configuration.
func (c *Config) ReportOptions() perfctlreport.Options {
	return perfctlreport.Options{
		MaxRows:        c.MaxRows,
		InitialCapital: c.InitialCapital,
		Metrics: metrics.Options{
			AnnualizationPeriods: c.AnnualizationPeriods,
			ScoreWeights:         c.ScoreWeights,
		},
	}
}

// ReadConfig reads and validates the configuration file from the given config directory.
// Returns a clear error message directing users to run "perfctl config init" if the file is missing.
func ReadConfig(configDirPath string) (*Config, error) {
	filePath := perfctlpath.ConfigFilePath(configDirPath)
	config, err := ReadConfigFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("configuration file not found at %s, run \"perfctl config init\" to create one", filePath)
		}
		return nil, err
	}
	return config, nil
}

// ReadConfigOrDefault reads the configuration file from the given config
// directory, returning DefaultConfig if the file does not exist.
func ReadConfigOrDefault(configDirPath string) (*Config, error) {
	config, err := ReadConfigFile(perfctlpath.ConfigFilePath(configDirPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return config, nil
}

// ReadConfigFile reads and validates the configuration file at the given path.
func ReadConfigFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var externalConfig ExternalConfig
	if err := unmarshalYAMLStrict(data, &externalConfig); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
	}
	config, err := NewConfig(externalConfig)
	if err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filePath, err)
	}
	return config, nil
}

// InitConfig creates a new configuration file with a documented template.
// Creates the config directory if it does not exist.
// Returns the path to the created file, or an error if the file already exists.
func InitConfig(configDirPath string) (string, error) {
	filePath := perfctlpath.ConfigFilePath(configDirPath)
	if _, err := os.Stat(filePath); err == nil {
		return "", fmt.Errorf("configuration file already exists: %s", filePath)
	}
	// Create the config directory if it does not exist.
	if err := os.MkdirAll(configDirPath, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(configTemplate), 0o644); err != nil {
		return "", err
	}
	return filePath, nil
}

// ValidateConfigFile reads and validates the configuration file at the given path.
func ValidateConfigFile(filePath string) error {
	_, err := ReadConfigFile(filePath)
	return err
}

// unmarshalYAMLStrict unmarshals the data as YAML with strict field checking.
// If the data length is 0, this is a no-op.
func unmarshalYAMLStrict(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	yamlDecoder := yaml.NewDecoder(bytes.NewReader(data))
	// Reject unknown fields.
	yamlDecoder.KnownFields(true)
	if err := yamlDecoder.Decode(v); err != nil {
		return fmt.Errorf("could not unmarshal as YAML: %w", err)
	}
	return nil
}
