// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package perfctlcache caches per-file analysis summaries on disk.
//
// Entries are keyed by the SHA-256 of the file content together with the
// analysis options, so a changed file or changed options never hits a stale
// entry. Entries are stored as google.protobuf.Struct JSON files.
package perfctlcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bufdev/perfctl/internal/perfctl/perfctlreport"
	"github.com/bufdev/perfctl/internal/pkg/ledger"
	"github.com/bufdev/perfctl/internal/pkg/metrics"
	"github.com/bufdev/perfctl/internal/pkg/protoio"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Entry is a cached analysis summary.
type Entry struct {
	FileName      string             `json:"file_name"`
	Source        string             `json:"source"`
	Format        string             `json:"format"`
	LowConfidence bool               `json:"low_confidence"`
	TradeCount    int                `json:"trade_count"`
	Summary       metrics.Summary    `json:"summary"`
	Diagnostics   ledger.Diagnostics `json:"diagnostics"`
}

// NewEntry returns the cache entry for a report.
func NewEntry(report *perfctlreport.Report) *Entry {
	return &Entry{
		FileName:      report.FileName(),
		Source:        string(report.Source()),
		Format:        report.Format().String(),
		LowConfidence: report.LowConfidence(),
		TradeCount:    len(report.Trades()),
		Summary:       report.Summary(),
		Diagnostics:   report.Diagnostics(),
	}
}

// Cache is an on-disk summary cache.
type Cache struct {
	logger  *slog.Logger
	dirPath string
}

// New returns a Cache storing entries in dirPath.
func New(logger *slog.Logger, dirPath string) *Cache {
	return &Cache{
		logger:  logger,
		dirPath: dirPath,
	}
}

// Key returns the cache key for the file content analyzed with options.
//
// The base name of filePath is part of the key, since it decides the MT4/MT5
// source and is stored in the entry.
func Key(filePath string, data []byte, options perfctlreport.Options) string {
	hash := sha256.New()
	_, _ = hash.Write([]byte(filepath.Base(filePath)))
	_, _ = hash.Write([]byte{0})
	_, _ = hash.Write(data)
	// Options that change the output are part of the key.
	_, _ = fmt.Fprintf(
		hash,
		"\x00%d|%v|%v|%v|%v|%v|%v",
		options.MaxRows,
		options.InitialCapital,
		options.Metrics.AnnualizationPeriods,
		options.Metrics.ScoreWeights.WinRate,
		options.Metrics.ScoreWeights.ProfitFactor,
		options.Metrics.ScoreWeights.Recovery,
		options.Metrics.ScoreWeights.Sharpe,
	)
	return hex.EncodeToString(hash.Sum(nil))
}

// Get returns the entry for key, or false if there is none.
//
// A corrupt entry is logged and treated as a miss.
func (c *Cache) Get(key string) (*Entry, bool, error) {
	message := &structpb.Struct{}
	if err := protoio.ReadMessageJSON(c.filePath(key), message); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		c.logger.Warn("ignoring unreadable cache entry", "key", key, "error", err)
		return nil, false, nil
	}
	data, err := protojson.Marshal(message)
	if err != nil {
		return nil, false, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("ignoring malformed cache entry", "key", key, "error", err)
		return nil, false, nil
	}
	return &entry, true, nil
}

// Put stores the entry for key.
func (c *Cache) Put(key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	message := &structpb.Struct{}
	if err := protojson.Unmarshal(data, message); err != nil {
		return fmt.Errorf("converting cache entry: %w", err)
	}
	if err := os.MkdirAll(c.dirPath, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	return protoio.WriteMessageJSON(c.filePath(key), message)
}

func (c *Cache) filePath(key string) string {
	return filepath.Join(c.dirPath, key+".json")
}
