// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package perfctlpath derives file and directory paths from the perfctl
// config, data, and cache directories. All layout is defined here so
// callers don't duplicate path construction logic.
//
// The directories contain:
//
//	<config>/config.yaml                Config file
//	<data>/v1/journal.db                Default SQLite journal
//	<cache>/v1/summaries/<key>.json     Cached per-file summaries
package perfctlpath

import "path/filepath"

// ConfigFileName is the well-known config file name within the config directory.
const ConfigFileName = "config.yaml"

// JournalFileName is the default journal file name within the versioned data directory.
const JournalFileName = "journal.db"

// ConfigFilePath returns the path to the config file within the config directory.
func ConfigFilePath(configDirPath string) string {
	return filepath.Join(configDirPath, ConfigFileName)
}

// DataDirV1Path returns the versioned data directory.
func DataDirV1Path(dataDirPath string) string {
	return filepath.Join(dataDirPath, "v1")
}

// JournalFilePath returns the default journal database path.
func JournalFilePath(dataDirPath string) string {
	return filepath.Join(DataDirV1Path(dataDirPath), JournalFileName)
}

// CacheSummariesDirPath returns the directory for cached summaries.
func CacheSummariesDirPath(cacheDirPath string) string {
	return filepath.Join(cacheDirPath, "v1", "summaries")
}
