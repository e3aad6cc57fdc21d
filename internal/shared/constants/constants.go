package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// DefaultObfuscationLimit is the percentage at which any single
	// obfuscation ratio flags a script host.
	DefaultObfuscationLimit = 25.0
	// DefaultBrowseTimeout bounds the browsing phase; on expiry the
	// session proceeds to analysis with whatever was observed.
	DefaultBrowseTimeout = 60 * time.Second
	// MaxScriptBytes caps how much of a script body the analyzers read.
	MaxScriptBytes = 2 * 1024 * 1024
)

const (
	// BaselineFilename is the default baseline file name inside the
	// results directory.
	BaselineFilename = "baseline.json"
	// ReportFilename is the per-session drift report artifact.
	ReportFilename = "report.json"
	// RecommendationFilename is the seed-baseline artifact written when
	// no baseline exists yet.
	RecommendationFilename = "baseline.recommended.json"
)
