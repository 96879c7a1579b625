// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines the public data model shared by every patch
// strategy: apply results, file metadata, options, and the Strategy
// interface itself.
package types

import "time"

// FailKind classifies why a diff could not be applied.
type FailKind string

const (
	FailInvalidFormat       FailKind = "invalid_format"       // Missing/malformed markers or hunk header
	FailNoMatch             FailKind = "no_match"             // Similarity below threshold
	FailInvalidRange        FailKind = "invalid_range"        // Line range out of bounds or inverted
	FailUnsupportedLanguage FailKind = "unsupported_language" // No parser for the file type
	FailValidationFailed    FailKind = "validation_failed"    // Change targets a bad path or unparseable code
	FailContextMismatch     FailKind = "context_mismatch"     // Unified-diff context lines don't match
	FailDecodeError         FailKind = "decode_error"         // Malformed binary payload
)

// Conflict describes a single rejected change within a batch, addressed by
// the path the change was aimed at.
type Conflict struct {
	Path     string // Structural path or line anchor (e.g. "body[3]", "line 42")
	Message  string // What went wrong
	Severity string // "error" or "warning"
}

// Metrics carries execution measurements, populated on success when
// ApplyOptions.CollectMetrics is set.
type Metrics struct {
	Duration       time.Duration // Wall-clock time of the apply call
	BytesAllocated uint64        // Heap allocation delta during the call
	Accuracy       float64       // Best similarity score achieved (0-1)
	CacheHit       bool          // True when a cached result or tree was reused
	Complexity     int           // Weighted structural complexity of the parsed tree (AST strategy only)
}

// DiffResult is the outcome of ApplyDiff. Exactly one of the success or
// failure sides is populated: a success never carries an error and a
// failure never carries content.
type DiffResult struct {
	Success      bool
	Content      string   // New file content (success only)
	AppliedLines int      // Lines contributed by the diff (success only)
	Metrics      *Metrics // Present when metrics collection was requested

	Kind      FailKind   // Failure classification
	Error     string     // Human-readable failure message
	Details   string     // Machine-usable diagnostic (scores, windows, paths)
	Conflicts []Conflict // Per-change diagnostics for batch failures
}

// Succeeded builds a success result.
func Succeeded(content string, appliedLines int) DiffResult {
	return DiffResult{Success: true, Content: content, AppliedLines: appliedLines}
}

// Failed builds a failure result of the given kind.
func Failed(kind FailKind, message string) DiffResult {
	return DiffResult{Kind: kind, Error: message}
}

// FileStats describes the file a diff targets. It is an immutable input;
// no strategy mutates it.
type FileStats struct {
	Size         int64     // File size in bytes
	Path         string    // File path (extension drives strategy selection)
	Language     string    // Optional language override (e.g. "ts")
	LastModified time.Time // Modification time when known
}

// ApplyOptions configures a single ApplyDiff call. All fields are optional.
type ApplyOptions struct {
	StartLine      int        // 1-based inclusive hint for the target region
	EndLine        int        // 1-based inclusive hint for the target region
	FileStats      *FileStats // Metadata about the target file
	CollectMetrics bool       // Populate Metrics on success
}

// Strategy is the two-operation contract every patch strategy implements.
type Strategy interface {
	// Name identifies the strategy for logging and CLI overrides.
	Name() string

	// ToolDescription returns a static description of the diff dialect,
	// its parameters, and a worked example. It is consumed by prompt
	// construction, never by control flow.
	ToolDescription(cwd string) string

	// ApplyDiff applies diff to original and returns the new content or a
	// structured failure. It never panics across this boundary.
	ApplyDiff(original, diff string, opts *ApplyOptions) DiffResult
}
