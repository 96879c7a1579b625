// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package strategy

import (
	"errors"
	"fmt"
	"runtime"
	"sort"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/wwicak/roo-code/internal/diffparse"
	"github.com/wwicak/roo-code/pkg/types"
)

// Parallel patches very large documents by partitioning the lines into
// roughly equal chunks (by byte weight) and applying each chunk's hunks
// independently. A chunk boundary is never allowed to split a hunk: any
// boundary that would land inside a hunk is pushed past it, so each hunk
// belongs to exactly one chunk. Chunks are re-concatenated in original
// order, which makes the merge deterministic.
type Parallel struct {
	workers int
	log     zerolog.Logger
}

var _ types.Strategy = (*Parallel)(nil)

func NewParallel(cfg Config) *Parallel {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Parallel{
		workers: workers,
		log:     cfg.Logger.With().Str("strategy", "parallel").Logger(),
	}
}

func (p *Parallel) Name() string { return "parallel" }

// chunkError carries one chunk's context conflicts across the pool boundary.
type chunkError struct {
	chunk     int
	conflicts []types.Conflict
}

func (e *chunkError) Error() string {
	return fmt.Sprintf("chunk %d: %d context conflict(s)", e.chunk+1, len(e.conflicts))
}

func (p *Parallel) ApplyDiff(original, diff string, opts *types.ApplyOptions) types.DiffResult {
	m := startMeter(opts)

	hunks, err := diffparse.ParseUnified(diff)
	if err != nil {
		return types.Failed(types.FailInvalidFormat, err.Error())
	}

	eol := detectEOL(original)
	lines := splitLines(original)

	bounds := chunkBounds(lines, p.workers, hunks)
	buckets := bucketHunks(hunks, bounds)
	nchunks := len(bounds) - 1

	results := make([][]string, nchunks)
	applied := make([]int, nchunks)

	wp := pool.New().WithErrors().WithMaxGoroutines(p.workers)
	for i := 0; i < nchunks; i++ {
		i := i
		wp.Go(func() error {
			chunk := lines[bounds[i]:bounds[i+1]]
			rebased := rebaseHunks(buckets[i], bounds[i])
			if len(rebased) == 0 {
				results[i] = chunk
				return nil
			}
			if conflicts := validateHunks(chunk, rebased, false); len(conflicts) > 0 {
				return &chunkError{chunk: i, conflicts: conflicts}
			}
			results[i], applied[i] = applyHunks(chunk, rebased)
			return nil
		})
	}

	if err := wp.Wait(); err != nil {
		var ce *chunkError
		res := types.Failed(types.FailContextMismatch,
			"one or more chunks rejected their hunks; nothing was applied")
		if errors.As(err, &ce) {
			res.Conflicts = ce.conflicts
			res.Details = conflictDetails(ce.conflicts)
		} else {
			res.Details = err.Error()
		}
		return res
	}

	var out []string
	var total int
	for i := 0; i < nchunks; i++ {
		out = append(out, results[i]...)
		total += applied[i]
	}

	p.log.Debug().Int("chunks", nchunks).Int("hunks", len(hunks)).Msg("applied diff across chunks")
	return m.finish(types.Succeeded(joinLines(out, eol), total), 1.0, false)
}

// chunkBounds computes chunk boundaries as line indexes. Targets are evenly
// spaced byte offsets; each boundary is then pushed past any hunk it would
// split. The returned slice always starts at 0 and ends at len(lines).
func chunkBounds(lines []string, workers int, hunks []diffparse.Hunk) []int {
	if workers < 1 {
		workers = 1
	}

	total := 0
	for _, l := range lines {
		total += len(l) + 1
	}

	bounds := []int{0}
	acc := 0
	next := 1
	for i, l := range lines {
		acc += len(l) + 1
		if next < workers && acc >= total*next/workers {
			bounds = append(bounds, i+1)
			next++
		}
	}
	bounds = append(bounds, len(lines))

	// Shift boundaries that would land inside a hunk.
	for bi := 1; bi < len(bounds)-1; bi++ {
		for _, h := range hunks {
			start := h.StartLine - 1
			end := hunkEnd(h)
			if start < bounds[bi] && bounds[bi] <= end {
				bounds[bi] = end + 1
			}
		}
		if bounds[bi] > len(lines) {
			bounds[bi] = len(lines)
		}
	}
	sort.Ints(bounds)
	return bounds
}

// hunkEnd returns the 0-based index of the last original line the hunk
// touches (context and removed lines consume original lines).
func hunkEnd(h diffparse.Hunk) int {
	consumed := 0
	for _, l := range h.Lines {
		if l.Op != diffparse.OpAdd {
			consumed++
		}
	}
	if consumed == 0 {
		consumed = 1
	}
	return h.StartLine - 1 + consumed - 1
}

// bucketHunks assigns each hunk to the chunk containing its start line.
func bucketHunks(hunks []diffparse.Hunk, bounds []int) [][]diffparse.Hunk {
	buckets := make([][]diffparse.Hunk, len(bounds)-1)
	for _, h := range hunks {
		start := h.StartLine - 1
		for i := 0; i < len(bounds)-1; i++ {
			if start >= bounds[i] && (start < bounds[i+1] || i == len(bounds)-2) {
				buckets[i] = append(buckets[i], h)
				break
			}
		}
	}
	return buckets
}

// rebaseHunks shifts hunk line anchors so they address the chunk instead of
// the whole document.
func rebaseHunks(hunks []diffparse.Hunk, chunkStart int) []diffparse.Hunk {
	out := make([]diffparse.Hunk, len(hunks))
	for i, h := range hunks {
		h.StartLine -= chunkStart
		h.EndLine -= chunkStart
		out[i] = h
	}
	return out
}

// ToolDescription documents the dialect; the wire format is the same
// unified diff the optimized strategy accepts.
func (p *Parallel) ToolDescription(cwd string) string {
	return fmt.Sprintf(`## apply_diff (unified, large files)

Apply a unified diff to a large file (relative to %s). The format is
identical to the standard unified diff dialect: hunk headers of the form
"@@ -start,count +start,count @@" followed by "-", "+", and space-prefixed
lines. Keep hunks small and local; context lines must match the file.

Example:

@@ -120,3 +120,4 @@
 	if err != nil {
+		log.Print(err)
 		return err
 	}`, cwd)
}
