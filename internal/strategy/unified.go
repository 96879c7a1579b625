// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package strategy

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/wwicak/roo-code/internal/diffparse"
	"github.com/wwicak/roo-code/internal/gapbuffer"
	"github.com/wwicak/roo-code/pkg/types"
)

const (
	// Hunk context verification fans out to a worker pool only when the
	// input is big enough for the coordination to pay off.
	parallelValidateMinHunks = 4
	parallelValidateMinLines = 4096
)

// Unified applies multi-hunk unified diffs over a gap-buffer document.
// Hunks are applied in their original order, never partially: every hunk's
// context is verified against the document before anything mutates.
type Unified struct {
	log zerolog.Logger
}

var _ types.Strategy = (*Unified)(nil)

func NewUnified(cfg Config) *Unified {
	return &Unified{log: cfg.Logger.With().Str("strategy", "unified").Logger()}
}

func (u *Unified) Name() string { return "unified" }

func (u *Unified) ApplyDiff(original, diff string, opts *types.ApplyOptions) types.DiffResult {
	m := startMeter(opts)

	hunks, err := diffparse.ParseUnified(diff)
	if err != nil {
		return types.Failed(types.FailInvalidFormat, err.Error())
	}

	eol := detectEOL(original)
	lines := splitLines(original)

	conflicts := validateHunks(lines, hunks, len(hunks) >= parallelValidateMinHunks && len(lines) >= parallelValidateMinLines)
	if len(conflicts) > 0 {
		res := types.Failed(types.FailContextMismatch, fmt.Sprintf(
			"%d hunk(s) do not match the original content; nothing was applied", countHunks(conflicts)))
		res.Conflicts = conflicts
		res.Details = conflictDetails(conflicts)
		return res
	}

	out, applied := applyHunks(lines, hunks)
	u.log.Debug().Int("hunks", len(hunks)).Int("applied_lines", applied).Msg("applied unified diff")
	return m.finish(types.Succeeded(joinLines(out, eol), applied), 1.0, false)
}

// validateHunks verifies every hunk's context and removed lines against the
// document (whitespace-trimmed). It returns all mismatches so the caller
// can report the full batch.
func validateHunks(lines []string, hunks []diffparse.Hunk, parallel bool) []types.Conflict {
	perHunk := make([][]types.Conflict, len(hunks))

	check := func(i int) {
		perHunk[i] = validateHunk(lines, hunks[i], i)
	}

	if parallel {
		p := pool.New().WithMaxGoroutines(runtime.GOMAXPROCS(0))
		for i := range hunks {
			i := i
			p.Go(func() { check(i) })
		}
		p.Wait()
	} else {
		for i := range hunks {
			check(i)
		}
	}

	var all []types.Conflict
	for _, c := range perHunk {
		all = append(all, c...)
	}
	return all
}

// validateHunk walks one hunk's operations against the document.
func validateHunk(lines []string, h diffparse.Hunk, idx int) []types.Conflict {
	var conflicts []types.Conflict
	pos := h.StartLine - 1
	if pos < 0 || pos > len(lines) {
		return []types.Conflict{{
			Path:     fmt.Sprintf("hunk %d", idx+1),
			Message:  fmt.Sprintf("start line %d is out of bounds for a %d-line file", h.StartLine, len(lines)),
			Severity: "error",
		}}
	}

	for _, l := range h.Lines {
		if l.Op == diffparse.OpAdd {
			continue
		}
		if pos >= len(lines) {
			conflicts = append(conflicts, types.Conflict{
				Path:     fmt.Sprintf("hunk %d, line %d", idx+1, pos+1),
				Message:  "hunk extends past the end of the file",
				Severity: "error",
			})
			break
		}
		if strings.TrimSpace(lines[pos]) != strings.TrimSpace(l.Text) {
			conflicts = append(conflicts, types.Conflict{
				Path: fmt.Sprintf("hunk %d, line %d", idx+1, pos+1),
				Message: fmt.Sprintf("expected %q, found %q",
					strings.TrimSpace(l.Text), strings.TrimSpace(lines[pos])),
				Severity: "error",
			})
		}
		pos++
	}
	return conflicts
}

// applyHunks splices every hunk into a gap buffer, in original hunk order,
// tracking the running line offset introduced by earlier hunks. Returns the
// resulting lines and the count of lines added by the diff.
func applyHunks(lines []string, hunks []diffparse.Hunk) ([]string, int) {
	buf := gapbuffer.New(lines)
	offset := 0
	applied := 0

	for _, h := range hunks {
		pos := h.StartLine - 1 + offset
		for _, l := range h.Lines {
			switch l.Op {
			case diffparse.OpContext:
				pos++
			case diffparse.OpRemove:
				buf.Delete(pos)
				offset--
			case diffparse.OpAdd:
				buf.Insert(pos, l.Text)
				pos++
				offset++
				applied++
			}
		}
	}
	return buf.Lines(), applied
}

func countHunks(conflicts []types.Conflict) int {
	seen := make(map[string]struct{})
	for _, c := range conflicts {
		key := strings.SplitN(c.Path, ",", 2)[0]
		seen[key] = struct{}{}
	}
	return len(seen)
}

func conflictDetails(conflicts []types.Conflict) string {
	var b strings.Builder
	for i, c := range conflicts {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", c.Path, c.Message)
	}
	return b.String()
}

// ToolDescription documents the unified-diff dialect for prompt assembly.
func (u *Unified) ToolDescription(cwd string) string {
	return fmt.Sprintf(`## apply_diff (unified)

Apply a unified diff to an existing file (relative to %s). Each hunk starts
with a header of the form "@@ -start,count +start,count @@" followed by
lines prefixed with "-" (remove), "+" (add), or a single space (context).
Context lines must match the current file content; a mismatched hunk rejects
the whole diff without modifying the file.

Example:

@@ -1,3 +1,3 @@
 func sum(a, b int) int {
-	return a + b
+	return a + b + 1
 }`, cwd)
}
