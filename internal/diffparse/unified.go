// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package diffparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LineOp classifies one line inside a unified-diff hunk.
type LineOp byte

const (
	OpContext LineOp = ' '
	OpRemove  LineOp = '-'
	OpAdd     LineOp = '+'
)

// HunkLine is one ordered operation within a hunk.
type HunkLine struct {
	Op   LineOp
	Text string
}

// Hunk is a contiguous block of a unified diff. StartLine/EndLine are
// 1-based inclusive and address the original document; EndLine >= StartLine
// always holds for a parsed hunk.
type Hunk struct {
	StartLine int
	EndLine   int
	Removed   []string
	Added     []string
	Context   []string
	Lines     []HunkLine // Ordered operations as they appeared in the diff
}

// FormatError describes a malformed unified diff.
type FormatError struct {
	Line    int // 1-based line in the diff text, 0 if not line-specific
	Message string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid unified diff at line %d: %s", e.Line, e.Message)
	}
	return "invalid unified diff: " + e.Message
}

// hunkHeaderRe matches "@@ -start[,count] +start[,count] @@" with an
// optional trailing section heading.
var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// ParseUnified parses diff into an ordered sequence of hunks. File headers
// ("---"/"+++"), index lines, and "\ No newline" annotations are skipped.
// A diff without a single valid hunk header is malformed.
func ParseUnified(diff string) ([]Hunk, error) {
	lines := strings.Split(strings.ReplaceAll(diff, "\r\n", "\n"), "\n")

	var hunks []Hunk
	var cur *Hunk
	flush := func() {
		if cur != nil {
			hunks = append(hunks, *cur)
			cur = nil
		}
	}

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "@@"):
			m := hunkHeaderRe.FindStringSubmatch(line)
			if m == nil {
				return nil, &FormatError{Line: i + 1, Message: "malformed hunk header " + strconv.Quote(line)}
			}
			flush()
			start, _ := strconv.Atoi(m[1])
			count := 1
			if m[2] != "" {
				count, _ = strconv.Atoi(m[2])
			}
			if start < 1 {
				start, count = 1, count-1 // "@@ -0,0" form for insertion into an empty region
			}
			end := start + count - 1
			if end < start {
				end = start
			}
			cur = &Hunk{StartLine: start, EndLine: end}

		case cur == nil:
			// Preamble: file headers, index lines, prose. Ignored.

		case strings.HasPrefix(line, "+"):
			cur.Added = append(cur.Added, line[1:])
			cur.Lines = append(cur.Lines, HunkLine{Op: OpAdd, Text: line[1:]})

		case strings.HasPrefix(line, "-"):
			cur.Removed = append(cur.Removed, line[1:])
			cur.Lines = append(cur.Lines, HunkLine{Op: OpRemove, Text: line[1:]})

		case strings.HasPrefix(line, " "):
			cur.Context = append(cur.Context, line[1:])
			cur.Lines = append(cur.Lines, HunkLine{Op: OpContext, Text: line[1:]})

		case strings.HasPrefix(line, `\`):
			// "\ No newline at end of file"

		case line == "" && i == len(lines)-1:
			// Trailing newline of the diff text.

		case line == "":
			// An empty context line loses its leading space in transit
			// often enough that we accept it as context.
			cur.Context = append(cur.Context, "")
			cur.Lines = append(cur.Lines, HunkLine{Op: OpContext, Text: ""})

		default:
			return nil, &FormatError{Line: i + 1, Message: "unexpected line prefix in hunk body " + strconv.Quote(line)}
		}
	}
	flush()

	if len(hunks) == 0 {
		return nil, &FormatError{Message: "no hunk header (@@ -start,count +start,count @@) found"}
	}
	return hunks, nil
}
