// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package diffparse parses the diff dialects accepted by the patch
// strategies: SEARCH/REPLACE blocks, unified-diff hunks, and base64-tagged
// binary payloads.
package diffparse

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MarkerSearch  = "<<<<<<< SEARCH"
	MarkerDivider = "======="
	MarkerReplace = ">>>>>>> REPLACE"
)

// Block is a single SEARCH/REPLACE block. Either side may be empty; an
// empty search side is valid only for pure insertions.
type Block struct {
	Search  []string
	Replace []string
}

// BlockError describes a malformed SEARCH/REPLACE block, naming every
// marker that is missing.
type BlockError struct {
	Missing []string
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("malformed search/replace block: missing marker(s) %s",
		strings.Join(e.Missing, ", "))
}

// ParseBlock extracts exactly one SEARCH/REPLACE block from diff. The three
// markers must each appear on their own line, in order. Content before the
// first marker and after the last is ignored (LLM responses often wrap the
// block in prose or markdown fences).
func ParseBlock(diff string) (*Block, error) {
	lines := strings.Split(strings.ReplaceAll(diff, "\r\n", "\n"), "\n")

	searchIdx, dividerIdx, replaceIdx := -1, -1, -1
	for i, line := range lines {
		switch {
		case searchIdx < 0 && isMarker(line, MarkerSearch):
			searchIdx = i
		case searchIdx >= 0 && dividerIdx < 0 && isMarker(line, MarkerDivider):
			dividerIdx = i
		case dividerIdx >= 0 && replaceIdx < 0 && isMarker(line, MarkerReplace):
			replaceIdx = i
		}
	}

	var missing []string
	if searchIdx < 0 {
		missing = append(missing, MarkerSearch)
	}
	if dividerIdx < 0 {
		missing = append(missing, MarkerDivider)
	}
	if replaceIdx < 0 {
		missing = append(missing, MarkerReplace)
	}
	if len(missing) > 0 {
		return nil, &BlockError{Missing: missing}
	}

	return &Block{
		Search:  sectionLines(lines, searchIdx+1, dividerIdx),
		Replace: sectionLines(lines, dividerIdx+1, replaceIdx),
	}, nil
}

// sectionLines returns lines[from:to]. A side with no content, whether the
// markers are adjacent or separated by a single empty line, is nil.
func sectionLines(lines []string, from, to int) []string {
	section := lines[from:to]
	if len(section) == 0 || (len(section) == 1 && section[0] == "") {
		return nil
	}
	out := make([]string, len(section))
	copy(out, section)
	return out
}

func isMarker(line, marker string) bool {
	return strings.TrimSpace(line) == marker
}

// lineNumberRe matches a leading line-number prefix such as "42 | " as
// produced by diffs generated against a line-numbered rendering of a file.
var lineNumberRe = regexp.MustCompile(`^\s*\d+\s+\|\s?`)

// EveryLineNumbered reports whether every non-blank line in all the given
// sections carries a line-number prefix.
func EveryLineNumbered(sections ...[]string) bool {
	sawAny := false
	for _, lines := range sections {
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if !lineNumberRe.MatchString(line) {
				return false
			}
			sawAny = true
		}
	}
	return sawAny
}

// StripLineNumbers removes the line-number prefix from every line.
func StripLineNumbers(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = lineNumberRe.ReplaceAllString(line, "")
	}
	return out
}
