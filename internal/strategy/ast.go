// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package strategy

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/wwicak/roo-code/internal/cache"
	"github.com/wwicak/roo-code/internal/diffparse"
	"github.com/wwicak/roo-code/internal/textsim"
	"github.com/wwicak/roo-code/pkg/types"
)

// astLanguages is the closed set of structurally-parseable grammars.
// The jsx dialect is covered by the javascript grammar.
var astLanguages = map[string]*sitter.Language{
	"js":  javascript.GetLanguage(),
	"jsx": javascript.GetLanguage(),
	"ts":  typescript.GetLanguage(),
	"tsx": tsx.GetLanguage(),
	"go":  golang.GetLanguage(),
}

// parserAvailable reports whether the AST strategy can handle the language;
// the selector uses it to fail over to the next rule instead of crashing.
func parserAvailable(language string) bool {
	_, ok := astLanguages[language]
	return ok
}

// parsedTree caches a parsed root together with the source it was parsed
// from, keyed by a 128-bit content fingerprint.
type parsedTree struct {
	root *sitter.Node
	src  []byte
}

type changeOp int

const (
	opInsert changeOp = iota
	opUpdate
	opDelete
)

// nodeChange is a statement-level change derived from one diff hunk,
// addressed by statement index within the top-level body.
type nodeChange struct {
	op    changeOp
	index int
	text  string       // New fragment (insert/update)
	node  *sitter.Node // Parsed fragment root (insert/update)
	src   []byte       // Fragment source for signature computation
}

// stmtSpan is one top-level statement of the original tree.
type stmtSpan struct {
	node      *sitter.Node
	startRow  int
	endRow    int
	startByte int
	endByte   int
}

// ASTAware patches source files structurally: diff hunks are converted to
// statement-level insert/update/delete changes, validated as a batch, and
// applied to the syntax tree, regenerating source text by splicing
// statement spans so original line breaks survive.
type ASTAware struct {
	nodeThreshold float64
	trees         *lru.Cache[string, *parsedTree]
	log           zerolog.Logger
}

var _ types.Strategy = (*ASTAware)(nil)

func NewASTAware(cfg Config) *ASTAware {
	return &ASTAware{
		nodeThreshold: cfg.nodeThresholdOrDefault(),
		trees:         cache.NewLRU[string, *parsedTree](cfg.treeCacheSizeOrDefault()),
		log:           cfg.Logger.With().Str("strategy", "ast").Logger(),
	}
}

func (a *ASTAware) Name() string { return "ast" }

func (a *ASTAware) ApplyDiff(original, diff string, opts *types.ApplyOptions) types.DiffResult {
	m := startMeter(opts)

	language := languageOf(opts)
	lang, ok := astLanguages[language]
	if !ok {
		return types.Failed(types.FailUnsupportedLanguage,
			fmt.Sprintf("no structural parser available for language %q", language))
	}

	hunks, err := diffparse.ParseUnified(diff)
	if err != nil {
		return types.Failed(types.FailInvalidFormat, err.Error())
	}

	src := []byte(original)
	key := language + ":" + textsim.ContentKey(original)

	cacheHit := true
	tree, ok := a.trees.Get(key)
	if !ok {
		cacheHit = false
		root, perr := sitter.ParseCtx(context.Background(), src, lang)
		if perr != nil {
			return types.Failed(types.FailValidationFailed,
				fmt.Sprintf("parsing original content as %s: %v", language, perr))
		}
		tree = &parsedTree{root: root, src: src}
		a.trees.Add(key, tree)
	}

	if tree.root.HasError() {
		return types.Failed(types.FailValidationFailed,
			fmt.Sprintf("original content does not parse cleanly as %s", language))
	}

	eol := detectEOL(original)
	lines := splitLines(original)
	stmts := topLevelStatements(tree.root, src)

	changes, conflicts := buildChanges(lines, stmts, hunks, lang, eol)
	if len(conflicts) > 0 {
		res := types.Failed(types.FailValidationFailed,
			fmt.Sprintf("%d change(s) failed validation; nothing was applied", len(conflicts)))
		res.Conflicts = conflicts
		res.Details = conflictDetails(conflicts)
		return res
	}

	content, matched, applied, warnings := a.applyChanges(src, stmts, changes, eol)
	if matched == 0 {
		res := types.Failed(types.FailNoMatch, "no change could be matched against the syntax tree")
		res.Conflicts = warnings
		res.Details = conflictDetails(warnings)
		return res
	}

	accuracy := float64(matched) / float64(len(changes))
	complexity := complexityScore(tree.root)
	a.log.Debug().
		Str("language", language).
		Int("changes", len(changes)).
		Int("matched", matched).
		Int("complexity", complexity).
		Bool("tree_cache_hit", cacheHit).
		Msg("applied structural changes")

	res := types.Succeeded(content, applied)
	res.Conflicts = warnings
	res = m.finish(res, accuracy, cacheHit)
	if res.Metrics != nil {
		res.Metrics.Complexity = complexity
	}
	return res
}

// languageOf derives the language from the file metadata: an explicit
// Language field wins, otherwise the path extension.
func languageOf(opts *types.ApplyOptions) string {
	if opts == nil || opts.FileStats == nil {
		return ""
	}
	if opts.FileStats.Language != "" {
		return strings.ToLower(opts.FileStats.Language)
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(opts.FileStats.Path), "."))
}

// topLevelStatements lists the named children of the root as spans.
func topLevelStatements(root *sitter.Node, src []byte) []stmtSpan {
	count := int(root.NamedChildCount())
	stmts := make([]stmtSpan, 0, count)
	for i := 0; i < count; i++ {
		n := root.NamedChild(i)
		stmts = append(stmts, stmtSpan{
			node:      n,
			startRow:  int(n.StartPoint().Row),
			endRow:    int(n.EndPoint().Row),
			startByte: int(n.StartByte()),
			endByte:   int(n.EndByte()),
		})
	}
	return stmts
}

// buildChanges converts hunks into node-level changes and validates every
// one before anything is applied: fragments must parse, addressed paths
// must resolve, and an update hunk must stay inside one statement. Change
// text is assembled with the document's EOL so splicing it between raw
// source spans never mixes line-ending styles.
func buildChanges(lines []string, stmts []stmtSpan, hunks []diffparse.Hunk, lang *sitter.Language, eol string) ([]nodeChange, []types.Conflict) {
	var changes []nodeChange
	var conflicts []types.Conflict

	fail := func(path, msg string) {
		conflicts = append(conflicts, types.Conflict{Path: path, Message: msg, Severity: "error"})
	}

	for hi, h := range hunks {
		row := h.StartLine - 1
		anchor := fmt.Sprintf("hunk %d", hi+1)

		switch {
		case len(h.Removed) == 0 && len(h.Added) > 0:
			idx := insertIndex(stmts, row)
			text := strings.Join(h.Added, eol)
			node, src, perr := parseFragment(text, lang)
			if perr != "" {
				fail(fmt.Sprintf("body[%d]", idx), anchor+": "+perr)
				continue
			}
			changes = append(changes, nodeChange{op: opInsert, index: idx, text: text, node: node, src: src})

		case len(h.Added) == 0 && len(h.Removed) > 0:
			idx, ok := statementAt(stmts, row)
			if !ok {
				fail(anchor, fmt.Sprintf("deletion at line %d does not address a top-level statement", h.StartLine))
				continue
			}
			changes = append(changes, nodeChange{op: opDelete, index: idx})

		default:
			idx, ok := statementAt(stmts, row)
			if !ok {
				fail(anchor, fmt.Sprintf("update at line %d does not address a top-level statement", h.StartLine))
				continue
			}
			if hunkEnd(h) > stmts[idx].endRow {
				fail(fmt.Sprintf("body[%d]", idx),
					anchor+": hunk spans multiple top-level statements")
				continue
			}
			text := patchStatement(lines, stmts[idx], h, eol)
			node, src, perr := parseFragment(text, lang)
			if perr != "" {
				fail(fmt.Sprintf("body[%d]", idx), anchor+": "+perr)
				continue
			}
			changes = append(changes, nodeChange{op: opUpdate, index: idx, text: text, node: node, src: src})
		}
	}
	return changes, conflicts
}

// insertIndex returns the statement index the new code is inserted before.
func insertIndex(stmts []stmtSpan, row int) int {
	for i, s := range stmts {
		if s.startRow >= row {
			return i
		}
	}
	return len(stmts)
}

// statementAt finds the top-level statement containing the 0-based row.
func statementAt(stmts []stmtSpan, row int) (int, bool) {
	for i, s := range stmts {
		if row >= s.startRow && row <= s.endRow {
			return i, true
		}
	}
	return 0, false
}

// patchStatement applies one hunk textually and extracts the statement's
// new text, the candidate for the structural update.
func patchStatement(lines []string, stmt stmtSpan, h diffparse.Hunk, eol string) string {
	patched, _ := applyHunks(lines, []diffparse.Hunk{h})
	delta := len(h.Added) - len(h.Removed)
	end := stmt.endRow + 1 + delta
	if end > len(patched) {
		end = len(patched)
	}
	if stmt.startRow >= end {
		return ""
	}
	return strings.Join(patched[stmt.startRow:end], eol)
}

// parseFragment parses a candidate code fragment, returning its first named
// node. A fragment that is empty, fails to parse, or contains syntax errors
// is rejected with a message.
func parseFragment(text string, lang *sitter.Language) (*sitter.Node, []byte, string) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, "fragment is empty"
	}
	src := []byte(text)
	root, err := sitter.ParseCtx(context.Background(), src, lang)
	if err != nil {
		return nil, nil, fmt.Sprintf("fragment does not parse: %v", err)
	}
	if root.HasError() {
		return nil, nil, "fragment contains syntax errors"
	}
	if root.NamedChildCount() == 0 {
		return nil, nil, "fragment contains no statements"
	}
	return root.NamedChild(0), src, ""
}

// applyChanges splices the validated changes into the statement segments.
// Changes are walked from the bottom of the file upward so earlier indexes
// stay stable. Updates below the node threshold are skipped with a warning
// conflict rather than failing the batch.
func (a *ASTAware) applyChanges(src []byte, stmts []stmtSpan, changes []nodeChange, eol string) (string, int, int, []types.Conflict) {
	segs, trailing := buildSegments(src, stmts)
	arena := newSignatureArena(src)

	ordered := make([]nodeChange, len(changes))
	copy(ordered, changes)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].index > ordered[j].index })

	matched, applied := 0, 0
	var warnings []types.Conflict

	for _, c := range ordered {
		switch c.op {
		case opUpdate:
			score := a.updateScore(arena, stmts[c.index].node, c)
			if score < a.nodeThreshold {
				warnings = append(warnings, types.Conflict{
					Path:     fmt.Sprintf("body[%d]", c.index),
					Message:  fmt.Sprintf("candidate similarity %.2f below threshold %.2f", score, a.nodeThreshold),
					Severity: "warning",
				})
				continue
			}
			segs[c.index].text = c.text
			matched++
			applied += strings.Count(c.text, "\n") + 1

		case opInsert:
			seg := segment{gap: eol, text: c.text}
			if c.index < len(segs) {
				seg.gap = segs[c.index].gap
				segs[c.index].gap = eol
			}
			segs = append(segs[:c.index], append([]segment{seg}, segs[c.index:]...)...)
			matched++
			applied += strings.Count(c.text, "\n") + 1

		case opDelete:
			segs = append(segs[:c.index], segs[c.index+1:]...)
			matched++
		}
	}

	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.gap)
		b.WriteString(s.text)
	}
	b.WriteString(trailing)
	return b.String(), matched, applied, warnings
}

// updateScore combines a structural type match (half the score) with the
// signature similarity of the existing and candidate nodes (the other half).
func (a *ASTAware) updateScore(arena *signatureArena, old *sitter.Node, c nodeChange) float64 {
	typeScore := 0.0
	if old.Type() == c.node.Type() {
		typeScore = 1.0
	}
	oldSig := arena.signature(old)
	newSig := newSignatureArena(c.src).signature(c.node)
	return 0.5*typeScore + 0.5*signatureSimilarity(oldSig, newSig)
}

// segment is one top-level statement plus the source gap that precedes it.
type segment struct {
	gap  string
	text string
}

func buildSegments(src []byte, stmts []stmtSpan) ([]segment, string) {
	segs := make([]segment, len(stmts))
	prevEnd := 0
	for i, s := range stmts {
		segs[i] = segment{
			gap:  string(src[prevEnd:s.startByte]),
			text: string(src[s.startByte:s.endByte]),
		}
		prevEnd = s.endByte
	}
	return segs, string(src[prevEnd:])
}

// ToolDescription documents the dialect: unified-diff hunks interpreted as
// statement-level structural changes.
func (a *ASTAware) ToolDescription(cwd string) string {
	return fmt.Sprintf(`## apply_diff (structural)

Apply a unified diff to a source file (relative to %s) for a supported
language (js, jsx, ts, tsx, go). Hunks are matched against top-level
statements of the syntax tree rather than raw lines, so small drifts in
line numbers are tolerated, but every changed fragment must itself be
syntactically valid.

Example:

@@ -1,3 +1,3 @@
 function greet(name) {
-  return "hi " + name;
+  return "hello " + name;
 }`, cwd)
}
