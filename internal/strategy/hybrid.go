// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package strategy

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/wwicak/roo-code/internal/cache"
	"github.com/wwicak/roo-code/internal/diffparse"
	"github.com/wwicak/roo-code/internal/textsim"
	"github.com/wwicak/roo-code/pkg/types"
)

// hybridChunkSize is the fixed content-chunk size for coarse-grained change
// localization hashes.
const hybridChunkSize = 2048

// hybridHash fingerprints one version of a document three ways. Two
// contents are identical for caching purposes only when all three parts
// match.
type hybridHash struct {
	structural uint64
	semantic   uint64
	chunks     uint64 // Folded fixed-size chunk hashes
}

func (h hybridHash) contentKey() string {
	return fmt.Sprintf("%016x%016x%016x", h.structural, h.semantic, h.chunks)
}

// cachedApply is a previously computed replacement, valid for one
// (content version, diff) pair.
type cachedApply struct {
	diffHash     uint64
	content      string
	appliedLines int
}

// SmartHybrid performs literal search/replace over text and config files,
// optimized for repeated edits to the same content: results are memoized in
// a capacity+TTL hot cache and a content-identity secondary cache.
type SmartHybrid struct {
	hot       *expirable.LRU[string, cachedApply]
	byContent *lru.Cache[string, cachedApply]
	log       zerolog.Logger
}

var _ types.Strategy = (*SmartHybrid)(nil)

func NewSmartHybrid(cfg Config) *SmartHybrid {
	return &SmartHybrid{
		hot:       cache.NewExpiring[string, cachedApply](cfg.hotCacheSizeOrDefault(), cfg.hotCacheTTLOrDefault()),
		byContent: cache.NewLRU[string, cachedApply](cfg.contentCacheSizeOrDefault()),
		log:       cfg.Logger.With().Str("strategy", "smart_hybrid").Logger(),
	}
}

func (s *SmartHybrid) Name() string { return "smart_hybrid" }

func (s *SmartHybrid) ApplyDiff(original, diff string, opts *types.ApplyOptions) types.DiffResult {
	m := startMeter(opts)

	original, decoded, err := decodeInput(original)
	if err != nil {
		return types.Failed(types.FailDecodeError, err.Error())
	}
	diff, _, err = decodeInput(diff)
	if err != nil {
		return types.Failed(types.FailDecodeError, err.Error())
	}

	block, perr := diffparse.ParseBlock(diff)
	if perr != nil {
		return types.Failed(types.FailInvalidFormat, perr.Error())
	}
	if len(block.Search) == 0 {
		return types.Failed(types.FailInvalidFormat, "search content must not be empty")
	}

	hash := computeHybridHash(original)
	diffHash := textsim.Hash64(diff)
	hotKey := fmt.Sprintf("%s:%016x", hash.contentKey(), diffHash)
	contentKey := hash.contentKey()

	if hit, ok := s.hot.Get(hotKey); ok && hit.diffHash == diffHash {
		s.log.Debug().Str("tier", "hot").Msg("cache hit")
		return m.finish(types.Succeeded(hit.content, hit.appliedLines), 1.0, true)
	}
	if hit, ok := s.byContent.Get(contentKey); ok && hit.diffHash == diffHash {
		s.log.Debug().Str("tier", "content").Msg("cache hit")
		return m.finish(types.Succeeded(hit.content, hit.appliedLines), 1.0, true)
	}

	eol := detectEOL(original)
	searchText := strings.Join(block.Search, eol)
	replaceText := strings.Join(block.Replace, eol)

	if !strings.Contains(original, searchText) {
		return types.Failed(types.FailNoMatch, "Search content not found in original content")
	}

	content := strings.Replace(original, searchText, replaceText, 1)
	applied := len(block.Replace)

	entry := cachedApply{diffHash: diffHash, content: content, appliedLines: applied}
	s.hot.Add(hotKey, entry)
	s.byContent.Add(contentKey, entry)

	if decoded {
		s.log.Debug().Msg("applied to decoded binary payload")
	}
	return m.finish(types.Succeeded(content, applied), 1.0, false)
}

// decodeInput unwraps a base64-tagged binary payload when present.
func decodeInput(s string) (string, bool, error) {
	text, decoded, err := diffparse.MaybeDecodePayload(s)
	if err != nil {
		return "", false, err
	}
	return text, decoded, nil
}

// computeHybridHash builds the three-part fingerprint of a content version:
// a line-structural hash with declaration special-casing, a semantic hash
// over the raw bytes, and folded fixed-size chunk hashes.
func computeHybridHash(content string) hybridHash {
	lines := strings.Split(content, "\n")
	lineHashes := make([]uint32, len(lines))
	for i, line := range lines {
		lineHashes[i] = textsim.Hash32(normalizeStructuralLine(line))
	}

	nChunks := (len(content) + hybridChunkSize - 1) / hybridChunkSize
	chunkHashes := make([]uint32, 0, nChunks)
	for off := 0; off < len(content); off += hybridChunkSize {
		end := off + hybridChunkSize
		if end > len(content) {
			end = len(content)
		}
		chunkHashes = append(chunkHashes, textsim.Hash32(content[off:end]))
	}

	return hybridHash{
		structural: textsim.CombineHashes(lineHashes),
		semantic:   textsim.Hash64(content),
		chunks:     textsim.CombineHashes(chunkHashes),
	}
}

// declarationPrefixes are hashed by normalized signature instead of raw
// text, so immaterial whitespace differences in code-like content don't
// break cache identity.
var declarationPrefixes = []string{
	"func ", "function ", "type ", "import ", "package ", "class ", "interface ",
}

func normalizeStructuralLine(line string) string {
	trimmed := strings.TrimSpace(line)
	for _, p := range declarationPrefixes {
		if strings.HasPrefix(trimmed, p) {
			sig := textsim.CollapseSpaces(trimmed)
			sig = strings.TrimSuffix(sig, "{")
			return strings.TrimSpace(sig)
		}
	}
	return line
}

// ToolDescription documents the dialect: a single SEARCH/REPLACE block with
// exact search content.
func (s *SmartHybrid) ToolDescription(cwd string) string {
	return fmt.Sprintf(`## apply_diff (exact search/replace)

Apply a change to a text or configuration file (relative to %s) with a
single search/replace block. The search content must appear verbatim in the
file; the first occurrence is replaced.

Format:
%s
[exact content to find]
%s
[new content]
%s`, cwd,
		diffparse.MarkerSearch, diffparse.MarkerDivider, diffparse.MarkerReplace)
}
