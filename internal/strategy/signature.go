// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package strategy

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/wwicak/roo-code/internal/textsim"
)

// nodeSignature is a recursive structural fingerprint of a syntax-tree
// node. The hash is a pure function of the node type, the literal content
// of leaves, and the children's hashes, so two structurally and
// semantically identical subtrees always hash equal.
type nodeSignature struct {
	nodeType    string
	contentHash uint64
	children    []*nodeSignature
}

// sigKey addresses a node by span and type, standing in for node identity.
type sigKey struct {
	start uint32
	end   uint32
	typ   string
}

// signatureArena memoizes signatures per node span so repeated comparisons
// against the same tree never re-hash an unchanged subtree.
type signatureArena struct {
	src  []byte
	memo map[sigKey]*nodeSignature
}

func newSignatureArena(src []byte) *signatureArena {
	return &signatureArena{src: src, memo: make(map[sigKey]*nodeSignature)}
}

const sigPrime = 1099511628211

// signature computes (or recalls) the structural signature of n.
func (a *signatureArena) signature(n *sitter.Node) *nodeSignature {
	key := sigKey{start: n.StartByte(), end: n.EndByte(), typ: n.Type()}
	if s, ok := a.memo[key]; ok {
		return s
	}

	sig := &nodeSignature{nodeType: n.Type()}
	acc := textsim.Hash64(n.Type())

	count := int(n.NamedChildCount())
	if count == 0 {
		acc = (acc ^ textsim.Hash64(n.Content(a.src))) * sigPrime
	} else {
		sig.children = make([]*nodeSignature, 0, count)
		for i := 0; i < count; i++ {
			child := a.signature(n.NamedChild(i))
			sig.children = append(sig.children, child)
			acc = (acc ^ child.contentHash) * sigPrime
		}
	}

	sig.contentHash = acc
	a.memo[key] = sig
	return sig
}

// signatureSimilarity scores how alike two signatures are: 1.0 for equal
// hashes, otherwise the fraction of direct child signatures the nodes
// share. Leaves of the same type that differ in content score 0.5.
func signatureSimilarity(a, b *nodeSignature) float64 {
	if a.nodeType == b.nodeType && a.contentHash == b.contentHash {
		return 1.0
	}
	if len(a.children) == 0 || len(b.children) == 0 {
		if a.nodeType == b.nodeType {
			return 0.5
		}
		return 0
	}

	remaining := make(map[uint64]int, len(a.children))
	for _, c := range a.children {
		remaining[c.contentHash]++
	}
	shared := 0
	for _, c := range b.children {
		if remaining[c.contentHash] > 0 {
			remaining[c.contentHash]--
			shared++
		}
	}

	larger := len(a.children)
	if len(b.children) > larger {
		larger = len(b.children)
	}
	return float64(shared) / float64(larger)
}

// complexityWeights biases the structural-complexity metric toward control
// flow; plain statements contribute nothing.
var complexityWeights = map[string]int{
	"for_statement":               3,
	"for_in_statement":            3,
	"for_of_statement":            3,
	"while_statement":             3,
	"do_statement":                3,
	"try_statement":               3,
	"catch_clause":                2,
	"if_statement":                2,
	"ternary_expression":          2,
	"conditional_expression":      2,
	"switch_statement":            2,
	"expression_switch_statement": 2,
	"type_switch_statement":       2,
	"select_statement":            2,
	"function_declaration":        1,
	"method_declaration":          1,
	"arrow_function":              1,
}

// complexityScore walks the subtree summing control-flow weights.
func complexityScore(n *sitter.Node) int {
	score := complexityWeights[n.Type()]
	for i := 0; i < int(n.NamedChildCount()); i++ {
		score += complexityScore(n.NamedChild(i))
	}
	return score
}
