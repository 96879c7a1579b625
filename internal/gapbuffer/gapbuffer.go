// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package gapbuffer implements a line-oriented gap buffer: a document
// representation that keeps a relocatable empty region at the edit cursor,
// making runs of nearby insertions and deletions cheap. Patch application
// walks a document top to bottom, so the gap rarely moves far.
package gapbuffer

const minGap = 32

// Buffer stores lines with a movable gap between gapStart and gapEnd.
// Lines before gapStart and at/after gapEnd are live; the gap is dead space.
type Buffer struct {
	lines    []string
	gapStart int
	gapEnd   int
}

// New creates a buffer holding the given lines. The slice is copied.
func New(lines []string) *Buffer {
	buf := make([]string, len(lines)+minGap)
	copy(buf, lines)
	return &Buffer{
		lines:    buf,
		gapStart: len(lines),
		gapEnd:   len(buf),
	}
}

// Len reports the number of live lines.
func (b *Buffer) Len() int {
	return len(b.lines) - (b.gapEnd - b.gapStart)
}

// Line returns the live line at index i.
func (b *Buffer) Line(i int) string {
	if i < b.gapStart {
		return b.lines[i]
	}
	return b.lines[i+(b.gapEnd-b.gapStart)]
}

// Insert places line at index i, shifting later lines down.
func (b *Buffer) Insert(i int, line string) {
	b.moveGap(i)
	if b.gapStart == b.gapEnd {
		b.grow()
	}
	b.lines[b.gapStart] = line
	b.gapStart++
}

// Delete removes the live line at index i.
func (b *Buffer) Delete(i int) {
	b.moveGap(i + 1)
	b.gapStart--
	b.lines[b.gapStart] = "" // Release the string for GC.
}

// Lines returns a copy of the live lines in order.
func (b *Buffer) Lines() []string {
	out := make([]string, 0, b.Len())
	out = append(out, b.lines[:b.gapStart]...)
	out = append(out, b.lines[b.gapEnd:]...)
	return out
}

// moveGap relocates the gap so that gapStart == i. Only the lines between
// the old and new gap positions move; copy has memmove semantics, so the
// overlapping case is safe.
func (b *Buffer) moveGap(i int) {
	switch {
	case i < b.gapStart:
		n := b.gapStart - i
		copy(b.lines[b.gapEnd-n:b.gapEnd], b.lines[i:b.gapStart])
		b.gapStart = i
		b.gapEnd -= n
	case i > b.gapStart:
		n := i - b.gapStart
		copy(b.lines[b.gapStart:b.gapStart+n], b.lines[b.gapEnd:b.gapEnd+n])
		b.gapStart += n
		b.gapEnd += n
	default:
		return
	}
	clearRange(b.lines[b.gapStart:b.gapEnd])
}

// grow doubles the gap when it is exhausted.
func (b *Buffer) grow() {
	extra := len(b.lines)
	if extra < minGap {
		extra = minGap
	}
	grown := make([]string, len(b.lines)+extra)
	copy(grown, b.lines[:b.gapStart])
	copy(grown[b.gapEnd+extra:], b.lines[b.gapEnd:])
	b.lines = grown
	b.gapEnd += extra
}

func clearRange(s []string) {
	for i := range s {
		s[i] = ""
	}
}
