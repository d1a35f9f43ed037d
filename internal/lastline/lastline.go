// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package lastline

import (
	"bytes"
	"strings"
	"sync"
)

const (
	ellipsis = "..."
)

// Writer tracks the last complete line and the current partial line of everything
// written to it. It is safe for concurrent use.
type Writer struct {
	mu      sync.RWMutex
	last    string
	partial []byte
}

// New returns an empty Writer.
func New() *Writer {
	return &Writer{}
}

// Write records p. It never fails.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data := p

	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}

		w.partial = append(w.partial, data[:i]...)
		w.last = strings.TrimSuffix(string(w.partial), "\r")
		w.partial = w.partial[:0]
		data = data[i+1:]
	}

	w.partial = append(w.partial, data...)

	return len(p), nil
}

// Last returns the last complete line, without its line ending.
// If maxLength is greater than the length of the ellipsis, longer lines are truncated
// to maxLength bytes ending in "...". Truncation never splits a UTF-8 sequence.
func (w *Writer) Last(maxLength int) string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return truncate(w.last, maxLength)
}

// Partial returns the data written after the last line ending.
func (w *Writer) Partial() string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return string(w.partial)
}

// Reset forgets everything written so far.
func (w *Writer) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.last = ""
	w.partial = w.partial[:0]
}

func truncate(s string, maxLength int) string {
	if maxLength <= len(ellipsis) || len(s) <= maxLength {
		return s
	}

	cut := maxLength - len(ellipsis)
	// step back to the start of a rune
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}

	return s[:cut] + ellipsis
}
