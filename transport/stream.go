/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"bufio"
	"context"
	"io"
	"sync"
)

// maxLineBytes caps a single streamed line. Event lines are small; anything
// beyond this is a misbehaving upstream and surfaces as a scan error.
const maxLineBytes = 1 << 20

// LineStream is a forward-only sequence of text lines read incrementally
// from a streamed response. It suspends only at line boundaries and
// guarantees the underlying connection is released on Close, which is safe
// to call on every exit path (normal completion, error, timeout).
type LineStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	cancel  context.CancelFunc
	once    sync.Once
}

func newLineStream(body io.ReadCloser, cancel context.CancelFunc) *LineStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &LineStream{body: body, scanner: scanner, cancel: cancel}
}

// Next advances to the next line, returning false at end of stream or on
// error. Check Err after Next returns false.
func (s *LineStream) Next() bool {
	return s.scanner.Scan()
}

// Text returns the current line without its trailing newline.
func (s *LineStream) Text() string {
	return s.scanner.Text()
}

// Err returns the first error encountered while reading, or nil if the
// stream ended normally. A timeout expiring mid-stream surfaces here as the
// context error from the aborted read.
func (s *LineStream) Err() error {
	return s.scanner.Err()
}

// Close releases the underlying connection. It is idempotent.
func (s *LineStream) Close() error {
	var err error
	s.once.Do(func() {
		err = s.body.Close()
		s.cancel()
	})
	return err
}
