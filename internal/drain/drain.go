// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package drain

import (
	"context"
	"errors"
	"io"

	"github.com/matt-FFFFFF/runexec/internal/ctxlog"
)

const (
	readBufferSize = 32 * 1024 // 32KB, matches io.Copy
)

var (
	// ErrWriteDestination is returned when the destination writer fails.
	// Draining continues after a write failure so the child process is never blocked.
	ErrWriteDestination = errors.New("failed to write drained output")
)

// chunk is a piece of output read from one stream, or the end marker of that stream.
type chunk struct {
	data []byte
	eof  bool
}

// Streams reads from all supplied streams until each reports end of file or an error,
// writing every byte read to dst. The number of bytes read is returned.
// Bytes from a single stream are written in the order they were read.
// Interleaving between streams follows arrival order on a best effort basis.
//
// If dst returns an error, later output is discarded and the first error is returned,
// joined with ErrWriteDestination, once all streams are exhausted.
func Streams(ctx context.Context, dst io.Writer, streams ...io.Reader) (int64, error) {
	if len(streams) == 0 {
		return 0, nil
	}

	if dst == nil {
		dst = io.Discard
	}

	ch := make(chan chunk)

	for i, r := range streams {
		go readStream(ctx, i, r, ch)
	}

	var (
		total    int64
		writeErr error
	)

	for open := len(streams); open > 0; {
		c := <-ch
		if c.eof {
			open--
			continue
		}

		total += int64(len(c.data))

		if writeErr != nil {
			continue
		}

		if _, err := dst.Write(c.data); err != nil {
			ctxlog.Debug(ctx, "drain destination write failed, discarding further output", "error", err)
			writeErr = errors.Join(ErrWriteDestination, err)
		}
	}

	return total, writeErr
}

// readStream forwards everything read from r to ch and finishes with an end marker.
// Each chunk gets its own copy of the data, the consumer may still be writing
// the previous chunk while the next Read fills buf.
func readStream(ctx context.Context, idx int, r io.Reader, ch chan<- chunk) {
	defer func() {
		ch <- chunk{eof: true}
	}()

	buf := make([]byte, readBufferSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			ch <- chunk{data: data}
		}

		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			return
		default:
			ctxlog.Debug(ctx, "drain read failed, treating stream as closed", "stream", idx, "error", err)
			// Nobody reads r from here on, so its writer must not block on it.
			if c, ok := r.(io.Closer); ok {
				_ = c.Close()
			}

			return
		}
	}
}
