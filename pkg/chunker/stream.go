package chunker

import (
	"context"
	"errors"
	"io"
	"sync"
)

// Stream delivers a cursor's chunks over a channel, one read in flight at a
// time. The producer goroutine suspends on the read and on channel sends;
// cancelling the context or calling Close abandons the in-flight read
// without rollback.
type Stream struct {
	cursor *Cursor
	chunks chan []byte
	cancel context.CancelFunc

	err       error
	closeOnce sync.Once
	closeErr  error
}

// NewStream starts a stream over cursor. The cursor must not be stepped by
// anyone else while the stream is live.
func NewStream(ctx context.Context, cursor *Cursor) *Stream {
	ctx, cancel := context.WithCancel(ctx)

	s := &Stream{
		cursor: cursor,
		chunks: make(chan []byte),
		cancel: cancel,
	}

	go s.run(ctx)

	return s
}

// Chunks returns the delivery channel. It is closed when the source is
// exhausted, a read fails, or the stream is cancelled; check Err afterwards.
func (s *Stream) Chunks() <-chan []byte {
	return s.chunks
}

// Err returns the terminal error, if any. Valid only after the Chunks
// channel has been closed. Normal end-of-source leaves it nil.
func (s *Stream) Err() error {
	return s.err
}

// Close cancels the stream and releases the underlying source handle.
// Safe to call more than once and at any point during consumption.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.closeErr = s.cursor.Close()
	})

	return s.closeErr
}

func (s *Stream) run(ctx context.Context) {
	defer close(s.chunks)

	for {
		select {
		case <-ctx.Done():
			s.err = ctx.Err()

			return
		default:
		}

		chunk, err := s.cursor.Step()
		if errors.Is(err, io.EOF) {
			return
		}

		if err != nil {
			s.err = err

			return
		}

		select {
		case s.chunks <- chunk:
		case <-ctx.Done():
			s.err = ctx.Err()

			return
		}
	}
}
