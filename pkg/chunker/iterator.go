package chunker

import (
	"errors"
	"io"
	"iter"
)

// All returns a single-use, blocking iterator over the remaining chunks.
// Each pull performs one Step on the calling goroutine. Normal completion
// ends the sequence; a read failure is yielded once as the final element
// and also ends it. Breaking out early leaves the cursor positioned after
// the last yielded chunk.
func (c *Cursor) All() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			chunk, err := c.Step()
			if errors.Is(err, io.EOF) {
				return
			}

			if err != nil {
				yield(nil, err)

				return
			}

			if !yield(chunk, nil) {
				return
			}
		}
	}
}
