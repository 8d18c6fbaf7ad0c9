// Package chunker reads a byte source as a sequence of non-overlapping
// chunks whose size is fixed by the caller or adapted between reads from
// latency feedback, bounded by currently available system memory.
package chunker

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/chunkpace/chunkpace/pkg/source"
	"github.com/chunkpace/chunkpace/pkg/sysmem"
	"github.com/chunkpace/chunkpace/pkg/units"
)

// Sentinel errors for cursor configuration and lifecycle.
var (
	// ErrOffsetOutOfRange is returned when a start position exceeds the
	// source length.
	ErrOffsetOutOfRange = errors.New("start offset beyond source length")

	// ErrIterationStarted is returned when the cursor is reconfigured after
	// the first step.
	ErrIterationStarted = errors.New("cursor cannot be reconfigured after iteration starts")

	// ErrCursorFailed is returned when a cursor is stepped again after a
	// read failure. There is no resume; create a new cursor to retry.
	ErrCursorFailed = errors.New("cursor failed on a previous read")
)

// DefaultBudgetBytes is the memory budget assumed when the probe cannot
// determine available memory (8 GiB).
const DefaultBudgetBytes = 8 * units.GiB

// cursorState tracks the cursor lifecycle. Ended and Failed are terminal.
type cursorState int

const (
	stateActive cursorState = iota
	stateEnded
	stateFailed
)

// Cursor owns a byte source and drives repeated bounded reads over it.
// It is mutated in place on every step and is not safe for concurrent use;
// exactly one step may be in flight at a time.
type Cursor struct {
	src         source.Source
	probe       sysmem.Probe
	position    int64
	totalLength int64
	mode        Mode
	obs         Observation
	includeSwap bool
	state       cursorState
	started     bool
}

// NewCursor creates a cursor over src starting at position 0 in Auto mode.
// The source length is captured once here and never re-queried. A nil probe
// selects the system memory probe.
func NewCursor(src source.Source, probe sysmem.Probe) *Cursor {
	if probe == nil {
		probe = sysmem.System{}
	}

	return &Cursor{
		src:         src,
		probe:       probe,
		totalLength: src.Size(),
		mode:        Auto(),
	}
}

// SetMode replaces the sizing mode. Only permitted before the first step.
func (c *Cursor) SetMode(mode Mode) error {
	if c.started {
		return ErrIterationStarted
	}

	c.mode = mode

	return nil
}

// SetStartPosition moves the read position to an absolute byte offset.
// Only permitted before the first step; fails with ErrOffsetOutOfRange when
// offset exceeds the source length.
func (c *Cursor) SetStartPosition(offset int64) error {
	if c.started {
		return ErrIterationStarted
	}

	if offset < 0 || offset > c.totalLength {
		return fmt.Errorf("%w: offset %d, length %d", ErrOffsetOutOfRange, offset, c.totalLength)
	}

	if _, err := c.src.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek to start position: %w", err)
	}

	c.position = offset

	return nil
}

// SetStartPositionPercent moves the read position to a percentage of the
// source length. Values outside [0, 100] are out of range.
func (c *Cursor) SetStartPositionPercent(percent float64) error {
	if percent < 0 || percent > MaxPercent {
		return fmt.Errorf("%w: %.2f%%", ErrOffsetOutOfRange, percent)
	}

	return c.SetStartPosition(int64(float64(c.totalLength) * percent / percentDivisor))
}

// IncludeAvailableSwap makes the memory budget include free swap capacity.
// Only permitted before the first step.
func (c *Cursor) IncludeAvailableSwap() error {
	if c.started {
		return ErrIterationStarted
	}

	c.includeSwap = true

	return nil
}

// TotalLength returns the source length captured at construction.
func (c *Cursor) TotalLength() int64 { return c.totalLength }

// Position returns the current read offset.
func (c *Cursor) Position() int64 { return c.position }

// Done reports whether iteration has ended normally.
func (c *Cursor) Done() bool { return c.state == stateEnded }

// LastObservation returns the (size, duration) outcome of the most recent
// read, for telemetry.
func (c *Cursor) LastObservation() Observation { return c.obs }

// Step performs one request-size, read, observe cycle and returns the next
// chunk. At end-of-source it returns io.EOF (idempotently). A read failure
// moves the cursor to a terminal failed state: the error is returned once,
// and every later call returns ErrCursorFailed. There is no position
// rollback and no retry.
func (c *Cursor) Step() ([]byte, error) {
	switch c.state {
	case stateFailed:
		return nil, ErrCursorFailed
	case stateEnded:
		return nil, io.EOF
	case stateActive:
	}

	c.started = true

	if c.position == c.totalLength {
		c.state = stateEnded

		return nil, io.EOF
	}

	remaining := c.totalLength - c.position
	budget := c.queryBudget()

	size := NextSize(c.mode, c.obs, float64(c.totalLength), float64(remaining), budget)

	n := int64(size)
	if n < 1 {
		n = 1
	}

	if n > remaining {
		n = remaining
	}

	buf := make([]byte, n)

	start := time.Now()
	read, err := io.ReadFull(c.src, buf)
	elapsed := time.Since(start)

	if err != nil {
		c.state = stateFailed

		return nil, fmt.Errorf("read chunk at offset %d: %w", c.position, err)
	}

	c.position += int64(read)
	c.obs = Observation{
		Size:         float64(read),
		Duration:     elapsed.Seconds(),
		PrevDuration: c.obs.Duration,
	}

	if c.position == c.totalLength {
		c.state = stateEnded
	}

	return buf, nil
}

// Close releases the underlying source handle. Safe to call at any point;
// a read in flight on another goroutine is abandoned and will surface as a
// read failure.
func (c *Cursor) Close() error {
	return c.src.Close()
}

// queryBudget reads the memory probe fresh for this step, honoring the swap
// toggle. An unknown amount falls back to DefaultBudgetBytes.
func (c *Cursor) queryBudget() Budget {
	var available uint64
	if c.includeSwap {
		available = c.probe.AvailableRAMAndSwap()
	} else {
		available = c.probe.AvailableRAM()
	}

	if available == 0 {
		available = DefaultBudgetBytes
	}

	return Budget{Available: float64(available), IncludeSwap: c.includeSwap}
}
