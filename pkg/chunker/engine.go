package chunker

import "math"

// Sizing constraints.
const (
	// BudgetSafetyFactor is the fraction of available memory usable by a
	// single chunk. The remaining 15% is headroom for the runtime and for
	// memory claimed by other processes between the size decision and the
	// read completing.
	BudgetSafetyFactor = 0.85

	// GrowthLimit bounds how much a chunk may grow after a faster read.
	// Growth is conservative to avoid overshooting available memory.
	GrowthLimit = 0.15

	// ShrinkLimit bounds how much a chunk may shrink after a slower read.
	// Shrink reacts aggressively to a slowdown (contended disk, memory
	// pressure) to recover responsiveness quickly.
	ShrinkLimit = 0.45

	// DefaultSizeFraction is the fraction of the total source length used
	// for the first chunk in Auto mode, before any latency feedback exists.
	DefaultSizeFraction = 0.001

	// MinPercent and MaxPercent clamp the Percent mode value at evaluation.
	MinPercent = 0.1
	MaxPercent = 100.0

	// MinChunkBytes is the minimum viable chunk size while bytes remain.
	// Keeps tiny sources (where totalLength*DefaultSizeFraction < 1) moving.
	MinChunkBytes = 1.0

	// percentDivisor converts percentages to fractions.
	percentDivisor = 100.0
)

// Observation is the outcome of the most recently completed read.
// Size is the number of bytes actually obtained, Duration the wall-clock
// seconds the read took, and PrevDuration the duration of the read before
// that. Zero fields mean the value is not known yet.
type Observation struct {
	Size         float64
	Duration     float64
	PrevDuration float64
}

// Budget is the memory budget at the moment a size decision is made.
// Available is refreshed from the probe on every decision, never cached.
type Budget struct {
	Available   float64
	IncludeSwap bool
}

// NextSize computes the size in bytes of the next chunk. It is a pure, total
// function of its inputs: it never fails and holds no state of its own.
// The result is capped at BudgetSafetyFactor of available memory and at
// remaining, and floored at MinChunkBytes while bytes remain.
func NextSize(mode Mode, obs Observation, totalLength, remaining float64, budget Budget) float64 {
	var next float64

	switch mode.kind {
	case modePercent:
		next = percentSize(mode.percent, totalLength)
	case modeBytes:
		next = bytesSize(mode.bytes, totalLength)
	default:
		next = autoSize(obs, totalLength)
	}

	next = math.Min(next, budget.Available*BudgetSafetyFactor)
	next = math.Min(next, remaining)

	if remaining >= MinChunkBytes && next < MinChunkBytes {
		next = MinChunkBytes
	}

	return next
}

// autoSize applies the latency feedback controller. A faster read grows the
// chunk by at most GrowthLimit, a slower read shrinks it by at most
// ShrinkLimit. This is directional correction only, with no target latency.
func autoSize(obs Observation, totalLength float64) float64 {
	prev := obs.PrevDuration
	now := obs.Duration

	switch {
	case obs.Size <= 0 || (now <= 0 && prev <= 0):
		// No usable history yet.
		return totalLength * DefaultSizeFraction
	case now <= 0 || prev <= 0:
		// Unmeasurable read or only a single sample: hold.
		return obs.Size
	case now < prev:
		// Read got faster: grow.
		return obs.Size * (1 + math.Min((prev-now)/prev, GrowthLimit))
	default:
		// Read got slower: shrink. Equal durations leave the size unchanged.
		return obs.Size * (1 - math.Min((now-prev)/now, ShrinkLimit))
	}
}

func percentSize(percent, totalLength float64) float64 {
	clamped := math.Max(MinPercent, math.Min(percent, MaxPercent))

	return totalLength * (clamped / percentDivisor)
}

// bytesSize is the requested byte count capped by the source length.
func bytesSize(requested int64, totalLength float64) float64 {
	return math.Min(float64(requested), totalLength)
}
