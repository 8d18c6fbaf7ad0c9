package chunker

// modeKind discriminates the sizing mode variants.
type modeKind int

const (
	modeAuto modeKind = iota
	modePercent
	modeBytes
)

// Mode selects how the size of each chunk is determined.
// The zero value is Auto.
type Mode struct {
	kind    modeKind
	percent float64
	bytes   int64
}

// Auto returns the adaptive mode: chunk size is recomputed on every step
// from read-latency feedback, bounded by available memory.
func Auto() Mode {
	return Mode{kind: modeAuto}
}

// Percent returns a fixed-fraction mode: each chunk is p percent of the
// total source length. The value is stored as given and clamped to
// [0.1, 100.0] at evaluation time.
func Percent(p float64) Mode {
	return Mode{kind: modePercent, percent: p}
}

// Bytes returns a fixed-size mode: each chunk is n bytes, capped by the
// source length and the memory ceiling.
func Bytes(n int64) Mode {
	return Mode{kind: modeBytes, bytes: n}
}

// String describes the mode for logs and CLI output.
func (m Mode) String() string {
	switch m.kind {
	case modePercent:
		return "percent"
	case modeBytes:
		return "bytes"
	default:
		return "auto"
	}
}
