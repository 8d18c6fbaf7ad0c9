// Package sysmem probes currently available system memory.
package sysmem

import (
	"bytes"
	"os"
	"runtime"
	"strconv"
)

// minMemInfoFields is the minimum number of space-separated fields expected
// in a /proc/meminfo line (e.g. "MemAvailable: 16384 kB" has 3 fields).
const minMemInfoFields = 2

const (
	procMemInfoPath    = "/proc/meminfo"
	memAvailablePrefix = "MemAvailable:"
	swapFreePrefix     = "SwapFree:"
	memInfoUnitKiB     = "kB"
	kibibyte           = uint64(1024)
)

// Probe reports currently available system memory in bytes. Implementations
// must reflect the state of the system at call time; results are never cached
// between calls. A return value of 0 means the amount could not be determined.
type Probe interface {
	// AvailableRAM returns the memory currently available for new
	// allocations without swapping.
	AvailableRAM() uint64

	// AvailableRAMAndSwap returns AvailableRAM plus free swap capacity.
	AvailableRAMAndSwap() uint64
}

// System is the real system probe. It re-reads /proc/meminfo on every call.
// On platforms without /proc/meminfo it reports 0 (unknown).
type System struct{}

// AvailableRAM implements Probe.
func (System) AvailableRAM() uint64 {
	return parseMemInfoBytes(readMemInfo(), memAvailablePrefix)
}

// AvailableRAMAndSwap implements Probe.
func (System) AvailableRAMAndSwap() uint64 {
	memInfo := readMemInfo()

	ram := parseMemInfoBytes(memInfo, memAvailablePrefix)
	if ram == 0 {
		return 0
	}

	return ram + parseMemInfoBytes(memInfo, swapFreePrefix)
}

func readMemInfo() []byte {
	if runtime.GOOS != "linux" {
		return nil
	}

	memInfoBytes, err := os.ReadFile(procMemInfoPath)
	if err != nil {
		return nil
	}

	return memInfoBytes
}

// parseMemInfoBytes extracts the byte value of a /proc/meminfo entry such as
// "MemAvailable:   16384 kB". Returns 0 when the entry is absent or malformed.
func parseMemInfoBytes(memInfo []byte, prefix string) uint64 {
	for line := range bytes.SplitSeq(memInfo, []byte{'\n'}) {
		if !bytes.HasPrefix(line, []byte(prefix)) {
			continue
		}

		fields := bytes.Fields(line)
		if len(fields) < minMemInfoFields {
			return 0
		}

		value, err := strconv.ParseUint(string(fields[1]), 10, 64)
		if err != nil {
			return 0
		}

		// Entries without a unit field (the HugePages counts) are raw values.
		unit := ""
		if len(fields) > minMemInfoFields {
			unit = string(fields[2])
		}

		return scaleBytesByUnit(value, unit)
	}

	return 0
}

func scaleBytesByUnit(value uint64, unit string) uint64 {
	switch unit {
	case memInfoUnitKiB:
		return value * kibibyte
	default:
		return value
	}
}
