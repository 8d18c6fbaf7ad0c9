package sysmem

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMemInfo = `MemTotal:       32658840 kB
MemFree:         1346504 kB
MemAvailable:   16384000 kB
Buffers:          234560 kB
SwapTotal:       8388604 kB
SwapFree:        4194302 kB
`

func TestParseMemInfoBytes_MemAvailable(t *testing.T) {
	t.Parallel()

	got := parseMemInfoBytes([]byte(sampleMemInfo), memAvailablePrefix)
	assert.Equal(t, uint64(16384000)*kibibyte, got)
}

func TestParseMemInfoBytes_SwapFree(t *testing.T) {
	t.Parallel()

	got := parseMemInfoBytes([]byte(sampleMemInfo), swapFreePrefix)
	assert.Equal(t, uint64(4194302)*kibibyte, got)
}

func TestParseMemInfoBytes_MissingEntry_ReturnsZero(t *testing.T) {
	t.Parallel()

	got := parseMemInfoBytes([]byte("MemTotal: 1024 kB\n"), memAvailablePrefix)
	assert.Zero(t, got)
}

func TestParseMemInfoBytes_MalformedValue_ReturnsZero(t *testing.T) {
	t.Parallel()

	got := parseMemInfoBytes([]byte("MemAvailable: notanumber kB\n"), memAvailablePrefix)
	assert.Zero(t, got)
}

func TestParseMemInfoBytes_TruncatedLine_ReturnsZero(t *testing.T) {
	t.Parallel()

	got := parseMemInfoBytes([]byte("MemAvailable:\n"), memAvailablePrefix)
	assert.Zero(t, got)
}

func TestParseMemInfoBytes_NoUnit_UsesRawBytes(t *testing.T) {
	t.Parallel()

	got := parseMemInfoBytes([]byte("MemAvailable: 4096\n"), memAvailablePrefix)
	assert.Equal(t, uint64(4096), got)
}

func TestSystem_AvailableRAM_OnLinux(t *testing.T) {
	t.Parallel()

	if runtime.GOOS != "linux" {
		t.Skip("requires /proc/meminfo")
	}

	probe := System{}
	require.Positive(t, probe.AvailableRAM())
	assert.GreaterOrEqual(t, probe.AvailableRAMAndSwap(), probe.AvailableRAM())
}
