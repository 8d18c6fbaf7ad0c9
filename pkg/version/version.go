// Package version exposes build version information for the chunkpace binary.
package version

import "runtime/debug"

// Populated at build time via -ldflags; InitBinaryVersion fills gaps from
// the embedded module build info.
var (
	Version = "dev"
	Commit  = "<unknown>"
	Date    = "<unknown>"
)

// InitBinaryVersion fills Version and Commit from the binary's build info
// when they were not set by the linker.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && Commit == "<unknown>" {
			Commit = setting.Value
		}

		if setting.Key == "vcs.time" && Date == "<unknown>" {
			Date = setting.Value
		}
	}
}
