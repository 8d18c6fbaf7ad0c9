// bench-chunker measures chunking throughput and heap usage for each sizing
// mode against a target file.
//
// Usage:
//
//	go run ./scripts/bench-chunker --file /var/tmp/payload.bin \
//	  --profile-dir docs/profiles/chunker
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/chunkpace/chunkpace/pkg/chunker"
	"github.com/chunkpace/chunkpace/pkg/source"
)

func main() {
	filePath := flag.String("file", "", "Path to the file to chunk")
	fixedBytes := flag.Int64("bytes", 4*1024*1024, "Chunk size for the bytes-mode run")
	percent := flag.Float64("percent", 10, "Chunk percent for the percent-mode run")
	profileDir := flag.String("profile-dir", "", "Directory to write heap profiles (optional)")
	cpuProfile := flag.Bool("cpu-profile", false, "Write CPU profile to profile-dir/cpu.prof")

	flag.Parse()

	if *filePath == "" {
		log.Fatal("--file is required")
	}

	if *cpuProfile {
		if *profileDir == "" {
			log.Fatal("--cpu-profile requires --profile-dir")
		}

		f, err := os.Create(filepath.Join(*profileDir, "cpu.prof"))
		if err != nil {
			log.Fatalf("create cpu profile: %v", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("start cpu profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	if *profileDir != "" {
		if err := os.MkdirAll(*profileDir, 0o755); err != nil {
			log.Fatalf("create profile dir: %v", err)
		}
	}

	runs := []struct {
		name string
		mode chunker.Mode
	}{
		{"auto", chunker.Auto()},
		{"percent", chunker.Percent(*percent)},
		{"bytes", chunker.Bytes(*fixedBytes)},
	}

	for _, run := range runs {
		if err := benchMode(run.name, run.mode, *filePath, *profileDir); err != nil {
			log.Fatalf("%s run: %v", run.name, err)
		}
	}
}

// benchMode drains the file once with the given mode and reports elapsed
// time, chunk count and heap growth.
func benchMode(name string, mode chunker.Mode, path, profileDir string) error {
	src, err := source.Open(path)
	if err != nil {
		return err
	}

	cursor := chunker.NewCursor(src, nil)
	defer cursor.Close()

	if err := cursor.SetMode(mode); err != nil {
		return err
	}

	var before runtime.MemStats

	runtime.GC()
	runtime.ReadMemStats(&before)

	started := time.Now()

	var total int64

	chunks := 0

	for chunk, iterErr := range cursor.All() {
		if iterErr != nil {
			return iterErr
		}

		total += int64(len(chunk))
		chunks++
	}

	elapsed := time.Since(started)

	var after runtime.MemStats

	runtime.ReadMemStats(&after)

	heapDelta := int64(after.HeapAlloc) - int64(before.HeapAlloc)
	if heapDelta < 0 {
		heapDelta = 0
	}

	throughput := float64(total) / elapsed.Seconds()
	fmt.Printf("%-8s %s in %d chunks, %v, %s/s, heap +%s\n",
		name,
		humanize.IBytes(uint64(total)),
		chunks,
		elapsed.Round(time.Millisecond),
		humanize.IBytes(uint64(throughput)),
		humanize.IBytes(uint64(heapDelta)))

	if profileDir != "" {
		if err := writeHeapProfile(filepath.Join(profileDir, name+"-heap.prof")); err != nil {
			return err
		}
	}

	return nil
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create heap profile: %w", err)
	}
	defer f.Close()

	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("write heap profile: %w", err)
	}

	return nil
}
