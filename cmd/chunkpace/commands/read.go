// Package commands implements CLI command handlers for chunkpace.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pierrec/lz4/v4"
	"github.com/spf13/cobra"

	"github.com/chunkpace/chunkpace/internal/config"
	"github.com/chunkpace/chunkpace/pkg/chunker"
	"github.com/chunkpace/chunkpace/pkg/source"
	"github.com/chunkpace/chunkpace/pkg/sysmem"
)

const (
	readCmdUse   = "read <file>"
	readCmdShort = "Stream a file in adaptive or fixed-size chunks to an output"
	readArgCount = 1
)

// ErrInvalidSizeFormat is returned for size flags humanize cannot parse.
var ErrInvalidSizeFormat = errors.New("invalid size format")

// ReadOptions holds read command runtime options.
type ReadOptions struct {
	Mode         string
	Percent      float64
	Bytes        string
	Start        string
	StartPercent float64
	IncludeSwap  bool
	Output       string
	Compress     bool
	Stats        bool
}

// NewReadCommand creates the read subcommand.
func NewReadCommand() *cobra.Command {
	var opts ReadOptions

	cmd := &cobra.Command{
		Use:   readCmdUse,
		Short: readCmdShort,
		Args:  cobra.ExactArgs(readArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Root().PersistentFlags().GetString("config")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			applyConfigDefaults(cmd, &opts, cfg)

			return runRead(cmd.Context(), args[0], opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", config.ModeAuto, "sizing mode: auto, percent or bytes")
	cmd.Flags().Float64Var(&opts.Percent, "percent", 10, "chunk size as percent of file length (percent mode)")
	cmd.Flags().StringVar(&opts.Bytes, "bytes", "", "fixed chunk size, e.g. 4MiB or 250KB (bytes mode)")
	cmd.Flags().StringVar(&opts.Start, "start", "", "start offset, e.g. 1MiB")
	cmd.Flags().Float64Var(&opts.StartPercent, "start-percent", 0, "start offset as percent of file length")
	cmd.Flags().BoolVar(&opts.IncludeSwap, "swap", false, "include free swap in the memory budget")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.Compress, "compress", false, "lz4-compress the output")
	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "print a per-chunk stats table to stderr")

	return cmd
}

// applyConfigDefaults fills options the caller did not set on the command
// line from the loaded configuration.
func applyConfigDefaults(cmd *cobra.Command, opts *ReadOptions, cfg *config.Config) {
	if !cmd.Flags().Changed("mode") {
		opts.Mode = cfg.Chunking.Mode
	}

	if !cmd.Flags().Changed("percent") {
		opts.Percent = cfg.Chunking.Percent
	}

	if !cmd.Flags().Changed("bytes") {
		opts.Bytes = cfg.Chunking.Bytes
	}

	if !cmd.Flags().Changed("swap") {
		opts.IncludeSwap = cfg.Chunking.IncludeSwap
	}
}

func runRead(ctx context.Context, path string, opts ReadOptions, stdout, stderr io.Writer) error {
	mode, err := resolveMode(opts)
	if err != nil {
		return err
	}

	src, err := source.Open(path)
	if err != nil {
		return err
	}

	cursor := chunker.NewCursor(src, nil)
	if err := configureCursor(cursor, mode, opts); err != nil {
		src.Close()

		return err
	}

	out, closeOut, err := openOutput(opts.Output, stdout)
	if err != nil {
		src.Close()

		return err
	}

	stats, streamErr := streamFile(ctx, cursor, out, opts)
	closeErr := closeOut()

	if streamErr != nil {
		return streamErr
	}

	if closeErr != nil {
		return fmt.Errorf("close output: %w", closeErr)
	}

	if opts.Stats {
		stats.render(stderr)
	}

	return nil
}

// streamFile drains the cursor through a stream into out, optionally
// wrapping the output in an lz4 writer.
func streamFile(ctx context.Context, cursor *chunker.Cursor, out io.Writer, opts ReadOptions) (*readStats, error) {
	writer := out

	var lzWriter *lz4.Writer
	if opts.Compress {
		lzWriter = lz4.NewWriter(out)
		writer = lzWriter
	}

	// The cursor belongs to the stream's producer goroutine once the
	// stream starts; capture the start offset before that.
	startOffset := cursor.Position()
	totalLength := cursor.TotalLength()

	stream := chunker.NewStream(ctx, cursor)
	defer stream.Close()

	stats, err := consumeStream(ctx, stream, sysmem.System{}, consumeOptions{
		totalLength: totalLength,
		startOffset: startOffset,
		includeSwap: opts.IncludeSwap,
	}, writer)
	if err != nil {
		return nil, err
	}

	if lzWriter != nil {
		if err := lzWriter.Close(); err != nil {
			return nil, fmt.Errorf("flush compressed output: %w", err)
		}
	}

	return stats, nil
}

func resolveMode(opts ReadOptions) (chunker.Mode, error) {
	switch opts.Mode {
	case config.ModePercent:
		return chunker.Percent(opts.Percent), nil
	case config.ModeBytes:
		size, err := humanize.ParseBytes(opts.Bytes)
		if err != nil {
			return chunker.Mode{}, fmt.Errorf("%w for --bytes: %s", ErrInvalidSizeFormat, opts.Bytes)
		}

		return chunker.Bytes(int64(size)), nil
	case config.ModeAuto:
		return chunker.Auto(), nil
	default:
		return chunker.Mode{}, fmt.Errorf("%w: %q", config.ErrInvalidMode, opts.Mode)
	}
}

func configureCursor(cursor *chunker.Cursor, mode chunker.Mode, opts ReadOptions) error {
	if err := cursor.SetMode(mode); err != nil {
		return err
	}

	if opts.Start != "" {
		offset, err := humanize.ParseBytes(opts.Start)
		if err != nil {
			return fmt.Errorf("%w for --start: %s", ErrInvalidSizeFormat, opts.Start)
		}

		if err := cursor.SetStartPosition(int64(offset)); err != nil {
			return err
		}
	} else if opts.StartPercent > 0 {
		if err := cursor.SetStartPositionPercent(opts.StartPercent); err != nil {
			return err
		}
	}

	if opts.IncludeSwap {
		return cursor.IncludeAvailableSwap()
	}

	return nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}

	return f, f.Close, nil
}

// consumeOptions pins the iteration parameters telemetry is reported
// against: the position baseline and the budget path the cursor uses.
type consumeOptions struct {
	totalLength int64
	startOffset int64
	includeSwap bool
}

// consumeStream writes every delivered chunk to writer, recording per-chunk
// telemetry. Durations are measured consumer-side between deliveries.
func consumeStream(ctx context.Context, stream *chunker.Stream, probe sysmem.Probe, opts consumeOptions, writer io.Writer) (*readStats, error) {
	logger := slog.Default()
	stats := newReadStats(opts.totalLength)
	last := time.Now()

	for chunk := range stream.Chunks() {
		now := time.Now()
		elapsed := now.Sub(last)
		last = now

		if _, err := writer.Write(chunk); err != nil {
			return nil, fmt.Errorf("write chunk: %w", err)
		}

		entry := chunker.ReadLog{
			Index:       stats.chunks,
			Bytes:       int64(len(chunk)),
			Duration:    elapsed,
			Position:    opts.startOffset + stats.totalBytes + int64(len(chunk)),
			TotalLength: opts.totalLength,
			BudgetBytes: budgetBytes(probe, opts.includeSwap),
		}
		if secs := elapsed.Seconds(); secs > 0 {
			entry.ThroughputBps = float64(len(chunk)) / secs
		}

		chunker.LogRead(ctx, logger, entry)
		stats.add(entry)
	}

	if err := stream.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// budgetBytes mirrors the cursor's budget query: the swap toggle selects
// the probe path, and an unknown amount falls back to the default budget.
func budgetBytes(probe sysmem.Probe, includeSwap bool) int64 {
	var available uint64
	if includeSwap {
		available = probe.AvailableRAMAndSwap()
	} else {
		available = probe.AvailableRAM()
	}

	if available == 0 {
		return chunker.DefaultBudgetBytes
	}

	return int64(available)
}

// readStats accumulates per-chunk telemetry for the --stats table.
type readStats struct {
	totalLength int64
	totalBytes  int64
	chunks      int
	started     time.Time
	entries     []chunker.ReadLog
}

func newReadStats(totalLength int64) *readStats {
	return &readStats{totalLength: totalLength, started: time.Now()}
}

func (s *readStats) add(entry chunker.ReadLog) {
	s.totalBytes += entry.Bytes
	s.chunks++
	s.entries = append(s.entries, entry)
}

func (s *readStats) render(w io.Writer) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"#", "Bytes", "Size", "Duration", "Throughput"})

	for _, entry := range s.entries {
		tw.AppendRow(table.Row{
			entry.Index + 1,
			entry.Bytes,
			humanize.IBytes(uint64(entry.Bytes)),
			entry.Duration.Round(time.Microsecond),
			throughputLabel(entry.ThroughputBps),
		})
	}

	elapsed := time.Since(s.started)
	tw.AppendFooter(table.Row{"", s.totalBytes, humanize.IBytes(uint64(s.totalBytes)), elapsed.Round(time.Millisecond), ""})
	tw.Render()

	avg := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		avg = float64(s.totalBytes) / secs
	}

	color.New(color.FgGreen).Fprintf(w, "read %s in %d chunks (%s/s)\n",
		humanize.IBytes(uint64(s.totalBytes)), s.chunks, humanize.IBytes(uint64(avg)))
}

func throughputLabel(bps float64) string {
	if bps <= 0 {
		return "-"
	}

	return humanize.IBytes(uint64(bps)) + "/s"
}
