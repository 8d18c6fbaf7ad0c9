package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/spf13/cobra"
)

const (
	extractCmdUse   = "extract <file>"
	extractCmdShort = "Extract the byte range between two patterns from a file"
)

// ErrPatternNotFound is returned when a boundary pattern has no match.
var ErrPatternNotFound = errors.New("pattern not found")

// ExtractOptions holds extract command runtime options.
type ExtractOptions struct {
	From          string
	To            string
	IncludeBounds bool
	Output        string
}

// NewExtractCommand creates the extract subcommand.
func NewExtractCommand() *cobra.Command {
	var opts ExtractOptions

	cmd := &cobra.Command{
		Use:   extractCmdUse,
		Short: extractCmdShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "regex marking the start of the range (required)")
	cmd.Flags().StringVar(&opts.To, "to", "", "regex marking the end of the range (default end of file)")
	cmd.Flags().BoolVar(&opts.IncludeBounds, "include-bounds", false, "include the boundary matches in the output")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	cmd.MarkFlagRequired("from")

	return cmd
}

func runExtract(path string, opts ExtractOptions, stdout io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	segment, err := extractRange(data, opts)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(opts.Output, stdout)
	if err != nil {
		return err
	}

	if _, err := out.Write(segment); err != nil {
		closeOut()

		return fmt.Errorf("write output: %w", err)
	}

	if err := closeOut(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	return nil
}

// extractRange locates the first match of the from pattern and the first
// match of the to pattern after it, then returns the bytes between them.
func extractRange(data []byte, opts ExtractOptions) ([]byte, error) {
	fromRe, err := regexp.Compile(opts.From)
	if err != nil {
		return nil, fmt.Errorf("compile --from pattern: %w", err)
	}

	fromLoc := fromRe.FindIndex(data)
	if fromLoc == nil {
		return nil, fmt.Errorf("%w: --from %q", ErrPatternNotFound, opts.From)
	}

	start := fromLoc[1]
	if opts.IncludeBounds {
		start = fromLoc[0]
	}

	if opts.To == "" {
		return data[start:], nil
	}

	toRe, err := regexp.Compile(opts.To)
	if err != nil {
		return nil, fmt.Errorf("compile --to pattern: %w", err)
	}

	toLoc := toRe.FindIndex(data[fromLoc[1]:])
	if toLoc == nil {
		return nil, fmt.Errorf("%w: --to %q", ErrPatternNotFound, opts.To)
	}

	end := fromLoc[1] + toLoc[0]
	if opts.IncludeBounds {
		end = fromLoc[1] + toLoc[1]
	}

	return data[start:end], nil
}
