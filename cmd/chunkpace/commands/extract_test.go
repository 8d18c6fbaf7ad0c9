package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const extractTestDoc = "header\n-- BEGIN --\npayload line\n-- END --\ntrailer\n"

func writeExtractInput(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(extractTestDoc), 0o600))

	return path
}

func TestExtractCommand_BetweenPatterns(t *testing.T) {
	t.Parallel()

	input := writeExtractInput(t)

	var stdout bytes.Buffer

	cmd := NewExtractCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{input, "--from", "-- BEGIN --", "--to", "-- END --"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Equal(t, "\npayload line\n", stdout.String())
}

func TestExtractCommand_IncludeBounds(t *testing.T) {
	t.Parallel()

	input := writeExtractInput(t)

	var stdout bytes.Buffer

	cmd := NewExtractCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{input, "--from", "-- BEGIN --", "--to", "-- END --", "--include-bounds"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Equal(t, "-- BEGIN --\npayload line\n-- END --", stdout.String())
}

func TestExtractCommand_NoToPattern_ReadsToEnd(t *testing.T) {
	t.Parallel()

	input := writeExtractInput(t)

	var stdout bytes.Buffer

	cmd := NewExtractCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{input, "--from", "-- END --"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Equal(t, "\ntrailer\n", stdout.String())
}

func TestExtractCommand_WritesOutputFile(t *testing.T) {
	t.Parallel()

	input := writeExtractInput(t)
	output := filepath.Join(t.TempDir(), "segment.txt")

	cmd := NewExtractCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{input, "--from", "-- BEGIN --", "--to", "-- END --", "--output", output})

	err := cmd.Execute()
	require.NoError(t, err)

	got, readErr := os.ReadFile(output)
	require.NoError(t, readErr)
	assert.Equal(t, "\npayload line\n", string(got))
}

func TestExtractCommand_PatternNotFound(t *testing.T) {
	t.Parallel()

	input := writeExtractInput(t)

	cmd := NewExtractCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{input, "--from", "-- MISSING --"})

	err := cmd.Execute()
	require.ErrorIs(t, err, ErrPatternNotFound)
}

func TestExtractCommand_ToPatternNotFound(t *testing.T) {
	t.Parallel()

	input := writeExtractInput(t)

	cmd := NewExtractCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{input, "--from", "-- BEGIN --", "--to", "-- ABSENT --"})

	err := cmd.Execute()
	require.ErrorIs(t, err, ErrPatternNotFound)
}

func TestExtractCommand_BadFromRegex_Fails(t *testing.T) {
	t.Parallel()

	input := writeExtractInput(t)

	cmd := NewExtractCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{input, "--from", "["})

	err := cmd.Execute()
	require.Error(t, err)
}

func TestExtractRange_RegexBoundaries(t *testing.T) {
	t.Parallel()

	data := []byte("aaa<start>body</start>bbb")

	segment, err := extractRange(data, ExtractOptions{From: "<start>", To: "</start>"})
	require.NoError(t, err)
	assert.Equal(t, "body", string(segment))
}
