package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/helpscan/internal/model"
	"github.com/ppiankov/helpscan/internal/nlp"
)

func newTestParser() *Parser {
	return NewParser(nlp.Simple{})
}

func raw(path []string, text string) model.RawHelpText {
	return model.RawHelpText{Tool: path[0], Path: path, Text: text}
}

func signalTypes(c model.Completeness) []model.SignalType {
	var out []model.SignalType
	for _, s := range c.Signals {
		out = append(out, s.Type)
	}
	return out
}

func TestParse_HeaderlessTextStillYieldsFlags(t *testing.T) {
	res := newTestParser().Parse(raw([]string{"x"}, "just some text\n  -v  verbose\n"))
	cmd := res.Command

	require.Len(t, cmd.Flags(), 1)
	assert.Equal(t, []string{"-v"}, cmd.Flags()[0].Synonyms)
	assert.Equal(t, model.TypeFlag, cmd.Flags()[0].Type.Kind)
	assert.Contains(t, signalTypes(cmd.Completeness), model.SignalNoHeaders)
	assert.Equal(t, 1, cmd.Completeness.Unparsed)
	assert.Empty(t, res.Entries)
}

func TestParse_GrammarFlagWithFilePlaceholder(t *testing.T) {
	text := "Usage: tool [OPTIONS]\n\nOptions:\n  -f, --foo FILE  Input file\n"
	cmd := newTestParser().Parse(raw([]string{"tool"}, text)).Command

	require.Len(t, cmd.Arguments, 1)
	arg := cmd.Arguments[0]
	assert.Equal(t, []string{"-f", "--foo"}, arg.Synonyms)
	assert.Equal(t, model.ArityOne, arg.Arity)
	assert.Equal(t, model.ConfidenceHigh, arg.Confidence)
	assert.Equal(t, model.SourceGrammar, arg.Source)
	assert.Equal(t, model.TypePath, arg.Type.Kind)
	assert.Equal(t, model.PathFile, arg.Type.PathKind)
	assert.Equal(t, "foo", arg.Name)
	assert.Equal(t, "Input file", arg.Description)

	assert.Equal(t, "tool [OPTIONS]", cmd.Synopsis)
	assert.Equal(t, "high", cmd.Completeness.Confidence)
	assert.Equal(t, 1.0, cmd.Completeness.Score)
}

func TestParse_FilePlaceholderWithNumericDefaultIsComplex(t *testing.T) {
	text := "Options:\n  --out FILE  output path (default: 10)\n"
	cmd := newTestParser().Parse(raw([]string{"tool"}, text)).Command

	require.Len(t, cmd.Arguments, 1)
	arg := cmd.Arguments[0]
	assert.Equal(t, model.TypeComplex, arg.Type.Kind)
	assert.Empty(t, arg.Type.PathKind)
	assert.NotEmpty(t, arg.Ambiguity)
	require.NotNil(t, arg.Default)
	assert.Equal(t, "10", *arg.Default)
}

func TestParse_ContinuationLinesMerge(t *testing.T) {
	text := `Options:
  -o, --output FILE   write output to FILE
                      instead of stdout
  -q, --quiet         suppress output
`
	cmd := newTestParser().Parse(raw([]string{"tool"}, text)).Command

	require.Len(t, cmd.Flags(), 2)
	out := cmd.Flags()[0]
	assert.Equal(t, "write output to FILE instead of stdout", out.Description)
	assert.Equal(t, model.LineSpan{Start: 1, End: 2}, out.Span)
	assert.Equal(t, 1, cmd.Completeness.Continuation)
	assert.Equal(t, 2, cmd.Completeness.Grammar)
	assert.Equal(t, []string{"-q", "--quiet"}, cmd.Flags()[1].Synonyms)
}

func TestParse_DescriptionOnNextLine(t *testing.T) {
	text := `Options:
  -c, --config PATH
        configuration file (default: ~/.toolrc)
`
	cmd := newTestParser().Parse(raw([]string{"tool"}, text)).Command

	require.Len(t, cmd.Flags(), 1)
	arg := cmd.Flags()[0]
	assert.Equal(t, "configuration file (default: ~/.toolrc)", arg.Description)
	require.NotNil(t, arg.Default)
	assert.Equal(t, "~/.toolrc", *arg.Default)
	assert.False(t, arg.Required)
}

func TestParse_HeuristicLines(t *testing.T) {
	text := `Options:
  -v Verbose mode
  -x, --extra value and more
`
	cmd := newTestParser().Parse(raw([]string{"tool"}, text)).Command

	require.Len(t, cmd.Flags(), 2)
	for _, f := range cmd.Flags() {
		assert.Equal(t, model.SourceHeuristic, f.Source)
		assert.Equal(t, model.ConfidenceLow, f.Confidence)
	}
	assert.Equal(t, 2, cmd.Completeness.Heuristic)
	assert.Equal(t, 0.5, cmd.Completeness.Score)
	assert.Contains(t, signalTypes(cmd.Completeness), model.SignalHeuristicLines)
}

func TestParse_DuplicateSynonymsDropped(t *testing.T) {
	text := `Flags:
  -h, --help   help for tool

Global Flags:
  -h, --help      help
      --debug     enable debug output
`
	cmd := newTestParser().Parse(raw([]string{"tool"}, text)).Command

	require.Len(t, cmd.Flags(), 2)
	assert.Equal(t, []string{"-h", "--help"}, cmd.Flags()[0].Synonyms)
	assert.Equal(t, []string{"--debug"}, cmd.Flags()[1].Synonyms)
}

const argparseHelp = `usage: prog [-h] [--foo FOO] bar

A test program.

positional arguments:
  bar         the bar

optional arguments:
  -h, --help  show this help message and exit
  --foo FOO   foo value
`

func TestParse_Argparse(t *testing.T) {
	cmd := newTestParser().Parse(raw([]string{"prog"}, argparseHelp)).Command

	assert.Equal(t, "A test program.", cmd.Description)
	require.Len(t, cmd.Flags(), 2)
	require.Len(t, cmd.Positionals(), 1)

	bar := cmd.Positionals()[0]
	assert.Equal(t, "bar", bar.Name)
	assert.Equal(t, "the bar", bar.Description)
	assert.Equal(t, model.TypeString, bar.Type.Kind)
	assert.True(t, bar.Required)

	foo, ok := cmd.Flag("--foo")
	require.True(t, ok)
	assert.Equal(t, "FOO", foo.Placeholder)
	assert.Equal(t, model.TypeString, foo.Type.Kind)

	// Flags precede positionals
	assert.Equal(t, model.ArgumentFlag, cmd.Arguments[0].Kind)
	assert.Equal(t, model.ArgumentPositional, cmd.Arguments[len(cmd.Arguments)-1].Kind)
}

const lsHelp = `Usage: ls [OPTION]... [FILE]...
List information about the FILEs (the current directory by default).

Mandatory arguments to long options are mandatory for short options too.
  -a, --all                  do not ignore entries starting with .
      --color[=WHEN]         colorize the output; WHEN can be 'always',
                               'auto', or 'never'
  -w, --width=COLS           set output width to COLS.  0 means no limit

The SIZE argument is an integer and optional unit.
`

func TestParse_OptionsWithoutHeader(t *testing.T) {
	cmd := newTestParser().Parse(raw([]string{"ls"}, lsHelp)).Command

	assert.Equal(t,
		"List information about the FILEs (the current directory by default). Mandatory arguments to long options are mandatory for short options too.",
		cmd.Description)

	require.Len(t, cmd.Flags(), 3)
	color := cmd.Flags()[1]
	assert.Equal(t, []string{"--color"}, color.Synonyms)
	assert.True(t, color.OptionalValue)
	assert.False(t, color.Required)
	assert.Contains(t, color.Description, "'auto', or 'never'")

	require.Len(t, cmd.Positionals(), 1)
	file := cmd.Positionals()[0]
	assert.Equal(t, "FILE", file.Placeholder)
	assert.Equal(t, model.SourceUsage, file.Source)
	assert.True(t, file.Repeated)
	assert.False(t, file.Required)
	assert.Equal(t, model.PathFile, file.Type.PathKind)
}

const cobraHelp = `Manage containers

Usage:
  ctl [command]

Available Commands:
  run         Run a container
  status      Show status
  stop        Stop a container

Flags:
  -h, --help   help for ctl

Use "ctl [command] --help" for more information about a command.
`

func TestParse_SubcommandEntriesInTextOrder(t *testing.T) {
	res := newTestParser().Parse(raw([]string{"ctl"}, cobraHelp))

	require.Len(t, res.Entries, 3)
	assert.Equal(t, "run", res.Entries[0].Name)
	assert.Equal(t, "status", res.Entries[1].Name)
	assert.Equal(t, "stop", res.Entries[2].Name)
	assert.Equal(t, "Stop a container", res.Entries[2].Description)
	assert.Equal(t, "Manage containers", res.Command.Description)
	assert.Empty(t, res.Command.Subcommands)
}

const gitHelp = `usage: git [--version] [--help] <command> [<args>]

These are common Git commands used in various situations:

start a working area (see also: git help tutorial)
   clone     Clone a repository into a new directory
   init      Create an empty Git repository or reinitialize
             an existing one

work on the current change
   add       Add file contents to the index
`

func TestParse_CommandPlaceholderDroppedWithSubcommands(t *testing.T) {
	res := newTestParser().Parse(raw([]string{"git"}, gitHelp))

	require.Len(t, res.Entries, 3)
	assert.Equal(t, "Create an empty Git repository or reinitialize an existing one", res.Entries[1].Description)
	for _, p := range res.Command.Positionals() {
		assert.NotEqual(t, "command", p.Placeholder)
	}
}

func TestParse_MultiNamePositionalSplit(t *testing.T) {
	text := `Usage: cp SRC DEST

Arguments:
  SRC DEST   source file and destination directory
`
	cmd := newTestParser().Parse(raw([]string{"cp"}, text)).Command

	require.Len(t, cmd.Positionals(), 2)
	assert.Equal(t, "source file", cmd.Positionals()[0].Description)
	assert.Equal(t, "destination directory", cmd.Positionals()[1].Description)
	assert.Equal(t, "src", cmd.Positionals()[0].Name)
	assert.Equal(t, "dest", cmd.Positionals()[1].Name)
}

func TestParse_Idempotent(t *testing.T) {
	p := newTestParser()
	for _, text := range []string{argparseHelp, lsHelp, cobraHelp, gitHelp} {
		first := p.Parse(raw([]string{"tool"}, text))
		second := p.Parse(raw([]string{"tool"}, text))
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("parse not idempotent (-first +second):\n%s", diff)
		}
	}
}

func TestParse_EmptyText(t *testing.T) {
	cmd := newTestParser().Parse(raw([]string{"tool"}, "")).Command

	assert.Empty(t, cmd.Arguments)
	assert.NotNil(t, cmd.Arguments)
	assert.Equal(t, "low", cmd.Completeness.Confidence)
	assert.Equal(t, 0.0, cmd.Completeness.Score)
}
