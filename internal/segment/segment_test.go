package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/helpscan/internal/model"
)

func kinds(sections []model.Section) []model.SectionKind {
	out := make([]model.SectionKind, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.Kind)
	}
	return out
}

func texts(lines []model.Line) []string {
	var out []string
	for _, l := range lines {
		if !l.Blank() {
			out = append(out, strings.TrimSpace(l.Text))
		}
	}
	return out
}

func TestSegment_NoHeadersIsOneUnknownSection(t *testing.T) {
	raw := model.RawHelpText{Tool: "x", Text: "just some text\n  -v  verbose\n"}

	sections := New().Segment(raw)
	require.Len(t, sections, 1)
	assert.Equal(t, model.SectionUnknown, sections[0].Kind)
	assert.Equal(t, 0, sections[0].Start)
	assert.Equal(t, len(raw.Text), sections[0].End)
	assert.Len(t, sections[0].Lines, 2)
}

func TestSegment_Empty(t *testing.T) {
	sections := New().Segment(model.RawHelpText{})
	require.Len(t, sections, 1)
	assert.Equal(t, model.SectionUnknown, sections[0].Kind)
}

const argparseHelp = `usage: prog [-h] [--foo FOO] bar

A test program.

positional arguments:
  bar         the bar

optional arguments:
  -h, --help  show this help message and exit
  --foo FOO   foo value
`

func TestSegment_Argparse(t *testing.T) {
	raw := model.RawHelpText{Tool: "prog", Text: argparseHelp}
	sections := New().Segment(raw)

	assert.Equal(t, []model.SectionKind{
		model.SectionUsage,
		model.SectionDescription,
		model.SectionArguments,
		model.SectionOptions,
	}, kinds(sections))

	usage := sections[0]
	require.NotEmpty(t, usage.Lines)
	assert.Equal(t, "prog [-h] [--foo FOO] bar", usage.Lines[0].Text)
	assert.Equal(t, 7, usage.Lines[0].Indent)

	assert.Equal(t, []string{"A test program."}, texts(sections[1].Lines))

	args := sections[2]
	assert.Equal(t, "positional arguments:", args.Header)
	assert.True(t, strings.HasPrefix(raw.Text[args.Start:args.End], "positional arguments:"))
	assert.Equal(t, []string{"bar         the bar"}, texts(args.Lines))

	assert.Len(t, texts(sections[3].Lines), 2)
	assert.True(t, strings.HasSuffix(raw.Text[sections[3].Start:sections[3].End], "foo value"))
}

const gitHelp = `usage: git [--version] <command> [<args>]

These are common Git commands used in various situations:

start a working area (see also: git help tutorial)
   clone     Clone a repository into a new directory
   init      Create an empty Git repository

work on the current change
   add       Add file contents to the index

'git help -a' lists available subcommands.
`

func TestSegment_CommandGroupLabels(t *testing.T) {
	sections := New().Segment(model.RawHelpText{Tool: "git", Text: gitHelp})

	assert.Equal(t, []model.SectionKind{
		model.SectionUsage,
		model.SectionSubcommands,
		model.SectionDescription,
	}, kinds(sections))
	assert.Equal(t, []string{
		"clone     Clone a repository into a new directory",
		"init      Create an empty Git repository",
		"add       Add file contents to the index",
	}, texts(sections[1].Lines))
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

func TestSegment_Cobra(t *testing.T) {
	sections := New().Segment(model.RawHelpText{Tool: "ctl", Text: cobraHelp})

	assert.Equal(t, []model.SectionKind{
		model.SectionDescription,
		model.SectionUsage,
		model.SectionSubcommands,
		model.SectionOptions,
		model.SectionDescription,
	}, kinds(sections))
	assert.Equal(t, []string{"ctl [command]"}, texts(sections[1].Lines))
	assert.Len(t, texts(sections[2].Lines), 3)
}

func TestHeader(t *testing.T) {
	tests := []struct {
		line       string
		kind       model.SectionKind
		inline     string
		recognized bool
		ok         bool
	}{
		{"Usage: tool [OPTIONS] FILE", model.SectionUsage, "tool [OPTIONS] FILE", true, true},
		{"OPTIONS", model.SectionOptions, "", true, true},
		{"Global Flags:", model.SectionOptions, "", true, true},
		{"Output formatting options:", model.SectionOptions, "", true, true},
		{"Management Commands:", model.SectionSubcommands, "", true, true},
		{"Examples:", model.SectionUnknown, "", false, true},
		{"Print all options", "", "", false, false},
		{"Report bugs to: bugs@example.com", "", "", false, false},
		{"-v, --verbose", "", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			kind, inline, recognized, ok := Header(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.recognized, recognized)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.inline, inline)
		})
	}
}

func TestSplitLines(t *testing.T) {
	lines := SplitLines("a\r\n\tb\n  c")
	require.Len(t, lines, 3)
	assert.Equal(t, model.Line{Number: 0, Offset: 0, Indent: 0, Text: "a"}, lines[0])
	assert.Equal(t, model.Line{Number: 1, Offset: 3, Indent: 8, Text: "\tb"}, lines[1])
	assert.Equal(t, model.Line{Number: 2, Offset: 6, Indent: 2, Text: "  c"}, lines[2])
}
