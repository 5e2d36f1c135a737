package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/helpscan/internal/model"
)

func candidate(text string) model.CandidateLine {
	return model.CandidateLine{Text: text, Kind: model.SectionOptions, Span: model.LineSpan{Start: 3, End: 3}}
}

func TestMatchOption(t *testing.T) {
	tests := []struct {
		line          string
		synonyms      []string
		arity         model.Arity
		placeholder   string
		optionalValue bool
		choices       []string
		description   string
	}{
		{
			line:        "  -f, --foo FILE  Input file",
			synonyms:    []string{"-f", "--foo"},
			arity:       model.ArityOne,
			placeholder: "FILE",
			description: "Input file",
		},
		{
			line:     "  -h, --help",
			synonyms: []string{"-h", "--help"},
			arity:    model.ArityNone,
		},
		{
			line:          "      --color[=WHEN]  colorize the output",
			synonyms:      []string{"--color"},
			arity:         model.ArityOne,
			placeholder:   "WHEN",
			optionalValue: true,
			description:   "colorize the output",
		},
		{
			line:        "  -n, --lines=NUM   output the last NUM lines",
			synonyms:    []string{"-n", "--lines"},
			arity:       model.ArityOne,
			placeholder: "NUM",
			description: "output the last NUM lines",
		},
		{
			line:        "  --[no-]verify  bypass the pre-commit hook",
			synonyms:    []string{"--verify", "--no-verify"},
			arity:       model.ArityNone,
			description: "bypass the pre-commit hook",
		},
		{
			line:        "  --format {json,yaml,text}  output format",
			synonyms:    []string{"--format"},
			arity:       model.ArityOne,
			placeholder: "{json,yaml,text}",
			choices:     []string{"json", "yaml", "text"},
			description: "output format",
		},
		{
			line:        "  -I <dir>...  add an include directory",
			synonyms:    []string{"-I"},
			arity:       model.ArityMany,
			placeholder: "<dir>",
			description: "add an include directory",
		},
		{
			line:        "  --in FILE [FILE ...]  input files",
			synonyms:    []string{"--in"},
			arity:       model.ArityMany,
			placeholder: "FILE",
			description: "input files",
		},
		{
			line:        "  -o OUTPUT, --output OUTPUT\tdestination",
			synonyms:    []string{"-o", "--output"},
			arity:       model.ArityOne,
			placeholder: "OUTPUT",
			description: "destination",
		},
		{
			line:        "  -q | --quiet  suppress output",
			synonyms:    []string{"-q", "--quiet"},
			arity:       model.ArityNone,
			description: "suppress output",
		},
		{
			line:        "  -timeout duration",
			synonyms:    []string{"-timeout"},
			arity:       model.ArityOne,
			placeholder: "duration",
		},
		{
			line:        "  -v\tverbose output",
			synonyms:    []string{"-v"},
			arity:       model.ArityNone,
			description: "verbose output",
		},
	}

	g := Default()
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			rec, ok := g.MatchOption(candidate(tt.line))
			require.True(t, ok)
			assert.Equal(t, tt.synonyms, rec.Synonyms)
			assert.Equal(t, tt.arity, rec.Arity)
			assert.Equal(t, tt.placeholder, rec.Placeholder)
			assert.Equal(t, tt.optionalValue, rec.OptionalValue)
			assert.Equal(t, tt.choices, rec.Choices)
			assert.Equal(t, tt.description, rec.Description)
			assert.Equal(t, model.ConfidenceHigh, rec.Confidence)
			assert.Equal(t, model.SourceGrammar, rec.Source)
			assert.Equal(t, model.LineSpan{Start: 3, End: 3}, rec.Span)
		})
	}
}

func TestMatchOption_DescColumn(t *testing.T) {
	rec, ok := Default().MatchOption(candidate("  -f, --foo FILE  Input file"))
	require.True(t, ok)
	assert.Equal(t, 18, rec.DescColumn)
}

func TestMatchOption_PartialMatchDefers(t *testing.T) {
	lines := []string{
		"  -v Verbose mode",
		"  Some prose line",
		"  -x, --extra value and more",
		"",
	}
	g := Default()
	for _, line := range lines {
		_, ok := g.MatchOption(candidate(line))
		assert.False(t, ok, "line %q", line)
	}
}

func TestMatchEntry(t *testing.T) {
	g := Default()

	e, ok := g.MatchEntry(candidate("  run        Run a container"))
	require.True(t, ok)
	assert.Equal(t, "run", e.Name)
	assert.Equal(t, "Run a container", e.Description)
	assert.Equal(t, 13, e.DescColumn)

	e, ok = g.MatchEntry(candidate("  remote, rm   Manage remotes"))
	require.True(t, ok)
	assert.Equal(t, "remote", e.Name)
	assert.Equal(t, []string{"rm"}, e.Aliases)

	e, ok = g.MatchEntry(candidate("  {run,status,stop}"))
	require.True(t, ok)
	assert.True(t, e.Group)

	_, ok = g.MatchEntry(candidate("  This is prose"))
	assert.False(t, ok)
}

func TestMatchPositional(t *testing.T) {
	g := Default()

	entry, ok := g.MatchPositional(candidate("  SRC DEST   source and destination"))
	require.True(t, ok)
	require.Len(t, entry.Records, 2)
	assert.Equal(t, "SRC", entry.Records[0].Name)
	assert.Equal(t, "DEST", entry.Records[1].Name)
	assert.Equal(t, "source and destination", entry.Description)

	entry, ok = g.MatchPositional(candidate("  [FILE...]  files to read"))
	require.True(t, ok)
	require.Len(t, entry.Records, 1)
	assert.Equal(t, "FILE", entry.Records[0].Name)
	assert.True(t, entry.Records[0].Optional)
	assert.True(t, entry.Records[0].Repeated)

	entry, ok = g.MatchPositional(candidate("  <input>  the input"))
	require.True(t, ok)
	assert.Equal(t, "input", entry.Records[0].Name)
	assert.False(t, entry.Records[0].Optional)
}
