package pipeline

import (
	"strings"

	"github.com/ppiankov/helpscan/internal/extract"
	"github.com/ppiankov/helpscan/internal/grammar"
	"github.com/ppiankov/helpscan/internal/infer"
	"github.com/ppiankov/helpscan/internal/logging"
	"github.com/ppiankov/helpscan/internal/model"
	"github.com/ppiankov/helpscan/internal/score"
	"github.com/ppiankov/helpscan/internal/segment"
)

// commandPlaceholders name "the subcommand" in usage lines such as
// "git [--version] <command> [<args>]"
var commandPlaceholders = map[string]bool{
	"command": true, "subcommand": true, "cmd": true,
	"COMMAND": true, "SUBCOMMAND": true, "CMD": true,
}

// Entry is one subcommand listed in a help text
type Entry struct {
	Name        string
	Aliases     []string
	Description string
}

// ParseResult is the command parsed from one help text, without subcommands,
// and the subcommands its listing names in text order
type ParseResult struct {
	Command *model.Command
	Entries []Entry
}

// Parser turns one help text into a Command. It holds no mutable state and is
// safe for concurrent use.
type Parser struct {
	segmenter *segment.Segmenter
	grammar   *grammar.Grammar
	extractor *extract.Extractor
	engine    *infer.Engine
	scorer    *score.Scorer
}

// NewParser creates a parser that segments descriptions with seg. seg may be nil.
func NewParser(seg extract.DescriptionSegmenter) *Parser {
	return NewParserWithGrammar(grammar.Default(), seg)
}

// NewParserWithGrammar creates a parser over a custom grammar, e.g. one built
// from a registry with extra dialects
func NewParserWithGrammar(g *grammar.Grammar, seg extract.DescriptionSegmenter) *Parser {
	return &Parser{
		segmenter: segment.New(),
		grammar:   g,
		extractor: extract.NewExtractor(seg),
		engine:    infer.NewEngine(),
		scorer:    score.NewScorer(),
	}
}

// positionalGroup is one argument listing entry; several names may share a description
type positionalGroup struct {
	records     []model.PositionalRecord
	description string
	descColumn  int
	indent      int
	end         int
}

// entryState tracks a subcommand entry while continuation lines are merged
type entryState struct {
	entry      Entry
	descColumn int
	indent     int
}

// parseState accumulates the records of one help text
type parseState struct {
	flags       []model.FlagRecord
	groups      []*positionalGroup
	usage       []model.PositionalRecord
	entries     []*entryState
	synopsis    string
	description string
	counts      score.LineCounts
}

// Parse runs segmentation, grammar matching, fallback parsing, description
// analysis and type inference over raw. It never fails: what cannot be parsed
// is counted in the command's completeness.
func (p *Parser) Parse(raw model.RawHelpText) ParseResult {
	sections := p.segmenter.Segment(raw)
	headerless := len(sections) == 1 && sections[0].Kind == model.SectionUnknown

	st := &parseState{}
	for _, sec := range sections {
		switch sec.Kind {
		case model.SectionUsage:
			p.parseUsage(st, sec)
		case model.SectionOptions, model.SectionUnknown:
			p.parseOptions(st, sec)
		case model.SectionArguments:
			p.parseArguments(st, sec)
		case model.SectionSubcommands:
			p.parseSubcommands(st, sec)
		case model.SectionDescription:
			prose, options := splitDescription(sec)
			if st.description == "" {
				st.description = joinLines(prose)
			}
			if len(options) > 0 {
				p.parseOptions(st, model.Section{Kind: model.SectionOptions, Lines: options})
			}
		}
	}

	path := append([]string(nil), raw.Path...)
	if len(path) == 0 && raw.Tool != "" {
		path = []string{raw.Tool}
	}
	cmd := &model.Command{
		Name:        raw.CommandName(),
		Path:        path,
		Synopsis:    st.synopsis,
		Description: st.description,
		Arguments:   []model.TypedArgument{},
		Subcommands: []*model.Command{},
	}

	entries := make([]Entry, 0, len(st.entries))
	for _, e := range st.entries {
		entries = append(entries, e.entry)
	}

	cmd.Arguments = append(cmd.Arguments, p.typeFlags(st.flags)...)
	cmd.Arguments = append(cmd.Arguments, p.typePositionals(st, len(entries) > 0)...)
	infer.AssignNames(cmd.Arguments)
	cmd.Completeness = p.scorer.Calculate(st.counts, cmd.Arguments, headerless)

	logging.Debug().
		Str("command", cmd.FullCommand()).
		Int("sections", len(sections)).
		Int("arguments", len(cmd.Arguments)).
		Int("subcommands", len(entries)).
		Float64("score", cmd.Completeness.Score).
		Msg("parsed help text")

	return ParseResult{Command: cmd, Entries: entries}
}

// parseUsage records the synopsis and the positionals it names. Indented
// lines continue the previous usage line; each "usage:" alternative is scanned.
func (p *Parser) parseUsage(st *parseState, sec model.Section) {
	var (
		current string
		span    model.LineSpan
	)
	flush := func() {
		if current == "" {
			return
		}
		if st.synopsis == "" {
			st.synopsis = current
		}
		for _, rec := range p.grammar.UsagePositionals(current, span) {
			st.usage = appendPositional(st.usage, rec)
		}
		current = ""
	}

	for _, l := range sec.Lines {
		text := strings.TrimSpace(l.Text)
		if text == "" {
			flush()
			continue
		}
		if lower := strings.ToLower(text); strings.HasPrefix(lower, "usage:") || strings.HasPrefix(lower, "or:") {
			flush()
			text = strings.TrimSpace(text[strings.Index(text, ":")+1:])
		}
		if current == "" {
			current = text
			span = model.LineSpan{Start: l.Number, End: l.Number}
			continue
		}
		current += " " + text
		span.End = l.Number
	}
	flush()
}

// parseOptions matches each line against the option grammar, falling back to
// token heuristics and merging continuation lines.
func (p *Parser) parseOptions(st *parseState, sec model.Section) {
	var prev *model.FlagRecord
	for _, l := range sec.Lines {
		if l.Blank() {
			// Prose paragraphs of a headerless text are separated by blank lines
			if sec.Kind == model.SectionUnknown {
				prev = nil
			}
			continue
		}
		line := candidate(l, sec.Kind)

		if prev != nil && extract.Continues(line, prev.DescColumn) {
			text := strings.TrimSpace(l.Text)
			if prev.Description == "" && prev.DescColumn == 0 {
				prev.DescColumn = l.Indent
			}
			prev.AppendDescription(text, l.Number)
			st.counts.Continuation++
			continue
		}

		if rec, ok := p.grammar.MatchOption(line); ok {
			st.flags = append(st.flags, rec)
			prev = &st.flags[len(st.flags)-1]
			st.counts.Grammar++
			logging.Debug().Int("line", l.Number).Strs("synonyms", rec.Synonyms).Msg("grammar match")
			continue
		}
		if rec, ok := extract.ParseFlag(line); ok {
			st.flags = append(st.flags, rec)
			prev = &st.flags[len(st.flags)-1]
			st.counts.Heuristic++
			logging.Debug().Int("line", l.Number).Strs("synonyms", rec.Synonyms).Msg("heuristic match")
			continue
		}

		st.counts.Unparsed++
		logging.Debug().Int("line", l.Number).Str("text", l.Text).Msg("unparsed line")
	}
}

// parseArguments reads positional listings. A line indented deeper than the
// current entry continues its description.
func (p *Parser) parseArguments(st *parseState, sec model.Section) {
	var prev *positionalGroup
	for _, l := range sec.Lines {
		if l.Blank() {
			continue
		}
		line := candidate(l, sec.Kind)

		if prev != nil && continuesEntry(l, prev.indent, prev.descColumn) {
			if prev.description == "" {
				prev.descColumn = l.Indent
			}
			prev.description = joinText(prev.description, strings.TrimSpace(l.Text))
			prev.end = l.Number
			st.counts.Continuation++
			continue
		}

		if entry, ok := p.grammar.MatchPositional(line); ok {
			prev = &positionalGroup{
				records:     entry.Records,
				description: entry.Description,
				descColumn:  entry.DescColumn,
				indent:      l.Indent,
				end:         l.Number,
			}
			st.groups = append(st.groups, prev)
			st.counts.Grammar++
			continue
		}
		if rec, ok := extract.ParsePositional(line); ok {
			prev = &positionalGroup{
				records:     []model.PositionalRecord{rec},
				description: rec.Description,
				descColumn:  rec.DescColumn,
				indent:      l.Indent,
				end:         l.Number,
			}
			st.groups = append(st.groups, prev)
			st.counts.Heuristic++
			continue
		}

		st.counts.Unparsed++
		logging.Debug().Int("line", l.Number).Str("text", l.Text).Msg("unparsed line")
	}
}

// parseSubcommands reads a command listing. Brace group headers such as
// "{run,stop}" carry no command of their own.
func (p *Parser) parseSubcommands(st *parseState, sec model.Section) {
	var prev *entryState
	for _, l := range sec.Lines {
		if l.Blank() {
			continue
		}
		line := candidate(l, sec.Kind)

		if prev != nil && continuesEntry(l, prev.indent, prev.descColumn) {
			if prev.entry.Description == "" {
				prev.descColumn = l.Indent
			}
			prev.entry.Description = joinText(prev.entry.Description, strings.TrimSpace(l.Text))
			st.counts.Continuation++
			continue
		}

		if e, ok := p.grammar.MatchEntry(line); ok {
			st.counts.Grammar++
			if e.Group {
				prev = nil
				continue
			}
			prev = st.addEntry(Entry{Name: e.Name, Aliases: e.Aliases, Description: e.Description}, e.DescColumn, l.Indent)
			continue
		}
		if name, desc, col, ok := extract.ParseEntry(line); ok {
			st.counts.Heuristic++
			prev = st.addEntry(Entry{Name: name, Description: desc}, col, l.Indent)
			continue
		}

		prev = nil
		st.counts.Unparsed++
		logging.Debug().Int("line", l.Number).Str("text", l.Text).Msg("unparsed line")
	}
}

// addEntry appends a subcommand entry; a repeated name keeps the first entry.
func (st *parseState) addEntry(e Entry, descColumn, indent int) *entryState {
	for _, existing := range st.entries {
		if existing.entry.Name == e.Name {
			return existing
		}
	}
	es := &entryState{entry: e, descColumn: descColumn, indent: indent}
	st.entries = append(st.entries, es)
	return es
}

// typeFlags infers types for flag records. Synonyms already claimed by an
// earlier record are dropped; a record left without synonyms is dropped.
func (p *Parser) typeFlags(records []model.FlagRecord) []model.TypedArgument {
	seen := make(map[string]bool)
	var out []model.TypedArgument
	for _, rec := range records {
		var synonyms []string
		for _, s := range rec.Synonyms {
			if !seen[s] {
				seen[s] = true
				synonyms = append(synonyms, s)
			}
		}
		if len(synonyms) == 0 {
			logging.Debug().Strs("synonyms", rec.Synonyms).Msg("dropping duplicate flag")
			continue
		}
		rec.Synonyms = synonyms
		out = append(out, p.engine.Flag(rec, p.extractor.Analyze(rec.Description)))
	}
	return out
}

// typePositionals merges listed positionals with those named in the usage
// line. Listed entries come first, in listing order, and take bracket
// optionality and repetition from the usage line; positionals only the usage
// names follow.
func (p *Parser) typePositionals(st *parseState, hasSubcommands bool) []model.TypedArgument {
	usage := make(map[string]model.PositionalRecord, len(st.usage))
	for _, rec := range st.usage {
		usage[normalizeName(rec.Name)] = rec
	}

	var out []model.TypedArgument
	listed := make(map[string]bool)
	for _, g := range st.groups {
		names := make([]string, len(g.records))
		for i, rec := range g.records {
			names[i] = rec.Name
		}
		descriptions := p.extractor.Split(names, g.description)
		for i, rec := range g.records {
			key := normalizeName(rec.Name)
			if listed[key] || (hasSubcommands && commandPlaceholders[rec.Name]) {
				continue
			}
			listed[key] = true
			if u, ok := usage[key]; ok {
				rec.Optional = rec.Optional || u.Optional
				rec.Repeated = rec.Repeated || u.Repeated
			}
			rec.Description = descriptions[i]
			rec.Span.End = g.end
			out = append(out, p.engine.Positional(rec, p.extractor.Analyze(rec.Description)))
		}
	}

	for _, rec := range st.usage {
		key := normalizeName(rec.Name)
		if listed[key] || (hasSubcommands && commandPlaceholders[rec.Name]) {
			continue
		}
		listed[key] = true
		out = append(out, p.engine.Positional(rec, extract.Hints{}))
	}
	return out
}

// splitDescription separates the prose of a description section from an
// option listing that follows it without a header, as in GNU coreutils help.
// The listing runs from the first indented flag line to the next unindented
// prose line.
func splitDescription(sec model.Section) (prose, options []model.Line) {
	start := -1
	for i, l := range sec.Lines {
		if l.Indent > 0 && extract.IsFlagLike(l.Text) {
			start = i
			break
		}
	}
	if start < 0 {
		return sec.Lines, nil
	}

	end := len(sec.Lines)
	for i := start + 1; i < len(sec.Lines); i++ {
		l := sec.Lines[i]
		if l.Indent == 0 && !l.Blank() && !extract.IsFlagLike(l.Text) {
			end = i
			break
		}
	}
	return sec.Lines[:start], sec.Lines[start:end]
}

func candidate(l model.Line, kind model.SectionKind) model.CandidateLine {
	return model.CandidateLine{
		Text:   l.Text,
		Kind:   kind,
		Indent: l.Indent,
		Span:   model.LineSpan{Start: l.Number, End: l.Number},
	}
}

// continuesEntry reports whether l wraps the description of a listing entry
// that opened at indent
func continuesEntry(l model.Line, indent, descColumn int) bool {
	if descColumn > 0 && l.Indent >= descColumn {
		return true
	}
	return l.Indent > indent+1 && !extract.IsFlagLike(l.Text)
}

func appendPositional(list []model.PositionalRecord, rec model.PositionalRecord) []model.PositionalRecord {
	for i, existing := range list {
		if normalizeName(existing.Name) == normalizeName(rec.Name) {
			list[i].Repeated = existing.Repeated || rec.Repeated
			return list
		}
	}
	return append(list, rec)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Trim(name, "<>[]."))
}

func joinLines(lines []model.Line) string {
	var parts []string
	for _, l := range lines {
		if text := strings.TrimSpace(l.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func joinText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
