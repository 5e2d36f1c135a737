// Package infer maps placeholders and description hints to canonical types.
package infer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/helpscan/internal/extract"
	"github.com/ppiankov/helpscan/internal/model"
)

var (
	integerPattern = regexp.MustCompile(`^[-+]?[0-9]+$`)
	floatPattern   = regexp.MustCompile(`^[-+]?(?:[0-9]+\.[0-9]*|\.[0-9]+)(?:[eE][-+]?[0-9]+)?$`)
	wordPattern    = regexp.MustCompile(`^[A-Za-z][a-z]+(?:[-_][a-z]+)*$`)
)

// keyword tables, matched against the upper-cased placeholder and its last
// "_"/"-" separated segment
var (
	integerWords = set("INT", "INTEGER", "INT32", "INT64", "UINT", "UINT32", "UINT64", "NUM", "NUMBER",
		"N", "COUNT", "PORT", "LINES", "BYTES", "DEPTH", "LIMIT", "MAX", "MIN", "PID", "UID", "GID",
		"LEN", "LENGTH", "SECONDS", "SECS", "THREADS", "JOBS", "WIDTH", "HEIGHT", "SIZE", "K")
	floatWords = set("FLOAT", "FLOAT32", "FLOAT64", "DOUBLE", "DECIMAL", "REAL", "RATIO", "FRACTION",
		"RATE", "PROB", "PROBABILITY", "SCALE", "FACTOR", "THRESHOLD", "ALPHA", "WEIGHT")
	fileWords = set("FILE", "FILENAME", "FILEPATH", "FNAME", "INFILE", "OUTFILE", "ARCHIVE", "SCRIPT")
	dirWords  = set("DIR", "DIRECTORY", "FOLDER", "DIRNAME", "OUTDIR", "WORKDIR", "ROOT")
	pathWords = set("PATH", "PATHNAME", "PREFIX")
	textWords = set("STRING", "STR", "TEXT", "DURATION", "VALUE")
	boolWords = set("BOOL", "BOOLEAN")

	notCompounds = set("PROFILE", "PROFILES")
)

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// signal is one type vote from a placeholder, hint token or default value
type signal struct {
	kind     model.TypeKind
	pathKind string
}

// Engine infers canonical types for parsed records
type Engine struct{}

// NewEngine creates an inference engine
func NewEngine() *Engine {
	return &Engine{}
}

// Flag turns a flag record and its description hints into a typed argument.
func (e *Engine) Flag(rec model.FlagRecord, hints extract.Hints) model.TypedArgument {
	arg := model.TypedArgument{
		Kind:          model.ArgumentFlag,
		Synonyms:      append([]string(nil), rec.Synonyms...),
		Placeholder:   rec.Placeholder,
		Arity:         rec.Arity,
		OptionalValue: rec.OptionalValue,
		Repeated:      rec.Arity == model.ArityMany,
		Description:   rec.Description,
		Sentences:     hints.Sentences,
		Default:       hints.Default,
		Confidence:    rec.Confidence,
		Source:        rec.Source,
		Span:          rec.Span,
	}

	if rec.Arity == model.ArityNone {
		arg.Type = model.Type{Kind: model.TypeFlag}
		arg.Required = false
		return arg
	}

	choices := rec.Choices
	if len(choices) == 0 {
		choices = placeholderChoices(rec.Placeholder)
	}
	if len(choices) == 0 {
		choices = hints.Choices
	}
	arg.Type, arg.Ambiguity = resolve(rec.Placeholder, choices, hints, rec.Source)
	arg.Required = required(hints, rec.OptionalValue)
	return arg
}

// Positional turns a positional record and its hints into a typed argument.
func (e *Engine) Positional(rec model.PositionalRecord, hints extract.Hints) model.TypedArgument {
	arity := model.ArityOne
	if rec.Repeated {
		arity = model.ArityMany
	}
	arg := model.TypedArgument{
		Kind:        model.ArgumentPositional,
		Placeholder: rec.Name,
		Arity:       arity,
		Repeated:    rec.Repeated,
		Description: rec.Description,
		Sentences:   hints.Sentences,
		Default:     hints.Default,
		Confidence:  rec.Confidence,
		Source:      rec.Source,
		Span:        rec.Span,
	}

	// The name of a positional is its placeholder; an unrecognized name is a string
	arg.Type, arg.Ambiguity = resolve(rec.Name, hints.Choices, hints, model.SourceGrammar)
	arg.Required = required(hints, rec.Optional)
	return arg
}

// required applies phrasing first, then the placeholder rule: a value without
// a detected default is required unless bracket-optional.
func required(hints extract.Hints, optional bool) bool {
	if hints.Required != nil {
		return *hints.Required
	}
	return hints.Default == nil && !optional
}

// resolve picks the canonical type. Choices win. A recognized placeholder is
// weighed against the default value; description tokens only vote when the
// placeholder says nothing.
func resolve(placeholder string, choices []string, hints extract.Hints, source model.MatchSource) (model.Type, string) {
	if len(choices) >= 2 {
		return model.Type{Kind: model.TypeEnum, Choices: dedupe(choices)}, ""
	}

	var votes []signal
	if s, ok := classify(placeholder); ok {
		switch s.kind {
		case model.TypeEnum:
			return model.Type{Kind: model.TypeEnum, Choices: []string{"true", "false"}}, ""
		case model.TypeString:
			return model.Type{Kind: model.TypeString}, ""
		}
		votes = append(votes, s)
	} else {
		for _, tok := range hints.TypeTokens {
			if s, ok := classify(tok); ok && s.kind != model.TypeString && s.kind != model.TypeEnum {
				votes = append(votes, s)
			}
		}
	}
	if v, ok := defaultVote(hints.Default); ok {
		votes = append(votes, v)
	}

	kinds := distinctKinds(votes)
	switch {
	case len(kinds) == 1:
		return model.Type{Kind: votes[0].kind, PathKind: commonPathKind(votes)}, ""
	case len(kinds) == 2 && kinds[0] == model.TypeFloat && kinds[1] == model.TypeInteger:
		return model.Type{Kind: model.TypeFloat}, ""
	case len(kinds) > 1:
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = string(k)
		}
		return model.Type{Kind: model.TypeComplex},
			fmt.Sprintf("conflicting type signals: %s", strings.Join(names, ", "))
	}

	if source == model.SourceHeuristic && wordPattern.MatchString(placeholder) {
		return model.Type{Kind: model.TypeComplex},
			fmt.Sprintf("placeholder %q may be a value or the start of the description", placeholder)
	}
	if strings.TrimSpace(placeholder) == "" {
		return model.Type{Kind: model.TypeComplex}, "no placeholder or type signal"
	}
	return model.Type{Kind: model.TypeString}, ""
}

// classify maps a single placeholder-like token to a type signal.
func classify(token string) (signal, bool) {
	raw := strings.TrimSpace(token)
	if raw == "" {
		return signal{}, false
	}
	raw = strings.TrimPrefix(raw, "=")
	raw = strings.TrimSuffix(strings.TrimSuffix(raw, "..."), "…")
	raw = strings.Trim(raw, "<>[]{}()=")
	if raw == "" {
		return signal{}, false
	}

	switch {
	case integerPattern.MatchString(raw):
		return signal{kind: model.TypeInteger}, true
	case floatPattern.MatchString(raw):
		return signal{kind: model.TypeFloat}, true
	}

	upper := strings.ToUpper(raw)
	candidates := []string{upper}
	if parts := strings.FieldsFunc(upper, func(r rune) bool { return r == '_' || r == '-' || r == ' ' || r == '.' }); len(parts) > 1 {
		candidates = append(candidates, parts[len(parts)-1])
	}
	for _, c := range candidates {
		if len(c) > 3 && strings.HasSuffix(c, "S") {
			candidates = append(candidates, strings.TrimSuffix(c, "S"))
		}
	}

	for _, c := range candidates {
		switch {
		case boolWords[c]:
			return signal{kind: model.TypeEnum}, true
		case integerWords[c]:
			return signal{kind: model.TypeInteger}, true
		case floatWords[c]:
			return signal{kind: model.TypeFloat}, true
		case fileWords[c]:
			return signal{kind: model.TypePath, pathKind: model.PathFile}, true
		case dirWords[c]:
			return signal{kind: model.TypePath, pathKind: model.PathDir}, true
		case pathWords[c]:
			return signal{kind: model.TypePath}, true
		case textWords[c]:
			return signal{kind: model.TypeString}, true
		}
	}

	// Compounds such as KEYFILE or OUTPUTDIR
	switch {
	case notCompounds[upper]:
		return signal{}, false
	case strings.HasSuffix(upper, "FILE"):
		return signal{kind: model.TypePath, pathKind: model.PathFile}, true
	case strings.HasSuffix(upper, "DIR"):
		return signal{kind: model.TypePath, pathKind: model.PathDir}, true
	case strings.HasSuffix(upper, "PATH"):
		return signal{kind: model.TypePath}, true
	}
	return signal{}, false
}

// placeholderChoices reads "a|b|c" or "{a,b}" placeholders as enum choices.
func placeholderChoices(placeholder string) []string {
	p := strings.Trim(placeholder, "[]{}<>=")
	if !strings.ContainsAny(p, "|,") {
		return nil
	}
	var out []string
	for _, c := range strings.FieldsFunc(p, func(r rune) bool { return r == '|' || r == ',' }) {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	if len(out) < 2 {
		return nil
	}
	return out
}

// defaultVote classifies a numeric default value; other defaults do not vote
func defaultVote(def *string) (signal, bool) {
	if def == nil {
		return signal{}, false
	}
	switch {
	case integerPattern.MatchString(*def):
		return signal{kind: model.TypeInteger}, true
	case floatPattern.MatchString(*def):
		return signal{kind: model.TypeFloat}, true
	}
	return signal{}, false
}

func distinctKinds(votes []signal) []model.TypeKind {
	seen := make(map[model.TypeKind]bool)
	var kinds []model.TypeKind
	for _, v := range votes {
		if !seen[v.kind] {
			seen[v.kind] = true
			kinds = append(kinds, v.kind)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func commonPathKind(votes []signal) string {
	kind := ""
	for i, v := range votes {
		if i == 0 {
			kind = v.pathKind
			continue
		}
		if v.pathKind != kind {
			return ""
		}
	}
	return kind
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
