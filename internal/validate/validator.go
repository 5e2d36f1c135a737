// Package validate checks finished command trees against the model invariants.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/helpscan/internal/model"
)

// Rule names reported in violations
const (
	RuleSynonyms     = "synonyms"
	RuleNames        = "names"
	RuleSubcommands  = "subcommands"
	RuleDepth        = "depth"
	RuleConfidence   = "confidence"
	RuleGrammarTypes = "grammar_types"
)

// Violation is one broken invariant
type Violation struct {
	Command string `json:"command" yaml:"command"`
	Rule    string `json:"rule" yaml:"rule"`
	Message string `json:"message" yaml:"message"`
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s: %s", v.Command, v.Rule, v.Message)
}

// Validator checks command trees
type Validator struct {
	maxDepth int
}

// NewValidator creates a validator for trees discovered with the given max depth
func NewValidator(maxDepth int) *Validator {
	return &Validator{maxDepth: maxDepth}
}

// Validate walks the tree and returns every violation, in tree order
func (v *Validator) Validate(root *model.Command) []Violation {
	if root == nil {
		return nil
	}
	var out []Violation
	v.validateNode(root, &out)
	return out
}

// Err joins violations into one error, or returns nil
func Err(violations []Violation) error {
	errs := make([]error, len(violations))
	for i, viol := range violations {
		errs[i] = viol
	}
	return errors.Join(errs...)
}

func (v *Validator) validateNode(cmd *model.Command, out *[]Violation) {
	name := cmd.FullCommand()
	report := func(rule, format string, args ...any) {
		*out = append(*out, Violation{Command: name, Rule: rule, Message: fmt.Sprintf(format, args...)})
	}

	if cmd.Depth > v.maxDepth {
		report(RuleDepth, "depth %d exceeds max depth %d", cmd.Depth, v.maxDepth)
	}
	if s := cmd.Completeness.Score; s < 0 || s > 1 {
		report(RuleConfidence, "completeness score %.2f outside [0,1]", s)
	}

	synonyms := make(map[string]bool)
	names := make(map[string]bool)
	for _, a := range cmd.Arguments {
		if a.Confidence < 0 || a.Confidence > 1 {
			report(RuleConfidence, "argument %q confidence %.2f outside [0,1]", a.Name, a.Confidence)
		}
		if names[a.Name] {
			report(RuleNames, "duplicate argument name %q", a.Name)
		}
		names[a.Name] = true

		if a.Kind != model.ArgumentFlag {
			continue
		}
		if len(a.Synonyms) == 0 {
			report(RuleSynonyms, "flag %q has no synonyms", a.Name)
		}
		for _, s := range a.Synonyms {
			if synonyms[s] {
				report(RuleSynonyms, "synonym %q used by more than one flag", s)
			}
			synonyms[s] = true
		}
		if unresolvedGrammarType(a) {
			report(RuleGrammarTypes, "grammar-matched flag %q left as complex: %s", a.Name, a.Ambiguity)
		}
	}

	children := make(map[string]bool)
	for _, sub := range cmd.Subcommands {
		if children[sub.Name] {
			report(RuleSubcommands, "duplicate subcommand %q", sub.Name)
		}
		children[sub.Name] = true
		if sub.Depth != cmd.Depth+1 {
			report(RuleDepth, "subcommand %q has depth %d, want %d", sub.Name, sub.Depth, cmd.Depth+1)
		}
		v.validateNode(sub, out)
	}
}

// unresolvedGrammarType reports a grammar placeholder whose type stayed
// complex without conflicting signals
func unresolvedGrammarType(a model.TypedArgument) bool {
	return a.Source == model.SourceGrammar &&
		a.Arity != model.ArityNone &&
		a.Type.Kind == model.TypeComplex &&
		!strings.HasPrefix(a.Ambiguity, "conflicting")
}
