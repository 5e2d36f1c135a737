package score

import (
	"fmt"

	"github.com/ppiankov/helpscan/internal/model"
)

// LineCounts tallies how each candidate line of one help text was handled
type LineCounts struct {
	Grammar      int // Lines opening a record through a full grammar match
	Heuristic    int // Lines opening a record through fallback heuristics
	Continuation int // Lines merged into a previous record's description
	Unparsed     int // Candidate lines nothing could place
}

// Counted returns the number of lines that take part in the score
func (c LineCounts) Counted() int {
	return c.Grammar + c.Heuristic + c.Unparsed
}

// Scorer calculates the completeness score and generates signals
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate calculates the completeness of one parsed command. headerless
// reports that the segmenter found no section header.
func (s *Scorer) Calculate(counts LineCounts, args []model.TypedArgument, headerless bool) model.Completeness {
	c := model.Completeness{
		Grammar:      counts.Grammar,
		Heuristic:    counts.Heuristic,
		Continuation: counts.Continuation,
		Unparsed:     counts.Unparsed,
	}

	// 1. Grammar coverage
	coverage, coverageSignal := s.calculateCoverage(counts)
	c.Score = coverage
	c.AddSignal(coverageSignal)

	// 2. Degradation
	if counts.Heuristic > 0 {
		c.AddSignal(model.Signal{
			Type:        model.SignalHeuristicLines,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("%d line(s) parsed by fallback heuristics", counts.Heuristic),
			Data:        map[string]any{"lines": counts.Heuristic},
		})
	}
	if counts.Unparsed > 0 {
		c.AddSignal(model.Signal{
			Type:        model.SignalUnparsedLines,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("%d line(s) could not be parsed", counts.Unparsed),
			Data:        map[string]any{"lines": counts.Unparsed},
		})
	}

	// 3. Ambiguous types
	ambiguous := s.detectAmbiguity(args)
	if ambiguous.Type != "" {
		c.AddSignal(ambiguous)
	}

	if headerless {
		c.AddSignal(model.Signal{
			Type:        model.SignalNoHeaders,
			Severity:    model.SeverityInfo,
			Description: "No section headers recognized; text parsed as one unknown section",
		})
	}

	c.Confidence = s.determineConfidence(c.Score, counts.Counted(), ambiguous.Type != "")
	return c
}

// ProbeFailure returns the completeness of a command whose help could not be captured
func (s *Scorer) ProbeFailure(reason string) model.Completeness {
	c := model.Completeness{Confidence: "low"}
	c.AddSignal(model.Signal{
		Type:        model.SignalProbeFailure,
		Severity:    model.SeverityCritical,
		Description: reason,
	})
	return c
}

// calculateCoverage scores (grammar + 0.5*heuristic) / (grammar + heuristic + unparsed).
// Continuation lines are neutral.
func (s *Scorer) calculateCoverage(counts LineCounts) (float64, model.Signal) {
	total := counts.Counted()
	if total == 0 {
		return 0, model.Signal{
			Type:        model.SignalGrammarCoverage,
			Severity:    model.SeverityWarning,
			Description: "No option, argument or subcommand lines found",
			Data:        map[string]any{"lines": 0},
		}
	}

	score := (float64(counts.Grammar) + 0.5*float64(counts.Heuristic)) / float64(total)
	ratio := float64(counts.Grammar) / float64(total)

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 0.8 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalGrammarCoverage,
		Severity:    severity,
		Description: fmt.Sprintf("Grammar coverage: %d/%d (%.0f%%)", counts.Grammar, total, ratio*100),
		Data: map[string]any{
			"grammar":   counts.Grammar,
			"heuristic": counts.Heuristic,
			"unparsed":  counts.Unparsed,
			"ratio":     ratio,
			"score":     score,
			"formula":   "(grammar + 0.5*heuristic) / (grammar + heuristic + unparsed)",
		},
	}
}

// detectAmbiguity reports arguments whose type stayed complex
func (s *Scorer) detectAmbiguity(args []model.TypedArgument) model.Signal {
	var names []string
	for _, a := range args {
		if a.Type.Kind == model.TypeComplex {
			names = append(names, a.Name)
		}
	}
	if len(names) == 0 {
		return model.Signal{}
	}
	return model.Signal{
		Type:        model.SignalAmbiguousTypes,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d argument(s) with unresolved type", len(names)),
		Data:        map[string]any{"arguments": names},
	}
}

// determineConfidence determines the confidence level based on the score
func (s *Scorer) determineConfidence(score float64, counted int, ambiguous bool) string {
	if counted == 0 {
		return "low"
	}

	if score >= 0.8 && !ambiguous {
		return "high"
	} else if score >= 0.5 {
		return "medium"
	} else {
		return "low"
	}
}
