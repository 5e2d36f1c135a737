package score

import (
	"testing"

	"github.com/ppiankov/helpscan/internal/model"
)

func hasSignal(c model.Completeness, t model.SignalType) bool {
	for _, s := range c.Signals {
		if s.Type == t {
			return true
		}
	}
	return false
}

func TestScorer_Calculate_AllGrammar(t *testing.T) {
	scorer := NewScorer()

	result := scorer.Calculate(LineCounts{Grammar: 10, Continuation: 4}, nil, false)

	if result.Score != 1.0 {
		t.Errorf("Expected score 1.0, got %f", result.Score)
	}
	if result.Confidence != "high" {
		t.Errorf("Expected high confidence, got %s", result.Confidence)
	}
	if result.Continuation != 4 {
		t.Errorf("Expected 4 continuation lines, got %d", result.Continuation)
	}
	if !hasSignal(result, model.SignalGrammarCoverage) {
		t.Error("Expected grammar coverage signal")
	}
	if hasSignal(result, model.SignalHeuristicLines) || hasSignal(result, model.SignalUnparsedLines) {
		t.Error("Expected no degradation signals")
	}
}

func TestScorer_Calculate_Empty(t *testing.T) {
	scorer := NewScorer()

	result := scorer.Calculate(LineCounts{}, nil, true)

	if result.Score != 0 {
		t.Errorf("Expected score 0 for empty input, got %f", result.Score)
	}
	if result.Confidence != "low" {
		t.Errorf("Expected low confidence for empty input, got %s", result.Confidence)
	}
	if !hasSignal(result, model.SignalNoHeaders) {
		t.Error("Expected no_headers signal")
	}
}

func TestScorer_Calculate_Degraded(t *testing.T) {
	scorer := NewScorer()

	// (2 + 0.5*4) / (2 + 4 + 2) = 0.5
	result := scorer.Calculate(LineCounts{Grammar: 2, Heuristic: 4, Unparsed: 2}, nil, false)

	if result.Score != 0.5 {
		t.Errorf("Expected score 0.5, got %f", result.Score)
	}
	if result.Confidence != "medium" {
		t.Errorf("Expected medium confidence, got %s", result.Confidence)
	}
	if !hasSignal(result, model.SignalHeuristicLines) {
		t.Error("Expected heuristic_lines signal")
	}
	if !hasSignal(result, model.SignalUnparsedLines) {
		t.Error("Expected unparsed_lines signal")
	}
}

func TestScorer_Calculate_AmbiguousTypesLowerConfidence(t *testing.T) {
	scorer := NewScorer()

	args := []model.TypedArgument{
		{Name: "foo", Type: model.Type{Kind: model.TypeString}},
		{Name: "bar", Type: model.Type{Kind: model.TypeComplex}},
	}
	result := scorer.Calculate(LineCounts{Grammar: 2}, args, false)

	if result.Confidence != "medium" {
		t.Errorf("Expected medium confidence with ambiguous types, got %s", result.Confidence)
	}
	found := false
	for _, s := range result.Signals {
		if s.Type == model.SignalAmbiguousTypes {
			found = true
			names, _ := s.Data["arguments"].([]string)
			if len(names) != 1 || names[0] != "bar" {
				t.Errorf("Expected ambiguous argument [bar], got %v", names)
			}
		}
	}
	if !found {
		t.Error("Expected ambiguous_types signal")
	}
}

func TestScorer_ProbeFailure(t *testing.T) {
	result := NewScorer().ProbeFailure("timeout")

	if result.Score != 0 || result.Confidence != "low" {
		t.Errorf("Expected zero score and low confidence, got %f/%s", result.Score, result.Confidence)
	}
	if !hasSignal(result, model.SignalProbeFailure) {
		t.Error("Expected probe_failure signal")
	}
}
