package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/helpscan/internal/model"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Renderer serializes command trees and prints human-readable summaries
type Renderer struct {
	out     io.Writer
	verbose bool
}

// NewRenderer creates a renderer writing summaries to out
func NewRenderer(out io.Writer, noColor, verbose bool) *Renderer {
	if noColor {
		color.NoColor = true
	}
	return &Renderer{out: out, verbose: verbose}
}

// Marshal serializes a tree, or a list of trees, as JSON or YAML
func (r *Renderer) Marshal(v any, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal JSON: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML, "yml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal YAML: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (supported: json, yaml)", format)
	}
}

// Render writes the serialized tree to w
func (r *Renderer) Render(w io.Writer, v any, format string) error {
	data, err := r.Marshal(v, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// RenderFile writes the serialized tree to path
func (r *Renderer) RenderFile(v any, format, path string) error {
	data, err := r.Marshal(v, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// RenderSummary prints the tree with one line per command and, when verbose,
// one line per argument
func (r *Renderer) RenderSummary(cmd *model.Command) {
	cmd.Walk(func(c *model.Command) bool {
		r.summarizeCommand(c)
		return true
	})
}

func (r *Renderer) summarizeCommand(c *model.Command) {
	indent := strings.Repeat("  ", c.Depth)
	name := color.New(color.Bold).Sprint(c.FullCommand())

	if c.ProbeError != "" {
		fmt.Fprintf(r.out, "%s%s %s\n", indent, name, color.RedString("✗ %s", c.ProbeError))
		return
	}

	fmt.Fprintf(r.out, "%s%s %s %s\n", indent, name,
		confidenceColor(c.Completeness.Confidence).Sprintf("[%s %.2f]", c.Completeness.Confidence, c.Completeness.Score),
		color.HiBlackString("%d flag(s), %d positional(s), %d subcommand(s)",
			len(c.Flags()), len(c.Positionals()), len(c.Subcommands)))

	if !r.verbose {
		return
	}
	for _, a := range c.Arguments {
		label := a.Name
		if len(a.Synonyms) > 0 {
			label = strings.Join(a.Synonyms, ", ")
		}
		line := fmt.Sprintf("%s  %s %s", indent, label, color.CyanString(a.Type.String()))
		if a.Required {
			line += color.YellowString(" required")
		}
		if a.Default != nil {
			line += color.HiBlackString(" default=%s", *a.Default)
		}
		if a.Ambiguity != "" {
			line += color.MagentaString(" (%s)", a.Ambiguity)
		}
		fmt.Fprintln(r.out, line)
	}
	for _, s := range c.Completeness.Signals {
		if s.Severity == model.SeverityInfo {
			continue
		}
		fmt.Fprintf(r.out, "%s  %s\n", indent, color.YellowString("! %s", s.Description))
	}
}

func confidenceColor(confidence string) *color.Color {
	switch confidence {
	case "high":
		return color.New(color.FgGreen)
	case "medium":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
