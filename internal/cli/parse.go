package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/helpscan/internal/llm"
	"github.com/ppiankov/helpscan/internal/logging"
	"github.com/ppiankov/helpscan/internal/model"
	"github.com/ppiankov/helpscan/internal/pipeline"
	"github.com/ppiankov/helpscan/internal/probe"
	"github.com/ppiankov/helpscan/internal/validate"
)

var (
	parseFlags   discoveryFlags
	parseName    string
	parseOutput  string
	parseSummary bool
	parseCheck   bool
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file>...",
	Short: "Parse saved help text without running any tool",
	Long: `Parse reads help text saved to files ("-" reads stdin) and compiles
each into a command model. Files are parsed concurrently.

The tool name defaults to the file name without its extension. With
--help-dir, listed subcommands are looked up in that directory as
"<tool>_<sub>.txt" and discovered recursively; otherwise only the file itself
is parsed.

Example:
  helpscan parse git.txt
  ls --help | helpscan parse - --name ls
  helpscan parse saved/*.txt --format yaml
  helpscan parse saved/kubectl.txt --help-dir saved --max-depth 3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseFlags.register(parseCmd)
	parseCmd.Flags().StringVar(&parseName, "name", "", "tool name (default: file name without extension)")
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "write the result to this file instead of stdout")
	parseCmd.Flags().BoolVar(&parseSummary, "summary", false, "print a tree summary to stderr")
	parseCmd.Flags().BoolVar(&parseCheck, "check", false, "validate the trees and fail on broken invariants")
}

func runParse(cmd *cobra.Command, args []string) error {
	if parseName != "" && len(args) > 1 {
		return fmt.Errorf("--name applies to a single file, got %d files", len(args))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := parseFlags.apply(cmd, cfg); err != nil {
		return err
	}
	// Saved help is already on disk
	cfg.Cache.Enabled = cfg.Cache.Enabled && strings.EqualFold(cfg.NLP.Backend, llm.BackendLLM)

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	builder := eng.builder
	if cfg.Probe.HelpDir == "" {
		builder = pipeline.NewBuilder(eng.parser, nil, nil, cfg.Discovery)
	}

	trees, err := parseFiles(cmd.Context(), builder, cmd.InOrStdin(), args, parseName, cfg.Discovery.FanOut)
	if err != nil {
		return err
	}

	if len(trees) == 1 {
		return emit(cmd, cfg, trees[0], parseOutput, parseSummary, parseCheck)
	}
	return emitAll(cmd, cfg, trees)
}

// parseFiles builds one tree per file, in argument order
func parseFiles(ctx context.Context, builder *pipeline.Builder, stdin io.Reader, files []string, name string, limit int) ([]*model.Command, error) {
	trees := make([]*model.Command, len(files))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			raw, err := readHelpFile(stdin, file, name)
			if err != nil {
				return err
			}
			start := time.Now()
			tree, err := builder.Build(ctx, raw)
			if err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}
			logging.Debug().Str("file", file).Dur("duration", time.Since(start)).Msg("parsed help file")
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trees, nil
}

// readHelpFile loads saved help text as if it had been probed from the tool
func readHelpFile(stdin io.Reader, file, name string) (model.RawHelpText, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return model.RawHelpText{}, fmt.Errorf("read %s: %w", file, err)
	}

	if name == "" {
		name = toolName(file)
	}
	text := probe.CleanOutput(string(data))
	if strings.TrimSpace(text) == "" {
		return model.RawHelpText{}, probe.NewError(probe.KindEmptyOutput, []string{name}, nil)
	}
	return model.RawHelpText{Tool: name, Path: []string{name}, Text: text}, nil
}

// toolName derives the tool name from a saved help file: "git.txt" is git
func toolName(file string) string {
	if file == "-" {
		return "stdin"
	}
	base := filepath.Base(file)
	for _, ext := range []string{".txt", ".help"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// emitAll writes several trees as one list
func emitAll(cmd *cobra.Command, cfg *model.Config, trees []*model.Command) error {
	renderer := pipeline.NewRenderer(cmd.ErrOrStderr(), cfg.Output.NoColor, cfg.Output.Verbose)

	if parseOutput != "" {
		if err := renderer.RenderFile(trees, cfg.Output.Format, parseOutput); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %d trees to %s\n", len(trees), parseOutput)
	} else if err := renderer.Render(cmd.OutOrStdout(), trees, cfg.Output.Format); err != nil {
		return err
	}

	var violations []validate.Violation
	for _, tree := range trees {
		if parseSummary || cfg.Output.Verbose {
			renderer.RenderSummary(tree)
		}
		violations = append(violations, validate.NewValidator(cfg.Discovery.MaxDepth).Validate(tree)...)
	}
	if parseCheck {
		return validate.Err(violations)
	}
	return nil
}
