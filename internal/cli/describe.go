package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/helpscan/internal/model"
	"github.com/ppiankov/helpscan/internal/pipeline"
	"github.com/ppiankov/helpscan/internal/validate"
	"github.com/ppiankov/helpscan/internal/worker"
)

var (
	describeFlags   discoveryFlags
	describeOutput  string
	describeTimeout time.Duration
	describeSummary bool
	describeCheck   bool
)

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe <tool> [subcommand...]",
	Short: "Describe a tool by running it with --help",
	Long: `Describe runs the tool with --help (then -h), parses the output into a
typed command model, and probes every listed subcommand the same way up to
--max-depth levels deep.

A tool path with several words describes that subcommand as the root.

Example:
  helpscan describe git
  helpscan describe docker container --max-depth 1 --format yaml
  helpscan describe kubectl --exclude help,completion --summary
  helpscan describe mytool --help-dir ./saved-help --check`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)

	describeFlags.register(describeCmd)
	describeCmd.Flags().StringVarP(&describeOutput, "output", "o", "", "write the tree to this file instead of stdout")
	describeCmd.Flags().DurationVar(&describeTimeout, "timeout", 2*time.Minute, "overall discovery timeout")
	describeCmd.Flags().BoolVar(&describeSummary, "summary", false, "print a tree summary to stderr")
	describeCmd.Flags().BoolVar(&describeCheck, "check", false, "validate the tree and fail on broken invariants")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := describeFlags.apply(cmd, cfg); err != nil {
		return err
	}

	path, err := commandPath(args)
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), describeTimeout)
	defer cancel()

	start := time.Now()
	root, err := eng.builder.Discover(ctx, path)
	if err != nil {
		return fmt.Errorf("describe %s: %w", strings.Join(path, " "), err)
	}
	if cfg.Output.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Described %s in %v\n", root.FullCommand(), time.Since(start).Round(time.Millisecond))
	}

	return emit(cmd, cfg, root, describeOutput, describeSummary, describeCheck)
}

// commandPath accepts the tool path as separate arguments or as one quoted
// command line, e.g. "git remote"
func commandPath(args []string) ([]string, error) {
	if len(args) != 1 {
		return args, nil
	}
	path, err := worker.ParseCommandLine(args[0])
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return path, nil
}

// emit writes the tree, then the optional summary and validation
func emit(cmd *cobra.Command, cfg *model.Config, root *model.Command, output string, summary, check bool) error {
	renderer := pipeline.NewRenderer(cmd.ErrOrStderr(), cfg.Output.NoColor, cfg.Output.Verbose)

	if output != "" {
		if err := renderer.RenderFile(root, cfg.Output.Format, output); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", output)
	} else if err := renderer.Render(cmd.OutOrStdout(), root, cfg.Output.Format); err != nil {
		return err
	}

	if summary || cfg.Output.Verbose {
		renderer.RenderSummary(root)
	}

	if check {
		return validate.Err(validate.NewValidator(cfg.Discovery.MaxDepth).Validate(root))
	}
	return nil
}
