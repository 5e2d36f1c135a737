package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/helpscan/internal/pipeline"
	"github.com/ppiankov/helpscan/internal/worker"
)

var (
	batchFlags   discoveryFlags
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Describe many tools listed in a file in parallel",
	Long: `Batch describes every command line listed in a file:
- One command per line, shell quoting allowed ("git remote", "docker")
- Blank lines and lines starting with # are ignored
- Tools are described in parallel with a configurable worker count
- Each tree is written to its own file in the output directory

Example:
  helpscan batch tools.txt
  helpscan batch tools.txt --concurrency 8 --output-dir ./models
  helpscan batch tools.txt --format yaml --max-depth 1`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchFlags.register(batchCmd)
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of tools described at once")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./helpscan-models", "output directory for command trees")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := batchFlags.apply(cmd, cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  helpscan Batch Processing\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(stderr, "  Max depth:    %d\n", cfg.Discovery.MaxDepth)
	fmt.Fprintf(stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	processor := worker.NewBatchProcessor(eng.builder, concurrency)

	fmt.Fprintf(stderr, "⚙️  Describing tools with %d workers...\n\n", concurrency)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := pipeline.NewRenderer(stderr, cfg.Output.NoColor, cfg.Output.Verbose)
	ext := extension(cfg.Output.Format)

	successCount := 0
	failureCount := 0
	for _, result := range results {
		name := strings.Join(result.Path, " ")
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(stderr, "✗ %s: %v\n", name, result.Error)
			continue
		}

		path := filepath.Join(outputDir, sanitizeFilename(name)+ext)
		if err := renderer.RenderFile(result.Command, cfg.Output.Format, path); err != nil {
			failureCount++
			fmt.Fprintf(stderr, "✗ %s: %v\n", name, err)
			continue
		}

		successCount++
		c := result.Command.Completeness
		fmt.Fprintf(stderr, "✓ %s (%s %.2f, %d subcommand(s))\n", name, c.Confidence, c.Score, len(result.Command.Subcommands))
	}

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Batch Complete\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Total:     %d tools\n", len(results))
	fmt.Fprintf(stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(stderr, "\n")

	return nil
}

func extension(format string) string {
	switch strings.ToLower(format) {
	case pipeline.FormatYAML, "yml":
		return ".yaml"
	default:
		return ".json"
	}
}

// sanitizeFilename turns a command line into a file name: "git remote" is
// git-remote, "/usr/bin/ls" is ls
func sanitizeFilename(s string) string {
	fields := strings.Fields(s)
	if len(fields) > 0 {
		fields[0] = filepath.Base(fields[0])
	}
	s = strings.Join(fields, "-")

	s = strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"'", "_",
		"<", "_",
		">", "_",
		"|", "_",
	).Replace(s)

	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" || s == "." || s == ".." {
		s = "command"
	}
	return s
}
