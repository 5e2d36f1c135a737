package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/ppiankov/helpscan/internal/model"
)

// Describer builds the command tree of one tool invocation path
type Describer interface {
	Discover(ctx context.Context, path []string) (*model.Command, error)
}

// DescribeJob represents one tool to describe
type DescribeJob struct {
	Path      []string
	Describer Describer
}

// Execute executes the describe job
func (j *DescribeJob) Execute(ctx context.Context) Result {
	cmd, err := j.Describer.Discover(ctx, j.Path)
	if err != nil {
		return &DescribeResult{
			Path:    j.Path,
			Command: nil,
			Error:   err,
		}
	}
	return &DescribeResult{
		Path:    j.Path,
		Command: cmd,
		Error:   nil,
	}
}

// DescribeResult represents the result of a describe job
type DescribeResult struct {
	Path    []string
	Command *model.Command
	Error   error
}

// GetError returns the error from the describe result
func (r *DescribeResult) GetError() error {
	return r.Error
}

// BatchProcessor describes multiple tools concurrently
type BatchProcessor struct {
	describer   Describer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(describer Describer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		describer:   describer,
		concurrency: concurrency,
	}
}

// ProcessCommands describes each command path concurrently. Results follow
// the input order; a tool skipped by cancellation reports the context error.
func (b *BatchProcessor) ProcessCommands(ctx context.Context, paths [][]string) []*DescribeResult {
	if len(paths) == 0 {
		return []*DescribeResult{}
	}

	jobs := make([]Job, len(paths))
	for i, path := range paths {
		jobs[i] = &DescribeJob{
			Path:      path,
			Describer: b.describer,
		}
	}

	results := Run(ctx, b.concurrency, jobs)

	out := make([]*DescribeResult, len(results))
	for i, result := range results {
		if result == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &DescribeResult{Path: paths[i], Error: err}
			continue
		}
		out[i] = result.(*DescribeResult)
	}

	return out
}

// ProcessFile reads command lines from a file and describes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*DescribeResult, error) {
	paths, err := ReadCommandsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read commands: %w", err)
	}

	return b.ProcessCommands(ctx, paths), nil
}

// ReadCommandsFromFile reads command lines from a file, one per line. Lines are
// split with shell quoting rules, so "my tool" sub is a two-element path.
func ReadCommandsFromFile(filePath string) ([][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths [][]string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		path, err := ParseCommandLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		if len(path) == 0 {
			continue
		}

		// Deduplicate commands
		key := strings.Join(path, "\x00")
		if !seen[key] {
			seen[key] = true
			paths = append(paths, path)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}

// ParseCommandLine splits one command line into an argument path
func ParseCommandLine(line string) ([]string, error) {
	args, err := shellwords.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", line, err)
	}
	return args, nil
}
