package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/helpscan/internal/logging"
	"github.com/ppiankov/helpscan/internal/model"
	"github.com/ppiankov/helpscan/internal/probe"
	"github.com/ppiankov/helpscan/internal/score"
	"github.com/ppiankov/helpscan/internal/worker"
)

// Builder assembles command trees, probing listed subcommands level by level
type Builder struct {
	parser  *Parser
	prober  probe.Prober
	limiter *worker.Limiter
	config  model.DiscoveryConfig
	exclude map[string]bool
	scorer  *score.Scorer
}

// NewBuilder creates a builder. prober may be nil, which disables subcommand
// discovery; limiter may be nil.
func NewBuilder(parser *Parser, prober probe.Prober, limiter *worker.Limiter, cfg model.DiscoveryConfig) *Builder {
	exclude := make(map[string]bool, len(cfg.Exclude))
	for _, name := range cfg.Exclude {
		exclude[name] = true
	}
	return &Builder{
		parser:  parser,
		prober:  prober,
		limiter: limiter,
		config:  cfg,
		exclude: exclude,
		scorer:  score.NewScorer(),
	}
}

// task is one parsed command whose listed subcommands are still to be probed
type task struct {
	node      *model.Command
	entries   []Entry
	ancestors map[string]bool
}

// slot is a child waiting for its probe result
type slot struct {
	node      *model.Command
	ancestors map[string]bool
}

// probeJob captures the help text of one subcommand
type probeJob struct {
	builder *Builder
	path    []string
}

// probeResult is the outcome of a probeJob
type probeResult struct {
	raw model.RawHelpText
	err error
}

func (r *probeResult) GetError() error { return r.err }

// Execute waits for the tool's rate limit, then probes with the per-probe timeout
func (j *probeJob) Execute(ctx context.Context) worker.Result {
	if err := j.builder.limiter.Wait(ctx, j.path); err != nil {
		return &probeResult{err: probe.NewError(probe.KindCancelled, j.path, err)}
	}
	start := time.Now()
	raw, err := j.builder.prober.Probe(ctx, j.path, j.builder.config.ProbeTimeout)
	logging.Debug().Strs("path", j.path).Dur("duration", time.Since(start)).Err(err).Msg("probed subcommand")
	return &probeResult{raw: raw, err: err}
}

// Discover probes path itself, then builds its tree. A root that cannot be
// probed is an error; subcommands that cannot be probed are recorded in the tree.
func (b *Builder) Discover(ctx context.Context, path []string) (*model.Command, error) {
	if b.prober == nil {
		return nil, fmt.Errorf("discover %v: no prober configured", path)
	}
	if err := b.limiter.Wait(ctx, path); err != nil {
		return nil, probe.NewError(probe.KindCancelled, path, err)
	}
	raw, err := b.prober.Probe(ctx, path, b.config.ProbeTimeout)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, raw)
}

// Build parses raw as the root command and discovers its subcommands up to
// the configured depth. The returned tree is not modified afterwards.
func (b *Builder) Build(ctx context.Context, raw model.RawHelpText) (*model.Command, error) {
	res := b.parser.Parse(raw)
	root := res.Command
	root.Depth = 0

	level := []task{{node: root, entries: res.Entries, ancestors: map[string]bool{root.Name: true}}}
	for len(level) > 0 {
		level = b.expand(ctx, level)
	}
	return root, nil
}

// expand probes every listed child of the tasks in one level and returns the
// next level. Children are attached in text order before any probe runs.
func (b *Builder) expand(ctx context.Context, level []task) []task {
	var (
		jobs  []worker.Job
		slots []slot
	)
	for _, t := range level {
		for _, s := range b.children(t) {
			jobs = append(jobs, &probeJob{builder: b, path: s.node.Path})
			slots = append(slots, s)
		}
	}
	if len(jobs) == 0 {
		return nil
	}

	fanOut := b.config.FanOut
	if fanOut <= 0 {
		fanOut = 1
	}
	results := worker.Run(ctx, fanOut, jobs)

	var next []task
	for i, s := range slots {
		var r *probeResult
		if i < len(results) && results[i] != nil {
			r, _ = results[i].(*probeResult)
		}
		if r == nil {
			// Dropped by cancellation before it ran
			r = &probeResult{err: probe.NewError(probe.KindCancelled, s.node.Path, ctx.Err())}
		}
		if r.err != nil {
			b.markFailed(s.node, r.err)
			continue
		}

		res := b.parser.Parse(r.raw)
		b.fill(s.node, res.Command)
		next = append(next, task{node: s.node, entries: res.Entries, ancestors: s.ancestors})
	}
	return next
}

// children creates the child nodes of t that should be probed, attaching them
// to t.node. Excluded names, duplicates, cycles and entries past the maximum
// depth are skipped; the last two are reported as signals on the parent.
func (b *Builder) children(t task) []slot {
	if b.prober == nil || len(t.entries) == 0 {
		return nil
	}

	depth := t.node.Depth + 1
	seen := make(map[string]bool)
	var (
		slots   []slot
		limited []string
		cycles  []string
	)
	for _, e := range t.entries {
		switch {
		case seen[e.Name]:
			continue
		case b.exclude[e.Name]:
			logging.Debug().Str("command", t.node.FullCommand()).Str("subcommand", e.Name).Msg("excluded subcommand")
			continue
		case depth > b.config.MaxDepth:
			limited = append(limited, e.Name)
			continue
		case t.ancestors[e.Name]:
			cycles = append(cycles, e.Name)
			continue
		}
		seen[e.Name] = true

		path := append(append([]string(nil), t.node.Path...), e.Name)
		child := &model.Command{
			Name:        e.Name,
			Path:        path,
			Description: e.Description,
			Arguments:   []model.TypedArgument{},
			Subcommands: []*model.Command{},
			Depth:       depth,
		}
		t.node.Subcommands = append(t.node.Subcommands, child)

		ancestors := make(map[string]bool, len(t.ancestors)+1)
		for name := range t.ancestors {
			ancestors[name] = true
		}
		ancestors[e.Name] = true
		slots = append(slots, slot{node: child, ancestors: ancestors})
	}

	if len(limited) > 0 {
		t.node.Completeness.AddSignal(model.Signal{
			Type:        model.SignalDepthLimited,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("%d subcommand(s) not probed beyond depth %d", len(limited), b.config.MaxDepth),
			Data:        map[string]any{"subcommands": limited, "max_depth": b.config.MaxDepth},
		})
	}
	if len(cycles) > 0 {
		t.node.Completeness.AddSignal(model.Signal{
			Type:        model.SignalCycleSkipped,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("%d subcommand(s) named like an ancestor were not probed", len(cycles)),
			Data:        map[string]any{"subcommands": cycles},
		})
	}
	return slots
}

// fill copies a parsed command into the child node created for it, keeping
// the node's identity and the listing's description when the help has none
func (b *Builder) fill(node, parsed *model.Command) {
	node.Synopsis = parsed.Synopsis
	if parsed.Description != "" {
		node.Description = parsed.Description
	}
	node.Arguments = parsed.Arguments
	node.Completeness = parsed.Completeness
}

// markFailed records a probe failure on a child
func (b *Builder) markFailed(node *model.Command, err error) {
	node.ProbeError = err.Error()
	node.Completeness = b.scorer.ProbeFailure(err.Error())

	var perr *probe.Error
	if errors.As(err, &perr) && perr.Kind == probe.KindCancelled {
		logging.Debug().Str("command", node.FullCommand()).Msg("probe cancelled")
		return
	}
	logging.Warn().Err(err).Str("command", node.FullCommand()).Msg("subcommand probe failed")
}
