package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/helpscan/internal/model"
	"github.com/ppiankov/helpscan/internal/probe"
	"github.com/ppiankov/helpscan/internal/worker"
)

const runHelp = `Run a container

Usage:
  ctl run [flags] IMAGE

Flags:
  -d, --detach      Run in background
  -p, --port PORT   Port to expose (default 8080)
`

const statusHelp = `Show status

Usage:
  ctl status [flags]

Flags:
  -a, --all   Show all containers
`

const stopHelp = `Stop a container

Usage:
  ctl stop [flags] CONTAINER...

Flags:
  -t, --time SECONDS   Seconds to wait before killing
`

func ctlTexts() map[string]string {
	return map[string]string{
		"ctl":        cobraHelp,
		"ctl run":    runHelp,
		"ctl status": statusHelp,
		"ctl stop":   stopHelp,
	}
}

func discovery(maxDepth int) model.DiscoveryConfig {
	return model.DiscoveryConfig{MaxDepth: maxDepth, ProbeTimeout: time.Second, FanOut: 4}
}

func childNames(c *model.Command) []string {
	var names []string
	for _, s := range c.Subcommands {
		names = append(names, s.Name)
	}
	return names
}

// delayProber answers earlier paths later, so completion order is the
// reverse of text order
type delayProber struct {
	inner  probe.Prober
	delays map[string]time.Duration

	mu     sync.Mutex
	probed []string
}

func (p *delayProber) Probe(ctx context.Context, path []string, timeout time.Duration) (model.RawHelpText, error) {
	key := strings.Join(path, " ")
	select {
	case <-time.After(p.delays[key]):
	case <-ctx.Done():
		return model.RawHelpText{}, probe.NewError(probe.KindCancelled, path, ctx.Err())
	}
	p.mu.Lock()
	p.probed = append(p.probed, key)
	p.mu.Unlock()
	return p.inner.Probe(ctx, path, timeout)
}

func TestBuilder_ChildrenInTextOrder(t *testing.T) {
	prober := &delayProber{
		inner: probe.NewStaticProber(ctlTexts()),
		delays: map[string]time.Duration{
			"ctl run":    60 * time.Millisecond,
			"ctl status": 30 * time.Millisecond,
		},
	}
	b := NewBuilder(newTestParser(), prober, nil, discovery(2))

	root, err := b.Discover(context.Background(), []string{"ctl"})
	require.NoError(t, err)

	assert.Equal(t, []string{"run", "status", "stop"}, childNames(root))
	for _, child := range root.Subcommands {
		assert.Equal(t, 1, child.Depth)
		assert.Equal(t, []string{"ctl", child.Name}, child.Path)
		assert.Empty(t, child.ProbeError)
		assert.Empty(t, child.Subcommands)
	}

	run := root.Subcommand("run")
	require.NotNil(t, run)
	assert.Equal(t, "Run a container", run.Description)
	port, ok := run.Flag("--port")
	require.True(t, ok)
	assert.Equal(t, model.TypeInteger, port.Type.Kind)
	require.NotNil(t, port.Default)
	assert.Equal(t, "8080", *port.Default)
	require.Len(t, run.Positionals(), 1)
	assert.Equal(t, "IMAGE", run.Positionals()[0].Placeholder)

	stop := root.Subcommand("stop")
	require.Len(t, stop.Positionals(), 1)
	assert.True(t, stop.Positionals()[0].Repeated)
}

func TestBuilder_DepthZeroProbesNothing(t *testing.T) {
	prober := &delayProber{inner: probe.NewStaticProber(ctlTexts())}
	b := NewBuilder(newTestParser(), prober, nil, discovery(0))

	root, err := b.Build(context.Background(), raw([]string{"ctl"}, cobraHelp))
	require.NoError(t, err)

	assert.Empty(t, root.Subcommands)
	assert.Empty(t, prober.probed)
	require.Contains(t, signalTypes(root.Completeness), model.SignalDepthLimited)
	for _, s := range root.Completeness.Signals {
		if s.Type == model.SignalDepthLimited {
			assert.Equal(t, []string{"run", "status", "stop"}, s.Data["subcommands"])
		}
	}
}

func TestBuilder_DepthIsBounded(t *testing.T) {
	texts := map[string]string{
		"a":     "Commands:\n  b   level one\n",
		"a b":   "Commands:\n  c   level two\n",
		"a b c": "Commands:\n  d   level three\n",
	}
	b := NewBuilder(newTestParser(), probe.NewStaticProber(texts), nil, discovery(2))

	root, err := b.Discover(context.Background(), []string{"a"})
	require.NoError(t, err)

	maxDepth := 0
	root.Walk(func(c *model.Command) bool {
		if c.Depth > maxDepth {
			maxDepth = c.Depth
		}
		for _, s := range c.Subcommands {
			assert.Equal(t, c.Depth+1, s.Depth)
		}
		return true
	})
	assert.Equal(t, 2, maxDepth)

	c := root.Subcommand("b").Subcommand("c")
	require.NotNil(t, c)
	assert.Contains(t, signalTypes(c.Completeness), model.SignalDepthLimited)
}

func TestBuilder_CycleGuard(t *testing.T) {
	texts := ctlTexts()
	texts["ctl run"] = "Commands:\n  run   Run again\n  ctl   Back to the top\n  logs  Show logs\n"
	texts["ctl run logs"] = "Show logs\n\nFlags:\n  -f, --follow   follow output\n"
	b := NewBuilder(newTestParser(), probe.NewStaticProber(texts), nil, discovery(5))

	root, err := b.Discover(context.Background(), []string{"ctl"})
	require.NoError(t, err)

	run := root.Subcommand("run")
	require.NotNil(t, run)
	assert.Equal(t, []string{"logs"}, childNames(run))
	require.Contains(t, signalTypes(run.Completeness), model.SignalCycleSkipped)
	for _, s := range run.Completeness.Signals {
		if s.Type == model.SignalCycleSkipped {
			assert.Equal(t, []string{"run", "ctl"}, s.Data["subcommands"])
		}
	}
}

func TestBuilder_RootGivenAsFilePath(t *testing.T) {
	texts := map[string]string{
		"/usr/bin/ctl":     cobraHelp,
		"/usr/bin/ctl run": "Commands:\n  ctl   Back to the top\n  logs  Show logs\n",
	}
	b := NewBuilder(newTestParser(), probe.NewStaticProber(texts), nil, discovery(2))

	root, err := b.Discover(context.Background(), []string{"/usr/bin/ctl"})
	require.NoError(t, err)
	assert.Equal(t, "ctl", root.Name)

	run := root.Subcommand("run")
	require.NotNil(t, run)
	assert.Equal(t, []string{"/usr/bin/ctl", "run"}, run.Path)
	assert.Equal(t, []string{"logs"}, childNames(run))
	assert.Contains(t, signalTypes(run.Completeness), model.SignalCycleSkipped)
}

func TestBuilder_ProbeFailureRecordedOnChild(t *testing.T) {
	texts := ctlTexts()
	delete(texts, "ctl status")
	b := NewBuilder(newTestParser(), probe.NewStaticProber(texts), nil, discovery(2))

	root, err := b.Discover(context.Background(), []string{"ctl"})
	require.NoError(t, err)

	assert.Equal(t, []string{"run", "status", "stop"}, childNames(root))
	status := root.Subcommand("status")
	assert.Contains(t, status.ProbeError, "not_found")
	assert.Empty(t, status.Arguments)
	assert.NotNil(t, status.Arguments)
	assert.Equal(t, 0.0, status.Completeness.Score)
	assert.Equal(t, "low", status.Completeness.Confidence)
	assert.Equal(t, []model.SignalType{model.SignalProbeFailure}, signalTypes(status.Completeness))
	assert.Equal(t, "Show status", status.Description)

	assert.Empty(t, root.Subcommand("stop").ProbeError)
}

func TestBuilder_CancelledContextRecordsChildren(t *testing.T) {
	b := NewBuilder(newTestParser(), probe.NewStaticProber(ctlTexts()), nil, discovery(2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root, err := b.Build(ctx, raw([]string{"ctl"}, cobraHelp))
	require.NoError(t, err)

	require.Len(t, root.Subcommands, 3)
	for _, child := range root.Subcommands {
		assert.Contains(t, child.ProbeError, "cancelled")
	}
}

func TestBuilder_ExcludeAndDuplicates(t *testing.T) {
	texts := ctlTexts()
	texts["ctl"] = "Commands:\n  run    Run\n  help   Help about any command\n  run    Run again\n  stop   Stop\n"
	cfg := discovery(1)
	cfg.Exclude = []string{"help"}
	b := NewBuilder(newTestParser(), probe.NewStaticProber(texts), nil, cfg)

	root, err := b.Discover(context.Background(), []string{"ctl"})
	require.NoError(t, err)
	assert.Equal(t, []string{"run", "stop"}, childNames(root))
}

func TestBuilder_RateLimiterApplies(t *testing.T) {
	limiter := worker.NewLimiter(1000, 1)
	b := NewBuilder(newTestParser(), probe.NewStaticProber(ctlTexts()), limiter, discovery(1))

	root, err := b.Discover(context.Background(), []string{"ctl"})
	require.NoError(t, err)
	assert.Len(t, root.Subcommands, 3)
}

func TestBuilder_DiscoverRootFailure(t *testing.T) {
	b := NewBuilder(newTestParser(), probe.NewStaticProber(nil), nil, discovery(1))

	_, err := b.Discover(context.Background(), []string{"missing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, probe.ErrNotFound))

	_, err = NewBuilder(newTestParser(), nil, nil, discovery(1)).Discover(context.Background(), []string{"ctl"})
	assert.Error(t, err)
}

func TestBuilder_NoProberParsesRootOnly(t *testing.T) {
	b := NewBuilder(newTestParser(), nil, nil, discovery(2))

	root, err := b.Build(context.Background(), raw([]string{"ctl"}, cobraHelp))
	require.NoError(t, err)
	assert.Empty(t, root.Subcommands)
}

func TestBuilder_Idempotent(t *testing.T) {
	b := NewBuilder(newTestParser(), probe.NewStaticProber(ctlTexts()), nil, discovery(2))

	first, err := b.Discover(context.Background(), []string{"ctl"})
	require.NoError(t, err)
	second, err := b.Discover(context.Background(), []string{"ctl"})
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("tree not idempotent (-first +second):\n%s", diff)
	}
}

func TestBuilder_ImplementsDescriber(t *testing.T) {
	var _ worker.Describer = NewBuilder(newTestParser(), nil, nil, discovery(0))
}

func TestBuilder_BatchProcessor(t *testing.T) {
	b := NewBuilder(newTestParser(), probe.NewStaticProber(ctlTexts()), nil, discovery(1))
	bp := worker.NewBatchProcessor(b, 2)

	results := bp.ProcessCommands(context.Background(), [][]string{{"ctl"}, {"missing"}, {"ctl", "run"}})
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Error)
	assert.Len(t, results[0].Command.Subcommands, 3)
	assert.Error(t, results[1].Error)
	assert.NoError(t, results[2].Error)
	assert.Equal(t, "run", results[2].Command.Name)
}
