package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/helpscan/internal/cache"
	"github.com/ppiankov/helpscan/internal/llm"
	"github.com/ppiankov/helpscan/internal/model"
	"github.com/ppiankov/helpscan/internal/pipeline"
	"github.com/ppiankov/helpscan/internal/probe"
	"github.com/ppiankov/helpscan/internal/worker"
)

// discoveryFlags are shared by the commands that build command trees
type discoveryFlags struct {
	maxDepth     int
	probeTimeout time.Duration
	fanOut       int
	exclude      []string
	helpDir      string
	strictExit   bool
	noCache      bool
	nlpBackend   string
	llmProvider  string
	llmModel     string
	format       string
}

func (f *discoveryFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", 2, "maximum subcommand depth to probe (0 parses only the tool itself)")
	cmd.Flags().DurationVar(&f.probeTimeout, "probe-timeout", 5*time.Second, "timeout for each help probe")
	cmd.Flags().IntVar(&f.fanOut, "fan-out", 0, "concurrent probes (default: number of CPUs)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "subcommand names never probed (e.g. help,completion)")
	cmd.Flags().StringVar(&f.helpDir, "help-dir", "", "read saved help files from this directory instead of running tools")
	cmd.Flags().BoolVar(&f.strictExit, "strict-exit", false, "treat a non-zero exit status of the help probe as a failure")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the probe and segmentation cache")
	cmd.Flags().StringVar(&f.nlpBackend, "nlp", "", "description segmentation backend (punkt, simple, llm)")
	cmd.Flags().StringVar(&f.llmProvider, "llm-provider", "", "LLM provider for --nlp llm (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&f.llmModel, "llm-model", "", "LLM model name")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format (json, yaml)")
}

// apply overrides cfg with the flags the user set explicitly
func (f *discoveryFlags) apply(cmd *cobra.Command, cfg *model.Config) error {
	flags := cmd.Flags()
	if flags.Changed("max-depth") {
		cfg.Discovery.MaxDepth = f.maxDepth
	}
	if flags.Changed("probe-timeout") {
		cfg.Discovery.ProbeTimeout = f.probeTimeout
	}
	if flags.Changed("fan-out") {
		cfg.Discovery.FanOut = f.fanOut
	}
	if flags.Changed("exclude") {
		cfg.Discovery.Exclude = f.exclude
	}
	if flags.Changed("help-dir") {
		cfg.Probe.HelpDir = f.helpDir
	}
	if flags.Changed("strict-exit") {
		cfg.Probe.StrictExit = f.strictExit
	}
	if f.noCache {
		cfg.Cache.Enabled = false
	}
	if f.nlpBackend != "" {
		cfg.NLP.Backend = f.nlpBackend
	}
	if f.llmProvider != "" {
		cfg.LLM.Provider = f.llmProvider
		applyProviderEnv(&cfg.LLM)
	}
	if f.llmModel != "" {
		cfg.LLM.Model = f.llmModel
	}
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if cfg.Discovery.MaxDepth < 0 {
		return fmt.Errorf("--max-depth must not be negative, got %d", cfg.Discovery.MaxDepth)
	}
	return nil
}

// engine holds the components wired from one config
type engine struct {
	config  *model.Config
	cache   cache.Cache
	parser  *pipeline.Parser
	builder *pipeline.Builder
}

// newEngine wires cache, segmenter, parser, prober, limiter and builder
func newEngine(cfg *model.Config) (*engine, error) {
	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	seg, err := llm.NewDescriptionSegmenter(cfg, c)
	if err != nil {
		closeCache(c)
		return nil, fmt.Errorf("create description segmenter: %w", err)
	}
	parser := pipeline.NewParser(seg)

	var prober probe.Prober
	if cfg.Probe.HelpDir != "" {
		prober = probe.NewDirProber(cfg.Probe.HelpDir)
	} else {
		prober = probe.NewCachingProber(probe.NewExecProber(cfg.Probe), c, cfg.Cache.DiskTTL)
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.ProbesPerSecond, cfg.RateLimiting.BurstSize)

	return &engine{
		config:  cfg,
		cache:   c,
		parser:  parser,
		builder: pipeline.NewBuilder(parser, prober, limiter, cfg.Discovery),
	}, nil
}

// Close releases the cache
func (e *engine) Close() {
	closeCache(e.cache)
}

func closeCache(c cache.Cache) {
	if closer, ok := c.(io.Closer); ok {
		_ = closer.Close()
	}
}
