package model

import (
	"runtime"
	"time"
)

// Config holds all helpscan settings
type Config struct {
	Discovery    DiscoveryConfig `json:"discovery" yaml:"discovery" mapstructure:"discovery"`
	Probe        ProbeConfig     `json:"probe" yaml:"probe" mapstructure:"probe"`
	RateLimiting RateLimitConfig `json:"rate_limiting" yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig     `json:"cache" yaml:"cache" mapstructure:"cache"`
	NLP          NLPConfig       `json:"nlp" yaml:"nlp" mapstructure:"nlp"`
	LLM          LLMConfig       `json:"llm" yaml:"llm" mapstructure:"llm"`
	Output       OutputConfig    `json:"output" yaml:"output" mapstructure:"output"`
	Logging      LoggingConfig   `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// DiscoveryConfig bounds recursive subcommand discovery
type DiscoveryConfig struct {
	MaxDepth     int           `json:"max_depth" yaml:"max_depth" mapstructure:"max_depth"`             // 0 disables subcommand discovery
	ProbeTimeout time.Duration `json:"probe_timeout" yaml:"probe_timeout" mapstructure:"probe_timeout"` // Per-probe timeout
	FanOut       int           `json:"fan_out" yaml:"fan_out" mapstructure:"fan_out"`                   // Concurrent probes
	Exclude      []string      `json:"exclude,omitempty" yaml:"exclude,omitempty" mapstructure:"exclude"`
}

// ProbeConfig controls how help text is captured from processes
type ProbeConfig struct {
	HelpFlags      []string `json:"help_flags" yaml:"help_flags" mapstructure:"help_flags"` // Tried in order
	StrictExit     bool     `json:"strict_exit" yaml:"strict_exit" mapstructure:"strict_exit"`
	MaxOutputBytes int64    `json:"max_output_bytes" yaml:"max_output_bytes" mapstructure:"max_output_bytes"`
	HelpDir        string   `json:"help_dir,omitempty" yaml:"help_dir,omitempty" mapstructure:"help_dir"` // Read saved help files instead of running tools
}

// RateLimitConfig limits probes per tool
type RateLimitConfig struct {
	ProbesPerSecond float64 `json:"probes_per_second" yaml:"probes_per_second" mapstructure:"probes_per_second"` // 0 disables
	BurstSize       int     `json:"burst_size" yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig controls probe and segmentation caching
type CacheConfig struct {
	Enabled   bool          `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Backend   string        `json:"backend" yaml:"backend" mapstructure:"backend"` // disk or sqlite
	Dir       string        `json:"dir" yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `json:"memory_ttl" yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `json:"disk_ttl" yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// NLPConfig selects the description segmentation backend
type NLPConfig struct {
	Backend string `json:"backend" yaml:"backend" mapstructure:"backend"` // punkt, simple, llm
}

// LLMConfig configures the optional LLM segmentation backend
type LLMConfig struct {
	Provider   string `json:"provider,omitempty" yaml:"provider,omitempty" mapstructure:"provider"` // openai, anthropic, ollama
	Model      string `json:"model,omitempty" yaml:"model,omitempty" mapstructure:"model"`
	APIKey     string `json:"-" yaml:"-" mapstructure:"api_key"` // Never serialized
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    int    `json:"timeout" yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens  int    `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxRetries int    `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
	HTTPProxy  string `json:"http_proxy,omitempty" yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `json:"https_proxy,omitempty" yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `json:"no_proxy,omitempty" yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Format  string `json:"format" yaml:"format" mapstructure:"format"` // json or yaml
	Verbose bool   `json:"verbose" yaml:"verbose" mapstructure:"verbose"`
	NoColor bool   `json:"no_color" yaml:"no_color" mapstructure:"no_color"`
}

// LoggingConfig controls the structured logger
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Discovery: DiscoveryConfig{
			MaxDepth:     2,
			ProbeTimeout: 5 * time.Second,
			FanOut:       runtime.NumCPU(),
		},
		Probe: ProbeConfig{
			HelpFlags:      []string{"--help", "-h"},
			StrictExit:     false,
			MaxOutputBytes: 1 << 20,
		},
		RateLimiting: RateLimitConfig{
			ProbesPerSecond: 0,
			BurstSize:       5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Backend:   "disk",
			Dir:       defaultCacheDir(),
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		NLP: NLPConfig{
			Backend: "punkt",
		},
		LLM: LLMConfig{
			Timeout:    30,
			MaxTokens:  1000,
			MaxRetries: 3,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}
