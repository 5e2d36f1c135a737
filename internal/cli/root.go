package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/helpscan/internal/logging"
	"github.com/ppiankov/helpscan/internal/model"
)

// Version is set at build time
var Version = "0.1.0"

var (
	cfgFile   string
	verbose   bool
	logLevel  string
	logPretty bool
	noColor   bool
)

// Keys that have no value in the default config and so must be bound to the
// environment explicitly
var envOnlyKeys = []string{
	"discovery.exclude",
	"probe.help_dir",
	"llm.provider",
	"llm.model",
	"llm.api_key",
	"llm.base_url",
	"llm.http_proxy",
	"llm.https_proxy",
	"llm.no_proxy",
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "helpscan",
	Short: "helpscan - compile --help output into a typed command model",
	Long: `helpscan turns the free-form help text printed by command-line tools
into a structured description of each command: its flags and positional
arguments with inferred types, and its subcommands discovered recursively.

Every command in the tree carries a completeness score saying how much of
its help text was understood by the grammar, guessed by heuristics, or left
unparsed.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "helpscan v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.helpscan/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (implies --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "log-pretty", false, "human-readable log output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	bindFlags()

	rootCmd.AddCommand(versionCmd)
}

// bindFlags binds the global flags to viper keys
func bindFlags() {
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))
	_ = viper.BindPFlag("output.no_color", rootCmd.PersistentFlags().Lookup("no-color"))
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := setDefaults(model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading defaults: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".helpscan"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// HELPSCAN_DISCOVERY_MAX_DEPTH overrides discovery.max_depth
	viper.SetEnvPrefix("HELPSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envOnlyKeys {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
		return
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key of cfg with viper so that environment
// variables and Unmarshal see the complete key set
func setDefaults(cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	setDefaultTree("", tree)
	return nil
}

func setDefaultTree(prefix string, tree map[string]any) {
	for key, value := range tree {
		if prefix != "" {
			key = prefix + "." + key
		}
		if sub, ok := value.(map[string]any); ok {
			setDefaultTree(key, sub)
			continue
		}
		viper.SetDefault(key, value)
	}
}

// loadConfig decodes the merged flags, environment, config file and defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	applyProviderEnv(&cfg.LLM)
	return cfg, nil
}

// applyProviderEnv fills the API key and base URL from the provider's own
// environment variables when the config leaves them empty
func applyProviderEnv(cfg *model.LLMConfig) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "ollama":
		if cfg.BaseURL == "" {
			cfg.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
}

func initLogging() {
	level := viper.GetString("logging.level")
	if verbose {
		level = "debug"
	}
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(level)
	cfg.Pretty = viper.GetBool("logging.pretty")
	logging.Init(cfg)
}
