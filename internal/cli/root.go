package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bagage/flatisfy/internal/config"
)

const version = "0.1.0"

// Exit codes returned by Run.
const (
	ExitSuccess     = 0
	ExitConfigError = 1
	ExitUsageError  = 2
)

// Persistent flag values. Whether a flag was actually given is tracked by
// the flag set itself; see buildOptions.
var (
	flagConfig     string
	flagPasses     int
	flagMaxEntries int
	flagPort       int
	flagHost       string
	flagDataDir    string
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "flatisfy",
	Short: "Hunt flats across housing sites with configurable filters",
	Long:  "Flatisfy resolves its layered configuration (defaults, config file, CLI flags), validates it against the constraint schema, and manages the configuration lifecycle.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	},
}

func init() {
	addResolveFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// addResolveFlags registers the flags that feed config.Resolve. Factored
// out so tests can parse them on a fresh flag set.
func addResolveFlags(flags *pflag.FlagSet) {
	flags.StringVar(&flagConfig, "config", "", "path to a JSON configuration file")
	flags.IntVar(&flagPasses, "passes", 0, "number of filtering passes to run (0-3)")
	flags.IntVar(&flagMaxEntries, "max-entries", 0, "maximum number of listings to fetch")
	flags.IntVar(&flagPort, "port", 0, "web server port")
	flags.StringVar(&flagHost, "host", "", "web server bind address")
	flags.StringVar(&flagDataDir, "data-dir", "", "directory where flatisfy stores its data")
}

// buildOptions converts the parsed flags into config.Options, leaving a
// field nil when the corresponding flag was not given so that absence means
// "do not override".
func buildOptions(flags *pflag.FlagSet) *config.Options {
	opts := &config.Options{ConfigFile: flagConfig}
	if flags.Changed("passes") {
		opts.Passes = &flagPasses
	}
	if flags.Changed("max-entries") {
		opts.MaxEntries = &flagMaxEntries
	}
	if flags.Changed("port") {
		opts.Port = &flagPort
	}
	if flags.Changed("host") {
		opts.Host = &flagHost
	}
	if flags.Changed("data-dir") {
		opts.DataDir = &flagDataDir
	}
	return opts
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print flatisfy version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "flatisfy version %s\n", version)
	},
}
