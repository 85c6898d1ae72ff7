package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bagage/flatisfy/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage flatisfy configuration",
}

var flagInitOutput string

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration template",
	Long:  "Writes the built-in default configuration as pretty-printed JSON, to stdout or to the file given with --output. The template is a starting point: constraints must be filled in before it validates.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.WriteDefault(flagInitOutput)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Resolve(buildOptions(rootCmd.PersistentFlags()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			exitCode = ExitConfigError
			return nil
		}

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.Resolve(buildOptions(rootCmd.PersistentFlags())); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			exitCode = ExitConfigError
			return nil
		}

		fmt.Fprintln(os.Stdout, "Configuration is valid.")
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVarP(&flagInitOutput, "output", "o", "", "file to write the template to (\"-\" or empty for stdout)")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}
