// Intakectl drives the intake form from the command line.
//
// It submits an intake described in a YAML file through the configured
// delivery provider, prints the form catalog, and produces admin
// credentials for the HTTP service.
//
// Usage:
//
//	intakectl [command] [flags]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var envFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "intakectl",
	Short: "Website intake form utility",
	Long: `A command line companion to the intake service.

Submits intake forms from YAML files, prints the feature catalog,
and generates admin API keys and tokens.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Dotenv file read before the environment")
}
