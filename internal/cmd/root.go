// Package cmd implements the corvus command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var dryRun bool

var rootCmd = &cobra.Command{
	Use:   "corvus <config-file>",
	Short: "Declarative one-shot batch crawler",
	Long: `Corvus runs one batch crawl described by a YAML or JSON manifest:
the manifest's templated request expands into concrete tasks (date
directives, {{key}} placeholders, [N..M] ranges, vars x params cross
product), a bounded worker pool fetches them, and every response body
is written to the configured sinks (local files, S3 objects).

Run metrics can be delivered to an Elasticsearch-compatible backend and
a run summary to Slack.

Example:
  corvus crawl.yaml
  corvus crawl.yaml --dry-run`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCrawl,
}

func init() {
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the manifest and print the task plan without crawling")

	// Selected manifest fields can be overridden from the environment,
	// e.g. CORVUS_MAX_THREADS=8.
	viper.SetEnvPrefix("corvus")
	for _, key := range []string{"max_threads", "rate_limit", "elasticsearch_endpoint"} {
		_ = viper.BindEnv(key)
	}
}

// Execute runs the CLI. The exit code is zero whenever orchestration
// completed, even if individual tasks failed; only a config or startup
// error is fatal.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "corvus:", err)
		os.Exit(1)
	}
}
