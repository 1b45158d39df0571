package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/corvus-crawler/corvus/internal/observability"
	"github.com/corvus-crawler/corvus/pkg/fetch"
	"github.com/corvus-crawler/corvus/pkg/manifest"
	"github.com/corvus-crawler/corvus/pkg/metrics"
	"github.com/corvus-crawler/corvus/pkg/notify"
	"github.com/corvus-crawler/corvus/pkg/persist"
	"github.com/corvus-crawler/corvus/pkg/runner"
)

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	m, err := manifest.Load(args[0])
	if err != nil {
		return err
	}
	applyEnvOverrides(m)

	if err := observability.Init(m.Log); err != nil {
		return err
	}
	defer observability.Sync()
	log := observability.CLILogger

	notifier := buildNotifier(m, log)
	inserter := buildInserter(m, log)

	start := time.Now()
	log.Info("corvus run start",
		zap.String("name", m.Name),
		zap.Int("max_threads", m.MaxThreads))

	tasks, err := runner.Expand(m, start)
	if err != nil {
		log.Error("failed to create crawl tasks", zap.Error(err))
		_ = notifier.Notify(notify.LevelError, "failed to create crawl tasks", err.Error())
		return err
	}

	if dryRun {
		printPlan(m, tasks)
		return nil
	}

	if err := inserter.EnsureTemplates(ctx); err != nil {
		log.Error("failed to create index templates", zap.Error(err))
	}

	dispatcher := persist.NewDispatcher(persist.NewLocalSink(), buildS3Sink(m))
	exec := runner.NewExecutor(fetch.NewClient(), dispatcher)
	pool := runner.NewPool(m.MaxThreads).WithRateLimit(m.RateLimit)

	log.Info("running crawl tasks",
		zap.Int("tasks", len(tasks)),
		zap.Int("threads", m.MaxThreads))
	outcomes := pool.Run(ctx, exec, tasks)
	log.Info("all crawl tasks completed")

	totalDuration := time.Since(start)
	summary, failures := buildSummary(m.Name, start, totalDuration, outcomes)
	_ = notifier.Notify(notify.LevelInfo, "corvus run completed", summary)

	insertMetrics(cmd, m.Name, outcomes, inserter, log)

	log.Info("corvus run completed",
		zap.Int("tasks", len(outcomes)),
		zap.Int("failures", failures),
		zap.Duration("duration", totalDuration))
	return nil
}

// applyEnvOverrides lets the environment adjust a loaded manifest
// without editing the file, mainly for containerized runs.
func applyEnvOverrides(m *manifest.Manifest) {
	if viper.IsSet("max_threads") {
		m.MaxThreads = viper.GetInt("max_threads")
	}
	if viper.IsSet("rate_limit") {
		m.RateLimit = viper.GetFloat64("rate_limit")
	}
	if viper.IsSet("elasticsearch_endpoint") {
		m.Log.Elasticsearch = &manifest.ElasticsearchLogConfig{
			Endpoint: viper.GetString("elasticsearch_endpoint"),
		}
	}
}

func buildNotifier(m *manifest.Manifest, log *zap.Logger) *notify.Multi {
	sinks := make([]notify.Notifier, 0, len(m.Notify))
	for _, n := range m.Notify {
		if n.Slack == nil {
			continue
		}
		level, err := notify.ParseLevel(n.Slack.Level)
		if err != nil {
			log.Warn("invalid notify level, using info", zap.Error(err))
		}
		sinks = append(sinks, notify.NewSlack(notify.SlackConfig{
			URL:      n.Slack.URL,
			Channel:  n.Slack.Channel,
			Mention:  n.Slack.Mention,
			MinLevel: level,
		}, m.Name))
	}
	return notify.NewMulti(log, sinks...)
}

func buildInserter(m *manifest.Manifest, log *zap.Logger) metrics.Inserter {
	if m.Log.Elasticsearch == nil {
		return metrics.NopInserter{}
	}
	ins, err := metrics.NewESInserter(m.Log.Elasticsearch.Endpoint)
	if err != nil {
		log.Error("failed to build metrics backend client, metrics disabled", zap.Error(err))
		return metrics.NopInserter{}
	}
	return ins
}

func buildS3Sink(m *manifest.Manifest) *persist.S3Sink {
	if m.AWS != nil {
		return persist.NewS3SinkWithCredentials(persist.Credentials{
			AccessKeyID:     m.AWS.AccessKeyID,
			SecretAccessKey: m.AWS.SecretAccessKey,
		})
	}
	return persist.NewS3Sink()
}

func insertMetrics(cmd *cobra.Command, name string, outcomes []runner.Outcome, inserter metrics.Inserter, log *zap.Logger) {
	ctx := cmd.Context()
	now := time.Now()

	taskDocs := make([]metrics.Document, 0, len(outcomes))
	crawlerDocs := make([]metrics.Document, 0, len(outcomes))
	for i := range outcomes {
		taskDocs = append(taskDocs, metrics.NewTaskMetric(name, &outcomes[i], now))
		crawlerDocs = append(crawlerDocs, metrics.NewCrawlerMetric(name, &outcomes[i], now))
	}

	if err := inserter.BulkInsert(ctx, taskDocs); err != nil {
		log.Error("failed to insert task metrics", zap.Error(err))
	}
	if err := inserter.BulkInsert(ctx, crawlerDocs); err != nil {
		log.Error("failed to insert crawler metrics", zap.Error(err))
	}
}

// buildSummary renders the human-readable run report delivered through
// the notify sinks.
func buildSummary(name string, start time.Time, total time.Duration, outcomes []runner.Outcome) (string, int) {
	failures := 0
	persistErrors := 0
	for i := range outcomes {
		if outcomes[i].Failed() {
			failures++
			continue
		}
		persistErrors += len(outcomes[i].PersistErrors)
	}

	host, err := os.Hostname()
	if err != nil {
		host = "unknown host"
	}

	summary := fmt.Sprintf(
		"crawler name:      %s\n"+
			"hostname:          %s\n"+
			"start datetime:    %s\n"+
			"total duration:    %d seconds\n"+
			"task num:          %d\n"+
			"failure task num:  %d\n"+
			"persist error num: %d",
		name,
		host,
		start.Format("2006-01-02 15:04:05"),
		int(total.Seconds()),
		len(outcomes),
		failures,
		persistErrors,
	)
	return summary, failures
}

// printPlan shows what a run would do without fetching anything.
func printPlan(m *manifest.Manifest, tasks []runner.Task) {
	fmt.Println("=== Crawl Plan (dry-run) ===")
	fmt.Println()
	fmt.Printf("Name:        %s\n", m.Name)
	fmt.Printf("Method:      %s\n", m.Request.Method)
	fmt.Printf("Tasks:       %d\n", len(tasks))
	fmt.Printf("Threads:     %d\n", m.MaxThreads)
	if m.RateLimit > 0 {
		fmt.Printf("Rate limit:  %.2f/s\n", m.RateLimit)
	}
	fmt.Println()
	for i, task := range tasks {
		fmt.Printf("%4d. %s\n", i+1, task.Request.URL)
		for _, sink := range task.Sinks {
			fmt.Printf("      -> %s\n", sink.Destination())
		}
	}
}
