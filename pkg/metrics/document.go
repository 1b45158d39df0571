// Package metrics builds the per-run metric documents and delivers
// them to the search backend in bulk.
package metrics

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/corvus-crawler/corvus/pkg/fetch"
	"github.com/corvus-crawler/corvus/pkg/runner"
)

// Index name prefixes. The crawl date is appended as YYYY-MM-DD so each
// day lands in its own index.
const (
	taskIndexPrefix    = "corvus-task-metrics"
	crawlerIndexPrefix = "corvus-crawler"
)

// Timestamp serializes as "2006-01-02 15:04:05-07:00" to match the
// date format declared in the index templates.
type Timestamp time.Time

const timestampLayout = "2006-01-02 15:04:05-07:00"

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(timestampLayout))
}

// Document is anything the inserter can bulk-deliver.
type Document interface {
	IndexName() string
}

// TaskMetric is the per-task record: one per outcome, success or not.
type TaskMetric struct {
	TotalDurationMillis   int64       `json:"total_duration_millis"`
	Name                  string      `json:"name"`
	Date                  Timestamp   `json:"date"`
	CrawlerDurationMillis *int64      `json:"crawler_duration_millis"`
	PersistDurationMillis *int64      `json:"persist_duration_millis"`
	ResultCode            int         `json:"result_code"`
	ResultLabel           string      `json:"result_label"`
	ResultDetail          string      `json:"result_detail"`
	Task                  runner.Task `json:"task"`

	indexName string
}

func (m TaskMetric) IndexName() string { return m.indexName }

// NewTaskMetric flattens one outcome into its task record. The date
// stamps both the document and its target index.
func NewTaskMetric(name string, out *runner.Outcome, date time.Time) TaskMetric {
	m := TaskMetric{
		TotalDurationMillis: out.TotalMS,
		Name:                name,
		Date:                Timestamp(date),
		ResultCode:          out.Code(),
		ResultLabel:         out.Label(),
		ResultDetail:        out.Detail(),
		Task:                out.Task,
		indexName:           taskIndexPrefix + "-" + date.Format("2006-01-02"),
	}

	switch ferr := fetchError(out.Err); {
	case out.Result != nil:
		m.CrawlerDurationMillis = int64ptr(out.Result.DurationMS)
		m.PersistDurationMillis = int64ptr(out.PersistMS)
	case ferr != nil && ferr.Result != nil:
		// Client, server and charset failures still measured a fetch.
		m.CrawlerDurationMillis = int64ptr(ferr.Result.DurationMS)
	case ferr != nil && ferr.Kind == fetch.KindTimeout:
		m.CrawlerDurationMillis = int64ptr(int64(ferr.TimeoutSeconds) * 1000)
	}
	return m
}

// CrawlerMetric is the per-fetch record. It reflects only the crawl
// itself: a task that fetched fine but failed to persist still counts
// as a 200 here.
type CrawlerMetric struct {
	CrawlerName           string        `json:"crawler_name"`
	ResultCode            int           `json:"result_code"`
	ResultMessage         string        `json:"result_message"`
	RequestDurationMillis *int64        `json:"request_duration_millis"`
	ErrorDetail           *string       `json:"error_detail"`
	Request               fetch.Request `json:"request"`
	RetryCount            int           `json:"retry_count"`
	CrawledDate           Timestamp     `json:"crawled_date"`
	Hostname              string        `json:"hostname"`

	indexName string
}

func (m CrawlerMetric) IndexName() string { return m.indexName }

// NewCrawlerMetric builds the crawl record from an outcome. now is used
// for errors that never produced a result, timeouts and transport
// failures, which carry no crawl date of their own.
func NewCrawlerMetric(name string, out *runner.Outcome, now time.Time) CrawlerMetric {
	m := CrawlerMetric{
		CrawlerName: name,
		ResultCode:  200,
		Request:     out.Task.Request,
		Hostname:    hostname(),
	}

	ferr := fetchError(out.Err)
	res := out.Result
	if ferr != nil {
		res = ferr.Result
	}

	crawledDate := now
	if res != nil {
		crawledDate = res.CrawlDate
		m.RequestDurationMillis = int64ptr(res.DurationMS)
		m.RetryCount = res.RetryCount
	}

	switch {
	case ferr != nil:
		m.ResultCode = ferr.Code()
		m.ResultMessage = ferr.Error()
		m.ErrorDetail = strptr(ferr.Error())
		if ferr.Kind == fetch.KindTimeout {
			m.RetryCount = ferr.RetryCount
			m.RequestDurationMillis = int64ptr(int64(ferr.TimeoutSeconds))
		}
	default:
		m.ResultMessage = "success"
	}

	m.CrawledDate = Timestamp(crawledDate)
	m.indexName = crawlerIndexPrefix + "-" + crawledDate.Format("2006-01-02")
	return m
}

func fetchError(err error) *fetch.Error {
	var ferr *fetch.Error
	if errors.As(err, &ferr) {
		return ferr
	}
	return nil
}

func int64ptr(v int64) *int64 { return &v }
func strptr(s string) *string { return &s }

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
