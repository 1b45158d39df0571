// Package manifest provides loading and validation of corvus run manifests.
//
// A manifest is a YAML or JSON file describing one crawl run: the
// templated request, the value lists it expands over, the persistence
// sinks, notification sinks, and logging.
//
// Example manifest (YAML):
//
//	name: nightly-news
//	request:
//	  url: "http://example.com/articles/{{id}}"
//	  method: get
//	  vars:
//	    - id: ["[1..100]"]
//	  timeout_seconds: 5
//	  max_retry: 2
//	output:
//	  - local_file:
//	      path: "out/%Y%m%d/{{id}}.html"
//	max_threads: 4
package manifest

import (
	"github.com/corvus-crawler/corvus/pkg/persist"
)

// Default values applied by ApplyDefaults.
const (
	DefaultMethod         = "get"
	DefaultTimeoutSeconds = 1
	DefaultMaxRetry       = 0
	DefaultMaxThreads     = 1
	DefaultNotifyLevel    = "info"
	DefaultLogLevel       = "info"
	DefaultInputCharset   = "utf-8"
)

// Manifest represents one validated crawl run configuration.
type Manifest struct {
	// Name identifies the run in metrics, logs, and notifications.
	Name string `json:"name" yaml:"name"`

	// Request is the templated request specification.
	Request RequestConfig `json:"request" yaml:"request"`

	// Notify lists notification sinks. Optional.
	Notify []NotifyConfig `json:"notify,omitempty" yaml:"notify,omitempty"`

	// Output is the ordered list of persistence sinks. At least one is
	// required.
	Output []OutputConfig `json:"output" yaml:"output"`

	// MaxThreads bounds worker parallelism (1..65535).
	MaxThreads int `json:"max_threads,omitempty" yaml:"max_threads,omitempty"`

	// RateLimit caps request starts per second across all workers.
	// Zero means unlimited.
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`

	// AWS optionally pins static credentials for S3 sinks. When absent
	// the SDK default chain is used.
	AWS *AWSConfig `json:"aws,omitempty" yaml:"aws,omitempty"`

	// Log configures file logging and the optional metrics backend.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`
}

// RequestConfig is the templated request section. URL, sink paths, and
// every value inside Vars and Params may contain strftime directives
// and {{key}} placeholders.
type RequestConfig struct {
	URL     string            `json:"url" yaml:"url"`
	Method  string            `json:"method,omitempty" yaml:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Vars and Params are lists of key to value-list mappings. Each
	// mapping contributes the cross-product of its value lists; the
	// outer lists concatenate.
	Vars   []map[string]StringList `json:"vars,omitempty" yaml:"vars,omitempty"`
	Params []map[string]StringList `json:"params,omitempty" yaml:"params,omitempty"`

	Encoding *EncodingConfig `json:"encoding,omitempty" yaml:"encoding,omitempty"`

	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	MaxRetry       int `json:"max_retry,omitempty" yaml:"max_retry,omitempty"`
	SleepSeconds   int `json:"sleep_seconds,omitempty" yaml:"sleep_seconds,omitempty"`
}

// EncodingConfig names the response input charset and the charset the
// body is converted to before persisting.
type EncodingConfig struct {
	Input  string `json:"input,omitempty" yaml:"input,omitempty"`
	Output string `json:"output" yaml:"output"`
}

// NotifyConfig is a tagged union of notification sinks. Exactly one
// variant must be set.
type NotifyConfig struct {
	Slack *SlackNotifyConfig `json:"slack,omitempty" yaml:"slack,omitempty"`
}

// SlackNotifyConfig configures a Slack incoming-webhook sink. Level is
// the minimum severity the sink subscribes to.
type SlackNotifyConfig struct {
	URL     string `json:"url" yaml:"url"`
	Channel string `json:"channel" yaml:"channel"`
	Mention string `json:"mention,omitempty" yaml:"mention,omitempty"`
	Level   string `json:"level,omitempty" yaml:"level,omitempty"`
}

// OutputConfig is a tagged union of persistence sinks. Exactly one
// variant must be set.
type OutputConfig struct {
	LocalFile *LocalFileConfig `json:"local_file,omitempty" yaml:"local_file,omitempty"`
	AmazonS3  *AmazonS3Config  `json:"amazon_s3,omitempty" yaml:"amazon_s3,omitempty"`
}

// Method converts the sink configuration to a dispatch method with the
// path or key still in template form.
func (o OutputConfig) Method() persist.Method {
	if o.AmazonS3 != nil {
		return persist.Method{
			Kind:   persist.KindAmazonS3,
			Region: o.AmazonS3.Region,
			Bucket: o.AmazonS3.Bucket,
			Key:    o.AmazonS3.Key,
		}
	}
	return persist.Method{Kind: persist.KindLocalFile, Path: o.LocalFile.Path}
}

type LocalFileConfig struct {
	Path string `json:"path" yaml:"path"`
}

type AmazonS3Config struct {
	Region string `json:"region" yaml:"region"`
	Bucket string `json:"bucket" yaml:"bucket"`
	Key    string `json:"key" yaml:"key"`
}

// AWSConfig holds static credentials shared by all S3 sinks in the run.
type AWSConfig struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// LogConfig configures diagnostics output.
type LogConfig struct {
	// File enables logging to a file in addition to stderr.
	File *FileLogConfig `json:"file,omitempty" yaml:"file,omitempty"`

	// Elasticsearch enables metric delivery to a search backend. When
	// absent, metric inserts are skipped.
	Elasticsearch *ElasticsearchLogConfig `json:"elasticsearch,omitempty" yaml:"elasticsearch,omitempty"`
}

type FileLogConfig struct {
	Path  string `json:"path" yaml:"path"`
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
}

type ElasticsearchLogConfig struct {
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// ApplyDefaults fills optional fields with their documented defaults.
func (m *Manifest) ApplyDefaults() {
	if m.Request.Method == "" {
		m.Request.Method = DefaultMethod
	}
	if m.Request.TimeoutSeconds == 0 {
		m.Request.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if m.Request.Encoding != nil && m.Request.Encoding.Input == "" {
		m.Request.Encoding.Input = DefaultInputCharset
	}
	if m.MaxThreads == 0 {
		m.MaxThreads = DefaultMaxThreads
	}
	for i := range m.Notify {
		if s := m.Notify[i].Slack; s != nil && s.Level == "" {
			s.Level = DefaultNotifyLevel
		}
	}
	if m.Log.File != nil && m.Log.File.Level == "" {
		m.Log.File.Level = DefaultLogLevel
	}
}

// Methods returns the configured sinks as dispatch methods in declared
// order.
func (m *Manifest) Methods() []persist.Method {
	out := make([]persist.Method, 0, len(m.Output))
	for _, o := range m.Output {
		out = append(out, o.Method())
	}
	return out
}
