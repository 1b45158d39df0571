package manifest

import (
	"fmt"
	"strings"

	"github.com/corvus-crawler/corvus/pkg/fetch"
	"github.com/corvus-crawler/corvus/pkg/notify"
)

// ValidationError reports a single problem with a manifest field.
type ValidationError struct {
	// Path locates the field, e.g. "request.timeout_seconds".
	Path string

	// Message describes the failure.
	Message string
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "manifest validation failed with %d errors:\n", len(e))
	for i, err := range e {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Validate checks all fields and returns every violation found, not
// just the first.
func (m *Manifest) Validate() error {
	var errs ValidationErrors
	add := func(path, format string, args ...any) {
		errs = append(errs, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(m.Name) == "" {
		add("name", "is required")
	}

	r := &m.Request
	if strings.TrimSpace(r.URL) == "" {
		add("request.url", "is required")
	}
	switch strings.ToLower(r.Method) {
	case "", "get", "post":
	default:
		add("request.method", "must be get or post, got %q", r.Method)
	}
	// Zero means unset; ApplyDefaults raises it to the default afterwards.
	if r.TimeoutSeconds < 0 || r.TimeoutSeconds > 255 {
		add("request.timeout_seconds", "must be in 1..255 when set, got %d", r.TimeoutSeconds)
	}
	if r.MaxRetry < 0 || r.MaxRetry > 255 {
		add("request.max_retry", "must be in 0..255, got %d", r.MaxRetry)
	}
	if r.SleepSeconds < 0 {
		add("request.sleep_seconds", "must not be negative")
	}
	if enc := r.Encoding; enc != nil {
		if enc.Output == "" {
			add("request.encoding.output", "is required")
		} else if !fetch.Charset(enc.Output).Valid() {
			add("request.encoding.output", "unknown charset %q", enc.Output)
		}
		if enc.Input != "" && !fetch.Charset(enc.Input).Valid() {
			add("request.encoding.input", "unknown charset %q", enc.Input)
		}
	}

	if len(m.Output) == 0 {
		add("output", "at least one sink is required")
	}
	for i, o := range m.Output {
		path := fmt.Sprintf("output[%d]", i)
		switch {
		case o.LocalFile != nil && o.AmazonS3 != nil:
			add(path, "must set exactly one of local_file or amazon_s3")
		case o.LocalFile != nil:
			if o.LocalFile.Path == "" {
				add(path+".local_file.path", "is required")
			}
		case o.AmazonS3 != nil:
			if o.AmazonS3.Region == "" {
				add(path+".amazon_s3.region", "is required")
			}
			if o.AmazonS3.Bucket == "" {
				add(path+".amazon_s3.bucket", "is required")
			}
			if o.AmazonS3.Key == "" {
				add(path+".amazon_s3.key", "is required")
			}
		default:
			add(path, "must set one of local_file or amazon_s3")
		}
	}

	for i, n := range m.Notify {
		path := fmt.Sprintf("notify[%d]", i)
		if n.Slack == nil {
			add(path, "must set slack")
			continue
		}
		if n.Slack.URL == "" {
			add(path+".slack.url", "is required")
		}
		if n.Slack.Channel == "" {
			add(path+".slack.channel", "is required")
		}
		if _, err := notify.ParseLevel(n.Slack.Level); err != nil {
			add(path+".slack.level", "%v", err)
		}
	}

	if m.MaxThreads < 0 || m.MaxThreads > 65535 {
		add("max_threads", "must be in 1..65535, got %d", m.MaxThreads)
	}
	if m.RateLimit < 0 {
		add("rate_limit", "must not be negative")
	}
	if m.AWS != nil && (m.AWS.AccessKeyID == "") != (m.AWS.SecretAccessKey == "") {
		add("aws", "access_key_id and secret_access_key must be set together")
	}
	if m.Log.File != nil && m.Log.File.Path == "" {
		add("log.file.path", "is required")
	}
	if m.Log.Elasticsearch != nil && m.Log.Elasticsearch.Endpoint == "" {
		add("log.elasticsearch.endpoint", "is required")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
