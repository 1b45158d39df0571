package fetch

import (
	"time"
)

// Result is a completed crawl response: the body after any configured
// charset conversion, plus enough request metadata for metric records.
type Result struct {
	Status      int               `json:"response_status"`
	Header      map[string]string `json:"response_header"`
	Body        []byte            `json:"-"`
	DurationMS  int64             `json:"request_duration_millis"`
	RetryCount  int               `json:"retry_count"`
	ContentType MIME              `json:"response_content_type"`
	CrawlDate   time.Time         `json:"crawl_date"`
}

// ConvertBody transcodes the body to the given charset and updates the
// content type to match. Responses that are not textual or that carry no
// known charset are left untouched.
func (r *Result) ConvertBody(to Charset) error {
	if !r.ContentType.IsText() || r.ContentType.Charset == "" {
		return nil
	}
	converted, err := ConvertCharset(r.ContentType.Charset, to, r.Body)
	if err != nil {
		return err
	}
	r.Body = converted
	r.ContentType.Charset = to
	return nil
}
