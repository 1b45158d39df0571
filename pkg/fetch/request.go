// Package fetch executes single crawl requests: one HTTP round trip with
// timeout, bounded retry, MIME detection, and optional charset conversion
// of textual response bodies.
package fetch

// Method is the HTTP method of a crawl request.
type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

// Encoding configures charset handling for a request. Input overrides the
// charset advertised by the response (or supplies one when the response
// has no Content-Type); Output is the charset the body is converted to.
type Encoding struct {
	Input  Charset `json:"input,omitempty" yaml:"input,omitempty"`
	Output Charset `json:"output" yaml:"output"`
}

// Request is one fully rendered crawl request. All template and parameter
// expansion has already happened; the fetcher treats every field as
// opaque text.
//
// QueryParams values are NOT percent-encoded by the fetcher; callers that
// need reserved characters must pre-encode them. BodyParams are sent as a
// URL-encoded form for POST requests.
type Request struct {
	URL            string            `json:"url"`
	Method         Method            `json:"method"`
	Header         map[string]string `json:"header,omitempty"`
	Encoding       *Encoding         `json:"encoding_setting,omitempty"`
	TimeoutSeconds int               `json:"timeout"`
	MaxRetry       int               `json:"max_retry"`
	QueryParams    map[string]string `json:"query_params,omitempty"`
	BodyParams     map[string]string `json:"body_params,omitempty"`
	SleepSeconds   int               `json:"sleep,omitempty"`
}
