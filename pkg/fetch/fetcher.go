package fetch

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
)

// Client issues crawl requests. A single Client is shared across all
// workers so connections are pooled.
type Client struct {
	hc  *http.Client
	now func() time.Time
}

// NewClient returns a Client backed by a pooled transport. Per-request
// deadlines are applied through the context, not the http.Client.
func NewClient() *Client {
	return &Client{
		hc:  &http.Client{},
		now: time.Now,
	}
}

// Fetch runs the request to completion, retrying server errors and
// timeouts up to MaxRetry additional attempts. The returned error, when
// non-nil, is always a *Error.
func (c *Client) Fetch(ctx context.Context, req *Request) (*Result, error) {
	httpReq, ferr := c.build(req)
	if ferr != nil {
		return nil, ferr
	}

	// The request clock spans the whole fetch, retries and per-attempt
	// sleeps included, and also stamps the crawl date.
	start := c.now()
	for attempt := 0; ; attempt++ {
		if err := sleepCtx(ctx, time.Duration(req.SleepSeconds)*time.Second); err != nil {
			return nil, otherError("canceled: %v", err)
		}

		res, ferr := c.attempt(ctx, req, httpReq, attempt, start)
		if ferr == nil {
			return res, nil
		}
		retryable := ferr.Kind == KindServer || ferr.Kind == KindTimeout
		if !retryable || attempt >= req.MaxRetry {
			return nil, ferr
		}
	}
}

// attempt performs one round trip. Server errors and timeouts come back
// as retryable *Error values; the caller decides whether retries remain.
func (c *Client) attempt(ctx context.Context, req *Request, httpReq *http.Request, attempt int, start time.Time) (*Result, *Error) {
	timeout := time.Duration(req.TimeoutSeconds) * time.Second
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	attemptReq := httpReq.Clone(actx)
	if httpReq.GetBody != nil {
		body, err := httpReq.GetBody()
		if err != nil {
			return nil, otherError("request body: %v", err)
		}
		attemptReq.Body = body
	}

	resp, err := c.hc.Do(attemptReq)
	if err != nil {
		if isTimeout(err) {
			return nil, &Error{Kind: KindTimeout, TimeoutSeconds: req.TimeoutSeconds, RetryCount: attempt}
		}
		return nil, otherError("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, &Error{Kind: KindTimeout, TimeoutSeconds: req.TimeoutSeconds, RetryCount: attempt}
		}
		return nil, otherError("read response body: %v", err)
	}
	// Duration is measured from the start of the first attempt, so a
	// fetch that succeeds after retries reports the full exchange.
	elapsed := c.now().Sub(start)

	res := &Result{
		Status:      resp.StatusCode,
		Header:      flattenHeader(resp.Header),
		Body:        body,
		DurationMS:  elapsed.Milliseconds(),
		RetryCount:  attempt,
		ContentType: detectMIME(resp.Header.Get("Content-Type"), req.Encoding),
		CrawlDate:   start.UTC(),
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if req.Encoding != nil {
			if err := res.ConvertBody(req.Encoding.Output); err != nil {
				return nil, &Error{Kind: KindCharset, Result: res, Detail: err.Error()}
			}
		}
		return res, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		_ = res.ConvertBody(CharsetUTF8)
		return nil, &Error{Kind: KindClient, Result: res}
	case resp.StatusCode >= 500 && resp.StatusCode < 600:
		_ = res.ConvertBody(CharsetUTF8)
		return nil, &Error{Kind: KindServer, Result: res}
	default:
		return nil, otherError("unexpected response status: %d", resp.StatusCode)
	}
}

// build validates the request and constructs the reusable http.Request
// template. Query parameter values are appended verbatim; callers are
// expected to pre-encode anything that needs escaping.
func (c *Client) build(req *Request) (*http.Request, *Error) {
	var method string
	switch req.Method {
	case MethodGet, "":
		method = http.MethodGet
	case MethodPost:
		method = http.MethodPost
	default:
		return nil, otherError("unsupported method: %s", req.Method)
	}
	for k, v := range req.Header {
		if !httpguts.ValidHeaderFieldName(k) || !httpguts.ValidHeaderFieldValue(v) {
			return nil, otherError("invalid header: %s", k)
		}
	}
	if req.Encoding != nil {
		if !req.Encoding.Input.Valid() {
			return nil, otherError("unknown input charset: %s", req.Encoding.Input)
		}
		if !req.Encoding.Output.Valid() {
			return nil, otherError("unknown output charset: %s", req.Encoding.Output)
		}
	}

	target := req.URL
	if qs := joinQuery(req.QueryParams); qs != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + qs
	}

	var body io.Reader
	contentType := ""
	if method == http.MethodPost && len(req.BodyParams) > 0 {
		form := url.Values{}
		for k, v := range req.BodyParams {
			form.Set(k, v)
		}
		body = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	httpReq, err := http.NewRequest(method, target, body)
	if err != nil {
		return nil, otherError("invalid url: %v", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}

// joinQuery renders params as k=v pairs in key order, unescaped.
func joinQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	return strings.Join(pairs, "&")
}

func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
