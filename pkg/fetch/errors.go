package fetch

import (
	"fmt"
	"unicode/utf8"
)

// ErrorKind discriminates the classified crawl failures.
type ErrorKind int

const (
	// KindClient is a 4xx response.
	KindClient ErrorKind = iota
	// KindServer is a 5xx response after retries were exhausted.
	KindServer
	// KindTimeout is a request that timed out after retries were exhausted.
	KindTimeout
	// KindCharset is a failed output charset conversion. Never retried.
	KindCharset
	// KindOther covers transport and configuration failures.
	KindOther
)

// Error is a classified crawl failure. Client, server, and charset
// failures carry the response that triggered them; timeout failures
// carry the configured timeout and the retry count.
type Error struct {
	Kind           ErrorKind
	Result         *Result // set for KindClient, KindServer, KindCharset
	Detail         string  // set for KindCharset, KindOther
	TimeoutSeconds int     // set for KindTimeout
	RetryCount     int     // set for KindTimeout
}

// Code returns the numeric error code recorded in metrics.
func (e *Error) Code() int {
	switch e.Kind {
	case KindClient:
		return 400
	case KindServer:
		return 500
	case KindTimeout:
		return 600
	case KindCharset:
		return 700
	default:
		return 800
	}
}

// Label returns the short human-readable error class.
func (e *Error) Label() string {
	switch e.Kind {
	case KindClient:
		return "client error"
	case KindServer:
		return "server error"
	case KindTimeout:
		return "timeout"
	case KindCharset:
		return "charset conversion failed"
	default:
		return "other error"
	}
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindClient:
		return "client_error: " + bodyAsText(e.Result)
	case KindServer:
		return "server_error: " + bodyAsText(e.Result)
	case KindTimeout:
		return fmt.Sprintf("request timeout: %d seconds (retry: %d)", e.TimeoutSeconds, e.RetryCount)
	case KindCharset:
		return "failed to convert charset: " + e.Detail
	default:
		return "unexpected error: " + e.Detail
	}
}

func bodyAsText(r *Result) string {
	if r == nil {
		return ""
	}
	if !utf8.Valid(r.Body) {
		return "(not utf-8)"
	}
	return string(r.Body)
}

func otherError(format string, args ...any) *Error {
	return &Error{Kind: KindOther, Detail: fmt.Sprintf(format, args...)}
}
