package fetch

import (
	"mime"
	"strings"
)

// MIME is a parsed media type plus an optional charset parameter.
type MIME struct {
	Type    string  `json:"type"`
	Charset Charset `json:"charset,omitempty"`
}

// OctetStream is the fallback content type for responses that carry no
// usable Content-Type header.
var OctetStream = MIME{Type: "application/octet-stream"}

// textualSubtypes lists application/* media types whose payload is
// character data and therefore participates in charset conversion.
var textualSubtypes = map[string]struct{}{
	"application/json":                  {},
	"application/xml":                   {},
	"application/xhtml+xml":             {},
	"application/stream+json":           {},
	"application/x-www-form-urlencoded": {},
}

// ParseMIME parses a Content-Type header value.
func ParseMIME(header string) (MIME, error) {
	mediaType, params, err := mime.ParseMediaType(header)
	if err != nil {
		return MIME{}, err
	}
	return MIME{
		Type:    mediaType,
		Charset: Charset(params["charset"]),
	}, nil
}

// IsText reports whether the media type carries character data.
func (m MIME) IsText() bool {
	if strings.HasPrefix(m.Type, "text/") {
		return true
	}
	_, textual := textualSubtypes[m.Type]
	return textual
}

// String renders the media type as a Content-Type header value.
func (m MIME) String() string {
	if m.Charset == "" {
		return m.Type
	}
	return m.Type + "; charset=" + m.Charset.Canonical()
}

// detectMIME derives the response content type from the Content-Type
// header and the request's encoding settings:
//   - a configured input charset overrides the advertised one on
//     textual types;
//   - a missing or unparseable header with a configured input charset
//     synthesizes text/plain in that charset;
//   - everything else falls back to application/octet-stream.
func detectMIME(contentType string, enc *Encoding) MIME {
	if contentType != "" {
		if m, err := ParseMIME(contentType); err == nil {
			if enc != nil && enc.Input != "" && m.IsText() {
				m.Charset = enc.Input
			}
			return m
		}
	}
	if enc != nil && enc.Input != "" {
		return MIME{Type: "text/plain", Charset: enc.Input}
	}
	return OctetStream
}
