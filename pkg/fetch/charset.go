package fetch

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Charset names a character encoding. Names are resolved through the
// WHATWG encoding index, so both canonical names ("shift_jis", "utf-8")
// and their registered aliases are accepted. The zero value means
// "unknown".
type Charset string

// CharsetUTF8 is the conversion target for error-response bodies.
const CharsetUTF8 Charset = "utf-8"

// Encoding resolves the charset name to an encoding implementation.
func (c Charset) Encoding() (encoding.Encoding, error) {
	name := strings.ToLower(strings.TrimSpace(string(c)))
	enc, err := htmlindex.Get(name)
	if err == nil {
		return enc, nil
	}
	// Config files commonly spell names with underscores ("utf_8");
	// retry with the hyphenated form before giving up.
	enc, retryErr := htmlindex.Get(strings.ReplaceAll(name, "_", "-"))
	if retryErr != nil {
		return nil, fmt.Errorf("unsupported charset %q", string(c))
	}
	return enc, nil
}

// Canonical returns the WHATWG canonical name, or the input unchanged
// when the charset is unknown.
func (c Charset) Canonical() string {
	enc, err := c.Encoding()
	if err != nil {
		return string(c)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return string(c)
	}
	return name
}

// Equal reports whether two charset names resolve to the same encoding.
func (c Charset) Equal(other Charset) bool {
	return c.Canonical() == other.Canonical()
}

// Valid reports whether the charset name resolves to a known encoding.
func (c Charset) Valid() bool {
	_, err := c.Encoding()
	return err == nil
}

// ConvertCharset transcodes b from one charset to another, going through
// UTF-8. Undecodable input bytes become replacement characters and
// unencodable runes are substituted, mirroring lenient browser behavior;
// only unknown charset names fail.
func ConvertCharset(from, to Charset, b []byte) ([]byte, error) {
	src, err := from.Encoding()
	if err != nil {
		return nil, err
	}
	dst, err := to.Encoding()
	if err != nil {
		return nil, err
	}

	utf8Bytes, err := src.NewDecoder().Bytes(b)
	if err != nil {
		return nil, fmt.Errorf("decode from %s: %w", from.Canonical(), err)
	}
	out, err := encoding.ReplaceUnsupported(dst.NewEncoder()).Bytes(utf8Bytes)
	if err != nil {
		return nil, fmt.Errorf("encode to %s: %w", to.Canonical(), err)
	}
	return out, nil
}
