package transport

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// charset transcodes between a wire character encoding and UTF-8.
type charset struct {
	name string
	enc  encoding.Encoding
	// utf8 wire data is validated instead of transcoded.
	utf8 bool
}

// lookupCharset resolves an IANA charset name. An empty name means raw bytes.
func lookupCharset(name string) (*charset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("transport: unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("transport: encoding %q is not supported", name)
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = name
	}
	return &charset{name: canonical, enc: enc, utf8: enc == unicode.UTF8}, nil
}

func (c *charset) decode(raw []byte) ([]byte, error) {
	if c.utf8 {
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("invalid %s sequence", c.name)
		}
		return raw, nil
	}
	return c.enc.NewDecoder().Bytes(raw)
}

func (c *charset) encode(data []byte) ([]byte, error) {
	if c.utf8 {
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("invalid %s sequence", c.name)
		}
		return data, nil
	}
	return c.enc.NewEncoder().Bytes(data)
}
