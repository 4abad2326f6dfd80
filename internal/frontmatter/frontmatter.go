// Package frontmatter separates YAML frontmatter from the markdown body of a
// content file.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Document is a parsed content file.
type Document struct {
	Fields map[string]any
	Body   []byte
}

// String returns the field key as a string, or "" when it is absent or not a scalar.
func (d Document) String(key string) string {
	switch v := d.Fields[key].(type) {
	case string:
		return v
	case nil:
		return ""
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Parse splits content into frontmatter fields and body. Content without a
// leading `---` line is all body.
func Parse(content []byte) (Document, error) {
	raw, body, err := Split(content)
	if err != nil {
		return Document{}, err
	}
	fields := map[string]any{}
	if len(raw) > 0 {
		if err := yaml.Unmarshal(raw, &fields); err != nil {
			return Document{}, fmt.Errorf("parse frontmatter: %w", err)
		}
		if fields == nil {
			fields = map[string]any{}
		}
	}
	return Document{Fields: fields, Body: body}, nil
}

// Split returns the raw YAML between the `---` delimiters and the body after
// them. Both LF and CRLF files are accepted.
func Split(content []byte) (frontmatter []byte, body []byte, err error) {
	nl := []byte("\n")
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		nl = []byte("\r\n")
	}

	open := append([]byte("---"), nl...)
	if !bytes.HasPrefix(content, open) {
		return nil, content, nil
	}
	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], nil
	}

	closing := append(append(append([]byte{}, nl...), "---"...), nl...)
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		// A closing delimiter on the last line has no trailing newline.
		if bytes.HasSuffix(rest, closing[:len(closing)-len(nl)]) {
			return rest[:len(rest)-len("---")], []byte{}, nil
		}
		return nil, nil, ErrMissingClosingDelimiter
	}
	return rest[:idx+len(nl)], rest[idx+len(closing):], nil
}
