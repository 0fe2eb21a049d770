// Package header holds the ordered header set of a request and the
// ISO-8859-1 header block codec used by handle-based HTTP APIs.
package header

import (
	"bytes"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"

	"github.com/frankli0324/go-geturl/internal/model"
)

const UserAgent = "User-Agent"

type Field struct {
	Name, Value string
}

// Fields is an ordered header set with unique names. Names are compared
// exactly, "accept" and "Accept" are different fields.
type Fields []Field

func (f Fields) Get(name string) (string, bool) {
	for i := range f {
		if f[i].Name == name {
			return f[i].Value, true
		}
	}
	return "", false
}

// Set inserts or replaces the field called name.
func (f *Fields) Set(name, value string) {
	for i := range *f {
		if (*f)[i].Name == name {
			(*f)[i].Value = value
			return
		}
	}
	*f = append(*f, Field{name, value})
}

func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	return append(Fields(nil), f...)
}

// Negotiate returns the fields to send along with the effective User-Agent.
// A caller supplied User-Agent is used verbatim, otherwise one carrying
// agent is appended.
func Negotiate(f Fields, agent string) (Fields, string) {
	if ua, ok := f.Get(UserAgent); ok {
		return f, ua
	}
	out := make(Fields, len(f), len(f)+1)
	copy(out, f)
	return append(out, Field{UserAgent, agent}), agent
}

// Encode writes each field as "name: value\r\n" followed by the
// terminating "\r\n". Every character must be an ISO-8859-1 code point;
// the first string that is not fails the whole block.
func Encode(f Fields) ([]byte, error) {
	enc := charmap.ISO8859_1.NewEncoder()
	buf := bytes.Buffer{}
	put := func(s string) error {
		b, err := enc.String(s)
		if err != nil {
			return model.Wrap(model.KindEncoding, "encode header",
				errors.Errorf("%q is not representable in ISO-8859-1", s))
		}
		buf.WriteString(b)
		return nil
	}
	for _, kv := range f {
		if err := put(kv.Name); err != nil {
			return nil, err
		}
		buf.WriteString(": ")
		if err := put(kv.Value); err != nil {
			return nil, err
		}
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	return buf.Bytes(), nil
}

// Decode is the inverse of Encode. The terminating empty line is optional.
func Decode(block []byte) (Fields, error) {
	dec := charmap.ISO8859_1.NewDecoder()
	var f Fields
	for len(block) > 0 {
		line := block
		rest := []byte(nil)
		if i := bytes.Index(block, []byte("\r\n")); i >= 0 {
			line, rest = block[:i], block[i+2:]
		}
		block = rest
		if len(line) == 0 {
			if len(block) != 0 {
				return nil, errors.New("trailing data after header block")
			}
			break
		}
		name, value, ok := bytes.Cut(line, []byte(": "))
		if !ok {
			return nil, errors.Errorf("malformed header line %q", line)
		}
		n, err := dec.Bytes(name)
		if err != nil {
			return nil, errors.Wrap(err, "decoding header name")
		}
		v, err := dec.Bytes(value)
		if err != nil {
			return nil, errors.Wrap(err, "decoding header value")
		}
		f = append(f, Field{string(n), string(v)})
	}
	return f, nil
}
