package tidy

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// prettyIndent is the indentation used by ToText when pretty printing
const prettyIndent = "    "

// ToPlain converts c into plain Go values: list-shaped containers become
// []any, every other container becomes map[string]any. Scalars are
// returned as stored.
func (c *Container) ToPlain() any {
	if c.IsList() {
		out := make([]any, 0, c.Len())
		for _, v := range c.All() {
			out = append(out, plain(v))
		}
		return out
	}
	return c.ToMap()
}

func plain(v any) any {
	switch typed := v.(type) {
	case *Container:
		return typed.ToPlain()
	case []any:
		out := make([]any, len(typed))
		for i, e := range typed {
			out[i] = plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, e := range typed {
			out[k] = plain(e)
		}
		return out
	}
	return v
}

// ToProjection is like [Container.ToPlain] but keeps key order: containers
// that are not list-shaped become *orderedmap.OrderedMap[string, any]
// objects, list-shaped ones stay []any.
func (c *Container) ToProjection() any {
	if c.IsList() {
		out := make([]any, 0, c.Len())
		for _, v := range c.All() {
			out = append(out, project(v))
		}
		return out
	}

	out := orderedmap.New[string, any]()
	for k, v := range c.All() {
		out.Set(k, project(v))
	}
	return out
}

func project(v any) any {
	if nested, ok := v.(*Container); ok {
		return nested.ToProjection()
	}
	return plain(v)
}

// MarshalJSONV2 encodes c as a JSON object in insertion order, or as a JSON
// array when c is list-shaped
func (c *Container) MarshalJSONV2(enc *jsontext.Encoder, opts json.Options) error {
	if c == nil {
		return enc.WriteToken(jsontext.Null)
	}

	if c.IsList() {
		if err := enc.WriteToken(jsontext.ArrayStart); err != nil {
			return fmt.Errorf("failed to write array start token: %w", err)
		}
		for k, v := range c.All() {
			if err := encodeValue(enc, v, opts); err != nil {
				return fmt.Errorf("failed to write element %s: %w", k, err)
			}
		}
		if err := enc.WriteToken(jsontext.ArrayEnd); err != nil {
			return fmt.Errorf("failed to write array end token: %w", err)
		}
		return nil
	}

	if err := enc.WriteToken(jsontext.ObjectStart); err != nil {
		return fmt.Errorf("failed to write object start token: %w", err)
	}
	for k, v := range c.All() {
		if err := enc.WriteToken(jsontext.String(k)); err != nil {
			return fmt.Errorf("failed to write key token %s: %w", k, err)
		}
		if err := encodeValue(enc, v, opts); err != nil {
			return fmt.Errorf("failed to write value for key %s: %w", k, err)
		}
	}
	if err := enc.WriteToken(jsontext.ObjectEnd); err != nil {
		return fmt.Errorf("failed to write object end token: %w", err)
	}
	return nil
}

func encodeValue(enc *jsontext.Encoder, v any, opts json.Options) error {
	if n, ok := v.(stdjson.Number); ok {
		return enc.WriteValue(jsontext.Value(n))
	}
	return json.MarshalEncode(enc, v, opts)
}

// UnmarshalJSONV2 decodes a JSON object or array into c, keeping the order
// of object members. Numbers without a fraction or exponent decode to int
// when they fit, every other number to float64.
func (c *Container) UnmarshalJSONV2(dec *jsontext.Decoder, opts json.Options) error {
	if k := dec.PeekKind(); k != '{' && k != '[' {
		return fmt.Errorf("expected object or array start, but encountered %v", k)
	}

	v, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*c = *v.(*Container)
	return nil
}

// MarshalJSON implements [encoding/json.Marshaler] with the same output as
// MarshalJSONV2
func (c *Container) MarshalJSON() ([]byte, error) {
	return json.Marshal(c)
}

// UnmarshalJSON implements [encoding/json.Unmarshaler]
func (c *Container) UnmarshalJSON(b []byte) error {
	parsed, err := Parse(b)
	if err != nil {
		return err
	}
	*c = *parsed
	return nil
}

// Parse decodes a JSON object or array into a new Container without
// normalizing it
func Parse(data []byte) (*Container, error) {
	v, err := decodeJSON(data)
	if err != nil {
		return nil, err
	}
	c, ok := v.(*Container)
	if !ok {
		return nil, ErrInvalidInput{Type: "JSON " + kindName(v), Reason: "expected an object or an array"}
	}
	return c, nil
}

// decodeJSON decodes exactly one JSON value
func decodeJSON(data []byte) (any, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

func decodeValue(dec *jsontext.Decoder) (any, error) {
	switch dec.PeekKind() {
	case '{':
		if _, err := dec.ReadToken(); err != nil {
			return nil, fmt.Errorf("failed to read object start: %w", err)
		}
		c := Empty()
		for dec.PeekKind() != '}' {
			tok, err := dec.ReadToken()
			if err != nil {
				return nil, fmt.Errorf("failed to read object key: %w", err)
			}
			key := tok.String()
			v, err := decodeValue(dec)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			c.items.Set(key, v)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, fmt.Errorf("failed to read object end: %w", err)
		}
		return c, nil

	case '[':
		if _, err := dec.ReadToken(); err != nil {
			return nil, fmt.Errorf("failed to read array start: %w", err)
		}
		c := emptyList()
		for i := 0; dec.PeekKind() != ']'; i++ {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			c.items.Set(strconv.Itoa(i), v)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, fmt.Errorf("failed to read array end: %w", err)
		}
		return c, nil
	}

	raw, err := dec.ReadValue()
	if err != nil {
		return nil, err
	}
	return scalarFromJSON(raw)
}

func scalarFromJSON(raw jsontext.Value) (any, error) {
	switch raw.Kind() {
	case 'n':
		return nil, nil
	case 't':
		return true, nil
	case 'f':
		return false, nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("failed to decode string: %w", err)
		}
		return s, nil
	case '0':
		text := string(raw)
		if n, err := strconv.ParseInt(text, 10, strconv.IntSize); err == nil {
			return int(n), nil
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode number %s: %w", text, err)
		}
		return f, nil
	}
	return nil, fmt.Errorf("unexpected JSON value %s", raw)
}

// ToText encodes c as JSON. When pretty is set the output is indented with
// four spaces per level.
func (c *Container) ToText(pretty bool) (string, error) {
	var opts []json.Options
	if pretty {
		opts = append(opts, jsontext.WithIndent(prettyIndent))
	}
	b, err := json.Marshal(c, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to marshal container: %w", err)
	}
	return string(b), nil
}

// ToCanonicalText encodes c as canonical JSON (RFC 8785): object members
// sorted, no insignificant whitespace, numbers in their shortest form
func (c *Container) ToCanonicalText() ([]byte, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal container: %w", err)
	}
	out, err := jsoncanonicalizer.Transform(b)
	if err != nil {
		return nil, fmt.Errorf("cannot canonicalize json: %w", err)
	}
	return out, nil
}

// String returns the compact JSON form of c
func (c *Container) String() string {
	s, err := c.ToText(false)
	if err != nil {
		return fmt.Sprintf("%%!(tidy.Container: %v)", err)
	}
	return s
}

func kindName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, float64:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
