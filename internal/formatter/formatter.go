package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mcncl/jsettings/internal/models"
	"github.com/tidwall/pretty"
)

// indentWidth is the number of leading spaces collapsed into one tab.
const indentWidth = 4

// canonicalLayout is the serializer's 4-space style. Width 0 keeps every
// array element on its own line.
var canonicalLayout = &pretty.Options{
	Width:    0,
	Prefix:   "",
	Indent:   "    ",
	SortKeys: false,
}

// Formatter serializes settings values in the on-disk layout
type Formatter struct{}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format serializes value as canonical indented JSON and converts the
// leading 4-space runs to tabs.
func (f *Formatter) Format(value models.JSONValue) ([]byte, error) {
	compact, err := Marshal(value)
	if err != nil {
		return nil, err
	}
	return Transcode(Indent(compact)), nil
}

// Indent lays compact JSON out in the canonical 4-space style with a
// trailing newline. Key order and scalar text are kept as they are.
func Indent(compact []byte) []byte {
	return pretty.PrettyOptions(compact, canonicalLayout)
}

// Marshal encodes value as compact JSON, keeping object member order.
func Marshal(value models.JSONValue) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, value models.JSONValue) error {
	switch v := value.(type) {
	case nil:
		buf.WriteString("null")
	case *models.JSONObject:
		buf.WriteByte('{')
		for i, m := range v.Members() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeScalar(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encodeValue(buf, m.Value); err != nil {
				return fmt.Errorf("key %q: %w", m.Key, err)
			}
		}
		buf.WriteByte('}')
	case models.JSONArray:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, item); err != nil {
				return fmt.Errorf("index %d: %w", i, err)
			}
		}
		buf.WriteByte(']')
	default:
		return encodeScalar(buf, v)
	}
	return nil
}

// encodeScalar defers to encoding/json for strings, numbers and any other
// Go value. NaN, infinities and malformed json.Number text are rejected.
func encodeScalar(buf *bytes.Buffer, value interface{}) error {
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("failed to encode %T: %w", value, err)
	}
	buf.Write(bytes.TrimSuffix(out.Bytes(), []byte("\n")))
	return nil
}

// Transcode rewrites the leading whitespace of every line: each complete
// group of four leading spaces becomes one tab and the remaining one to
// three spaces follow the tabs. Lines made only of spaces are left alone,
// as is every byte after the first non-space character of a line.
func Transcode(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for len(data) > 0 {
		line := data
		data = nil
		if end := bytes.IndexByte(line, '\n'); end >= 0 {
			line, data = line[:end+1], line[end+1:]
		}
		out = appendLine(out, line)
	}
	return out
}

func appendLine(out, line []byte) []byte {
	spaces := 0
	for spaces < len(line) && line[spaces] == ' ' {
		spaces++
	}

	tabs := spaces / indentWidth
	if tabs == 0 || spaces == len(line) || line[spaces] == '\n' {
		return append(out, line...)
	}

	out = append(out, bytes.Repeat([]byte{'\t'}, tabs)...)
	return append(out, line[tabs*indentWidth:]...)
}
