package parser

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mcncl/jsettings/internal/models"
	"github.com/tidwall/gjson"
)

const commentMarker = "//"

// hasCommentHeader sniffs the start of a file for a comment header.
func hasCommentHeader(data []byte) bool {
	return len(data) >= 2 && data[0] == '/' && data[1] == '/'
}

// isCommentLine reports whether a single header line is a comment line.
func isCommentLine(line []byte) bool {
	return bytes.HasPrefix(line, []byte(commentMarker))
}

// commentText strips the marker and the one separator character after it.
// Invalid UTF-8 is replaced rather than rejected.
func commentText(line []byte) string {
	rest := line[len(commentMarker):]
	if len(rest) > 0 {
		_, size := utf8.DecodeRune(rest)
		rest = rest[size:]
	}
	return strings.ToValidUTF8(string(rest), "\uFFFD")
}

// SplitHeader separates the comment header from the JSON body. The body
// starts at the first byte of the first line that is not a comment line.
func SplitHeader(data []byte) (string, []byte) {
	if !hasCommentHeader(data) {
		return "", data
	}

	var lines []string
	offset := 0
	for offset < len(data) {
		line := data[offset:]
		next := len(data)
		if end := bytes.IndexByte(line, '\n'); end >= 0 {
			line = line[:end]
			next = offset + end + 1
		}
		line = bytes.TrimSuffix(line, []byte("\r"))

		if !isCommentLine(line) {
			break
		}
		lines = append(lines, commentText(line))
		offset = next
	}

	return strings.Join(lines, "\n"), data[offset:]
}

// ParseBody decodes a JSON body into an object or array root. Anything that
// is not a valid object or array, including invalid UTF-8, yields an empty
// object.
func ParseBody(body []byte) models.JSONValue {
	if !utf8.Valid(body) || !gjson.ValidBytes(body) {
		return models.NewObject()
	}

	root := gjson.ParseBytes(body)
	if !root.IsArray() && !root.IsObject() {
		return models.NewObject()
	}
	return FromResult(root)
}

// FromResult walks a gjson result into the model types, keeping object
// key order. Numbers keep their literal text as json.Number.
func FromResult(r gjson.Result) models.JSONValue {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return json.Number(r.Raw)
	case gjson.String:
		return r.String()
	}

	if r.IsArray() {
		arr := make(models.JSONArray, 0)
		r.ForEach(func(_, value gjson.Result) bool {
			arr = append(arr, FromResult(value))
			return true
		})
		return arr
	}

	obj := models.NewObject()
	r.ForEach(func(key, value gjson.Result) bool {
		obj.Set(key.String(), FromResult(value))
		return true
	})
	return obj
}

// ParseBytes splits and decodes a complete settings file. It never fails.
func ParseBytes(data []byte) models.ParsedDocument {
	comment, body := SplitHeader(data)

	return models.ParsedDocument{
		Comment: comment,
		Root:    ParseBody(body),
	}
}

// ParseString parses a settings file held in a string
func ParseString(content string) models.ParsedDocument {
	return ParseBytes([]byte(content))
}

// Parse reads all of reader and parses it. The error reports read failures
// only; malformed content degrades to an empty object.
func Parse(reader io.Reader) (models.ParsedDocument, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return ParseBytes(nil), err
	}
	return ParseBytes(data), nil
}

// ParseFile parses the settings file at filePath. A file that cannot be
// opened or read yields an empty document; callers that care whether the
// file exists must check before calling.
func ParseFile(filePath string) models.ParsedDocument {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return ParseBytes(nil)
	}
	return ParseBytes(data)
}
