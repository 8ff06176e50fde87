// Package settings persists configuration documents: an optional "//"
// comment header followed by a JSON object or array.
//
// A Document is loaded once from a path, mutated in memory and written back
// with Save, either directly or through a staging file that atomically
// replaces the destination. Loading never fails: a missing, unreadable or
// malformed file yields an empty object. Save failures are returned and
// also recorded in a sticky flag read with HasError.
//
// A Document is not safe for concurrent use.
package settings

import (
	"github.com/mcncl/jsettings/internal/errors"
	"github.com/mcncl/jsettings/internal/formatter"
	"github.com/mcncl/jsettings/internal/models"
	"github.com/mcncl/jsettings/internal/notify"
	"github.com/mcncl/jsettings/internal/parser"
)

// Document is a settings file held in memory.
type Document struct {
	comment  string
	value    models.JSONValue
	path     string
	hasError bool

	formatter *formatter.Formatter
	notifier  *notify.Notifier
}

// New returns an empty object document with no source path.
func New() *Document {
	return &Document{
		value:     models.NewObject(),
		formatter: formatter.NewFormatter(),
		notifier:  notify.New(),
	}
}

// Load reads the settings file at path. It never fails; check for the
// file's existence beforehand if the difference matters.
func Load(path string) *Document {
	return fromParsed(parser.ParseFile(path), path)
}

// FromBytes builds a document from file content without touching disk.
func FromBytes(data []byte, path string) *Document {
	return fromParsed(parser.ParseBytes(data), path)
}

func fromParsed(parsed models.ParsedDocument, path string) *Document {
	d := New()
	d.comment = parsed.Comment
	d.value = parsed.Root
	d.path = path
	return d
}

// Path returns the source path the document was loaded from.
func (d *Document) Path() string {
	return d.path
}

// HasError reports whether the last save attempt failed.
func (d *Document) HasError() bool {
	return d.hasError
}

// Comment returns the header text, lines joined by "\n".
func (d *Document) Comment() string {
	return d.comment
}

// SetComment replaces the header text. An empty comment writes no header.
func (d *Document) SetComment(comment string) {
	d.comment = comment
	d.notifier.Notify(notify.Change{Type: notify.ChangeComment, Path: d.path})
}

// Value returns the root, either *models.JSONObject or models.JSONArray.
// The tree is owned by the document; use Set or SetValue to have changes
// announced to subscribers.
func (d *Document) Value() models.JSONValue {
	return d.value
}

// SetValue replaces the root. Only objects and arrays are accepted.
func (d *Document) SetValue(value models.JSONValue) error {
	switch v := value.(type) {
	case *models.JSONObject:
		if v == nil {
			return errors.NewValueError("cannot set a nil object as the root", errors.ErrInvalidRoot)
		}
	case models.JSONArray:
	default:
		return errors.NewValueError("cannot set a scalar as the root", errors.ErrInvalidRoot)
	}

	d.value = value
	d.notifier.Notify(notify.Change{Type: notify.ChangeValue, Path: d.path})
	return nil
}

// Object returns the root object, or false when the root is an array.
func (d *Document) Object() (*models.JSONObject, bool) {
	obj, ok := d.value.(*models.JSONObject)
	return obj, ok
}

// Array returns the root array, or false when the root is an object.
func (d *Document) Array() (models.JSONArray, bool) {
	arr, ok := d.value.(models.JSONArray)
	return arr, ok
}

// IsArray reports whether the root is an array.
func (d *Document) IsArray() bool {
	_, ok := d.value.(models.JSONArray)
	return ok
}

// Subscribe registers observer for every change to the document.
func (d *Document) Subscribe(observer notify.Observer) *notify.Subscription {
	return d.notifier.Subscribe(observer)
}

// SubscribeKey registers observer for changes at or below key.
func (d *Document) SubscribeKey(key string, observer notify.Observer) *notify.Subscription {
	return d.notifier.SubscribeKey(key, observer)
}
