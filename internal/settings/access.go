package settings

import (
	"strings"

	"github.com/mcncl/jsettings/internal/errors"
	"github.com/mcncl/jsettings/internal/formatter"
	"github.com/mcncl/jsettings/internal/geometry"
	"github.com/mcncl/jsettings/internal/models"
	"github.com/mcncl/jsettings/internal/notify"
	"github.com/mcncl/jsettings/internal/parser"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Paths use gjson/sjson dotted syntax: "Browser.HomePage", "Search.0".
// Dots, wildcards and other path characters inside a key are escaped with
// a backslash. Modifiers ("@reverse") and pipes are not accepted.
//
// Each call encodes the whole tree once, which is linear in the document
// size.

// validPath rejects empty paths and gjson modifier or pipe syntax.
func validPath(path string) bool {
	if path == "" || strings.Contains(path, "|") {
		return false
	}
	for i := 0; i < len(path); i++ {
		switch {
		case path[i] == '\\':
			i++
		case path[i] == '@' && (i == 0 || path[i-1] == '.'):
			return false
		}
	}
	return true
}

// Get returns the value at path.
func (d *Document) Get(path string) (models.JSONValue, bool) {
	if !validPath(path) {
		return nil, false
	}
	compact, err := formatter.Marshal(d.value)
	if err != nil {
		return nil, false
	}

	result := gjson.GetBytes(compact, path)
	if !result.Exists() {
		return nil, false
	}
	return parser.FromResult(result), true
}

// Set stores value at path, creating intermediate objects as needed.
// value may be a model value or any Go value encoding/json can encode.
func (d *Document) Set(path string, value models.JSONValue) error {
	if !validPath(path) {
		return errors.NewValueError("invalid key '"+path+"'", errors.ErrInvalidPath)
	}

	compact, err := formatter.Marshal(d.value)
	if err != nil {
		return errors.NewEncodeError("failed to serialize settings", err)
	}
	raw, err := formatter.Marshal(value)
	if err != nil {
		return errors.NewEncodeError("failed to serialize value for '"+path+"'", err)
	}

	updated, err := sjson.SetRawBytes(compact, path, raw)
	if err != nil {
		return errors.NewValueError("cannot set '"+path+"'", errors.ErrInvalidPath)
	}

	return d.replace(updated, path)
}

// Delete removes the value at path.
func (d *Document) Delete(path string) error {
	if !validPath(path) {
		return errors.NewValueError("invalid key '"+path+"'", errors.ErrInvalidPath)
	}
	compact, err := formatter.Marshal(d.value)
	if err != nil {
		return errors.NewEncodeError("failed to serialize settings", err)
	}
	if !gjson.GetBytes(compact, path).Exists() {
		return errors.NewValueError("cannot delete '"+path+"'", errors.ErrKeyNotFound)
	}

	updated, err := sjson.DeleteBytes(compact, path)
	if err != nil {
		return errors.NewValueError("cannot delete '"+path+"'", errors.ErrInvalidPath)
	}

	return d.replace(updated, path)
}

// replace installs an edited compact encoding of the root.
func (d *Document) replace(compact []byte, path string) error {
	root := parser.ParseBody(compact)
	if _, isArray := d.value.(models.JSONArray); isArray {
		if _, stillArray := root.(models.JSONArray); !stillArray {
			return errors.NewValueError("edit of '"+path+"' would replace the array root", errors.ErrInvalidRoot)
		}
	}

	d.value = root
	d.notifier.Notify(notify.Change{Type: notify.ChangeValue, Key: path, Path: d.path})
	return nil
}

// Rectangle decodes the geometry stored at path; see geometry.DecodeRectangle.
func (d *Document) Rectangle(path string) models.Rectangle {
	value, _ := d.Get(path)
	return geometry.DecodeRectangle(value)
}

// SetRectangle stores r at path in the "x, y, width, height" string form.
func (d *Document) SetRectangle(path string, r models.Rectangle) error {
	return d.Set(path, geometry.EncodeRectangle(r))
}
