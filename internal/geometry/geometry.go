// Package geometry decodes rectangles stored in settings values.
//
// A rectangle may be stored either as a "x, y, width, height" string or as
// an object with integer x, y, width and height members.
package geometry

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mcncl/jsettings/internal/models"
)

// DecodeRectangle reads a rectangle from value. Any shape other than a
// four-field string or an object yields the zero rectangle.
func DecodeRectangle(value models.JSONValue) models.Rectangle {
	switch v := value.(type) {
	case string:
		fields := strings.Split(v, ",")
		if len(fields) != 4 {
			return models.Rectangle{}
		}
		return models.Rectangle{
			X:      atoi(fields[0]),
			Y:      atoi(fields[1]),
			Width:  atoi(fields[2]),
			Height: atoi(fields[3]),
		}
	case *models.JSONObject:
		return models.Rectangle{
			X:      member(v, "x"),
			Y:      member(v, "y"),
			Width:  member(v, "width"),
			Height: member(v, "height"),
		}
	default:
		return models.Rectangle{}
	}
}

// EncodeRectangle renders r in the string form DecodeRectangle accepts.
func EncodeRectangle(r models.Rectangle) string {
	return fmt.Sprintf("%d, %d, %d, %d", r.X, r.Y, r.Width, r.Height)
}

// ParseRectangle reads the "x, y, width, height" form strictly: exactly
// four comma-separated 32-bit integers. Unlike DecodeRectangle it reports
// malformed text instead of degrading to zero.
func ParseRectangle(text string) (models.Rectangle, error) {
	fields := strings.Split(text, ",")
	if len(fields) != 4 {
		return models.Rectangle{}, fmt.Errorf("want 4 comma-separated fields, got %d", len(fields))
	}

	var parts [4]int
	for i, field := range fields {
		n, err := strconv.ParseInt(strings.TrimSpace(field), 10, 32)
		if err != nil {
			return models.Rectangle{}, fmt.Errorf("field %d: %q is not a 32-bit integer", i+1, strings.TrimSpace(field))
		}
		parts[i] = int(n)
	}
	return models.Rectangle{X: parts[0], Y: parts[1], Width: parts[2], Height: parts[3]}, nil
}

// atoi parses a trimmed 32-bit decimal field; anything else is 0.
func atoi(field string) int {
	n, err := strconv.ParseInt(strings.TrimSpace(field), 10, 32)
	if err != nil {
		return 0
	}
	return int(n)
}

func member(obj *models.JSONObject, key string) int {
	value, ok := obj.Get(key)
	if !ok {
		return 0
	}
	return toInt(value)
}

// toInt accepts integral numbers within the 32-bit range only; fractions,
// strings and other shapes are 0. Native Go numbers of any kind are read
// the same way as parsed ones.
func toInt(value models.JSONValue) int {
	var f float64
	if n, ok := value.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return fitInt32(i)
		}
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	} else {
		v := reflect.ValueOf(value)
		switch v.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return fitInt32(v.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			if v.Uint() > math.MaxInt32 {
				return 0
			}
			return int(v.Uint())
		case reflect.Float32, reflect.Float64:
			f = v.Float()
		default:
			return 0
		}
	}

	if math.IsNaN(f) || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

func fitInt32(i int64) int {
	if i > math.MaxInt32 || i < math.MinInt32 {
		return 0
	}
	return int(i)
}
