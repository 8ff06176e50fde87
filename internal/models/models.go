package models

import "encoding/json"

// JSONValue is a generic type to represent any JSON value.
// This can be nil, bool, json.Number, string, JSONArray or *JSONObject.
// Native Go numbers are accepted when values are built in memory.
type JSONValue interface{}

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// Member is a single key/value pair of a JSONObject.
type Member struct {
	Key   string
	Value JSONValue
}

// JSONObject represents a JSON object whose keys keep their insertion order.
// Keys are unique; setting an existing key replaces its value in place.
type JSONObject struct {
	members []Member
	index   map[string]int
}

// NewObject returns an empty object.
func NewObject() *JSONObject {
	return &JSONObject{index: make(map[string]int)}
}

// Len returns the number of members.
func (o *JSONObject) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Keys returns the keys in insertion order.
func (o *JSONObject) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.Key
	}
	return keys
}

// Members returns a copy of the members in insertion order.
func (o *JSONObject) Members() []Member {
	if o == nil {
		return nil
	}
	return append([]Member(nil), o.members...)
}

// Get returns the value stored under key.
func (o *JSONObject) Get(key string) (JSONValue, bool) {
	if o == nil {
		return nil, false
	}
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.members[i].Value, true
}

// Set stores value under key, appending the key if it is new.
func (o *JSONObject) Set(key string, value JSONValue) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.members[i].Value = value
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: value})
}

// Delete removes key, keeping the order of the remaining members.
func (o *JSONObject) Delete(key string) bool {
	if o == nil {
		return false
	}
	i, ok := o.index[key]
	if !ok {
		return false
	}
	o.members = append(o.members[:i], o.members[i+1:]...)
	delete(o.index, key)
	for j := i; j < len(o.members); j++ {
		o.index[o.members[j].Key] = j
	}
	return true
}

// Equal reports whether a and b are structurally equal JSON values.
// Numbers compare by their numeric value, objects compare member order too.
func Equal(a, b JSONValue) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case JSONArray:
		bv, ok := b.(JSONArray)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *JSONObject:
		bv, ok := b.(*JSONObject)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for i, m := range av.members {
			if bv.members[i].Key != m.Key || !Equal(m.Value, bv.members[i].Value) {
				return false
			}
		}
		return true
	default:
		an, aok := numberText(a)
		bn, bok := numberText(b)
		if !aok || !bok {
			return false
		}
		if an == bn {
			return true
		}
		af, aerr := json.Number(an).Float64()
		bf, berr := json.Number(bn).Float64()
		return aerr == nil && berr == nil && af == bf
	}
}

func numberText(v JSONValue) (string, bool) {
	switch n := v.(type) {
	case json.Number:
		return n.String(), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		b, err := json.Marshal(n)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
	return "", false
}

// Rectangle is an integer geometry decoded from a settings value.
type Rectangle struct {
	X      int
	Y      int
	Width  int
	Height int
}

// IsNull reports whether every component is zero.
func (r Rectangle) IsNull() bool {
	return r == Rectangle{}
}

// ParsedDocument holds the two halves of a settings file: the comment
// header and the JSON root.
type ParsedDocument struct {
	Comment string
	Root    JSONValue // *JSONObject or JSONArray, never a scalar
}
