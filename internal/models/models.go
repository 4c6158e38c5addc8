package models

import (
	"bytes"

	gojson "github.com/goccy/go-json"
)

// JSONValue is a generic type to represent any JSON value.
// This can be a string, json.Number, boolean, nil, *JSONObject, or JSONArray.
type JSONValue interface{}

// JSONObject represents a JSON object whose keys keep their encounter order.
// Duplicate keys keep the position of the first occurrence and the value of the last.
type JSONObject struct {
	Keys   []string
	Values map[string]JSONValue
}

// NewJSONObject returns an empty object ready for Set.
func NewJSONObject() *JSONObject {
	return &JSONObject{Values: make(map[string]JSONValue)}
}

// Set stores value under key, appending key to the order on first use.
func (o *JSONObject) Set(key string, value JSONValue) {
	if _, exists := o.Values[key]; !exists {
		o.Keys = append(o.Keys, key)
	}
	o.Values[key] = value
}

// Get returns the value stored under key.
func (o *JSONObject) Get(key string) (JSONValue, bool) {
	v, ok := o.Values[key]
	return v, ok
}

// Len returns the number of distinct keys.
func (o *JSONObject) Len() int {
	return len(o.Keys)
}

// MarshalJSON renders the object with its keys in encounter order.
func (o *JSONObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := gojson.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := gojson.Marshal(o.Values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// IntermediateRepresentation is a structure to hold the parsed JSON data
// in a way that's easy for the analyzer to work with.
type IntermediateRepresentation struct {
	Root        JSONValue
	RootIsArray bool // True if the root of the JSON is an array vs an object
}
