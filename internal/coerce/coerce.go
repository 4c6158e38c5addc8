// Package coerce converts loosely typed runtime values to a requested target
// type, following the rules of the generated registry's asT helper. Coercion
// never fails: an unparsable value becomes nil and an unsupported target
// returns the value unchanged.
package coerce

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mcncl/jsonbean/internal/models"
)

// Kind enumerates the supported target kinds.
type Kind int

const (
	KindOther Kind = iota
	KindString
	KindInt
	KindDouble
	KindBool
	KindDateTime
	KindList
	KindClass
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindBool:
		return "bool"
	case KindDateTime:
		return "DateTime"
	case KindList:
		return "List"
	case KindClass:
		return "class"
	default:
		return "other"
	}
}

// Target is a parsed target type. Elem is set for KindList, Class for KindClass.
type Target struct {
	Kind  Kind
	Elem  *Target
	Class string
	Name  string
}

// ParseTarget parses a Dart type name such as "int", "List<String>" or
// "UserEntity". A trailing "?" is ignored. Names that are neither a primitive
// nor a list nor a plain identifier parse as KindOther.
func ParseTarget(name string) Target {
	name = strings.TrimSuffix(strings.TrimSpace(name), "?")
	t := Target{Name: name}

	switch name {
	case "String":
		t.Kind = KindString
	case "int":
		t.Kind = KindInt
	case "double":
		t.Kind = KindDouble
	case "bool":
		t.Kind = KindBool
	case "DateTime":
		t.Kind = KindDateTime
	default:
		switch {
		case strings.HasPrefix(name, "List<") && strings.HasSuffix(name, ">"):
			elem := ParseTarget(name[len("List<") : len(name)-1])
			t.Kind = KindList
			t.Elem = &elem
		case isIdentifier(name):
			t.Kind = KindClass
			t.Class = name
		}
	}
	return t
}

// String renders the target back as a type name.
func (t Target) String() string {
	return t.Name
}

// Decoder builds a class instance from a JSON object.
type Decoder func(obj *models.JSONObject) (any, error)

// Registry maps class names to decoders for KindClass targets.
type Registry struct {
	decoders map[string]Decoder
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]Decoder)}
}

// Register adds a decoder for className. It reports false and keeps the
// existing decoder when className is already registered.
func (r *Registry) Register(className string, decode Decoder) bool {
	if _, exists := r.decoders[className]; exists {
		return false
	}
	r.decoders[className] = decode
	return true
}

// Has reports whether className has a decoder.
func (r *Registry) Has(className string) bool {
	_, ok := r.decoders[className]
	return ok
}

// Coerce converts value to the type named by typeName.
func (r *Registry) Coerce(typeName string, value any) any {
	return r.CoerceTo(ParseTarget(typeName), value)
}

// CoerceTo converts value to target. Ints come back as int64, doubles as
// float64 and date-times as time.Time.
func (r *Registry) CoerceTo(target Target, value any) any {
	if value == nil {
		return nil
	}

	switch target.Kind {
	case KindString:
		if s, ok := value.(string); ok {
			return s
		}
		return stringForm(value)
	case KindInt:
		return toInt(value)
	case KindDouble:
		return toDouble(value)
	case KindBool:
		return toBool(value)
	case KindDateTime:
		return toDateTime(value)
	case KindList:
		items, ok := asList(value)
		if !ok {
			return value
		}
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = r.CoerceTo(*target.Elem, item)
		}
		return out
	case KindClass:
		decode, ok := r.decoders[target.Class]
		if !ok {
			return value
		}
		obj, ok := value.(*models.JSONObject)
		if !ok {
			return value
		}
		inst, err := decode(obj)
		if err != nil {
			return nil
		}
		return inst
	default:
		return value
	}
}

func toInt(value any) any {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	s := stringForm(value)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	// double.toInt saturates on native platforms.
	switch {
	case f >= 1<<63:
		return int64(math.MaxInt64)
	case f < -(1 << 63):
		return int64(math.MinInt64)
	}
	return int64(f)
}

func toDouble(value any) any {
	if f, ok := value.(float64); ok {
		return f
	}
	f, err := strconv.ParseFloat(stringForm(value), 64)
	if err != nil {
		return nil
	}
	return f
}

func toBool(value any) any {
	if b, ok := value.(bool); ok {
		return b
	}
	switch stringForm(value) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}
	return nil
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseDateTime accepts the ISO-8601 shapes DateTime.parse reads.
func ParseDateTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateTimeLayouts {
		at, err := time.Parse(layout, s)
		if err == nil {
			return at, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func toDateTime(value any) any {
	if at, ok := value.(time.Time); ok {
		return at
	}
	at, err := ParseDateTime(stringForm(value))
	if err != nil {
		return nil
	}
	return at
}

func asList(value any) ([]any, bool) {
	switch v := value.(type) {
	case models.JSONArray:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out, true
	case []any:
		return v, true
	}
	return nil, false
}

// stringForm is the text a value prints as; json.Number keeps its literal.
func stringForm(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339Nano)
	}
	return fmt.Sprint(value)
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
