// Package binding evaluates the decode and encode functions emitted for a set
// of class definitions against parsed JSON, so their behavior can be checked
// without a Dart toolchain.
package binding

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/mcncl/jsonbean/internal/coerce"
	"github.com/mcncl/jsonbean/internal/models"
)

// Instance is a decoded object. Values is keyed by field name; a field that
// was never assigned is absent.
type Instance struct {
	Class  string
	Values map[string]any
}

// CastError mirrors a failed cast in the emitted decode function.
type CastError struct {
	Path string
	Want string
	Got  any
}

func (e *CastError) Error() string {
	return fmt.Sprintf("%s: cannot use %s as %s", e.Path, describe(e.Got), e.Want)
}

// UnknownClassError reports a reference to a class the registry lacks.
type UnknownClassError struct {
	Class string
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("unknown class %s", e.Class)
}

// UninitializedError reports a field read before it was assigned.
type UninitializedError struct {
	Class string
	Field string
}

func (e *UninitializedError) Error() string {
	return fmt.Sprintf("field %s.%s has not been initialized", e.Class, e.Field)
}

// Registry resolves class references during decode and encode.
type Registry struct {
	classes map[string]models.ClassDefinition
	order   []string
}

// NewRegistry indexes defs by name. The first definition of a name wins.
func NewRegistry(defs []models.ClassDefinition) *Registry {
	r := &Registry{classes: make(map[string]models.ClassDefinition, len(defs))}
	for _, def := range defs {
		if _, exists := r.classes[def.Name]; exists {
			continue
		}
		r.classes[def.Name] = def
		r.order = append(r.order, def.Name)
	}
	return r
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (models.ClassDefinition, bool) {
	def, ok := r.classes[name]
	return def, ok
}

// Names lists registered classes in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Decode builds an instance of className from obj the way $<Class>FromJson
// does: every field is assigned, absent keys read as null.
func (r *Registry) Decode(className string, obj *models.JSONObject) (*Instance, error) {
	return r.decodeObject(className, obj, className)
}

func (r *Registry) decodeObject(className string, obj *models.JSONObject, path string) (*Instance, error) {
	def, ok := r.classes[className]
	if !ok {
		return nil, &UnknownClassError{Class: className}
	}

	inst := &Instance{Class: className, Values: make(map[string]any, len(def.Fields))}
	for _, field := range def.Fields {
		raw, _ := obj.Get(field.JSONKey)
		v, err := r.decodeValue(field.Type, raw, path+"."+field.JSONKey)
		if err != nil {
			return nil, err
		}
		inst.Values[field.Name] = v
	}
	return inst, nil
}

func (r *Registry) decodeValue(td models.TypeDescriptor, raw any, path string) (any, error) {
	if td.Kind == models.Dynamic {
		return raw, nil
	}
	if raw == nil {
		if td.Nullable {
			return nil, nil
		}
		return nil, &CastError{Path: path, Want: typeName(td), Got: nil}
	}

	switch td.Kind {
	case models.Reference:
		obj, ok := raw.(*models.JSONObject)
		if !ok {
			return nil, &CastError{Path: path, Want: "Map<String, dynamic>", Got: raw}
		}
		return r.decodeObject(td.ReferencedClassName, obj, path)
	case models.Array:
		arr, ok := raw.(models.JSONArray)
		if !ok {
			return nil, &CastError{Path: path, Want: "List<dynamic>", Got: raw}
		}
		elem := models.TypeDescriptor{Kind: models.Dynamic, Nullable: true}
		if td.ElementType != nil {
			elem = *td.ElementType
		}
		out := make([]any, len(arr))
		for i, item := range arr {
			v, err := r.decodeValue(elem, item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return decodePrimitive(td, raw, path)
}

func decodePrimitive(td models.TypeDescriptor, raw any, path string) (any, error) {
	fail := &CastError{Path: path, Want: typeName(td), Got: raw}

	switch td.PrimitiveName {
	case models.PrimitiveString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case models.PrimitiveBoolean:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	case models.PrimitiveInteger:
		if n, ok := raw.(json.Number); ok && isIntegral(n) {
			return n, nil
		}
	case models.PrimitiveFloat, models.PrimitiveNumber:
		if n, ok := raw.(json.Number); ok {
			return n, nil
		}
	case models.PrimitiveMap:
		if obj, ok := raw.(*models.JSONObject); ok {
			return obj, nil
		}
	case models.PrimitiveDateTime:
		s, ok := raw.(string)
		if !ok {
			return nil, fail
		}
		at, err := coerce.ParseDateTime(s)
		if err != nil {
			return nil, &CastError{Path: path, Want: "DateTime", Got: s}
		}
		return at, nil
	default:
		return raw, nil
	}
	return nil, fail
}

// Encode renders inst the way $<Class>ToJson does: one key per field in
// declaration order.
func (r *Registry) Encode(inst *Instance) (*models.JSONObject, error) {
	def, ok := r.classes[inst.Class]
	if !ok {
		return nil, &UnknownClassError{Class: inst.Class}
	}

	obj := models.NewJSONObject()
	for _, field := range def.Fields {
		v, set := inst.Values[field.Name]
		if !set {
			return nil, &UninitializedError{Class: inst.Class, Field: field.Name}
		}
		encoded, err := r.encodeValue(field.Type, v)
		if err != nil {
			return nil, err
		}
		obj.Set(field.JSONKey, encoded)
	}
	return obj, nil
}

func (r *Registry) encodeValue(td models.TypeDescriptor, v any) (models.JSONValue, error) {
	if v == nil {
		return nil, nil
	}
	switch td.Kind {
	case models.Reference:
		inst, ok := v.(*Instance)
		if !ok {
			return nil, fmt.Errorf("expected %s instance, got %T", td.ReferencedClassName, v)
		}
		return r.Encode(inst)
	case models.Array:
		items, ok := v.([]any)
		if !ok {
			return v, nil
		}
		elem := models.TypeDescriptor{Kind: models.Dynamic, Nullable: true}
		if td.ElementType != nil {
			elem = *td.ElementType
		}
		out := make(models.JSONArray, len(items))
		for i, item := range items {
			encoded, err := r.encodeValue(elem, item)
			if err != nil {
				return nil, err
			}
			out[i] = encoded
		}
		return out, nil
	case models.Primitive:
		if at, ok := v.(time.Time); ok && td.PrimitiveName == models.PrimitiveDateTime {
			return at.Format(time.RFC3339Nano), nil
		}
	}
	return v, nil
}

func isIntegral(n json.Number) bool {
	if _, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return true
	}
	f, err := strconv.ParseFloat(string(n), 64)
	return err == nil && !math.IsInf(f, 0) && f == math.Trunc(f)
}

func typeName(td models.TypeDescriptor) string {
	switch td.Kind {
	case models.Reference:
		return td.ReferencedClassName
	case models.Array:
		return "List"
	case models.Dynamic:
		return "dynamic"
	}
	return string(td.PrimitiveName)
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "String"
	case bool:
		return "bool"
	case json.Number:
		return "num"
	case *models.JSONObject:
		return "Map"
	case models.JSONArray:
		return "List"
	}
	return fmt.Sprintf("%T", v)
}
