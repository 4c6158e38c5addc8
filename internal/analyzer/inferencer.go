package analyzer

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/mcncl/jsonbean/internal/models"
	"github.com/mcncl/jsonbean/internal/naming"
)

// Infer converts one JSON value into a TypeDescriptor.
//
// Inference is single-sample: a number is typed by the value seen here and an
// array by its first element only. Later observations never refine the result.
// Every non-null field shares the project-wide nullability switch; an explicit
// null is always nullable.
func Infer(value models.JSONValue, key string, opts models.GenerationOptions, enclosingClassName string) models.TypeDescriptor {
	switch v := value.(type) {
	case nil:
		return models.TypeDescriptor{Kind: models.Dynamic, Nullable: true, OriginalKey: key}
	case string:
		return primitive(models.PrimitiveString, key, opts)
	case json.Number:
		return primitive(numberKind(v), key, opts)
	case float64:
		return primitive(floatKind(v), key, opts)
	case int, int64:
		return primitive(models.PrimitiveInteger, key, opts)
	case bool:
		return primitive(models.PrimitiveBoolean, key, opts)
	case models.JSONArray:
		var elem models.TypeDescriptor
		if len(v) == 0 {
			elem = models.TypeDescriptor{Kind: models.Dynamic, Nullable: true, OriginalKey: key}
		} else {
			elem = Infer(v[0], key, opts, enclosingClassName)
			// Elements are non-nullable; only the list itself follows the switch.
			if elem.Kind != models.Dynamic {
				elem.Nullable = false
			}
		}
		return models.TypeDescriptor{
			Kind:        models.Array,
			ElementType: &elem,
			Nullable:    opts.NullSafetyEnabled,
			OriginalKey: key,
		}
	case *models.JSONObject:
		return models.TypeDescriptor{
			Kind:                models.Reference,
			ReferencedClassName: enclosingClassName + naming.PascalCase(key),
			Nullable:            opts.NullSafetyEnabled,
			OriginalKey:         key,
		}
	default:
		return models.TypeDescriptor{Kind: models.Dynamic, Nullable: true, OriginalKey: key}
	}
}

func primitive(name models.PrimitiveName, key string, opts models.GenerationOptions) models.TypeDescriptor {
	return models.TypeDescriptor{
		Kind:          models.Primitive,
		PrimitiveName: name,
		Nullable:      opts.NullSafetyEnabled,
		OriginalKey:   key,
	}
}

// numberKind is integer when the literal has no fractional part, so 3.0 and
// 1e3 are integers just like 3.
func numberKind(num json.Number) models.PrimitiveName {
	if _, err := strconv.ParseInt(string(num), 10, 64); err == nil {
		return models.PrimitiveInteger
	}
	f, err := strconv.ParseFloat(string(num), 64)
	if err != nil {
		return models.PrimitiveFloat
	}
	return floatKind(f)
}

func floatKind(f float64) models.PrimitiveName {
	if !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) {
		return models.PrimitiveInteger
	}
	return models.PrimitiveFloat
}
