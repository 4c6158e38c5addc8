package generator

import (
	"fmt"

	"github.com/mcncl/jsonbean/internal/models"
)

// DartType renders a TypeDescriptor as a Dart type. Nullable types get a
// trailing "?" except dynamic, which already admits null.
func DartType(td models.TypeDescriptor) string {
	base := dartBaseType(td)
	if td.Nullable && td.Kind != models.Dynamic {
		return base + "?"
	}
	return base
}

func dartBaseType(td models.TypeDescriptor) string {
	switch td.Kind {
	case models.Primitive:
		switch td.PrimitiveName {
		case models.PrimitiveString:
			return "String"
		case models.PrimitiveInteger:
			return "int"
		case models.PrimitiveFloat:
			return "double"
		case models.PrimitiveBoolean:
			return "bool"
		case models.PrimitiveNumber:
			return "num"
		case models.PrimitiveDateTime:
			return "DateTime"
		case models.PrimitiveMap:
			return "Map<String, dynamic>"
		}
		return "dynamic"
	case models.Array:
		if td.ElementType == nil {
			return "List<dynamic>"
		}
		return fmt.Sprintf("List<%s>", DartType(*td.ElementType))
	case models.Reference:
		return td.ReferencedClassName
	default:
		return "dynamic"
	}
}

// decodeExpr reads src, a dynamic Dart expression, as td. depth names the
// lambda parameter so nested list mappings do not shadow each other.
func decodeExpr(td models.TypeDescriptor, src string, depth int) string {
	switch td.Kind {
	case models.Dynamic:
		return src
	case models.Reference:
		if td.Nullable {
			return fmt.Sprintf("%s != null ? %s.fromJson(%s as Map<String, dynamic>) : null", src, td.ReferencedClassName, src)
		}
		return fmt.Sprintf("%s.fromJson(%s as Map<String, dynamic>)", td.ReferencedClassName, src)
	case models.Array:
		elem := models.TypeDescriptor{Kind: models.Dynamic, Nullable: true}
		if td.ElementType != nil {
			elem = *td.ElementType
		}
		param := lambdaParam(depth)
		mapped := decodeExpr(elem, param, depth+1)
		if td.Nullable {
			return fmt.Sprintf("(%s as List<dynamic>?)?.map((%s) => %s).toList()", src, param, mapped)
		}
		return fmt.Sprintf("(%s as List<dynamic>).map((%s) => %s).toList()", src, param, mapped)
	}

	switch td.PrimitiveName {
	case models.PrimitiveFloat:
		if td.Nullable {
			return fmt.Sprintf("(%s as num?)?.toDouble()", src)
		}
		return fmt.Sprintf("(%s as num).toDouble()", src)
	case models.PrimitiveDateTime:
		if td.Nullable {
			return fmt.Sprintf("%s != null ? DateTime.parse(%s as String) : null", src, src)
		}
		return fmt.Sprintf("DateTime.parse(%s as String)", src)
	}
	return fmt.Sprintf("%s as %s", src, DartType(td))
}

// encodeExpr renders the JSON form of src, a Dart expression of type td.
func encodeExpr(td models.TypeDescriptor, src string, depth int) string {
	access := "."
	if td.Nullable {
		access = "?."
	}
	switch td.Kind {
	case models.Reference:
		return src + access + "toJson()"
	case models.Array:
		if td.ElementType == nil || !needsEncoding(*td.ElementType) {
			return src
		}
		param := lambdaParam(depth)
		return fmt.Sprintf("%s%smap((%s) => %s).toList()", src, access, param, encodeExpr(*td.ElementType, param, depth+1))
	case models.Primitive:
		if td.PrimitiveName == models.PrimitiveDateTime {
			return src + access + "toIso8601String()"
		}
	}
	return src
}

// needsEncoding reports whether values of td differ from their JSON form.
func needsEncoding(td models.TypeDescriptor) bool {
	inner := td.Innermost()
	return inner.Kind == models.Reference ||
		(inner.Kind == models.Primitive && inner.PrimitiveName == models.PrimitiveDateTime)
}

func lambdaParam(depth int) string {
	if depth == 0 {
		return "e"
	}
	return fmt.Sprintf("e%d", depth)
}
