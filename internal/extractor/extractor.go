// Package extractor recognizes class and field declarations in existing Dart
// source without parsing the language.
//
// The class body is the text between `class Name {` and the first following
// `}`. A body holding a method with braces before the fields is truncated there;
// fields declared after such a method are not seen.
package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mcncl/jsonbean/internal/models"
	"github.com/mcncl/jsonbean/internal/naming"
)

var (
	classNameRegex  = regexp.MustCompile(`class\s+(\w+)\s*\{`)
	lateFieldRegex  = regexp.MustCompile(`late\s+([^;]+?)\s+(\w+);`)
	plainFieldRegex = regexp.MustCompile(`(?m)^\s*([A-Z]\w*(?:<[^>]+>)?[?]?)\s+(\w+);`)
)

// ClassSpan locates a class body in source.
type ClassSpan struct {
	Start     int // index of "class"
	BodyStart int // index just after "{"
	BodyEnd   int // index of the closing "}"
	End       int // index just after "}"
}

// Body returns the text between the braces.
func (s ClassSpan) Body(source string) string {
	return source[s.BodyStart:s.BodyEnd]
}

func classBodyRegex(className string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)class\s+` + regexp.QuoteMeta(className) + `\s*\{([^}]+)\}`)
}

// FindClass returns the span of the first `class <className> { ... }` in source.
func FindClass(source, className string) (ClassSpan, bool) {
	loc := classBodyRegex(className).FindStringSubmatchIndex(source)
	if loc == nil {
		return ClassSpan{}, false
	}
	return ClassSpan{Start: loc[0], BodyStart: loc[2], BodyEnd: loc[3], End: loc[1]}, true
}

// ClassNames lists every `class X {` declaration in source order.
func ClassNames(source string) []string {
	var names []string
	for _, m := range classNameRegex.FindAllStringSubmatch(source, -1) {
		names = append(names, m[1])
	}
	return names
}

// Declaration is a field as written in source.
type Declaration struct {
	Name     string
	TypeText string // without the trailing "?"
	Nullable bool
}

// Declarations returns the fields declared in body: every `late T name;` first,
// then every line-anchored `Capitalized<..>? name;` not already seen.
func Declarations(body string) []Declaration {
	var decls []Declaration
	seen := make(map[string]bool)

	add := func(typeText, name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		typeText = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(typeText), "final "))
		nullable := strings.HasSuffix(typeText, "?")
		decls = append(decls, Declaration{
			Name:     name,
			TypeText: strings.TrimSuffix(typeText, "?"),
			Nullable: nullable,
		})
	}

	for _, m := range lateFieldRegex.FindAllStringSubmatch(body, -1) {
		add(m[1], m[2])
	}
	for _, m := range plainFieldRegex.FindAllStringSubmatch(body, -1) {
		add(m[1], m[2])
	}
	return decls
}

// Extract returns the fields of className in source. The JSON key of each field
// is the snake_case of its name; annotation overrides are applied by callers.
// A missing class or a class without fields yields an empty list.
func Extract(source, className string) []models.FieldDefinition {
	span, ok := FindClass(source, className)
	if !ok {
		return nil
	}

	decls := Declarations(span.Body(source))
	fields := make([]models.FieldDefinition, 0, len(decls))
	for _, d := range decls {
		typ := ParseType(d.TypeText)
		typ.Nullable = d.Nullable || typ.Kind == models.Dynamic
		typ.OriginalKey = naming.SnakeCase(d.Name)
		fields = append(fields, models.FieldDefinition{
			Name:     d.Name,
			JSONKey:  typ.OriginalKey,
			Type:     typ,
			Nullable: typ.Nullable,
		})
	}
	return fields
}

// ExtractClass is Extract packaged as a ClassDefinition.
func ExtractClass(source, className string) models.ClassDefinition {
	return models.ClassDefinition{Name: className, Fields: Extract(source, className)}
}

// ParseType maps Dart type text (without a trailing "?") to a TypeDescriptor.
func ParseType(text string) models.TypeDescriptor {
	text = strings.TrimSpace(text)
	switch text {
	case "String":
		return models.TypeDescriptor{Kind: models.Primitive, PrimitiveName: models.PrimitiveString}
	case "int":
		return models.TypeDescriptor{Kind: models.Primitive, PrimitiveName: models.PrimitiveInteger}
	case "double":
		return models.TypeDescriptor{Kind: models.Primitive, PrimitiveName: models.PrimitiveFloat}
	case "num":
		return models.TypeDescriptor{Kind: models.Primitive, PrimitiveName: models.PrimitiveNumber}
	case "bool":
		return models.TypeDescriptor{Kind: models.Primitive, PrimitiveName: models.PrimitiveBoolean}
	case "DateTime":
		return models.TypeDescriptor{Kind: models.Primitive, PrimitiveName: models.PrimitiveDateTime}
	case "dynamic", "Object", "":
		return models.TypeDescriptor{Kind: models.Dynamic, Nullable: true}
	}

	if inner, ok := genericArgument(text, "List"); ok {
		elem := ParseType(strings.TrimSuffix(inner, "?"))
		if strings.HasSuffix(inner, "?") {
			elem.Nullable = true
		}
		return models.TypeDescriptor{Kind: models.Array, ElementType: &elem}
	}
	if strings.HasPrefix(text, "Map<") || text == "Map" {
		return models.TypeDescriptor{Kind: models.Primitive, PrimitiveName: models.PrimitiveMap}
	}
	return models.TypeDescriptor{Kind: models.Reference, ReferencedClassName: text}
}

// genericArgument returns T for text of the form name<T>.
func genericArgument(text, name string) (string, bool) {
	prefix := name + "<"
	if !strings.HasPrefix(text, prefix) || !strings.HasSuffix(text, ">") {
		return "", false
	}
	return strings.TrimSpace(text[len(prefix) : len(text)-1]), true
}

// String renders the declaration the way it appears in source.
func (d Declaration) String() string {
	if d.Nullable {
		return fmt.Sprintf("%s? %s", d.TypeText, d.Name)
	}
	return fmt.Sprintf("%s %s", d.TypeText, d.Name)
}
