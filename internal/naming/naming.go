// Package naming holds the identifier rules shared by inference, extraction
// and code generation.
package naming

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
)

var classNameRegex = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)

// ValidClassName reports whether name is acceptable as a root class base name.
func ValidClassName(name string) bool {
	return classNameRegex.MatchString(name)
}

// PascalCase converts a JSON key into the suffix used for nested class names.
func PascalCase(key string) string {
	name := strcase.ToCamel(key)
	if name == "" {
		return "Field"
	}
	return name
}

// FieldName converts a JSON key into a camelCase field identifier.
// Reserved words are passed through unescaped.
func FieldName(key string) string {
	name := strcase.ToLowerCamel(key)
	if name == "" {
		return "field"
	}
	return name
}

// SnakeCase inserts an underscore before every uppercase letter after the
// first character and lowercases the result: userName -> user_name,
// userID -> user_i_d.
func SnakeCase(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EntityFileBase is the file name, without extension, of the entity file
// generated for a root class base name.
func EntityFileBase(className string) string {
	return strings.ToLower(className) + "_entity"
}

// ClassFileBase derives a snake_case file base from a class name, used when an
// augmented class has no known source file name.
func ClassFileBase(className string) string {
	return SnakeCase(className)
}
