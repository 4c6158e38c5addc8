package extractor

import (
	"regexp"
	"strings"

	"github.com/mcncl/jsonbean/internal/models"
)

var (
	annotatedFieldRegex = regexp.MustCompile(`@JSONField\(((?:'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*"|[^)'"])*)\)\s*(?:late\s+)?[\w<>?,\s]+?\s(\w+)\s*;`)
	annotationNameRegex = regexp.MustCompile(`name:\s*(?:'((?:[^'\\]|\\.)*)'|"((?:[^"\\]|\\.)*)")`)
)

// JSONKeyOverrides returns field name -> JSON key for every field in body
// annotated with @JSONField(name: '...').
func JSONKeyOverrides(body string) map[string]string {
	overrides := make(map[string]string)
	for _, m := range annotatedFieldRegex.FindAllStringSubmatch(body, -1) {
		name := annotationNameRegex.FindStringSubmatch(m[1])
		if name == nil {
			continue
		}
		quoted := name[1]
		if quoted == "" {
			quoted = name[2]
		}
		overrides[m[2]] = unescapeDartString(quoted)
	}
	return overrides
}

// unescapeDartString reverses the escapes of a non-raw Dart string literal.
func unescapeDartString(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// ExtractAnnotated extracts className like Extract, then lets an explicit
// @JSONField(name:) win over the derived snake_case key.
func ExtractAnnotated(source, className string) models.ClassDefinition {
	def := ExtractClass(source, className)
	span, ok := FindClass(source, className)
	if !ok {
		return def
	}
	overrides := JSONKeyOverrides(span.Body(source))
	for i := range def.Fields {
		if key, ok := overrides[def.Fields[i].Name]; ok {
			def.Fields[i].JSONKey = key
			def.Fields[i].Type.OriginalKey = key
		}
	}
	return def
}
