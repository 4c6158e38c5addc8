package generator

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/mcncl/jsonbean/internal/models"
)

const helperHeader = `// GENERATED CODE - DO NOT MODIFY BY HAND

// ignore_for_file: non_constant_identifier_names
// ignore_for_file: camel_case_types
// ignore_for_file: prefer_single_quotes
`

// RenderDecode renders $<Class>FromJson, which fills a fresh instance from a
// JSON map field by field.
func RenderDecode(def models.ClassDefinition) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s $%sFromJson(Map<String, dynamic> json) {\n", def.Name, def.Name))
	buf.WriteString(fmt.Sprintf("  final %s entity = %s();\n", def.Name, def.Name))
	for _, field := range def.Fields {
		src := fmt.Sprintf("json['%s']", escapeDartString(field.JSONKey))
		buf.WriteString(fmt.Sprintf("  entity.%s = %s;\n", field.Name, decodeExpr(field.Type, src, 0)))
	}
	buf.WriteString("  return entity;\n")
	buf.WriteString("}\n")
	return buf.String()
}

// RenderEncode renders $<Class>ToJson, the structural inverse of RenderDecode.
func RenderEncode(def models.ClassDefinition) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Map<String, dynamic> $%sToJson(%s entity) {\n", def.Name, def.Name))
	buf.WriteString("  final Map<String, dynamic> data = <String, dynamic>{};\n")
	for _, field := range def.Fields {
		src := "entity." + field.Name
		buf.WriteString(fmt.Sprintf("  data['%s'] = %s;\n", escapeDartString(field.JSONKey), encodeExpr(field.Type, src, 0)))
	}
	buf.WriteString("  return data;\n")
	buf.WriteString("}\n")
	return buf.String()
}

// RenderHelperFile renders the companion helper for the entity file at
// entityPath. The helper lives under the generated path and imports the
// entity file it serves.
func RenderHelperFile(defs []models.ClassDefinition, entityPath string, layout models.ProjectLayout) string {
	var buf bytes.Buffer

	buf.WriteString(helperHeader)
	buf.WriteString("\n")
	buf.WriteString(fmt.Sprintf("import '%s';\n", importFrom(layout, GeneratedDir(layout), filepath.Clean(entityPath))))

	for _, def := range defs {
		buf.WriteString("\n")
		buf.WriteString(RenderDecode(def))
		buf.WriteString("\n")
		buf.WriteString(RenderEncode(def))
	}
	return buf.String()
}
