package generator

import (
	"bytes"
	"fmt"

	"github.com/mcncl/jsonbean/internal/models"
	"github.com/mcncl/jsonbean/internal/naming"
)

// RenderClass renders one entity class: annotated late fields, a no-arg
// constructor, the fromJson/toJson hooks into the companion helper, toString
// and, when enabled, copyWith.
func RenderClass(def models.ClassDefinition, opts models.GenerationOptions) string {
	var buf bytes.Buffer

	buf.WriteString("@JsonSerializable()\n")
	buf.WriteString(fmt.Sprintf("class %s {\n", def.Name))

	for _, field := range def.Fields {
		// Keys that snake_case cannot reproduce are pinned so helper
		// regeneration from this file reads the same key.
		if naming.SnakeCase(field.Name) != field.JSONKey {
			buf.WriteString(fmt.Sprintf("  @JSONField(name: '%s')\n", escapeDartString(field.JSONKey)))
		}
		buf.WriteString(fmt.Sprintf("  late %s %s;\n", DartType(field.Type), field.Name))
	}
	if len(def.Fields) > 0 {
		buf.WriteString("\n")
	}

	buf.WriteString(fmt.Sprintf("  %s();\n\n", def.Name))
	buf.WriteString(fmt.Sprintf("  factory %s.fromJson(Map<String, dynamic> json) => $%sFromJson(json);\n\n", def.Name, def.Name))
	buf.WriteString(fmt.Sprintf("  Map<String, dynamic> toJson() => $%sToJson(this);\n\n", def.Name))
	buf.WriteString("  @override\n")
	buf.WriteString("  String toString() => jsonEncode(this);\n")

	if opts.GenerateCopyMethod && len(def.Fields) > 0 {
		buf.WriteString("\n")
		buf.WriteString(renderCopyWith(def))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// renderCopyWith returns a fresh instance; every field takes the override when
// given and the receiver's value otherwise.
func renderCopyWith(def models.ClassDefinition) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("  %s copyWith({\n", def.Name))
	for _, field := range def.Fields {
		param := field.Type
		param.Nullable = true
		buf.WriteString(fmt.Sprintf("    %s %s,\n", DartType(param), field.Name))
	}
	buf.WriteString("  }) {\n")
	buf.WriteString(fmt.Sprintf("    return %s()", def.Name))
	for _, field := range def.Fields {
		buf.WriteString(fmt.Sprintf("\n      ..%s = %s ?? this.%s", field.Name, field.Name, field.Name))
	}
	buf.WriteString(";\n")
	buf.WriteString("  }\n")
	return buf.String()
}

// RenderEntityFile renders a complete entity file holding defs in order,
// importing the base annotations and the companion helper named fileBase.
func RenderEntityFile(defs []models.ClassDefinition, fileBase string, layout models.ProjectLayout, opts models.GenerationOptions) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("import '%s';\n", packageImport(layout, "base/json_field.dart")))
	buf.WriteString(fmt.Sprintf("import '%s';\n", packageImport(layout, fileBase+".g.dart")))
	buf.WriteString("import 'dart:convert';\n\n")
	buf.WriteString(fmt.Sprintf("export '%s';\n", packageImport(layout, fileBase+".g.dart")))

	for _, def := range defs {
		buf.WriteString("\n")
		buf.WriteString(RenderClass(def, opts))
	}
	return buf.String()
}

func escapeDartString(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '\\', '\'', '$':
			buf.WriteRune('\\')
		case '\n':
			buf.WriteString(`\n`)
			continue
		case '\r':
			buf.WriteString(`\r`)
			continue
		}
		buf.WriteRune(r)
	}
	return buf.String()
}
