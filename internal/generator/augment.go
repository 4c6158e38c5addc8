package generator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mcncl/jsonbean/internal/errors"
	"github.com/mcncl/jsonbean/internal/extractor"
	"github.com/mcncl/jsonbean/internal/models"
)

var (
	importLineRegex = regexp.MustCompile(`(?m)^import\s+[^;]+;$`)
	classDeclRegex  = regexp.MustCompile(`(?m)^[ \t]*(?:abstract\s+)?class\s+\w+`)
	toJSONDeclRegex = regexp.MustCompile(`\btoJson\s*\(\s*\)\s*(?:=>|\{)`)
)

// Augment adds fromJson/toJson hooks to className in source. It returns source
// unchanged when the class already declares both hooks. Otherwise only the
// missing members, the @JsonSerializable() marker and the imports and export
// needed by the companion helper <fileBase>.g.dart are inserted.
func Augment(source, className, fileBase string, layout models.ProjectLayout) (string, error) {
	span, ok := extractor.FindClass(source, className)
	if !ok {
		return "", errors.NewClassNotFoundError(className)
	}

	members := classMembers(source, span)
	hasFromJSON := referencesFromJSON(members, className)
	hasToJSON := toJSONDeclRegex.MatchString(members)
	if hasFromJSON && hasToJSON {
		return source, nil
	}

	if len(extractor.Declarations(span.Body(source))) == 0 {
		return "", errors.NewNoFieldsError(className)
	}

	body := span.Body(source)
	if !hasFromJSON {
		body += fmt.Sprintf("\n  factory %s.fromJson(Map<String, dynamic> json) => $%sFromJson(json);\n", className, className)
	}
	if !hasToJSON {
		body += fmt.Sprintf("\n  Map<String, dynamic> toJson() => $%sToJson(this);\n", className)
	}
	updated := source[:span.BodyStart] + body + source[span.BodyEnd:]

	if !hasMarker(source, span.Start) {
		lineStart := strings.LastIndex(updated[:span.Start], "\n") + 1
		updated = updated[:lineStart] + "@JsonSerializable()\n" + updated[lineStart:]
	}

	return addImports(updated, fileBase, layout), nil
}

// classMembers is the text of the class starting at span up to the next class
// declaration, so members after a nested brace still count.
func classMembers(source string, span extractor.ClassSpan) string {
	rest := source[span.BodyStart:]
	if loc := classDeclRegex.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]]
	}
	return rest
}

// hasMarker reports whether the annotations directly above the class
// declaration at classStart include @JsonSerializable.
func hasMarker(source string, classStart int) bool {
	lines := strings.Split(source[:classStart], "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(line, "@JsonSerializable"):
			return true
		case line == "", line == "abstract", strings.HasPrefix(line, "@"), strings.HasPrefix(line, "//"):
			continue
		default:
			return false
		}
	}
	return false
}

// addImports inserts each required import whose path is not yet imported,
// after the last import line or at the top of the file, then the export of the
// companion helper.
func addImports(content, fileBase string, layout models.ProjectLayout) string {
	helper := packageImport(layout, fileBase+helperFileExtension)
	required := []string{
		packageImport(layout, baseDirName+"/"+jsonFieldFileName),
		helper,
		"dart:convert",
	}

	for _, uri := range required {
		if hasImport(content, uri) {
			continue
		}
		content = insertAfterImports(content, fmt.Sprintf("import '%s';", uri))
	}

	export := fmt.Sprintf("export '%s';", helper)
	if !strings.Contains(content, export) {
		content = insertAfterImports(content, export)
	}
	return content
}

// hasImport is a substring test of uri against existing import lines, so an
// equivalent import spelled differently is not recognized.
func hasImport(content, uri string) bool {
	for _, line := range importLineRegex.FindAllString(content, -1) {
		if strings.Contains(line, uri) {
			return true
		}
	}
	return false
}

func insertAfterImports(content, line string) string {
	locs := importLineRegex.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return line + "\n\n" + content
	}
	at := locs[len(locs)-1][1]
	return content[:at] + "\n" + line + content[at:]
}
