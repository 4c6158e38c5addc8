package generator

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/mcncl/jsonbean/internal/models"
)

// RegistryEntry is one entity class discovered in a project source file.
type RegistryEntry struct {
	ClassName  string
	SourcePath string
}

// Duplicate records a class name declared again after its first registration.
type Duplicate struct {
	ClassName   string
	FirstPath   string
	IgnoredPath string
}

const registryHeader = `// ignore_for_file: non_constant_identifier_names
// ignore_for_file: camel_case_types
// ignore_for_file: prefer_single_quotes

// This file is automatically generated. DO NOT EDIT, all your changes would be lost.
`

const registryBody = `
JsonConvert jsonConvert = JsonConvert();
typedef JsonConvertFunction<T> = T Function(Map<String, dynamic> json);

class JsonConvert {
  static const Map<String, JsonConvertFunction<Object>> _convertFuncMap = {
%s  };

  T? fromJsonAsT<T>(dynamic json) {
    if (json == null) {
      return null;
    }
    if (json is T) {
      return json;
    }
    try {
      return asT<T>(json);
    } catch (e, stackTrace) {
      print('fromJsonAsT<$T> $e $stackTrace');
      return null;
    }
  }

  T? asT<T extends Object?>(dynamic value) {
    if (value is T) {
      return value;
    }
    try {
      return convert(T.toString().replaceAll('?', ''), value) as T?;
    } catch (_) {
      return null;
    }
  }

  dynamic convert(String type, dynamic value) {
    if (value == null) {
      return null;
    }
    final String valueS = value.toString();
    switch (type) {
      case 'String':
        return valueS;
      case 'int':
        if (value is int) {
          return value;
        }
        final double? parsed = double.tryParse(valueS);
        return int.tryParse(valueS) ?? (parsed != null && parsed.isFinite ? parsed.toInt() : null);
      case 'double':
        if (value is double) {
          return value;
        }
        return double.tryParse(valueS);
      case 'bool':
        if (value is bool) {
          return value;
        }
        if (valueS == 'true' || valueS == '1') {
          return true;
        }
        if (valueS == 'false' || valueS == '0') {
          return false;
        }
        return null;
      case 'DateTime':
        if (value is DateTime) {
          return value;
        }
        return DateTime.tryParse(valueS);
    }
    if (type.startsWith('List<') && type.endsWith('>')) {
      if (value is List) {
        final String itemType = type.substring(5, type.length - 1);
        return value.map((dynamic item) => convert(itemType, item)).toList();
      }
      return value;
    }
    final JsonConvertFunction<Object>? fromJson = _convertFuncMap[type];
    if (fromJson != null && value is Map<String, dynamic>) {
      try {
        return fromJson(value);
      } catch (_) {
        return null;
      }
    }
    return value;
  }
}
`

// RenderRegistry renders json_convert_content.dart. Entries are taken in the
// order given; a class name seen again is left out and reported.
func RenderRegistry(entries []RegistryEntry, layout models.ProjectLayout) (string, []Duplicate) {
	registryDir := filepath.Join(GeneratedDir(layout), baseDirName)

	first := make(map[string]string)
	var imports []string
	importSeen := make(map[string]bool)
	var mapping bytes.Buffer
	var duplicates []Duplicate

	for _, entry := range entries {
		if firstPath, ok := first[entry.ClassName]; ok {
			duplicates = append(duplicates, Duplicate{
				ClassName:   entry.ClassName,
				FirstPath:   firstPath,
				IgnoredPath: entry.SourcePath,
			})
			continue
		}
		first[entry.ClassName] = entry.SourcePath

		imp := importFrom(layout, registryDir, filepath.Clean(entry.SourcePath))
		if !importSeen[imp] {
			importSeen[imp] = true
			imports = append(imports, imp)
		}
		mapping.WriteString(fmt.Sprintf("    '%s': %s.fromJson,\n", entry.ClassName, entry.ClassName))
	}

	var buf bytes.Buffer
	buf.WriteString(registryHeader)
	if len(imports) > 0 {
		buf.WriteString("\n")
	}
	for _, imp := range imports {
		buf.WriteString(fmt.Sprintf("import '%s';\n", imp))
	}
	buf.WriteString(fmt.Sprintf(registryBody, mapping.String()))
	return buf.String(), duplicates
}
