package generator

const jsonFieldContent = `import 'package:meta/meta_meta.dart';

@Target({TargetKind.classType})
class JsonSerializable {
  const JsonSerializable();
}

@Target({TargetKind.field})
class JSONField {
  // Key read and written for this field.
  final String? name;

  // Whether the field takes part in toJson.
  final bool? serialize;

  // Whether the field takes part in fromJson.
  final bool? deserialize;

  // Whether the field takes part in copyWith.
  final bool? copyWith;

  // Whether the field holds an enum.
  final bool? isEnum;

  const JSONField({this.name, this.serialize, this.deserialize, this.isEnum, this.copyWith});
}
`

// RenderJSONField returns the annotation library every entity file imports.
func RenderJSONField() string {
	return jsonFieldContent
}
