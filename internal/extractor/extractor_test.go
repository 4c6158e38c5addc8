package extractor

import (
	"testing"

	"github.com/mcncl/jsonbean/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userSource = `import 'package:app/generated/json/base/json_field.dart';

@JsonSerializable()
class UserEntity {
  late String? name;
  late int? age;
  late List<String>? tags;
  late UserAddress? address;
  String? nickname;
  DateTime createdAt;

  UserEntity();
}

class UserAddress {
  late String? city;
}
`

func TestClassNames(t *testing.T) {
	assert.Equal(t, []string{"UserEntity", "UserAddress"}, ClassNames(userSource))
	assert.Empty(t, ClassNames("void main() {}"))
}

func TestExtract_LateThenPlainDeclarations(t *testing.T) {
	fields := Extract(userSource, "UserEntity")

	require.Len(t, fields, 6)
	names := []string{}
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"name", "age", "tags", "address", "nickname", "createdAt"}, names)

	createdAt := fields[5]
	assert.Equal(t, "created_at", createdAt.JSONKey)
	assert.False(t, createdAt.Nullable)
	assert.Equal(t, models.PrimitiveDateTime, createdAt.Type.PrimitiveName)

	tags := fields[2]
	assert.True(t, tags.Nullable)
	assert.Equal(t, models.Array, tags.Type.Kind)
	assert.Equal(t, models.PrimitiveString, tags.Type.ElementType.PrimitiveName)

	address := fields[3]
	assert.Equal(t, models.Reference, address.Type.Kind)
	assert.Equal(t, "UserAddress", address.Type.ReferencedClassName)
}

func TestExtract_LateShapesComeBeforePlainShapes(t *testing.T) {
	src := `class Mixed {
  String? first;
  late int second;
}`
	fields := Extract(src, "Mixed")
	require.Len(t, fields, 2)
	assert.Equal(t, "second", fields[0].Name)
	assert.Equal(t, "first", fields[1].Name)
}

func TestExtract_NoDuplicateForLateField(t *testing.T) {
	src := "class Dup {\n  late String name;\n}"
	fields := Extract(src, "Dup")
	require.Len(t, fields, 1)
	assert.Equal(t, "name", fields[0].Name)
}

func TestExtract_MissingClassOrFieldsIsEmpty(t *testing.T) {
	assert.Empty(t, Extract(userSource, "Nope"))
	assert.Empty(t, Extract("class Empty {\n  Empty();\n}", "Empty"))
	assert.Empty(t, Extract("", "Anything"))
}

func TestExtract_NestedBracesTruncateBody(t *testing.T) {
	src := `class Truncated {
  late String before;
  void doSomething() {
    print('x');
  }
  late String after;
}`
	fields := Extract(src, "Truncated")
	require.Len(t, fields, 1, "fields after the first closing brace are not seen")
	assert.Equal(t, "before", fields[0].Name)
}

func TestExtract_JSONKeyIsSnakeCase(t *testing.T) {
	src := "class K {\n  late String userName;\n  late int id;\n  late bool isHTTP;\n}"
	fields := Extract(src, "K")
	require.Len(t, fields, 3)
	assert.Equal(t, "user_name", fields[0].JSONKey)
	assert.Equal(t, "id", fields[1].JSONKey)
	assert.Equal(t, "is_h_t_t_p", fields[2].JSONKey)
}

func TestExtract_FinalAndDynamic(t *testing.T) {
	src := "class F {\n  late final String label;\n  late dynamic extra;\n}"
	fields := Extract(src, "F")
	require.Len(t, fields, 2)
	assert.Equal(t, models.PrimitiveString, fields[0].Type.PrimitiveName)
	assert.Equal(t, models.Dynamic, fields[1].Type.Kind)
	assert.True(t, fields[1].Nullable)
}

func TestFindClass(t *testing.T) {
	span, ok := FindClass(userSource, "UserAddress")
	require.True(t, ok)
	assert.Contains(t, span.Body(userSource), "late String? city;")
	assert.Equal(t, "}", userSource[span.BodyEnd:span.End])

	_, ok = FindClass(userSource, "User")
	assert.False(t, ok, "class name must match exactly")
}

func TestParseType(t *testing.T) {
	tests := []struct {
		text string
		kind models.TypeKind
		prim models.PrimitiveName
		ref  string
	}{
		{"String", models.Primitive, models.PrimitiveString, ""},
		{"int", models.Primitive, models.PrimitiveInteger, ""},
		{"double", models.Primitive, models.PrimitiveFloat, ""},
		{"num", models.Primitive, models.PrimitiveNumber, ""},
		{"bool", models.Primitive, models.PrimitiveBoolean, ""},
		{"DateTime", models.Primitive, models.PrimitiveDateTime, ""},
		{"Map<String, dynamic>", models.Primitive, models.PrimitiveMap, ""},
		{"dynamic", models.Dynamic, "", ""},
		{"ProfileEntity", models.Reference, "", "ProfileEntity"},
		{"List<int>", models.Array, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ParseType(tt.text)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.prim, got.PrimitiveName)
			assert.Equal(t, tt.ref, got.ReferencedClassName)
		})
	}
}

func TestParseType_NestedLists(t *testing.T) {
	got := ParseType("List<List<Point?>>")
	require.Equal(t, models.Array, got.Kind)
	require.Equal(t, models.Array, got.ElementType.Kind)
	inner := got.ElementType.ElementType
	assert.Equal(t, models.Reference, inner.Kind)
	assert.Equal(t, "Point", inner.ReferencedClassName)
	assert.True(t, inner.Nullable)
	assert.True(t, got.IsReference())
}

func TestJSONKeyOverrides(t *testing.T) {
	body := `
  @JSONField(name: 'userName')
  late String? userName;
  @JSONField(name: "created-at", serialize: true)
  late DateTime? createdAt;
  late int? plain;
`
	assert.Equal(t, map[string]string{
		"userName":  "userName",
		"createdAt": "created-at",
	}, JSONKeyOverrides(body))
}

func TestJSONKeyOverrides_EscapedKeys(t *testing.T) {
	body := `
  @JSONField(name: 'a\'b')
  late int? ab;
  @JSONField(name: 'x)y')
  late int? xy;
  @JSONField(name: "say \"hi\"")
  late String? sayHi;
  @JSONField(name: 'back\\slash \$price\n')
  late String? backSlashPrice;
`
	assert.Equal(t, map[string]string{
		"ab":             "a'b",
		"xy":             "x)y",
		"sayHi":          `say "hi"`,
		"backSlashPrice": "back\\slash $price\n",
	}, JSONKeyOverrides(body))
}

func TestExtractAnnotated_AnnotationWins(t *testing.T) {
	src := `class Profile {
  @JSONField(name: 'displayName')
  late String? displayName;
  late String? avatarUrl;
}`
	def := ExtractAnnotated(src, "Profile")
	require.Len(t, def.Fields, 2)
	assert.Equal(t, "displayName", def.Fields[0].JSONKey)
	assert.Equal(t, "avatar_url", def.Fields[1].JSONKey)
}

func TestDeclarationString(t *testing.T) {
	assert.Equal(t, "String? name", Declaration{Name: "name", TypeText: "String", Nullable: true}.String())
	assert.Equal(t, "int age", Declaration{Name: "age", TypeText: "int"}.String())
}
