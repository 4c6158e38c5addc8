package generator

import (
	"testing"

	"github.com/mcncl/jsonbean/internal/models"
	"github.com/stretchr/testify/assert"
)

func prim(name models.PrimitiveName, nullable bool) models.TypeDescriptor {
	return models.TypeDescriptor{Kind: models.Primitive, PrimitiveName: name, Nullable: nullable}
}

func list(elem models.TypeDescriptor, nullable bool) models.TypeDescriptor {
	return models.TypeDescriptor{Kind: models.Array, ElementType: &elem, Nullable: nullable}
}

func ref(name string, nullable bool) models.TypeDescriptor {
	return models.TypeDescriptor{Kind: models.Reference, ReferencedClassName: name, Nullable: nullable}
}

func TestDartType(t *testing.T) {
	tests := []struct {
		name string
		td   models.TypeDescriptor
		want string
	}{
		{"string", prim(models.PrimitiveString, true), "String?"},
		{"int", prim(models.PrimitiveInteger, false), "int"},
		{"double", prim(models.PrimitiveFloat, true), "double?"},
		{"bool", prim(models.PrimitiveBoolean, false), "bool"},
		{"num", prim(models.PrimitiveNumber, false), "num"},
		{"datetime", prim(models.PrimitiveDateTime, true), "DateTime?"},
		{"map", prim(models.PrimitiveMap, false), "Map<String, dynamic>"},
		{"dynamic", models.TypeDescriptor{Kind: models.Dynamic, Nullable: true}, "dynamic"},
		{"list of string", list(prim(models.PrimitiveString, false), true), "List<String>?"},
		{"list of nullable ref", list(ref("Point", true), false), "List<Point?>"},
		{"nested list", list(list(prim(models.PrimitiveInteger, false), false), true), "List<List<int>>?"},
		{"reference", ref("UserProfile", true), "UserProfile?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DartType(tt.td))
		})
	}
}

func TestRenderDecodeEncode_AllShapes(t *testing.T) {
	def := models.ClassDefinition{
		Name: "Shape",
		Fields: []models.FieldDefinition{
			{Name: "title", JSONKey: "title", Type: prim(models.PrimitiveString, false)},
			{Name: "ratio", JSONKey: "ratio", Type: prim(models.PrimitiveFloat, true)},
			{Name: "at", JSONKey: "at", Type: prim(models.PrimitiveDateTime, true)},
			{Name: "extra", JSONKey: "extra", Type: models.TypeDescriptor{Kind: models.Dynamic, Nullable: true}},
			{Name: "owner", JSONKey: "owner", Type: ref("ShapeOwner", true)},
			{Name: "tags", JSONKey: "tags", Type: list(prim(models.PrimitiveString, false), true)},
			{Name: "points", JSONKey: "points", Type: list(ref("ShapePoints", false), true)},
			{Name: "grid", JSONKey: "grid", Type: list(list(prim(models.PrimitiveInteger, false), false), false)},
			{Name: "userName", JSONKey: "user's", Type: prim(models.PrimitiveString, true)},
		},
	}

	assert.Equal(t, `Shape $ShapeFromJson(Map<String, dynamic> json) {
  final Shape entity = Shape();
  entity.title = json['title'] as String;
  entity.ratio = (json['ratio'] as num?)?.toDouble();
  entity.at = json['at'] != null ? DateTime.parse(json['at'] as String) : null;
  entity.extra = json['extra'];
  entity.owner = json['owner'] != null ? ShapeOwner.fromJson(json['owner'] as Map<String, dynamic>) : null;
  entity.tags = (json['tags'] as List<dynamic>?)?.map((e) => e as String).toList();
  entity.points = (json['points'] as List<dynamic>?)?.map((e) => ShapePoints.fromJson(e as Map<String, dynamic>)).toList();
  entity.grid = (json['grid'] as List<dynamic>).map((e) => (e as List<dynamic>).map((e1) => e1 as int).toList()).toList();
  entity.userName = json['user\'s'] as String?;
  return entity;
}
`, RenderDecode(def))

	assert.Equal(t, `Map<String, dynamic> $ShapeToJson(Shape entity) {
  final Map<String, dynamic> data = <String, dynamic>{};
  data['title'] = entity.title;
  data['ratio'] = entity.ratio;
  data['at'] = entity.at?.toIso8601String();
  data['extra'] = entity.extra;
  data['owner'] = entity.owner?.toJson();
  data['tags'] = entity.tags;
  data['points'] = entity.points?.map((e) => e.toJson()).toList();
  data['grid'] = entity.grid;
  data['user\'s'] = entity.userName;
  return data;
}
`, RenderEncode(def))
}

func TestRenderEncode_NestedReferenceLists(t *testing.T) {
	def := models.ClassDefinition{
		Name: "Board",
		Fields: []models.FieldDefinition{
			{Name: "rows", JSONKey: "rows", Type: list(list(ref("BoardRows", false), false), true)},
		},
	}
	assert.Contains(t, RenderEncode(def), "data['rows'] = entity.rows?.map((e) => e.map((e1) => e1.toJson()).toList()).toList();")
	assert.Contains(t, RenderDecode(def), "entity.rows = (json['rows'] as List<dynamic>?)?.map((e) => (e as List<dynamic>).map((e1) => BoardRows.fromJson(e1 as Map<String, dynamic>)).toList()).toList();")
}

func TestRenderClass_AnnotationsAndCopyWith(t *testing.T) {
	def := models.ClassDefinition{
		Name: "Card",
		Fields: []models.FieldDefinition{
			{Name: "cardId", JSONKey: "cardId", Type: prim(models.PrimitiveInteger, false)},
			{Name: "holderName", JSONKey: "holder_name", Type: prim(models.PrimitiveString, true)},
		},
	}

	withCopy := RenderClass(def, models.GenerationOptions{GenerateCopyMethod: true})
	assert.Contains(t, withCopy, "  @JSONField(name: 'cardId')\n  late int cardId;\n")
	assert.Contains(t, withCopy, "  late String? holderName;\n")
	assert.NotContains(t, withCopy, "name: 'holder_name'")
	assert.Contains(t, withCopy, "    int? cardId,\n")
	assert.Contains(t, withCopy, "      ..cardId = cardId ?? this.cardId\n      ..holderName = holderName ?? this.holderName;\n")

	without := RenderClass(def, models.GenerationOptions{})
	assert.NotContains(t, without, "copyWith")
	assert.Contains(t, without, "factory Card.fromJson(Map<String, dynamic> json) => $CardFromJson(json);")
	assert.Contains(t, without, "Map<String, dynamic> toJson() => $CardToJson(this);")
}

func TestRenderRegistry(t *testing.T) {
	content, duplicates := RenderRegistry([]RegistryEntry{
		{ClassName: "UserEntity", SourcePath: "/proj/lib/models/user_entity.dart"},
		{ClassName: "UserProfile", SourcePath: "/proj/lib/models/user_entity.dart"},
		{ClassName: "Outside", SourcePath: "/proj/test/outside.dart"},
	}, testLayout)

	assert.Empty(t, duplicates)
	assert.Equal(t, 1, countOf(content, "import 'package:app/models/user_entity.dart';"))
	assert.Contains(t, content, "import '../../../../test/outside.dart';")
	assert.Contains(t, content, "    'UserEntity': UserEntity.fromJson,\n    'UserProfile': UserProfile.fromJson,\n    'Outside': Outside.fromJson,\n  };")
	assert.Contains(t, content, "T? asT<T extends Object?>(dynamic value)")
}

func TestRenderRegistry_Empty(t *testing.T) {
	content, duplicates := RenderRegistry(nil, testLayout)
	assert.Empty(t, duplicates)
	assert.Contains(t, content, "_convertFuncMap = {\n  };")
	assert.NotContains(t, content, "import '")
}
