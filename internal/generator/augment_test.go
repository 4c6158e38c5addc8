package generator

import (
	"testing"

	"github.com/mcncl/jsonbean/internal/errors"
	"github.com/mcncl/jsonbean/internal/extractor"
	"github.com/mcncl/jsonbean/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAugment_AlreadyConformantIsUnchanged(t *testing.T) {
	source := `import 'package:flutter/material.dart';

class Foo {
  late String? name;

  factory Foo.fromJson(Map<String, dynamic> json) => $FooFromJson(json);

  Map<String, dynamic> toJson() => $FooToJson(this);
}
`
	out, err := Augment(source, "Foo", "foo", testLayout)
	require.NoError(t, err)
	assert.Equal(t, source, out)
}

func TestAugment_AddsEverythingMissing(t *testing.T) {
	source := `import 'package:flutter/material.dart';

class Profile {
  late String? displayName;
  int? age;
}
`
	out, err := Augment(source, "Profile", "profile", testLayout)
	require.NoError(t, err)

	expected := `import 'package:flutter/material.dart';
import 'package:app/generated/json/base/json_field.dart';
import 'package:app/generated/json/profile.g.dart';
import 'dart:convert';
export 'package:app/generated/json/profile.g.dart';

@JsonSerializable()
class Profile {
  late String? displayName;
  int? age;

  factory Profile.fromJson(Map<String, dynamic> json) => $ProfileFromJson(json);

  Map<String, dynamic> toJson() => $ProfileToJson(this);
}
`
	assert.Equal(t, expected, out)

	again, err := Augment(out, "Profile", "profile", testLayout)
	require.NoError(t, err)
	assert.Equal(t, out, again, "a second pass changes nothing")
}

func TestAugment_NoImportsPrependsThem(t *testing.T) {
	source := "class Point {\n  late double x;\n}\n"
	out, err := Augment(source, "Point", "point", testLayout)
	require.NoError(t, err)

	expected := `import 'package:app/generated/json/base/json_field.dart';
import 'package:app/generated/json/point.g.dart';
import 'dart:convert';
export 'package:app/generated/json/point.g.dart';

@JsonSerializable()
class Point {
  late double x;

  factory Point.fromJson(Map<String, dynamic> json) => $PointFromJson(json);

  Map<String, dynamic> toJson() => $PointToJson(this);
}
`
	assert.Equal(t, expected, out)
}

func TestAugment_OnlyMissingPieces(t *testing.T) {
	source := `import 'dart:convert';
import 'package:app/generated/json/base/json_field.dart';

@JsonSerializable()
class Tag {
  late String label;

  Map<String, dynamic> toJson() => $TagToJson(this);
}
`
	out, err := Augment(source, "Tag", "tag", testLayout)
	require.NoError(t, err)

	assert.Contains(t, out, "factory Tag.fromJson(Map<String, dynamic> json) => $TagFromJson(json);")
	assert.Equal(t, 1, countOf(out, "toJson()"))
	assert.Equal(t, 1, countOf(out, "@JsonSerializable()"))
	assert.Equal(t, 1, countOf(out, "import 'dart:convert';"))
	assert.Equal(t, 1, countOf(out, "base/json_field.dart"))
	assert.Contains(t, out, "import 'package:app/generated/json/tag.g.dart';")
}

func TestAugment_TouchesOnlyTheNamedClass(t *testing.T) {
	source := `class Other {
  late int a;
}

class Target {
  late int b;
}
`
	out, err := Augment(source, "Target", "target", testLayout)
	require.NoError(t, err)
	assert.Contains(t, out, "class Other {\n  late int a;\n}\n")
	assert.Equal(t, 1, countOf(out, "@JsonSerializable()"))
	assert.Less(t, indexOf(out, "class Other"), indexOf(out, "@JsonSerializable()"))
}

func TestAugment_HooksOfOtherClassesDoNotCount(t *testing.T) {
	source := `import 'package:app/generated/json/base/json_field.dart';

@JsonSerializable()
class Other {
  late int a;

  factory Other.fromJson(Map<String, dynamic> json) => $OtherFromJson(json);

  Map<String, dynamic> toJson() => $OtherToJson(this);
}

class Target {
  late int b;
}

class SubTarget {
  late int c;

  factory SubTarget.fromJson(Map<String, dynamic> json) => $SubTargetFromJson(json);
}
`
	out, err := Augment(source, "Target", "target", testLayout)
	require.NoError(t, err)

	target, ok := extractor.FindClass(out, "Target")
	require.True(t, ok)
	members := classMembers(out, target)
	assert.Contains(t, members, "factory Target.fromJson(Map<String, dynamic> json) => $TargetFromJson(json);")
	assert.Contains(t, members, "Map<String, dynamic> toJson() => $TargetToJson(this);")
	assert.Contains(t, out, "@JsonSerializable()\nclass Target {")
	assert.Equal(t, 2, countOf(out, "@JsonSerializable()"))

	again, err := Augment(out, "Target", "target", testLayout)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestAugment_MembersAfterNestedBraces(t *testing.T) {
	source := `@JsonSerializable()
class Box {
  late int size;

  bool get empty {
    return size == 0;
  }

  factory Box.fromJson(Map<String, dynamic> json) => $BoxFromJson(json);

  Map<String, dynamic> toJson() {
    return $BoxToJson(this);
  }
}
`
	out, err := Augment(source, "Box", "box", testLayout)
	require.NoError(t, err)
	assert.Equal(t, source, out)
}

func TestHasMarker(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   bool
	}{
		{name: "directly above", source: "@JsonSerializable()\nclass A {}", want: true},
		{name: "with other annotations", source: "@JsonSerializable()\n@immutable\n// note\nclass A {}", want: true},
		{name: "abstract", source: "@JsonSerializable()\nabstract class A {}", want: true},
		{name: "missing", source: "class A {}", want: false},
		{name: "belongs to previous class", source: "@JsonSerializable()\nclass B {\n  late int x;\n}\n\nclass A {}", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := indexOf(tt.source, "class A")
			assert.Equal(t, tt.want, hasMarker(tt.source, start))
		})
	}
}

func TestAugment_Errors(t *testing.T) {
	_, err := Augment("class Foo {\n  late int a;\n}\n", "Bar", "bar", testLayout)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrClassNotFound)
	assert.Contains(t, err.Error(), "Bar")

	_, err = Augment("class Empty {\n  Empty();\n}\n", "Empty", "empty", testLayout)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoFields)
}

func TestAugmentSource_UsesFileName(t *testing.T) {
	g := NewGenerator(defaultOptions, testLayout)
	out, err := g.AugmentSource(models.SourceFile{
		Path:    "/proj/lib/models/user_model.dart",
		Content: "class User {\n  late String? name;\n}\n",
	}, "User")
	require.NoError(t, err)
	assert.Contains(t, out, "import 'package:app/generated/json/user_model.g.dart';")

	out, err = g.AugmentSource(models.SourceFile{Content: "class UserCard {\n  late String? name;\n}\n"}, "UserCard")
	require.NoError(t, err)
	assert.Contains(t, out, "import 'package:app/generated/json/user_card.g.dart';")
}

func countOf(s, sub string) int {
	n := 0
	for i := indexOf(s, sub); i >= 0; {
		n++
		next := indexOf(s[i+len(sub):], sub)
		if next < 0 {
			break
		}
		i += len(sub) + next
	}
	return n
}
