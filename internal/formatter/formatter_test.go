package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_GroupsImports(t *testing.T) {
	input := `import 'package:app/generated/json/user_entity.g.dart';
import 'dart:convert';
import 'package:app/generated/json/base/json_field.dart';

export 'package:app/generated/json/user_entity.g.dart';

class User {
}
`

	formatter := NewFormatter()
	formatted, err := formatter.Format(input)
	require.NoError(t, err)

	expected := `import 'dart:convert';

import 'package:app/generated/json/base/json_field.dart';
import 'package:app/generated/json/user_entity.g.dart';

export 'package:app/generated/json/user_entity.g.dart';

class User {
}
`
	assert.Equal(t, expected, formatted)
}

func TestFormat_KeepsLeadingComments(t *testing.T) {
	input := `// GENERATED CODE - DO NOT MODIFY BY HAND

import '../models/user.dart';
import 'package:app/models/address.dart';

void f() {}
`

	formatted, err := NewFormatter().Format(input)
	require.NoError(t, err)

	expected := `// GENERATED CODE - DO NOT MODIFY BY HAND

import 'package:app/models/address.dart';

import '../models/user.dart';

void f() {}
`
	assert.Equal(t, expected, formatted)
}

func TestFormat_DropsDuplicateImports(t *testing.T) {
	input := "import 'dart:convert';\nimport 'dart:convert';\n\nvoid f() {}\n"
	formatted, err := NewFormatter().Format(input)
	require.NoError(t, err)
	assert.Equal(t, "import 'dart:convert';\n\nvoid f() {}\n", formatted)
}

func TestFormat_Whitespace(t *testing.T) {
	input := "\n\nclass A {   \n  late int? a;\t\n\n\n\n  A();\n}\n\n\n"
	formatted, err := NewFormatter().Format(input)
	require.NoError(t, err)
	assert.Equal(t, "class A {\n  late int? a;\n\n  A();\n}\n", formatted)
}

func TestFormat_EmptyInput(t *testing.T) {
	formatted, err := NewFormatter().Format("  \n ")
	require.NoError(t, err)
	assert.Equal(t, "", formatted)
}

func TestFormat_Unbalanced(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing close brace", "class A {\n  late int a;\n"},
		{"stray close paren", "void f()) {}\n"},
		{"mismatched", "void f() { ]\n"},
		{"unterminated string", "final s = 'abc;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFormatter().Format(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestFormat_IgnoresBracketsInStringsAndComments(t *testing.T) {
	input := `// a { comment
/* block ( comment */
final s = 'brace { in string';
final d = "paren ) \" escaped";
void f() {}
`
	formatted, err := NewFormatter().Format(input)
	require.NoError(t, err)
	assert.Equal(t, input, formatted)
}
