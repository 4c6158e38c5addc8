package models

// TypeKind discriminates the shapes a TypeDescriptor can take.
type TypeKind int

const (
	Primitive TypeKind = iota
	Array
	Reference
	Dynamic
)

// String returns the lowercase name of the kind.
func (k TypeKind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case Array:
		return "array"
	case Reference:
		return "reference"
	case Dynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// PrimitiveName names a scalar type independent of the emitted language.
type PrimitiveName string

const (
	PrimitiveString   PrimitiveName = "string"
	PrimitiveInteger  PrimitiveName = "integer"
	PrimitiveFloat    PrimitiveName = "float"
	PrimitiveBoolean  PrimitiveName = "boolean"
	PrimitiveNumber   PrimitiveName = "number"
	PrimitiveDateTime PrimitiveName = "datetime"
	PrimitiveMap      PrimitiveName = "map"
)

// TypeDescriptor is the normalized type of one field or array element.
// An Array always carries ElementType; a Reference always carries ReferencedClassName.
type TypeDescriptor struct {
	Kind                TypeKind
	PrimitiveName       PrimitiveName
	ElementType         *TypeDescriptor
	ReferencedClassName string
	Nullable            bool
	OriginalKey         string
}

// IsReference reports whether the descriptor, or the innermost element type of
// a (possibly nested) array, refers to a generated class.
func (t TypeDescriptor) IsReference() bool {
	return t.Innermost().Kind == Reference
}

// Innermost unwraps array nesting and returns the element descriptor at the bottom.
func (t TypeDescriptor) Innermost() TypeDescriptor {
	cur := t
	for cur.Kind == Array && cur.ElementType != nil {
		cur = *cur.ElementType
	}
	return cur
}

// FieldDefinition is one field of a class.
type FieldDefinition struct {
	Name     string
	JSONKey  string
	Type     TypeDescriptor
	Nullable bool
}

// ClassDefinition is one generated or parsed class. Fields keep JSON key order
// (synthesized) or declaration order (parsed).
type ClassDefinition struct {
	Name   string
	Fields []FieldDefinition
}

// Field looks up a field by identifier.
func (c ClassDefinition) Field(name string) (FieldDefinition, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// GenerationOptions controls class synthesis. Immutable per invocation.
type GenerationOptions struct {
	ClassNameSuffix    string
	NullSafetyEnabled  bool
	GenerateCopyMethod bool
}

// ArtifactKind tells the caller what an artifact is for.
type ArtifactKind string

const (
	ArtifactEntity ArtifactKind = "entity"
	ArtifactHelper ArtifactKind = "helper"
	ArtifactBase   ArtifactKind = "base"
)

// GeneratedArtifact is a file to be persisted by the caller.
type GeneratedArtifact struct {
	FilePath string
	Content  string
	Kind     ArtifactKind
}

// ProjectLayout describes where generated files live inside a project.
// It is resolved by the project layer and passed into the generators as plain input.
type ProjectLayout struct {
	PackageName   string
	LibDir        string
	GeneratedPath string
}

// SourceFile is an existing source file already read from disk.
type SourceFile struct {
	Path    string
	Content string
}
