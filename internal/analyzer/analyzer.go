package analyzer

import (
	"fmt"

	"github.com/mcncl/jsonbean/internal/errors"
	"github.com/mcncl/jsonbean/internal/models"
	"github.com/mcncl/jsonbean/internal/naming"
)

// DefaultRootName is the default name for the root class if not specified.
const DefaultRootName = "Root"

// Analyzer builds class definitions from parsed JSON. It holds no state
// between calls; every Analyze starts from scratch.
type Analyzer struct {
	opts models.GenerationOptions
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer(opts models.GenerationOptions) *Analyzer {
	return &Analyzer{opts: opts}
}

// Analyze validates the root class name and builds the class definitions for ir.
func (a *Analyzer) Analyze(ir models.IntermediateRepresentation, rootClassName string) ([]models.ClassDefinition, error) {
	if rootClassName == "" {
		rootClassName = DefaultRootName
	}
	if !naming.ValidClassName(rootClassName) {
		return nil, errors.NewInputError(fmt.Sprintf("invalid class name '%s'", rootClassName), errors.ErrInvalidClassName)
	}
	return a.Build(rootClassName, ir.Root), nil
}

// Build walks value and returns one ClassDefinition per object site, root first.
// A root array is built from its first element; an empty root array or a
// non-object root yields an empty list. Identical shapes are not merged.
//
// Only the root carries the suffix. Nested classes are named after the
// unsuffixed enclosing name: Response -> ResponseEntity, ResponseUser.
func (a *Analyzer) Build(rootClassBaseName string, value models.JSONValue) []models.ClassDefinition {
	return a.build(rootClassBaseName+a.opts.ClassNameSuffix, rootClassBaseName, value)
}

// build emits className for value; prefix is what nested classes are named after.
func (a *Analyzer) build(className, prefix string, value models.JSONValue) []models.ClassDefinition {
	switch v := value.(type) {
	case models.JSONArray:
		if len(v) == 0 {
			return nil
		}
		return a.build(className, prefix, v[0])
	case *models.JSONObject:
		return a.buildObject(className, prefix, v)
	default:
		return nil
	}
}

func (a *Analyzer) buildObject(className, prefix string, obj *models.JSONObject) []models.ClassDefinition {
	def := models.ClassDefinition{
		Name:   className,
		Fields: make([]models.FieldDefinition, 0, obj.Len()),
	}

	var nested []models.ClassDefinition
	for _, key := range obj.Keys {
		val := obj.Values[key]
		typ := Infer(val, key, a.opts, prefix)
		def.Fields = append(def.Fields, models.FieldDefinition{
			Name:     naming.FieldName(key),
			JSONKey:  key,
			Type:     typ,
			Nullable: typ.Nullable,
		})

		if typ.IsReference() {
			ref := typ.Innermost().ReferencedClassName
			nested = append(nested, a.build(ref, ref, val)...)
		}
	}

	return append([]models.ClassDefinition{def}, nested...)
}
