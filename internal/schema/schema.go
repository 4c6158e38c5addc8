// Package schema converts a JSON Schema document into class definitions, as an
// alternative to inferring them from a JSON sample.
package schema

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/mcncl/jsonbean/internal/errors"
	"github.com/mcncl/jsonbean/internal/models"
	"github.com/mcncl/jsonbean/internal/naming"
	"github.com/mcncl/jsonbean/internal/parser"
)

// SchemaType handles JSON Schema type field which can be string or array of strings
type SchemaType struct {
	Types []string
}

// UnmarshalJSON handles both string and array forms of type
func (st *SchemaType) UnmarshalJSON(data []byte) error {
	var s string
	if err := gojson.Unmarshal(data, &s); err == nil {
		st.Types = []string{s}
		return nil
	}

	var arr []string
	if err := gojson.Unmarshal(data, &arr); err == nil {
		st.Types = arr
		return nil
	}

	return fmt.Errorf("type must be string or array of strings")
}

// Primary returns the first type other than "null", or "null" when that is
// the only one.
func (st SchemaType) Primary() string {
	for _, t := range st.Types {
		if t != "null" {
			return t
		}
	}
	if len(st.Types) > 0 {
		return st.Types[0]
	}
	return ""
}

// IsNullable returns true if "null" is one of the allowed types
func (st SchemaType) IsNullable() bool {
	for _, t := range st.Types {
		if t == "null" {
			return true
		}
	}
	return false
}

// Properties keeps object properties in document order.
type Properties struct {
	Keys    []string
	Schemas map[string]*Schema
}

// UnmarshalJSON decodes the property schemas and takes their order from the
// document.
func (p *Properties) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	var schemas map[string]*Schema
	if err := gojson.Unmarshal(data, &schemas); err != nil {
		return err
	}
	ir, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return err
	}
	obj, ok := ir.Root.(*models.JSONObject)
	if !ok {
		return fmt.Errorf("properties must be an object")
	}

	p.Keys = obj.Keys
	p.Schemas = schemas
	return nil
}

func (p *Properties) set(key string, s *Schema) {
	if p.Schemas == nil {
		p.Schemas = make(map[string]*Schema)
	}
	if _, exists := p.Schemas[key]; !exists {
		p.Keys = append(p.Keys, key)
	}
	p.Schemas[key] = s
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Keys)
}

// AdditionalProperties handles JSON Schema additionalProperties which can be bool or Schema
type AdditionalProperties struct {
	Allowed bool
	Schema  *Schema
}

// UnmarshalJSON handles both boolean and schema forms
func (ap *AdditionalProperties) UnmarshalJSON(data []byte) error {
	var b bool
	if err := gojson.Unmarshal(data, &b); err == nil {
		ap.Allowed = b
		ap.Schema = nil
		return nil
	}

	var s Schema
	if err := gojson.Unmarshal(data, &s); err == nil {
		ap.Allowed = true
		ap.Schema = &s
		return nil
	}

	return fmt.Errorf("additionalProperties must be boolean or schema")
}

// Schema is the subset of a JSON Schema document that shapes generated classes.
// Validation keywords are not read.
type Schema struct {
	Schema      string `json:"$schema,omitempty"`
	ID          string `json:"$id,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	Type SchemaType `json:"type,omitempty"`

	Properties           *Properties           `json:"properties,omitempty"`
	Required             []string              `json:"required,omitempty"`
	AdditionalProperties *AdditionalProperties `json:"additionalProperties,omitempty"`

	Items *Schema `json:"items,omitempty"`

	Format string `json:"format,omitempty"`
	Enum   []any  `json:"enum,omitempty"`

	// Nullable is the OpenAPI 3.0 spelling of a "null" type.
	Nullable bool `json:"nullable,omitempty"`

	AllOf []*Schema `json:"allOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`

	Definitions map[string]*Schema `json:"definitions,omitempty"`
	Defs        map[string]*Schema `json:"$defs,omitempty"`
}

// ParseFile reads and parses a JSON Schema from a file
func ParseFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(fmt.Sprintf("file '%s' not found", path), errors.ErrFileNotFound)
		}
		return nil, errors.NewInputError(fmt.Sprintf("failed to read schema file '%s'", path), err)
	}
	return ParseBytes(data)
}

// ParseBytes parses JSON Schema from bytes
func ParseBytes(data []byte) (*Schema, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewInputError("schema is empty", errors.ErrEmptyInput)
	}
	var schema Schema
	if err := gojson.Unmarshal(data, &schema); err != nil {
		var syntaxErr *gojson.SyntaxError
		if stderrors.As(err, &syntaxErr) || stderrors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.NewParsingError(fmt.Sprintf("failed to parse JSON Schema: %v", err), errors.ErrInvalidJSON)
		}
		return nil, errors.NewInputError(fmt.Sprintf("failed to parse JSON Schema: %v", err), errors.ErrInvalidSchema)
	}
	return &schema, nil
}

// ParseString parses JSON Schema from a string
func ParseString(s string) (*Schema, error) {
	return ParseBytes([]byte(s))
}

// Converter builds class definitions from one schema document.
type Converter struct {
	schema       *Schema
	opts         models.GenerationOptions
	classes      []models.ClassDefinition
	classNames   map[string]int
	definitions  map[string]*Schema
	resolvedRefs map[string]models.TypeDescriptor
}

// NewConverter creates a new schema converter
func NewConverter(schema *Schema, opts models.GenerationOptions) *Converter {
	definitions := make(map[string]*Schema)
	for k, v := range schema.Definitions {
		definitions[k] = v
	}
	for k, v := range schema.Defs {
		definitions[k] = v
	}

	return &Converter{
		schema:       schema,
		opts:         opts,
		classNames:   make(map[string]int),
		definitions:  definitions,
		resolvedRefs: make(map[string]models.TypeDescriptor),
	}
}

// Convert returns one class per object schema, root first. The root class is
// named rootName (or the schema title) plus the configured suffix; nested
// classes follow the same naming as sample inference, and $ref targets are
// named after their definition.
func (c *Converter) Convert(rootName string) ([]models.ClassDefinition, error) {
	if rootName == "" {
		rootName = naming.PascalCase(c.schema.Title)
		if c.schema.Title == "" {
			rootName = "Root"
		}
	}
	if !naming.ValidClassName(rootName) {
		return nil, errors.NewInputError(fmt.Sprintf("invalid class name '%s'", rootName), errors.ErrInvalidClassName)
	}

	root, err := c.rootObject()
	if err != nil || root == nil {
		return nil, err
	}

	if _, err := c.convertObject(root, rootName+c.opts.ClassNameSuffix, rootName); err != nil {
		return nil, err
	}
	return c.classes, nil
}

// rootObject unwraps references, allOf and a root array down to the object
// schema the root class is built from. A root that is not an object yields nil.
func (c *Converter) rootObject() (*Schema, error) {
	root := c.schema
	seen := make(map[string]bool)
	for {
		switch {
		case root.Ref != "":
			if seen[root.Ref] {
				return nil, errors.NewInputError(fmt.Sprintf("circular $ref: %s", root.Ref), errors.ErrInvalidSchema)
			}
			seen[root.Ref] = true
			resolved, err := c.lookupRef(root.Ref)
			if err != nil {
				return nil, err
			}
			root = resolved
		case len(root.AllOf) > 0:
			root = c.mergeAllOf(root.AllOf)
		case schemaType(root) == "array" && root.Items != nil:
			root = root.Items
		case isObject(root):
			return root, nil
		default:
			return nil, nil
		}
	}
}

// convertSchema maps a property schema to a type. prefix names nested classes.
func (c *Converter) convertSchema(schema *Schema, key, prefix string) (models.TypeDescriptor, error) {
	if schema.Ref != "" {
		return c.resolveRef(schema.Ref)
	}

	if len(schema.AllOf) > 0 {
		return c.convertSchema(c.mergeAllOf(schema.AllOf), key, prefix)
	}
	if alt, nullable, ok := singleAlternative(schema); ok {
		td, err := c.convertSchema(alt, key, prefix)
		if err != nil {
			return models.TypeDescriptor{}, err
		}
		td.Nullable = td.Nullable || nullable
		return td, nil
	}

	switch schemaType(schema) {
	case "object":
		if schema.Properties.Len() == 0 {
			return primitive(models.PrimitiveMap), nil
		}
		name := prefix + naming.PascalCase(key)
		return c.convertObject(schema, name, name)
	case "array":
		return c.convertArray(schema, key, prefix)
	case "string":
		switch schema.Format {
		case "date-time", "date":
			return primitive(models.PrimitiveDateTime), nil
		}
		return primitive(models.PrimitiveString), nil
	case "integer":
		return primitive(models.PrimitiveInteger), nil
	case "number":
		return primitive(models.PrimitiveFloat), nil
	case "boolean":
		return primitive(models.PrimitiveBoolean), nil
	default:
		return models.TypeDescriptor{Kind: models.Dynamic, Nullable: true}, nil
	}
}

// convertObject records a class for schema and returns a reference to it.
func (c *Converter) convertObject(schema *Schema, className, prefix string) (models.TypeDescriptor, error) {
	finalName := c.uniqueName(className)
	ref := models.TypeDescriptor{Kind: models.Reference, ReferencedClassName: finalName}

	// Reserve the slot so the enclosing class precedes its nested ones.
	idx := len(c.classes)
	c.classes = append(c.classes, models.ClassDefinition{Name: finalName})

	required := make(map[string]bool, len(schema.Required))
	for _, r := range schema.Required {
		required[r] = true
	}

	fields := make([]models.FieldDefinition, 0, schema.Properties.Len())
	if schema.Properties != nil {
		for _, key := range schema.Properties.Keys {
			prop := schema.Properties.Schemas[key]
			td, err := c.convertSchema(prop, key, prefix)
			if err != nil {
				return models.TypeDescriptor{}, fmt.Errorf("property %s: %w", key, err)
			}

			optional := !required[key] || prop.Nullable || prop.Type.IsNullable()
			td.Nullable = td.Kind == models.Dynamic || (c.opts.NullSafetyEnabled && (optional || td.Nullable))
			td.OriginalKey = key

			fields = append(fields, models.FieldDefinition{
				Name:     naming.FieldName(key),
				JSONKey:  key,
				Type:     td,
				Nullable: td.Nullable,
			})
		}
	}

	c.classes[idx].Fields = fields
	return ref, nil
}

func (c *Converter) convertArray(schema *Schema, key, prefix string) (models.TypeDescriptor, error) {
	elem := models.TypeDescriptor{Kind: models.Dynamic, Nullable: true}
	if schema.Items != nil {
		var err error
		elem, err = c.convertSchema(schema.Items, singularize(key), prefix)
		if err != nil {
			return models.TypeDescriptor{}, fmt.Errorf("array items: %w", err)
		}
		if elem.Kind != models.Dynamic {
			elem.Nullable = false
		}
	}
	return models.TypeDescriptor{Kind: models.Array, ElementType: &elem}, nil
}

// resolveRef converts a local $ref once; later uses share the same class.
func (c *Converter) resolveRef(ref string) (models.TypeDescriptor, error) {
	if cached, ok := c.resolvedRefs[ref]; ok {
		return cached, nil
	}

	def, err := c.lookupRef(ref)
	if err != nil {
		return models.TypeDescriptor{}, err
	}
	name := naming.PascalCase(refName(ref))

	if isObject(def) && len(def.AllOf) == 0 {
		// Cache before descending so recursive definitions terminate.
		td := models.TypeDescriptor{Kind: models.Reference, ReferencedClassName: c.peekName(name)}
		c.resolvedRefs[ref] = td
		if _, err := c.convertObject(def, name, name); err != nil {
			return models.TypeDescriptor{}, err
		}
		return td, nil
	}

	td, err := c.convertSchema(def, name, "")
	if err != nil {
		return models.TypeDescriptor{}, err
	}
	c.resolvedRefs[ref] = td
	return td, nil
}

func (c *Converter) lookupRef(ref string) (*Schema, error) {
	for _, prefix := range []string{"#/definitions/", "#/$defs/"} {
		if strings.HasPrefix(ref, prefix) {
			if def, ok := c.definitions[strings.TrimPrefix(ref, prefix)]; ok {
				return def, nil
			}
			return nil, errors.NewInputError(fmt.Sprintf("unresolved $ref: %s", ref), errors.ErrInvalidSchema)
		}
	}
	return nil, errors.NewInputError(fmt.Sprintf("external $ref not supported: %s", ref), errors.ErrInvalidSchema)
}

// mergeAllOf merges multiple schemas from allOf
func (c *Converter) mergeAllOf(schemas []*Schema) *Schema {
	merged := &Schema{Properties: &Properties{}}

	for _, s := range schemas {
		resolved := s
		if s.Ref != "" {
			if def, err := c.lookupRef(s.Ref); err == nil {
				resolved = def
			}
		}
		if len(resolved.AllOf) > 0 {
			resolved = c.mergeAllOf(resolved.AllOf)
		}

		if resolved.Properties != nil {
			for _, key := range resolved.Properties.Keys {
				merged.Properties.set(key, resolved.Properties.Schemas[key])
			}
		}
		merged.Required = append(merged.Required, resolved.Required...)

		if merged.Title == "" && resolved.Title != "" {
			merged.Title = resolved.Title
		}
		if merged.Description == "" && resolved.Description != "" {
			merged.Description = resolved.Description
		}
	}

	merged.Type = SchemaType{Types: []string{"object"}}
	return merged
}

// uniqueName ensures class names are unique
func (c *Converter) uniqueName(baseName string) string {
	name := c.peekName(baseName)
	c.classNames[baseName]++
	return name
}

// peekName returns the name uniqueName would hand out next.
func (c *Converter) peekName(baseName string) string {
	if count := c.classNames[baseName]; count > 0 {
		return fmt.Sprintf("%s%d", baseName, count)
	}
	return baseName
}

// schemaType resolves the effective type keyword, inferring it from the
// shape of the schema when absent.
func schemaType(s *Schema) string {
	if t := s.Type.Primary(); t != "" {
		return t
	}
	switch {
	case s.Properties.Len() > 0 || s.AdditionalProperties != nil:
		return "object"
	case s.Items != nil:
		return "array"
	case len(s.Enum) > 0:
		return enumType(s.Enum)
	}
	return ""
}

func enumType(values []any) string {
	kind := ""
	for _, v := range values {
		var k string
		switch n := v.(type) {
		case string:
			k = "string"
		case bool:
			k = "boolean"
		case float64:
			k = "number"
			if n == float64(int64(n)) {
				k = "integer"
			}
		case nil:
			continue
		default:
			return ""
		}
		switch {
		case kind == "":
			kind = k
		case kind == "integer" && k == "number", kind == "number" && k == "integer":
			kind = "number"
		case kind != k:
			return ""
		}
	}
	return kind
}

func isObject(s *Schema) bool {
	return schemaType(s) == "object" && s.Properties.Len() > 0 || len(s.AllOf) > 0
}

// singleAlternative unwraps anyOf/oneOf holding one schema, optionally next to
// {"type": "null"}.
func singleAlternative(s *Schema) (*Schema, bool, bool) {
	alts := s.AnyOf
	if len(alts) == 0 {
		alts = s.OneOf
	}
	if len(alts) == 0 {
		return nil, false, false
	}

	var picked *Schema
	nullable := false
	for _, alt := range alts {
		if alt.Ref == "" && len(alt.Type.Types) == 1 && alt.Type.Types[0] == "null" {
			nullable = true
			continue
		}
		if picked != nil {
			return nil, false, false
		}
		picked = alt
	}
	if picked == nil {
		return nil, false, false
	}
	return picked, nullable, true
}

func refName(ref string) string {
	return ref[strings.LastIndex(ref, "/")+1:]
}

func primitive(name models.PrimitiveName) models.TypeDescriptor {
	return models.TypeDescriptor{Kind: models.Primitive, PrimitiveName: name}
}

// singularize attempts to singularize a name
func singularize(s string) string {
	lower := strings.ToLower(s)

	switch {
	case strings.HasSuffix(lower, "ies") && len(s) > 3:
		return s[:len(s)-3] + "y"
	case strings.HasSuffix(lower, "sses") && len(s) > 4:
		return s[:len(s)-2]
	case strings.HasSuffix(lower, "ss"):
		return s
	case strings.HasSuffix(lower, "s") && len(s) > 1:
		return s[:len(s)-1]
	}
	return s
}
