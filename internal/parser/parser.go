package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	stderrors "errors" // Standard errors package

	gojson "github.com/goccy/go-json"
	"github.com/mcncl/jsonbean/internal/errors" // Custom errors package
	"github.com/mcncl/jsonbean/internal/models"
)

// Parse converts JSON data from an io.Reader into an IntermediateRepresentation.
// Object keys keep their document order. Numbers are kept as json.Number.
func Parse(reader io.Reader) (models.IntermediateRepresentation, error) {
	decoder := gojson.NewDecoder(reader)
	decoder.UseNumber()

	tok, err := decoder.Token()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.IntermediateRepresentation{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return models.IntermediateRepresentation{}, syntaxError(err)
	}

	rootValue, err := valueFromToken(decoder, tok)
	if err != nil {
		return models.IntermediateRepresentation{}, syntaxError(err)
	}

	// Only whitespace may follow the root value.
	if _, err := decoder.Token(); err == nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	} else if !stderrors.Is(err, io.EOF) {
		return models.IntermediateRepresentation{}, errors.NewParsingError(fmt.Sprintf("invalid trailing data after first JSON value: %v", err), errors.ErrInvalidJSON)
	}

	ir := models.IntermediateRepresentation{Root: rootValue}
	if _, ok := rootValue.(models.JSONArray); ok {
		ir.RootIsArray = true
	}
	return ir, nil
}

// readValue reads the next complete value. An EOF here is always premature.
func readValue(decoder *gojson.Decoder) (models.JSONValue, error) {
	tok, err := decoder.Token()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return valueFromToken(decoder, tok)
}

func valueFromToken(decoder *gojson.Decoder, tok any) (models.JSONValue, error) {
	switch v := tok.(type) {
	case gojson.Delim:
		switch v {
		case '{':
			return readObject(decoder)
		case '[':
			return readArray(decoder)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", rune(v))
		}
	case string:
		return v, nil
	case bool:
		return v, nil
	case gojson.Number:
		return json.Number(string(v)), nil
	case float64:
		return json.Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected json token %T", v)
	}
}

func readObject(decoder *gojson.Decoder) (models.JSONValue, error) {
	obj := models.NewJSONObject()
	for {
		tok, err := decoder.Token()
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if d, ok := tok.(gojson.Delim); ok && d == '}' {
			return obj, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", tok)
		}
		value, err := readValue(decoder)
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)
	}
}

func readArray(decoder *gojson.Decoder) (models.JSONValue, error) {
	arr := models.JSONArray{}
	for {
		tok, err := decoder.Token()
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if d, ok := tok.(gojson.Delim); ok && d == ']' {
			return arr, nil
		}
		value, err := valueFromToken(decoder, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
}

// syntaxError turns a decoder failure into an InvalidInputJson error that
// carries the parser diagnostic.
func syntaxError(err error) error {
	var syntaxErr *gojson.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxErr.Offset, syntaxErr.Error()),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	}
	return errors.NewParsingError(fmt.Sprintf("failed to decode JSON: %v", err), errors.ErrInvalidJSON)
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("file path is empty", errors.ErrFileNotFound)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.IntermediateRepresentation{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to read file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrEmptyInput,
		)
	}
	return ParseString(string(data))
}
