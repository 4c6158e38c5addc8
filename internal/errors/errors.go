package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput        = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON       = errors.New("invalid JSON format")
	ErrMultipleJSON      = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrInvalidClassName  = errors.New("class name must start with an uppercase letter and contain only letters and digits")
	ErrClassNotFound     = errors.New("class not found")
	ErrNoFields          = errors.New("no fields found in the class")
	ErrNotFlutterProject = errors.New("not a Flutter project")
	ErrNoLibDir          = errors.New("lib directory not found")
	ErrNoEntityFiles     = errors.New("no entity classes found")
	ErrFileNotFound      = errors.New("file not found")
	ErrInvalidSchema     = errors.New("unsupported or malformed JSON Schema")
	ErrNoInput           = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput         ErrorType = "input"
	ErrorTypeParsing       ErrorType = "parsing"
	ErrorTypeClassNotFound ErrorType = "class_not_found"
	ErrorTypeNoFields      ErrorType = "no_fields"
	ErrorTypeGenerate      ErrorType = "generate"
	ErrorTypeFormat        ErrorType = "format"
	ErrorTypeProject       ErrorType = "project"
	ErrorTypeOutput        ErrorType = "output"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another *AppError of the same Type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

func newError(t ErrorType, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Err: err}
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return newError(ErrorTypeInput, message, err)
}

// NewParsingError creates an InvalidInputJson error. The message carries the
// parser diagnostic.
func NewParsingError(message string, err error) *AppError {
	return newError(ErrorTypeParsing, message, err)
}

// NewClassNotFoundError reports that no body for className was located in source.
func NewClassNotFoundError(className string) *AppError {
	return newError(ErrorTypeClassNotFound, fmt.Sprintf("could not find class %s", className), ErrClassNotFound)
}

// NewNoFieldsError reports that className has no recognizable field declarations.
func NewNoFieldsError(className string) *AppError {
	return newError(ErrorTypeNoFields, fmt.Sprintf("no fields found in class %s", className), ErrNoFields)
}

// NewGenerateError wraps any unexpected condition during rendering.
func NewGenerateError(message string, err error) *AppError {
	return newError(ErrorTypeGenerate, message, err)
}

// NewFormatError creates a new error related to code formatting
func NewFormatError(message string, err error) *AppError {
	return newError(ErrorTypeFormat, message, err)
}

// NewProjectError creates a new error related to project detection or scanning
func NewProjectError(message string, err error) *AppError {
	return newError(ErrorTypeProject, message, err)
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return newError(ErrorTypeOutput, message, err)
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("Invalid JSON: %s", appErr.Message)
		case ErrorTypeClassNotFound:
			return fmt.Sprintf("Class not found: %s", appErr.Message)
		case ErrorTypeNoFields:
			return fmt.Sprintf("Nothing to generate: %s", appErr.Message)
		case ErrorTypeGenerate:
			if appErr.Err != nil {
				return fmt.Sprintf("Code generation error: %s: %v", appErr.Message, appErr.Err)
			}
			return fmt.Sprintf("Code generation error: %s", appErr.Message)
		case ErrorTypeFormat:
			return fmt.Sprintf("Code formatting error: %s", appErr.Message)
		case ErrorTypeProject:
			return fmt.Sprintf("Project error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON object or array."
	}
	if errors.Is(err, ErrInvalidClassName) {
		return "Error: Class name must start with an uppercase letter and contain only letters and numbers."
	}
	if errors.Is(err, ErrNotFlutterProject) {
		return "Error: This is not a Flutter project. Run the command inside a Flutter project."
	}
	if errors.Is(err, ErrNoLibDir) {
		return "Error: Could not find lib directory in your Flutter project."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe JSON data to stdin."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
