package modgraph

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidModule is returned when a module has no specifier or a
	// package module's specifier is not an exact "npm:" reference.
	ErrInvalidModule = errors.New("invalid module")

	// ErrDuplicateModule is returned when a specifier is added twice.
	ErrDuplicateModule = errors.New("duplicate module")
)

// ErrorKind classifies a module that failed to load.
type ErrorKind string

const (
	ErrorMissing                        ErrorKind = "missing"
	ErrorMissingDynamic                 ErrorKind = "missingDynamic"
	ErrorLoading                        ErrorKind = "loading"
	ErrorParse                          ErrorKind = "parse"
	ErrorUnsupportedMediaType           ErrorKind = "unsupportedMediaType"
	ErrorInvalidTypeAssertion           ErrorKind = "invalidTypeAssertion"
	ErrorUnsupportedImportAssertionType ErrorKind = "unsupportedImportAssertionType"
	ErrorResolution                     ErrorKind = "resolution"
)

// ParseErrorKind maps a wire name to an ErrorKind. Unknown names are treated
// as loading errors.
func ParseErrorKind(s string) ErrorKind {
	switch k := ErrorKind(s); k {
	case ErrorMissing, ErrorMissingDynamic, ErrorLoading, ErrorParse,
		ErrorUnsupportedMediaType, ErrorInvalidTypeAssertion,
		ErrorUnsupportedImportAssertionType, ErrorResolution:
		return k
	}
	return ErrorLoading
}

// IsMissing reports whether the module could not be found at all.
func (k ErrorKind) IsMissing() bool {
	return k == ErrorMissing || k == ErrorMissingDynamic
}

// ModuleError records a module slot that failed to load.
type ModuleError struct {
	Specifier string
	Kind      ErrorKind
	Message   string
}

func (e *ModuleError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case ErrorMissing, ErrorMissingDynamic:
		return fmt.Sprintf("Module not found %q.", e.Specifier)
	case ErrorParse:
		return fmt.Sprintf("The module's source code could not be parsed: %s", e.Specifier)
	case ErrorUnsupportedMediaType:
		return fmt.Sprintf("Expected a JavaScript or TypeScript module, but identified an unsupported module type: %s", e.Specifier)
	case ErrorInvalidTypeAssertion:
		return fmt.Sprintf("Invalid import assertion for %s.", e.Specifier)
	case ErrorUnsupportedImportAssertionType:
		return fmt.Sprintf("Unsupported import assertion type for %s.", e.Specifier)
	case ErrorResolution:
		return fmt.Sprintf("Could not resolve %s.", e.Specifier)
	}
	return fmt.Sprintf("Could not load %s.", e.Specifier)
}
