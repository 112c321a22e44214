package model

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var documentSchema string

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// SchemaError lists every violation reported by the document schema.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "document schema violations: " + strings.Join(e.Violations, "; ")
}

// ValidateJSON checks a raw JSON payload against the document schema before it
// is decoded. It is used for documents arriving from outside the process.
func ValidateJSON(payload []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("validate document schema: %w", err)
	}
	if result.Valid() {
		return nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return &SchemaError{Violations: violations}
}

// Parse validates a raw payload against the schema and decodes it.
func Parse(payload []byte) (Document, error) {
	if err := ValidateJSON(payload); err != nil {
		return Document{}, err
	}
	return Decode(payload)
}
