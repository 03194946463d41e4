package config

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/uisys.v1.schema.json
var schemaFS embed.FS

const schemaPath = "schemas/uisys.v1.schema.json"

// SchemaError is a single schema violation.
type SchemaError struct {
	Field       string
	Type        string
	Description string
}

func (e SchemaError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

// ValidateDocument checks a raw uisys.yaml document against the embedded
// JSON schema. It returns the violations, or an error if the document could
// not be read at all.
func ValidateDocument(data []byte) ([]SchemaError, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	// gojsonschema works on JSON, so round-trip the YAML document.
	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("config is not representable as JSON: %w", err)
	}

	schemaBytes, err := schemaFS.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load JSON schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(jsonDoc),
	)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	problems := make([]SchemaError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, SchemaError{
			Field:       desc.Field(),
			Type:        desc.Type(),
			Description: desc.Description(),
		})
	}
	return problems, nil
}
