package types

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed document.schema.json
var documentSchemaJSON []byte

const documentSchemaURL = "document.schema.json"

var (
	schemaOnce     sync.Once
	documentSchema *jsonschema.Schema
	schemaErr      error
)

// ValidationError reports the first schema violation found in a document.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid document: %s", e.Message)
	}
	return fmt.Sprintf("invalid document at %s: %s", e.Path, e.Message)
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(documentSchemaURL, bytes.NewReader(documentSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to load document schema: %w", err)
			return
		}
		documentSchema, schemaErr = compiler.Compile(documentSchemaURL)
	})
	return documentSchema, schemaErr
}

// ValidateDocument checks raw JSON against the document schema.
func ValidateDocument(raw []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return &ValidationError{Message: fmt.Sprintf("malformed JSON: %v", err)}
	}

	if err := schema.Validate(doc); err != nil {
		return schemaError(err)
	}
	return nil
}

func schemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &ValidationError{Message: err.Error()}
	}
	// The leaf cause carries the useful location.
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &ValidationError{Path: ve.InstanceLocation, Message: ve.Message}
}

// DecodeDocument validates and unmarshals a JSON document, then normalizes it.
func DecodeDocument(raw []byte) (*Document, error) {
	if err := ValidateDocument(raw); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	doc.Normalize()
	return &doc, nil
}

// DecodeDocumentYAML accepts the same document written as YAML.
func DecodeDocumentYAML(raw []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	keepTimestampText(&root)

	var generic interface{}
	if err := root.Decode(&generic); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML to JSON: %w", err)
	}
	return DecodeDocument(asJSON)
}

// keepTimestampText retags implicit timestamps as strings so dates keep the
// form they were written in.
func keepTimestampText(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!timestamp" {
		n.Tag = "!!str"
	}
	for _, c := range n.Content {
		keepTimestampText(c)
	}
}
