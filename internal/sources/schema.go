package sources

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Schema names accepted by ValidateJSON.
const (
	SchemaAOD         = "aod"
	SchemaARM         = "arm"
	SchemaAniTrakt    = "anitrakt"
	SchemaFribb       = "fribb"
	SchemaKaize       = "kaize"
	SchemaNautiljon   = "nautiljon"
	SchemaOtakOtaku   = "otakotaku"
	SchemaSilverYasha = "silveryasha"
	SchemaManual      = "manual"
)

var (
	schemaMu sync.Mutex
	compiled = map[string]*jsonschema.Schema{}
)

func loadSchema(name string) (*jsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	if schema, ok := compiled[name]; ok {
		return schema, nil
	}

	resource := name + ".schema.json"
	raw, err := schemaFS.ReadFile("schemas/" + resource)
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(resource, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	compiled[name] = schema
	return schema, nil
}

// ValidateJSON decodes raw and checks it against the named schema. It
// returns the decoded document with numbers kept as json.Number.
func ValidateJSON(name string, raw []byte) (any, error) {
	value, err := decodeStrictJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	schema, err := loadSchema(name)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	return value, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf")))
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("document is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("document contains trailing content")
	}
	return value, nil
}
