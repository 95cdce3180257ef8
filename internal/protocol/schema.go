package protocol

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/resolve.schema.json
var resolveSchemaJSON []byte

var (
	resolveOnce   sync.Once
	resolveSchema *jsonschema.Schema
	resolveErr    error
)

func compiledResolveSchema() (*jsonschema.Schema, error) {
	resolveOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("resolve.schema.json", bytes.NewReader(resolveSchemaJSON)); err != nil {
			resolveErr = err
			return
		}
		resolveSchema, resolveErr = c.Compile("resolve.schema.json")
	})
	return resolveSchema, resolveErr
}

// ValidateResolve checks a raw RESOLVE message against its schema.
func ValidateResolve(raw []byte) error {
	s, err := compiledResolveSchema()
	if err != nil {
		return fmt.Errorf("resolve schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return s.Validate(doc)
}
