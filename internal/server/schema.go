package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/boletos-tracker/internal/common"
)

var createBillSchema = map[string]any{
	"type":     "object",
	"required": []string{"fornecedor", "valor", "vencimento"},
	"properties": map[string]any{
		"fornecedor":    map[string]any{"type": "string"},
		"valor":         map[string]any{"type": []string{"number", "string"}},
		"vencimento":    map[string]any{"type": "string"},
		"anexo":         map[string]any{"type": []string{"string", "null"}},
		"status":        map[string]any{"type": []string{"string", "null"}},
		"dataPagamento": map[string]any{"type": []string{"string", "null"}},
	},
}

var updateStatusSchema = map[string]any{
	"type":     "object",
	"required": []string{"status"},
	"properties": map[string]any{
		"status":        map[string]any{"type": "string"},
		"dataPagamento": map[string]any{"type": []string{"string", "null"}},
	},
}

var (
	createBillValidator   = mustCompileSchema("create_bill.json", createBillSchema)
	updateStatusValidator = mustCompileSchema("update_status.json", updateStatusSchema)
)

func mustCompileSchema(name string, schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal schema %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// validateBody checks a raw request body against schema. Failures come back as
// *common.ValidationError naming the offending field.
func validateBody(schema *jsonschema.Schema, body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return common.NewValidationError("", nil, "request body is required")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return common.NewValidationError("", nil, "request body must be valid JSON")
	}
	if err := schema.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return schemaError(ve)
		}
		return common.NewValidationError("", nil, err.Error())
	}
	return nil
}

// schemaError reports the deepest cause, which names the actual field.
func schemaError(ve *jsonschema.ValidationError) error {
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	return common.NewValidationError(field, nil, leaf.Message)
}
