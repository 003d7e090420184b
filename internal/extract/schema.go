package extract

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/source.json
var sourceSchemaJSON string

//go:embed schemas/trace.json
var traceSchemaJSON string

var (
	sourceSchema = mustCompileSchema("source.json", sourceSchemaJSON)
	traceSchema  = mustCompileSchema("trace.json", traceSchemaJSON)
)

func mustCompileSchema(name, document string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(document)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return schema
}

// validateAnswerShape checks a decoded JSON answer against the schema for
// the given mode.
func validateAnswerShape(value JSONValue, trace bool) bool {
	schema := sourceSchema
	if trace {
		schema = traceSchema
	}
	return schema.Validate(value.ToInterface()) == nil
}
