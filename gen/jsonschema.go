//go:build ignore

// This program generates the JSON schema for fortitude.toml.
// Run with: go run gen/jsonschema.go > schema.json
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/fortitude-sh/fortitude/internal/config"
	"github.com/fortitude-sh/fortitude/internal/rules"

	_ "github.com/fortitude-sh/fortitude/internal/rulesimpl/meta"
	_ "github.com/fortitude-sh/fortitude/internal/rulesimpl/stable"
)

func main() {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
	}

	schema := r.Reflect(&config.Configuration{})
	schema.ID = "https://json.schemastore.org/fortitude.json"
	schema.Title = "fortitude configuration"
	schema.Description = "Configuration schema for the fortitude Fortran linter"

	addRuleOptionSchemas(r, schema)
	fixRequiredFields(schema)

	schema.Comments = fmt.Sprintf("Auto-generated on %s. Do not edit manually.",
		time.Now().Format("2006-01-02"))

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

// addRuleOptionSchemas adds a schema definition for every rule that accepts
// per-rule options, discovered from the registry rather than hardcoded.
func addRuleOptionSchemas(r *jsonschema.Reflector, schema *jsonschema.Schema) {
	if schema.Definitions == nil {
		schema.Definitions = make(jsonschema.Definitions)
	}

	reg := rules.DefaultRegistry()
	for _, rule := range reg.All() {
		confRule, ok := rule.(rules.ConfigurableRule)
		if !ok {
			continue
		}

		opts := confRule.DefaultOptions()
		if opts == nil {
			continue
		}

		optSchema := r.Reflect(opts)
		code := rule.Metadata().Code()
		optSchema.Description = fmt.Sprintf("Options for rule %s", code)
		schema.Definitions[code+"Options"] = optSchema
	}
}

// fixRequiredFields removes the required array from nested schemas, since
// koanf's layered resolution treats every field as optional.
func fixRequiredFields(schema *jsonschema.Schema) {
	schema.Required = nil
	if checkDef, ok := schema.Definitions["CheckConfig"]; ok {
		checkDef.Required = nil
	}
	if outputDef, ok := schema.Definitions["OutputConfig"]; ok {
		outputDef.Required = nil
		if format, ok := outputDef.Properties.Get("format"); ok {
			format.Enum = []any{
				"text", "concise", "json", "json-lines", "sarif",
				"github-actions", "gitlab", "azure", "pylint", "rdjson",
				"junit", "markdown",
			}
			format.Default = "concise"
		}
	}
	if loggingDef, ok := schema.Definitions["LoggingConfig"]; ok {
		loggingDef.Required = nil
		if level, ok := loggingDef.Properties.Get("level"); ok {
			level.Enum = []any{"trace", "debug", "info", "warn", "error"}
			level.Default = "warn"
		}
	}
}
