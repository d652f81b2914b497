package backend

import (
	"encoding/json"
	"fmt"
	"strings"

	"ballooner/internal/types"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

const labelValueSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["value"],
  "properties": {
    "parameter": {"type": "string"},
    "value": {"type": ["string", "number"]}
  }
}`

func compileSchema(name, raw string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(raw)); err != nil {
		return nil, err
	}
	return compiler.Compile(name)
}

// parseLabelValue validates a get-value-for-label body and extracts the pair.
// A missing parameter falls back to the requested label.
func parseLabelValue(schema *jsonschema.Schema, body, label string) (types.LabelValue, error) {
	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return types.LabelValue{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := schema.Validate(doc); err != nil {
		return types.LabelValue{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	parsed := gjson.Parse(body)
	out := types.LabelValue{Parameter: strings.TrimSpace(parsed.Get("parameter").String())}
	if out.Parameter == "" {
		out.Parameter = label
	}
	value := parsed.Get("value")
	if value.Type == gjson.Number {
		out.Value = value.Raw
	} else {
		out.Value = value.String()
	}
	return out, nil
}
