package compose

import (
	"encoding/json"
	"regexp"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/semhome/errors"
)

// fencedJSON matches the first code fence labeled json in model output.
var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)```")

// compositionSchema is the structural contract for the fenced payload. It
// is checked before decoding so a shape mismatch reads as a parsing
// failure, not a half-decoded plan.
const compositionSchema = `{
  "type": "object",
  "required": ["services"],
  "properties": {
    "services": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["service_id"],
        "properties": {
          "service_id": {"type": "string", "minLength": 1},
          "role": {"type": "string"},
          "priority": {"type": "integer", "minimum": 0},
          "inputs": {"type": "array", "items": {"type": "string"}},
          "outputs": {"type": "array", "items": {"type": "string"}},
          "dependencies": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(compositionSchema)

// payload is the structured body expected inside the fence.
type payload struct {
	Services []PlanService `json:"services"`
}

// extractPayload pulls the fenced json block out of the model's answer,
// checks it against the composition schema, and decodes it. A missing
// block, a schema mismatch, or a decode failure all surface as
// ErrParsingFailed; callers degrade to an empty-services plan.
func extractPayload(raw string) (payload, error) {
	match := fencedJSON.FindStringSubmatch(raw)
	if match == nil {
		return payload{}, errors.WrapInvalid(errors.ErrParsingFailed, "compose", "extractPayload", "no fenced json block in model output")
	}
	body := match[1]

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(body))
	if err != nil || !result.Valid() {
		return payload{}, errors.WrapInvalid(errors.ErrParsingFailed, "compose", "extractPayload", "payload does not match composition schema")
	}

	var p payload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return payload{}, errors.WrapInvalid(errors.ErrParsingFailed, "compose", "extractPayload", "decoding fenced json block")
	}
	return p, nil
}
