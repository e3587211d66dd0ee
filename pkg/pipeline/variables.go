package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var ErrInvalidVariables = errors.New("invalid pipeline variables")

// The variables input must be a flat JSON object of scalar values, matching
// what Azure DevOps accepts for queue-time parameters.
const variablesSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": ["string", "number", "boolean"]
	}
}`

// ParseVariables decodes the variables action input. An empty input yields
// nil. Numbers and booleans are stringified, which is how the service
// receives queue-time variables anyway.
func ParseVariables(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(variablesSchema),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidVariables, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, resultError := range result.Errors() {
			details = append(details, resultError.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrInvalidVariables, strings.Join(details, "; "))
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidVariables, err)
	}

	variables := make(map[string]string, len(decoded))

	for name, value := range decoded {
		switch v := value.(type) {
		case string:
			variables[name] = v
		case bool:
			variables[name] = strconv.FormatBool(v)
		case float64:
			variables[name] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("%w: variable %q has unsupported type", ErrInvalidVariables, name)
		}
	}

	return variables, nil
}
