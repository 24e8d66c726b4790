package submitter

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"card-submitter/internal/common/errors"
	"card-submitter/internal/common/validation"
)

// GetFieldsSchema describes the fields argument: an object of field name to field text.
func GetFieldsSchema() validation.JSONSchema {
	return validation.JSONSchema{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"type":        "object",
		"description": "Note fields keyed by field name",
		"additionalProperties": map[string]interface{}{
			"type": "string",
		},
	}
}

// ParseFields decodes the fields argument into a field map.
func ParseFields(raw string) (map[string]string, error) {
	result, err := validation.ValidateJSON([]byte(raw), GetFieldsSchema())
	if err != nil {
		var syntaxErr *validation.SyntaxError
		if stderrors.As(err, &syntaxErr) {
			return nil, errors.NewMalformedInputError(fmt.Sprintf("fields is not valid JSON: %v", syntaxErr.Err), err)
		}
		return nil, errors.NewMalformedInputError(err.Error(), err)
	}
	if !result.Valid {
		return nil, errors.NewMalformedInputError(
			fmt.Sprintf("fields must be a JSON object of strings: %s", strings.Join(result.GetErrorMessages(), "; ")),
			nil,
		)
	}

	fields := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, errors.NewMalformedInputError(err.Error(), err)
	}
	return fields, nil
}
