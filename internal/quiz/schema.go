package quiz

import "github.com/xeipuuv/gojsonschema"

// questionSchemaJSON is the contract a generated question must satisfy
// before it is served to a learner.
const questionSchemaJSON = `{
	"type": "object",
	"properties": {
		"question": {
			"type": "string",
			"minLength": 1
		},
		"options": {
			"type": "array",
			"items": {"type": "string", "minLength": 1},
			"minItems": 4,
			"maxItems": 4
		},
		"correctAnswer": {
			"type": "string",
			"minLength": 1
		},
		"explanation": {
			"type": "string"
		}
	},
	"required": ["question", "options", "correctAnswer", "explanation"]
}`

var questionSchema = mustCompileSchema(questionSchemaJSON)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic("quiz: invalid question schema: " + err.Error())
	}
	return schema
}

// validateQuestionJSON checks raw generator output against the question
// schema and returns the first violation, if any.
func validateQuestionJSON(raw string) error {
	result, err := questionSchema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return err
	}
	if !result.Valid() {
		return schemaError{result.Errors()[0].String()}
	}
	return nil
}

type schemaError struct {
	detail string
}

func (e schemaError) Error() string {
	return "question schema violation: " + e.detail
}
