package server

import (
	"github.com/invopop/jsonschema"
)

// buildSchemas reflects the public request and response bodies once at
// startup. Served at /api/schema keyed by body name.
func buildSchemas() map[string]any {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	return map[string]any{
		"optimize_request":              r.Reflect(&OptimizeRequest{}),
		"generate_questions_request":    r.Reflect(&GenerateQuestionsRequest{}),
		"optimize_with_answers_request": r.Reflect(&OptimizeWithAnswersRequest{}),
		"optimize_response":             r.Reflect(&OptimizeResponse{}),
		"generate_questions_response":   r.Reflect(&GenerateQuestionsResponse{}),
		"error_response":                r.Reflect(&ErrorResponse{}),
		"think_client_frame":            r.Reflect(&ClientFrame{}),
		"think_server_frame":            r.Reflect(&ServerFrame{}),
	}
}
