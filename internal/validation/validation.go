// Package validation checks inbound request bodies against JSON schemas
// before they are decoded.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"homebuyer-lead-engine/internal/models"
)

// ErrMalformedBody is returned when the body is not a JSON document.
var ErrMalformedBody = errors.New("request body is not valid JSON")

// Numeric wizard fields arrive as numbers or formatted strings ("$65,000").
const definitions = `
"definitions": {
	"numeric": {"type": ["string", "number", "null"]},
	"draft": {
		"type": "object",
		"properties": {
			"location": {
				"type": ["object", "null"],
				"properties": {
					"city": {"type": "string", "maxLength": 120},
					"zip": {"type": "string", "maxLength": 10},
					"priorities": {"type": "array", "items": {"type": "string"}}
				}
			},
			"timeline": {"type": "string"},
			"budget": {
				"type": ["object", "null"],
				"properties": {
					"targetPrice": {"$ref": "#/definitions/numeric"},
					"monthlyBudget": {"$ref": "#/definitions/numeric"}
				}
			},
			"annualIncome": {"$ref": "#/definitions/numeric"},
			"monthlyDebts": {"$ref": "#/definitions/numeric"},
			"creditScore": {"type": "string"},
			"downPayment": {
				"type": ["object", "null"],
				"properties": {
					"amount": {"$ref": "#/definitions/numeric"},
					"percent": {"$ref": "#/definitions/numeric"}
				}
			},
			"employmentType": {"type": "string"},
			"buyerTags": {"type": ["array", "null"], "items": {"type": "string"}},
			"householdSize": {"$ref": "#/definitions/numeric"}
		}
	}
}`

const reportRequestSchema = `{
"type": "object",
"required": ["answers"],
"properties": {
	"answers": {"$ref": "#/definitions/draft"},
	"locale": {"type": "string", "maxLength": 64},
	"includeInsights": {"type": "boolean"}
},
` + definitions + `
}`

const leadRequestSchema = `{
"type": "object",
"required": ["contact", "answers"],
"properties": {
	"contact": {
		"type": "object",
		"required": ["name", "email"],
		"properties": {
			"name": {"type": "string", "maxLength": 200},
			"email": {"type": "string", "maxLength": 254},
			"phone": {"type": "string", "maxLength": 32}
		}
	},
	"answers": {"$ref": "#/definitions/draft"},
	"locale": {"type": "string", "maxLength": 64}
},
` + definitions + `
}`

// Schema is a compiled request schema.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

var (
	// ReportRequest validates POST /api/report bodies.
	ReportRequest = mustCompile("report request", reportRequestSchema)
	// LeadRequest validates POST /api/leads bodies.
	LeadRequest = mustCompile("lead request", leadRequestSchema)
)

func mustCompile(name, source string) *Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("compile %s schema: %v", name, err))
	}
	return &Schema{name: name, schema: s}
}

// Name returns the schema's label.
func (s *Schema) Name() string {
	return s.name
}

// Validate checks body against the schema. It returns ErrMalformedBody for
// non-JSON input and models.ValidationErrors for schema violations.
func (s *Schema) Validate(body []byte) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return ErrMalformedBody
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if result.Valid() {
		return nil
	}

	errs := make(models.ValidationErrors, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, toFieldError(desc))
	}
	return errs
}

func toFieldError(desc gojsonschema.ResultError) models.FieldError {
	field := desc.Field()
	if field == "(root)" {
		field = ""
	}

	code := models.CodeInvalid
	if desc.Type() == "required" {
		code = models.CodeRequired
		if prop, ok := desc.Details()["property"].(string); ok && !strings.HasSuffix(field, prop) {
			field = joinPath(field, prop)
		}
	}
	if field == "" {
		field = "body"
	}

	return models.FieldError{Field: field, Code: code, Message: desc.Description()}
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
