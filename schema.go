package zipsift

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// schemaValidator wraps a JSON Schema compiled once at configuration time.
type schemaValidator struct {
	schema *gojsonschema.Schema
}

func newSchemaValidator(schemaJSON string) (*schemaValidator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &schemaValidator{schema: s}, nil
}

// validate reports whether doc conforms to the schema. Evaluation errors
// count as non-conformance; a bad document must skip, not fail the scan.
func (v *schemaValidator) validate(doc []byte) bool {
	res, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return false
	}
	return res.Valid()
}
