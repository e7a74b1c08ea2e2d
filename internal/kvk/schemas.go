package kvk

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	apierrors "kvk-connect/internal/common/errors"
)

// Response schemas are deliberately shallow: they pin the identifying fields
// the mirror cannot do without and leave the rest to the JSON decoder.
var (
	basisprofielSchema = map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"kvkNummer"},
		"properties": map[string]interface{}{
			"kvkNummer": map[string]interface{}{"type": "string", "pattern": "^[0-9]{8}$"},
			"naam":      map[string]interface{}{"type": []interface{}{"string", "null"}},
		},
	}

	vestigingListSchema = map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"kvkNummer", "vestigingen"},
		"properties": map[string]interface{}{
			"kvkNummer":   map[string]interface{}{"type": "string", "pattern": "^[0-9]{8}$"},
			"vestigingen": map[string]interface{}{"type": "array"},
		},
	}

	vestigingsprofielSchema = map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"vestigingsnummer"},
		"properties": map[string]interface{}{
			"vestigingsnummer": map[string]interface{}{"type": "string", "pattern": "^[0-9]{12}$"},
		},
	}

	mutatiePageSchema = map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"signalen"},
		"properties": map[string]interface{}{
			"pagina":        map[string]interface{}{"type": "integer"},
			"totaalPaginas": map[string]interface{}{"type": "integer"},
			"signalen":      map[string]interface{}{"type": "array"},
		},
	}
)

func validatePayload(endpoint string, schemaMap map[string]interface{}, body []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewBytesLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return apierrors.NewInvalidPayloadError(endpoint, err.Error())
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return apierrors.NewInvalidPayloadError(endpoint, fmt.Sprintf("%v", errs))
	}

	return nil
}
