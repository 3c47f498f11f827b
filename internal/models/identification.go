package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResult is returned when a payload does not carry the four
// identification fields.
var ErrMalformedResult = errors.New("malformed identification result")

// IdentificationResult describes the species recognised in an image.
// Field names on the wire follow the original Spanish contract.
type IdentificationResult struct {
	CommonName         string `json:"nombre_comun"`
	ScientificName     string `json:"nombre_cientifico"`
	Habitat            string `json:"habitat"`
	ConservationStatus string `json:"estado_conservacion"`
}

// DecodeIdentificationResult parses data and requires every field to be present.
func DecodeIdentificationResult(data []byte) (IdentificationResult, error) {
	var raw struct {
		CommonName         *string `json:"nombre_comun"`
		ScientificName     *string `json:"nombre_cientifico"`
		Habitat            *string `json:"habitat"`
		ConservationStatus *string `json:"estado_conservacion"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return IdentificationResult{}, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}

	var missing []string
	check := func(name string, v *string) string {
		if v == nil {
			missing = append(missing, name)
			return ""
		}
		return *v
	}

	result := IdentificationResult{
		CommonName:         check("nombre_comun", raw.CommonName),
		ScientificName:     check("nombre_cientifico", raw.ScientificName),
		Habitat:            check("habitat", raw.Habitat),
		ConservationStatus: check("estado_conservacion", raw.ConservationStatus),
	}
	if len(missing) > 0 {
		return IdentificationResult{}, fmt.Errorf("%w: missing %s", ErrMalformedResult, strings.Join(missing, ", "))
	}

	return result, nil
}
