// Package dto provides data transfer objects for record HTTP requests and responses.
package dto

import (
	"encoding/json"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/sealedrecords/internal/validation"
)

// SealRequest carries a payload to encrypt. It is used by both the stateless encrypt
// endpoint and record creation. An empty ID lets the server generate one.
type SealRequest struct {
	ID      string          `json:"id"`
	PartyID string          `json:"partyId"`
	Payload json.RawMessage `json:"payload"`
}

// Validate checks if the seal request is valid.
func (r *SealRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ID, customValidation.Identifier),
		validation.Field(&r.PartyID,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Identifier,
		),
		validation.Field(&r.Payload, validation.Required),
	)
}
