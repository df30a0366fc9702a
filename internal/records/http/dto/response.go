package dto

import (
	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
)

// ListRecordsResponse represents a page of sealed records in API responses.
type ListRecordsResponse struct {
	Data []*cryptoDomain.SecureRecord `json:"data"`
}

// MapRecordsToListResponse wraps records in a list response. Data is never null.
func MapRecordsToListResponse(records []*cryptoDomain.SecureRecord) ListRecordsResponse {
	data := make([]*cryptoDomain.SecureRecord, 0, len(records))
	data = append(data, records...)
	return ListRecordsResponse{Data: data}
}
