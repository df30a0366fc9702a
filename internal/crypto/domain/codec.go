package domain

import (
	"encoding/hex"
	"fmt"
)

// DecodeHex decodes a hexadecimal field and enforces its exact byte length.
//
// Upper and lower case digits are both accepted. An expectedLength of zero or less disables
// the length check. The field name is carried into the returned error so callers can report
// which part of a record was rejected.
//
// Returns:
//   - ErrMalformedEncoding if text has odd length or contains non-hex characters
//   - *LengthMismatchError if the decoded length differs from expectedLength
func DecodeHex(field, text string, expectedLength int) ([]byte, error) {
	b, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEncoding, field, err)
	}

	if expectedLength > 0 && len(b) != expectedLength {
		Zero(b)
		return nil, &LengthMismatchError{
			Field:    field,
			Expected: expectedLength,
			Actual:   len(b),
		}
	}

	return b, nil
}

// EncodeHex returns the lowercase hexadecimal encoding of b with no separators.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}
