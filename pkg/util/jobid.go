package util

import (
	"crypto/md5"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// HashUUID derives a stable uuid from the JSON encoding of value, so repeated
// runs over the same inputs and options log under the same id.
func HashUUID(value any) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("hash uuid: %w", err)
	}
	hash := md5.Sum(raw)
	id, err := uuid.FromBytes(hash[:])
	if err != nil {
		return "", fmt.Errorf("hash uuid: %w", err)
	}
	return id.String(), nil
}

// JobID is HashUUID with a random fallback for values that cannot be encoded.
func JobID(value any) string {
	if id, err := HashUUID(value); err == nil {
		return id
	}
	return uuid.NewString()
}
