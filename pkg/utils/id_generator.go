package utils

import (
	"strings"

	"github.com/google/uuid"
)

const changesetPrefix = "CHANGESET-"

// GenerateID generates a new UUID
func GenerateID() string {
	return uuid.New().String()
}

// GenerateChangesetID generates a unique changeset ID
func GenerateChangesetID() string {
	return changesetPrefix + uuid.New().String()
}

// GenerateCorrelationID generates a request correlation ID
func GenerateCorrelationID() string {
	return uuid.New().String()
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// IsValidChangesetID checks that id is a prefixed UUID
func IsValidChangesetID(id string) bool {
	if !strings.HasPrefix(id, changesetPrefix) {
		return false
	}
	return IsValidUUID(strings.TrimPrefix(id, changesetPrefix))
}
