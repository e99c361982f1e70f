// Package identifier validates the opaque record identifiers used in URLs.
package identifier

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Valid reports whether id is a 24 hex digit object id.
func Valid(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)

	return err == nil
}

// New returns a fresh identifier. Every storage backend uses the same format.
func New() string {
	return primitive.NewObjectID().Hex()
}
