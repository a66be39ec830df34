package entity

import "go.mongodb.org/mongo-driver/bson/primitive"

// ParseID converts an external identifier into an ObjectID.
// Only the canonical form (24 lowercase hex characters) is accepted, so a parsed id
// always renders back to the same string.
func ParseID(s string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil || oid.Hex() != s {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// IsValidID reports whether s is a canonical identifier.
func IsValidID(s string) bool {
	_, ok := ParseID(s)
	return ok
}

// NewID generates a fresh identifier for stores that do not assign one themselves.
func NewID() string {
	return primitive.NewObjectID().Hex()
}
