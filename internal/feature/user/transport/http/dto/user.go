// Package dto defines data transfer objects for the user feature's HTTP transport layer.
package dto

import "user_backend/internal/feature/user/domain/entity"

// CreateUserRequest is the request body for POST /users.
// Only presence is validated: every field must be a non-empty string.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateUserResponse is returned after a user is created.
type CreateUserResponse struct {
	ID string `json:"id"`
}

// UserDocument is a user rendered as the stored document, including its "_id".
type UserDocument map[string]any

// NewUserDocument converts an entity to its response document.
func NewUserDocument(u entity.User) UserDocument {
	doc := UserDocument(u.Document())
	doc[entity.FieldID] = u.ID
	return doc
}

// NewUserDocuments converts a list of entities. The result is never nil.
func NewUserDocuments(users []entity.User) []UserDocument {
	out := make([]UserDocument, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserDocument(u))
	}
	return out
}
