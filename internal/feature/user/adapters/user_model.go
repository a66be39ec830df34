package adapters

import (
	"encoding/json"
	"fmt"
	"time"

	"user_backend/internal/feature/user/domain/entity"
)

// UserModel is the GORM model for the users table.
// Each row holds one schema-flexible user document serialized as JSON.
type UserModel struct {
	ID        string    `gorm:"primaryKey;size:24"`
	Document  string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index;not null"`
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts the GORM model to a domain entity.
func (m *UserModel) ToEntity() (entity.User, error) {
	doc, err := m.decode()
	if err != nil {
		return entity.User{}, err
	}
	return entity.FromDocument(m.ID, doc), nil
}

// decode parses the stored JSON document.
func (m *UserModel) decode() (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(m.Document), &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", m.ID, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// encodeDocument serializes a document for storage.
func encodeDocument(doc map[string]any) (string, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(b), nil
}
