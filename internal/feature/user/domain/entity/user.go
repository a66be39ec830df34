// Package entity defines the domain entities for the user feature.
package entity

// Document keys of the fixed user fields.
const (
	FieldID       = "_id"
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// User represents a user record held by the document store.
// Name, Email and Password are required at creation; updates may later set any field,
// so everything that does not fit the fixed string fields lives in Attributes.
type User struct {
	// ID is the store-assigned identifier in its canonical hex form.
	ID string

	Name     string
	Email    string
	Password string

	// Attributes holds fields added by updates, plus fixed fields whose stored value is not a string.
	Attributes map[string]any
}

// NewUser builds a user ready to be inserted. The ID is assigned by the store.
func NewUser(name, email, password string) *User {
	return &User{Name: name, Email: email, Password: password}
}

// FromDocument converts a stored document into a User.
// The identifier key is ignored; the caller supplies the id in canonical form.
func FromDocument(id string, doc map[string]any) User {
	u := User{ID: id}
	for k, v := range doc {
		if k == FieldID {
			continue
		}
		s, isString := v.(string)
		switch {
		case k == FieldName && isString:
			u.Name = s
		case k == FieldEmail && isString:
			u.Email = s
		case k == FieldPassword && isString:
			u.Password = s
		default:
			if u.Attributes == nil {
				u.Attributes = make(map[string]any)
			}
			u.Attributes[k] = v
		}
	}
	return u
}

// Document returns the user's fields as a document without the identifier.
func (u *User) Document() map[string]any {
	doc := make(map[string]any, len(u.Attributes)+3)
	for k, v := range u.Attributes {
		doc[k] = v
	}
	// Attributes win for fixed keys: they carry values that were not strings.
	if _, ok := doc[FieldName]; !ok {
		doc[FieldName] = u.Name
	}
	if _, ok := doc[FieldEmail]; !ok {
		doc[FieldEmail] = u.Email
	}
	if _, ok := doc[FieldPassword]; !ok {
		doc[FieldPassword] = u.Password
	}
	return doc
}
