package users

import (
	"fmt"
	"time"
)

// Collection is the document collection holding one document per user.
const Collection = "Users"

const (
	fieldID          = "id"
	fieldEmail       = "email"
	fieldDisplayName = "display_name"
	fieldAvatarKey   = "avatar_key"
	fieldCreatedAt   = "created_at"
	fieldUpdatedAt   = "updated_at"
)

// User is the persisted profile of a signed-up account.
type User struct {
	ID          string
	Email       string
	DisplayName string
	AvatarKey   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Document is the flat key-value representation stored in the document database.
type Document map[string]string

// ToDocument encodes the user. Timestamps are written in UTC with nanosecond precision.
func (u User) ToDocument() Document {
	doc := Document{
		fieldID:          u.ID,
		fieldEmail:       u.Email,
		fieldDisplayName: u.DisplayName,
		fieldCreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldUpdatedAt:   u.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if u.AvatarKey != "" {
		doc[fieldAvatarKey] = u.AvatarKey
	}
	return doc
}

// FromDocument decodes a document produced by ToDocument.
func FromDocument(doc Document) (User, error) {
	id := doc[fieldID]
	if id == "" {
		return User{}, fmt.Errorf("%w: missing %q", ErrDeserialization, fieldID)
	}
	createdAt, err := parseTime(doc, fieldCreatedAt)
	if err != nil {
		return User{}, err
	}
	updatedAt, err := parseTime(doc, fieldUpdatedAt)
	if err != nil {
		return User{}, err
	}
	return User{
		ID:          id,
		Email:       doc[fieldEmail],
		DisplayName: doc[fieldDisplayName],
		AvatarKey:   doc[fieldAvatarKey],
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func parseTime(doc Document, field string) (time.Time, error) {
	raw, ok := doc[field]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: missing %q", ErrDeserialization, field)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ErrDeserialization, field, err)
	}
	return t.UTC(), nil
}
