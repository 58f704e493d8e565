// Package docstore persists the application collections as JSON documents
// and pushes a fresh snapshot of a collection to its subscribers after
// every committed write.
package docstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConfigKey is the key of the single config document.
const ConfigKey = "config"

// Document is one record of a collection, stored in its compressed form.
type Document struct {
	Collection string         `gorm:"primaryKey;size:32"`
	Key        string         `gorm:"primaryKey;size:64"`
	Body       datatypes.JSON `gorm:"not null"`
	UpdatedAt  time.Time
}

func (Document) TableName() string { return "documents" }

// Mint returns a fresh document id.
func Mint() string { return uuid.NewString() }
