package models

import (
	"time"

	"gorm.io/gorm"
)

// ExportRecord is a serialized artifact export kept for later download
type ExportRecord struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	WorkspaceID string    `gorm:"index" json:"workspace_id"`
	Kind        string    `gorm:"index" json:"kind"`
	ContentType string    `json:"content_type"`
	Filename    string    `json:"filename"`
	Body        []byte    `json:"-"`
	Size        int       `json:"size"`
	Fallback    bool      `json:"fallback"`
	CreatedAt   time.Time `json:"created_at"`
}

// AutoMigrate runs all migrations
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ExportRecord{},
	)
}
