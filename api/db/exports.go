package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/local/studyai/api/models"
	"gorm.io/gorm"
)

var ErrExportNotFound = errors.New("export not found")

// SaveExport stores a rendered export and returns the record with its new id
func SaveExport(ctx context.Context, db *gorm.DB, rec models.ExportRecord) (models.ExportRecord, error) {
	rec.ID = uuid.New().String()
	rec.Size = len(rec.Body)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(&rec).Error; err != nil {
		return models.ExportRecord{}, fmt.Errorf("failed to save export: %w", err)
	}
	return rec, nil
}

func GetExport(ctx context.Context, db *gorm.DB, id string) (models.ExportRecord, error) {
	var rec models.ExportRecord
	err := db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rec, ErrExportNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("failed to load export: %w", err)
	}
	return rec, nil
}

// ListExports returns a workspace's exports, newest first, without bodies
func ListExports(ctx context.Context, db *gorm.DB, workspaceID string) ([]models.ExportRecord, error) {
	var recs []models.ExportRecord
	err := db.WithContext(ctx).
		Omit("body").
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return recs, nil
}
