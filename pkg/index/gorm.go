package index

import (
	"context"
	"time"

	"github.com/tubeharvest/platform/pkg/youtube"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormIndex is the Postgres-backed metadata index.
type GormIndex struct {
	db *gorm.DB
}

func NewGormIndex(db *gorm.DB) *GormIndex {
	return &GormIndex{db: db}
}

func (i *GormIndex) AutoMigrate() error {
	return i.db.AutoMigrate(&VideoRecord{})
}

// UpsertVideo fully replaces the row sharing the same composite key.
func (i *GormIndex) UpsertVideo(ctx context.Context, channelID string, video youtube.Video, runID string, storedAt time.Time) error {
	rec, err := NewVideoRecord(channelID, video, runID, storedAt)
	if err != nil {
		return err
	}

	result := i.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "channel_id"},
			{Name: "published_at"},
			{Name: "video_id"},
		},
		UpdateAll: true,
	}).Create(&rec)
	if result.Error != nil {
		return &UnavailableError{Op: "upsert video " + rec.VideoID, Err: result.Error}
	}
	return nil
}

func (i *GormIndex) ListRecent(ctx context.Context, channelID string, limit int) ([]VideoRecord, error) {
	var records []VideoRecord

	query := i.db.WithContext(ctx).Model(&VideoRecord{})
	if channelID != "" {
		query = query.
			Where("channel_id = ?", channelID).
			Order("published_at DESC").
			Order("video_id DESC")
	} else {
		// Administrative cross-channel view: storage time, not publish
		// time, drives the order here.
		query = query.Order("stored_at DESC")
	}

	if err := query.Limit(limit).Find(&records).Error; err != nil {
		return nil, &UnavailableError{Op: "list recent videos", Err: err}
	}
	return records, nil
}
