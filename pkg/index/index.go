package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tubeharvest/platform/pkg/youtube"
	"gorm.io/datatypes"
)

// ErrMissingVideoID means the payload lacked the correlation key every
// row and raw object is keyed on.
var ErrMissingVideoID = errors.New("video payload missing id")

// UnavailableError wraps an index backend failure.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("index: %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// VideoRecord is one row of the metadata index: partition key
// channel_id, sort key (published_at, video_id). PublishedAt is kept
// as an RFC3339 string so lexicographic order matches time order.
type VideoRecord struct {
	ChannelID   string            `gorm:"primaryKey;column:channel_id" json:"channelId"`
	PublishedAt string            `gorm:"primaryKey;column:published_at" json:"publishedAt"`
	VideoID     string            `gorm:"primaryKey;column:video_id" json:"videoId"`
	Title       string            `gorm:"column:title" json:"title"`
	Description string            `gorm:"column:description" json:"description"`
	Statistics  datatypes.JSONMap `gorm:"column:statistics" json:"statistics,omitempty"`
	RunID       string            `gorm:"column:run_id" json:"runId"`
	StoredAt    time.Time         `gorm:"column:stored_at" json:"storedAt"`
}

func (VideoRecord) TableName() string {
	return "video_index"
}

// Index upserts video metadata and serves most-recent-first queries.
// A channel-scoped read is ordered by publish time; the unscoped read
// is an administrative view ordered by storage time.
type Index interface {
	UpsertVideo(ctx context.Context, channelID string, video youtube.Video, runID string, storedAt time.Time) error
	ListRecent(ctx context.Context, channelID string, limit int) ([]VideoRecord, error)
}

// NewVideoRecord builds the row for one discovered video. A missing id
// is rejected before any write happens.
func NewVideoRecord(channelID string, video youtube.Video, runID string, storedAt time.Time) (VideoRecord, error) {
	if video.ID == "" {
		return VideoRecord{}, ErrMissingVideoID
	}

	publishedAt := video.Snippet.PublishedAt
	if publishedAt == "" {
		publishedAt = storedAt.UTC().Format(time.RFC3339)
	}

	rec := VideoRecord{
		ChannelID:   channelID,
		PublishedAt: publishedAt,
		VideoID:     video.ID,
		Title:       video.Snippet.Title,
		Description: video.Snippet.Description,
		RunID:       runID,
		StoredAt:    storedAt.UTC(),
	}
	if len(video.Statistics) > 0 {
		rec.Statistics = datatypes.JSONMap(video.Statistics)
	}
	return rec, nil
}
