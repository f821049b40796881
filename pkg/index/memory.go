package index

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tubeharvest/platform/pkg/youtube"
)

type recordKey struct {
	channelID   string
	publishedAt string
	videoID     string
}

// MemoryIndex is an in-process Index with the same ordering contract
// as the Postgres backend.
type MemoryIndex struct {
	mu      sync.Mutex
	records map[recordKey]VideoRecord
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{records: make(map[recordKey]VideoRecord)}
}

func (i *MemoryIndex) UpsertVideo(ctx context.Context, channelID string, video youtube.Video, runID string, storedAt time.Time) error {
	rec, err := NewVideoRecord(channelID, video, runID, storedAt)
	if err != nil {
		return err
	}

	i.mu.Lock()
	i.records[recordKey{rec.ChannelID, rec.PublishedAt, rec.VideoID}] = rec
	i.mu.Unlock()
	return nil
}

func (i *MemoryIndex) ListRecent(ctx context.Context, channelID string, limit int) ([]VideoRecord, error) {
	i.mu.Lock()
	all := make([]VideoRecord, 0, len(i.records))
	for key, rec := range i.records {
		if channelID != "" && key.channelID != channelID {
			continue
		}
		all = append(all, rec)
	}
	i.mu.Unlock()

	if channelID != "" {
		sort.Slice(all, func(a, b int) bool {
			if all[a].PublishedAt != all[b].PublishedAt {
				return all[a].PublishedAt > all[b].PublishedAt
			}
			return all[a].VideoID > all[b].VideoID
		})
	} else {
		sort.Slice(all, func(a, b int) bool {
			return all[a].StoredAt.After(all[b].StoredAt)
		})
	}

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
