package report

import (
	"context"

	"github.com/tubeharvest/platform/pkg/index"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Service is the read path over the metadata index.
type Service struct {
	index index.Index
}

func NewService(idx index.Index) *Service {
	return &Service{index: idx}
}

// Recent returns the most recently published videos for a channel, or
// the most recently stored videos across all channels when channelID
// is empty. The limit is clamped to [1, 100].
func (s *Service) Recent(ctx context.Context, channelID string, limit int) ([]index.VideoRecord, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return s.index.ListRecent(ctx, channelID, limit)
}
