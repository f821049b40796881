package harvest

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tubeharvest/platform/pkg/blobstore"
	"github.com/tubeharvest/platform/pkg/common/logger"
	"github.com/tubeharvest/platform/pkg/index"
	"github.com/tubeharvest/platform/pkg/youtube"
)

// VideoLister is the slice of the YouTube client the runner needs.
type VideoLister interface {
	ListVideos(ctx context.Context, channelID, pageToken string) (*youtube.VideoPage, error)
	ListCommentThreads(ctx context.Context, videoID, pageToken string) (*youtube.CommentPage, error)
}

// Manifest is the final per-run object listing every discovered video
// id, written only on full run completion.
type Manifest struct {
	VideoIDs []string `json:"videoIds"`
}

// Summary reports what a completed run produced.
type Summary struct {
	RunID     string   `json:"run_id"`
	ChannelID string   `json:"channel_id"`
	VideoIDs  []string `json:"video_ids"`
}

// Runner drives one full channel ingestion: outer pagination over the
// channel's video pages, per-video raw archival and index upsert, and
// a nested pagination loop over each video's comment threads. Comments
// are fetched immediately after their video so a crash mid-run leaves
// complete artifacts for every video already indexed; re-running with
// a fresh run id never touches a prior run's keys.
type Runner struct {
	client VideoLister
	store  blobstore.Store
	index  index.Index

	now   func() time.Time
	runID func() string
}

func NewRunner(client VideoLister, store blobstore.Store, idx index.Index) *Runner {
	r := &Runner{
		client: client,
		store:  store,
		index:  idx,
		now:    time.Now,
	}
	r.runID = func() string {
		return r.now().UTC().Format("20060102T150405Z")
	}
	return r
}

// Run executes one ingestion run for the channel. Any unrecoverable
// client or storage failure aborts the run before the manifest is
// written; a video missing its id is the only condition tolerated
// in-line.
func (r *Runner) Run(ctx context.Context, channelID string) (*Summary, error) {
	runID := r.runID()
	basePrefix := fmt.Sprintf("raw/channels/%s/%s", channelID, runID)

	log := logger.Component("harvest").WithFields(logrus.Fields{
		"channel_id": channelID,
		"run_id":     runID,
	})
	log.Info("Channel harvest started")

	videoIDs := []string{}
	pageToken := ""
	pageIndex := 0

	for {
		page, err := r.client.ListVideos(ctx, channelID, pageToken)
		if err != nil {
			return nil, fmt.Errorf("listing videos for channel %s (run %s, page %d): %w", channelID, runID, pageIndex, err)
		}

		playlistItems := page.PlaylistItems
		if playlistItems == nil {
			playlistItems = []youtube.PlaylistItem{}
		}
		playlistKey := fmt.Sprintf("%s/playlist/page_%05d.json", basePrefix, pageIndex)
		if err := r.store.PutJSON(ctx, playlistKey, playlistItems); err != nil {
			return nil, fmt.Errorf("archiving %s: %w", playlistKey, err)
		}

		log.WithFields(logrus.Fields{
			"page":   pageIndex,
			"videos": len(page.Items),
		}).Info("Video page received")

		for _, video := range page.Items {
			if video.ID == "" {
				log.WithField("page", pageIndex).Debug("Skipping video without id")
				continue
			}

			videoKey := fmt.Sprintf("%s/videos/%s.json", basePrefix, video.ID)
			if err := r.store.PutJSON(ctx, videoKey, video); err != nil {
				return nil, fmt.Errorf("archiving %s: %w", videoKey, err)
			}
			videoIDs = append(videoIDs, video.ID)

			if err := r.index.UpsertVideo(ctx, channelID, video, runID, r.now()); err != nil {
				return nil, fmt.Errorf("indexing video %s (run %s): %w", video.ID, runID, err)
			}

			if err := r.fetchComments(ctx, basePrefix, video.ID); err != nil {
				return nil, err
			}
		}

		pageToken = page.NextPageToken
		pageIndex++
		if pageToken == "" {
			break
		}
	}

	manifestKey := basePrefix + "/videos_index.json"
	if err := r.store.PutJSON(ctx, manifestKey, Manifest{VideoIDs: videoIDs}); err != nil {
		return nil, fmt.Errorf("writing manifest %s: %w", manifestKey, err)
	}

	log.WithField("videos", len(videoIDs)).Info("Channel harvest finished")

	return &Summary{RunID: runID, ChannelID: channelID, VideoIDs: videoIDs}, nil
}

func (r *Runner) fetchComments(ctx context.Context, basePrefix, videoID string) error {
	pageToken := ""
	pageIndex := 0

	for {
		page, err := r.client.ListCommentThreads(ctx, videoID, pageToken)
		if err != nil {
			return fmt.Errorf("listing comments for video %s: %w", videoID, err)
		}

		commentsKey := fmt.Sprintf("%s/comments/%s_page_%05d.json", basePrefix, videoID, pageIndex)
		if err := r.store.PutJSON(ctx, commentsKey, page); err != nil {
			return fmt.Errorf("archiving %s: %w", commentsKey, err)
		}

		pageToken = page.NextPageToken
		pageIndex++
		if pageToken == "" {
			return nil
		}
	}
}
