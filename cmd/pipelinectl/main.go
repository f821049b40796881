package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tubeharvest/platform/pkg/blobstore"
	"github.com/tubeharvest/platform/pkg/common/config"
	"github.com/tubeharvest/platform/pkg/common/database"
	"github.com/tubeharvest/platform/pkg/common/kafka"
	"github.com/tubeharvest/platform/pkg/common/logger"
	"github.com/tubeharvest/platform/pkg/harvest"
	"github.com/tubeharvest/platform/pkg/index"
	"github.com/tubeharvest/platform/pkg/report"
	"github.com/tubeharvest/platform/pkg/youtube"
)

func main() {
	logger.Init()

	root := &cobra.Command{
		Use:           "pipelinectl",
		Short:         "Operate the video metadata harvesting pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newFetchCmd(), newProcessCmd(), newReportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newFetchCmd() *cobra.Command {
	var channelID string
	var force bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Harvest a channel's videos and comments synchronously",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}
			_ = force // reserved for cache-bypass behaviour

			redisClient, err := database.NewRedis(cfg)
			if err != nil {
				return err
			}
			defer redisClient.Close()

			db, err := database.NewPostgres(cfg)
			if err != nil {
				return err
			}
			defer database.ClosePostgres(db)

			idx := index.NewGormIndex(db)
			if err := idx.AutoMigrate(); err != nil {
				return err
			}

			runner := harvest.NewRunner(
				youtube.NewFromConfig(cfg),
				blobstore.NewRedisStore(redisClient),
				idx,
			)

			summary, err := runner.Run(context.Background(), channelID)
			if err != nil {
				return err
			}

			fmt.Printf("Harvested %d videos from %s (run %s)\n",
				len(summary.VideoIDs), summary.ChannelID, summary.RunID)
			return nil
		},
	}

	cmd.Flags().StringVar(&channelID, "channel-id", "", "channel to harvest")
	cmd.Flags().BoolVar(&force, "force", false, "harvest even if recently fetched")
	cmd.MarkFlagRequired("channel-id")

	return cmd
}

func newProcessCmd() *cobra.Command {
	var videoID, segment string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Enqueue a video for downstream analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			producer := kafka.NewProducer(cfg, cfg.ProcessJobTopic)
			defer producer.Close()

			job := kafka.ProcessJob{VideoID: videoID, Segment: segment}
			if err := producer.PublishEvent(cmd.Context(), kafka.EventTypeProcessJob, "cli", job.Payload()); err != nil {
				return err
			}

			fmt.Printf("Queued process job for video %s\n", videoID)
			return nil
		},
	}

	cmd.Flags().StringVar(&videoID, "video-id", "", "video to analyze")
	cmd.Flags().StringVar(&segment, "segment", "", "segment to analyze (start-end)")
	cmd.MarkFlagRequired("video-id")

	return cmd
}

func newReportCmd() *cobra.Command {
	var channelID string
	var limit int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the most recent indexed videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			db, err := database.NewPostgres(cfg)
			if err != nil {
				return err
			}
			defer database.ClosePostgres(db)

			reports := report.NewService(index.NewGormIndex(db))
			videos, err := reports.Recent(cmd.Context(), channelID, limit)
			if err != nil {
				return err
			}

			for i, video := range videos {
				title := video.Title
				if title == "" {
					title = "(untitled)"
				}
				fmt.Printf("[%d] %s (videoId=%s, channelId=%s, publishedAt=%s)\n",
					i+1, title, video.VideoID, video.ChannelID, video.PublishedAt)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&channelID, "channel-id", "", "filter to one channel")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum rows to print")

	return cmd
}
