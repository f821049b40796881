package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tubeharvest/platform/pkg/blobstore"
	"github.com/tubeharvest/platform/pkg/common/config"
	"github.com/tubeharvest/platform/pkg/common/database"
	"github.com/tubeharvest/platform/pkg/common/kafka"
	"github.com/tubeharvest/platform/pkg/common/logger"
	"github.com/tubeharvest/platform/pkg/harvest"
	"github.com/tubeharvest/platform/pkg/index"
	"github.com/tubeharvest/platform/pkg/youtube"
)

func main() {
	logger.Init()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Log.WithError(err).Fatal("invalid configuration")
	}

	redisClient, err := database.NewRedis(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()

	db, err := database.NewPostgres(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer database.ClosePostgres(db)

	idx := index.NewGormIndex(db)
	if err := idx.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate video index")
	}

	store := blobstore.NewRedisStore(redisClient)
	client := youtube.NewFromConfig(cfg)
	runner := harvest.NewRunner(client, store, idx)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := kafka.NewConsumer(cfg, cfg.FetchJobTopic, "")
	defer consumer.Close()

	go func() {
		logger.Log.WithField("topic", cfg.FetchJobTopic).Info("Harvest worker consuming fetch jobs")
		err := consumer.Consume(ctx, func(ctx context.Context, event kafka.Event) error {
			if event.Type != kafka.EventTypeFetchJob {
				logger.Log.WithField("event_type", event.Type).Warn("ignoring unexpected event")
				return nil
			}
			job, ok := kafka.FetchJobFromEvent(event)
			if !ok {
				logger.Log.WithField("event_id", event.ID).Warn("fetch job missing channel_id")
				return nil
			}

			summary, err := runner.Run(ctx, job.ChannelID)
			if err != nil {
				return err
			}
			logger.Log.WithFields(logrus.Fields{
				"channel_id": summary.ChannelID,
				"run_id":     summary.RunID,
				"videos":     len(summary.VideoIDs),
			}).Info("Fetch job completed")
			return nil
		})
		if err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Error("consumer stopped")
		}
	}()

	if cfg.WatchlistPath != "" {
		watchlist, err := harvest.LoadWatchlist(cfg.WatchlistPath)
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to load watchlist")
		}
		go runWatchlist(ctx, cfg, runner, watchlist)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down harvest worker...")
	cancel()
	logger.Log.Info("Harvest worker stopped")
}

// runWatchlist re-harvests configured channels on a fixed interval,
// one channel at a time.
func runWatchlist(ctx context.Context, cfg *config.Config, runner *harvest.Runner, watchlist harvest.Watchlist) {
	ticker := time.NewTicker(cfg.WatchlistRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, channel := range watchlist.Channels {
				if ctx.Err() != nil {
					return
				}
				if _, err := runner.Run(ctx, channel.ID); err != nil {
					logger.Log.WithError(err).WithField("channel_id", channel.ID).Error("scheduled harvest failed")
				}
			}
		case <-ctx.Done():
			return
		}
	}
}
