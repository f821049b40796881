package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/tubeharvest/platform/pkg/common/config"
	"github.com/tubeharvest/platform/pkg/common/database"
	"github.com/tubeharvest/platform/pkg/common/kafka"
	"github.com/tubeharvest/platform/pkg/common/logger"
	"github.com/tubeharvest/platform/pkg/httpapi"
	"github.com/tubeharvest/platform/pkg/index"
	"github.com/tubeharvest/platform/pkg/report"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.NewPostgres(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer database.ClosePostgres(db)

	idx := index.NewGormIndex(db)
	if err := idx.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate video index")
	}

	fetchProducer := kafka.NewProducer(cfg, cfg.FetchJobTopic)
	defer fetchProducer.Close()

	processProducer := kafka.NewProducer(cfg, cfg.ProcessJobTopic)
	defer processProducer.Close()

	reports := report.NewService(idx)
	handler := httpapi.NewHandler(fetchProducer, processProducer, reports, cfg.MaxRequestBody)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	handler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("API Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down API Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("API Service stopped")
}
