// Package main (in worker-subfolder) runs the queue consumer that watermarks uploaded images
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atwam/idmark/internal/fonts"
	"github.com/atwam/idmark/internal/kafka"
	"github.com/atwam/idmark/internal/repository"
	"github.com/atwam/idmark/internal/service"
	"github.com/atwam/idmark/internal/storage"
	"github.com/atwam/idmark/internal/worker"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	zlog.InitConsole()

	// инициализировать конфиг/ считать энвы
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to load envs. Exiting app...")
	}
	level := appConfig.GetString("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	if err := zlog.SetLevel(level); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to init logger")
	}

	settings, err := worker.LoadSettings(appConfig)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Invalid watermark settings")
	}
	loader, err := fonts.NewLoader(fonts.DefaultProvider(), settings.CacheSize)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to init font loader")
	}
	// шрифт проверяем на старте, а не на первой задаче
	face, err := loader.Face(settings.FontFamily, settings.FontStyle, settings.Profile.FontSize)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to load watermark font")
	}
	_ = face.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn := repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
	strg := storage.NewMarkStorage(ctx, appConfig, 10*time.Second)
	if strg == nil {
		zlog.Logger.Warn().Msg("Interrupted before storage was ready")
		return
	}
	repo := repository.NewPostgresMarkRepo(dbConn)
	svc := service.NewMarkService(repo, worker.NoopPublisher{}, strg, "")

	broker := appConfig.GetString("KAFKA_BROKER")
	if !kafka.WaitKafkaReady(ctx, broker, 10*time.Second) {
		return
	}

	queue := make(chan kafkago.Message)
	retryStrategy := retry.Strategy{
		Attempts: 5,
		Delay:    2 * time.Second,
		Backoff:  1.5,
	}
	topic := appConfig.GetString("KAFKA_TOPIC")
	groupID := appConfig.GetString("KAFKA_GROUPID")
	cons := wbfkafka.NewConsumer([]string{broker}, topic, groupID)
	cons.StartConsuming(ctx, queue, retryStrategy)

	// задачи обрабатываются последовательно: одна горутина, свежий font.Face на задачу
	go worker.NewWorkerInstance(strg, svc, queue, cons, loader, settings).StartWorker(ctx)

	<-ctx.Done()

	shutdown(cons, dbConn)
	zlog.Logger.Info().Msg("Exiting worker...")
}

func shutdown(cons *wbfkafka.Consumer, dbConn *dbpg.DB) {
	zlog.Logger.Info().Msg("Interrupt received!!! Starting shutdown sequence...")

	if err := cons.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to close Kafka-reader")
	}
	zlog.Logger.Info().Msg("Kafka-consumer connection closed.")

	if err := dbConn.Master.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to close DB-conn correctly")
		return
	}
	zlog.Logger.Info().Msg("DBconn closed")
}
