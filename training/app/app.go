package app

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wolox-training/training-service/pkg/circuit_breaker"
	"github.com/wolox-training/training-service/pkg/kafka"
	"github.com/wolox-training/training-service/pkg/logger"
	"github.com/wolox-training/training-service/pkg/postgres"
	"github.com/wolox-training/training-service/training/config"
	"github.com/wolox-training/training-service/training/internal/handler"
	"github.com/wolox-training/training-service/training/internal/openlibrary"
	"github.com/wolox-training/training-service/training/internal/repository"
	"github.com/wolox-training/training-service/training/internal/server"
	"github.com/wolox-training/training-service/training/internal/service"
	"github.com/wolox-training/training-service/training/migrations"
)

type publisher interface {
	service.Publisher
	Close() error
}

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "training")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	cb := circuit_breaker.New(cfg.OpenLibrary.CircuitBreaker)
	enricher := openlibrary.NewClient(
		cfg.OpenLibrary.BaseURL,
		&http.Client{Timeout: cfg.OpenLibrary.Timeout},
		cb, repo, log)

	var events publisher = kafka.NopPublisher{}
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
		events = kafka.NewPublisher(producer, kafka.BookEventsTopic)
	} else {
		log.Warn("kafka disabled, book events are dropped")
	}

	svc := service.NewService(repo, enricher, events, log)
	h := handler.New(svc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		log.Info("http server start ON: ",
			zap.String("addr",
				net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
		return srv.Run()
	})
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(sig)
		select {
		case termSig := <-sig:
			log.Debug("Graceful shutdown", zap.Any("signal", termSig))
		case <-ctx.Done():
		}

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return srv.Stop(closeCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server", zap.Error(err))
	}
	if err := events.Close(); err != nil {
		log.Error("kafka close", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("db close", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
}
