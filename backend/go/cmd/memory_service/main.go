// The memory service owns semantic memories: it consumes chat exchanges from
// Kafka, extracts and embeds facts into Milvus, and serves memory CRUD and
// similarity search over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"EchoChat/backend/go/internal/bootstrap"
	"EchoChat/backend/go/internal/config"
	"EchoChat/backend/go/internal/database/kafka"
	"EchoChat/backend/go/internal/database/milvus"
	"EchoChat/backend/go/internal/memory/api"
	"EchoChat/backend/go/internal/memory/consumer"
	"EchoChat/backend/go/internal/memory/service"
	"EchoChat/backend/go/internal/memory/store"
	"EchoChat/backend/go/pkg/logger"
)

const autoFlushInterval = 30 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("cannot load config: %v", err)
	}
	bootstrap.InitLogger(cfg)
	log := logger.New("memory_service", "", "")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	milvusClient, err := milvus.GetClient(ctx, &cfg.Databases.Milvus)
	if err != nil {
		log.Fatal("cannot connect to Milvus: " + err.Error())
	}
	defer milvusClient.Close()
	if err := milvusClient.EnsureCollection(ctx); err != nil {
		log.Fatal("cannot prepare memory collection: " + err.Error())
	}
	milvusClient.StartAutoFlush(autoFlushInterval)

	embedder, err := bootstrap.BuildEmbedder(cfg)
	if err != nil {
		log.Fatal("cannot build embedding model: " + err.Error())
	}

	memoryService := service.New(store.NewMilvusStore(milvusClient), embedder, log)

	kafkaClient, err := kafka.GetClient(&cfg.Databases.Kafka)
	if err != nil {
		log.Fatal("cannot connect to Kafka: " + err.Error())
	}
	defer kafkaClient.Close()

	exchangeConsumer := consumer.NewKafkaConsumer(
		kafkaClient, memoryService, log,
		time.Duration(cfg.Memory.WriteTimeout)*time.Second,
	)
	exchangeConsumer.Start(ctx)

	handler := api.NewHandler(memoryService, log)
	router := api.NewRouter(handler, cfg, bootstrap.BuildLimiter(&cfg.Middleware.RateLimiter))

	server := &http.Server{Addr: cfg.Server.MemoryAddress, Handler: router}
	go func() {
		log.Info("memory service listening on " + cfg.Server.MemoryAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed: " + err.Error())
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown failed: " + err.Error())
	}
}
