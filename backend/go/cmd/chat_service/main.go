// The chat service runs conversations: it serves chat turns augmented with
// memory context, conversation CRUD, file uploads, audio transcription, and
// a WebSocket for server-pushed replies. Finished exchanges go to Kafka for
// the memory service.
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
	"EchoChat/backend/go/internal/chat_service/api"
	"EchoChat/backend/go/internal/chat_service/publisher"
	"EchoChat/backend/go/internal/chat_service/service"
	"EchoChat/backend/go/internal/chat_service/store"
	"EchoChat/backend/go/internal/config"
	"EchoChat/backend/go/internal/database/milvus"
	"EchoChat/backend/go/internal/database/minio"
	"EchoChat/backend/go/internal/database/mongo"
	"EchoChat/backend/go/internal/llm"
	memoryservice "EchoChat/backend/go/internal/memory/service"
	memorystore "EchoChat/backend/go/internal/memory/store"
	"EchoChat/backend/go/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("cannot load config: %v", err)
	}
	bootstrap.InitLogger(cfg)
	log := logger.New("chat_service", "", "")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := mongo.GetClient(&cfg.Databases.MongoDB)
	if err != nil {
		log.Fatal("cannot connect to MongoDB: " + err.Error())
	}
	convStore := store.NewMongoStore(mongoClient.Database(cfg.Databases.MongoDB.Database))

	model, err := llm.NewClient(&cfg.LLM)
	if err != nil {
		log.Fatal("cannot build LLM client: " + err.Error())
	}

	// Retrieval runs in-process against the shared Milvus collection; writes
	// go through Kafka so the memory service owns the write path.
	retriever, milvusClient := buildRetriever(ctx, cfg, log)
	if milvusClient != nil {
		defer milvusClient.Close()
	}

	exchangeTopic := ""
	if len(cfg.Databases.Kafka.Topics) > 0 {
		exchangeTopic = cfg.Databases.Kafka.Topics[0]
	}
	exchangePublisher, err := publisher.NewExchangePublisher(
		cfg.Databases.Kafka.Brokers, exchangeTopic, log)
	if err != nil {
		log.Fatal("cannot build exchange publisher: " + err.Error())
	}
	defer exchangePublisher.Close()

	var processor *store.ContentProcessor
	if minioClient, err := minio.GetClient(&cfg.Databases.MinIO); err != nil {
		log.Warn("object store unavailable, uploads disabled: " + err.Error())
	} else {
		processor = store.NewContentProcessor(minioClient, cfg.Databases.MinIO.Bucket, log)
	}

	var transcriber llm.Transcriber
	if cfg.LLM.OpenAI.APIKey != "" {
		transcriber = llm.NewWhisperTranscriber(cfg.LLM.OpenAI.APIKey)
	}

	connections := service.NewConnectionManager()
	chatService := service.NewChatService(
		convStore, model, retriever, exchangePublisher, connections, log,
		cfg.Memory.ContextLimit,
	)

	handler := api.NewHandler(chatService, processor, transcriber, connections, log)
	router := api.NewRouter(handler, cfg, bootstrap.BuildLimiter(&cfg.Middleware.RateLimiter))

	server := &http.Server{Addr: cfg.Server.ChatAddress, Handler: router}
	go func() {
		log.Info("chat service listening on " + cfg.Server.ChatAddress)
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

// buildRetriever wires a read-only view of the memory collection. A failure
// here degrades chat to memory-less operation instead of aborting startup.
func buildRetriever(ctx context.Context, cfg *config.AppConfig, log *logger.Logger) (service.Retriever, *milvus.MilvusClient) {
	milvusClient, err := milvus.GetClient(ctx, &cfg.Databases.Milvus)
	if err != nil {
		log.Warn("Milvus unavailable, chat runs without memory context: " + err.Error())
		return nil, nil
	}
	if err := milvusClient.EnsureCollection(ctx); err != nil {
		log.Warn("memory collection unavailable, chat runs without memory context: " + err.Error())
		return nil, milvusClient
	}

	embedder, err := bootstrap.BuildEmbedder(cfg)
	if err != nil {
		log.Warn("embedding model unavailable, chat runs without memory context: " + err.Error())
		return nil, milvusClient
	}

	return memoryservice.New(memorystore.NewMilvusStore(milvusClient), embedder, log), milvusClient
}
