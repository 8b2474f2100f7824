package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"syllabusgpt/internal/ai"
	"syllabusgpt/internal/app"
	"syllabusgpt/internal/cache"
	"syllabusgpt/internal/config"
	"syllabusgpt/internal/model"
	"syllabusgpt/internal/ocr"
	mysqlClient "syllabusgpt/internal/platform/mysql"
	rabbitmqClient "syllabusgpt/internal/platform/rabbitmq"
	redisClient "syllabusgpt/internal/platform/redis"
	"syllabusgpt/internal/pipeline/retrieve"
	"syllabusgpt/internal/repository"
	"syllabusgpt/internal/store"
	"syllabusgpt/internal/worker"
)

// App owns every long-lived dependency: external clients are constructed
// once here and passed into the pipeline components, never reached for as
// globals.
type App struct {
	Config *config.Config
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	Vectors    store.VectorStore
	Embeddings *ai.Embeddings
	Retriever  *retrieve.Retriever
	OCR        *ocr.Client

	AuthService   *app.AuthService
	IngestService *app.IngestService
	NotesService  *app.NotesService

	IngestPublisher *rabbitmqClient.IngestPublisher
	IngestWorker    *worker.IngestWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.SourceDocument{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.IngestQueue)
	if err != nil {
		return nil, err
	}

	qdrant := store.NewQdrant(store.QdrantConfig{
		URL:        cfg.Qdrant.URL,
		APIKey:     cfg.Qdrant.APIKey,
		Collection: cfg.Qdrant.Collection,
	})
	if err := qdrant.Init(ctx, cfg.Qdrant.VectorDim); err != nil {
		return nil, fmt.Errorf("init qdrant collection failed: %w", err)
	}

	llmClient := ai.NewOpenAICompatibleClient()
	embeddings := ai.NewEmbeddings(llmClient, ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.EmbeddingModel,
	})
	hydeChat := ai.NewChat(llmClient, ai.ChatConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.HydeTemperature,
	})
	notesChat := ai.NewChat(llmClient, ai.ChatConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.NotesTemperature,
	})

	ocrCli := ocr.NewClient(cfg.OCR.BaseURL)
	retriever := retrieve.NewRetriever(embeddings, qdrant)

	userRepo := repository.NewUserRepository(mysqlDB)
	docRepo := repository.NewSourceDocumentRepository(mysqlDB)

	authService := app.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	ingestService := app.NewIngestService(cfg.Knowledge, embeddings, qdrant, ocrCli, docRepo, cfg.OCR.DPI)
	notesCache := cache.NewNotesCache(redisCli, time.Duration(cfg.Redis.NotesTTLSeconds)*time.Second)
	notesService := app.NewNotesService(hydeChat, notesChat, retriever, notesCache)

	ingestPublisher := rabbitmqClient.NewIngestPublisher(mqConn, cfg.RabbitMQ.IngestQueue)
	ingestWorker := worker.NewIngestWorker(mqConn, ingestService, cfg.RabbitMQ.IngestQueue)
	if err := ingestWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start ingest worker failed: %w", err)
	}

	return &App{
		Config:          cfg,
		MySQL:           mysqlDB,
		Redis:           redisCli,
		MQConn:          mqConn,
		Vectors:         qdrant,
		Embeddings:      embeddings,
		Retriever:       retriever,
		OCR:             ocrCli,
		AuthService:     authService,
		IngestService:   ingestService,
		NotesService:    notesService,
		IngestPublisher: ingestPublisher,
		IngestWorker:    ingestWorker,
		StartedAt:       time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.IngestWorker != nil {
		a.IngestWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
