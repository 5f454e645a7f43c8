package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linsalefe/pos-plataform/internal/calendar"
	"github.com/linsalefe/pos-plataform/internal/config"
	"github.com/linsalefe/pos-plataform/internal/database"
	"github.com/linsalefe/pos-plataform/internal/metrics"
	"github.com/linsalefe/pos-plataform/internal/openai"
	"github.com/linsalefe/pos-plataform/internal/repository"
	"github.com/linsalefe/pos-plataform/internal/service"
	"github.com/linsalefe/pos-plataform/internal/storage"
	"github.com/linsalefe/pos-plataform/internal/tokenizer"
	goopenai "github.com/sashabaranov/go-openai"
)

// app holds the services shared by the server and the admin commands.
type app struct {
	cfg  *config.Config
	pool *pgxpool.Pool

	metrics   *metrics.Metrics
	configs   *service.AIConfigService
	knowledge *service.KnowledgeService
	contacts  *service.ContactService
	replies   *service.ReplyService
	summaries *service.SummaryService
	calendar  *service.CalendarService
	auth      *service.TokenAuthService
}

// newApp connects to the database and builds every service. The OpenAI key
// is required; the calendar and the document archive are optional.
func newApp(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*app, error) {
	if !cfg.HasOpenAI() {
		return nil, fmt.Errorf("LEADBOT_OPENAI_API_KEY is required")
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a, err := buildApp(ctx, cfg, pool, m)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

func buildApp(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, m *metrics.Metrics) (*app, error) {
	ai := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		BaseURL:             cfg.OpenAIBaseURL,
		EmbeddingModel:      goopenai.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		RequestsPerSecond:   cfg.OpenAIRPS,
	})

	chunkRepo := repository.NewKnowledgeChunkRepository(pool)
	configRepo := repository.NewAIConfigRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	summaryRepo := repository.NewSummaryRepository(pool)
	leadRepo := repository.NewLeadRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	var archive service.DocumentArchive
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		slog.Info("document archive ready", slog.String("bucket", cfg.S3Bucket))
		archive = s3Client
	}

	loc, err := time.LoadLocation(cfg.CalendarTimezone)
	if err != nil {
		slog.Warn("unknown calendar timezone, using UTC-3", slog.String("timezone", cfg.CalendarTimezone))
		loc = time.FixedZone("-03", -3*60*60)
	}

	var scheduler service.Scheduler
	if cfg.HasCalendar() {
		gcal, err := calendar.New(ctx, cfg.GoogleCredentialsFile, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to create calendar client: %w", err)
		}
		scheduler = gcal
		slog.Info("calendar integration enabled", slog.String("calendar_id", cfg.CalendarID))
	}
	calendarSvc := service.NewCalendarService(scheduler, cfg.CalendarID, loc)

	generator := service.NewResponseGenerator(ai, service.GeneratorConfig{
		FallbackModel: cfg.FallbackModel,
		Timeout:       cfg.GenerationTimeout,
	}, m)
	retriever := service.NewKnowledgeRetriever(chunkRepo, ai, cfg.EmbeddingTimeout)

	assemblerCfg := service.DefaultAssemblerConfig()
	assemblerCfg.CalendarID = cfg.CalendarID
	assemblerCfg.CalendarTimeout = cfg.CalendarTimeout
	assembler := service.NewContextAssembler(configRepo, leadRepo, messageRepo, retriever, scheduler, assemblerCfg, m)

	var detector service.ScheduleDetector
	if scheduler != nil {
		detector = service.NewSchedulingDetector(ai, calendarSvc, cfg.FallbackModel)
	}

	summarySvc := service.NewSummaryService(messageRepo, generator, summaryRepo)
	chunker := service.NewChunker(tokenizer.New(), cfg.ChunkMaxTokens)

	return &app{
		cfg:       cfg,
		pool:      pool,
		metrics:   m,
		configs:   service.NewAIConfigService(configRepo),
		knowledge: service.NewKnowledgeService(chunkRepo, txRunner, chunker, ai, archive, m),
		contacts:  service.NewContactService(contactRepo, summarySvc),
		replies:   service.NewReplyService(assembler, generator, detector, txRunner, m),
		summaries: summarySvc,
		calendar:  calendarSvc,
		auth:      service.NewTokenAuthService(cfg.APITokens),
	}, nil
}

// Close waits for background reply work and releases the database.
func (a *app) Close() {
	a.replies.Wait()
	a.pool.Close()
}
