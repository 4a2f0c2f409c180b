package bootstrap

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"ai-tripplanner-be/internal/config"
	"ai-tripplanner-be/internal/controller"
	"ai-tripplanner-be/internal/handler"
	"ai-tripplanner-be/internal/pkg/logger"
	"ai-tripplanner-be/internal/pkg/mailer"
	"ai-tripplanner-be/internal/repository/implementation"
	"ai-tripplanner-be/internal/repository/memory"
	"ai-tripplanner-be/internal/repository/unitofwork"
	"ai-tripplanner-be/internal/service"
	"ai-tripplanner-be/internal/websocket"
	"ai-tripplanner-be/pkg/embedding"
	"ai-tripplanner-be/pkg/llm"
	"ai-tripplanner-be/pkg/llm/factory"
	pktNats "ai-tripplanner-be/pkg/nats"
	"ai-tripplanner-be/pkg/plancache"
	"ai-tripplanner-be/pkg/quota"
	"ai-tripplanner-be/pkg/replan"
	"ai-tripplanner-be/pkg/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	PlannerController controller.IPlannerController
	ReplanController  controller.IReplanController
	PlanController    controller.IPlanController
	GuideController   controller.IGuideController

	// Background services, exposed for main.go to run
	ConsumerService service.IConsumerService

	// WebSockets & notifications
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using embedding provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using embedding provider: GEMINI")
	}

	apiKey := cfg.Keys.GoogleGemini
	if cfg.Ai.LLMProvider == "openai" {
		apiKey = cfg.Keys.OpenAI
	}
	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  cfg.Ai.OllamaBaseURL,
		ApiKey:   apiKey,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM provider: %v", err)
	}
	// Every model call across the pipeline lands one audit line here.
	llmProvider = llm.NewAuditedProvider(llmProvider, llm.NewFileAuditLogger(filepath.Join(".", "logs", "llm.log")))
	log.Printf("[INFO] Using LLM provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS subscriber: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil // Cache and ws fanout degrade gracefully
	}

	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Planner pipeline components
	outlineCache := plancache.NewRedisOutlineCache(rdb, sysLogger)
	quotaGuard := quota.NewGuard(sysLogger,
		quota.NewPeriodQuotaSource(uowFactory),
		quota.NewTicketSource(uowFactory),
	)
	retriever := retrieval.NewRetriever(embeddingProvider, retrieval.DefaultConfig(), sysLogger)
	stateRepo := memory.NewGenerationStateRepository()

	publisherService := service.NewPublisherService(cfg.Keys.GuideEmbedTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.GuideEmbedTopic,
		uowFactory,
		embeddingProvider,
		outlineCache,
		sysLogger,
	)

	plannerService := service.NewPlannerService(
		uowFactory,
		llmProvider,
		retriever,
		outlineCache,
		quotaGuard,
		stateRepo,
		natsPub,
		cfg,
		sysLogger,
	)

	// 6. Replan engine
	replanBudget := time.Duration(cfg.Planner.ReplanBudgetMs) * time.Millisecond
	replanEngine := replan.NewEngine(
		[]replan.CandidateSource{
			replan.NewCatalogSource(),
			replan.NewLLMSource(llmProvider, replanBudget*2/3),
		},
		replan.NewScorer(),
		replanBudget,
		sysLogger,
	)
	replanService := service.NewReplanService(replanEngine, uowFactory, natsPub, sysLogger)

	planService := service.NewPlanService(uowFactory)
	guideService := service.NewGuideService(uowFactory, publisherService, retriever, sysLogger)

	// 7. Notification system
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, uowFactory, natsSub, wsHub, emailService, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}
	notifHandler := handler.NewNotificationHandler(notifService, wsHub, wsLogger)

	return &Container{
		PlannerController: controller.NewPlannerController(plannerService),
		ReplanController:  controller.NewReplanController(replanService),
		PlanController:    controller.NewPlanController(planService),
		GuideController:   controller.NewGuideController(guideService),

		ConsumerService: consumerService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}
