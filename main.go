package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"prep-service/internal/cache"
	"prep-service/internal/composer"
	"prep-service/internal/config"
	"prep-service/internal/db"
	"prep-service/internal/event"
	"prep-service/internal/handlers"
	"prep-service/internal/repository"
	"prep-service/internal/service"
	"prep-service/pkg/discovery"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.Load()
	db.InitMongo(cfg.MongoDB.URI)

	// RabbitMQ event publisher
	var publisher *event.EventPublisher
	if cfg.RabbitMQ.URI != "" {
		var err error
		publisher, err = event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, audit events will not be published")
	}

	// Consul registration
	if cfg.Consul.ConsulAddress != "" {
		registry, err := discovery.NewServiceRegistry(cfg)
		if err != nil {
			log.Fatalf("Failed to create Consul client: %v", err)
		}
		if err := registry.Register(); err != nil {
			log.Fatalf("Failed to register with Consul: %v", err)
		}
		defer registry.Deregister()
	} else {
		log.Println("Consul not configured, skipping service registration")
	}

	database := db.Client.Database(cfg.MongoDB.Database)

	// Repositories
	questionRepo := repository.NewQuestionRepository(database)
	versionRepo := repository.NewVersionRepository(database)
	subjectRepo := repository.NewSubjectRepository(database)
	ruleRepo := repository.NewRuleRepository(database)
	examRepo := repository.NewExamRepository(database)
	quotaRepo := repository.NewQuotaRepository(database)
	adminRepo := repository.NewAdminRepository(database)

	// Services
	resolver := service.NewSubjectResolver(subjectRepo)
	filter := service.NewQuestionFilter(questionRepo, resolver)
	rulesEngine := service.NewRulesEngine(ruleRepo)
	lifecycle := service.NewQuestionLifecycle(questionRepo, versionRepo, publisher)
	ledger := service.NewTierQuotaLedger(quotaRepo)
	examComposer := composer.NewComposer(questionRepo, examRepo, resolver, rulesEngine, ledger, publisher)

	// Admin allowlist cached in Redis, backed by the admins collection
	redisClient := cache.NewRedisClient(cfg.Redis)
	allowlist := cache.NewAdminAllowlist(redisClient, cfg.Admin.AllowlistTTL, adminRepo.ListEmails)

	// Handlers
	questionHandler := handlers.NewQuestionHandler(questionRepo, versionRepo, filter, lifecycle)
	examHandler := handlers.NewExamHandler(examComposer, examRepo, ledger)
	ruleHandler := handlers.NewRuleHandler(ruleRepo, rulesEngine)
	subjectHandler := handlers.NewSubjectHandler(subjectRepo, resolver)
	quotaHandler := handlers.NewQuotaHandler(ledger)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-Id", "X-User-Email", "X-User-Tier"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": cfg.Server.ServiceName})
	})

	// Public routes - catalogue browsing needs no identity
	publicBrowse := r.Group("/public/prep")
	{
		publicBrowse.GET("/tracks", subjectHandler.ListTracks)
		publicBrowse.GET("/tracks/:id/subjects", subjectHandler.ListTrackSubjects)
		publicBrowse.GET("/subjects/:id/tracks", subjectHandler.TracksForSubject)
		publicBrowse.GET("/questions", questionHandler.FilterQuestions)
		publicBrowse.GET("/questions/:id", questionHandler.GetQuestion)
	}

	// Protected routes - gateway injects identity headers
	protected := r.Group("/protected/prep")
	protected.Use(handlers.RequireUser())
	{
		protected.POST("/exams", examHandler.ComposeExam)
		protected.GET("/exams", examHandler.ListMyExams)
		protected.GET("/exams/:id", examHandler.GetExam)
		protected.DELETE("/exams/:id", examHandler.ArchiveExam)
		protected.POST("/exams/:id/download", examHandler.RecordDownload)
		protected.DELETE("/exams/:id/download", examHandler.RemoveDownload)
		protected.GET("/quota", quotaHandler.CheckQuota)
		protected.POST("/rules/resolve", ruleHandler.ResolveRules)
		protected.POST("/rules/evaluate", ruleHandler.EvaluateResults)
	}

	// Admin routes - question authoring and rule management
	admin := r.Group("/admin/prep")
	admin.Use(handlers.RequireUser(), handlers.RequireAdmin(allowlist))
	{
		admin.POST("/questions", questionHandler.CreateQuestion)
		admin.PUT("/questions/:id", questionHandler.UpdateQuestion)
		admin.POST("/questions/:id/transition", questionHandler.Transition)
		admin.POST("/questions/transitions", questionHandler.BulkTransition)
		admin.GET("/questions/:id/transitions", questionHandler.ValidTransitions)
		admin.GET("/questions/:id/versions", questionHandler.ListVersions)
		admin.POST("/questions/:id/versions/:version/restore", questionHandler.RestoreVersion)
		admin.DELETE("/subjects/:id/questions", questionHandler.DeleteBySubject)

		admin.POST("/rules", func(c *gin.Context) {
			ruleHandler.CreateRule(c)
			if publisher != nil {
				publisher.Publish("rule.created", gin.H{"actor": c.GetHeader("X-User-Id"), "timestamp": time.Now()})
			}
		})
		admin.GET("/rules/:id", ruleHandler.GetRule)
		admin.PUT("/rules/:id", func(c *gin.Context) {
			ruleHandler.UpdateRule(c)
			if publisher != nil {
				publisher.Publish("rule.updated", gin.H{"id": c.Param("id"), "actor": c.GetHeader("X-User-Id"), "timestamp": time.Now()})
			}
		})
		admin.DELETE("/rules/:id", func(c *gin.Context) {
			ruleHandler.DeactivateRule(c)
			if publisher != nil {
				publisher.Publish("rule.deactivated", gin.H{"id": c.Param("id"), "actor": c.GetHeader("X-User-Id"), "timestamp": time.Now()})
			}
		})
		admin.POST("/rules/validate", ruleHandler.ValidateConfiguration)

		admin.POST("/allowlist/refresh", func(c *gin.Context) {
			allowlist.Invalidate(context.Background())
			c.JSON(200, gin.H{"refreshed": true})
		})
	}

	r.Run(cfg.Server.Host + ":" + cfg.Server.Port)
}
