package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"quoting-service/internal/config"
	"quoting-service/internal/database/postgres"
	"quoting-service/internal/database/redis"
	"quoting-service/internal/event"
	"quoting-service/internal/handlers"
	"quoting-service/internal/models"
	"quoting-service/internal/repository"
	"quoting-service/internal/services"
	"quoting-service/internal/worker"

	"github.com/gofiber/fiber/v3"
)

func setupLogging() (*os.File, error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
		}
	}()

	logDir := filepath.Join("/quoting", "log", "quoting_service")
	fmt.Println("Log directory:", logDir)
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.New()
	log.Printf("Connecting to PostgreSQL with: host=%s, port=%s, user=%s, dbname=%s",
		cfg.PostgresCfg.Host, cfg.PostgresCfg.Port, cfg.PostgresCfg.Username, cfg.PostgresCfg.DBname)
	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		log.Printf("error connect to database: %s", err)
		go postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
	}

	redisClient, err := redis.NewRedisClient(cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitConn.Close()

	quoteRepo := repository.NewQuoteRepository(db)
	caseRepo := repository.NewUnderwritingCaseRepository(db)
	policyRepo := repository.NewPolicyRepository(db)

	publisher := event.NewQuoteEventPublisher(rabbitConn)
	scoring := services.NewScoringService(models.DefaultQuestionCatalog())
	assessmentCache := services.NewAssessmentCache(redisClient.GetClient())

	quoteService := services.NewQuoteService(quoteRepo, caseRepo, scoring, assessmentCache, publisher)
	underwritingService := services.NewUnderwritingService(caseRepo, quoteRepo, publisher)
	policyService := services.NewPolicyService(policyRepo, quoteRepo, caseRepo, publisher)

	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Quoting service is healthy")
	})

	quoteHandler := handlers.NewQuoteHandler(quoteService, policyService)
	quoteHandler.Register(app)

	underwritingHandler := handlers.NewUnderwritingHandler(underwritingService)
	underwritingHandler.Register(app)

	// Background sweep: expire active policies past their end date
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expirationService := services.NewPolicyExpirationService(policyRepo)
	pool := worker.NewWorkingPool(1, 4)
	var poolWg sync.WaitGroup
	poolWg.Add(1)
	go pool.Start(ctx, &poolWg)

	scheduler := worker.NewJobScheduler("policy-expiration", time.Hour, pool)
	scheduler.AddJob(expirationService.Sweep)
	go scheduler.Start(ctx)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := app.Listen(fmt.Sprintf("0.0.0.0:%s", cfg.Port)); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutting down server...")
	cancel()
	poolWg.Wait()
}
