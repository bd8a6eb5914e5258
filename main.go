// File: bookline/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookline/config"
	"bookline/cron"
	"bookline/database"
	bookingRepoPkg "bookline/database/repository/booking"
	"bookline/handlers"
	"bookline/middleware"
	"bookline/routes"
	"bookline/services/availability"
	"bookline/services/booking"
	"bookline/services/conversation"
	"bookline/services/intelligence"
	"bookline/services/tasks"
	"bookline/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.Default())

	clock := utils.NewClock()

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo(clock)

	// services.
	availabilitySvc, err := availability.NewDefaultService(bookingRepo, clock)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize availability service: %v", err)
	}

	reminderScheduler := tasks.NewAsynqReminderScheduler()
	bookingSvc := booking.NewDefaultService(bookingRepo, availabilitySvc, clock, reminderScheduler)

	extractor, err := conversation.NewDefaultFieldExtractor(clock)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize field extractor: %v", err)
	}

	sessionTTL := time.Duration(config.AppConfig.SessionTTLMin) * time.Minute
	sessionStore := conversation.NewRedisSessionStore(utils.GetSessionCacheClient(), sessionTTL, clock)
	chatSvc := intelligence.NewDefaultChatService(config.AppConfig.GeminiAPIKey)

	conversationSvc := &conversation.DefaultConversationService{
		Store:        sessionStore,
		Extractor:    extractor,
		Availability: availabilitySvc,
		Bookings:     bookingSvc,
		Chat:         chatSvc,
	}

	// handlers.
	availabilityHandler, err := handlers.NewAvailabilityHandler(availabilitySvc, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize availability handler: %v", err)
	}
	handlerBundle := &routes.HandlerBundle{
		Chat:         handlers.NewChatHandler(conversationSvc, logger),
		Booking:      handlers.NewBookingHandler(bookingSvc, logger),
		Availability: availabilityHandler,
		Transcribe:   handlers.NewTranscribeHandler(conversationSvc, logger),
	}

	routes.RegisterChatRoutes(router, handlerBundle)
	routes.RegisterBookingRoutes(router, handlerBundle)
	routes.RegisterAvailabilityRoutes(router, handlerBundle)
	routes.RegisterHealthRoute(router)

	// Background reminder worker and health monitor.
	cron.InitReminderWorker()
	utils.StartHealthMonitor(map[string]*redis.Client{
		"cache":    utils.GetCacheClient(),
		"sessions": utils.GetSessionCacheClient(),
	}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
