// File: knead/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"knead/config"
	"knead/cron"
	"knead/database"
	bookingRepoPkg "knead/database/repository/booking"
	catalogRepoPkg "knead/database/repository/catalog"
	masseurRepoPkg "knead/database/repository/masseur"
	userRepoPkg "knead/database/repository/user"
	"knead/handlers"
	"knead/middleware"
	"knead/realtime"
	"knead/routes"
	"knead/services/approval"
	"knead/services/auth"
	"knead/services/booking"
	"knead/utils"

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

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	masseurRepo := masseurRepoPkg.NewMongoMasseurRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()
	catalogRepo := catalogRepoPkg.NewMongoCatalogRepo()

	// The notification bus tails the store's change feed and relays events
	// to sibling processes through Redis. The bridge consumer feeds this
	// bus from the siblings' broadcasts in turn; redelivered events are
	// harmless because consumers overwrite wholesale.
	bus := realtime.NewBus()
	bridge := realtime.NewRedisBridge(utils.GetEventsClient())
	bus.Bridge = bridge
	busCtx, stopBus := context.WithCancel(context.Background())
	go bus.Run(busCtx, bookingRepo)
	go bridge.Run(busCtx, bus)

	// services.
	authService := &auth.DefaultAuthService{
		Users:    userRepo,
		Sessions: utils.GetAuthCacheClient(),
	}
	lifecycleService := &booking.DefaultLifecycleService{
		Repo:        bookingRepo,
		MasseurRepo: masseurRepo,
		CatalogRepo: catalogRepo,
	}
	approvalService := &approval.DefaultApprovalService{
		Repo:  masseurRepo,
		Users: userRepo,
	}
	sweeper := &booking.CompletionSweeper{
		Repo:  bookingRepo,
		Grace: config.CompletionGrace(),
	}

	// Background maintenance: completion sweep and approval repair.
	cron.InitMaintenanceWorker(sweeper, approvalService)
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient(), utils.GetEventsClient()},
		database.MongoClient,
	)

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Auth:    authService,
		User:    handlers.NewUserHandler(authService),
		Booking: handlers.NewBookingHandler(lifecycleService, bookingRepo, logger),
		Events:  handlers.NewEventsHandler(bus, bookingRepo, realtime.DefaultPolicy()),
		Masseur: handlers.NewMasseurHandler(approvalService, catalogRepo),
		Admin:   handlers.NewAdminHandler(approvalService),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

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

	stopBus()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
