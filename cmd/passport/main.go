package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"passport/internal/config"
	"passport/internal/consul"
	"passport/internal/directory"
	"passport/internal/events"
	"passport/internal/locale"
	"passport/internal/logger"
	"passport/internal/password"
	"passport/internal/session"
	"passport/internal/users"
)

const serviceName = "passport"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	lgr := logger.New(cfg.LogLevel, cfg.LogFormat)
	lgr.Info("starting passport service", "port", cfg.Port, "env", cfg.Env)

	ctx := context.Background()

	// User store: Postgres when configured, in-memory otherwise.
	var store users.Store
	if cfg.DatabaseURL != "" {
		pg, err := users.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			lgr.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		store = pg
		lgr.Info("connected to postgres")
	} else {
		store = users.NewMemoryStore()
		lgr.Warn("DATABASE_URL not set, using in-memory user store")
	}

	// Session store: Redis when configured, in-memory otherwise.
	var sessionStore session.Store
	if cfg.RedisAddr != "" {
		sessionStore = session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		lgr.Info("connected to redis", "addr", cfg.RedisAddr)
	} else {
		sessionStore = session.NewMemoryStore()
		lgr.Warn("REDIS_ADDR not set, using in-memory session store")
	}
	sessions := session.NewManager(sessionStore, cfg.SessionTTL)

	// Audit event publishing is optional.
	var publisher events.Publisher
	if cfg.KafkaBrokers != "" {
		producer, err := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaAuditTopic, lgr)
		if err != nil {
			lgr.Warn("failed to create audit event producer, continuing without", "error", err)
		} else {
			publisher = producer
		}
	}

	svc := directory.NewService(store, sessions, password.NewHasher(cfg.BcryptCost),
		publisher, lgr, cfg.AdminEmails)
	handler := directory.NewHandler(svc, locale.MustLoad(), lgr,
		cfg.CookieName, cfg.SessionTTL, cfg.IsProduction())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(directory.RequestIDMiddleware())
	r.Use(directory.LoggingMiddleware(lgr))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	handler.RegisterRoutes(r)

	// Consul registration is optional.
	var registry *consul.Registry
	serviceID := fmt.Sprintf("%s-%s", serviceName, cfg.ServiceHost)
	if cfg.ConsulAddr != "" {
		registry, err = consul.NewRegistry(cfg.ConsulAddr, cfg.ConsulToken)
		if err != nil {
			lgr.Error("failed to create consul client", "error", err)
			os.Exit(1)
		}
		// clean up a stale instance left by a previous crash
		_ = registry.Deregister(serviceID)
		err = registry.Register(&consul.Registration{
			ID:            serviceID,
			Name:          serviceName,
			Address:       cfg.ServiceHost,
			Port:          cfg.Port,
			Tags:          []string{"auth", "users"},
			HealthURL:     fmt.Sprintf("http://%s:%d/health", cfg.ServiceHost, cfg.Port),
			CheckInterval: "10s",
			CheckTimeout:  "3s",
		})
		if err != nil {
			lgr.Error("failed to register with consul", "error", err)
			os.Exit(1)
		}
		lgr.Info("registered with consul", "service_id", serviceID)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		lgr.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lgr.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lgr.Info("shutting down")

	if registry != nil {
		if err := registry.Deregister(serviceID); err != nil {
			lgr.Warn("failed to deregister from consul", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		lgr.Error("forced shutdown", "error", err)
	}

	if publisher != nil {
		publisher.Close()
	}
	if err := sessions.Close(); err != nil {
		lgr.Warn("failed to close session manager", "error", err)
	}
	if err := store.Close(); err != nil {
		lgr.Warn("failed to close user store", "error", err)
	}

	lgr.Info("stopped")
}
