package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edusense-backend/internal/api"
	"edusense-backend/internal/config"
	"edusense-backend/internal/core"
	"edusense-backend/internal/logger"
	"edusense-backend/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}
	defer log.Sync()

	ctx := context.Background()

	var st store.Store
	if cfg.MongoURI != "" {
		mongoStore, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.DatabaseName)
		if err != nil {
			log.Fatal("failed to initialize mongodb store", "error", err)
		}
		st = mongoStore
		log.Info("connected to mongodb", "database", cfg.DatabaseName)
	} else {
		st = store.NewMemoryStore()
		log.Warn("MONGO_URI not set, using in-memory store; data will not survive restarts")
	}
	defer func() {
		if err := st.Close(ctx); err != nil {
			log.Error("failed to close store", "error", err)
		}
	}()

	var generator core.Generator
	if cfg.GeminiAPIKey != "" {
		llmService, err := core.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Warn("failed to initialize gemini client, chat will use fallback replies", "error", err)
		} else {
			generator = llmService
			defer llmService.Close()
		}
	} else {
		log.Info("GEMINI_API_KEY not set, chat will use fallback replies")
	}

	chatService := core.NewChatService(st, generator, log)
	apiHandler := api.NewAPIHandler(st, chatService, cfg, log)
	router := api.NewRouter(apiHandler, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("could not listen", "addr", srv.Addr, "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", "error", err)
	}
	log.Info("server exited gracefully")
}
