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

	"ragworks.io/askbridge/internal/api"
	"ragworks.io/askbridge/internal/config"
	"ragworks.io/askbridge/internal/core"
	"ragworks.io/askbridge/internal/provider/gemini"
	"ragworks.io/askbridge/internal/provider/openai"
	"ragworks.io/askbridge/internal/provider/pinecone"
	"ragworks.io/askbridge/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	ctx := context.Background()

	// Select the embedding/chat provider
	var embedder core.Embedder
	var chat core.ChatModel
	switch config.AppConfig.LLMProvider {
	case "gemini":
		client, err := gemini.NewClient(ctx, config.AppConfig.GeminiAPIKey, config.AppConfig.ChatModel)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer client.Close()
		embedder, chat = client, client
	default:
		client := openai.NewClient(config.AppConfig.OpenAIAPIKey, config.AppConfig.ChatModel, config.AppConfig.EmbeddingModel)
		embedder, chat = client, client
	}

	// Select the vector store backend
	var vectorStore core.VectorStore
	switch config.AppConfig.VectorBackend {
	case "sqlite":
		dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer dbStore.Close()
		vectorStore = dbStore
	default:
		vectorStore = pinecone.NewClient(
			config.AppConfig.PineconeAPIKey,
			config.AppConfig.PineconeIndex,
			config.AppConfig.PineconeCloud,
			config.AppConfig.PineconeRegion,
		)
	}

	// Index creation is deferred to the first request; a failure here at
	// boot would otherwise prevent the health endpoint from coming up.
	providers := core.NewProviders(embedder, chat, vectorStore)

	ingestService := core.NewIngestService(providers)
	answerService := core.NewAnswerService(providers)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(ingestService, answerService)
	router := api.NewRouter(apiHandler, config.AppConfig.FrontendOrigin)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections time to finish before forcing the exit.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
