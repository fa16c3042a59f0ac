package main

import (
	"context"
	"log"
	"path/filepath"

	"gorm.io/gorm/logger"

	"codefactory/internal/config"
	"codefactory/internal/database"
	"codefactory/internal/llm/client"
	"codefactory/internal/prompt"
	"codefactory/internal/server"
	"codefactory/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	db, err := database.Init(database.Config{
		Path:     cfg.DatabasePath,
		LogLevel: logger.Warn,
	})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	llmClient, err := client.New(context.Background(), client.Options{
		Provider: cfg.ModelProvider,
		Model:    cfg.ModelName,
		APIKey:   cfg.ModelAPIKey,
	})
	if err != nil {
		log.Fatalf("failed to create generation client: %v", err)
	}

	debugDir := ""
	if cfg.DebugPrompts {
		debugDir = filepath.Join(cfg.RepoDir, "debug")
	}

	dbServices := services.NewDbServices(db)
	gitService := services.NewGitService(cfg)
	promptBuilder := prompt.NewBuilder(debugDir)
	registry := services.NewRepoRegistry()
	authService := services.NewAuthService(cfg)
	orchestrator := services.NewOrchestrator(
		dbServices.Stories, gitService, promptBuilder, llmClient, registry, cfg.BaseBranch)

	srv := server.New(dbServices.Stories, orchestrator, authService)
	log.Printf("listening on %s (provider %s, model %s)", cfg.ServerAddr, cfg.ModelProvider, cfg.ModelName)
	if err := srv.ListenAndServe(cfg.ServerAddr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
