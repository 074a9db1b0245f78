package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/amaturano/event-management/config"
	"github.com/amaturano/event-management/database"
	"github.com/amaturano/event-management/internal/event"
	"github.com/amaturano/event-management/routes"
	"github.com/amaturano/event-management/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("❌ DB migration failed: %v", err)
	}

	// Seed categories
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := event.NewRepository(db).EnsureCategories(ctx, event.DefaultCategories); err != nil {
		log.Printf("⚠️ Could not seed categories: %v", err)
	}
	cancel()

	// Init Redis
	if err := utils.InitRedis(cfg); err != nil {
		log.Printf("⚠️ Redis init failed, continuing without it: %v", err)
	}

	// Init Kafka
	publisher := utils.NewEventPublisher(cfg)
	defer publisher.Close()

	mailer := utils.NewMailer(cfg)
	if !mailer.Configured() {
		log.Println("ℹ️ MAIL_USERNAME/MAIL_PASSWORD not set, emails are only logged")
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = cfg.MaxContentLength
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Fatalf("❌ Invalid TRUSTED_PROXIES: %v", err)
	}

	routes.Setup(router, cfg, routes.Deps{
		DB:        db,
		Redis:     utils.Redis,
		Publisher: publisher,
		Mailer:    mailer,
	})

	fmt.Printf("🚀 Server starting on port %s\n", cfg.Port)
	fmt.Printf("📁 Upload directory: %s\n", cfg.UploadDir)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
