package routes

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/amaturano/event-management/config"
	"github.com/amaturano/event-management/internal/auditlog"
	"github.com/amaturano/event-management/internal/auth"
	"github.com/amaturano/event-management/internal/comment"
	"github.com/amaturano/event-management/internal/event"
	"github.com/amaturano/event-management/internal/home"
	"github.com/amaturano/event-management/internal/messaging"
	"github.com/amaturano/event-management/internal/reports"
	"github.com/amaturano/event-management/internal/userprofile"
	"github.com/amaturano/event-management/internal/web"
	"github.com/amaturano/event-management/middleware"
	"github.com/amaturano/event-management/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the connections opened by main.
type Deps struct {
	DB *gorm.DB
	// Redis is nil when the server could not be reached.
	Redis     *redis.Client
	Publisher utils.EventPublisher
	Mailer    *utils.Mailer
}

func Setup(r *gin.Engine, cfg *config.Config, deps Deps) {
	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		log.Printf("⚠️ Could not create uploads directory %s: %v", cfg.UploadDir, err)
	}

	web.Load(r)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Content-Length", "X-Requested-With", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(web.Flashes())
	r.Use(middleware.ClientIP())

	r.Static("/uploads", cfg.UploadDir)

	// ========== Audit Log ==========
	auditSvc := auditlog.NewService(auditlog.NewRepository(deps.DB))

	// ========== Auth ==========
	var store auth.SessionStore
	if deps.Redis != nil {
		store = auth.NewRedisSessionStore(deps.Redis)
	} else {
		log.Println("⚠️ Redis unavailable, sessions are kept in memory")
		store = auth.NewMemorySessionStore()
	}
	sessions := auth.NewSessionManager(store, cfg.SecretKey, cfg.SessionTTL, strings.HasPrefix(cfg.BaseURL, "https://"))
	tokens := auth.NewTokenManager(cfg.SecretKey, cfg.ResetTokenTTL)
	authSvc := auth.NewService(auth.NewRepository(deps.DB), tokens, deps.Mailer, auditSvc, auth.Options{
		BaseURL:       cfg.BaseURL,
		CreateProfile: cfg.CreateProfileOnRegister,
	})
	authHandler := auth.NewHandler(authSvc, sessions)

	r.Use(middleware.Session(sessions, authSvc))
	requireAuth := middleware.RequireAuth()
	limit := middleware.RateLimiter(deps.Redis, cfg.RateLimitPerMinute)

	// ========== Messaging ==========
	eventRepo := event.NewRepository(deps.DB)
	var broadcaster messaging.Broadcaster
	if deps.Redis != nil {
		broadcaster = messaging.NewRedisBroadcaster(deps.Redis)
	}
	messagingSvc := messaging.NewService(messaging.NewRepository(deps.DB), authSvc, messaging.Options{
		Mailer:      deps.Mailer,
		Publisher:   deps.Publisher,
		Broadcaster: broadcaster,
		Events:      eventRepo,
		BaseURL:     cfg.BaseURL,
	})
	messagingHandler := messaging.NewHandler(messagingSvc)

	// ========== Events & Comments ==========
	eventPhotos := utils.ImageUpload{Dir: cfg.UploadDir, URLPrefix: "/uploads", MaxBytes: cfg.MaxContentLength, MaxWidth: 1600}
	eventSvc := event.NewService(eventRepo, eventPhotos, messagingSvc, auditSvc, cfg.SecretKey)
	commentSvc := comment.NewService(comment.NewRepository(deps.DB), eventSvc)
	eventHandler := event.NewHandler(eventSvc, commentSvc, reports.NewExporter())
	commentHandler := comment.NewHandler(commentSvc)

	// ========== Profile ==========
	avatars := utils.ImageUpload{Dir: cfg.UploadDir, URLPrefix: "/uploads", MaxBytes: cfg.MaxContentLength, MaxWidth: 512}
	profileSvc := userprofile.NewService(userprofile.NewRepository(deps.DB), avatars, auditSvc)
	profileHandler := userprofile.NewHandler(profileSvc)

	// ========== Home ==========
	checks := []home.Check{{Name: "database", Ping: func(ctx context.Context) error {
		sqlDB, err := deps.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}}
	if deps.Redis != nil {
		checks = append(checks, home.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		}})
	}
	homeHandler := home.NewHandler(eventSvc, messagingSvc, checks...)

	r.GET("/", homeHandler.Root)
	r.GET("/index/main-login", homeHandler.Index)
	r.GET("/healthz", homeHandler.Healthz)

	authGroup := r.Group("/auth")
	{
		authGroup.GET("/register", authHandler.RegisterPage)
		authGroup.POST("/register", limit, authHandler.Register)
		authGroup.GET("/login", authHandler.LoginPage)
		authGroup.POST("/login", limit, authHandler.Login)
		authGroup.GET("/logout", requireAuth, authHandler.Logout)

		authGroup.GET("/reset_password", authHandler.RequestResetPage)
		authGroup.POST("/reset_password", limit, authHandler.RequestReset)
		authGroup.GET("/reset_password/:token", authHandler.ResetWithTokenPage)
		authGroup.POST("/reset_password/:token", limit, authHandler.ResetWithToken)

		authGroup.GET("/profile", requireAuth, profileHandler.ViewProfile)
		authGroup.GET("/update_profile", requireAuth, profileHandler.UpdateProfilePage)
		authGroup.POST("/update_profile", requireAuth, profileHandler.UpdateProfile)
	}

	r.GET("/events", eventHandler.ListEvents)
	r.GET("/events/:id", eventHandler.ShowEvent)

	protected := r.Group("/", requireAuth)
	{
		protected.GET("/events/new", eventHandler.NewEventPage)
		protected.POST("/events/new", eventHandler.CreateEvent)
		protected.POST("/events/:id/attend", eventHandler.Attend)
		protected.POST("/events/:id/photos", eventHandler.AddPhoto)
		protected.POST("/events/:id/sponsors", eventHandler.AddSponsor)
		protected.GET("/events/:id/attendees.xlsx", eventHandler.AttendeesExcel)
		protected.GET("/events/:id/attendees.csv", eventHandler.AttendeesCSV)
		protected.GET("/events/:id/pass.pdf", eventHandler.Pass)
		protected.GET("/events/:id/checkin", eventHandler.CheckIn)
		protected.POST("/events/:id/comments", commentHandler.AddComment)
		protected.POST("/events/:id/feedback", commentHandler.AddFeedback)
		protected.POST("/categories/:id/subscribe", eventHandler.Subscribe)

		protected.GET("/messages", messagingHandler.ListMessages)
		protected.GET("/messages/new", messagingHandler.NewMessagePage)
		protected.POST("/messages/new", messagingHandler.SendMessage)
		protected.GET("/notifications", messagingHandler.ListNotifications)
		protected.GET("/notifications/unread", messagingHandler.UnreadCount)
		protected.GET("/notifications/stream", messagingHandler.Stream)
		protected.POST("/notifications/:id/seen", messagingHandler.MarkSeen)
	}
}
