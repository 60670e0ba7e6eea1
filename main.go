package main

import (
	"context"
	"log"
	"strings"

	"github.com/eventbuddy/backend/internal/config"
	"github.com/eventbuddy/backend/internal/db"
	"github.com/eventbuddy/backend/internal/handler"
	"github.com/eventbuddy/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// @title           EventBuddy API
// @version         1.0
// @description     Project and event collaboration backend.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	dsn, err := db.BuildPostgresURL()
	if err != nil {
		log.Fatalf("[startup] %v", err)
	}
	if err := db.RunMigrations(ctx, dsn); err != nil {
		log.Fatalf("[startup] migrations failed: %v", err)
	}

	store, err := db.NewPostgres(ctx)
	if err != nil {
		log.Fatalf("[startup] %v", err)
	}
	defer store.Close()

	mailer := service.NewMailer(cfg.SMTP)
	if !mailer.Enabled() {
		log.Printf("[startup] SMTP not configured, outbound mail disabled")
	}

	auth, err := service.NewAuthServiceFromConfig(store, mailer, cfg.Auth, cfg.Server.BaseURL)
	if err != nil {
		log.Fatalf("[startup] %v", err)
	}

	cookieCfg, err := handler.NewCookieConfig(cfg.Auth, auth.Tokens().RefreshTTL())
	if err != nil {
		log.Fatalf("[startup] %v", err)
	}

	oidc, err := service.NewOIDCService(ctx, cfg.OIDC)
	if err != nil {
		log.Fatalf("[startup] oidc init failed: %v", err)
	}

	projects := service.NewProjectService(store)
	members := service.NewMemberService(store, mailer)
	users := service.NewUserService(store, cfg.Uploads.Dir, cfg.Server.BaseURL)

	authHandler := handler.NewAuthHandler(auth, cookieCfg)
	userHandler := handler.NewUserHandler(users)
	projectHandler := handler.NewProjectHandler(projects)
	memberHandler := handler.NewMemberHandler(members)

	router := gin.Default()

	origins := strings.Split(cfg.Server.AllowedOrigins, ",")
	router.Use(handler.CORSMiddleware(origins, true))
	router.Use(handler.AuthGate(auth, handler.PublicPaths))

	router.GET("/ping", handler.Ping)
	router.GET("/", handler.Root)
	router.GET("/openapi.json", handler.OpenAPIDoc)
	router.GET("/v3/api-docs", handler.OpenAPIDoc)
	router.Static("/uploads", cfg.Uploads.Dir)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/verify", authHandler.Verify)
		authGroup.GET("/auto-login", authHandler.AutoLogin)
		authGroup.POST("/auto-login", authHandler.AutoLogin)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/resend", authHandler.Resend)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.POST("/recovery", authHandler.Recovery)
		authGroup.POST("/recovery/resend", authHandler.RecoveryResend)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
	}

	if oidc.Enabled() {
		oidcHandler := handler.NewOIDCHandler(oidc, auth, cookieCfg)
		authGroup.GET("/oidc/login", oidcHandler.Login)
		authGroup.GET("/oidc/callback", oidcHandler.Callback)
	}

	userGroup := router.Group("/users")
	{
		userGroup.GET("/me", userHandler.Me)
		userGroup.PUT("/me", userHandler.UpdateMe)
		userGroup.DELETE("/me", userHandler.DeleteMe)
		userGroup.GET("/", userHandler.List)
	}
	router.POST("/user/avatar", userHandler.UploadAvatar)

	projectGroup := router.Group("/projects")
	{
		projectGroup.POST("", projectHandler.Create)
		projectGroup.GET("", projectHandler.List)
		projectGroup.GET("/:id", projectHandler.Get)
		projectGroup.PUT("/:id", projectHandler.Update)
		projectGroup.DELETE("/:id", projectHandler.Delete)

		projectGroup.POST("/:id/members", memberHandler.Invite)
		projectGroup.GET("/:id/members", memberHandler.List)
		projectGroup.PUT("/:id/members", memberHandler.UpdateRole)
		projectGroup.DELETE("/:id/members", memberHandler.Remove)
	}

	log.Printf("[startup] listening on %s", cfg.Server.Addr)
	if err := router.Run(cfg.Server.Addr); err != nil {
		panic(err)
	}
}
