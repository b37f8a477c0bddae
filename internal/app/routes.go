package app

import (
	"github.com/wl39/todo-sync/internal/auth"
	"github.com/wl39/todo-sync/internal/cache"
	"github.com/wl39/todo-sync/internal/config"
	"github.com/wl39/todo-sync/internal/handlers"
	"github.com/wl39/todo-sync/internal/repo"
	"github.com/wl39/todo-sync/internal/service"
	"github.com/wl39/todo-sync/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client, manager *ws.Manager) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration())

	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo)
	shareSvc := service.NewShareService(userRepo, cfg.Share.EditOpenUnprotected)

	todoRepo := repo.NewPGTodoRepo(db)
	todoCache := cache.NewTodoCache(rdb, cfg.Redis.DefaultTTL.Duration())
	todoSvc := service.NewTodoService(todoRepo, todoCache, manager)

	authHandler := handlers.NewAuthHandler(issuer, userSvc)
	registerAuthRoutes(api, authHandler, issuer)

	publicHandler := handlers.NewPublicHandler(shareSvc, todoSvc)
	wsHandler := handlers.NewWSHandler(manager, shareSvc)
	registerPublicRoutes(api, publicHandler, wsHandler)

	protected := api.Group("", auth.RequireAuth(issuer))
	todoHandler := handlers.NewTodoHandler(todoSvc)
	sharingHandler := handlers.NewSharingHandler(shareSvc)
	registerTodoRoutes(protected, todoHandler)
	protected.PUT("/sharing", sharingHandler.Update)
	protected.GET("/ws/user", wsHandler.User)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "todo-sync API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTodoRoutes(api *gin.RouterGroup, h *handlers.TodoHandler) {
	api.POST("/todos", h.Create)
	api.GET("/todos", h.List)
	api.GET("/todos/summary/month", h.MonthlySummary)
	api.PATCH("/todos/:id", h.Update)
	api.DELETE("/todos/:id", h.Delete)
	api.POST("/todos/:id/toggle", h.Toggle)
	api.GET("/todos/:id/audit", h.Audit)
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler, issuer *auth.Issuer) {
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/auth/me", auth.RequireAuth(issuer), h.Me)
}

func registerPublicRoutes(api *gin.RouterGroup, h *handlers.PublicHandler, wsH *handlers.WSHandler) {
	api.GET("/public/:slug/todos", h.List)
	api.GET("/public/:slug/summary/month", h.MonthlySummary)
	api.POST("/public/:slug/todos/:id/toggle", h.Toggle)
	api.GET("/public/ws/:slug", wsH.Public)
}
