package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"jobgate/api/internal/authorizer"
	"jobgate/api/internal/config"
	"jobgate/api/internal/middleware"
	"jobgate/api/internal/models"
	"jobgate/api/internal/repository"
	"jobgate/api/internal/session"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	auth     *authorizer.Authorizer
	store    session.Store
	db       *pgxpool.Pool
	cache    *redis.Client
	users    *repository.UserRepository
	tokens   *repository.SessionTokenRepository
	listings *repository.ListingRepository
}

// NewHandlerSet wires the repositories and the authorizer behind the HTTP
// surface. cache may be nil when the memory session backend is configured.
func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	store session.Store,
	auth *authorizer.Authorizer,
	cfg *config.AppConfig,
) HandlerSet {
	return HandlerSet{
		log:      log,
		cfg:      cfg,
		auth:     auth,
		store:    store,
		db:       db,
		cache:    cache,
		users:    repository.NewUserRepository(db),
		tokens:   repository.NewSessionTokenRepository(db),
		listings: repository.NewListingRepository(db),
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)

		me := v1.Group("/auth")
		me.Use(middleware.Authorize(h.auth))
		me.GET("/me", h.Me)

		listings := v1.Group("/listings")
		listings.Use(middleware.Authorize(h.auth))
		listings.GET("", h.ListListings)
		listings.POST("",
			middleware.RequireRoles(models.RoleEmployer, models.RoleAdmin),
			h.CreateListing,
		)

		admin := v1.Group("/admin")
		admin.Use(
			middleware.Authorize(h.auth),
			middleware.RequireRoles(models.RoleAdmin),
		)
		admin.GET("/sessions", h.AdminSessionStats)
		admin.DELETE("/sessions/:token", h.AdminRevokeSession)
	}
}
