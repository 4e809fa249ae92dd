package routes

import (
	"net/http"

	"github.com/ArowuTest/memebox-backend/internal/handlers"
	"github.com/ArowuTest/memebox-backend/internal/middleware"
	"github.com/ArowuTest/memebox-backend/internal/models"
	"github.com/ArowuTest/memebox-backend/internal/services"
	"github.com/ArowuTest/memebox-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

// Dependencies are the collaborators the router wires into handlers
type Dependencies struct {
	GameService    services.GameService
	AccountService services.AccountService
	AuthService    services.AuthService
	Tokens         *jwt.TokenService
	Logger         *slog.Logger
	AllowedHosts   []string
}

// SetupRouter sets up the router
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(deps.AllowedHosts))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(deps.Logger))

	gameHandler := handlers.NewGameHandler(deps.GameService)
	accountHandler := handlers.NewAccountHandler(deps.AccountService)
	authHandler := handlers.NewAuthHandler(deps.AuthService)

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		public.GET("/games", gameHandler.ListGames)
		public.GET("/games/:id", gameHandler.GetGame)
		public.GET("/games/:id/boxes/:box", gameHandler.GetBox)
		public.GET("/games/:id/settlements", gameHandler.ListSettlements)
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(deps.Tokens))
	{
		games := protected.Group("/games")
		{
			games.POST("", middleware.RequireRole(models.RoleAdmin), gameHandler.InitializeGame)
			games.POST("/:id/boxes/:box/contributions", gameHandler.Contribute)
			games.POST("/:id/boxes/:box/claim", gameHandler.Claim)
			games.GET("/:id/boxes/:box/share", gameHandler.GetShare)
		}

		accounts := protected.Group("/accounts")
		{
			accounts.GET("/me", accountHandler.GetMyAccounts)
			accounts.GET("/me/transfers", accountHandler.GetMyTransfers)
			accounts.GET("/me/settlements", accountHandler.GetMySettlements)
			accounts.POST("/:owner/deposits", middleware.RequireRole(models.RoleAdmin), accountHandler.Deposit)
		}
	}

	return router
}
