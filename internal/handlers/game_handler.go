package handlers

import (
	"net/http"
	"strconv"

	"github.com/ArowuTest/memebox-backend/internal/middleware"
	"github.com/ArowuTest/memebox-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// GameHandler handles game-related HTTP requests
type GameHandler struct {
	gameService services.GameService
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(gameService services.GameService) *GameHandler {
	return &GameHandler{
		gameService: gameService,
	}
}

// InitializeGameRequest is the body of POST /games
type InitializeGameRequest struct {
	GameID     string `json:"gameId"`
	SeedPerBox uint64 `json:"seedPerBox"`
}

// ContributeRequest is the body of POST /games/:id/boxes/:box/contributions
type ContributeRequest struct {
	Label  string `json:"label" binding:"required"`
	Amount uint64 `json:"amount" binding:"required"`
}

// ClaimRequest is the body of POST /games/:id/boxes/:box/claim
type ClaimRequest struct {
	Label string `json:"label" binding:"required"`
}

func boxParam(c *gin.Context) (int, bool) {
	box, err := strconv.Atoi(c.Param("box"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid box number"})
		return 0, false
	}
	return box, true
}

// ListGames handles GET /games
func (h *GameHandler) ListGames(c *gin.Context) {
	games, err := h.gameService.ListGames(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

// GetGame handles GET /games/:id
func (h *GameHandler) GetGame(c *gin.Context) {
	g, err := h.gameService.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// GetBox handles GET /games/:id/boxes/:box
func (h *GameHandler) GetBox(c *gin.Context) {
	index, ok := boxParam(c)
	if !ok {
		return
	}
	box, err := h.gameService.GetBox(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"index":        index,
		"box":          box,
		"contributors": box.Contributions.Entries(),
	})
}

// InitializeGame handles POST /games. The caller pays the seed.
func (h *GameHandler) InitializeGame(c *gin.Context) {
	var req InitializeGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g, err := h.gameService.InitializeGame(c.Request.Context(), req.GameID, c.GetString(middleware.UserIDKey), req.SeedPerBox)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

// Contribute handles POST /games/:id/boxes/:box/contributions
func (h *GameHandler) Contribute(c *gin.Context) {
	index, ok := boxParam(c)
	if !ok {
		return
	}
	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.gameService.Contribute(c.Request.Context(), c.Param("id"), index, req.Label, req.Amount, c.GetString(middleware.UserIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Claim handles POST /games/:id/boxes/:box/claim
func (h *GameHandler) Claim(c *gin.Context) {
	index, ok := boxParam(c)
	if !ok {
		return
	}
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settlement, err := h.gameService.Claim(c.Request.Context(), c.Param("id"), index, req.Label, c.GetString(middleware.UserIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settlement)
}

// GetShare handles GET /games/:id/boxes/:box/share
func (h *GameHandler) GetShare(c *gin.Context) {
	index, ok := boxParam(c)
	if !ok {
		return
	}
	quote, err := h.gameService.ClaimableShare(c.Request.Context(), c.Param("id"), index, c.GetString(middleware.UserIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// ListSettlements handles GET /games/:id/settlements
func (h *GameHandler) ListSettlements(c *gin.Context) {
	settlements, err := h.gameService.ListSettlements(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settlements)
}
