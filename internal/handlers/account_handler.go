package handlers

import (
	"net/http"
	"strconv"

	"github.com/ArowuTest/memebox-backend/internal/middleware"
	"github.com/ArowuTest/memebox-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles balance and deposit requests
type AccountHandler struct {
	accountService services.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService services.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// DepositRequest is the body of POST /accounts/:owner/deposits
type DepositRequest struct {
	Asset  string `json:"asset" binding:"required"`
	Amount uint64 `json:"amount" binding:"required"`
}

// GetMyAccounts handles GET /accounts/me
func (h *AccountHandler) GetMyAccounts(c *gin.Context) {
	owner := c.GetString(middleware.UserIDKey)
	accounts, err := h.accountService.Balances(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"owner": owner, "accounts": accounts})
}

// GetMyTransfers handles GET /accounts/me/transfers?limit=N
func (h *AccountHandler) GetMyTransfers(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}
	transfers, err := h.accountService.History(c.Request.Context(), c.GetString(middleware.UserIDKey), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transfers)
}

// GetMySettlements handles GET /accounts/me/settlements
func (h *AccountHandler) GetMySettlements(c *gin.Context) {
	settlements, err := h.accountService.Settlements(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settlements)
}

// Deposit handles POST /accounts/:owner/deposits
func (h *AccountHandler) Deposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	transfer, err := h.accountService.Deposit(c.Request.Context(), c.Param("owner"), req.Asset, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transfer)
}
