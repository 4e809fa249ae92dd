package handlers

import (
	"errors"
	"net/http"

	"github.com/ArowuTest/memebox-backend/internal/game"
	"github.com/ArowuTest/memebox-backend/internal/repositories"
	"github.com/ArowuTest/memebox-backend/internal/services"
	"github.com/ArowuTest/memebox-backend/pkg/exchange"
	"github.com/gin-gonic/gin"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{game.ErrInvalidBoxNumber, http.StatusBadRequest},
	{game.ErrInvalidAmount, http.StatusBadRequest},
	{game.ErrInvalidLabel, http.StatusBadRequest},
	{game.ErrInvalidContributor, http.StatusBadRequest},
	{game.ErrInvalidRules, http.StatusBadRequest},
	{game.ErrAmountOverflow, http.StatusBadRequest},
	{services.ErrInvalidDeposit, http.StatusBadRequest},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{game.ErrInsufficientFunds, http.StatusPaymentRequired},
	{services.ErrInsufficientBalance, http.StatusPaymentRequired},
	{game.ErrNoContribution, http.StatusForbidden},
	{game.ErrGameNotFound, http.StatusNotFound},
	{repositories.ErrNotFound, http.StatusNotFound},
	{game.ErrNotLeadingLabel, http.StatusConflict},
	{game.ErrLedgerFull, http.StatusConflict},
	{game.ErrGameExists, http.StatusConflict},
	{services.ErrEmailTaken, http.StatusConflict},
	{repositories.ErrVersionConflict, http.StatusConflict},
	{game.ErrTimeLockNotElapsed, http.StatusLocked},
	{exchange.ErrInsufficientLiquidity, http.StatusBadGateway},
	{exchange.ErrSwapFailed, http.StatusBadGateway},
	{exchange.ErrSwapOutcomeUnknown, http.StatusGatewayTimeout},
	{services.ErrExchangeRequired, http.StatusBadGateway},
}

// statusFor maps a service error to its HTTP status
func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes err with its mapped status. Internal errors are
// recorded on the context for the request logger and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
