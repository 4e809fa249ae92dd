package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArowuTest/memebox-backend/internal/game"
	"github.com/ArowuTest/memebox-backend/internal/models"
	"github.com/ArowuTest/memebox-backend/internal/repositories/memory"
	"github.com/ArowuTest/memebox-backend/internal/services"
	"github.com/ArowuTest/memebox-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type apiFixture struct {
	t      *testing.T
	router *gin.Engine
	clock  *game.FakeClock
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	clock := game.NewFakeClock(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	tokens := jwt.NewTokenService("test-secret", time.Hour)
	transfers := services.NewLedgerTransfer(store.Accounts, store.Transfers, clock)
	auth := services.NewAuthService(store.Users, tokens)
	require.NoError(t, auth.EnsureAdmin(context.Background(), "admin@example.com", "adminpass"))

	router := SetupRouter(Dependencies{
		GameService: services.NewGameService(store.Games, store.Accounts, store.Settlements, transfers, nil, clock, services.GameSettings{
			Rules:     game.DefaultRules(),
			PoolAsset: "MEME",
		}),
		AccountService: services.NewAccountService(store.Accounts, store.Transfers, store.Settlements, clock),
		AuthService:    auth,
		Tokens:         tokens,
		Logger:         slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	return &apiFixture{t: t, router: router, clock: clock}
}

func (f *apiFixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) login(email, password string) (string, string) {
	f.t.Helper()
	w := f.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(f.t, http.StatusOK, w.Code, w.Body.String())
	var resp models.LoginResponse
	require.NoError(f.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token, resp.User.ID
}

func (f *apiFixture) register(name string) (string, string) {
	f.t.Helper()
	email := name + "@example.com"
	w := f.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"displayName": name, "email": email, "password": "password1"})
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	return f.login(email, "password1")
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	f := newAPI(t)
	w := f.do(http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGameLifecycleOverHTTP(t *testing.T) {
	f := newAPI(t)
	admin, adminID := f.login("admin@example.com", "adminpass")
	alice, aliceID := f.register("alice")
	bob, bobID := f.register("bob")

	for owner, amount := range map[string]uint64{adminID: 900, aliceID: 100, bobID: 100} {
		w := f.do(http.MethodPost, "/api/v1/accounts/"+owner+"/deposits", admin, gin.H{"asset": "MEME", "amount": amount})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/v1/accounts/"+aliceID+"/deposits", alice, gin.H{"asset": "MEME", "amount": 5}).Code)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/v1/games", alice, gin.H{"gameId": "g1", "seedPerBox": 100}).Code)
	w := f.do(http.MethodPost, "/api/v1/games", admin, gin.H{"gameId": "g1", "seedPerBox": 100})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, uint64(900), decode[game.Game](t, w).PrizePool)
	assert.Equal(t, http.StatusConflict, f.do(http.MethodPost, "/api/v1/games", admin, gin.H{"gameId": "g1", "seedPerBox": 0}).Code)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/api/v1/games/g1/boxes/0/contributions", "", gin.H{"label": "DOGE", "amount": 50}).Code)
	w = f.do(http.MethodPost, "/api/v1/games/g1/boxes/0/contributions", alice, gin.H{"label": "DOGE", "amount": 50})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, game.OutcomeLeaderChanged, decode[game.ContributionResult](t, w).Outcome)

	w = f.do(http.MethodPost, "/api/v1/games/g1/boxes/0/contributions", bob, gin.H{"label": "DOGE", "amount": 30})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, http.StatusPaymentRequired, f.do(http.MethodPost, "/api/v1/games/g1/boxes/0/contributions", bob, gin.H{"label": "SHIB", "amount": 500}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/v1/games/g1/boxes/9/contributions", bob, gin.H{"label": "DOGE", "amount": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/v1/games/g1/boxes/x/contributions", bob, gin.H{"label": "DOGE", "amount": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/v1/games/g1/boxes/0/contributions", bob, gin.H{"label": "DOGE", "amount": 0}).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/api/v1/games/nope/boxes/0/contributions", bob, gin.H{"label": "DOGE", "amount": 1}).Code)

	w = f.do(http.MethodGet, "/api/v1/games/g1/boxes/0/share", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	quote := decode[game.Quote](t, w)
	assert.Equal(t, uint64(112), quote.Share) // floor(50 * 180 / 80)
	assert.False(t, quote.Unlocked)

	assert.Equal(t, http.StatusLocked, f.do(http.MethodPost, "/api/v1/games/g1/boxes/0/claim", alice, gin.H{"label": "DOGE"}).Code)
	f.clock.Advance(time.Hour)
	assert.Equal(t, http.StatusConflict, f.do(http.MethodPost, "/api/v1/games/g1/boxes/0/claim", alice, gin.H{"label": "SHIB"}).Code)

	w = f.do(http.MethodPost, "/api/v1/games/g1/boxes/0/claim", alice, gin.H{"label": "DOGE"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, uint64(112), decode[models.Settlement](t, w).Share)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/v1/games/g1/boxes/0/claim", alice, gin.H{"label": "DOGE"}).Code)

	w = f.do(http.MethodPost, "/api/v1/games/g1/boxes/0/claim", bob, gin.H{"label": "DOGE"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	settlement := decode[models.Settlement](t, w)
	assert.Equal(t, uint64(68), settlement.Share)
	assert.True(t, settlement.BoxDrained)

	w = f.do(http.MethodGet, "/api/v1/games/g1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(800), decode[game.Game](t, w).PrizePool)

	w = f.do(http.MethodGet, "/api/v1/games/g1/settlements", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Settlement](t, w), 2)

	w = f.do(http.MethodGet, "/api/v1/accounts/me", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Owner    string           `json:"owner"`
		Accounts []models.Account `json:"accounts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, aliceID, me.Owner)
	require.Len(t, me.Accounts, 1)
	assert.Equal(t, uint64(50+112), me.Accounts[0].Balance)

	w = f.do(http.MethodGet, "/api/v1/accounts/me/transfers?limit=2", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	transfers := decode[[]models.Transfer](t, w)
	require.Len(t, transfers, 2)
	assert.Equal(t, models.TransferKindPayout, transfers[0].Kind)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/v1/accounts/me/transfers?limit=x", alice, nil).Code)

	w = f.do(http.MethodGet, "/api/v1/accounts/me/settlements", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Settlement](t, w), 1)

	w = f.do(http.MethodGet, "/api/v1/games/g1/boxes/0", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var box struct {
		Index int      `json:"index"`
		Box   game.Box `json:"box"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &box))
	assert.False(t, box.Box.Active())
	assert.Len(t, box.Box.PreviousLeaders, 0)

	w = f.do(http.MethodGet, "/api/v1/games", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]game.Game](t, w), 1)
}

func TestAuthErrors(t *testing.T) {
	f := newAPI(t)
	f.register("carol")

	w := f.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"displayName": "c", "email": "carol@example.com", "password": "password1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = f.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"displayName": "c", "email": "not-an-email", "password": "password1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "carol@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
