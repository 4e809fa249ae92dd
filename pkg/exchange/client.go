package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrSwapFailed            = errors.New("swap failed")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	// ErrSwapOutcomeUnknown is returned when the venue may have executed the
	// swap but did not confirm it: transport errors, 5xx responses, unreadable
	// or pending results. Callers must not treat the input as returned.
	ErrSwapOutcomeUnknown = errors.New("swap outcome unknown")
)

// DefaultSettlementAccount receives swap inputs when none is configured.
const DefaultSettlementAccount = "exchange:settlement"

// Config configures a Client
type Config struct {
	BaseURL           string
	APIKey            string
	MockAPI           bool
	MockRate          string // output units per input unit, e.g. "0.5"
	MockLiquidity     uint64 // output units the mock can deliver; 0 means unlimited
	SettlementAccount string
}

// SwapRequest asks the venue to convert InputAmount of InputAsset into
// OutputAsset and deliver it to Recipient. Reference is the idempotency key:
// the venue executes at most one swap per reference.
type SwapRequest struct {
	InputAsset  string
	InputAmount uint64
	OutputAsset string
	Recipient   string
	Reference   string
}

type swapPayload struct {
	InputAsset      string `json:"inputAsset"`
	InputAmount     string `json:"inputAmount"`
	OutputAsset     string `json:"outputAsset"`
	Recipient       string `json:"recipient"`
	ClientReference string `json:"clientReference,omitempty"`
}

// SwapResponse represents a swap response from the venue API
type SwapResponse struct {
	SwapID       string `json:"swapId"`
	OutputAmount string `json:"outputAmount"`
	Status       string `json:"status"`
}

// Client represents an exchange venue client
type Client struct {
	BaseURL string
	APIKey  string
	MockAPI bool

	settlementAccount string
	client            *http.Client

	mu            sync.Mutex
	mockRate      decimal.Decimal
	mockLiquidity uint64
	limited       bool
}

// NewClient creates a new exchange client
func NewClient(cfg Config) (*Client, error) {
	c := &Client{
		BaseURL:           strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:            cfg.APIKey,
		MockAPI:           cfg.MockAPI,
		settlementAccount: cfg.SettlementAccount,
		client:            &http.Client{Timeout: 10 * time.Second},
		mockLiquidity:     cfg.MockLiquidity,
		limited:           cfg.MockLiquidity > 0,
	}
	if c.settlementAccount == "" {
		c.settlementAccount = DefaultSettlementAccount
	}
	if cfg.MockAPI {
		rate := cfg.MockRate
		if rate == "" {
			rate = "1"
		}
		d, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("invalid mock rate %q: %w", rate, err)
		}
		if !d.IsPositive() {
			return nil, fmt.Errorf("mock rate must be positive, got %s", d)
		}
		c.mockRate = d
	} else if c.BaseURL == "" {
		return nil, errors.New("exchange base URL is required")
	}
	return c, nil
}

// SettlementAccount names the account that receives swap inputs
func (c *Client) SettlementAccount() string {
	return c.settlementAccount
}

// Swap converts the input and returns the output amount delivered to the
// recipient
func (c *Client) Swap(ctx context.Context, req SwapRequest) (uint64, error) {
	if req.InputAmount == 0 || req.InputAsset == "" || req.OutputAsset == "" || req.Recipient == "" {
		return 0, fmt.Errorf("%w: incomplete request", ErrSwapFailed)
	}
	if c.MockAPI {
		return c.mockSwap(req)
	}
	return c.swap(ctx, req)
}

func (c *Client) swap(ctx context.Context, req SwapRequest) (uint64, error) {
	body, err := json.Marshal(swapPayload{
		InputAsset:      req.InputAsset,
		InputAmount:     fmt.Sprintf("%d", req.InputAmount),
		OutputAsset:     req.OutputAsset,
		Recipient:       req.Recipient,
		ClientReference: req.Reference,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to encode swap: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/swaps", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build swap request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.APIKey)
	if req.Reference != "" {
		httpReq.Header.Set("Idempotency-Key", req.Reference)
	}

	// Once the request may have left, anything short of a definite answer
	// leaves the swap in an unknown state.
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSwapOutcomeUnknown, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return 0, ErrInsufficientLiquidity
	case resp.StatusCode >= 500:
		return 0, fmt.Errorf("%w: venue returned %d", ErrSwapOutcomeUnknown, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return 0, fmt.Errorf("%w: venue returned %d", ErrSwapFailed, resp.StatusCode)
	}

	var out SwapResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: bad response: %v", ErrSwapOutcomeUnknown, err)
	}
	switch {
	case out.Status == "" || strings.EqualFold(out.Status, "SUCCESS"):
	case strings.EqualFold(out.Status, "FAILED"), strings.EqualFold(out.Status, "REJECTED"):
		return 0, fmt.Errorf("%w: swap %s is %s", ErrSwapFailed, out.SwapID, out.Status)
	default:
		return 0, fmt.Errorf("%w: swap %s is %s", ErrSwapOutcomeUnknown, out.SwapID, out.Status)
	}
	amount, err := parseAmount(out.OutputAmount)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSwapOutcomeUnknown, err)
	}
	return amount, nil
}

// mockSwap converts at the configured rate, rounding down, and draws down
// the configured liquidity
func (c *Client) mockSwap(req SwapRequest) (uint64, error) {
	in := decimal.NewFromBigInt(new(big.Int).SetUint64(req.InputAmount), 0)
	out, err := toAmount(in.Mul(c.mockRate).Floor())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSwapFailed, err)
	}
	if out == 0 {
		return 0, fmt.Errorf("%w: input too small to convert", ErrSwapFailed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.limited {
		if out > c.mockLiquidity {
			return 0, ErrInsufficientLiquidity
		}
		c.mockLiquidity -= out
	}
	return out, nil
}

func parseAmount(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("amount %q is not integral", s)
	}
	return toAmount(d)
}

func toAmount(d decimal.Decimal) (uint64, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("negative amount %s", d)
	}
	n := d.BigInt()
	if !n.IsUint64() {
		return 0, fmt.Errorf("amount %s overflows", d)
	}
	return n.Uint64(), nil
}
