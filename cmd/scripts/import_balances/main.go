// Command import_balances credits player balances from a CSV file of
// owner,asset,amount rows. Each row becomes a journaled deposit.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ArowuTest/memebox-backend/internal/config"
	"github.com/ArowuTest/memebox-backend/internal/game"
	"github.com/ArowuTest/memebox-backend/internal/services"
	"github.com/ArowuTest/memebox-backend/internal/storage"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

type balanceRow struct {
	Line   int
	Owner  string
	Asset  string
	Amount uint64
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables")
	}
	if len(os.Args) < 2 {
		slog.Error("CSV file path is required as a command line argument")
		os.Exit(1)
	}

	file, err := os.Open(os.Args[1])
	if err != nil {
		slog.Error("Failed to open CSV file", "error", err)
		os.Exit(1)
	}
	defer file.Close()

	rows, err := parseBalances(file)
	if err != nil {
		slog.Error("Failed to parse CSV file", "error", err)
		os.Exit(1)
	}

	if config.GetEnvAsBool("IMPORT_DRY_RUN", false) {
		for _, r := range rows {
			slog.Info("Would credit", "owner", r.Owner, "asset", r.Asset, "amount", r.Amount)
		}
		slog.Info("Dry run complete", "rows", len(rows))
		return
	}

	ctx := context.Background()
	store, err := storage.Open(ctx,
		config.StorageConfig{
			Driver:     config.GetEnv("STORAGE_DRIVER", config.DriverMongoDB),
			SQLitePath: config.GetEnv("STORAGE_SQLITEPATH", "./data/memebox.db"),
		},
		config.MongoDBConfig{
			URI:      config.GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: config.GetEnv("MONGODB_DATABASE", "memebox"),
		})
	if err != nil {
		slog.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}
	defer store.Close(ctx)

	accounts := services.NewAccountService(store.Accounts, store.Transfers, store.Settlements, game.RealClock{})
	imported, failed := 0, 0
	for _, r := range rows {
		if _, err := accounts.Deposit(ctx, r.Owner, r.Asset, r.Amount); err != nil {
			slog.Error("Failed to credit row", "line", r.Line, "owner", r.Owner, "error", err)
			failed++
			continue
		}
		imported++
	}
	slog.Info("Balances imported", "imported", imported, "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// parseBalances reads owner,asset,amount rows. A first row whose amount
// column is not a number is treated as a header.
func parseBalances(r io.Reader) ([]balanceRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	var rows []balanceRow
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		owner, asset := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
		amount, err := strconv.ParseUint(strings.TrimSpace(record[2]), 10, 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: invalid amount %q", line, record[2])
		}
		if owner == "" || asset == "" || amount == 0 {
			return nil, fmt.Errorf("line %d: owner, asset and a positive amount are required", line)
		}
		rows = append(rows, balanceRow{Line: line, Owner: owner, Asset: asset, Amount: amount})
	}
	return rows, nil
}
