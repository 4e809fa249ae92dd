package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ArowuTest/memebox-backend/internal/game"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	Game     GameConfig
	Exchange ExchangeConfig
	Admin    AdminConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
	Mode         string // gin mode: debug, release or test
}

// StorageConfig selects the repository backend
type StorageConfig struct {
	Driver     string // mongodb, sqlite or memory
	SQLitePath string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI            string
	Database       string
	ConnectTimeout int // seconds
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// GameConfig holds the rules applied to newly initialized games
type GameConfig struct {
	BoxCount              int
	CooldownSeconds       int64
	MaxContributorsPerBox int
	MaxLeaderHistory      int
	PoolAsset             string
	PayoutAsset           string
}

// ExchangeConfig holds exchange venue configuration
type ExchangeConfig struct {
	BaseURL           string
	APIKey            string
	MockAPI           bool
	MockRate          string
	MockLiquidity     uint64
	SettlementAccount string
}

// AdminConfig holds the bootstrap admin account
type AdminConfig struct {
	Email    string
	Password string
}

const (
	DriverMongoDB = "mongodb"
	DriverSQLite  = "sqlite"
	DriverMemory  = "memory"
)

// Rules converts the game section into game rules
func (c GameConfig) Rules() game.Rules {
	return game.Rules{
		BoxCount:              c.BoxCount,
		CooldownSeconds:       c.CooldownSeconds,
		MaxContributorsPerBox: c.MaxContributorsPerBox,
		MaxLeaderHistory:      c.MaxLeaderHistory,
	}
}

// Load loads configuration from config files and environment variables.
// Extra paths are searched before the defaults. Environment variables use
// the upper-cased key with dots replaced by underscores, e.g. SERVER_PORT.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMongoDB, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT secret is required (JWT_SECRET)")
	}
	if c.Game.PoolAsset == "" {
		return errors.New("game pool asset is required (GAME_POOLASSET)")
	}
	if err := c.Game.Rules().Validate(); err != nil {
		return err
	}
	return nil
}

// setDefaults sets default values for configuration. Every key needs a
// default for AutomaticEnv to reach it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	v.SetDefault("Server.Mode", "release")
	v.SetDefault("Storage.Driver", DriverMongoDB)
	v.SetDefault("Storage.SQLitePath", "./data/memebox.db")
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "memebox")
	v.SetDefault("MongoDB.ConnectTimeout", 10)
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	v.SetDefault("Game.BoxCount", game.DefaultBoxCount)
	v.SetDefault("Game.CooldownSeconds", int64(game.DefaultCooldown.Seconds()))
	v.SetDefault("Game.MaxContributorsPerBox", 0)
	v.SetDefault("Game.MaxLeaderHistory", game.DefaultLeaderHistory)
	v.SetDefault("Game.PoolAsset", "MEME")
	v.SetDefault("Game.PayoutAsset", "")
	v.SetDefault("Exchange.BaseURL", "")
	v.SetDefault("Exchange.APIKey", "")
	v.SetDefault("Exchange.MockAPI", true)
	v.SetDefault("Exchange.MockRate", "1")
	v.SetDefault("Exchange.MockLiquidity", 0)
	v.SetDefault("Exchange.SettlementAccount", "exchange:settlement")
	v.SetDefault("Admin.Email", "")
	v.SetDefault("Admin.Password", "")
	v.SetDefault("LogLevel", "info")
}
