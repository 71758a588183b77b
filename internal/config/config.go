package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Forecast  ForecastConfig
	Replenish ReplenishConfig
	Inference InferenceConfig
	Cache     CacheConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DataConfig struct {
	HistoryPath   string
	InventoryPath string
	OutputDir     string
}

type ForecastConfig struct {
	HorizonDays int
	MinMonths   int
	PreviewRows int
}

type ReplenishConfig struct {
	MinimumOrderQty int
	SafetyBuffer    int
	SafetyStockPct  float64
}

type InferenceConfig struct {
	Endpoint    string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
}

type CacheConfig struct {
	Enabled                  bool
	RedisURL                 string
	RedisHost                string
	RedisPort                string
	RedisPassword            string
	RedisDB                  int
	RecommendationTTLSeconds int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DATA_HISTORY_PATH", "./data/historical_orders.csv")
		viper.SetDefault("DATA_INVENTORY_PATH", "./data/current_inventory.csv")
		viper.SetDefault("DATA_OUTPUT_DIR", "./data/output")
		viper.SetDefault("FORECAST_HORIZON_DAYS", 30)
		viper.SetDefault("FORECAST_MIN_MONTHS", 6)
		viper.SetDefault("FORECAST_PREVIEW_ROWS", 15)
		viper.SetDefault("REPLENISH_MINIMUM_ORDER_QTY", 100)
		viper.SetDefault("REPLENISH_SAFETY_BUFFER", 500)
		viper.SetDefault("REPLENISH_SAFETY_STOCK_PCT", 0.20)
		viper.SetDefault("INFERENCE_ENDPOINT", "https://api.openai.com/v1")
		viper.SetDefault("INFERENCE_MODEL", "gpt-4o-mini")
		viper.SetDefault("INFERENCE_API_KEY", "")
		viper.SetDefault("INFERENCE_TEMPERATURE", 0.1)
		viper.SetDefault("INFERENCE_MAX_TOKENS", 500)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_RECOMMENDATION_TTL_SECONDS", 300)

		// Read from environment variables
		viper.AutomaticEnv()

		// Ensure output directory exists
		ensureDir(viper.GetString("DATA_OUTPUT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Data: DataConfig{
				HistoryPath:   viper.GetString("DATA_HISTORY_PATH"),
				InventoryPath: viper.GetString("DATA_INVENTORY_PATH"),
				OutputDir:     viper.GetString("DATA_OUTPUT_DIR"),
			},
			Forecast: ForecastConfig{
				HorizonDays: viper.GetInt("FORECAST_HORIZON_DAYS"),
				MinMonths:   viper.GetInt("FORECAST_MIN_MONTHS"),
				PreviewRows: viper.GetInt("FORECAST_PREVIEW_ROWS"),
			},
			Replenish: ReplenishConfig{
				MinimumOrderQty: viper.GetInt("REPLENISH_MINIMUM_ORDER_QTY"),
				SafetyBuffer:    viper.GetInt("REPLENISH_SAFETY_BUFFER"),
				SafetyStockPct:  viper.GetFloat64("REPLENISH_SAFETY_STOCK_PCT"),
			},
			Inference: InferenceConfig{
				Endpoint:    viper.GetString("INFERENCE_ENDPOINT"),
				Model:       viper.GetString("INFERENCE_MODEL"),
				APIKey:      viper.GetString("INFERENCE_API_KEY"),
				Temperature: viper.GetFloat64("INFERENCE_TEMPERATURE"),
				MaxTokens:   viper.GetInt("INFERENCE_MAX_TOKENS"),
			},
			Cache: CacheConfig{
				Enabled:                  viper.GetBool("CACHE_ENABLED"),
				RedisURL:                 viper.GetString("REDIS_URL"),
				RedisHost:                viper.GetString("REDIS_HOST"),
				RedisPort:                viper.GetString("REDIS_PORT"),
				RedisPassword:            viper.GetString("REDIS_PASSWORD"),
				RedisDB:                  viper.GetInt("REDIS_DB"),
				RecommendationTTLSeconds: viper.GetInt("CACHE_RECOMMENDATION_TTL_SECONDS"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
