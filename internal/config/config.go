package config

import (
	"log"
	"os"
	"strings"

	"halal_finance/internal/models"
	"halal_finance/internal/screening"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds every tunable of the toolkit. Front ends read only what they need.
type Config struct {
	Version string

	// Logging
	LogLevel      string
	LogFile       string
	MaxLogSizeMB  int64
	MaxLogBackups int

	// HTTP
	HTTPPort        string
	AllowedOrigins  []string
	RateLimitPerMin float64
	RateBurst       int

	// Zakat
	Currency           string
	GoldPricePerGram   float64
	SilverPricePerGram float64
	RatesFile          string

	// Screening
	DebtWeight         float64
	InterestWeight     float64
	HaramRevenueWeight float64
	PortfolioWorkers   int

	// Integrations
	TelegramToken  string
	TelegramChatID string
	AlpacaEnabled  bool
}

// secretVars are masked when the .env file is echoed.
var secretVars = map[string]bool{
	"APCA_API_KEY_ID":     true,
	"APCA_API_SECRET_KEY": true,
	"TELEGRAM_BOT_TOKEN":  true,
	"TELEGRAM_CHAT_ID":    true,
}

// Load reads a .env file if present and builds the configuration from the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using system environment variables")
	} else {
		logEnvFile()
	}

	return &Config{
		LogLevel:      strings.ToUpper(getEnv("HALAL_LOG_LEVEL", "INFO")),
		LogFile:       getEnv("HALAL_LOG_FILE", "halal.log"),
		MaxLogSizeMB:  int64(getEnvAsInt("MAX_LOG_SIZE_MB", 10)),
		MaxLogBackups: getEnvAsInt("MAX_LOG_BACKUPS", 3),

		HTTPPort:        getEnv("PORT", "8080"),
		AllowedOrigins:  getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		RateLimitPerMin: getEnvAsFloat64("RATE_LIMIT_PER_MIN", 60),
		RateBurst:       getEnvAsInt("RATE_LIMIT_BURST", 10),

		Currency:           strings.ToUpper(getEnv("ZAKAT_CURRENCY", "USD")),
		GoldPricePerGram:   getEnvAsFloat64("GOLD_PRICE_PER_GRAM", 65.50),
		SilverPricePerGram: getEnvAsFloat64("SILVER_PRICE_PER_GRAM", 0.85),
		RatesFile:          getEnv("RATES_FILE", ""),

		DebtWeight:         getEnvAsFloat64("SCREEN_DEBT_WEIGHT", 1.0),
		InterestWeight:     getEnvAsFloat64("SCREEN_INTEREST_WEIGHT", 1.0),
		HaramRevenueWeight: getEnvAsFloat64("SCREEN_HARAM_REVENUE_WEIGHT", 1.0),
		PortfolioWorkers:   getEnvAsInt("PORTFOLIO_WORKERS", 4),

		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: os.Getenv("TELEGRAM_CHAT_ID"),
		AlpacaEnabled:  os.Getenv("APCA_API_KEY_ID") != "" && os.Getenv("APCA_API_SECRET_KEY") != "",
	}
}

// Rates projects the configured spot prices into engine input.
func (c *Config) Rates() models.PreciousMetalRates {
	return models.NewRates(
		decimal.NewFromFloat(c.GoldPricePerGram),
		decimal.NewFromFloat(c.SilverPricePerGram),
	)
}

// ScreeningPolicy projects the configured weights into a screening policy.
func (c *Config) ScreeningPolicy() screening.Policy {
	return screening.Policy{
		DebtWeight:         c.DebtWeight,
		InterestWeight:     c.InterestWeight,
		HaramRevenueWeight: c.HaramRevenueWeight,
	}
}

// logEnvFile prints the variables defined in .env, masking secrets.
func logEnvFile() {
	envMap, err := godotenv.Read()
	if err != nil {
		return
	}
	log.Println("--- .env File Variables ---")
	for key, val := range envMap {
		log.Printf("%s=%s", key, mask(key, val))
	}
	log.Println("---------------------------")
}

func mask(key, val string) string {
	if !secretVars[key] {
		return val
	}
	if len(val) > 4 {
		return "***" + val[len(val)-4:]
	}
	return "***"
}
