package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Cost policy names accepted by BOOST_COST_POLICY.
const (
	CostPolicyCapped = "capped"
	CostPolicyBudget = "budget"
)

// Listing quality modes accepted by LISTING_QUALITY_MODE.
const (
	ListingQualityContent = "content"
	ListingQualityFixed   = "fixed"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisURL          string
	ReferenceCacheTTL time.Duration

	KafkaBrokers    []string
	KafkaTopicBoost string

	ReferenceFile string
	LookupTimeout time.Duration

	BoostCostPolicy      string
	BoostCostCap         float64
	ListingQualityMode   string
	ListingQualityPoints int

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	ComparablesURL  string
	PagesToScrape   int
	ListingsPerPage int
	ChromeBin       string
	CSVOutputPath   string
	LogLevel        string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", ""),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "jaikod"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "jaikod123"),
		PostgresDB:       getEnv("POSTGRES_DB", "marketplace"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisURL:          getEnv("REDIS_URL", ""),
		ReferenceCacheTTL: time.Duration(getEnvInt("REFERENCE_CACHE_TTL_SEC", 300)) * time.Second,

		KafkaBrokers:    getEnvCSV("KAFKA_BROKERS"),
		KafkaTopicBoost: getEnv("KAFKA_TOPIC_BOOST", "listing.boost_triggered"),

		ReferenceFile: getEnv("REFERENCE_FILE", ""),
		LookupTimeout: time.Duration(getEnvInt("LOOKUP_TIMEOUT_MS", 2000)) * time.Millisecond,

		BoostCostPolicy:      strings.ToLower(getEnv("BOOST_COST_POLICY", CostPolicyCapped)),
		BoostCostCap:         getEnvFloat("BOOST_COST_CAP", 5),
		ListingQualityMode:   strings.ToLower(getEnv("LISTING_QUALITY_MODE", ListingQualityContent)),
		ListingQualityPoints: getEnvInt("LISTING_QUALITY_POINTS", 10),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 4),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 0),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		ComparablesURL:  getEnv("COMPARABLES_URL", ""),
		PagesToScrape:   getEnvInt("PAGES_TO_SCRAPE", 2),
		ListingsPerPage: getEnvInt("LISTINGS_PER_PAGE", 20),
		ChromeBin:       getEnv("CHROME_BIN", ""),
		CSVOutputPath:   getEnv("CSV_OUTPUT_PATH", "./output/assessments.csv"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

// HasPostgres reports whether a Postgres host was configured.
func (c *Config) HasPostgres() bool {
	return c.PostgresHost != ""
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvCSV(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
