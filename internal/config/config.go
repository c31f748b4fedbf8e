// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values for the application.
type Config struct {
	// AWS
	AWSRegion string
	S3Bucket  string

	// Database
	DBHost         string
	DBPort         int
	DBName         string
	DBUser         string
	DBPassword     string
	DBURL          string
	DBMaxConns     int32
	DBMinConns     int32
	DBConnTimeout  time.Duration
	DBQueryTimeout time.Duration

	// Lead submission
	CRMAPIURL      string
	CRMAPIKey      string
	LeadWebhookURL string

	// SES
	SESSenderEmail string

	// AI
	GeminiAPIKey string
	GeminiModel  string
	AITimeout    time.Duration

	// Census
	CensusAPIKey   string
	CensusBaseURL  string
	CensusCacheTTL time.Duration

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers []string
	KafkaTopic   string

	// Affordability
	AffordabilityModel string
	MortgageRate       float64
	LoanTermYears      int

	// Application
	Stage          string
	LogLevel       string
	Port           string
	ServiceVersion string
}

var defaults = map[string]interface{}{
	"aws_region":          "us-east-1",
	"s3_bucket":           "homebuyer-reports-dev",
	"db_host":             "localhost",
	"db_port":             5432,
	"db_name":             "homebuyer_leads",
	"db_user":             "postgres",
	"db_password":         "",
	"database_url":        "",
	"db_max_conns":        10,
	"db_min_conns":        2,
	"db_conn_timeout":     "10s",
	"db_query_timeout":    "5s",
	"crm_api_url":         "",
	"crm_api_key":         "",
	"lead_webhook_url":    "",
	"ses_sender_email":    "",
	"gemini_api_key":      "",
	"gemini_model":        "gemini-2.0-flash",
	"ai_timeout":          "20s",
	"census_api_key":      "",
	"census_base_url":     "https://api.census.gov/data/2022/acs/acs5",
	"census_cache_ttl":    "24h",
	"redis_addr":          "",
	"redis_password":      "",
	"redis_db":            0,
	"kafka_brokers":       "",
	"kafka_topic":         "homebuyer.leads",
	"affordability_model": "linear",
	"mortgage_rate":       0.065,
	"loan_term_years":     30,
	"stage":               "dev",
	"log_level":           "info",
	"port":                "8080",
	"service_version":     "1.0.0",
}

// Load reads .env, then an optional configs/config.yaml, then the
// environment. Environment variables win.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		AWSRegion: v.GetString("aws_region"),
		S3Bucket:  v.GetString("s3_bucket"),

		DBHost:         v.GetString("db_host"),
		DBPort:         v.GetInt("db_port"),
		DBName:         v.GetString("db_name"),
		DBUser:         v.GetString("db_user"),
		DBPassword:     v.GetString("db_password"),
		DBURL:          v.GetString("database_url"),
		DBMaxConns:     v.GetInt32("db_max_conns"),
		DBMinConns:     v.GetInt32("db_min_conns"),
		DBConnTimeout:  v.GetDuration("db_conn_timeout"),
		DBQueryTimeout: v.GetDuration("db_query_timeout"),

		CRMAPIURL:      v.GetString("crm_api_url"),
		CRMAPIKey:      v.GetString("crm_api_key"),
		LeadWebhookURL: v.GetString("lead_webhook_url"),

		SESSenderEmail: v.GetString("ses_sender_email"),

		GeminiAPIKey: v.GetString("gemini_api_key"),
		GeminiModel:  v.GetString("gemini_model"),
		AITimeout:    v.GetDuration("ai_timeout"),

		CensusAPIKey:   v.GetString("census_api_key"),
		CensusBaseURL:  v.GetString("census_base_url"),
		CensusCacheTTL: v.GetDuration("census_cache_ttl"),

		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),

		KafkaBrokers: splitList(v.GetString("kafka_brokers")),
		KafkaTopic:   v.GetString("kafka_topic"),

		AffordabilityModel: strings.ToLower(v.GetString("affordability_model")),
		MortgageRate:       v.GetFloat64("mortgage_rate"),
		LoanTermYears:      v.GetInt("loan_term_years"),

		Stage:          v.GetString("stage"),
		LogLevel:       v.GetString("log_level"),
		Port:           v.GetString("port"),
		ServiceVersion: v.GetString("service_version"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at request time.
func (c *Config) Validate() error {
	switch c.AffordabilityModel {
	case "linear":
	case "amortized":
		if c.MortgageRate <= 0 || c.MortgageRate >= 1 {
			return fmt.Errorf("MORTGAGE_RATE must be a fraction between 0 and 1, got %v", c.MortgageRate)
		}
		if c.LoanTermYears <= 0 {
			return fmt.Errorf("LOAN_TERM_YEARS must be positive, got %d", c.LoanTermYears)
		}
	default:
		return fmt.Errorf("unknown AFFORDABILITY_MODEL %q", c.AffordabilityModel)
	}
	if c.AITimeout <= 0 {
		return errors.New("AI_TIMEOUT must be positive")
	}
	if c.CensusCacheTTL <= 0 {
		return errors.New("CENSUS_CACHE_TTL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string. DATABASE_URL takes
// precedence over the individual DB_* settings.
func (c *Config) DatabaseURL() string {
	if c.DBURL != "" {
		return c.DBURL
	}
	sslMode := "require" // Use SSL for RDS
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable"
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// DatabaseConfigured reports whether a database was explicitly configured.
func (c *Config) DatabaseConfigured() bool {
	return c.DBURL != "" || c.DBPassword != ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
