package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Storage  StorageConfig
	Arpej    ArpejConfig
	SMTP     SMTPConfig
	Pipeline PipelineConfig
	Server   ServerConfig
}

// StorageConfig holds ledger-store configuration
type StorageConfig struct {
	Type        string // "mongodb", "dynamodb", "postgresql"
	MongoDBURI  string
	Database    string
	Collection  string
	Region      string // For AWS DynamoDB
	TableName   string
	Endpoint    string // Custom endpoint for local testing
	PostgresURI string
}

// ArpejConfig holds upstream booking-API configuration
type ArpejConfig struct {
	PublicBaseURL string
	AdminBaseURL  string
	Timeout       time.Duration
}

// SMTPConfig holds email submission configuration
type SMTPConfig struct {
	Host      string
	Port      int
	Address   string
	Password  string
	Recipient string
}

// PipelineConfig holds per-run pipeline configuration
type PipelineConfig struct {
	MappingFile    string
	PriceCeiling   float64
	MaxConcurrency int
	Interval       time.Duration // 0 disables the scheduled runner
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Storage: StorageConfig{
			Type:        getEnv("STORAGE_TYPE", "mongodb"),
			MongoDBURI:  getEnv("MONGODB_URI", defaultMongoURI()),
			Database:    getEnv("DATABASE_NAME", ""),
			Collection:  getEnv("COLLECTION_NAME", ""),
			Region:      getEnv("AWS_REGION", "us-west-2"),
			TableName:   getEnv("TABLE_NAME", "sent_offers"),
			Endpoint:    getEnv("DYNAMODB_ENDPOINT", ""), // For local DynamoDB
			PostgresURI: getEnv("POSTGRES_URI", ""),
		},
		Arpej: ArpejConfig{
			PublicBaseURL: getEnv("ARPEJ_PUBLIC_URL", "https://www.arpej.fr"),
			AdminBaseURL:  getEnv("ARPEJ_ADMIN_URL", "https://admin.arpej.fr"),
			Timeout:       getEnvDuration("API_TIMEOUT", 30*time.Second),
		},
		SMTP: SMTPConfig{
			Host:      getEnv("SMTP_HOST", ""),
			Port:      getEnvInt("SMTP_PORT", 587),
			Address:   getEnv("EMAIL", ""),
			Password:  getEnv("PASSWORD", ""),
			Recipient: getEnv("NOTIFICATION_EMAIL", ""),
		},
		Pipeline: PipelineConfig{
			MappingFile:    getEnv("MAPPING_FILE", "url_id_mapping.txt"),
			PriceCeiling:   getEnvFloat("PRICE_CEILING", 600),
			MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
			Interval:       getEnvDuration("POLL_INTERVAL", 0),
		},
		Server: ServerConfig{
			Port: getEnvInt("PORT", 3000),
		},
	}

	return cfg, nil
}

// defaultMongoURI builds the cluster URI from the legacy DB_USER/DB_PASSWORD
// pair when MONGODB_URI is not set directly. Empty credentials yield an empty
// URI, which the storage layer reports as an unconfigured store.
func defaultMongoURI() string {
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	if user == "" || password == "" {
		return ""
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@cluster.urbto.mongodb.net/?retryWrites=true&w=majority&appName=cluster", user, password)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
