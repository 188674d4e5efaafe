package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Uploads UploadConfig
	Gmail   GmailConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=bst_facturas"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type UploadConfig struct {
	// Dir is where invoice attachments are stored on disk.
	Dir string `env:"UPLOAD_DIR, default=uploads"`
	// MaxFileSize is the largest accepted attachment, in bytes.
	MaxFileSize int64 `env:"MAX_FILE_SIZE, default=10485760"`
	// ExportDir is where generated Excel exports are written.
	ExportDir string `env:"EXPORT_DIR, default=exports"`
}

type GmailConfig struct {
	// CredentialsPath points at the OAuth client credentials JSON.
	CredentialsPath string `env:"GMAIL_CREDENTIALS, default=credentials.json"`
	// TokenPath is where the exchanged OAuth token is persisted.
	TokenPath string `env:"GMAIL_TOKEN, default=token.json"`
	// DefaultUserEmail is the account assigned to invoices ingested from mail.
	DefaultUserEmail string `env:"GMAIL_DEFAULT_USER, default=gerencia@bst.com.co"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
