package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	redisclient "github.com/yungbote/rateio-sync-backend/internal/clients/redis"
	"github.com/yungbote/rateio-sync-backend/internal/data/db"
	rateiomod "github.com/yungbote/rateio-sync-backend/internal/modules/rateio"
	"github.com/yungbote/rateio-sync-backend/internal/platform/envutil"
	"github.com/yungbote/rateio-sync-backend/internal/platform/gcp"
	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
	"github.com/yungbote/rateio-sync-backend/internal/platform/sheets"
	"github.com/yungbote/rateio-sync-backend/internal/services"
)

type AuthConfig struct {
	// JWTSecret enables local HS256 verification. Without it sessions are checked
	// remotely against URL.
	JWTSecret   string
	JWTAudience string
	URL         string
	APIKey      string
	Policy      services.AuthPolicy
}

type Config struct {
	LogMode     string
	Port        string
	ServiceName string
	Version     string
	Environment string

	Postgres      db.PostgresConfig
	AutoMigrate   bool
	MigrateShared bool
	ApplyFunction string

	Redis       redisclient.Config
	RedisPrefix string

	Sheets sheets.Config
	Auth   AuthConfig
}

// fileOverlay is the optional YAML file named by RATEIO_CONFIG_FILE. Values set there win
// over the environment.
type fileOverlay struct {
	ApplyFunction *string `yaml:"apply_function"`
	Policy        struct {
		ModuleKey string   `yaml:"module_key"`
		Roles     []string `yaml:"roles"`
	} `yaml:"policy"`
	Sheets struct {
		SpreadsheetID string `yaml:"spreadsheet_id"`
		Range         string `yaml:"range"`
		Endpoint      string `yaml:"endpoint"`
	} `yaml:"sheets"`
}

// LoadConfig reads .env (when present), the environment and the YAML overlay.
func LoadConfig(log *logger.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("could not load .env", "error", err)
	}

	cfg := Config{
		LogMode:     envutil.String("LOG_MODE", "development"),
		Port:        envutil.String("PORT", "8080"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "rateio-sync"),
		Version:     envutil.String("SERVICE_VERSION", "dev"),
		Environment: envutil.String("ENVIRONMENT", "development"),

		Postgres: db.PostgresConfig{
			DSN:          envutil.String("DATABASE_URL", ""),
			MaxOpenConns: envutil.Int("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envutil.Int("DB_MAX_IDLE_CONNS", 5),
		},
		AutoMigrate:   envutil.Bool("AUTO_MIGRATE", false),
		MigrateShared: envutil.Bool("MIGRATE_SHARED_TABLES", false),
		ApplyFunction: envutil.String("RATEIO_APPLY_FUNCTION", db.ApplyFunctionName),

		Redis: redisclient.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
		},
		RedisPrefix: envutil.String("REDIS_PREFIX", "rateio:"),

		Sheets: sheets.Config{
			SpreadsheetID: envutil.String("GOOGLE_SHEETS_SPREADSHEET_ID", ""),
			Range:         envutil.String("GOOGLE_SHEETS_RANGE", ""),
			APIKey:        envutil.String("GOOGLE_SHEETS_API_KEY", ""),
			Endpoint:      envutil.String("GOOGLE_SHEETS_ENDPOINT", ""),
		},

		Auth: AuthConfig{
			JWTSecret:   envutil.String("AUTH_JWT_SECRET", ""),
			JWTAudience: envutil.String("AUTH_JWT_AUDIENCE", ""),
			URL:         envutil.String("AUTH_URL", ""),
			APIKey:      envutil.String("AUTH_ANON_KEY", ""),
			Policy: services.AuthPolicy{
				ModuleKey: envutil.String("RATEIO_MODULE_KEY", rateiomod.ModuleKey),
				Roles:     envutil.List("RATEIO_ALLOWED_ROLES", []string{"admin", "financeiro"}),
			},
		},
	}
	if strings.EqualFold(cfg.ApplyFunction, "none") {
		cfg.ApplyFunction = ""
	}

	sa, err := gcp.ServiceAccountFromEnv()
	if err != nil {
		return Config{}, fmt.Errorf("google service account: %w", err)
	}
	cfg.Sheets.ServiceAccountEmail = sa.Email
	cfg.Sheets.PrivateKeyPEM = sa.PrivateKey
	cfg.Sheets.TokenURL = sa.TokenURI

	if path := envutil.String("RATEIO_CONFIG_FILE", ""); path != "" {
		if err := applyOverlay(&cfg, path); err != nil {
			return Config{}, err
		}
		log.Info("config overlay applied", "path", path)
	}
	return cfg, nil
}

func applyOverlay(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var ov fileOverlay
	if err := yaml.Unmarshal(raw, &ov); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if ov.ApplyFunction != nil {
		cfg.ApplyFunction = strings.TrimSpace(*ov.ApplyFunction)
	}
	if ov.Policy.ModuleKey != "" {
		cfg.Auth.Policy.ModuleKey = ov.Policy.ModuleKey
	}
	if len(ov.Policy.Roles) > 0 {
		cfg.Auth.Policy.Roles = ov.Policy.Roles
	}
	if ov.Sheets.SpreadsheetID != "" {
		cfg.Sheets.SpreadsheetID = ov.Sheets.SpreadsheetID
	}
	if ov.Sheets.Range != "" {
		cfg.Sheets.Range = ov.Sheets.Range
	}
	if ov.Sheets.Endpoint != "" {
		cfg.Sheets.Endpoint = ov.Sheets.Endpoint
	}
	return nil
}

// Validate checks what serving needs. Missing spreadsheet credentials are not fatal: the
// reader fails closed per request and explicit planilha rows still work.
func (c Config) Validate() error {
	var missing []string
	if c.Postgres.DSN == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Auth.JWTSecret == "" && c.Auth.URL == "" {
		missing = append(missing, "AUTH_JWT_SECRET or AUTH_URL")
	}
	if c.Auth.Policy.ModuleKey == "" {
		missing = append(missing, "RATEIO_MODULE_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
