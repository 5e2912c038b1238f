package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	Log       LogConfig
	Analysis  AnalysisConfig
	Workspace WorkspaceConfig
	CORS      CORSConfig
	Email     EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings for the spreadsheet archive.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds email delivery settings for report export.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// AnalysisProviderConfig holds settings for a single analysis provider.
type AnalysisProviderConfig struct {
	Provider    string `mapstructure:"provider"`
	Endpoint    string `mapstructure:"endpoint"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// AnalysisConfig holds analysis provider settings. The flat fields are the
// primary provider; Fallback, when its provider is set, is tried after the
// primary has failed MaxFailures consecutive times or returns a retryable
// error.
type AnalysisConfig struct {
	Provider    string `mapstructure:"provider"`
	Endpoint    string `mapstructure:"endpoint"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`

	Fallback    AnalysisProviderConfig `mapstructure:"fallback"`
	MaxFailures int                    `mapstructure:"max_failures"`
}

// PrimaryConfig returns the primary provider config.
func (a *AnalysisConfig) PrimaryConfig() *AnalysisProviderConfig {
	return &AnalysisProviderConfig{
		Provider:    a.Provider,
		Endpoint:    a.Endpoint,
		APIKey:      a.APIKey,
		Model:       a.Model,
		TimeoutSecs: a.TimeoutSecs,
	}
}

// FallbackConfig returns the fallback provider config, or nil if not configured.
func (a *AnalysisConfig) FallbackConfig() *AnalysisProviderConfig {
	if a.Fallback.Provider != "" {
		return &a.Fallback
	}
	return nil
}

// WorkspaceConfig holds workspace panel settings.
type WorkspaceConfig struct {
	PreviewRows         int           `mapstructure:"preview_rows"`
	SettleDelay         time.Duration `mapstructure:"settle_delay"`
	IdleTTL             time.Duration `mapstructure:"idle_ttl"`
	ReapInterval        time.Duration `mapstructure:"reap_interval"`
	ConversationTimeout time.Duration `mapstructure:"conversation_timeout"`
}

// Load reads configuration from environment variables with the BRITTA_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BRITTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "britta")
	v.SetDefault("db.password", "britta_secret")
	v.SetDefault("db.name", "britta_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "britta")

	// S3 defaults
	v.SetDefault("s3.region", "eu-north-1")
	v.SetDefault("s3.bucket", "britta-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 10)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:5173,http://127.0.0.1:5173")

	// Analysis defaults
	v.SetDefault("analysis.provider", "remote")
	v.SetDefault("analysis.endpoint", "http://localhost:8081")
	v.SetDefault("analysis.api_key", "")
	v.SetDefault("analysis.model", "")
	v.SetDefault("analysis.timeout_secs", 120)
	v.SetDefault("analysis.max_failures", 3)
	v.SetDefault("analysis.fallback.provider", "local")
	v.SetDefault("analysis.fallback.endpoint", "")
	v.SetDefault("analysis.fallback.api_key", "")
	v.SetDefault("analysis.fallback.model", "")
	v.SetDefault("analysis.fallback.timeout_secs", 120)

	// Workspace defaults
	v.SetDefault("workspace.preview_rows", 10)
	v.SetDefault("workspace.settle_delay", "800ms")
	v.SetDefault("workspace.idle_ttl", "30m")
	v.SetDefault("workspace.reap_interval", "5m")
	v.SetDefault("workspace.conversation_timeout", "30s")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-north-1")
	v.SetDefault("email.from_address", "noreply@britta.app")
	v.SetDefault("email.from_name", "Britta")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "BRITTA_SERVER_PORT",
		"server.read_timeout":            "BRITTA_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "BRITTA_SERVER_WRITE_TIMEOUT",
		"server.environment":             "BRITTA_SERVER_ENVIRONMENT",
		"db.host":                        "BRITTA_DB_HOST",
		"db.port":                        "BRITTA_DB_PORT",
		"db.user":                        "BRITTA_DB_USER",
		"db.password":                    "BRITTA_DB_PASSWORD",
		"db.name":                        "BRITTA_DB_NAME",
		"db.sslmode":                     "BRITTA_DB_SSLMODE",
		"db.max_open":                    "BRITTA_DB_MAX_OPEN",
		"db.max_idle":                    "BRITTA_DB_MAX_IDLE",
		"jwt.secret":                     "BRITTA_JWT_SECRET",
		"jwt.access_expiry":              "BRITTA_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":             "BRITTA_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                     "BRITTA_JWT_ISSUER",
		"s3.region":                      "BRITTA_S3_REGION",
		"s3.bucket":                      "BRITTA_S3_BUCKET",
		"s3.endpoint":                    "BRITTA_S3_ENDPOINT",
		"s3.access_key":                  "BRITTA_S3_ACCESS_KEY",
		"s3.secret_key":                  "BRITTA_S3_SECRET_KEY",
		"s3.max_file_size_mb":            "BRITTA_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":              "BRITTA_S3_PRESIGN_EXPIRY",
		"log.level":                      "BRITTA_LOG_LEVEL",
		"log.format":                     "BRITTA_LOG_FORMAT",
		"log.output":                     "BRITTA_LOG_OUTPUT",
		"cors.allowed_origins":           "BRITTA_CORS_ALLOWED_ORIGINS",
		"analysis.provider":              "BRITTA_ANALYSIS_PROVIDER",
		"analysis.endpoint":              "BRITTA_ANALYSIS_ENDPOINT",
		"analysis.api_key":               "BRITTA_ANALYSIS_API_KEY",
		"analysis.model":                 "BRITTA_ANALYSIS_MODEL",
		"analysis.timeout_secs":          "BRITTA_ANALYSIS_TIMEOUT_SECS",
		"analysis.max_failures":          "BRITTA_ANALYSIS_MAX_FAILURES",
		"analysis.fallback.provider":     "BRITTA_ANALYSIS_FALLBACK_PROVIDER",
		"analysis.fallback.endpoint":     "BRITTA_ANALYSIS_FALLBACK_ENDPOINT",
		"analysis.fallback.api_key":      "BRITTA_ANALYSIS_FALLBACK_API_KEY",
		"analysis.fallback.model":        "BRITTA_ANALYSIS_FALLBACK_MODEL",
		"analysis.fallback.timeout_secs": "BRITTA_ANALYSIS_FALLBACK_TIMEOUT_SECS",
		"workspace.preview_rows":         "BRITTA_WORKSPACE_PREVIEW_ROWS",
		"workspace.settle_delay":         "BRITTA_WORKSPACE_SETTLE_DELAY",
		"workspace.idle_ttl":             "BRITTA_WORKSPACE_IDLE_TTL",
		"workspace.reap_interval":        "BRITTA_WORKSPACE_REAP_INTERVAL",
		"workspace.conversation_timeout": "BRITTA_WORKSPACE_CONVERSATION_TIMEOUT",
		"email.provider":                 "BRITTA_EMAIL_PROVIDER",
		"email.region":                   "BRITTA_EMAIL_REGION",
		"email.from_address":             "BRITTA_EMAIL_FROM_ADDRESS",
		"email.from_name":                "BRITTA_EMAIL_FROM_NAME",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BRITTA_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BRITTA_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
		Output: v.GetString("log.output"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Analysis = AnalysisConfig{
		Provider:    v.GetString("analysis.provider"),
		Endpoint:    v.GetString("analysis.endpoint"),
		APIKey:      v.GetString("analysis.api_key"),
		Model:       v.GetString("analysis.model"),
		TimeoutSecs: v.GetInt("analysis.timeout_secs"),
		MaxFailures: v.GetInt("analysis.max_failures"),
		Fallback: AnalysisProviderConfig{
			Provider:    v.GetString("analysis.fallback.provider"),
			Endpoint:    v.GetString("analysis.fallback.endpoint"),
			APIKey:      v.GetString("analysis.fallback.api_key"),
			Model:       v.GetString("analysis.fallback.model"),
			TimeoutSecs: v.GetInt("analysis.fallback.timeout_secs"),
		},
	}

	cfg.Workspace = WorkspaceConfig{
		PreviewRows:         v.GetInt("workspace.preview_rows"),
		SettleDelay:         v.GetDuration("workspace.settle_delay"),
		IdleTTL:             v.GetDuration("workspace.idle_ttl"),
		ReapInterval:        v.GetDuration("workspace.reap_interval"),
		ConversationTimeout: v.GetDuration("workspace.conversation_timeout"),
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations that are unsafe to run in production:
// wildcard or localhost CORS origins and the default JWT secret.
func (c *Config) Validate() error {
	if c.Server.Environment != "production" {
		return nil
	}
	if c.JWT.Secret == "change-me-in-production" {
		return fmt.Errorf("config: default JWT secret is not allowed in production")
	}
	for _, o := range c.CORS.AllowedOrigins {
		if o == "*" {
			return fmt.Errorf("config: CORS wildcard origin is not allowed in production")
		}
		if strings.Contains(o, "localhost") || strings.Contains(o, "127.0.0.1") {
			return fmt.Errorf("config: localhost CORS origin %q is not allowed in production", o)
		}
	}
	return nil
}
