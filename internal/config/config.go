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
	Server     ServerConfig
	DB         DBConfig
	JWT        JWTConfig
	Auth       AuthConfig
	S3         S3Config
	Log        LogConfig
	Generator  GeneratorConfig
	Transcribe TranscribeConfig
	CORS       CORSConfig
	CSV        CSVConfig
	Export     ExportConfig
	Fields     FieldsConfig
	Redis      RedisConfig
	NATS       NATSConfig
	Email      EmailConfig
	Audit      AuditConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider      string `mapstructure:"provider"`
	Region        string `mapstructure:"region"`
	FromAddress   string `mapstructure:"from_address"`
	FromName      string `mapstructure:"from_name"`
	NotifyAddress string `mapstructure:"notify_address"`
}

// ExportConfig holds scheduled export worker settings.
type ExportConfig struct {
	Dir          string `mapstructure:"dir"`
	Format       string `mapstructure:"format"`
	IntervalMins int    `mapstructure:"interval_mins"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GeneratorProviderConfig holds settings for a single LLM generation provider.
type GeneratorProviderConfig struct {
	Provider     string  `mapstructure:"provider"`
	APIKey       string  `mapstructure:"api_key"`
	BaseURL      string  `mapstructure:"base_url"`
	DefaultModel string  `mapstructure:"default_model"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	Temperature  float64 `mapstructure:"temperature"`
	TimeoutSecs  int     `mapstructure:"timeout_secs"`
}

// GeneratorConfig holds LLM generation backend settings with multi-provider support.
type GeneratorConfig struct {
	// Legacy flat fields (backwards-compatible)
	Provider     string  `mapstructure:"provider"`
	APIKey       string  `mapstructure:"api_key"`
	BaseURL      string  `mapstructure:"base_url"`
	DefaultModel string  `mapstructure:"default_model"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	Temperature  float64 `mapstructure:"temperature"`
	TimeoutSecs  int     `mapstructure:"timeout_secs"`

	// JSONMode asks backends that support it to constrain output to valid JSON.
	JSONMode bool `mapstructure:"json_mode"`

	// Multi-provider fields
	Primary   GeneratorProviderConfig `mapstructure:"primary"`
	Secondary GeneratorProviderConfig `mapstructure:"secondary"`
	Tertiary  GeneratorProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary generator provider config, falling back to legacy flat fields.
func (g *GeneratorConfig) PrimaryConfig() *GeneratorProviderConfig {
	if g.Primary.Provider != "" {
		return &g.Primary
	}
	return &GeneratorProviderConfig{
		Provider:     g.Provider,
		APIKey:       g.APIKey,
		BaseURL:      g.BaseURL,
		DefaultModel: g.DefaultModel,
		MaxTokens:    g.MaxTokens,
		Temperature:  g.Temperature,
		TimeoutSecs:  g.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary generator provider config, or nil if not configured.
func (g *GeneratorConfig) SecondaryConfig() *GeneratorProviderConfig {
	if g.Secondary.Provider != "" {
		return &g.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary generator provider config, or nil if not configured.
func (g *GeneratorConfig) TertiaryConfig() *GeneratorProviderConfig {
	if g.Tertiary.Provider != "" {
		return &g.Tertiary
	}
	return nil
}

// TranscribeConfig holds speech-to-text settings.
type TranscribeConfig struct {
	Provider    string `mapstructure:"provider"`
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// FieldsConfig holds field profile settings.
type FieldsConfig struct {
	ProfilesPath   string `mapstructure:"profiles_path"`
	Watch          bool   `mapstructure:"watch"`
	DefaultProfile string `mapstructure:"default_profile"`
}

// CSVConfig holds the append-only CSV record store settings.
type CSVConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig holds transcript cache settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// NATSConfig holds event publishing settings. An empty URL disables publishing.
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// AuditConfig holds completeness scoring settings.
type AuditConfig struct {
	MissingFieldPenalty float64 `mapstructure:"missing_field_penalty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds relational store settings. Driver selects between postgres and sqlite.
type DBConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the connection string for the configured driver.
func (d *DBConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
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

// AuthUser is one config-held API principal.
type AuthUser struct {
	Username     string
	PasswordHash string
	Role         string
}

// AuthConfig holds the config-held API credentials: one admin and one member
// principal. Auth is enforced only when at least one password hash is set,
// so a bare local deployment stays anonymous.
type AuthConfig struct {
	AdminUser          string `mapstructure:"admin_user"`
	AdminPasswordHash  string `mapstructure:"admin_password_hash"`
	MemberUser         string `mapstructure:"member_user"`
	MemberPasswordHash string `mapstructure:"member_password_hash"`
}

// Enabled reports whether any credential is configured.
func (a *AuthConfig) Enabled() bool {
	return a.AdminPasswordHash != "" || a.MemberPasswordHash != ""
}

// Users returns the configured principals.
func (a *AuthConfig) Users() []AuthUser {
	var users []AuthUser
	if a.AdminPasswordHash != "" {
		users = append(users, AuthUser{Username: a.AdminUser, PasswordHash: a.AdminPasswordHash, Role: "admin"})
	}
	if a.MemberPasswordHash != "" {
		users = append(users, AuthUser{Username: a.MemberUser, PasswordHash: a.MemberPasswordHash, Role: "member"})
	}
	return users
}

// S3Config holds AWS S3 settings for audio object storage.
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
}

// Load reads configuration from environment variables with the FIRESCRIBE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FIRESCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "firescribe")
	v.SetDefault("db.password", "firescribe_secret")
	v.SetDefault("db.name", "firescribe_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.path", "data/firescribe.db")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "firescribe")

	// Auth defaults (anonymous until a password hash is configured)
	v.SetDefault("auth.admin_user", "admin")
	v.SetDefault("auth.admin_password_hash", "")
	v.SetDefault("auth.member_user", "operator")
	v.SetDefault("auth.member_password_hash", "")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "firescribe-audio")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:3001,http://127.0.0.1:3001")

	// CSV record store defaults
	v.SetDefault("csv.path", "data/incidents.csv")

	// Export worker defaults
	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.format", "csv")
	v.SetDefault("export.interval_mins", 60)

	// Field profile defaults
	v.SetDefault("fields.profiles_path", "")
	v.SetDefault("fields.watch", true)
	v.SetDefault("fields.default_profile", "neris")

	// Redis transcript cache defaults (disabled unless addr is set)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "24h")

	// NATS event defaults (disabled unless url is set)
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "firescribe")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@firescribe.io")
	v.SetDefault("email.from_name", "FireScribe")
	v.SetDefault("email.notify_address", "")

	// Audit defaults
	v.SetDefault("audit.missing_field_penalty", 0.1)

	// Transcription defaults (OpenAI-compatible whisper server)
	v.SetDefault("transcribe.provider", "whisper")
	v.SetDefault("transcribe.base_url", "http://localhost:9000")
	v.SetDefault("transcribe.api_key", "")
	v.SetDefault("transcribe.model", "whisper-1")
	v.SetDefault("transcribe.timeout_secs", 300)

	// Generator defaults (legacy flat, local ollama)
	v.SetDefault("generator.provider", "ollama")
	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.base_url", "")
	v.SetDefault("generator.default_model", "qwen2.5:7b")
	v.SetDefault("generator.max_tokens", 4096)
	v.SetDefault("generator.temperature", 0.0)
	v.SetDefault("generator.timeout_secs", 120)
	v.SetDefault("generator.json_mode", true)

	// Generator primary/secondary/tertiary defaults
	v.SetDefault("generator.primary.provider", "")
	v.SetDefault("generator.primary.api_key", "")
	v.SetDefault("generator.primary.base_url", "")
	v.SetDefault("generator.primary.default_model", "")
	v.SetDefault("generator.primary.max_tokens", 4096)
	v.SetDefault("generator.primary.temperature", 0.0)
	v.SetDefault("generator.primary.timeout_secs", 120)
	v.SetDefault("generator.secondary.provider", "")
	v.SetDefault("generator.secondary.api_key", "")
	v.SetDefault("generator.secondary.base_url", "")
	v.SetDefault("generator.secondary.default_model", "")
	v.SetDefault("generator.secondary.max_tokens", 4096)
	v.SetDefault("generator.secondary.temperature", 0.0)
	v.SetDefault("generator.secondary.timeout_secs", 120)
	v.SetDefault("generator.tertiary.provider", "")
	v.SetDefault("generator.tertiary.api_key", "")
	v.SetDefault("generator.tertiary.base_url", "")
	v.SetDefault("generator.tertiary.default_model", "")
	v.SetDefault("generator.tertiary.max_tokens", 4096)
	v.SetDefault("generator.tertiary.temperature", 0.0)
	v.SetDefault("generator.tertiary.timeout_secs", 120)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "FIRESCRIBE_SERVER_PORT",
		"server.read_timeout":               "FIRESCRIBE_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "FIRESCRIBE_SERVER_WRITE_TIMEOUT",
		"server.environment":                "FIRESCRIBE_SERVER_ENVIRONMENT",
		"db.driver":                         "FIRESCRIBE_DB_DRIVER",
		"db.host":                           "FIRESCRIBE_DB_HOST",
		"db.port":                           "FIRESCRIBE_DB_PORT",
		"db.user":                           "FIRESCRIBE_DB_USER",
		"db.password":                       "FIRESCRIBE_DB_PASSWORD",
		"db.name":                           "FIRESCRIBE_DB_NAME",
		"db.sslmode":                        "FIRESCRIBE_DB_SSLMODE",
		"db.path":                           "FIRESCRIBE_DB_PATH",
		"db.max_open":                       "FIRESCRIBE_DB_MAX_OPEN",
		"db.max_idle":                       "FIRESCRIBE_DB_MAX_IDLE",
		"jwt.secret":                        "FIRESCRIBE_JWT_SECRET",
		"jwt.access_expiry":                 "FIRESCRIBE_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":                "FIRESCRIBE_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                        "FIRESCRIBE_JWT_ISSUER",
		"auth.admin_user":                   "FIRESCRIBE_AUTH_ADMIN_USER",
		"auth.admin_password_hash":          "FIRESCRIBE_AUTH_ADMIN_PASSWORD_HASH",
		"auth.member_user":                  "FIRESCRIBE_AUTH_MEMBER_USER",
		"auth.member_password_hash":         "FIRESCRIBE_AUTH_MEMBER_PASSWORD_HASH",
		"s3.region":                         "FIRESCRIBE_S3_REGION",
		"s3.bucket":                         "FIRESCRIBE_S3_BUCKET",
		"s3.endpoint":                       "FIRESCRIBE_S3_ENDPOINT",
		"s3.access_key":                     "FIRESCRIBE_S3_ACCESS_KEY",
		"s3.secret_key":                     "FIRESCRIBE_S3_SECRET_KEY",
		"s3.max_file_size_mb":               "FIRESCRIBE_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":                 "FIRESCRIBE_S3_PRESIGN_EXPIRY",
		"log.level":                         "FIRESCRIBE_LOG_LEVEL",
		"log.format":                        "FIRESCRIBE_LOG_FORMAT",
		"cors.allowed_origins":              "FIRESCRIBE_CORS_ALLOWED_ORIGINS",
		"csv.path":                          "FIRESCRIBE_CSV_PATH",
		"export.dir":                        "FIRESCRIBE_EXPORT_DIR",
		"export.format":                     "FIRESCRIBE_EXPORT_FORMAT",
		"export.interval_mins":              "FIRESCRIBE_EXPORT_INTERVAL_MINS",
		"fields.profiles_path":              "FIRESCRIBE_FIELDS_PROFILES_PATH",
		"fields.watch":                      "FIRESCRIBE_FIELDS_WATCH",
		"fields.default_profile":            "FIRESCRIBE_FIELDS_DEFAULT_PROFILE",
		"redis.addr":                        "FIRESCRIBE_REDIS_ADDR",
		"redis.password":                    "FIRESCRIBE_REDIS_PASSWORD",
		"redis.db":                          "FIRESCRIBE_REDIS_DB",
		"redis.ttl":                         "FIRESCRIBE_REDIS_TTL",
		"nats.url":                          "FIRESCRIBE_NATS_URL",
		"nats.subject_prefix":               "FIRESCRIBE_NATS_SUBJECT_PREFIX",
		"email.provider":                    "FIRESCRIBE_EMAIL_PROVIDER",
		"email.region":                      "FIRESCRIBE_EMAIL_REGION",
		"email.from_address":                "FIRESCRIBE_EMAIL_FROM_ADDRESS",
		"email.from_name":                   "FIRESCRIBE_EMAIL_FROM_NAME",
		"email.notify_address":              "FIRESCRIBE_EMAIL_NOTIFY_ADDRESS",
		"audit.missing_field_penalty":       "FIRESCRIBE_AUDIT_MISSING_FIELD_PENALTY",
		"transcribe.provider":               "FIRESCRIBE_TRANSCRIBE_PROVIDER",
		"transcribe.base_url":               "FIRESCRIBE_TRANSCRIBE_BASE_URL",
		"transcribe.api_key":                "FIRESCRIBE_TRANSCRIBE_API_KEY",
		"transcribe.model":                  "FIRESCRIBE_TRANSCRIBE_MODEL",
		"transcribe.timeout_secs":           "FIRESCRIBE_TRANSCRIBE_TIMEOUT_SECS",
		"generator.provider":                "FIRESCRIBE_GENERATOR_PROVIDER",
		"generator.api_key":                 "FIRESCRIBE_GENERATOR_API_KEY",
		"generator.base_url":                "FIRESCRIBE_GENERATOR_BASE_URL",
		"generator.default_model":           "FIRESCRIBE_GENERATOR_DEFAULT_MODEL",
		"generator.max_tokens":              "FIRESCRIBE_GENERATOR_MAX_TOKENS",
		"generator.temperature":             "FIRESCRIBE_GENERATOR_TEMPERATURE",
		"generator.timeout_secs":            "FIRESCRIBE_GENERATOR_TIMEOUT_SECS",
		"generator.json_mode":               "FIRESCRIBE_GENERATOR_JSON_MODE",
		"generator.primary.provider":        "FIRESCRIBE_GENERATOR_PRIMARY_PROVIDER",
		"generator.primary.api_key":         "FIRESCRIBE_GENERATOR_PRIMARY_API_KEY",
		"generator.primary.base_url":        "FIRESCRIBE_GENERATOR_PRIMARY_BASE_URL",
		"generator.primary.default_model":   "FIRESCRIBE_GENERATOR_PRIMARY_DEFAULT_MODEL",
		"generator.primary.max_tokens":      "FIRESCRIBE_GENERATOR_PRIMARY_MAX_TOKENS",
		"generator.primary.temperature":     "FIRESCRIBE_GENERATOR_PRIMARY_TEMPERATURE",
		"generator.primary.timeout_secs":    "FIRESCRIBE_GENERATOR_PRIMARY_TIMEOUT_SECS",
		"generator.secondary.provider":      "FIRESCRIBE_GENERATOR_SECONDARY_PROVIDER",
		"generator.secondary.api_key":       "FIRESCRIBE_GENERATOR_SECONDARY_API_KEY",
		"generator.secondary.base_url":      "FIRESCRIBE_GENERATOR_SECONDARY_BASE_URL",
		"generator.secondary.default_model": "FIRESCRIBE_GENERATOR_SECONDARY_DEFAULT_MODEL",
		"generator.secondary.max_tokens":    "FIRESCRIBE_GENERATOR_SECONDARY_MAX_TOKENS",
		"generator.secondary.temperature":   "FIRESCRIBE_GENERATOR_SECONDARY_TEMPERATURE",
		"generator.secondary.timeout_secs":  "FIRESCRIBE_GENERATOR_SECONDARY_TIMEOUT_SECS",
		"generator.tertiary.provider":       "FIRESCRIBE_GENERATOR_TERTIARY_PROVIDER",
		"generator.tertiary.api_key":        "FIRESCRIBE_GENERATOR_TERTIARY_API_KEY",
		"generator.tertiary.base_url":       "FIRESCRIBE_GENERATOR_TERTIARY_BASE_URL",
		"generator.tertiary.default_model":  "FIRESCRIBE_GENERATOR_TERTIARY_DEFAULT_MODEL",
		"generator.tertiary.max_tokens":     "FIRESCRIBE_GENERATOR_TERTIARY_MAX_TOKENS",
		"generator.tertiary.temperature":    "FIRESCRIBE_GENERATOR_TERTIARY_TEMPERATURE",
		"generator.tertiary.timeout_secs":   "FIRESCRIBE_GENERATOR_TERTIARY_TIMEOUT_SECS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FIRESCRIBE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FIRESCRIBE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Driver:   v.GetString("db.driver"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		Path:     v.GetString("db.path"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.Auth = AuthConfig{
		AdminUser:          v.GetString("auth.admin_user"),
		AdminPasswordHash:  v.GetString("auth.admin_password_hash"),
		MemberUser:         v.GetString("auth.member_user"),
		MemberPasswordHash: v.GetString("auth.member_password_hash"),
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

	cfg.CSV = CSVConfig{
		Path: v.GetString("csv.path"),
	}

	cfg.Export = ExportConfig{
		Dir:          v.GetString("export.dir"),
		Format:       v.GetString("export.format"),
		IntervalMins: v.GetInt("export.interval_mins"),
	}

	cfg.Fields = FieldsConfig{
		ProfilesPath:   v.GetString("fields.profiles_path"),
		Watch:          v.GetBool("fields.watch"),
		DefaultProfile: v.GetString("fields.default_profile"),
	}

	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
		TTL:      v.GetDuration("redis.ttl"),
	}

	cfg.NATS = NATSConfig{
		URL:           v.GetString("nats.url"),
		SubjectPrefix: v.GetString("nats.subject_prefix"),
	}

	cfg.Email = EmailConfig{
		Provider:      v.GetString("email.provider"),
		Region:        v.GetString("email.region"),
		FromAddress:   v.GetString("email.from_address"),
		FromName:      v.GetString("email.from_name"),
		NotifyAddress: v.GetString("email.notify_address"),
	}

	cfg.Audit = AuditConfig{
		MissingFieldPenalty: v.GetFloat64("audit.missing_field_penalty"),
	}

	cfg.Transcribe = TranscribeConfig{
		Provider:    v.GetString("transcribe.provider"),
		BaseURL:     v.GetString("transcribe.base_url"),
		APIKey:      v.GetString("transcribe.api_key"),
		Model:       v.GetString("transcribe.model"),
		TimeoutSecs: v.GetInt("transcribe.timeout_secs"),
	}

	cfg.Generator = GeneratorConfig{
		Provider:     v.GetString("generator.provider"),
		APIKey:       v.GetString("generator.api_key"),
		BaseURL:      v.GetString("generator.base_url"),
		DefaultModel: v.GetString("generator.default_model"),
		MaxTokens:    v.GetInt("generator.max_tokens"),
		Temperature:  v.GetFloat64("generator.temperature"),
		TimeoutSecs:  v.GetInt("generator.timeout_secs"),
		JSONMode:     v.GetBool("generator.json_mode"),
		Primary: GeneratorProviderConfig{
			Provider:     v.GetString("generator.primary.provider"),
			APIKey:       v.GetString("generator.primary.api_key"),
			BaseURL:      v.GetString("generator.primary.base_url"),
			DefaultModel: v.GetString("generator.primary.default_model"),
			MaxTokens:    v.GetInt("generator.primary.max_tokens"),
			Temperature:  v.GetFloat64("generator.primary.temperature"),
			TimeoutSecs:  v.GetInt("generator.primary.timeout_secs"),
		},
		Secondary: GeneratorProviderConfig{
			Provider:     v.GetString("generator.secondary.provider"),
			APIKey:       v.GetString("generator.secondary.api_key"),
			BaseURL:      v.GetString("generator.secondary.base_url"),
			DefaultModel: v.GetString("generator.secondary.default_model"),
			MaxTokens:    v.GetInt("generator.secondary.max_tokens"),
			Temperature:  v.GetFloat64("generator.secondary.temperature"),
			TimeoutSecs:  v.GetInt("generator.secondary.timeout_secs"),
		},
		Tertiary: GeneratorProviderConfig{
			Provider:     v.GetString("generator.tertiary.provider"),
			APIKey:       v.GetString("generator.tertiary.api_key"),
			BaseURL:      v.GetString("generator.tertiary.base_url"),
			DefaultModel: v.GetString("generator.tertiary.default_model"),
			MaxTokens:    v.GetInt("generator.tertiary.max_tokens"),
			Temperature:  v.GetFloat64("generator.tertiary.temperature"),
			TimeoutSecs:  v.GetInt("generator.tertiary.timeout_secs"),
		},
	}

	return cfg, nil
}
