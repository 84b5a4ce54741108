package config

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	JWT      JWTConfig      `koanf:"jwt"`
	Storage  StorageConfig  `koanf:"storage"`
	App      AppConfig      `koanf:"app"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string     `koanf:"host"`
	Port    int        `koanf:"port"`
	Mode    string     `koanf:"mode"`
	Timeout string     `koanf:"timeout"`
	CORS    CORSConfig `koanf:"cors"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// JWTConfig holds bearer token settings.
type JWTConfig struct {
	Issuer            string `koanf:"issuer"`
	Audience          string `koanf:"audience"`
	SecurityKey       string `koanf:"security_key"`
	ExpirationMinutes int    `koanf:"expiration_minutes"`
}

// StorageConfig holds file storage settings. Type selects the provider.
type StorageConfig struct {
	Type       string           `koanf:"type"`
	FileSystem FileSystemConfig `koanf:"filesystem"`
	S3         S3Config         `koanf:"s3"`
}

// FileSystemConfig holds filesystem storage settings.
type FileSystemConfig struct {
	Folder string `koanf:"folder"`
}

// S3Config holds S3-compatible storage settings.
type S3Config struct {
	Endpoint  string `koanf:"endpoint"`
	Region    string `koanf:"region"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
}

// AppConfig holds miscellaneous application settings.
type AppConfig struct {
	SupportedCultures []string      `koanf:"supported_cultures"`
	Swagger           SwaggerConfig `koanf:"swagger"`
}

// SwaggerConfig holds the credentials guarding the API documentation UI.
// The UI itself is served by deployment tooling; the application only
// validates and exposes these settings.
type SwaggerConfig struct {
	Enabled  bool   `koanf:"enabled"`
	UserName string `koanf:"username"`
	Password string `koanf:"password"`
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__SERVER__PORT=9090 overrides server.port and
// APP__JWT__SECURITY_KEY overrides jwt.security_key.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Load YAML config file.
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	// Overlay environment variables with prefix APP__.
	// APP__SERVER__PORT -> server.port
	// APP__DATABASE__POOL__MAX_IDLE_CONNS -> database.pool.max_idle_conns
	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.TrimPrefix(s, "APP__")
		key = strings.ToLower(key)
		key = strings.ReplaceAll(key, "__", ".")
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints and supported values.
func (c *Config) Validate() error {
	// Validate server.mode.
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	// Validate server.port range.
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	// Validate server.host.
	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host

	// Validate database.driver.
	switch c.Database.Driver {
	case "sqlite", "postgres":
		// ok
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", c.Database.Driver, "sqlite", "postgres")
	}

	if c.Database.Driver == "sqlite" {
		sqlitePath := strings.TrimSpace(c.Database.SQLite.Path)
		if sqlitePath == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		c.Database.SQLite.Path = sqlitePath
	}

	// When driver is postgres, required connection fields must be valid.
	if c.Database.Driver == "postgres" {
		host := strings.TrimSpace(c.Database.Postgres.Host)
		if host == "" {
			return fmt.Errorf("database.postgres.host is required when driver is postgres")
		}
		if c.Database.Postgres.Port < 1 || c.Database.Postgres.Port > 65535 {
			return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", c.Database.Postgres.Port)
		}
		user := strings.TrimSpace(c.Database.Postgres.User)
		if user == "" {
			return fmt.Errorf("database.postgres.user is required when driver is postgres")
		}
		dbName := strings.TrimSpace(c.Database.Postgres.DBName)
		if dbName == "" {
			return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
		}
		sslMode := strings.TrimSpace(c.Database.Postgres.SSLMode)

		switch sslMode {
		case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
			// ok
		default:
			return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of %q, %q, %q, %q, %q, %q", c.Database.Postgres.SSLMode, "disable", "allow", "prefer", "require", "verify-ca", "verify-full")
		}
		if c.Server.Mode == gin.ReleaseMode {
			switch sslMode {
			case "require", "verify-ca", "verify-full":
				// ok
			default:
				return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q, %q, %q", c.Database.Postgres.SSLMode, gin.ReleaseMode, "require", "verify-ca", "verify-full")
			}
		}

		c.Database.Postgres.Host = host
		c.Database.Postgres.User = user
		c.Database.Postgres.DBName = dbName
		c.Database.Postgres.SSLMode = sslMode
	}

	// Normalize optional duration fields: whitespace-only means unset.
	c.Server.Timeout = strings.TrimSpace(c.Server.Timeout)
	c.Server.CORS.MaxAge = strings.TrimSpace(c.Server.CORS.MaxAge)
	c.Database.Pool.ConnMaxLifetime = strings.TrimSpace(c.Database.Pool.ConnMaxLifetime)

	// Validate server.timeout (optional; must be a valid Go duration if set).
	if t := c.Server.Timeout; t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return fmt.Errorf("invalid server.timeout %q: %w", c.Server.Timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid server.timeout %q: must be greater than 0", c.Server.Timeout)
		}
	}

	// Validate server.cors.max_age (optional; must be a valid Go duration if set).
	if ma := c.Server.CORS.MaxAge; ma != "" {
		d, err := time.ParseDuration(ma)
		if err != nil {
			return fmt.Errorf("invalid server.cors.max_age %q: must be a valid duration (e.g. \"24h\", \"3600s\"): %w", c.Server.CORS.MaxAge, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid server.cors.max_age %q: must be greater than 0", c.Server.CORS.MaxAge)
		}
	}

	// Validate database.pool.conn_max_lifetime (optional; must be positive if set).
	if lm := c.Database.Pool.ConnMaxLifetime; lm != "" {
		d, err := time.ParseDuration(lm)
		if err != nil {
			return fmt.Errorf("invalid database.pool.conn_max_lifetime %q: %w", c.Database.Pool.ConnMaxLifetime, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid database.pool.conn_max_lifetime %q: must be greater than 0", c.Database.Pool.ConnMaxLifetime)
		}
	}

	// Validate jwt settings.
	securityKey := strings.TrimSpace(c.JWT.SecurityKey)
	if securityKey == "" {
		return fmt.Errorf("jwt.security_key is required")
	}
	if len(securityKey) < 32 {
		return fmt.Errorf("invalid jwt.security_key: must be at least 32 characters")
	}
	if c.Server.Mode == gin.ReleaseMode {
		if CountSecretClasses(securityKey) < 3 {
			return fmt.Errorf("jwt.security_key must include at least 3 character classes (lowercase, uppercase, digit, symbol) in release mode")
		}
	}
	c.JWT.SecurityKey = securityKey

	issuer := strings.TrimSpace(c.JWT.Issuer)
	if issuer == "" {
		return fmt.Errorf("jwt.issuer is required")
	}
	c.JWT.Issuer = issuer

	audience := strings.TrimSpace(c.JWT.Audience)
	if audience == "" {
		return fmt.Errorf("jwt.audience is required")
	}
	c.JWT.Audience = audience

	if c.JWT.ExpirationMinutes <= 0 {
		return fmt.Errorf("invalid jwt.expiration_minutes %d: must be greater than 0", c.JWT.ExpirationMinutes)
	}

	// Validate storage settings.
	switch c.Storage.Type {
	case "filesystem":
		folder := strings.TrimSpace(c.Storage.FileSystem.Folder)
		if folder == "" {
			return fmt.Errorf("storage.filesystem.folder is required when storage.type is filesystem")
		}
		c.Storage.FileSystem.Folder = folder
	case "s3":
		s3Fields := []struct {
			name  string
			value *string
		}{
			{"storage.s3.endpoint", &c.Storage.S3.Endpoint},
			{"storage.s3.region", &c.Storage.S3.Region},
			{"storage.s3.access_key", &c.Storage.S3.AccessKey},
			{"storage.s3.secret_key", &c.Storage.S3.SecretKey},
			{"storage.s3.bucket", &c.Storage.S3.Bucket},
		}
		for _, f := range s3Fields {
			v := strings.TrimSpace(*f.value)
			if v == "" {
				return fmt.Errorf("%s is required when storage.type is s3", f.name)
			}
			*f.value = v
		}
	default:
		return fmt.Errorf("invalid storage.type %q: must be one of %q, %q", c.Storage.Type, "filesystem", "s3")
	}

	// Validate app.supported_cultures: deduplicate, reject blanks.
	cultures := make([]string, 0, len(c.App.SupportedCultures))
	seenCultures := make(map[string]struct{}, len(c.App.SupportedCultures))
	for idx, culture := range c.App.SupportedCultures {
		normalized := strings.TrimSpace(culture)
		if normalized == "" {
			return fmt.Errorf("app.supported_cultures[%d] cannot be empty", idx)
		}
		if _, exists := seenCultures[normalized]; exists {
			continue
		}
		seenCultures[normalized] = struct{}{}
		cultures = append(cultures, normalized)
	}
	if len(cultures) == 0 {
		cultures = []string{"en"}
	}
	c.App.SupportedCultures = cultures

	// Validate swagger credentials (when enabled).
	if c.App.Swagger.Enabled {
		userName := strings.TrimSpace(c.App.Swagger.UserName)
		if userName == "" {
			return fmt.Errorf("app.swagger.username is required when swagger is enabled")
		}
		password := strings.TrimSpace(c.App.Swagger.Password)
		if password == "" {
			return fmt.Errorf("app.swagger.password is required when swagger is enabled")
		}
		c.App.Swagger.UserName = userName
		c.App.Swagger.Password = password
	}

	// Validate log.level.
	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	// Validate log.format.
	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "text", "json":
		c.Log.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", c.Log.Format, "text", "json")
	}

	return nil
}

// TokenExpiration returns the configured token lifetime as a duration.
func (c *JWTConfig) TokenExpiration() time.Duration {
	return time.Duration(c.ExpirationMinutes) * time.Minute
}

// CountSecretClasses counts how many character classes (lowercase, uppercase,
// digit, symbol) are present in the given secret string.
func CountSecretClasses(secret string) int {
	hasLower := false
	hasUpper := false
	hasDigit := false
	hasSymbol := false

	for _, r := range secret {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	classes := 0
	if hasLower {
		classes++
	}
	if hasUpper {
		classes++
	}
	if hasDigit {
		classes++
	}
	if hasSymbol {
		classes++
	}

	return classes
}
