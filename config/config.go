package config

import (
	"context"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration loaded from the environment.
type Config struct {
	Port string `env:"PORT,default=8080"`
	Env  string `env:"APP_ENV,default=development"`

	DBDriver string `env:"DB_DRIVER,default=mysql"`
	MySQLURL string `env:"MYSQL_URL"`
	DBURL    string `env:"DATABASE_URL"`
	DBUser   string `env:"DB_USER,default=root"`
	DBPass   string `env:"DB_PASS"`
	DBHost   string `env:"DB_HOST,default=127.0.0.1"`
	DBPort   string `env:"DB_PORT"`
	DBName   string `env:"DB_NAME,default=nomadic_travel"`

	JWTSigningKey   string        `env:"JWT_SIGNING_KEY,required"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,default=5m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL,default=24h"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT,default=587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM,default=noreply@nomadictravel.com"`
	SMTPFromName string `env:"SMTP_FROM_NAME,default=Nomadic Travel"`

	CORSOrigins string `env:"CORS_ORIGINS"`

	GeocoderEnabled   bool   `env:"GEOCODER_ENABLED,default=true"`
	GeocoderURL       string `env:"GEOCODER_URL,default=https://nominatim.openstreetmap.org/search"`
	GeocoderUserAgent string `env:"GEOCODER_USER_AGENT,default=nomadic_travel"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel     string `env:"LOG_LEVEL,default=info"`

	// Optional staff account created on first start.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// CORSOriginList splits CORS_ORIGINS on commas; an empty value allows any origin.
func (c Config) CORSOriginList() []string {
	raw := strings.TrimSpace(c.CORSOrigins)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// IsProduction is true when APP_ENV is "production".
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
