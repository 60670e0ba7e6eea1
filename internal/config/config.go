package config

import "os"

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	OIDC     OIDCConfig
	Uploads  UploadsConfig
}

type ServerConfig struct {
	Addr           string
	BaseURL        string
	AllowedOrigins string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type AuthConfig struct {
	JWTSecret       string
	AccessTTL       string
	AutoLoginTTL    string
	RefreshTTL      string
	VerificationTTL string
	RecoveryTTL     string
	CookieSecure    string
	CookieSameSite  string
	CookieDomain    string
	CookiePath      string
}

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Pass     string
	From     string
	Security string
}

type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type UploadsConfig struct {
	Dir string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Addr:           getenv("SERVER_ADDR", ":8080"),
			BaseURL:        getenv("BASE_URL", "http://localhost:8080"),
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret:       os.Getenv("JWT_SECRET"),
			AccessTTL:       getenv("JWT_ACCESS_TTL", "15m"),
			AutoLoginTTL:    getenv("JWT_AUTO_LOGIN_TTL", "15m"),
			RefreshTTL:      getenv("JWT_REFRESH_TTL", "720h"),
			VerificationTTL: getenv("VERIFICATION_CODE_TTL", "24h"),
			RecoveryTTL:     getenv("RECOVERY_CODE_TTL", "15m"),
			CookieSecure:    getenv("AUTH_COOKIE_SECURE", "true"),
			CookieSameSite:  getenv("AUTH_COOKIE_SAMESITE", "none"),
			CookieDomain:    os.Getenv("AUTH_COOKIE_DOMAIN"),
			CookiePath:      getenv("AUTH_COOKIE_PATH", "/"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getenv("SMTP_PORT", "587"),
			User:     os.Getenv("SMTP_USER"),
			Pass:     os.Getenv("SMTP_PASS"),
			From:     os.Getenv("SMTP_FROM"),
			Security: getenv("SMTP_SECURITY", "starttls"),
		},
		OIDC: OIDCConfig{
			Issuer:       os.Getenv("OIDC_ISSUER"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
		},
		Uploads: UploadsConfig{
			Dir: getenv("UPLOADS_DIR", "uploads"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
