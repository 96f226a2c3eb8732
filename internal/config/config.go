// Package config provides functionality for managing configuration options
// for the application using command-line flags, an optional JSON config file
// and environment variables (including a local .env file).
package config

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// CookieOptions holds transport options applied to the token cookies.
// It is passed explicitly to the cookie-writing handlers instead of living
// in ambient global state.
type CookieOptions struct {
	// HTTPOnly marks the cookies as inaccessible to scripts.
	HTTPOnly bool
	// Secure restricts the cookies to HTTPS transports.
	Secure bool
	// SameSite is one of "lax", "strict" or "none".
	SameSite string
	// Domain is the cookie domain; empty means host-only.
	Domain string
}

// SameSiteMode maps the configured SameSite string to its http constant.
func (c CookieOptions) SameSiteMode() http.SameSite {
	switch c.SameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string

	// Config is the path to the Config file.
	Config string

	// JWTSecret signs access and refresh tokens.
	JWTSecret string

	// AccessTokenTTL is the lifetime of an access token.
	AccessTokenTTL time.Duration

	// RefreshTokenTTL is the lifetime of a refresh token.
	RefreshTokenTTL time.Duration

	// RotateRefreshTokens controls whether a refresh issues a replacement
	// refresh token and revokes the old one.
	RotateRefreshTokens bool

	// LogLevel sets the zap logging level.
	LogLevel string

	// Cookie holds the transport options for the token cookies.
	Cookie CookieOptions
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	flag.StringVar(&options.LogLevel, "l", "Info", "log level")
	flag.DurationVar(&options.AccessTokenTTL, "access-ttl", 15*time.Minute, "access token lifetime")
	flag.DurationVar(&options.RefreshTokenTTL, "refresh-ttl", 7*24*time.Hour, "refresh token lifetime")
	flag.BoolVar(&options.RotateRefreshTokens, "rotate", true, "rotate refresh tokens on refresh")

	options.Cookie = CookieOptions{HTTPOnly: true, SameSite: "lax"}
}

// Parse parses the command-line flags, the optional config file and
// environment variables to set configuration values. A .env file in the
// working directory is loaded first, if present. It returns a pointer to the
// Options struct containing the parsed configuration values.
func Parse() *Options {
	// Missing .env is not an error; env vars may come from the real environment.
	_ = godotenv.Load()

	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		options.JWTSecret = secret
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		options.LogLevel = lvl
	}
	if ttl := os.Getenv("ACCESS_TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			options.AccessTokenTTL = d
		}
	}
	if ttl := os.Getenv("REFRESH_TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			options.RefreshTokenTTL = d
		}
	}
	if rotate := os.Getenv("ROTATE_REFRESH_TOKENS"); rotate != "" {
		if v, err := strconv.ParseBool(rotate); err == nil {
			options.RotateRefreshTokens = v
		}
	}
	if secure := os.Getenv("COOKIE_SECURE"); secure != "" {
		if v, err := strconv.ParseBool(secure); err == nil {
			options.Cookie.Secure = v
		}
	}
	if sameSite := os.Getenv("COOKIE_SAMESITE"); sameSite != "" {
		options.Cookie.SameSite = sameSite
	}
	if domain := os.Getenv("COOKIE_DOMAIN"); domain != "" {
		options.Cookie.Domain = domain
	}

	return options
}
