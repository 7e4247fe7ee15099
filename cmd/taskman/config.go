package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/example/taskman/internal/logger"
)

const (
	defaultListenAddr     = "localhost:8000"
	defaultLoggingLevel   = logger.LevelInfo
	defaultEnvironment    = logger.EnvProduction
	defaultAccessExpires  = "15m"
	defaultRefreshExpires = "7d"
	defaultCookieName     = "rt"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the taskman service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secrets to sign access and refresh JWT tokens. Both required,
	// must differ so the token types never validate against each other.
	AccessSecret  string
	RefreshSecret string

	// Token lifetimes as expiry strings: '15m', '7d', bare seconds
	AccessExpires  string
	RefreshExpires string

	// Name of the cookie carrying the refresh token
	RefreshCookieName string

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:          defaultLoggingLevel,
		ListenAddr:        defaultListenAddr,
		Environment:       defaultEnvironment,
		AccessExpires:     defaultAccessExpires,
		RefreshExpires:    defaultRefreshExpires,
		RefreshCookieName: defaultCookieName,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":             setString(&c.ListenAddr),
		"DATABASE_URI":            setString(&c.DatabaseDSN),
		"LOG_LEVEL":               setString(&c.LogLevel),
		"ENVIRONMENT":             setString(&c.Environment),
		"JWT_ACCESS_SECRET":       setString(&c.AccessSecret),
		"JWT_REFRESH_SECRET":      setString(&c.RefreshSecret),
		"JWT_ACCESS_EXPIRES":      setString(&c.AccessExpires),
		"JWT_REFRESH_EXPIRES":     setString(&c.RefreshExpires),
		"JWT_REFRESH_COOKIE_NAME": setString(&c.RefreshCookieName),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("taskman", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.AccessSecret, "access-secret", c.AccessSecret, "Secret to sign access tokens")
	fs.StringVar(&c.RefreshSecret, "refresh-secret", c.RefreshSecret, "Secret to sign refresh tokens")
	fs.StringVar(&c.AccessExpires, "access-expires", c.AccessExpires, "Access token lifetime (e.g. 15m)")
	fs.StringVar(&c.RefreshExpires, "refresh-expires", c.RefreshExpires, "Refresh token lifetime (e.g. 7d)")
	fs.StringVar(&c.RefreshCookieName, "cookie-name", c.RefreshCookieName, "Refresh token cookie name")

	return fs.Parse(args)
}
