package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/ecomstock/inventory/internal/logger"
)

const (
	defaultListenAddr         = "localhost:8080"
	defaultLoggingLevel       = logger.LevelInfo
	defaultEnvironment        = logger.EnvProduction
	defaultJWTIssuer          = "inventory"
	defaultJWTAudience        = "inventory-api"
	defaultAccessTokenMinutes = 15
	defaultRefreshTokenDays   = 7
	defaultUploadDir          = "uploads"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the inventory service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key
	// Signing JWT tokens uses symmetric encryption, the key is used for that purpose
	SecretKey string

	// Issuer and audience claims stamped into access tokens
	JWTIssuer   string
	JWTAudience string

	// Token lifetimes
	AccessTokenMinutes int
	RefreshTokenDays   int

	// Directory uploaded images are stored in
	UploadDir string

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:           defaultLoggingLevel,
		ListenAddr:         defaultListenAddr,
		JWTIssuer:          defaultJWTIssuer,
		JWTAudience:        defaultJWTAudience,
		AccessTokenMinutes: defaultAccessTokenMinutes,
		RefreshTokenDays:   defaultRefreshTokenDays,
		UploadDir:          defaultUploadDir,
		Environment:        defaultEnvironment,
	}
}

// Load variables from '.env' file (should be located at working directory)
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

	// Same but for numeric options, unparsable values are left alone
	setInt := func(o *int) func(value string) {
		return func(value string) {
			if n, err := strconv.Atoi(value); err == nil {
				*o = n
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":          setString(&c.ListenAddr),
		"DATABASE_URI":         setString(&c.DatabaseDSN),
		"SECRET_KEY":           setString(&c.SecretKey),
		"JWT_ISSUER":           setString(&c.JWTIssuer),
		"JWT_AUDIENCE":         setString(&c.JWTAudience),
		"ACCESS_TOKEN_MINUTES": setInt(&c.AccessTokenMinutes),
		"REFRESH_TOKEN_DAYS":   setInt(&c.RefreshTokenDays),
		"UPLOAD_DIR":           setString(&c.UploadDir),
		"LOG_LEVEL":            setString(&c.LogLevel),
		"ENVIRONMENT":          setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("inventory", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVar(&c.JWTIssuer, "jwt-issuer", c.JWTIssuer, "Issuer claim for access tokens")
	fs.StringVar(&c.JWTAudience, "jwt-audience", c.JWTAudience, "Audience claim for access tokens")
	fs.IntVar(&c.AccessTokenMinutes, "access-token-minutes", c.AccessTokenMinutes, "Access token lifetime in minutes")
	fs.IntVar(&c.RefreshTokenDays, "refresh-token-days", c.RefreshTokenDays, "Refresh token lifetime in days")
	fs.StringVarP(&c.UploadDir, "upload-dir", "u", c.UploadDir, "Directory for uploaded images")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	return fs.Parse(args)
}
