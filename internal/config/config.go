package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration. Every field has a default: a
// desktop install must boot with zero environment set.
type Config struct {
	Env         string // application environment (e.g. "dev", "prod")
	Port        string // HTTP port the local bridge listens on
	DBPath      string // path of the embedded SQLite database file
	SpoolDir    string // directory print jobs are written into
	LicensePath string // path of the local license file
	LicenseKey  string // HS256 key activation tokens are verified with
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads configuration from the environment, after loading .env if
// one exists next to the binary.
func Load() Config {
	_ = godotenv.Load() // load .env if it exists
	cfg := Config{
		Env:         getenv("APP_ENV", "prod"),
		Port:        getenv("APP_PORT", "3000"),
		DBPath:      getenv("DB_PATH", "easy_bill.db"),
		SpoolDir:    getenv("SPOOL_DIR", "spool"),
		LicensePath: getenv("LICENSE_PATH", "license.json"),
		LicenseKey:  getenv("LICENSE_SIGNING_KEY", "easybill-dev-signing-key"),
	}
	log.Printf("[config] APP_PORT=%s DB_PATH=%s SPOOL_DIR=%s", cfg.Port, cfg.DBPath, cfg.SpoolDir)
	return cfg
}
