package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	apperrors "rvg-calc/internal/errors"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "RVG_CALC_"

// LoadDotEnv loads the given .env files (default ./.env) into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return apperrors.Config("loading "+f, err)
		}
	}
	return nil
}

// ApplyEnv overrides c with RVG_CALC_* environment variables and re-validates
func (c *Config) ApplyEnv() error {
	if v, ok := lookup("ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := lookup("ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("CACHE_TTL_SECONDS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperrors.Config(EnvPrefix+"CACHE_TTL_SECONDS is not an integer", err)
		}
		c.Server.CacheTTLSeconds = n
	}
	if v, ok := lookup("REDUCED_FEES"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return apperrors.Config(EnvPrefix+"REDUCED_FEES is not a boolean", err)
		}
		c.Calculation.ReducedFees = b
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		c.Logging.Format = v
	}
	return c.Validate()
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
