package utils

import "os"

const (
	// EnvDevelopment echoes the pipeline output on startup and uses
	// human-readable logs; EnvProduction logs structured JSON only.
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Addr     string // listen address for the HTTP server
	Env      string // "development" or "production"
	SeriesID string // fallback series ID when the request carries none
	BaseURL  string // upstream base URL override (tests / local fixtures)
	Trace    bool   // emit spans to stdout when true
}

func LoadConfig() Config {
	addr := os.Getenv("SERIRSS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	env := os.Getenv("SERIRSS_ENV")
	if env != EnvDevelopment {
		// anything but an explicit development opt-in runs as production
		env = EnvProduction
	}

	return Config{
		Addr:     addr,
		Env:      env,
		SeriesID: os.Getenv("SERIRSS_SERIES_ID"),
		BaseURL:  os.Getenv("SERIRSS_BASE_URL"),
		Trace:    os.Getenv("SERIRSS_TRACE") != "",
	}
}

func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}
