package config

import (
	"os"
	"strings"
	"time"
)

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y" || v == "on"
}

// ReportCacheEnabled turns on the redis cache for balance reports.
//
// Set via env:
// - ENABLE_REPORT_CACHE=true
func ReportCacheEnabled() bool {
	return envBool("ENABLE_REPORT_CACHE")
}

// ReportCacheTTL defaults to 120s (REPORT_CACHE_TTL_SECONDS).
func ReportCacheTTL() time.Duration {
	ttl := IntFromEnv("REPORT_CACHE_TTL_SECONDS", 120)
	if ttl <= 0 {
		ttl = 120
	}
	return time.Duration(ttl) * time.Second
}

// LedgerTraceIds lists entry ids whose balance contributions are logged at debug level.
//
// Set via env:
// - LEDGER_TRACE_IDS="viaje-TRP001,1532"
func LedgerTraceIds() map[string]bool {
	raw := os.Getenv("LEDGER_TRACE_IDS")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	ids := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			ids[p] = true
		}
	}
	return ids
}

// SessionIdleTimeout bounds how long an untouched view session (temporal transactions) survives.
func SessionIdleTimeout() time.Duration {
	m := IntFromEnv("SESSION_IDLE_MINUTES", 30)
	if m <= 0 {
		m = 30
	}
	return time.Duration(m) * time.Minute
}

// DefaultPhoneRegion is the libphonenumber region used for numbers without a country prefix.
func DefaultPhoneRegion() string {
	v := strings.ToUpper(strings.TrimSpace(os.Getenv("DEFAULT_PHONE_REGION")))
	if v == "" {
		return "CO"
	}
	return v
}

func SkipMigrations() bool {
	return envBool("SKIP_MIGRATIONS")
}

func IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production")
}
