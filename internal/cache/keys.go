package cache

import (
	"strings"
	"time"

	"finsight-api/internal/config"
)

// Namespace is the Redis key prefix for the application.
const Namespace = "finsight"

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	TTLShort  TTLClass = "short"
	TTLMedium TTLClass = "medium"
	TTLLong   TTLClass = "long"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Short:  durationOrDefault(cfg.Short, 10*time.Second),
		Medium: durationOrDefault(cfg.Medium, time.Minute),
		Long:   durationOrDefault(cfg.Long, 5*time.Minute),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return t.Short
	case TTLMedium:
		return t.Medium
	case TTLLong:
		return t.Long
	default:
		return 0
	}
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// PriceLatestKey stores the latest price payload for a symbol.
func PriceLatestKey(symbol string) string {
	return formatKey("price", "latest", symbol)
}

// CurrentMetricsKey stores the full current-metrics row for a symbol.
func CurrentMetricsKey(symbol string) string {
	return formatKey("metrics", "current", symbol)
}

// TrackedSymbolsKey stores the tracked-symbol set.
func TrackedSymbolsKey() string {
	return formatKey("symbols", "tracked")
}

// PriceTTL returns the short-lived TTL for price payloads.
func PriceTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLShort)
}

// CurrentMetricsTTL returns the TTL for current-metrics payloads.
func CurrentMetricsTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLShort)
}

// TrackedSymbolsTTL returns the TTL for the tracked-symbol set.
func TrackedSymbolsTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLMedium)
}
