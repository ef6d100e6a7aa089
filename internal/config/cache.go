package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// CacheConfig tunes the Redis response cache that fronts the public
// browse endpoints.  TTL bounds how stale a listed availability figure
// may be; the reserve path never reads through this cache, so a short
// TTL is a display concern, not a correctness one.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads BROWSE_CACHE_* environment variables, with
// defaults suited to the event listing (GET only, 30s, 1 MiB bodies).
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      getenv("BROWSE_CACHE_ENABLED", "true") == "true",
        Methods:      parseMethods(getenv("BROWSE_CACHE_METHODS", "GET")),
        TTL:          parseDur(getenv("BROWSE_CACHE_TTL", "30s")),
        Prefix:       getenv("BROWSE_CACHE_PREFIX", "browse"),
        MaxBodyBytes: atoi(getenv("BROWSE_CACHE_MAX_BODY_BYTES", "1048576")),
    }
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func atoi(s string) int {
    i, _ := strconv.Atoi(s)
    return i
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
