package config

import (
    "context"
    "crypto/tls"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the Redis instance backing the browse
// cache and the rate limiter.  Address comes from REDIS_HOST/REDIS_PORT
// or the REDIS_ADDR shorthand; REDIS_PASSWORD, REDIS_DB and REDIS_TLS
// are optional.
//
// Redis is strictly auxiliary here: when the ping fails the function
// returns nil and the caller starts without caching or throttling
// rather than refusing to serve reservations.
func NewRedisClient() *redis.Client {
    addr := getenv("REDIS_ADDR", "")
    if host, port := getenv("REDIS_HOST", ""), getenv("REDIS_PORT", ""); host != "" && port != "" {
        addr = host + ":" + port
    }
    if addr == "" {
        addr = "localhost:6379"
    }

    var tlsConf *tls.Config
    if v := getenv("REDIS_TLS", ""); strings.EqualFold(v, "true") || v == "1" {
        tlsConf = &tls.Config{InsecureSkipVerify: true}
    }

    client := redis.NewClient(&redis.Options{
        Addr:      addr,
        Password:  getenv("REDIS_PASSWORD", ""),
        DB:        atoi(getenv("REDIS_DB", "0")),
        TLSConfig: tlsConf,
    })

    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        return nil
    }
    return client
}
