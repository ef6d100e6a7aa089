package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/event-reservation/internal/config"
)

// The response cache sits in front of the public browse endpoints only:
// the event listing, the event detail with its availability snapshot and
// the review listing.  Those responses are allowed to be seconds stale
// because availability shown there is never what admits a reservation;
// reserve, confirm and cancel go through authenticated routes that this
// middleware never sees.

// browseRecorder mirrors the response into a bounded buffer while
// forwarding it to the client.  Only bodies that fit the limit are
// cached; larger ones are served uncached.
type browseRecorder struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (br *browseRecorder) WriteHeader(code int) {
    br.status = code
    br.ResponseWriter.WriteHeader(code)
}

func (br *browseRecorder) Write(b []byte) (int, error) {
    br.size += int64(len(b))
    if br.size <= br.limit {
        br.buf.Write(b)
    }
    return br.ResponseWriter.Write(b)
}

func (br *browseRecorder) cacheable() bool {
    return br.status == http.StatusOK && br.size <= br.limit
}

// browseKey derives the cache key from route and query.  The query
// string carries every browse filter (city, category, from, to, q,
// paging), so two requests share an entry exactly when they would get
// the same listing.
func browseKey(prefix string, c echo.Context) string {
    sum := sha1.Sum([]byte(c.Request().Method + ":" + c.Path() + "?" + c.Request().URL.RawQuery))
    return fmt.Sprintf("%s:%x", prefix, sum[:])
}

// Cached entries pack [4 bytes status][4 bytes headerLen][headerJSON][body]
// so a hit replays the exact headers and body the handler produced.

func encodeEntry(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodeEntry(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    header = make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, header, bs[8+hlen:], true
}

// NewRedisCache caches successful browse responses in Redis for the
// configured TTL.  With caching disabled or no Redis client it is a
// pass-through, so the API degrades to uncached reads rather than
// failing.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    maxBody := int64(cfg.MaxBodyBytes)
    if maxBody <= 0 {
        maxBody = 1 << 20
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }

            ctx := c.Request().Context()
            key := browseKey(cfg.Prefix, c)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodeEntry(bs); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, "Content-Length") {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    if len(body) > 0 {
                        _, _ = c.Response().Write(body)
                    }
                    return nil
                }
            }

            br := &browseRecorder{
                ResponseWriter: c.Response().Writer,
                status:         http.StatusOK,
                limit:          maxBody,
            }
            c.Response().Writer = br
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            if br.cacheable() {
                hdr := make(http.Header, len(c.Response().Header()))
                for k, vals := range c.Response().Header() {
                    hdr[k] = append([]string(nil), vals...)
                }
                if entry, err := encodeEntry(br.status, hdr, br.buf.Bytes()); err == nil {
                    _ = rdb.SetEx(context.Background(), key, entry, ttl).Err()
                }
            }
            return nil
        }
    }
}
