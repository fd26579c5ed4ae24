package middleware

import (
	"bytes"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/neocare/neocare/internal/platform/cache"
)

// CacheConfig holds HTTP cache and ETag configuration.
type CacheConfig struct {
	MaxAge       int      // Cache max-age in seconds
	Private      bool     // Cache-Control: private
	NoStore      bool     // Cache-Control: no-store
	VaryHeaders  []string // Headers listed in Vary
	ETagEnabled  bool
	ExcludePaths []string // Paths that get no ETag or Cache-Control
}

// DefaultCacheConfig matches the response cache TTL so that a browser does
// not hold a payload longer than the server would.
func DefaultCacheConfig(ttl time.Duration) CacheConfig {
	return CacheConfig{
		MaxAge:      int(ttl.Seconds()),
		Private:     true,
		VaryHeaders: []string{"Accept", "Authorization"},
		ETagEnabled: true,
	}
}

// bufferedResponseWriter captures the response body so it can be hashed or
// cached before being flushed to the real writer.
type bufferedResponseWriter struct {
	writer     http.ResponseWriter
	buf        *bytes.Buffer
	statusCode int
}

func newBufferedResponseWriter(w http.ResponseWriter) *bufferedResponseWriter {
	return &bufferedResponseWriter{
		writer:     w,
		buf:        &bytes.Buffer{},
		statusCode: http.StatusOK,
	}
}

func (w *bufferedResponseWriter) Header() http.Header {
	return w.writer.Header()
}

func (w *bufferedResponseWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

func (w *bufferedResponseWriter) WriteHeader(code int) {
	w.statusCode = code
}

func (w *bufferedResponseWriter) Flush() {}

func (w *bufferedResponseWriter) flushTo() error {
	w.writer.WriteHeader(w.statusCode)
	if w.buf.Len() > 0 {
		_, err := w.writer.Write(w.buf.Bytes())
		return err
	}
	return nil
}

// ETagMiddleware sets ETag, Cache-Control and Vary on successful GET/HEAD
// responses and answers a matching If-None-Match with 304.
func ETagMiddleware(config CacheConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet && req.Method != http.MethodHead {
				return next(c)
			}
			if shouldSkip(req.URL.Path, config.ExcludePaths) {
				return next(c)
			}

			res := c.Response()
			origWriter := res.Writer
			buf := newBufferedResponseWriter(origWriter)
			res.Writer = buf

			if err := next(c); err != nil {
				res.Writer = origWriter
				return err
			}
			res.Writer = origWriter

			if buf.statusCode >= 400 {
				return buf.flushTo()
			}

			res.Header().Set("Cache-Control", buildCacheControl(config))
			if len(config.VaryHeaders) > 0 {
				res.Header().Set("Vary", strings.Join(config.VaryHeaders, ", "))
			}

			if config.ETagEnabled {
				etag := computeETag(buf.buf.Bytes())
				res.Header().Set("ETag", etag)
				if inm := req.Header.Get("If-None-Match"); inm != "" && etagMatch(inm, etag) {
					origWriter.WriteHeader(http.StatusNotModified)
					return nil
				}
			}
			return buf.flushTo()
		}
	}
}

// cachedResponse is what ResponseCache stores per key.
type cachedResponse struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// ResponseCache serves repeated GET requests from store for ttl. The key
// covers the method, the full request URI and Accept, so different
// filters never share an entry. Error responses and responses marked
// degraded are not stored. A failing store only costs the cache.
func ResponseCache(store cache.Store, ttl time.Duration, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}
			ctx := req.Context()
			key := cacheKey(req.Method, req.URL.RequestURI(), req.Header.Get("Accept"))

			data, err := store.Get(ctx, key)
			switch {
			case err == nil:
				var hit cachedResponse
				if jerr := json.Unmarshal(data, &hit); jerr == nil {
					res := c.Response()
					res.Header().Set("X-Cache", "HIT")
					if hit.ContentType != "" {
						res.Header().Set(echo.HeaderContentType, hit.ContentType)
					}
					res.WriteHeader(http.StatusOK)
					_, werr := res.Write(hit.Body)
					return werr
				}
				_ = store.Delete(ctx, key)
			case !errors.Is(err, cache.ErrCacheMiss):
				logger.Warn().Err(err).Str("key", key).Msg("response cache read failed")
			}

			res := c.Response()
			origWriter := res.Writer
			buf := newBufferedResponseWriter(origWriter)
			res.Writer = buf

			if err := next(c); err != nil {
				res.Writer = origWriter
				return err
			}
			res.Writer = origWriter

			if buf.statusCode < 400 && res.Header().Get(DegradedHeader) == "" {
				entry, _ := json.Marshal(cachedResponse{
					ContentType: res.Header().Get(echo.HeaderContentType),
					Body:        buf.buf.Bytes(),
				})
				if err := store.Set(ctx, key, entry, ttl); err != nil {
					logger.Warn().Err(err).Str("key", key).Msg("response cache write failed")
				}
			}

			res.Header().Set("X-Cache", "MISS")
			return buf.flushTo()
		}
	}
}

// computeETag returns a weak ETag based on the MD5 hash of the body.
func computeETag(body []byte) string {
	hash := md5.Sum(body)
	return fmt.Sprintf(`W/"%x"`, hash)
}

func cacheKey(method, uri, accept string) string {
	return method + ":" + uri + ":" + accept
}

func shouldSkip(path string, excludes []string) bool {
	for _, ex := range excludes {
		if path == ex {
			return true
		}
	}
	return false
}

func buildCacheControl(config CacheConfig) string {
	var parts []string
	if config.NoStore {
		parts = append(parts, "no-store")
	}
	if config.Private {
		parts = append(parts, "private")
	} else {
		parts = append(parts, "public")
	}
	parts = append(parts, fmt.Sprintf("max-age=%d", config.MaxAge))
	return strings.Join(parts, ", ")
}

// etagMatch reports whether an If-None-Match value matches etag. It accepts
// comma-separated lists, the wildcard and weak comparison.
func etagMatch(headerVal, etag string) bool {
	headerVal = strings.TrimSpace(headerVal)
	if headerVal == "*" {
		return true
	}
	for _, candidate := range strings.Split(headerVal, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == etag || stripWeakPrefix(candidate) == stripWeakPrefix(etag) {
			return true
		}
	}
	return false
}

func stripWeakPrefix(etag string) string {
	return strings.TrimPrefix(etag, `W/`)
}
