package idempotency

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderKey carries the client-chosen idempotency key.
const HeaderKey = "X-Idempotency-Key"

// HeaderReplayed is set on responses served from the cache.
const HeaderReplayed = "Idempotent-Replayed"

// Middleware replays the first successful response for a repeated
// X-Idempotency-Key. Requests without the header pass straight through.
func Middleware(store Store, ttl time.Duration, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderKey))
		if key == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		bodyHash := hashing(body)

		cacheKey := c.Request.Method + " " + c.FullPath() + " " + key
		ctx := c.Request.Context()

		existing, reserved, err := store.Reserve(ctx, cacheKey, Entry{
			Status:          StatusProcessing,
			RequestBodyHash: bodyHash,
			CreatedAt:       time.Now(),
		}, ttl)
		if err != nil {
			logger.Error("failed to check idempotency", "key", key, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to check idempotency"})
			return
		}

		if !reserved {
			if existing.RequestBodyHash != "" && bodyHash != existing.RequestBodyHash {
				c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "idempotency key conflict: request body does not match previous request"})
				return
			}
			switch existing.Status {
			case StatusProcessing:
				logger.Info("concurrent request detected", "key", key)
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request is already being processed"})
				return
			case StatusCompleted:
				logger.Info("returning cached response", "key", key)
				c.Header(HeaderReplayed, "true")
				c.Data(existing.StatusCode, "application/json; charset=utf-8", existing.Response)
				c.Abort()
				return
			default:
				logger.Warn("unknown cache entry status, processing as new request", "key", key, "status", existing.Status)
			}
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		if status < 200 || status >= 300 {
			if err := store.Delete(ctx, cacheKey); err != nil {
				logger.Error("failed to clear failed request from cache", "key", key, "error", err)
			}
			return
		}

		now := time.Now()
		if err := store.Complete(ctx, cacheKey, Entry{
			Status:          StatusCompleted,
			RequestBodyHash: bodyHash,
			StatusCode:      status,
			Response:        rec.body.Bytes(),
			CreatedAt:       now,
			UpdatedAt:       now,
		}, ttl); err != nil {
			logger.Error("failed to cache successful response", "key", key, "error", err)
			return
		}
		logger.Debug("request completed and response cached", "key", key)
	}
}

// bodyRecorder tees the response body so it can be cached.
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *bodyRecorder) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// hashing creates a stable hash of the request body
func hashing(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	hash := md5.New()
	hash.Write(body)
	return hex.EncodeToString(hash.Sum(nil))
}
