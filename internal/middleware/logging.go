package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/fieldstack/auth-service/internal/models"
	"github.com/fieldstack/auth-service/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request id assigned by RequestLogger.
const RequestIDHeader = "X-Request-ID"

var skippedPaths = []string{"/health", "/metrics", "/swagger"}

// RequestLogger logs every request with a ksuid request id and persists a
// masked APILog row. Password and token material never reaches the log:
// any JSON field whose name contains "password", "refresh" or "token" is
// replaced before logging.
func RequestLogger(logs repository.APILogRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, skipped := range skippedPaths {
			if strings.HasPrefix(c.Request.URL.Path, skipped) {
				c.Next()
				return
			}
		}

		start := time.Now()
		requestID := ksuid.New().String()
		c.Header(RequestIDHeader, requestID)

		var maskedBody string
		if c.ContentType() == "application/json" && c.Request.Body != nil {
			raw, err := io.ReadAll(c.Request.Body)
			if err == nil {
				c.Request.Body = io.NopCloser(bytes.NewReader(raw))
				maskedBody = maskSensitiveFields(raw)
			}
		}

		c.Next()

		latency := float64(time.Since(start).Microseconds()) / 1000.0
		status := c.Writer.Status()

		logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Float64("latency_ms", latency))

		entry := &models.APILog{
			RequestID:      requestID,
			Method:         c.Request.Method,
			Path:           c.Request.URL.Path,
			QueryParams:    c.Request.URL.RawQuery,
			RequestBody:    maskedBody,
			StatusCode:     status,
			ResponseTimeMS: latency,
		}
		if id, ok := c.Get(CtxUserID); ok {
			if userID, ok := id.(int64); ok {
				entry.UserID = &userID
			}
		}

		// Persisted off the request path; a failed insert only loses one
		// log line.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := logs.Create(ctx, entry); err != nil {
				logger.Error("failed to persist api log", zap.Error(err))
			}
		}()
	}
}

// maskSensitiveFields replaces secret-bearing values in a JSON body.
func maskSensitiveFields(raw []byte) string {
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	for key := range body {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "password") ||
			strings.Contains(lower, "refresh") ||
			strings.Contains(lower, "token") ||
			strings.Contains(lower, "otp") {
			body[key] = "*****"
		}
	}
	masked, err := json.Marshal(body)
	if err != nil {
		return ""
	}
	return string(masked)
}
