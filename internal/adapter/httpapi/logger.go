package httpapi

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Logger provides structured logging for forge API calls.
type Logger interface {
	// LogRequest logs an outgoing API request (token redacted)
	LogRequest(ctx context.Context, req RequestLog)

	// LogResponse logs an API response with timing info
	LogResponse(ctx context.Context, resp ResponseLog)

	// LogError logs an API error
	LogError(ctx context.Context, err ErrorLog)

	// FieldLogger carries the free-form warning/info methods the use-case
	// layers log through
	FieldLogger
}

// RequestLog contains request information for logging.
type RequestLog struct {
	Service   string
	Method    string
	Path      string
	Timestamp time.Time
	Token     string // Will be redacted to last 4 chars
}

// ResponseLog contains response information for logging.
type ResponseLog struct {
	Service    string
	Method     string
	Path       string
	Timestamp  time.Time
	Duration   time.Duration
	StatusCode int
	Items      int // Number of items returned, where applicable
}

// ErrorLog contains error information for logging.
type ErrorLog struct {
	Service    string
	Method     string
	Path       string
	Timestamp  time.Time
	Duration   time.Duration
	Error      error
	ErrorType  ErrorType
	StatusCode int
	Retryable  bool
}

// LogLevel defines the logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelError
)

// LogFormat defines the output format for logs.
type LogFormat int

const (
	LogFormatHuman LogFormat = iota
	LogFormatJSON
)

// DefaultLogger writes logs in structured format to stderr.
type DefaultLogger struct {
	level        LogLevel
	redactTokens bool
	format       LogFormat
}

// NewDefaultLogger creates a logger with the specified config.
func NewDefaultLogger(level LogLevel, format LogFormat, redactTokens bool) *DefaultLogger {
	return &DefaultLogger{
		level:        level,
		redactTokens: redactTokens,
		format:       format,
	}
}

// SetRedaction enables or disables token redaction.
func (l *DefaultLogger) SetRedaction(enabled bool) {
	l.redactTokens = enabled
}

// LogRequest logs an API request.
func (l *DefaultLogger) LogRequest(ctx context.Context, req RequestLog) {
	if l.level > LogLevelDebug {
		return
	}

	// Redact token to last 4 characters
	redacted := l.RedactToken(req.Token)

	if l.format == LogFormatJSON {
		// JSON format for machine parsing
		log.Printf(`{"level":"debug","type":"request","service":"%s","method":"%s","path":"%s","timestamp":"%s","token":"%s"}`,
			req.Service, req.Method, req.Path, req.Timestamp.Format(time.RFC3339), redacted)
	} else {
		// Human-readable format
		log.Printf("[DEBUG] %s: %s %s (token=%s)",
			req.Service, req.Method, req.Path, redacted)
	}
}

// LogResponse logs an API response.
func (l *DefaultLogger) LogResponse(ctx context.Context, resp ResponseLog) {
	if l.level > LogLevelInfo {
		return
	}

	if l.format == LogFormatJSON {
		// JSON format for machine parsing
		log.Printf(`{"level":"info","type":"response","service":"%s","method":"%s","path":"%s","timestamp":"%s","duration_ms":%d,"status_code":%d,"items":%d}`,
			resp.Service, resp.Method, resp.Path, resp.Timestamp.Format(time.RFC3339),
			resp.Duration.Milliseconds(), resp.StatusCode, resp.Items)
	} else {
		// Human-readable format
		log.Printf("[INFO] %s: %s %s -> %d (duration=%.1fs, items=%d)",
			resp.Service, resp.Method, resp.Path, resp.StatusCode,
			resp.Duration.Seconds(), resp.Items)
	}
}

// LogError logs an API error.
func (l *DefaultLogger) LogError(ctx context.Context, err ErrorLog) {
	if l.level > LogLevelError {
		return
	}

	retryableStr := "non-retryable"
	if err.Retryable {
		retryableStr = "retryable"
	}

	if l.format == LogFormatJSON {
		// JSON format for machine parsing
		log.Printf(`{"level":"error","type":"error","service":"%s","method":"%s","path":"%s","timestamp":"%s","duration_ms":%d,"error":"%s","error_type":%d,"status_code":%d,"retryable":%t}`,
			err.Service, err.Method, err.Path, err.Timestamp.Format(time.RFC3339),
			err.Duration.Milliseconds(), err.Error.Error(), err.ErrorType,
			err.StatusCode, err.Retryable)
	} else {
		// Human-readable format
		log.Printf("[ERROR] %s: %s %s failed (status=%d, %s): %v",
			err.Service, err.Method, err.Path, err.StatusCode, retryableStr, err.Error)
	}
}

// RedactToken shows only the last 4 characters of a token with explicit redaction markers.
func (l *DefaultLogger) RedactToken(token string) string {
	if !l.redactTokens {
		return token
	}
	if len(token) <= 4 {
		return "[REDACTED]"
	}
	return fmt.Sprintf("[REDACTED-%s]", token[len(token)-4:])
}
