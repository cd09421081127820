package logger

import (
	"github.com/rs/zerolog"
)

// LogRequest logs a single API request with its outcome
func LogRequest(method, url string, statusCode int, durationMS float64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMS,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		GetLogger().DebugWithFields("HTTP request completed", fields)
	case statusCode >= 400 && statusCode < 500:
		GetLogger().WarnWithFields("HTTP request client error", fields)
	case statusCode >= 500:
		GetLogger().ErrorWithFields("HTTP request server error", fields)
	}
}

// LogRateLimit logs a rate-limit back-off event
func LogRateLimit(endpoint string, sleepSeconds int) {
	GetLogger().WithFields(map[string]interface{}{
		"endpoint":      endpoint,
		"sleep_seconds": sleepSeconds,
		"action":        "rate_limited",
	}).Warn("Rate limit exceeded, backing off")
}

// LogPage logs one fetched page of results
func LogPage(endpoint string, page, results int, nextToken string) {
	GetLogger().WithFields(map[string]interface{}{
		"endpoint":     endpoint,
		"page":         page,
		"result_count": results,
		"has_next":     nextToken != "",
	}).Debug("Page fetched")
}

// LogCallsRemaining logs the rate budget reported by the API
func LogCallsRemaining(remaining, limit string) {
	if remaining == "" || limit == "" {
		return
	}
	GetLogger().WithFields(map[string]interface{}{
		"remaining": remaining,
		"limit":     limit,
	}).Info("Rate budget")
}

// LogWrite logs a sink write operation
func LogWrite(path string, rows int, appended bool) {
	GetLogger().WithFields(map[string]interface{}{
		"path":     path,
		"rows":     rows,
		"appended": appended,
	}).Info("Records written")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
