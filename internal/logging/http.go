package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPLogger logs cloud API traffic at debug level. Credentials in headers
// and JSON bodies are redacted.
type HTTPLogger struct {
	logger      *Logger
	maxBodySize int
}

// NewHTTPLogger creates a new HTTP logger
func NewHTTPLogger(logger *Logger) *HTTPLogger {
	return &HTTPLogger{
		logger:      logger,
		maxBodySize: 4096,
	}
}

// LogRequest logs an outgoing request
func (h *HTTPLogger) LogRequest(req *http.Request, body []byte) {
	fields := Fields{
		"method": req.Method,
		"url":    req.URL.String(),
	}

	headers := make(map[string]string)
	for k, v := range req.Header {
		if isSensitiveHeader(k) {
			headers[k] = "[REDACTED]"
		} else if len(v) > 0 {
			headers[k] = v[0]
		}
	}
	fields["headers"] = headers

	if len(body) > 0 {
		fields["body"] = h.bodyField(body)
		fields["body_size"] = len(body)
	}

	h.logger.Debug("HTTP request", fields)
}

// LogResponse logs a response
func (h *HTTPLogger) LogResponse(resp *http.Response, body []byte, duration time.Duration) {
	fields := Fields{
		"status":      resp.StatusCode,
		"duration_ms": duration.Milliseconds(),
	}
	if len(body) > 0 {
		fields["body"] = h.bodyField(body)
		fields["body_size"] = len(body)
	}

	h.logger.Debug("HTTP response", fields)
}

// LogError logs a transport error
func (h *HTTPLogger) LogError(err error, req *http.Request) {
	h.logger.Error("HTTP error", err, Fields{
		"method": req.Method,
		"url":    req.URL.String(),
	})
}

func (h *HTTPLogger) bodyField(body []byte) interface{} {
	if json.Valid(body) {
		var parsed interface{}
		if err := json.Unmarshal(body, &parsed); err == nil {
			return redactSensitiveFields(parsed)
		}
	}
	return truncateBody(body, h.maxBodySize)
}

// RoundTripperWrapper wraps an http.RoundTripper with logging
type RoundTripperWrapper struct {
	wrapped http.RoundTripper
	logger  *HTTPLogger
}

// NewLoggingRoundTripper creates a new logging round tripper
func NewLoggingRoundTripper(wrapped http.RoundTripper, logger *HTTPLogger) *RoundTripperWrapper {
	if wrapped == nil {
		wrapped = http.DefaultTransport
	}
	return &RoundTripperWrapper{
		wrapped: wrapped,
		logger:  logger,
	}
}

// RoundTrip implements http.RoundTripper. Bodies are only buffered when
// debug logging is on.
func (rt *RoundTripperWrapper) RoundTrip(req *http.Request) (*http.Response, error) {
	if !rt.logger.logger.Enabled(LevelDebug) {
		return rt.wrapped.RoundTrip(req)
	}

	start := time.Now()

	var reqBody []byte
	if req.Body != nil && !isMultipart(req.Header.Get("Content-Type")) {
		reqBody, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(reqBody))
	}
	rt.logger.LogRequest(req, reqBody)

	resp, err := rt.wrapped.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		rt.logger.LogError(err, req)
		return nil, err
	}

	if isStreamingResponse(resp) {
		rt.logger.LogResponse(resp, nil, duration)
		return resp, nil
	}

	respBody, _ := io.ReadAll(resp.Body)
	resp.Body = io.NopCloser(bytes.NewBuffer(respBody))
	rt.logger.LogResponse(resp, respBody, duration)

	return resp, nil
}

func isSensitiveHeader(name string) bool {
	switch strings.ToLower(name) {
	case "authorization", "x-monaca-session", "cookie", "set-cookie", "proxy-authorization":
		return true
	}
	return false
}

func truncateBody(body []byte, maxSize int) string {
	if len(body) <= maxSize {
		return string(body)
	}
	return string(body[:maxSize]) + "...[truncated]"
}

func isMultipart(contentType string) bool {
	return strings.HasPrefix(contentType, "multipart/")
}

func isStreamingResponse(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream")
}

func redactSensitiveFields(data interface{}) interface{} {
	sensitiveKeys := []string{"password", "secret", "token", "session", "authorization"}

	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for k, val := range v {
			keyLower := strings.ToLower(k)
			redact := false
			for _, s := range sensitiveKeys {
				if strings.Contains(keyLower, s) {
					redact = true
					break
				}
			}
			if redact {
				result[k] = "[REDACTED]"
			} else {
				result[k] = redactSensitiveFields(val)
			}
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = redactSensitiveFields(item)
		}
		return result
	default:
		return data
	}
}
