package models

// LogEntry is the unified shape of a structured log record. It is designed so
// log lines can be shipped, indexed and queried without per-service parsing.
type LogEntry struct {
	// ServiceName identifies the service or component that produced the log.
	ServiceName string `json:"service_name"`

	// TraceID ties together the log lines of a single request as it crosses
	// service boundaries.
	TraceID string `json:"trace_id,omitempty"`

	// UserID identifies the user the event relates to, when applicable.
	UserID string `json:"user_id,omitempty"`

	// RequestInfo carries details of the HTTP request that triggered the log.
	RequestInfo *RequestInfo `json:"request_info,omitempty"`

	// Error carries structured error details, filled at Error level and above.
	Error *ErrorInfo `json:"error,omitempty"`

	// Payload holds any additional business data worth recording.
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// RequestInfo captures the context of an HTTP request.
type RequestInfo struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	RemoteAddr string `json:"remote_addr"`
	UserAgent  string `json:"user_agent,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	LatencyMS  int64  `json:"latency_ms,omitempty"`
}

// ErrorInfo captures structured information about an error.
type ErrorInfo struct {
	Message    string `json:"message"`
	Type       string `json:"type,omitempty"` // e.g. "validation_error", "storage_error"
	StatusCode int    `json:"status_code,omitempty"`
}
