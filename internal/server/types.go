package server

import "time"

// APIError is the canonical error envelope returned by JSON endpoints.
// The frontend expects the `error` field and will surface it to the user.
type APIError struct {
	Error string `json:"error"`
}

// HealthResponse is returned by /api/health to confirm the server is running.
type HealthResponse struct {
	OK        bool      `json:"ok"`
	Timestamp time.Time `json:"timestamp"`
	Streaming bool      `json:"streaming"`
	Datasets  int       `json:"datasets"`
}

// OKResponse acknowledges control endpoints such as stop.
type OKResponse struct {
	OK bool `json:"ok"`
}
