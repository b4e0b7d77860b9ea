package domain

import (
	"encoding/json"
	"time"
)

// AuditAnonymous is the user recorded for requests made without a valid token.
const AuditAnonymous = "anonymous"

// Audit actions and resources.
const (
	AuditActionHTTPRequest = "http_request"
	AuditResourceAPI       = "api"
)

// AuditLog is one API request as recorded by the audit middleware. UserID is
// the caller's GitHub login and ResourceID the request path without its
// query string; Details holds the encoded RequestDetails.
type AuditLog struct {
	ID         string    `json:"id"          db:"id"`
	UserID     string    `json:"user_id"     db:"user_id"`
	Action     string    `json:"action"      db:"action"`
	Resource   string    `json:"resource"    db:"resource"`
	ResourceID string    `json:"resource_id" db:"resource_id"`
	Details    string    `json:"details"     db:"details"`
	IP         string    `json:"ip"          db:"ip"`
	UserAgent  string    `json:"user_agent"  db:"user_agent"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
}

// RequestDetails is the outcome of an audited request.
type RequestDetails struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	Status     int    `json:"status"`
	DurationMS int64  `json:"duration_ms"`
}

// NewRequestAudit builds the audit record for a finished request. An empty
// login is recorded as AuditAnonymous.
func NewRequestAudit(login, ip, userAgent string, d RequestDetails) AuditLog {
	if login == "" {
		login = AuditAnonymous
	}
	details, _ := json.Marshal(d)
	return AuditLog{
		UserID:     login,
		Action:     AuditActionHTTPRequest,
		Resource:   AuditResourceAPI,
		ResourceID: d.Path,
		Details:    string(details),
		IP:         ip,
		UserAgent:  userAgent,
		CreatedAt:  time.Now().UTC(),
	}
}
