package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestAudit(t *testing.T) {
	entry := NewRequestAudit("", "10.0.0.1", "curl/8", RequestDetails{
		Method: "GET", Path: "/api/v1/repos", Status: 401, DurationMS: 3,
	})
	assert.Equal(t, AuditAnonymous, entry.UserID)
	assert.Equal(t, AuditActionHTTPRequest, entry.Action)
	assert.Equal(t, AuditResourceAPI, entry.Resource)
	assert.Equal(t, "/api/v1/repos", entry.ResourceID)
	assert.False(t, entry.CreatedAt.IsZero())

	var d RequestDetails
	require.NoError(t, json.Unmarshal([]byte(entry.Details), &d))
	assert.Equal(t, 401, d.Status)
	assert.Equal(t, "GET", d.Method)

	assert.Equal(t, "octo", NewRequestAudit("octo", "", "", RequestDetails{}).UserID)
}
