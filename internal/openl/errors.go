package openl

import (
	"fmt"
	"strings"
)

// maxErrorBody bounds how much of a remote error body is carried in a
// RemoteError message.
const maxErrorBody = 512

// RemoteError is a non-success HTTP outcome from the OpenL service. It
// carries enough structured context (status, method, endpoint) for the
// caller to decide whether to retry, open the project, or start a new run.
type RemoteError struct {
	StatusCode int
	Method     string
	Endpoint   string
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("openl: %s %s returned status %d", e.Method, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("openl: %s %s returned status %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Message)
}

// sanitizeMessage prepares a remote error body for inclusion in an error:
// configured credentials are redacted and the body is truncated. Bodies are
// server-controlled; they must never echo secrets back to the assistant.
func sanitizeMessage(body string, secrets []string) string {
	msg := strings.TrimSpace(body)
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, secret, "[redacted]")
	}
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	return msg
}
