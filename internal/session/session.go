// Package session holds the correlation state that ties result polling to a
// remote test execution.
//
// OpenL keeps test-run state server-side and identifies it through response
// headers on the start call: an execution id header and a session cookie.
// This package captures those headers per project and replays them on every
// subsequent poll, letting an otherwise stateless MCP tool participate in
// the session-oriented remote workflow.
//
// The store is injected into the components that need it instead of living
// as a module-level singleton; tests and a future multi-tenant setup get
// their own instances.
package session

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// Record is the locally cached correlation state for one project's most
// recent test run. Headers maps captured response header names to values;
// Cookie carries the session cookie pair (name=value) when the start
// response set one.
type Record struct {
	ProjectID  string
	Headers    map[string]string
	Cookie     string
	CapturedAt time.Time
}

// Store is the Session State Holder. At most one live Record exists per
// project id; Commit overwrites (last writer wins), Get never mutates.
// Absence of a record is a valid state, not an error.
type Store interface {
	Commit(projectID string, h http.Header)
	Get(projectID string) (Record, bool)
}

// MemoryStore is the in-process Store implementation. Records live for the
// process lifetime only; a stale remote session is detected indirectly via
// failed polls, never by local expiry.
type MemoryStore struct {
	mu      sync.RWMutex
	allowed []string
	records map[string]Record
}

// NewMemoryStore creates a store that captures only the named response
// headers. The allow-list keeps unrelated response headers from leaking
// into stored state; Set-Cookie entries are stored as the record's Cookie.
func NewMemoryStore(allowedHeaders []string) *MemoryStore {
	allowed := make([]string, 0, len(allowedHeaders))
	for _, name := range allowedHeaders {
		allowed = append(allowed, http.CanonicalHeaderKey(name))
	}
	return &MemoryStore{
		allowed: allowed,
		records: make(map[string]Record),
	}
}

// Commit extracts the allow-listed subset of h and stores it for projectID,
// overwriting any prior record. A concurrent poll holding the superseded
// record may still succeed against the old remote session or fail once it
// expires server-side; callers serialize their own start/poll sequences.
func (s *MemoryStore) Commit(projectID string, h http.Header) {
	rec := Record{
		ProjectID:  projectID,
		Headers:    make(map[string]string),
		CapturedAt: time.Now(),
	}

	for _, name := range s.allowed {
		value := h.Get(name)
		if value == "" {
			continue
		}
		if name == "Set-Cookie" {
			rec.Cookie = cookiePair(value)
			continue
		}
		rec.Headers[name] = value
	}

	s.mu.Lock()
	s.records[projectID] = rec
	s.mu.Unlock()
}

// Get returns the stored record for projectID. The second return value is
// false when no test run has been started for the project in this process.
func (s *MemoryStore) Get(projectID string) (Record, bool) {
	s.mu.RLock()
	rec, ok := s.records[projectID]
	s.mu.RUnlock()
	return rec, ok
}

// cookiePair reduces a Set-Cookie value to its name=value pair, dropping
// attributes like Path and HttpOnly that have no place in a Cookie header.
func cookiePair(setCookie string) string {
	pair, _, _ := strings.Cut(setCookie, ";")
	return strings.TrimSpace(pair)
}
