package session

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
)

func newTestStore() *MemoryStore {
	return NewMemoryStore([]string{"X-Test-Execution-Id", "Set-Cookie"})
}

func TestGet_NoRecord(t *testing.T) {
	store := newTestStore()

	_, ok := store.Get("project-a")
	if ok {
		t.Fatal("Get() before any Commit() should return ok=false")
	}
}

func TestCommit_CapturesAllowedHeaders(t *testing.T) {
	store := newTestStore()

	h := http.Header{}
	h.Set("X-Test-Execution-Id", "exec-1")
	h.Set("Set-Cookie", "JSESSIONID=abc123; Path=/; HttpOnly")
	h.Set("X-Unrelated", "should not be stored")

	store.Commit("project-a", h)

	rec, ok := store.Get("project-a")
	if !ok {
		t.Fatal("Get() after Commit() returned ok=false")
	}
	if got := rec.Headers["X-Test-Execution-Id"]; got != "exec-1" {
		t.Errorf("execution id = %q, want %q", got, "exec-1")
	}
	if rec.Cookie != "JSESSIONID=abc123" {
		t.Errorf("cookie = %q, want %q (attributes stripped)", rec.Cookie, "JSESSIONID=abc123")
	}
	if _, leaked := rec.Headers["X-Unrelated"]; leaked {
		t.Error("Commit() captured a header outside the allow-list")
	}
	if rec.CapturedAt.IsZero() {
		t.Error("Commit() did not stamp CapturedAt")
	}
}

func TestCommit_MissingHeadersAreOmitted(t *testing.T) {
	store := newTestStore()

	// Start response without Set-Cookie: only the execution id is stored.
	h := http.Header{}
	h.Set("X-Test-Execution-Id", "exec-2")

	store.Commit("project-a", h)

	rec, _ := store.Get("project-a")
	if rec.Cookie != "" {
		t.Errorf("cookie = %q, want empty", rec.Cookie)
	}
	if len(rec.Headers) != 1 {
		t.Errorf("headers = %v, want only the execution id", rec.Headers)
	}
}

func TestCommit_LastWriterWins(t *testing.T) {
	store := newTestStore()

	first := http.Header{}
	first.Set("X-Test-Execution-Id", "exec-old")
	first.Set("Set-Cookie", "JSESSIONID=old")
	store.Commit("project-a", first)

	second := http.Header{}
	second.Set("X-Test-Execution-Id", "exec-new")
	store.Commit("project-a", second)

	rec, _ := store.Get("project-a")
	if got := rec.Headers["X-Test-Execution-Id"]; got != "exec-new" {
		t.Errorf("execution id = %q, want %q", got, "exec-new")
	}
	// The second start carried no cookie: the old session's cookie must not
	// survive the overwrite.
	if rec.Cookie != "" {
		t.Errorf("cookie = %q, want empty after supersede", rec.Cookie)
	}
}

func TestStore_IsolatedPerProject(t *testing.T) {
	store := newTestStore()

	ha := http.Header{}
	ha.Set("X-Test-Execution-Id", "exec-a")
	store.Commit("project-a", ha)

	hb := http.Header{}
	hb.Set("X-Test-Execution-Id", "exec-b")
	store.Commit("project-b", hb)

	recA, _ := store.Get("project-a")
	recB, _ := store.Get("project-b")

	if recA.Headers["X-Test-Execution-Id"] != "exec-a" {
		t.Errorf("project-a execution id = %q", recA.Headers["X-Test-Execution-Id"])
	}
	if recB.Headers["X-Test-Execution-Id"] != "exec-b" {
		t.Errorf("project-b execution id = %q", recB.Headers["X-Test-Execution-Id"])
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := newTestStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			h := http.Header{}
			h.Set("X-Test-Execution-Id", fmt.Sprintf("exec-%d", n))
			store.Commit("project-a", h)
		}(i)
		go func() {
			defer wg.Done()
			// Readers must never observe a torn record.
			if rec, ok := store.Get("project-a"); ok {
				if rec.Headers["X-Test-Execution-Id"] == "" {
					t.Error("Get() returned record without execution id")
				}
			}
		}()
	}
	wg.Wait()
}
