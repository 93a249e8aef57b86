// Package agenttest provides an in-memory activities API for tests.
package agenttest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mesh-intelligence/activities/pkg/types"
)

// LockedID is an activity id the API refuses to delete with 409 Conflict.
const LockedID = "locked"

// API is an in-memory activities endpoint mounted under /api. Safe for
// concurrent use.
type API struct {
	mu     sync.Mutex
	items  map[string]types.Activity
	calls  []string
	status int
}

// New creates an API holding items.
func New(items ...types.Activity) *API {
	a := &API{items: make(map[string]types.Activity)}
	for _, it := range items {
		a.items[it.ID] = it
	}
	return a
}

// Start serves the API on a test server and returns the base URL the client
// should be configured with. The server is closed when t finishes.
func (a *API) Start(t testing.TB) string {
	t.Helper()
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

// FailWith makes every following request answer with status. Zero restores
// normal behavior.
func (a *API) FailWith(status int) {
	a.mu.Lock()
	a.status = status
	a.mu.Unlock()
}

// Item returns the stored activity with id.
func (a *API) Item(id string) (types.Activity, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	it, ok := a.items[id]
	return it, ok
}

// Calls returns "METHOD /path" for every request received, in order.
func (a *API) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

// Handler returns the HTTP handler serving the API.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/activities", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		out := make([]types.Activity, 0, len(a.items))
		for _, it := range a.items {
			out = append(out, it)
		}
		a.mu.Unlock()
		writeJSON(w, out)
	})
	mux.HandleFunc("GET /api/activities/{id}", func(w http.ResponseWriter, r *http.Request) {
		it, ok := a.Item(r.PathValue("id"))
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, it)
	})
	mux.HandleFunc("POST /api/activities", func(w http.ResponseWriter, r *http.Request) {
		var it types.Activity
		if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		a.mu.Lock()
		a.items[it.ID] = it
		a.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("PUT /api/activities/{id}", func(w http.ResponseWriter, r *http.Request) {
		var it types.Activity
		if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		if _, ok := a.items[r.PathValue("id")]; !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		a.items[it.ID] = it
	})
	mux.HandleFunc("DELETE /api/activities/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == LockedID {
			http.Error(w, "activity is locked", http.StatusConflict)
			return
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		if _, ok := a.items[id]; !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		delete(a.items, id)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.calls = append(a.calls, r.Method+" "+r.URL.Path)
		status := a.status
		a.mu.Unlock()
		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
