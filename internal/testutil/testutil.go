// Package testutil provides shared test helpers, chiefly an in-process fake
// of the remote /receitas API.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/starford/receitas/internal/models"
)

// FakeAPI is an in-memory /receitas server with failure injection.
type FakeAPI struct {
	mu         sync.Mutex
	recipes    []models.Recipe
	nextID     int
	failures   map[string]int
	emptyPut   bool
	omitPostID bool
	calls      []string

	server *httptest.Server
}

// NewFakeAPI starts a fake API seeded with recipes. It is closed on test cleanup.
func NewFakeAPI(t testing.TB, seed ...models.Recipe) *FakeAPI {
	t.Helper()
	f := &FakeAPI{failures: make(map[string]int), nextID: 1}
	for _, r := range seed {
		f.recipes = append(f.recipes, r.Clone())
		if r.ID >= f.nextID {
			f.nextID = r.ID + 1
		}
	}

	r := chi.NewRouter()
	r.Get("/receitas", f.list)
	r.Post("/receitas", f.create)
	r.Put("/receitas/{id}", f.update)
	r.Delete("/receitas/{id}", f.delete)

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

// URL is the base URL to hand to a client.
func (f *FakeAPI) URL() string { return f.server.URL }

// Close shuts the server down, making every later request a network failure.
func (f *FakeAPI) Close() { f.server.Close() }

// FailNext makes the next request for op ("list", "create", "update", "delete")
// answer with status.
func (f *FakeAPI) FailNext(op string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = status
}

// SetNextID fixes the id assigned to the next created recipe.
func (f *FakeAPI) SetNextID(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID = id
}

// EmptyUpdateResponses makes PUT answer 204 with no body.
func (f *FakeAPI) EmptyUpdateResponses() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emptyPut = true
}

// OmitCreatedID makes POST answer without the assigned id.
func (f *FakeAPI) OmitCreatedID() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.omitPostID = true
}

// Put stores r directly, bypassing the HTTP surface (simulates another editor).
func (f *FakeAPI) Put(r models.Recipe) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexOf(r.ID); i >= 0 {
		f.recipes[i] = r.Clone()
		return
	}
	f.recipes = append(f.recipes, r.Clone())
}

// Recipes returns a copy of the server-side collection.
func (f *FakeAPI) Recipes() []models.Recipe {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Recipe, len(f.recipes))
	for i, r := range f.recipes {
		out[i] = r.Clone()
	}
	return out
}

// Calls returns the ops received so far, in order.
func (f *FakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// injected records the call and reports a pending failure status, if any.
func (f *FakeAPI) injected(op string) int {
	f.calls = append(f.calls, op)
	status, ok := f.failures[op]
	if !ok {
		return 0
	}
	delete(f.failures, op)
	return status
}

func (f *FakeAPI) indexOf(id int) int {
	return slices.IndexFunc(f.recipes, func(r models.Recipe) bool { return r.ID == id })
}

func (f *FakeAPI) list(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status := f.injected("list"); status != 0 {
		writeJSON(w, status, map[string]string{"error": "injected"})
		return
	}
	out := make([]models.Recipe, len(f.recipes))
	copy(out, f.recipes)
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) create(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status := f.injected("create"); status != 0 {
		writeJSON(w, status, map[string]string{"error": "injected"})
		return
	}
	var d models.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	rec := d.Recipe(f.nextID)
	f.nextID++
	f.recipes = append(f.recipes, rec)
	if f.omitPostID {
		writeJSON(w, http.StatusCreated, d)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (f *FakeAPI) update(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status := f.injected("update"); status != 0 {
		writeJSON(w, status, map[string]string{"error": "injected"})
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	i := f.indexOf(id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	var d models.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	f.recipes[i] = d.Recipe(id)
	if f.emptyPut {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, f.recipes[i])
}

func (f *FakeAPI) delete(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status := f.injected("delete"); status != 0 {
		writeJSON(w, status, map[string]string{"error": "injected"})
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if i := f.indexOf(id); i >= 0 {
		f.recipes = slices.Delete(f.recipes, i, i+1)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
