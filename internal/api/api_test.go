package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/receitas/internal/collection"
	"github.com/starford/receitas/internal/modal"
	"github.com/starford/receitas/internal/models"
	"github.com/starford/receitas/internal/recipeclient"
	"github.com/starford/receitas/internal/testutil"
)

// testEnv starts a fake recipe API, loads it into a controller, and returns
// the console router.
func testEnv(t *testing.T, seed ...models.Recipe) (*testutil.FakeAPI, *collection.Controller, http.Handler) {
	t.Helper()
	fake := testutil.NewFakeAPI(t, seed...)
	ctrl := collection.New(recipeclient.NewClient(fake.URL()))
	if err := ctrl.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return fake, ctrl, NewRouter(ctrl, modal.New(), nil, nil)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestListRecipes(t *testing.T) {
	_, _, router := testEnv(t, models.Recipe{ID: 1, Name: "Bolo"}, models.Recipe{ID: 2, Name: "Suco"})

	w := do(t, router, http.MethodGet, "/recipes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[RecipeListResponse](t, w)
	if len(resp.Recipes) != 2 || resp.Recipes[0].Name != "Bolo" {
		t.Errorf("recipes = %+v", resp.Recipes)
	}
	if resp.Error != "" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestListRecipesETag(t *testing.T) {
	_, _, router := testEnv(t, models.Recipe{ID: 1, Name: "Bolo"})

	w := do(t, router, http.MethodGet, "/recipes", nil)
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("conditional get = %d, want 304", w.Code)
	}

	do(t, router, http.MethodDelete, "/recipes/1", nil)
	req = httptest.NewRequest(http.MethodGet, "/recipes", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("get after delete = %d, want 200", w.Code)
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	fake, ctrl, router := testEnv(t)
	fake.SetNextID(42)

	w := do(t, router, http.MethodPost, "/recipes", models.Draft{
		Name:        "Miojo",
		Category:    "SALGADA",
		Ingredients: models.Ingredients{"água", "macarrão"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}
	created := decode[models.Recipe](t, w)
	if created.ID != 42 {
		t.Errorf("id = %d, want 42", created.ID)
	}

	w = do(t, router, http.MethodPut, "/recipes/42", models.Draft{Name: "Miojo turbinado", Ingredients: models.Ingredients{"água"}})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	if got, _ := ctrl.Get(42); got.Name != "Miojo turbinado" {
		t.Errorf("local name = %q", got.Name)
	}

	w = do(t, router, http.MethodDelete, "/recipes/42", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	if len(ctrl.Recipes()) != 0 {
		t.Errorf("collection not empty after delete")
	}
}

func TestCreateInvalidDraft(t *testing.T) {
	_, ctrl, router := testEnv(t)

	w := do(t, router, http.MethodPost, "/recipes", models.Draft{Category: "DOCE"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if ctrl.PendingError() == "" {
		t.Error("pending error should be set")
	}
}

func TestCreateInvalidJSON(t *testing.T) {
	_, _, router := testEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/recipes", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRemoteFailureIsBadGateway(t *testing.T) {
	fake, _, router := testEnv(t, models.Recipe{ID: 1, Name: "Bolo"})
	fake.FailNext("delete", http.StatusInternalServerError)

	w := do(t, router, http.MethodDelete, "/recipes/1", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}

	w = do(t, router, http.MethodGet, "/recipes", nil)
	resp := decode[RecipeListResponse](t, w)
	if len(resp.Recipes) != 1 {
		t.Errorf("collection changed on failed delete: %+v", resp.Recipes)
	}
	if resp.Error == "" {
		t.Error("list should carry the pending error")
	}

	w = do(t, router, http.MethodDelete, "/error", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("clear error = %d", w.Code)
	}
	resp = decode[RecipeListResponse](t, do(t, router, http.MethodGet, "/recipes", nil))
	if resp.Error != "" {
		t.Errorf("error not cleared: %q", resp.Error)
	}
}

func TestRefreshRecipes(t *testing.T) {
	fake, _, router := testEnv(t)
	fake.Put(models.Recipe{ID: 5, Name: "Pavê"})

	w := do(t, router, http.MethodPost, "/recipes/refresh", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("refresh = %d", w.Code)
	}
	resp := decode[RecipeListResponse](t, w)
	if len(resp.Recipes) != 1 || resp.Recipes[0].ID != 5 {
		t.Errorf("recipes = %+v", resp.Recipes)
	}
}

func TestGetRecipe(t *testing.T) {
	_, _, router := testEnv(t, models.Recipe{ID: 3, Name: "Pão"})

	if w := do(t, router, http.MethodGet, "/recipes/3", nil); w.Code != http.StatusOK {
		t.Errorf("get = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/recipes/4", nil); w.Code != http.StatusNotFound {
		t.Errorf("get missing = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/recipes/abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("get bad id = %d, want 400", w.Code)
	}
}

func TestModalCreateFlow(t *testing.T) {
	fake, ctrl, router := testEnv(t)
	fake.SetNextID(10)

	w := do(t, router, http.MethodPost, "/modal/create", nil)
	snap := decode[modal.Snapshot](t, w)
	if snap.State != modal.Creating || snap.Draft == nil || len(snap.Draft.Ingredients) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}

	name, category := "Limonada", "BEBIDA"
	do(t, router, http.MethodPatch, "/modal/draft", DraftPatch{Name: &name, Category: &category, ApproximateCost: models.Cost(3)})
	do(t, router, http.MethodPut, "/modal/ingredients/0", IngredientRequest{Value: "limão"})
	do(t, router, http.MethodPost, "/modal/ingredients", IngredientRequest{Value: "açúcar"})
	do(t, router, http.MethodPost, "/modal/ingredients", nil)
	w = do(t, router, http.MethodDelete, "/modal/ingredients/2", nil)
	snap = decode[modal.Snapshot](t, w)
	if got := snap.Draft.Ingredients; len(got) != 2 || got[0] != "limão" || got[1] != "açúcar" {
		t.Fatalf("ingredients = %v", got)
	}

	w = do(t, router, http.MethodPost, "/modal/submit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("submit = %d, body = %s", w.Code, w.Body.String())
	}
	if resp := decode[SubmitResponse](t, w); resp.Recipe.ID != 10 {
		t.Errorf("submitted id = %d", resp.Recipe.ID)
	}
	if got, ok := ctrl.Get(10); !ok || got.Name != "Limonada" {
		t.Errorf("collection entry = %+v, %v", got, ok)
	}
	if snap := decode[modal.Snapshot](t, do(t, router, http.MethodGet, "/modal", nil)); snap.State != modal.Closed {
		t.Errorf("modal state after submit = %v", snap.State)
	}
}

func TestModalEditIsIsolated(t *testing.T) {
	_, ctrl, router := testEnv(t, models.Recipe{ID: 1, Name: "Bolo", Ingredients: models.Ingredients{"ovo"}})

	if w := do(t, router, http.MethodPost, "/modal/edit/1", nil); w.Code != http.StatusOK {
		t.Fatalf("edit = %d", w.Code)
	}
	name := "Bolo de fubá"
	do(t, router, http.MethodPatch, "/modal/draft", DraftPatch{Name: &name})
	do(t, router, http.MethodPut, "/modal/ingredients/0", IngredientRequest{Value: "fubá"})

	if got, _ := ctrl.Get(1); got.Name != "Bolo" || got.Ingredients[0] != "ovo" {
		t.Fatalf("collection mutated before submit: %+v", got)
	}

	if w := do(t, router, http.MethodPost, "/modal/submit", nil); w.Code != http.StatusOK {
		t.Fatalf("submit = %d, body = %s", w.Code, w.Body.String())
	}
	if got, _ := ctrl.Get(1); got.Name != "Bolo de fubá" || got.Ingredients[0] != "fubá" {
		t.Errorf("collection after submit = %+v", got)
	}
}

func TestModalErrors(t *testing.T) {
	_, _, router := testEnv(t, models.Recipe{ID: 1, Name: "Bolo"})

	if w := do(t, router, http.MethodPost, "/modal/submit", nil); w.Code != http.StatusConflict {
		t.Errorf("submit while closed = %d, want 409", w.Code)
	}
	name := "x"
	if w := do(t, router, http.MethodPatch, "/modal/draft", DraftPatch{Name: &name}); w.Code != http.StatusConflict {
		t.Errorf("patch while closed = %d, want 409", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/modal/view/9", nil); w.Code != http.StatusNotFound {
		t.Errorf("view missing = %d, want 404", w.Code)
	}

	do(t, router, http.MethodPost, "/modal/create", nil)
	if w := do(t, router, http.MethodPut, "/modal/ingredients/3", IngredientRequest{Value: "x"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad index = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/modal/submit", nil); w.Code != http.StatusBadRequest {
		t.Errorf("submit without name = %d, want 400", w.Code)
	}
	if snap := decode[modal.Snapshot](t, do(t, router, http.MethodGet, "/modal", nil)); snap.State != modal.Creating {
		t.Errorf("failed submit should keep the modal open, state = %v", snap.State)
	}
}

func TestAppendIngredientWithoutDraft(t *testing.T) {
	_, _, router := testEnv(t)

	w := do(t, router, http.MethodPost, "/modal/ingredients", IngredientRequest{Value: "sal"})
	if w.Code != http.StatusConflict {
		t.Fatalf("append while closed = %d, want 409", w.Code)
	}

	do(t, router, http.MethodPost, "/modal/create", nil)
	w = do(t, router, http.MethodPost, "/modal/ingredients", IngredientRequest{Value: "sal"})
	snap := decode[modal.Snapshot](t, w)
	if got := snap.Draft.Ingredients; len(got) != 2 || got[1] != "sal" {
		t.Errorf("ingredients = %v", got)
	}
}
