package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/receitas/internal/apperr"
	"github.com/starford/receitas/internal/checksum"
	"github.com/starford/receitas/internal/collection"
	"github.com/starford/receitas/internal/modal"
	"github.com/starford/receitas/internal/models"
	"github.com/starford/receitas/internal/sse"
)

// Publisher broadcasts UI events. *sse.Broker satisfies it.
type Publisher interface {
	Publish(event sse.Event)
}

// Handler holds API route handlers.
type Handler struct {
	ctrl   *collection.Controller
	modal  *modal.Modal
	events Publisher
}

// NewHandler creates a new Handler. events may be nil.
func NewHandler(ctrl *collection.Controller, m *modal.Modal, events Publisher) *Handler {
	return &Handler{ctrl: ctrl, modal: m, events: events}
}

func recipeID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ListRecipes handles GET /api/recipes.
//
//	@Summary		List the session's recipe collection
//	@Tags			recipes
//	@Produce		json
//	@Param			If-None-Match	header		string	false	"ETag of a previous response"
//	@Success		200				{object}	RecipeListResponse
//	@Success		304				"Collection unchanged"
//	@Router			/recipes [get]
func (h *Handler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	body, err := json.Marshal(h.listResponse())
	if err != nil {
		writeError(w, "list recipes", err)
		return
	}
	etag := checksum.ETag(body)
	w.Header().Set("ETag", etag)
	if checksum.Matches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(body, '\n'))
}

// GetRecipe handles GET /api/recipes/{id}.
//
//	@Summary		Get one recipe from the collection
//	@Tags			recipes
//	@Produce		json
//	@Param			id	path		int	true	"Recipe id"
//	@Success		200	{object}	models.Recipe
//	@Failure		404	{object}	errResponse
//	@Router			/recipes/{id} [get]
func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid recipe id"))
		return
	}
	rec, found := h.ctrl.Get(id)
	if !found {
		writeError(w, "get recipe", apperr.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// RefreshRecipes handles POST /api/recipes/refresh.
//
//	@Summary		Reload the collection from the recipe API
//	@Tags			recipes
//	@Produce		json
//	@Success		200	{object}	RecipeListResponse
//	@Failure		502	{object}	errResponse
//	@Router			/recipes/refresh [post]
func (h *Handler) RefreshRecipes(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Refresh(r.Context()); err != nil {
		writeError(w, "refresh recipes", err)
		return
	}
	writeJSON(w, http.StatusOK, h.listResponse())
}

// CreateRecipe handles POST /api/recipes.
//
//	@Summary		Create a recipe
//	@Tags			recipes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.Draft	true	"Recipe fields"
//	@Success		201		{object}	models.Recipe
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Router			/recipes [post]
func (h *Handler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var d models.Draft
	if !readJSON(w, r, &d, false) {
		return
	}
	rec, err := h.ctrl.Create(r.Context(), d)
	if err != nil {
		writeError(w, "create recipe", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// UpdateRecipe handles PUT /api/recipes/{id}.
//
//	@Summary		Replace every field of a recipe
//	@Tags			recipes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Recipe id"
//	@Param			body	body		models.Draft	true	"Recipe fields"
//	@Success		200		{object}	models.Recipe
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Router			/recipes/{id} [put]
func (h *Handler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid recipe id"))
		return
	}
	var d models.Draft
	if !readJSON(w, r, &d, false) {
		return
	}
	rec, err := h.ctrl.Update(r.Context(), id, d)
	if err != nil {
		writeError(w, "update recipe", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteRecipe handles DELETE /api/recipes/{id}.
//
//	@Summary		Delete a recipe
//	@Tags			recipes
//	@Param			id	path	int	true	"Recipe id"
//	@Success		204	"Recipe deleted"
//	@Failure		502	{object}	errResponse
//	@Router			/recipes/{id} [delete]
func (h *Handler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid recipe id"))
		return
	}
	if err := h.ctrl.Delete(r.Context(), id); err != nil {
		writeError(w, "delete recipe", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearError handles DELETE /api/error.
func (h *Handler) ClearError(w http.ResponseWriter, _ *http.Request) {
	h.ctrl.ClearError()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listResponse() RecipeListResponse {
	return RecipeListResponse{
		Recipes: h.ctrl.Recipes(),
		Error:   h.ctrl.PendingError(),
	}
}

func (h *Handler) publishModal() {
	if h.events == nil {
		return
	}
	h.events.Publish(sse.Event{Type: "modal.changed", Data: h.modal.Snapshot()})
}
