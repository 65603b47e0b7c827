package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/receitas/internal/apperr"
)

// GetModal handles GET /api/modal.
func (h *Handler) GetModal(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.modal.Snapshot())
}

// ViewRecipe handles POST /api/modal/view/{id}.
func (h *Handler) ViewRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid recipe id"))
		return
	}
	rec, found := h.ctrl.Get(id)
	if !found {
		writeError(w, "view recipe", apperr.ErrNotFound)
		return
	}
	h.modal.OpenView(rec)
	h.modalChanged(w)
}

// EditRecipe handles POST /api/modal/edit/{id}. The draft is a copy of the
// collection entry.
func (h *Handler) EditRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid recipe id"))
		return
	}
	rec, found := h.ctrl.Get(id)
	if !found {
		writeError(w, "edit recipe", apperr.ErrNotFound)
		return
	}
	h.modal.OpenEdit(rec)
	h.modalChanged(w)
}

// CreateDraft handles POST /api/modal/create.
func (h *Handler) CreateDraft(w http.ResponseWriter, _ *http.Request) {
	h.modal.OpenCreate()
	h.modalChanged(w)
}

// CloseModal handles POST /api/modal/close.
func (h *Handler) CloseModal(w http.ResponseWriter, _ *http.Request) {
	h.modal.Close()
	h.modalChanged(w)
}

// PatchDraft handles PATCH /api/modal/draft.
func (h *Handler) PatchDraft(w http.ResponseWriter, r *http.Request) {
	var p DraftPatch
	if !readJSON(w, r, &p, false) {
		return
	}

	var edits []func() error
	if p.Name != nil {
		edits = append(edits, func() error { return h.modal.SetName(*p.Name) })
	}
	if p.Category != nil {
		edits = append(edits, func() error { return h.modal.SetCategory(*p.Category) })
	}
	if p.Instructions != nil {
		edits = append(edits, func() error { return h.modal.SetInstructions(*p.Instructions) })
	}
	if p.ImageURL != nil {
		edits = append(edits, func() error { return h.modal.SetImageURL(*p.ImageURL) })
	}
	if p.ApproximateCost != nil || p.ClearCost {
		edits = append(edits, func() error { return h.modal.SetCost(p.ApproximateCost) })
	}
	if len(edits) == 0 && h.modal.Snapshot().Draft == nil {
		writeError(w, "patch draft", apperr.ErrNoActiveDraft)
		return
	}

	for _, edit := range edits {
		if err := edit(); err != nil {
			writeError(w, "patch draft", err)
			return
		}
	}
	h.modalChanged(w)
}

// AppendIngredient handles POST /api/modal/ingredients. The body is optional;
// without one an empty row is added.
func (h *Handler) AppendIngredient(w http.ResponseWriter, r *http.Request) {
	var req IngredientRequest
	if !readJSON(w, r, &req, true) {
		return
	}
	if err := h.modal.AppendIngredient(req.Value); err != nil {
		writeError(w, "append ingredient", err)
		return
	}
	h.modalChanged(w)
}

// SetIngredient handles PUT /api/modal/ingredients/{index}.
func (h *Handler) SetIngredient(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid ingredient index"))
		return
	}
	var req IngredientRequest
	if !readJSON(w, r, &req, false) {
		return
	}
	if err := h.modal.SetIngredient(idx, req.Value); err != nil {
		writeError(w, "set ingredient", err)
		return
	}
	h.modalChanged(w)
}

// RemoveIngredient handles DELETE /api/modal/ingredients/{index}.
func (h *Handler) RemoveIngredient(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid ingredient index"))
		return
	}
	if err := h.modal.RemoveIngredient(idx); err != nil {
		writeError(w, "remove ingredient", err)
		return
	}
	h.modalChanged(w)
}

// SubmitModal handles POST /api/modal/submit: create or update from the
// draft, closing the modal on success.
func (h *Handler) SubmitModal(w http.ResponseWriter, r *http.Request) {
	rec, err := h.modal.Submit(r.Context(), h.ctrl)
	if err != nil {
		writeError(w, "submit draft", err)
		return
	}
	h.publishModal()
	writeJSON(w, http.StatusOK, SubmitResponse{Recipe: rec})
}

func (h *Handler) modalChanged(w http.ResponseWriter) {
	h.publishModal()
	writeJSON(w, http.StatusOK, h.modal.Snapshot())
}
