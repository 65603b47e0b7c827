package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/receitas/internal/collection"
	"github.com/starford/receitas/internal/modal"
	"github.com/starford/receitas/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// broker, if non-nil, receives modal events and is mounted at GET /events.
func NewRouter(ctrl *collection.Controller, m *modal.Modal, broker *sse.Broker, allowedOrigins []string) chi.Router {
	var events Publisher
	if broker != nil {
		events = broker
	}
	h := NewHandler(ctrl, m, events)

	r := chi.NewRouter()
	r.Use(CORSMiddleware(allowedOrigins))

	// Collection.
	r.Get("/recipes", h.ListRecipes)
	r.Post("/recipes", h.CreateRecipe)
	r.Post("/recipes/refresh", h.RefreshRecipes)
	r.Get("/recipes/{id}", h.GetRecipe)
	r.Put("/recipes/{id}", h.UpdateRecipe)
	r.Delete("/recipes/{id}", h.DeleteRecipe)
	r.Delete("/error", h.ClearError)

	// Overlay.
	r.Route("/modal", func(r chi.Router) {
		r.Get("/", h.GetModal)
		r.Post("/view/{id}", h.ViewRecipe)
		r.Post("/edit/{id}", h.EditRecipe)
		r.Post("/create", h.CreateDraft)
		r.Post("/close", h.CloseModal)
		r.Patch("/draft", h.PatchDraft)
		r.Post("/ingredients", h.AppendIngredient)
		r.Put("/ingredients/{index}", h.SetIngredient)
		r.Delete("/ingredients/{index}", h.RemoveIngredient)
		r.Post("/submit", h.SubmitModal)
	})

	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}
