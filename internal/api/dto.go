package api

import (
	"github.com/starford/receitas/internal/models"
)

// RecipeListResponse is the collection view: the recipes in display order
// plus the message of the last failed operation.
type RecipeListResponse struct {
	Recipes []models.Recipe `json:"recipes"`
	Error   string          `json:"error,omitempty"`
}

// DraftPatch is the body of PATCH /modal/draft. Absent fields are left as they are.
type DraftPatch struct {
	Name            *string  `json:"nome,omitempty"`
	Category        *string  `json:"tipo,omitempty"`
	Instructions    *string  `json:"modoFazer,omitempty"`
	ImageURL        *string  `json:"img,omitempty"`
	ApproximateCost *float64 `json:"custoAproximado,omitempty"`
	// ClearCost removes the approximate cost.
	ClearCost bool `json:"clearCost,omitempty"`
}

// IngredientRequest carries one ingredient value.
type IngredientRequest struct {
	Value string `json:"value"`
}

// SubmitResponse is returned by POST /modal/submit.
type SubmitResponse struct {
	Recipe models.Recipe `json:"recipe"`
}
