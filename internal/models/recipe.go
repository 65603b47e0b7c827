// Package models defines the domain types for receitas.
package models

import (
	"encoding/json"
	"slices"

	"github.com/starford/receitas/internal/apperr"
)

// Recipe is a recipe record as stored by the remote resource.
// Field names on the wire follow the remote API.
type Recipe struct {
	ID              int         `json:"id" yaml:"id"`
	Name            string      `json:"nome" yaml:"nome"`
	Category        string      `json:"tipo,omitempty" yaml:"tipo,omitempty"`
	Ingredients     Ingredients `json:"ingredientes" yaml:"ingredientes"`
	Instructions    string      `json:"modoFazer" yaml:"modoFazer"`
	ImageURL        string      `json:"img" yaml:"img"`
	ApproximateCost *float64    `json:"custoAproximado,omitempty" yaml:"custoAproximado,omitempty"`
}

// Draft holds the editable fields of a recipe before submission.
type Draft struct {
	Name            string      `json:"nome" yaml:"nome"`
	Category        string      `json:"tipo,omitempty" yaml:"tipo,omitempty"`
	Ingredients     Ingredients `json:"ingredientes" yaml:"ingredientes"`
	Instructions    string      `json:"modoFazer" yaml:"modoFazer"`
	ImageURL        string      `json:"img" yaml:"img"`
	ApproximateCost *float64    `json:"custoAproximado,omitempty" yaml:"custoAproximado,omitempty"`
}

// NewDraft returns an empty draft seeded with one blank ingredient row.
func NewDraft() Draft {
	return Draft{Ingredients: Ingredients{""}}
}

// Clone returns a deep copy of r.
func (r Recipe) Clone() Recipe {
	r.Ingredients = r.Ingredients.Clone()
	r.ApproximateCost = cloneCost(r.ApproximateCost)
	return r
}

// Draft copies every field of r into a new draft.
// The copy shares no memory with r.
func (r Recipe) Draft() Draft {
	return Draft{
		Name:            r.Name,
		Category:        r.Category,
		Ingredients:     r.Ingredients.Clone(),
		Instructions:    r.Instructions,
		ImageURL:        r.ImageURL,
		ApproximateCost: cloneCost(r.ApproximateCost),
	}
}

// Clone returns a deep copy of d.
func (d Draft) Clone() Draft {
	d.Ingredients = d.Ingredients.Clone()
	d.ApproximateCost = cloneCost(d.ApproximateCost)
	return d
}

// Recipe builds a record with the given id from the draft fields.
func (d Draft) Recipe(id int) Recipe {
	return Recipe{
		ID:              id,
		Name:            d.Name,
		Category:        d.Category,
		Ingredients:     d.Ingredients.Clone(),
		Instructions:    d.Instructions,
		ImageURL:        d.ImageURL,
		ApproximateCost: cloneCost(d.ApproximateCost),
	}
}

// Cost returns a pointer to v, for populating ApproximateCost.
func Cost(v float64) *float64 {
	return &v
}

func cloneCost(c *float64) *float64 {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}

// Ingredients is the ordered ingredient list of a recipe. Order is display order.
type Ingredients []string

// Clone returns a copy with its own backing array. A nil list clones to an empty one.
func (in Ingredients) Clone() Ingredients {
	if in == nil {
		return Ingredients{}
	}
	return slices.Clone(in)
}

// Append adds one entry at the end.
func (in *Ingredients) Append(v string) {
	*in = append(*in, v)
}

// ReplaceAt sets the entry at index i.
func (in Ingredients) ReplaceAt(i int, v string) error {
	if i < 0 || i >= len(in) {
		return apperr.ErrIndexOutOfRange
	}
	in[i] = v
	return nil
}

// RemoveAt deletes the entry at index i, shifting later entries down.
func (in *Ingredients) RemoveAt(i int) error {
	if i < 0 || i >= len(*in) {
		return apperr.ErrIndexOutOfRange
	}
	*in = slices.Delete(*in, i, i+1)
	return nil
}

// MarshalJSON encodes a nil list as an empty array.
func (in Ingredients) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(in.Clone()))
}
