// Package modal implements the single overlay of the recipe view as an
// explicit state machine: Closed, Viewing, Editing or Creating.
package modal

import (
	"context"
	"sync"

	"github.com/starford/receitas/internal/apperr"
	"github.com/starford/receitas/internal/models"
)

// State is the modal's current mode.
type State int

const (
	Closed State = iota
	Viewing
	Editing
	Creating
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	case Creating:
		return "creating"
	default:
		return "closed"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText. Unknown names decode as Closed.
func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "viewing":
		*s = Viewing
	case "editing":
		*s = Editing
	case "creating":
		*s = Creating
	default:
		*s = Closed
	}
	return nil
}

// Mutator is the subset of the collection controller a submit needs.
type Mutator interface {
	Create(ctx context.Context, d models.Draft) (models.Recipe, error)
	Update(ctx context.Context, id int, d models.Draft) (models.Recipe, error)
}

// Snapshot is a copy of the modal's content. Only the fields of the active
// state are set.
type Snapshot struct {
	State    State          `json:"state"`
	TargetID int            `json:"targetId,omitempty"`
	Selected *models.Recipe `json:"selected,omitempty"`
	Draft    *models.Draft  `json:"draft,omitempty"`
}

// Modal holds at most one of: a selected recipe or a draft.
type Modal struct {
	mu       sync.Mutex
	state    State
	selected models.Recipe
	targetID int
	draft    models.Draft
	// gen changes on every transition so a slow submit cannot close a modal
	// that was reopened meanwhile.
	gen uint64
}

// New returns a closed modal.
func New() *Modal {
	return &Modal{}
}

// OpenView shows r read-only.
func (m *Modal) OpenView(r models.Recipe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset(Viewing)
	m.selected = r.Clone()
}

// OpenEdit starts editing a copy of r. The original is never touched.
func (m *Modal) OpenEdit(r models.Recipe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset(Editing)
	m.targetID = r.ID
	m.draft = r.Draft()
}

// OpenCreate starts a blank draft with one empty ingredient row.
func (m *Modal) OpenCreate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset(Creating)
	m.draft = models.NewDraft()
}

// Close discards any selection or draft.
func (m *Modal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset(Closed)
}

// State returns the current mode.
func (m *Modal) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns a deep copy of the modal content.
func (m *Modal) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{State: m.state}
	switch m.state {
	case Viewing:
		r := m.selected.Clone()
		s.Selected = &r
	case Editing:
		s.TargetID = m.targetID
		d := m.draft.Clone()
		s.Draft = &d
	case Creating:
		d := m.draft.Clone()
		s.Draft = &d
	}
	return s
}

// SetName sets the draft name.
func (m *Modal) SetName(v string) error {
	return m.edit(func(d *models.Draft) error { d.Name = v; return nil })
}

// SetCategory sets the draft category.
func (m *Modal) SetCategory(v string) error {
	return m.edit(func(d *models.Draft) error { d.Category = v; return nil })
}

// SetInstructions sets the draft instructions.
func (m *Modal) SetInstructions(v string) error {
	return m.edit(func(d *models.Draft) error { d.Instructions = v; return nil })
}

// SetImageURL sets the draft image URL.
func (m *Modal) SetImageURL(v string) error {
	return m.edit(func(d *models.Draft) error { d.ImageURL = v; return nil })
}

// SetCost sets the approximate cost; nil clears it.
func (m *Modal) SetCost(v *float64) error {
	return m.edit(func(d *models.Draft) error {
		if v == nil {
			d.ApproximateCost = nil
			return nil
		}
		d.ApproximateCost = models.Cost(*v)
		return nil
	})
}

// AppendIngredient adds a row holding v at the end of the list. Use "" for
// an empty row.
func (m *Modal) AppendIngredient(v string) error {
	return m.edit(func(d *models.Draft) error { d.Ingredients.Append(v); return nil })
}

// SetIngredient replaces the ingredient at index i.
func (m *Modal) SetIngredient(i int, v string) error {
	return m.edit(func(d *models.Draft) error { return d.Ingredients.ReplaceAt(i, v) })
}

// RemoveIngredient deletes the ingredient at index i.
func (m *Modal) RemoveIngredient(i int) error {
	return m.edit(func(d *models.Draft) error { return d.Ingredients.RemoveAt(i) })
}

// Submit sends the draft through mut: Create while creating, Update while
// editing. On success the modal closes unless it changed during the call.
// On failure the draft stays as it was.
func (m *Modal) Submit(ctx context.Context, mut Mutator) (models.Recipe, error) {
	m.mu.Lock()
	state, id, gen := m.state, m.targetID, m.gen
	draft := m.draft.Clone()
	m.mu.Unlock()

	var (
		rec models.Recipe
		err error
	)
	switch state {
	case Creating:
		rec, err = mut.Create(ctx, draft)
	case Editing:
		rec, err = mut.Update(ctx, id, draft)
	default:
		return models.Recipe{}, apperr.ErrNothingToSubmit
	}
	if err != nil {
		return models.Recipe{}, err
	}

	m.mu.Lock()
	if m.gen == gen {
		m.reset(Closed)
	}
	m.mu.Unlock()
	return rec, nil
}

func (m *Modal) edit(fn func(d *models.Draft) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Editing && m.state != Creating {
		return apperr.ErrNoActiveDraft
	}
	return fn(&m.draft)
}

// reset must be called with mu held.
func (m *Modal) reset(s State) {
	m.state = s
	m.selected = models.Recipe{}
	m.targetID = 0
	m.draft = models.Draft{}
	m.gen++
}
