// Package collection holds the session's recipe collection and keeps it in
// step with the remote resource after every mutation.
package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/starford/receitas/internal/apperr"
	"github.com/starford/receitas/internal/models"
)

// Remote is the recipe resource the controller mirrors.
type Remote interface {
	List(ctx context.Context) ([]models.Recipe, error)
	Create(ctx context.Context, d models.Draft) (models.Recipe, error)
	Update(ctx context.Context, id int, d models.Draft) (models.Recipe, error)
	Delete(ctx context.Context, id int) error
}

// Strategy selects how a successful create is reconciled locally.
type Strategy string

const (
	// StrategyAppend appends the record returned by the server.
	StrategyAppend Strategy = "append"
	// StrategyRefetch reloads the whole collection.
	StrategyRefetch Strategy = "refetch"
)

// Change kinds passed to a ChangeFunc.
const (
	KindRefreshed = "refreshed"
	KindCreated   = "created"
	KindUpdated   = "updated"
	KindDeleted   = "deleted"
	KindError     = "error"
)

// ChangeFunc is called after every state change. id is 0 for collection-wide kinds.
type ChangeFunc func(kind string, id int)

const (
	opRefresh = "refresh"
	opCreate  = "create"
	opUpdate  = "update"
	opDelete  = "delete"
)

var failureMessages = map[string]string{
	opRefresh: "Could not connect to the recipe API. Check the API URL.",
	opCreate:  "Could not create the recipe.",
	opUpdate:  "Could not save the recipe.",
	opDelete:  "Could not delete the recipe.",
}

// Controller owns the in-memory recipe collection for one session.
type Controller struct {
	remote   Remote
	strategy Strategy
	logger   *slog.Logger
	onChange ChangeFunc

	mu           sync.RWMutex
	collection   []models.Recipe
	pendingError string

	keys      *keyLock
	refreshes singleflight.Group
}

// Option configures a Controller.
type Option func(*Controller)

// WithStrategy sets the create reconciliation strategy.
func WithStrategy(s Strategy) Option {
	return func(c *Controller) { c.strategy = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithChangeFunc registers a listener for state changes.
func WithChangeFunc(fn ChangeFunc) Option {
	return func(c *Controller) { c.onChange = fn }
}

// New creates a controller with an empty collection.
func New(remote Remote, opts ...Option) *Controller {
	c := &Controller{
		remote:     remote,
		strategy:   StrategyAppend,
		logger:     slog.Default(),
		collection: []models.Recipe{},
		keys:       newKeyLock(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Recipes returns a deep copy of the collection in display order.
func (c *Controller) Recipes() []models.Recipe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Recipe, len(c.collection))
	for i, r := range c.collection {
		out[i] = r.Clone()
	}
	return out
}

// Get returns a copy of the recipe with the given id.
func (c *Controller) Get(id int) (models.Recipe, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.collection[i].Clone(), true
	}
	return models.Recipe{}, false
}

// PendingError returns the message of the last failed operation, or "".
func (c *Controller) PendingError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pendingError
}

// ClearError dismisses the pending error message.
func (c *Controller) ClearError() {
	c.mu.Lock()
	c.pendingError = ""
	c.mu.Unlock()
}

// Refresh replaces the collection with the server's current list.
// Concurrent calls share one request. On failure the collection is kept.
func (c *Controller) Refresh(ctx context.Context) error {
	_, err, _ := c.refreshes.Do(opRefresh, func() (any, error) {
		_, err := c.reload(ctx)
		return nil, err
	})
	return err
}

// reload reads the list and replaces the collection with it. Unlike Refresh
// it never joins a read that is already in flight, so the result is at least
// as new as the call. It returns a copy of what it stored.
func (c *Controller) reload(ctx context.Context) ([]models.Recipe, error) {
	list, err := c.remote.List(ctx)
	if err != nil {
		return nil, c.fail(opRefresh, failureMessages[opRefresh], err)
	}
	fresh := make([]models.Recipe, len(list))
	for i, r := range list {
		fresh[i] = r.Clone()
	}

	c.mu.Lock()
	c.collection = fresh
	c.pendingError = ""
	c.mu.Unlock()

	c.logger.Debug("recipes refreshed", slog.Int("count", len(fresh)))
	c.notify(KindRefreshed, 0)

	out := make([]models.Recipe, len(fresh))
	for i, r := range fresh {
		out[i] = r.Clone()
	}
	return out, nil
}

// Create submits a new recipe. On success the collection holds the record as
// the server stored it, under the server-assigned id.
func (c *Controller) Create(ctx context.Context, d models.Draft) (models.Recipe, error) {
	d = d.Clone()
	if err := c.validate(opCreate, d); err != nil {
		return models.Recipe{}, err
	}

	before := c.ids()
	rec, err := c.remote.Create(ctx, d)
	if err != nil {
		return models.Recipe{}, c.fail(opCreate, failureMessages[opCreate], err)
	}

	// Never invent an id: find the record in a fresh read instead.
	if rec.ID == 0 {
		c.logger.Warn("create response carried no id, refetching")
		list, err := c.reload(ctx)
		if err != nil {
			return models.Recipe{}, fmt.Errorf("create recipe: locate created record: %w", err)
		}
		found, ok := findCreated(list, before, d)
		if !ok {
			return models.Recipe{}, c.fail(opCreate, failureMessages[opCreate],
				fmt.Errorf("created record missing from collection: %w", apperr.ErrServer))
		}
		c.notify(KindCreated, found.ID)
		return found, nil
	}

	refetchFailed := false
	if c.strategy == StrategyRefetch {
		if _, err := c.reload(ctx); err != nil {
			refetchFailed = true
			c.logger.Warn("refetch after create failed, appending server record",
				slog.Int("id", rec.ID), slog.String("error", err.Error()))
		}
	}

	c.mu.Lock()
	if i := c.indexOf(rec.ID); i >= 0 {
		c.collection[i] = rec.Clone()
	} else {
		c.collection = append(c.collection, rec.Clone())
	}
	if !refetchFailed {
		c.pendingError = ""
	}
	c.mu.Unlock()

	c.notify(KindCreated, rec.ID)
	return rec.Clone(), nil
}

// Update replaces every field of recipe id. The local entry is replaced in
// place; an id missing locally leaves the collection untouched.
func (c *Controller) Update(ctx context.Context, id int, d models.Draft) (models.Recipe, error) {
	d = d.Clone()
	if err := c.validate(opUpdate, d); err != nil {
		return models.Recipe{}, err
	}

	unlock := c.keys.Lock(id)
	defer unlock()

	rec, err := c.remote.Update(ctx, id, d)
	if err != nil {
		return models.Recipe{}, c.fail(opUpdate, failureMessages[opUpdate], err)
	}
	switch {
	case rec.ID == 0:
		rec = d.Recipe(id)
	case rec.ID != id:
		c.logger.Warn("update response id mismatch",
			slog.Int("id", id), slog.Int("response_id", rec.ID))
		rec.ID = id
	}

	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.collection[i] = rec.Clone()
	} else {
		c.logger.Debug("updated recipe not in local collection", slog.Int("id", id))
	}
	c.pendingError = ""
	c.mu.Unlock()

	c.notify(KindUpdated, id)
	return rec.Clone(), nil
}

// Delete removes recipe id remotely, then drops it from the collection.
func (c *Controller) Delete(ctx context.Context, id int) error {
	unlock := c.keys.Lock(id)
	defer unlock()

	if err := c.remote.Delete(ctx, id); err != nil {
		return c.fail(opDelete, failureMessages[opDelete], err)
	}

	c.mu.Lock()
	c.collection = slices.DeleteFunc(c.collection, func(r models.Recipe) bool { return r.ID == id })
	c.pendingError = ""
	c.mu.Unlock()

	c.notify(KindDeleted, id)
	return nil
}

func (c *Controller) validate(op string, d models.Draft) error {
	if err := d.Validate(); err != nil {
		return c.fail(op, "Invalid recipe: "+err.Error(), fmt.Errorf("%w: %w", apperr.ErrInvalidDraft, err))
	}
	return nil
}

// fail records msg as the pending error and returns err wrapped with op.
func (c *Controller) fail(op, msg string, err error) error {
	c.mu.Lock()
	c.pendingError = msg
	c.mu.Unlock()

	level := slog.LevelError
	if errors.Is(err, apperr.ErrInvalidDraft) {
		level = slog.LevelInfo
	}
	c.logger.Log(context.Background(), level, "recipe operation failed",
		slog.String("op", op), slog.String("error", err.Error()))
	c.notify(KindError, 0)
	return fmt.Errorf("%s recipe: %w", op, err)
}

func (c *Controller) notify(kind string, id int) {
	if c.onChange != nil {
		c.onChange(kind, id)
	}
}

// indexOf must be called with mu held.
func (c *Controller) indexOf(id int) int {
	return slices.IndexFunc(c.collection, func(r models.Recipe) bool { return r.ID == id })
}

func (c *Controller) ids() map[int]struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[int]struct{}, len(c.collection))
	for _, r := range c.collection {
		out[r.ID] = struct{}{}
	}
	return out
}

// findCreated looks in list for a record that was not present before the
// create and carries the submitted fields. A single new record is accepted as-is.
func findCreated(list []models.Recipe, before map[int]struct{}, d models.Draft) (models.Recipe, bool) {
	var added []models.Recipe
	for i := len(list) - 1; i >= 0; i-- {
		r := list[i]
		if _, seen := before[r.ID]; seen {
			continue
		}
		if reflect.DeepEqual(r.Draft(), d) {
			return r.Clone(), true
		}
		added = append(added, r)
	}
	if len(added) == 1 {
		return added[0].Clone(), true
	}
	return models.Recipe{}, false
}
