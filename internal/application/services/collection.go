package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/repositories"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

// Clock returns the current instant. Tests pin it.
type Clock func() time.Time

// entityPtr is the pointer form of a stored entity type.
type entityPtr[T any] interface {
	*T
	entities.Entity
}

// errUnchanged lets an update function keep the stored record as is.
var errUnchanged = errors.New("entity unchanged")

// Collection is a typed view over one kind of the entity store.
type Collection[T any, PT entityPtr[T]] struct {
	store repositories.EntityStore
	kind  entities.Kind
	now   Clock
}

// NewCollection binds T to its kind in store.
func NewCollection[T any, PT entityPtr[T]](store repositories.EntityStore, now Clock) *Collection[T, PT] {
	var zero T
	return &Collection[T, PT]{
		store: store,
		kind:  PT(&zero).Kind(),
		now:   now,
	}
}

// Kind returns the bound collection.
func (c *Collection[T, PT]) Kind() entities.Kind {
	return c.kind
}

func (c *Collection[T, PT]) decode(rec *repositories.Record) (PT, error) {
	var v T
	if err := json.Unmarshal(rec.Data, &v); err != nil {
		return nil, apperrors.NewInternalError("failed to decode "+string(c.kind)+" "+rec.ID, err)
	}
	return PT(&v), nil
}

func (c *Collection[T, PT]) encode(e PT) (json.RawMessage, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode "+string(c.kind), err)
	}
	return data, nil
}

// Create assigns a fresh id and timestamps, validates and persists e.
func (c *Collection[T, PT]) Create(ctx context.Context, e PT) (PT, error) {
	now := c.now().UTC()
	meta := e.GetMeta()
	meta.ID = uuid.NewString()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := c.encode(e)
	if err != nil {
		return nil, err
	}
	if err := c.store.Insert(ctx, c.kind, repositories.Record{ID: meta.ID, Data: data}); err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns the entity or a NOT_FOUND error.
func (c *Collection[T, PT]) Get(ctx context.Context, id string) (PT, error) {
	rec, err := c.store.Get(ctx, c.kind, id)
	if err != nil {
		return nil, err
	}
	return c.decode(rec)
}

// Exists reports whether id is stored.
func (c *Collection[T, PT]) Exists(ctx context.Context, id string) (bool, error) {
	_, err := c.store.Get(ctx, c.kind, id)
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// List returns entities accepted by keep in insertion order. A nil keep accepts all.
func (c *Collection[T, PT]) List(ctx context.Context, keep func(PT) bool) ([]PT, error) {
	records, err := c.store.List(ctx, c.kind)
	if err != nil {
		return nil, err
	}
	return c.filter(records, keep)
}

// ListBy returns entities whose JSON field equals value, in insertion order.
func (c *Collection[T, PT]) ListBy(ctx context.Context, field, value string, keep func(PT) bool) ([]PT, error) {
	records, err := c.store.ListByField(ctx, c.kind, field, value)
	if err != nil {
		return nil, err
	}
	return c.filter(records, keep)
}

func (c *Collection[T, PT]) filter(records []*repositories.Record, keep func(PT) bool) ([]PT, error) {
	out := make([]PT, 0, len(records))
	for _, rec := range records {
		e, err := c.decode(rec)
		if err != nil {
			return nil, err
		}
		if keep == nil || keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Update applies fn to the stored entity in one atomic read-modify-write,
// bumps UpdatedAt and revalidates. If fn returns errUnchanged nothing is
// written and the current entity is returned.
func (c *Collection[T, PT]) Update(ctx context.Context, id string, fn func(PT) error) (PT, error) {
	var current PT
	rec, err := c.store.Mutate(ctx, c.kind, id, func(data json.RawMessage) (json.RawMessage, error) {
		e, err := c.decode(&repositories.Record{ID: id, Data: data})
		if err != nil {
			return nil, err
		}
		current = e
		if err := fn(e); err != nil {
			return nil, err
		}
		return c.finish(e)
	})
	if errors.Is(err, errUnchanged) {
		return current, nil
	}
	if err != nil {
		return nil, err
	}
	return c.decode(rec)
}

// Patch merges the top-level fields of patch into the stored entity. Fields
// named in protected, and the identity fields, cannot be patched.
func (c *Collection[T, PT]) Patch(ctx context.Context, id string, patch json.RawMessage, protected ...string) (PT, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return nil, apperrors.NewValidationError("patch must be a JSON object")
	}
	for _, name := range append([]string{"id", "createdAt", "updatedAt"}, protected...) {
		delete(fields, name)
	}

	rec, err := c.store.Mutate(ctx, c.kind, id, func(data json.RawMessage) (json.RawMessage, error) {
		var merged map[string]json.RawMessage
		if err := json.Unmarshal(data, &merged); err != nil {
			return nil, apperrors.NewInternalError("failed to decode "+string(c.kind)+" "+id, err)
		}
		for name, value := range fields {
			merged[name] = value
		}
		raw, err := json.Marshal(merged)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to merge patch", err)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, apperrors.NewValidationError("patch does not fit " + string(c.kind) + ": " + err.Error())
		}
		return c.finish(PT(&v))
	})
	if err != nil {
		return nil, err
	}
	return c.decode(rec)
}

// UpdateWhere applies fn to every entity whose field equals value in one
// transaction. fn returns false to leave an entity untouched. It returns the
// updated entities.
func (c *Collection[T, PT]) UpdateWhere(ctx context.Context, field, value string, fn func(PT) bool) ([]PT, error) {
	var updated []PT
	_, err := c.store.MutateWhere(ctx, c.kind, field, value, func(data json.RawMessage) (json.RawMessage, error) {
		e, err := c.decode(&repositories.Record{Data: data})
		if err != nil {
			return nil, err
		}
		if !fn(e) {
			return nil, repositories.ErrSkip
		}
		next, err := c.finish(e)
		if err != nil {
			return nil, err
		}
		updated = append(updated, e)
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *Collection[T, PT]) finish(e PT) (json.RawMessage, error) {
	e.GetMeta().UpdatedAt = c.now().UTC()
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return c.encode(e)
}

// newestFirst reverses an insertion-ordered slice in place.
func newestFirst[T any](items []T) []T {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}
