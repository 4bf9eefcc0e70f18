package repositories

import (
	"context"
	"encoding/json"

	"github.com/zatekoja/placesreview/internal/domain/entities"
)

// Record is one serialized entity as kept by a store.
type Record struct {
	ID   string
	Data json.RawMessage
}

// MutateFunc receives the current record and returns its replacement. Returning
// an error aborts the write and leaves the record untouched.
type MutateFunc func(current json.RawMessage) (json.RawMessage, error)

// EntityStore defines durable keyed storage for every entity kind
type EntityStore interface {
	// Insert stores a new record. The id must be unique within the kind.
	Insert(ctx context.Context, kind entities.Kind, rec Record) error

	// Get returns the record or a NOT_FOUND error
	Get(ctx context.Context, kind entities.Kind, id string) (*Record, error)

	// List returns every record of a kind in insertion order
	List(ctx context.Context, kind entities.Kind) ([]*Record, error)

	// ListByField returns records whose top-level JSON field equals value, in insertion order
	ListByField(ctx context.Context, kind entities.Kind, field, value string) ([]*Record, error)

	// Mutate performs an atomic read-modify-write of one record
	Mutate(ctx context.Context, kind entities.Kind, id string, fn MutateFunc) (*Record, error)

	// MutateWhere applies fn to every record matching field=value in one atomic
	// transaction and returns how many records were rewritten
	MutateWhere(ctx context.Context, kind entities.Kind, field, value string, fn MutateFunc) (int, error)

	// Reset clears every collection and relation atomically
	Reset(ctx context.Context) error

	// Close releases the underlying connection
	Close() error
}

// LikedPlaceRepository defines the likedPlaces relation (userId -> set of placeId)
type LikedPlaceRepository interface {
	// Like adds the pair and reports whether it was newly added
	Like(ctx context.Context, userID, placeID string) (bool, error)

	// Unlike removes the pair and reports whether it existed
	Unlike(ctx context.Context, userID, placeID string) (bool, error)

	// IsLiked reports whether the pair exists
	IsLiked(ctx context.Context, userID, placeID string) (bool, error)

	// LikedPlaces lists the places a user liked, oldest first
	LikedPlaces(ctx context.Context, userID string) ([]string, error)

	// PlaceLikers lists the users who liked a place, oldest first
	PlaceLikers(ctx context.Context, placeID string) ([]string, error)
}

// Store is the full persistence port used by the services.
type Store interface {
	EntityStore
	LikedPlaceRepository
}

// ErrSkip may be returned by a MutateFunc passed to MutateWhere to leave that
// record unchanged without aborting the batch.
var ErrSkip = skipError{}

type skipError struct{}

func (skipError) Error() string { return "skip record" }
