package services

import (
	"context"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/repositories"
	"github.com/zatekoja/placesreview/internal/infrastructure/observability"
)

// AdminService exposes store-wide maintenance
type AdminService struct {
	store repositories.Store
}

// NewAdminService creates a new admin service
func NewAdminService(deps Deps) *AdminService {
	return &AdminService{store: deps.Store}
}

// Reset clears every collection and relation, leaving a first-run store
func (s *AdminService) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return err
	}
	observability.LoggerFromContext(ctx).Info().Msg("entity store reset")
	return nil
}

// Counts returns the number of records per collection
func (s *AdminService) Counts(ctx context.Context) (map[entities.Kind]int, error) {
	counts := make(map[entities.Kind]int, len(entities.AllKinds()))
	for _, kind := range entities.AllKinds() {
		records, err := s.store.List(ctx, kind)
		if err != nil {
			return nil, err
		}
		counts[kind] = len(records)
	}
	return counts, nil
}
