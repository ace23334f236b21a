package farms

import (
	"context"

	"mandi/internal/domain"
	"mandi/internal/ports"
)

// Service manages marketplace farms. Aggregate certification scores are
// maintained by the certificate repository; this service only reads them.
type Service struct {
	farms ports.FarmRepository
}

func New(farms ports.FarmRepository) *Service { return &Service{farms: farms} }

func (s *Service) Create(ctx context.Context, farm domain.Farm) (string, error) {
	return s.farms.CreateFarm(ctx, farm)
}

func (s *Service) Get(ctx context.Context, farmID string) (domain.Farm, error) {
	return s.farms.GetFarm(ctx, farmID)
}

// ListRanked returns farms ordered by certification score for marketplace
// ranking.
func (s *Service) ListRanked(ctx context.Context) ([]domain.Farm, error) {
	return s.farms.ListFarmsRanked(ctx)
}
