package ports

import (
	"context"
	"errors"

	"mandi/internal/domain"
)

// ErrNotFound is returned by repositories and services when a requested
// record does not exist.
var ErrNotFound = errors.New("not found")

// Certificates manages the certificate lifecycle for a farm: upload,
// retrieval, deletion and reprocessing.
type Certificates interface {
	Upload(ctx context.Context, farmID, ocrText string) (certID string, err error)
	Get(ctx context.Context, certID string) (domain.Certificate, error)
	List(ctx context.Context, farmID string) ([]domain.Certificate, error)
	Delete(ctx context.Context, farmID, certID string) (certificationScore int, err error)
}

// Farms manages marketplace farms and their ranking.
type Farms interface {
	Create(ctx context.Context, farm domain.Farm) (farmID string, err error)
	Get(ctx context.Context, farmID string) (domain.Farm, error)
	ListRanked(ctx context.Context) ([]domain.Farm, error)
}
