package ports

import (
	"context"

	"mandi/internal/certscore"
	"mandi/internal/domain"
)

// FarmRepository stores marketplace farms and their aggregate certification
// score.
type FarmRepository interface {
	CreateFarm(ctx context.Context, farm domain.Farm) (farmID string, err error)
	GetFarm(ctx context.Context, farmID string) (domain.Farm, error)
	// ListFarmsRanked returns farms ordered by certification score, best first.
	ListFarmsRanked(ctx context.Context) ([]domain.Farm, error)
}

// CertificateRepository manages certificate records. Every mutation that
// changes a certificate's score recomputes the owning farm's aggregate from
// the complete remaining list inside the same transaction.
type CertificateRepository interface {
	CreateCertificate(ctx context.Context, farmID, ocrText string) (certID string, err error)
	GetCertificate(ctx context.Context, certID string) (domain.Certificate, error)
	ListCertificatesByFarm(ctx context.Context, farmID string) ([]domain.Certificate, error)
	// StoreResult persists a score result, marks the certificate completed
	// and recomputes the farm aggregate.
	StoreResult(ctx context.Context, certID string, result *certscore.Result, reprocessed bool) error
	// MarkCertificateFailed records a processing failure; the certificate
	// keeps its text but carries no score data.
	MarkCertificateFailed(ctx context.Context, certID, reason string) error
	// DeleteCertificate removes a certificate and returns the farm's
	// recomputed aggregate score.
	DeleteCertificate(ctx context.Context, farmID, certID string) (certificationScore int, err error)
}
