package certificates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mandi/internal/certscore"
	"mandi/internal/domain"
	"mandi/internal/ports"
)

var (
	// ErrEmptyText rejects uploads with no OCR text at all.
	ErrEmptyText = errors.New("certificate text is empty")
	// ErrWrongFarm is returned when a certificate does not belong to the farm
	// named in the request.
	ErrWrongFarm = errors.New("certificate does not belong to farm")
)

// Service orchestrates the certificate lifecycle around the scoring engine.
type Service struct {
	engine *certscore.Engine
	certs  ports.CertificateRepository
	logger *zap.Logger
}

func New(engine *certscore.Engine, certs ports.CertificateRepository, logger *zap.Logger) *Service {
	return &Service{engine: engine, certs: certs, logger: logger}
}

// Upload stores the OCR text of a new certificate and queues it for
// processing. Texts too short to score are still accepted; processing marks
// them failed and the certificate keeps its bare text without score data.
func (s *Service) Upload(ctx context.Context, farmID, ocrText string) (string, error) {
	if strings.TrimSpace(ocrText) == "" {
		return "", ErrEmptyText
	}
	certID, err := s.certs.CreateCertificate(ctx, farmID, ocrText)
	if err != nil {
		return "", fmt.Errorf("create certificate: %w", err)
	}
	s.logger.Info("certificate uploaded",
		zap.String("farm_id", farmID),
		zap.String("certificate_id", certID),
		zap.Int("text_length", len(ocrText)))
	return certID, nil
}

// Process runs the scoring pipeline for a stored certificate and persists the
// outcome. Both the background workers and the inline wait path go through
// here. A text-too-short failure is recorded on the certificate and returned.
func (s *Service) Process(ctx context.Context, certID string) error {
	cert, err := s.certs.GetCertificate(ctx, certID)
	if err != nil {
		return fmt.Errorf("load certificate %s: %w", certID, err)
	}

	result, err := s.engine.Process(cert.OCRText)
	if err != nil {
		if markErr := s.certs.MarkCertificateFailed(ctx, certID, err.Error()); markErr != nil {
			s.logger.Error("mark certificate failed", zap.String("certificate_id", certID), zap.Error(markErr))
		}
		return fmt.Errorf("process certificate %s: %w", certID, err)
	}

	if err := s.certs.StoreResult(ctx, certID, result, false); err != nil {
		return fmt.Errorf("store result for certificate %s: %w", certID, err)
	}

	s.logger.Info("certificate processed",
		zap.String("certificate_id", certID),
		zap.Int("score", result.Score),
		zap.String("grade", result.Grade),
		zap.String("family", string(result.Family)))
	return nil
}

// Reprocess re-runs the whole pipeline on a certificate's stored text and
// replaces the stored result, recording the reprocessing time. The farm
// aggregate is recomputed from the full certificate list as part of the store.
func (s *Service) Reprocess(ctx context.Context, farmID, certID string) (domain.Certificate, error) {
	cert, err := s.certs.GetCertificate(ctx, certID)
	if err != nil {
		return domain.Certificate{}, err
	}
	if cert.FarmID != farmID {
		return domain.Certificate{}, ErrWrongFarm
	}

	result, err := s.engine.Process(cert.OCRText)
	if err != nil {
		if markErr := s.certs.MarkCertificateFailed(ctx, certID, err.Error()); markErr != nil {
			s.logger.Error("mark certificate failed", zap.String("certificate_id", certID), zap.Error(markErr))
		}
		return domain.Certificate{}, err
	}

	if err := s.certs.StoreResult(ctx, certID, result, true); err != nil {
		return domain.Certificate{}, fmt.Errorf("store reprocessed result: %w", err)
	}

	s.logger.Info("certificate reprocessed",
		zap.String("certificate_id", certID),
		zap.Int("score", result.Score),
		zap.String("grade", result.Grade))
	return s.certs.GetCertificate(ctx, certID)
}

func (s *Service) Get(ctx context.Context, certID string) (domain.Certificate, error) {
	return s.certs.GetCertificate(ctx, certID)
}

func (s *Service) List(ctx context.Context, farmID string) ([]domain.Certificate, error) {
	return s.certs.ListCertificatesByFarm(ctx, farmID)
}

// Delete removes a certificate and returns the farm's recomputed aggregate
// certification score.
func (s *Service) Delete(ctx context.Context, farmID, certID string) (int, error) {
	score, err := s.certs.DeleteCertificate(ctx, farmID, certID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("certificate deleted",
		zap.String("farm_id", farmID),
		zap.String("certificate_id", certID),
		zap.Int("certification_score", score))
	return score, nil
}
