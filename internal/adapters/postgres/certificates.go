package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"mandi/internal/certscore"
	"mandi/internal/domain"
)

// recomputeScoreSQL rebuilds a farm's aggregate certification score from the
// complete list of its scored certificates. Runs inside the same transaction
// as the mutation that invalidated the old value.
const recomputeScoreSQL = `
	UPDATE farms SET
		certification_score = COALESCE(
			(SELECT MAX(score) FROM certificates WHERE farm_id = $1 AND score IS NOT NULL), 0),
		updated_at = now()
	WHERE id = $1
	RETURNING certification_score
`

// CertificateRepository

func (db *DB) CreateCertificate(ctx context.Context, farmID, ocrText string) (string, error) {
	certID := uuid.New().String()

	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `
		INSERT INTO certificates (id, farm_id, ocr_text, status)
		VALUES ($1, $2, $3, 'queued')
	`, certID, farmID, ocrText); err != nil {
		return "", err
	}
	// create job row
	if _, err = tx.Exec(ctx, `INSERT INTO certificate_jobs (certificate_id) VALUES ($1)`, certID); err != nil {
		return "", err
	}
	return certID, nil
}

func (db *DB) GetCertificate(ctx context.Context, certID string) (domain.Certificate, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, farm_id, ocr_text, status, score, grade,
		       details, components, recommendations, is_pgs, authorization_info,
		       uploaded_at, reprocessed_at
		FROM certificates WHERE id = $1
	`, certID)
	cert, err := scanCertificate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return cert, ErrNotFound
	}
	return cert, err
}

func (db *DB) ListCertificatesByFarm(ctx context.Context, farmID string) ([]domain.Certificate, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, farm_id, ocr_text, status, score, grade,
		       details, components, recommendations, is_pgs, authorization_info,
		       uploaded_at, reprocessed_at
		FROM certificates WHERE farm_id = $1
		ORDER BY uploaded_at
	`, farmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var certs []domain.Certificate
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	return certs, rows.Err()
}

func (db *DB) StoreResult(ctx context.Context, certID string, result *certscore.Result, reprocessed bool) error {
	details, err := json.Marshal(result.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}
	components, err := json.Marshal(result.Components)
	if err != nil {
		return fmt.Errorf("marshal components: %w", err)
	}
	var recommendations, authInfo []byte
	if result.Recommendations != nil {
		if recommendations, err = json.Marshal(result.Recommendations); err != nil {
			return fmt.Errorf("marshal recommendations: %w", err)
		}
	}
	if result.AuthorizationInfo != nil {
		if authInfo, err = json.Marshal(result.AuthorizationInfo); err != nil {
			return fmt.Errorf("marshal authorization info: %w", err)
		}
	}

	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	var farmID string
	err = tx.QueryRow(ctx, `
		UPDATE certificates SET
			status = 'completed',
			score = $2,
			grade = $3,
			details = $4,
			components = $5,
			recommendations = $6,
			is_pgs = $7,
			authorization_info = $8,
			failure_reason = NULL,
			reprocessed_at = CASE WHEN $9 THEN now() ELSE reprocessed_at END
		WHERE id = $1
		RETURNING farm_id
	`, certID, result.Score, result.Grade, details, components, recommendations,
		result.Family == certscore.FamilyAuthorization, authInfo, reprocessed).Scan(&farmID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = ErrNotFound
		return err
	}
	if err != nil {
		return err
	}

	var score int
	err = tx.QueryRow(ctx, recomputeScoreSQL, farmID).Scan(&score)
	return err
}

func (db *DB) MarkCertificateFailed(ctx context.Context, certID, reason string) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE certificates SET status = 'failed', failure_reason = $2 WHERE id = $1
	`, certID, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeleteCertificate(ctx context.Context, farmID, certID string) (int, error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `DELETE FROM certificates WHERE id = $1 AND farm_id = $2`, certID, farmID)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		err = ErrNotFound
		return 0, err
	}

	var score int
	if err = tx.QueryRow(ctx, recomputeScoreSQL, farmID).Scan(&score); err != nil {
		return 0, err
	}
	return score, nil
}

func scanCertificate(row pgx.Row) (domain.Certificate, error) {
	var cert domain.Certificate
	var details, components, recommendations, authInfo []byte
	err := row.Scan(&cert.ID, &cert.FarmID, &cert.OCRText, &cert.Status, &cert.Score, &cert.Grade,
		&details, &components, &recommendations, &cert.IsPGS, &authInfo,
		&cert.UploadedAt, &cert.ReprocessedAt)
	if err != nil {
		return cert, err
	}

	if details != nil {
		if err := json.Unmarshal(details, &cert.Details); err != nil {
			return cert, fmt.Errorf("unmarshal details: %w", err)
		}
	}
	if components != nil {
		if err := json.Unmarshal(components, &cert.Components); err != nil {
			return cert, fmt.Errorf("unmarshal components: %w", err)
		}
	}
	if recommendations != nil {
		if err := json.Unmarshal(recommendations, &cert.Recommendations); err != nil {
			return cert, fmt.Errorf("unmarshal recommendations: %w", err)
		}
	}
	if authInfo != nil {
		if err := json.Unmarshal(authInfo, &cert.AuthorizationInfo); err != nil {
			return cert, fmt.Errorf("unmarshal authorization info: %w", err)
		}
	}
	return cert, nil
}
