package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"mandi/internal/ports"
)

// ClaimNext selects the next queued job using SKIP LOCKED and marks it
// running, together with its certificate.
func (db *DB) ClaimNext(ctx context.Context) (job ports.CertificateJob, found bool, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return job, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	// Lock the next queued job
	err = tx.QueryRow(ctx, `
		SELECT id, certificate_id FROM certificate_jobs
		WHERE status = 'queued'
		ORDER BY queued_at
		FOR UPDATE SKIP LOCKED
		LIMIT 1
	`).Scan(&job.ID, &job.CertificateID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = nil
		return job, false, nil
	}
	if err != nil {
		return job, false, err
	}

	// Mark job running and bump attempts
	if _, err = tx.Exec(ctx, `
		UPDATE certificate_jobs SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1
	`, job.ID); err != nil {
		return job, false, err
	}
	// Ensure the certificate reflects running
	if _, err = tx.Exec(ctx, `
		UPDATE certificates SET status='running' WHERE id=$1 AND status='queued'
	`, job.CertificateID); err != nil {
		return job, false, err
	}
	return job, true, nil
}

func (db *DB) MarkCompleted(ctx context.Context, jobID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
		UPDATE certificate_jobs SET status='completed', finished_at=now() WHERE id=$1
	`, jobID)
	return err
}

func (db *DB) MarkFailed(ctx context.Context, jobID string, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
		UPDATE certificate_jobs SET status='failed', finished_at=now(), failure_reason=$2 WHERE id=$1
	`, jobID, reason)
	return err
}

// StartJobForCertificate marks the queued job for a specific certificate as
// running and returns the job id. Used by the inline wait path.
func (db *DB) StartJobForCertificate(ctx context.Context, certID string) (string, error) {
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

	var jobID string
	// lock the specific job row if queued
	err = tx.QueryRow(ctx, `
		SELECT id FROM certificate_jobs
		WHERE certificate_id = $1 AND status = 'queued'
		FOR UPDATE SKIP LOCKED
	`, certID).Scan(&jobID)
	if err != nil {
		return "", err
	}
	if _, err = tx.Exec(ctx, `
		UPDATE certificate_jobs SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1
	`, jobID); err != nil {
		return "", err
	}
	if _, err = tx.Exec(ctx, `
		UPDATE certificates SET status='running' WHERE id=$1 AND status='queued'
	`, certID); err != nil {
		return "", err
	}
	return jobID, nil
}
