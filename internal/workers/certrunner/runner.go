package certrunner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mandi/internal/ports"
)

// Processor runs the scoring pipeline for a claimed job's certificate.
type Processor interface {
	Process(ctx context.Context, certID string) error
}

// Run starts worker goroutines that claim queued certificate jobs and process
// them. It returns immediately; workers stop when ctx is cancelled.
func Run(ctx context.Context, repo ports.JobRepository, processor Processor, concurrency int, pollInterval time.Duration, logger *zap.Logger) {
	if concurrency < 1 {
		return
	}
	jobsCh := make(chan ports.CertificateJob, concurrency)

	// dispatcher loop
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				close(jobsCh)
				return
			case <-ticker.C:
				for {
					job, found, err := repo.ClaimNext(ctx)
					if err != nil {
						logger.Warn("job claim error", zap.Error(err))
						break
					}
					if !found {
						break
					}
					jobsCh <- job
				}
			}
		}
	}()

	// workers
	for i := 0; i < concurrency; i++ {
		go func(idx int) {
			for job := range jobsCh {
				if err := processor.Process(ctx, job.CertificateID); err != nil {
					_ = repo.MarkFailed(ctx, job.ID, err.Error())
					logger.Warn("certificate job failed",
						zap.Int("worker", idx),
						zap.String("job_id", job.ID),
						zap.String("certificate_id", job.CertificateID),
						zap.Error(err))
					continue
				}
				if err := repo.MarkCompleted(ctx, job.ID); err != nil {
					logger.Error("complete job",
						zap.Int("worker", idx),
						zap.String("job_id", job.ID),
						zap.Error(err))
				}
			}
		}(i)
	}
}

// ProcessInline starts and processes a specific certificate synchronously
// using the same processor logic as the background workers. It marks the job
// running, calls processor.Process, and completes or fails it.
func ProcessInline(ctx context.Context, repo ports.JobRepository, processor Processor, certID string) error {
	jobID, err := repo.StartJobForCertificate(ctx, certID)
	if err != nil {
		return err
	}
	if err := processor.Process(ctx, certID); err != nil {
		_ = repo.MarkFailed(ctx, jobID, err.Error())
		return err
	}
	return repo.MarkCompleted(ctx, jobID)
}
