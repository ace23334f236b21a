package ports

import "context"

type CertificateJob struct {
	ID            string
	CertificateID string
}

// JobRepository supports claiming and updating certificate processing jobs.
type JobRepository interface {
	ClaimNext(ctx context.Context) (job CertificateJob, found bool, err error)
	MarkCompleted(ctx context.Context, jobID string) error
	MarkFailed(ctx context.Context, jobID string, reason string) error
	StartJobForCertificate(ctx context.Context, certID string) (jobID string, err error)
}
