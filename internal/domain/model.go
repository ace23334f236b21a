package domain

import "time"

// Core domain models used internally. HTTP request/response types live in the
// http adapter; keep these decoupled where helpful.

// Farm is a marketplace seller. CertificationScore is the aggregate over all
// of the farm's scored certificates: max(score) or 0 when none remain.
type Farm struct {
	ID                 string
	Name               string
	OwnerID            string
	Address            string
	CertificationScore int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Certificate statuses.
const (
	CertStatusQueued    = "queued"
	CertStatusRunning   = "running"
	CertStatusCompleted = "completed"
	CertStatusFailed    = "failed"
)

// Certificate is one uploaded certification document and, once processed, its
// score result. A failed certificate keeps its text but carries no score data.
type Certificate struct {
	ID                string
	FarmID            string
	OCRText           string
	Status            string // queued|running|completed|failed
	Score             *int
	Grade             *string
	Details           map[string]any
	Components        map[string]any
	Recommendations   []string
	IsPGS             bool
	AuthorizationInfo map[string]any
	UploadedAt        time.Time
	ReprocessedAt     *time.Time
}

// CertificateJob tracks async processing of one certificate.
type CertificateJob struct {
	ID            string
	CertificateID string
	Status        string
	Attempts      int
	QueuedAt      time.Time
	StartedAt     *time.Time
	FinishedAt    *time.Time
	FailureReason *string
}
