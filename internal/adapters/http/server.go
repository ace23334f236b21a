package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"mandi/internal/certscore"
	"mandi/internal/domain"
	"mandi/internal/ports"
	certsvc "mandi/internal/services/certificates"
	certrunner "mandi/internal/workers/certrunner"
)

// Reprocessor re-runs the scoring pipeline on a stored certificate.
type Reprocessor interface {
	Reprocess(ctx context.Context, farmID, certID string) (domain.Certificate, error)
}

// Server exposes the marketplace certificate API.
type Server struct {
	farms       ports.Farms
	certs       ports.Certificates
	reprocessor Reprocessor
	jobs        ports.JobRepository
	processor   certrunner.Processor
	validate    *validator.Validate
	logger      *zap.Logger
}

func New(farms ports.Farms, certs ports.Certificates, reprocessor Reprocessor, jobs ports.JobRepository, processor certrunner.Processor, logger *zap.Logger) *Server {
	return &Server{
		farms:       farms,
		certs:       certs,
		reprocessor: reprocessor,
		jobs:        jobs,
		processor:   processor,
		validate:    validator.New(),
		logger:      logger,
	}
}

// Routes returns a chi.Router with all handlers mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.getHealthz)
	r.Post("/farms", s.postFarm)
	r.Get("/farms", s.listFarms)
	r.Get("/farms/{farmID}", s.getFarm)
	r.Post("/farms/{farmID}/certificates", s.postCertificate)
	r.Get("/farms/{farmID}/certificates", s.listCertificates)
	r.Delete("/farms/{farmID}/certificates/{certID}", s.deleteCertificate)
	r.Post("/farms/{farmID}/certificates/{certID}/reprocess", s.reprocessCertificate)
	return r
}

type createFarmRequest struct {
	Name    string `json:"name" validate:"required"`
	OwnerID string `json:"owner_id" validate:"required"`
	Address string `json:"address"`
}

type uploadCertificateRequest struct {
	OCRText string `json:"ocr_text" validate:"required,min=1"`
}

type farmResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	OwnerID            string `json:"owner_id"`
	Address            string `json:"address,omitempty"`
	CertificationScore int    `json:"certification_score"`
}

type certificateResponse struct {
	ID                string         `json:"id"`
	FarmID            string         `json:"farm_id"`
	Status            string         `json:"status"`
	Score             *int           `json:"score,omitempty"`
	Grade             *string        `json:"grade,omitempty"`
	Details           map[string]any `json:"details,omitempty"`
	Components        map[string]any `json:"components,omitempty"`
	Recommendations   []string       `json:"recommendations,omitempty"`
	IsPGSCertificate  bool           `json:"is_pgs_certificate"`
	AuthorizationInfo map[string]any `json:"authorization_info,omitempty"`
	UploadedAt        time.Time      `json:"uploaded_at"`
	ReprocessedAt     *time.Time     `json:"reprocessed_at,omitempty"`
}

func (s *Server) getHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) postFarm(w http.ResponseWriter, r *http.Request) {
	var req createFarmRequest
	if !s.decode(w, r, &req) {
		return
	}
	id, err := s.farms.Create(r.Context(), domain.Farm{Name: req.Name, OwnerID: req.OwnerID, Address: req.Address})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) listFarms(w http.ResponseWriter, r *http.Request) {
	farms, err := s.farms.ListRanked(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]farmResponse, 0, len(farms))
	for _, f := range farms {
		out = append(out, toFarmResponse(f))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getFarm(w http.ResponseWriter, r *http.Request) {
	farm, err := s.farms.Get(r.Context(), chi.URLParam(r, "farmID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFarmResponse(farm))
}

func (s *Server) postCertificate(w http.ResponseWriter, r *http.Request) {
	farmID := chi.URLParam(r, "farmID")
	if _, err := s.farms.Get(r.Context(), farmID); err != nil {
		s.writeError(w, err)
		return
	}

	var req uploadCertificateRequest
	if !s.decode(w, r, &req) {
		return
	}

	certID, err := s.certs.Upload(r.Context(), farmID, req.OCRText)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Blocking path: process inline with the same processor the workers use.
	if r.URL.Query().Get("wait") == "true" {
		timeout := 30
		if t, err := strconv.Atoi(r.URL.Query().Get("timeout")); err == nil && t > 0 {
			timeout = t
		}
		ctx, cancel := context.WithTimeout(r.Context(), time.Duration(timeout)*time.Second)
		defer cancel()

		if err := certrunner.ProcessInline(ctx, s.jobs, s.processor, certID); err != nil {
			s.writeError(w, err)
			return
		}
		cert, err := s.certs.Get(ctx, certID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCertificateResponse(cert))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"certificate_id": certID, "farm_id": farmID})
}

func (s *Server) listCertificates(w http.ResponseWriter, r *http.Request) {
	farmID := chi.URLParam(r, "farmID")
	farm, err := s.farms.Get(r.Context(), farmID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	certs, err := s.certs.List(r.Context(), farmID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]certificateResponse, 0, len(certs))
	for _, c := range certs {
		out = append(out, toCertificateResponse(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"certificates":        out,
		"certification_score": farm.CertificationScore,
	})
}

func (s *Server) deleteCertificate(w http.ResponseWriter, r *http.Request) {
	score, err := s.certs.Delete(r.Context(), chi.URLParam(r, "farmID"), chi.URLParam(r, "certID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"certification_score": score})
}

func (s *Server) reprocessCertificate(w http.ResponseWriter, r *http.Request) {
	cert, err := s.reprocessor.Reprocess(r.Context(), chi.URLParam(r, "farmID"), chi.URLParam(r, "certID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCertificateResponse(cert))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, certsvc.ErrWrongFarm):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "certificate not found for farm"})
	case errors.Is(err, certsvc.ErrEmptyText), errors.Is(err, certscore.ErrTextTooShort):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "certificate could not be read: " + err.Error()})
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func toFarmResponse(f domain.Farm) farmResponse {
	return farmResponse{
		ID:                 f.ID,
		Name:               f.Name,
		OwnerID:            f.OwnerID,
		Address:            f.Address,
		CertificationScore: f.CertificationScore,
	}
}

func toCertificateResponse(c domain.Certificate) certificateResponse {
	return certificateResponse{
		ID:                c.ID,
		FarmID:            c.FarmID,
		Status:            c.Status,
		Score:             c.Score,
		Grade:             c.Grade,
		Details:           c.Details,
		Components:        c.Components,
		Recommendations:   c.Recommendations,
		IsPGSCertificate:  c.IsPGS,
		AuthorizationInfo: c.AuthorizationInfo,
		UploadedAt:        c.UploadedAt,
		ReprocessedAt:     c.ReprocessedAt,
	}
}
