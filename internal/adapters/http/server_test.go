package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mandi/internal/domain"
	"mandi/internal/ports"
	certsvc "mandi/internal/services/certificates"
)

type stubFarms struct {
	farms map[string]domain.Farm
}

func (s *stubFarms) Create(_ context.Context, farm domain.Farm) (string, error) {
	farm.ID = "farm-1"
	s.farms[farm.ID] = farm
	return farm.ID, nil
}

func (s *stubFarms) Get(_ context.Context, farmID string) (domain.Farm, error) {
	farm, ok := s.farms[farmID]
	if !ok {
		return domain.Farm{}, ports.ErrNotFound
	}
	return farm, nil
}

func (s *stubFarms) ListRanked(context.Context) ([]domain.Farm, error) {
	out := make([]domain.Farm, 0, len(s.farms))
	for _, f := range s.farms {
		out = append(out, f)
	}
	return out, nil
}

type stubCertificates struct {
	certs map[string]domain.Certificate
}

func (s *stubCertificates) Upload(_ context.Context, farmID, ocrText string) (string, error) {
	if strings.TrimSpace(ocrText) == "" {
		return "", certsvc.ErrEmptyText
	}
	id := "cert-1"
	s.certs[id] = domain.Certificate{ID: id, FarmID: farmID, OCRText: ocrText, Status: domain.CertStatusQueued, UploadedAt: time.Now()}
	return id, nil
}

func (s *stubCertificates) Get(_ context.Context, certID string) (domain.Certificate, error) {
	cert, ok := s.certs[certID]
	if !ok {
		return domain.Certificate{}, ports.ErrNotFound
	}
	return cert, nil
}

func (s *stubCertificates) List(_ context.Context, farmID string) ([]domain.Certificate, error) {
	var out []domain.Certificate
	for _, c := range s.certs {
		if c.FarmID == farmID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubCertificates) Delete(_ context.Context, farmID, certID string) (int, error) {
	cert, ok := s.certs[certID]
	if !ok || cert.FarmID != farmID {
		return 0, ports.ErrNotFound
	}
	delete(s.certs, certID)
	return 0, nil
}

type stubReprocessor struct {
	certs *stubCertificates
}

func (s *stubReprocessor) Reprocess(ctx context.Context, farmID, certID string) (domain.Certificate, error) {
	cert, err := s.certs.Get(ctx, certID)
	if err != nil {
		return domain.Certificate{}, err
	}
	if cert.FarmID != farmID {
		return domain.Certificate{}, certsvc.ErrWrongFarm
	}
	return cert, nil
}

type stubJobRepo struct{}

func (stubJobRepo) ClaimNext(context.Context) (ports.CertificateJob, bool, error) {
	return ports.CertificateJob{}, false, nil
}
func (stubJobRepo) MarkCompleted(context.Context, string) error      { return nil }
func (stubJobRepo) MarkFailed(context.Context, string, string) error { return nil }
func (stubJobRepo) StartJobForCertificate(_ context.Context, certID string) (string, error) {
	return "job-" + certID, nil
}

type stubProcessor struct {
	certs *stubCertificates
}

func (p *stubProcessor) Process(_ context.Context, certID string) error {
	cert := p.certs.certs[certID]
	score := 87
	grade := "A"
	cert.Status = domain.CertStatusCompleted
	cert.Score = &score
	cert.Grade = &grade
	p.certs.certs[certID] = cert
	return nil
}

func newTestServer(t *testing.T) (*Server, *stubFarms, *stubCertificates) {
	t.Helper()
	farms := &stubFarms{farms: map[string]domain.Farm{}}
	certs := &stubCertificates{certs: map[string]domain.Certificate{}}
	srv := New(farms, certs, &stubReprocessor{certs: certs}, stubJobRepo{}, &stubProcessor{certs: certs}, zap.NewNop())
	return srv, farms, certs
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostFarm(t *testing.T) {
	srv, _, _ := newTestServer(t)

	t.Run("missing name is rejected", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/farms", `{"owner_id":"owner-1"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("valid farm is created", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/farms", `{"name":"Green Acres","owner_id":"owner-1"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "farm-1", body["id"])
	})
}

func TestGetFarmNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/farms/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostCertificate(t *testing.T) {
	srv, farms, _ := newTestServer(t)
	farms.farms["farm-1"] = domain.Farm{ID: "farm-1", Name: "Green Acres"}

	t.Run("unknown farm", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/farms/nope/certificates", `{"ocr_text":"some certificate text"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("empty text fails validation", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/farms/farm-1/certificates", `{"ocr_text":""}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("blank text is a readable-input error", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/farms/farm-1/certificates", `{"ocr_text":"   "}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body["error"], "certificate could not be read")
	})

	t.Run("async upload is accepted", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/farms/farm-1/certificates", `{"ocr_text":"NPOP certificate text"}`)
		require.Equal(t, http.StatusAccepted, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "cert-1", body["certificate_id"])
		assert.Equal(t, "farm-1", body["farm_id"])
	})

	t.Run("wait=true returns the processed certificate", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/farms/farm-1/certificates?wait=true", `{"ocr_text":"NPOP certificate text"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var body certificateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "cert-1", body.ID)
		assert.Equal(t, domain.CertStatusCompleted, body.Status)
		require.NotNil(t, body.Score)
		assert.Equal(t, 87, *body.Score)
	})
}

func TestListCertificatesIncludesAggregate(t *testing.T) {
	srv, farms, certs := newTestServer(t)
	farms.farms["farm-1"] = domain.Farm{ID: "farm-1", Name: "Green Acres", CertificationScore: 92}
	certs.certs["cert-1"] = domain.Certificate{ID: "cert-1", FarmID: "farm-1", Status: domain.CertStatusCompleted}

	rec := doRequest(t, srv, http.MethodGet, "/farms/farm-1/certificates", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Certificates       []certificateResponse `json:"certificates"`
		CertificationScore int                   `json:"certification_score"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 92, body.CertificationScore)
	require.Len(t, body.Certificates, 1)
	assert.Equal(t, "cert-1", body.Certificates[0].ID)
}

func TestDeleteCertificate(t *testing.T) {
	srv, farms, certs := newTestServer(t)
	farms.farms["farm-1"] = domain.Farm{ID: "farm-1"}
	certs.certs["cert-1"] = domain.Certificate{ID: "cert-1", FarmID: "farm-1"}

	rec := doRequest(t, srv, http.MethodDelete, "/farms/farm-1/certificates/cert-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodDelete, "/farms/farm-1/certificates/cert-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReprocessWrongFarmIsNotFound(t *testing.T) {
	srv, farms, certs := newTestServer(t)
	farms.farms["farm-1"] = domain.Farm{ID: "farm-1"}
	certs.certs["cert-1"] = domain.Certificate{ID: "cert-1", FarmID: "farm-1"}

	rec := doRequest(t, srv, http.MethodPost, "/farms/farm-2/certificates/cert-1/reprocess", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
