package workflow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/portal"
)

// fakePortal — минимальный портал в памяти для сквозных сценариев.
type fakePortal struct {
	mu       sync.Mutex
	uploaded []models.Section
	latest   *models.ApprovalRequest
	calls    map[string]int
}

func (f *fakePortal) hit(path string) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[path]++
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakePortal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit(r.URL.Path)

	switch r.URL.Path {
	case "/login/":
		var cr models.Credentials
		_ = json.NewDecoder(r.Body).Decode(&cr)
		if cr.Password != "secret1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, models.InstitutionLogin{InstitutionID: 7, InstitutionName: "VVIT"})
	case "/upload/":
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		sec := models.Section(r.FormValue("section_type"))
		found := false
		for _, s := range f.uploaded {
			found = found || s == sec
		}
		if !found {
			f.uploaded = append(f.uploaded, sec)
		}
		writeJSON(w, http.StatusOK, models.UploadAnalysis{SectionType: sec, Risk: models.UploadRisk{RiskScore: 20, RiskLevel: "Low"}})
	case "/upload-s3/":
		writeJSON(w, http.StatusOK, models.StoredPDF{URL: "https://bucket/x.pdf"})
	case "/dashboard/":
		d := models.Dashboard{InstitutionName: "VVIT", SectionsUploaded: f.uploaded, LatestApproval: f.latest}
		if f.latest != nil {
			d.ApprovalStatus = f.latest.Status
		}
		writeJSON(w, http.StatusOK, d)
	case "/submit-approval/":
		if len(f.uploaded) != 6 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "incomplete"})
			return
		}
		f.latest = &models.ApprovalRequest{ApprovalID: 11, InstitutionID: 7, Status: models.StatusSubmitted}
		writeJSON(w, http.StatusOK, models.SubmitResult{ApprovalID: 11, Status: models.StatusSubmitted})
	case "/approval-status/":
		if f.latest == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "not_submitted"})
			return
		}
		writeJSON(w, http.StatusOK, models.ApprovalStatusDetail{ApprovalRequest: *f.latest})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (f *fakePortal) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func startFake(t *testing.T) (*fakePortal, *portal.Client) {
	t.Helper()
	fp := &fakePortal{}
	srv := httptest.NewServer(fp)
	t.Cleanup(srv.Close)
	return fp, portal.New(srv.URL, 5*time.Second, 5*time.Second, nil)
}
