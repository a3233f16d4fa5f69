package portal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Spok95/disclosure-portal-bot/internal/models"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 5*time.Second, 5*time.Second, nil)
}

func TestAPIError_FromErrorBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Invalid OTP"}`)
	}))
	_, err := c.VerifyOTP(context.Background(), models.Registration{Email: "a@b.co"}, "123456")
	var ae *APIError
	require.True(t, errors.As(err, &ae))
	require.Equal(t, http.StatusBadRequest, ae.Status)
	require.Equal(t, "Invalid OTP", ae.Error())
}

func TestAPIError_NonJSONFallsBackToStatusText(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	}))
	err := c.SendOTP(context.Background(), "a@b.co")
	var ae *APIError
	require.True(t, errors.As(err, &ae))
	require.Equal(t, "Bad Gateway", ae.Message)
}

func TestVerifyOTP_SendsFlatProfile(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify-otp/", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"institution_id":7,"institution_name":"VVIT"}`)
	}))
	res, err := c.VerifyOTP(context.Background(), models.Registration{
		InstitutionName: "VVIT", Email: "a@b.co", Password: "secret1", YearEstablished: 2000,
	}, "654321")
	require.NoError(t, err)
	require.Equal(t, int64(7), res.InstitutionID)
	require.Equal(t, "654321", got["otp"])
	require.Equal(t, "VVIT", got["institution_name"])
	require.EqualValues(t, 2000, got["year_established"])
}

func TestAnalyzeDisclosure_Multipart(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/upload/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "7", r.FormValue("institution_id"))
		require.Equal(t, "labs", r.FormValue("section_type"))
		require.Equal(t, "2024-25", r.FormValue("academic_year"))
		f, hdr, err := r.FormFile("pdf_file")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "labs.pdf", hdr.Filename)
		_, _ = io.WriteString(w, `{"ai_data":{"total_labs":12},"risk":{"risk_score":41,"risk_level":"Medium"}}`)
	}))
	res, err := c.AnalyzeDisclosure(context.Background(), UploadRequest{
		InstitutionID: 7, Section: models.Labs, AcademicYear: "2024-25",
		FileName: "labs.pdf", Data: []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	require.Equal(t, models.Labs, res.SectionType)
	require.Equal(t, 12, res.AIData.TotalLabs)
	require.InDelta(t, 41, res.Risk.RiskScore, 0.001)
}

func TestRiskReport_404IsNotAnalyzed(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no data"}`, http.StatusNotFound)
	}))
	_, err := c.RiskReport(context.Background(), 1)
	require.ErrorIs(t, err, ErrNotAnalyzed)
}

func TestDownloadReport_Filename(t *testing.T) {
	cases := []struct {
		name string
		cd   string
		want string
	}{
		{"quoted", `attachment; filename="VVIT_Report.xlsx"`, "VVIT_Report.xlsx"},
		{"missing", "", "AICTE_Report_9.xlsx"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "9", r.URL.Query().Get("institution_id"))
				if tc.cd != "" {
					w.Header().Set("Content-Disposition", tc.cd)
				}
				_, _ = w.Write([]byte("PK\x03\x04"))
			}))
			rep, err := c.DownloadReport(context.Background(), 9)
			require.NoError(t, err)
			require.Equal(t, tc.want, rep.Filename)
			require.Equal(t, []byte("PK\x03\x04"), rep.Data)
		})
	}
}

func TestFilenameFromDisposition_Malformed(t *testing.T) {
	// ParseMediaType не справляется, срабатывает запасной разбор
	require.Equal(t, "a b.xlsx", FilenameFromDisposition(`attachment; filename="a b.xlsx"; x`))
	require.Equal(t, "", FilenameFromDisposition("inline"))
}

func TestPendingApprovals_StatusFilter(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "rejected", r.URL.Query().Get("status"))
		_, _ = io.WriteString(w, `[{"approval_id":3,"status":"rejected","risk_score":61.5}]`)
	}))
	list, err := c.PendingApprovals(context.Background(), "rejected")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.InDelta(t, 61.5, list[0].RiskScore, 0.001)
}

func TestReview_PostsAllSections(t *testing.T) {
	var got models.ReviewSubmission
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"message":"ok"}`)
	}))
	sub := models.ReviewSubmission{ApprovalID: 3, Action: "approve", SectionDecisions: map[models.Section]models.SectionDecision{}}
	for _, s := range models.AllSections {
		sub.SectionDecisions[s] = models.SectionDecision{Status: models.DecisionApproved}
	}
	require.NoError(t, c.Review(context.Background(), sub))
	require.Len(t, got.SectionDecisions, 6)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := New(url, time.Second, time.Second, nil)
	_, err := c.Login(context.Background(), models.Credentials{Email: "a@b.co", Password: "x"})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnavailable)
	var ae *APIError
	require.False(t, errors.As(err, &ae))
}

func TestDownloadReport_OversizedBodyIsServerError(t *testing.T) {
	old := maxBody
	maxBody = 8
	t.Cleanup(func() { maxBody = old })

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("PK\x03\x04 и ещё немного байт"))
	}))
	rep, err := c.DownloadReport(context.Background(), 9)
	require.ErrorIs(t, err, ErrBodyTooLarge)
	require.ErrorIs(t, err, ErrUnavailable)
	require.Nil(t, rep, "обрезанный файл дальше не отдаём")
}

func TestDownloadReport_BodyAtLimitPasses(t *testing.T) {
	old := maxBody
	maxBody = 4
	t.Cleanup(func() { maxBody = old })

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("PK\x03\x04"))
	}))
	rep, err := c.DownloadReport(context.Background(), 9)
	require.NoError(t, err)
	require.Equal(t, []byte("PK\x03\x04"), rep.Data)
}
