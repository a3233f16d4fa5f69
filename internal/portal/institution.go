package portal

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"regexp"
	"strconv"

	"github.com/Spok95/disclosure-portal-bot/internal/models"
)

// ErrNotAnalyzed — /ai-risk/ ответил 404: ни один раздел ещё не проанализирован.
var ErrNotAnalyzed = errors.New("risk analysis not available yet")

func (c *Client) Dashboard(ctx context.Context, instID int64) (*models.Dashboard, error) {
	var d models.Dashboard
	if err := c.getJSON(ctx, "dashboard", "/dashboard/", instQuery(instID), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) Disclosures(ctx context.Context, instID int64) ([]models.Disclosure, error) {
	var list []models.Disclosure
	err := c.getJSON(ctx, "disclosures", "/disclosures/", instQuery(instID), &list)
	return list, err
}

func (c *Client) RiskReport(ctx context.Context, instID int64) (*models.RiskReport, error) {
	var r models.RiskReport
	if err := c.getJSON(ctx, "ai_risk", "/ai-risk/", instQuery(instID), &r); err != nil {
		if IsNotFound(err) {
			return nil, ErrNotAnalyzed
		}
		return nil, err
	}
	return &r, nil
}

func (c *Client) ApprovalStatus(ctx context.Context, instID int64) (*models.ApprovalStatusDetail, error) {
	var d models.ApprovalStatusDetail
	if err := c.getJSON(ctx, "approval_status", "/approval-status/", instQuery(instID), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) Notifications(ctx context.Context, instID int64) ([]models.Notification, error) {
	var list []models.Notification
	err := c.getJSON(ctx, "notifications", "/notifications/", instQuery(instID), &list)
	return list, err
}

func (c *Client) InstitutionPDFs(ctx context.Context, instID int64) ([]models.PDFMeta, error) {
	var list []models.PDFMeta
	err := c.getJSON(ctx, "institution_pdfs", "/institution-pdfs/", instQuery(instID), &list)
	return list, err
}

// UploadRequest — один PDF для одного раздела; байты переиспользуются в обеих фазах.
type UploadRequest struct {
	InstitutionID int64
	Section       models.Section
	AcademicYear  string
	FileName      string
	Data          []byte
}

// AnalyzeDisclosure — фаза 1: извлечение данных ИИ и пересчёт риска.
func (c *Client) AnalyzeDisclosure(ctx context.Context, r UploadRequest) (*models.UploadAnalysis, error) {
	var out models.UploadAnalysis
	fields := []formField{
		{"institution_id", strconv.FormatInt(r.InstitutionID, 10)},
		{"section_type", string(r.Section)},
		{"academic_year", r.AcademicYear},
	}
	if err := c.postMultipart(ctx, "upload", "/upload/", fields, r.FileName, r.Data, &out); err != nil {
		return nil, err
	}
	if out.SectionType == "" {
		out.SectionType = r.Section
	}
	return &out, nil
}

// StorePDF — фаза 2: сохранение файла в облако.
func (c *Client) StorePDF(ctx context.Context, r UploadRequest) (*models.StoredPDF, error) {
	var out models.StoredPDF
	fields := []formField{
		{"institution_id", strconv.FormatInt(r.InstitutionID, 10)},
		{"section_type", string(r.Section)},
	}
	if err := c.postMultipart(ctx, "upload_s3", "/upload-s3/", fields, r.FileName, r.Data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitApproval(ctx context.Context, instID int64) (*models.SubmitResult, error) {
	var out models.SubmitResult
	body := map[string]int64{"institution_id": instID}
	if err := c.postJSON(ctx, "submit_approval", "/submit-approval/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DownloadReport(ctx context.Context, instID int64) (*models.Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/download-excel/", instQuery(instID)), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	hdr, body, err := c.do(c.upload, req, "download_excel")
	if err != nil {
		return nil, err
	}
	name := FilenameFromDisposition(hdr.Get("Content-Disposition"))
	if name == "" {
		name = fmt.Sprintf("AICTE_Report_%d.xlsx", instID)
	}
	return &models.Report{Filename: name, Data: body}, nil
}

var dispositionRe = regexp.MustCompile(`filename="(.+)"`)

// FilenameFromDisposition достаёт имя файла из Content-Disposition; "" если его нет.
func FilenameFromDisposition(cd string) string {
	if cd == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	if m := dispositionRe.FindStringSubmatch(cd); m != nil {
		return m[1]
	}
	return ""
}
