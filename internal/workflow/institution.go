package workflow

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Spok95/disclosure-portal-bot/internal/approval"
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/portal"
	"github.com/Spok95/disclosure-portal-bot/internal/risk"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
)

type InstitutionPortal interface {
	Dashboard(ctx context.Context, instID int64) (*models.Dashboard, error)
	Disclosures(ctx context.Context, instID int64) ([]models.Disclosure, error)
	RiskReport(ctx context.Context, instID int64) (*models.RiskReport, error)
	ApprovalStatus(ctx context.Context, instID int64) (*models.ApprovalStatusDetail, error)
	Notifications(ctx context.Context, instID int64) ([]models.Notification, error)
	SubmitApproval(ctx context.Context, instID int64) (*models.SubmitResult, error)
	DownloadReport(ctx context.Context, instID int64) (*models.Report, error)
}

type Institution struct {
	portal InstitutionPortal
	log    *zap.Logger
}

func NewInstitution(p InstitutionPortal, log *zap.Logger) *Institution {
	if log == nil {
		log = zap.NewNop()
	}
	return &Institution{portal: p, log: log}
}

// DashboardView — снимок дашборда плюс производные от него элементы.
type DashboardView struct {
	Data   *models.Dashboard
	Band   risk.Band
	Submit approval.SubmitButton
	Banner *approval.Banner
}

func requireInstitution(s *session.Session) error {
	if !s.IsInstitution() {
		return ErrNotInstitution
	}
	return nil
}

// Dashboard тянет свежий снимок, обновляет набор загруженных разделов и заново выводит кнопку подачи.
func (w *Institution) Dashboard(ctx context.Context, s *session.Session) (*DashboardView, error) {
	if err := requireInstitution(s); err != nil {
		return nil, err
	}
	d, err := w.portal.Dashboard(ctx, s.InstitutionID)
	if err != nil {
		return nil, err
	}
	s.SetUploaded(d.SectionsUploaded)
	s.Dashboard = d
	if d.InstitutionName != "" {
		s.Name = d.InstitutionName
	}
	v := &DashboardView{
		Data:   d,
		Band:   risk.BandFor(d.RiskScore),
		Submit: approval.DeriveSubmit(d.ApprovalStatus, d.LatestApproval, s.UploadedCount()),
	}
	if d.LatestApproval != nil {
		b := approval.BannerFor(d.LatestApproval.Status)
		v.Banner = &b
	}
	return v, nil
}

// SectionRow — строка сетки загрузки.
type SectionRow struct {
	Def   models.SectionDef
	State approval.SectionState
}

// UploadGrid строится по последнему снимку дашборда из сессии.
func UploadGrid(s *session.Session) []SectionRow {
	var details map[models.Section]models.SectionUpload
	if s.Dashboard != nil {
		details = s.Dashboard.SectionDetails
	}
	rows := make([]SectionRow, 0, len(models.AllSections))
	for _, sec := range models.AllSections {
		var d *models.SectionUpload
		if v, ok := details[sec]; ok {
			d = &v
		}
		rows = append(rows, SectionRow{Def: sec.Def(), State: approval.DeriveSectionState(s.IsUploaded(sec), d)})
	}
	return rows
}

// Submit — локальная проверка "все 6 загружены", затем подача заявки.
func (w *Institution) Submit(ctx context.Context, s *session.Session) (*models.SubmitResult, error) {
	if err := requireInstitution(s); err != nil {
		return nil, err
	}
	if !s.AllUploaded() {
		return nil, ErrIncompleteUpload
	}
	res, err := w.portal.SubmitApproval(ctx, s.InstitutionID)
	if err != nil {
		return nil, err
	}
	// снимок устарел: кнопку подачи выводим только из свежих данных
	s.Dashboard = nil
	w.log.Info("approval submitted", zap.Int64("institution_id", s.InstitutionID), zap.Int64("approval_id", res.ApprovalID))
	return res, nil
}

func (w *Institution) Disclosures(ctx context.Context, s *session.Session) ([]models.Disclosure, error) {
	if err := requireInstitution(s); err != nil {
		return nil, err
	}
	return w.portal.Disclosures(ctx, s.InstitutionID)
}

// RiskReport: (nil, nil) — анализа ещё нет.
func (w *Institution) RiskReport(ctx context.Context, s *session.Session) (*models.RiskReport, error) {
	if err := requireInstitution(s); err != nil {
		return nil, err
	}
	r, err := w.portal.RiskReport(ctx, s.InstitutionID)
	if errors.Is(err, portal.ErrNotAnalyzed) {
		return nil, nil
	}
	return r, err
}

func (w *Institution) ApprovalStatus(ctx context.Context, s *session.Session) (*models.ApprovalStatusDetail, error) {
	if err := requireInstitution(s); err != nil {
		return nil, err
	}
	return w.portal.ApprovalStatus(ctx, s.InstitutionID)
}

// Notifications возвращает список и число непрочитанных; счётчик запоминается в сессии.
func (w *Institution) Notifications(ctx context.Context, s *session.Session) ([]models.Notification, int, error) {
	if err := requireInstitution(s); err != nil {
		return nil, 0, err
	}
	list, err := w.portal.Notifications(ctx, s.InstitutionID)
	if err != nil {
		return nil, 0, err
	}
	unread := models.UnreadCount(list)
	s.LastUnread = unread
	return list, unread, nil
}

func (w *Institution) Report(ctx context.Context, s *session.Session) (*models.Report, error) {
	if err := requireInstitution(s); err != nil {
		return nil, err
	}
	return w.portal.DownloadReport(ctx, s.InstitutionID)
}
