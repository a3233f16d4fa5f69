package router

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Spok95/disclosure-portal-bot/internal/approval"
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
	"github.com/Spok95/disclosure-portal-bot/internal/views"
	"github.com/Spok95/disclosure-portal-bot/internal/workflow"
)

type PageID string

const (
	InstDashboard     PageID = "inst-dashboard"
	UploadDisclosures PageID = "upload-disclosures"
	MyDisclosures     PageID = "my-disclosures"
	AIRisk            PageID = "ai-risk"
	ApprovalStatus    PageID = "approval-status"
	Notifications     PageID = "notifications"
	Profile           PageID = "profile"
	AuthDashboard     PageID = "auth-dashboard"
	AuthPending       PageID = "auth-pending"
	AuthInstitutions  PageID = "auth-institutions"
	AuthAnalytics     PageID = "auth-analytics"
)

var ErrUnknownPage = errors.New("unknown page")

type Page struct {
	ID    PageID
	Title string
	Role  models.Role
}

var pages = []Page{
	{InstDashboard, "🏠 Dashboard", models.Institution},
	{UploadDisclosures, "📁 Upload", models.Institution},
	{MyDisclosures, "📄 My Disclosures", models.Institution},
	{AIRisk, "🤖 AI Risk", models.Institution},
	{ApprovalStatus, "📌 Approval Status", models.Institution},
	{Notifications, "🔔 Notifications", models.Institution},
	{Profile, "👤 Profile", models.Institution},
	{AuthDashboard, "🏛 Dashboard", models.Authority},
	{AuthPending, "📋 Applications", models.Authority},
	{AuthInstitutions, "🏫 Institutions", models.Authority},
	{AuthAnalytics, "📈 Analytics", models.Authority},
}

func Lookup(id PageID) (Page, bool) {
	for _, p := range pages {
		if p.ID == id {
			return p, true
		}
	}
	return Page{}, false
}

// Pages — страницы, доступные роли, в порядке меню.
func Pages(role models.Role) []Page {
	var out []Page
	for _, p := range pages {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out
}

// Home — стартовая страница роли; пусто, если не вошли.
func Home(s *session.Session) PageID {
	switch {
	case s.IsInstitution():
		return InstDashboard
	case s.IsAuthority():
		return AuthDashboard
	}
	return ""
}

type InstitutionPages interface {
	Dashboard(ctx context.Context, s *session.Session) (*workflow.DashboardView, error)
	Disclosures(ctx context.Context, s *session.Session) ([]models.Disclosure, error)
	RiskReport(ctx context.Context, s *session.Session) (*models.RiskReport, error)
	ApprovalStatus(ctx context.Context, s *session.Session) (*models.ApprovalStatusDetail, error)
	Notifications(ctx context.Context, s *session.Session) ([]models.Notification, int, error)
}

type AuthorityPages interface {
	Overview(ctx context.Context, s *session.Session) (*workflow.Overview, error)
	Pending(ctx context.Context, s *session.Session, status string) ([]models.ApprovalRequest, error)
	Institutions(ctx context.Context, s *session.Session, f workflow.Filter) ([]models.InstitutionSummary, error)
}

// Params — фильтры страниц authority.
type Params struct {
	Status string
	Filter workflow.Filter
}

// Screen — отрисованная страница и данные, нужные для клавиатуры.
type Screen struct {
	Page         PageID
	Text         string
	Submit       approval.SubmitButton
	Grid         []workflow.SectionRow
	Approvals    []models.ApprovalRequest
	Filter       workflow.Filter
	Status       string
	Downloadable bool
	Count        int
}

type Router struct {
	inst  InstitutionPages
	auth  AuthorityPages
	views *views.Renderer
	log   *zap.Logger
}

func New(inst InstitutionPages, auth AuthorityPages, v *views.Renderer, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{inst: inst, auth: auth, views: v, log: log}
}

func guard(s *session.Session, p Page) error {
	switch p.Role {
	case models.Institution:
		if !s.IsInstitution() {
			return workflow.ErrNotInstitution
		}
	case models.Authority:
		if !s.IsAuthority() {
			return workflow.ErrNotAuthority
		}
	}
	return nil
}

// Open каждый раз заново тянет данные страницы с портала.
func (r *Router) Open(ctx context.Context, s *session.Session, id PageID, prm Params) (*Screen, error) {
	p, ok := Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, id)
	}
	if err := guard(s, p); err != nil {
		return nil, err
	}
	sc := &Screen{Page: id}
	var err error
	switch id {
	case InstDashboard:
		err = r.dashboard(ctx, s, sc)
	case UploadDisclosures:
		err = r.uploadGrid(ctx, s, sc)
	case MyDisclosures:
		var list []models.Disclosure
		if list, err = r.inst.Disclosures(ctx, s); err == nil {
			sc.Count = len(list)
			sc.Text, err = r.views.Disclosures(list)
		}
	case AIRisk:
		var rep *models.RiskReport
		if rep, err = r.inst.RiskReport(ctx, s); err == nil {
			sc.Text, err = r.views.RiskReport(rep)
		}
	case ApprovalStatus:
		var d *models.ApprovalStatusDetail
		if d, err = r.inst.ApprovalStatus(ctx, s); err == nil {
			sc.Downloadable = d.Status == models.StatusApproved
			sc.Text, err = r.views.ApprovalStatus(d)
		}
	case Notifications:
		var list []models.Notification
		var unread int
		if list, unread, err = r.inst.Notifications(ctx, s); err == nil {
			sc.Count = unread
			sc.Text, err = r.views.Notifications(list, unread)
		}
	case Profile:
		err = r.profile(ctx, s, sc)
	case AuthDashboard:
		var ov *workflow.Overview
		if ov, err = r.auth.Overview(ctx, s); err == nil {
			sc.Text, err = r.views.AuthorityDashboard(ov)
		}
	case AuthPending:
		var list []models.ApprovalRequest
		if list, err = r.auth.Pending(ctx, s, prm.Status); err == nil {
			sc.Status = prm.Status
			sc.Approvals = list
			sc.Count = len(list)
			sc.Text, err = r.views.Pending(list, prm.Status)
		}
	case AuthInstitutions:
		var list []models.InstitutionSummary
		if list, err = r.auth.Institutions(ctx, s, prm.Filter); err == nil {
			sc.Filter = prm.Filter
			sc.Count = len(list)
			sc.Text, err = r.views.Institutions(list, prm.Filter)
		}
	case AuthAnalytics:
		var list []models.InstitutionSummary
		if list, err = r.auth.Institutions(ctx, s, workflow.Filter{}); err == nil {
			sc.Count = len(list)
			sc.Text, err = r.views.Analytics(workflow.BuildAnalytics(list))
		}
	}
	if err != nil {
		return nil, err
	}
	return sc, nil
}

func (r *Router) dashboard(ctx context.Context, s *session.Session, sc *Screen) error {
	v, err := r.inst.Dashboard(ctx, s)
	if err != nil {
		return err
	}
	// бейдж уведомлений не обязателен для дашборда
	unread := s.LastUnread
	if _, n, nerr := r.inst.Notifications(ctx, s); nerr == nil {
		unread = n
	} else {
		r.log.Warn("notifications for dashboard", zap.Int64("institution_id", s.InstitutionID), zap.Error(nerr))
	}
	sc.Submit = v.Submit
	sc.Count = unread
	sc.Text, err = r.views.Dashboard(v, unread)
	return err
}

// uploadGrid обновляет набор загруженных разделов через дашборд; при ошибке показываем локальное состояние.
func (r *Router) uploadGrid(ctx context.Context, s *session.Session, sc *Screen) error {
	if _, err := r.inst.Dashboard(ctx, s); err != nil {
		r.log.Warn("dashboard for upload grid", zap.Int64("institution_id", s.InstitutionID), zap.Error(err))
	}
	sc.Grid = workflow.UploadGrid(s)
	sc.Count = s.UploadedCount()
	var err error
	sc.Text, err = r.views.UploadGrid(sc.Grid, sc.Count)
	return err
}

func (r *Router) profile(ctx context.Context, s *session.Session, sc *Screen) error {
	v, err := r.inst.Dashboard(ctx, s)
	var d *models.Dashboard
	if err != nil {
		r.log.Warn("dashboard for profile", zap.Int64("institution_id", s.InstitutionID), zap.Error(err))
	} else {
		d = v.Data
	}
	sc.Text, err = r.views.Profile(s, d)
	return err
}
