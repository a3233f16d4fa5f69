package upload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/Spok95/disclosure-portal-bot/internal/metrics"
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/portal"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
)

var (
	ErrNotPDF         = errors.New("upload: not a pdf")
	ErrNotLoggedIn    = errors.New("upload: institution not logged in")
	ErrUnknownSection = errors.New("upload: unknown disclosure section")
	ErrEmptyFile      = errors.New("upload: empty file")
)

// Portal — две фазы загрузки на стороне портала.
type Portal interface {
	AnalyzeDisclosure(ctx context.Context, r portal.UploadRequest) (*models.UploadAnalysis, error)
	StorePDF(ctx context.Context, r portal.UploadRequest) (*models.StoredPDF, error)
}

// Result — итог загрузки. Analyzed=false не бывает: при провале фазы 1 возвращается ошибка.
type Result struct {
	Section  models.Section
	Analyzed bool
	Stored   bool
	URL      string
	Analysis *models.UploadAnalysis
	StoreErr error
}

// Warning — текст для пользователя, если облачное сохранение не удалось.
func (r Result) Warning() string {
	if r.Stored {
		return ""
	}
	return "⚠️ AI done, but cloud save failed. Try again."
}

type Uploader struct {
	portal       Portal
	academicYear string
	log          *zap.Logger
}

func New(p Portal, academicYear string, log *zap.Logger) *Uploader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Uploader{portal: p, academicYear: academicYear, log: log}
}

// CheckName — проверка расширения; годится ещё до скачивания файла.
func CheckName(name string) error {
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return ErrNotPDF
	}
	return nil
}

// CheckFile — локальные проверки до любого сетевого вызова.
func CheckFile(name string, data []byte) error {
	if err := CheckName(name); err != nil {
		return err
	}
	if len(data) == 0 {
		return ErrEmptyFile
	}
	if !mimetype.Detect(data).Is("application/pdf") {
		return ErrNotPDF
	}
	return nil
}

// Upload: проверка → анализ (фатально) → облако (не фатально) → отметка в сессии.
func (u *Uploader) Upload(ctx context.Context, s *session.Session, sec models.Section, name string, data []byte) (*Result, error) {
	if !s.IsInstitution() {
		return nil, ErrNotLoggedIn
	}
	if !sec.Valid() {
		return nil, ErrUnknownSection
	}
	if err := CheckFile(name, data); err != nil {
		metrics.ObserveUpload(string(sec), "rejected")
		return nil, err
	}

	req := portal.UploadRequest{
		InstitutionID: s.InstitutionID,
		Section:       sec,
		AcademicYear:  u.academicYear,
		FileName:      name,
		Data:          data,
	}

	analysis, err := u.portal.AnalyzeDisclosure(ctx, req)
	if err != nil {
		metrics.ObserveUpload(string(sec), "failed")
		return nil, fmt.Errorf("Upload failed: %w", err)
	}
	res := &Result{Section: sec, Analyzed: true, Analysis: analysis}

	stored, err := u.portal.StorePDF(ctx, req)
	switch {
	case err != nil:
		res.StoreErr = err
		u.log.Warn("cloud save failed", zap.Int64("institution_id", s.InstitutionID), zap.String("section", string(sec)), zap.Error(err))
		metrics.ObserveUpload(string(sec), "analyzed")
	case stored == nil || stored.URL == "":
		res.StoreErr = errors.New("empty storage url")
		metrics.ObserveUpload(string(sec), "analyzed")
	default:
		res.Stored = true
		res.URL = stored.URL
		metrics.ObserveUpload(string(sec), "stored")
	}

	s.MarkUploaded(sec)
	return res, nil
}
