package approval

import (
	"errors"
	"strings"

	"github.com/Spok95/disclosure-portal-bot/internal/models"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

var (
	ErrUnknownAction   = errors.New("action must be approve or reject")
	ErrUnknownSection  = errors.New("unknown section")
	ErrUnknownDecision = errors.New("decision must be pending, approved or rejected")
	ErrNoApproval      = errors.New("no application selected for review")
)

// ReviewForm — черновик решения проверяющего по одной заявке.
type ReviewForm struct {
	ApprovalID int64
	Request    models.ApprovalRequest
	Notes      string
	decisions  map[models.Section]models.SectionDecision
}

// NewReviewForm подхватывает ранее сохранённые решения по разделам.
func NewReviewForm(req models.ApprovalRequest) *ReviewForm {
	f := &ReviewForm{
		ApprovalID: req.ApprovalID,
		Request:    req,
		Notes:      req.AuthorityNotes,
		decisions:  make(map[models.Section]models.SectionDecision, len(models.AllSections)),
	}
	for sec, d := range req.SectionDecisions {
		if sec.Valid() && d.Status.Valid() {
			f.decisions[sec] = d
		}
	}
	return f
}

func (f *ReviewForm) Decision(s models.Section) models.SectionDecision {
	d, ok := f.decisions[s]
	if !ok || !d.Status.Valid() {
		d.Status = models.DecisionPending
	}
	return d
}

func (f *ReviewForm) SetStatus(s models.Section, st models.DecisionStatus) error {
	if !s.Valid() {
		return ErrUnknownSection
	}
	if !st.Valid() {
		return ErrUnknownDecision
	}
	d := f.decisions[s]
	d.Status = st
	f.decisions[s] = d
	return nil
}

// Cycle: pending → approved → rejected → pending. Так удобнее на inline-кнопке.
func (f *ReviewForm) Cycle(s models.Section) (models.DecisionStatus, error) {
	next := models.DecisionApproved
	switch f.Decision(s).Status {
	case models.DecisionApproved:
		next = models.DecisionRejected
	case models.DecisionRejected:
		next = models.DecisionPending
	}
	return next, f.SetStatus(s, next)
}

func (f *ReviewForm) SetNote(s models.Section, note string) error {
	if !s.Valid() {
		return ErrUnknownSection
	}
	d := f.Decision(s)
	d.Notes = strings.TrimSpace(note)
	f.decisions[s] = d
	return nil
}

// Submission собирает тело запроса: всегда все шесть разделов, невыбранные — pending.
func (f *ReviewForm) Submission(action string) (models.ReviewSubmission, error) {
	if action != ActionApprove && action != ActionReject {
		return models.ReviewSubmission{}, ErrUnknownAction
	}
	if f.ApprovalID == 0 {
		return models.ReviewSubmission{}, ErrNoApproval
	}
	out := make(map[models.Section]models.SectionDecision, len(models.AllSections))
	for _, s := range models.AllSections {
		out[s] = f.Decision(s)
	}
	return models.ReviewSubmission{
		ApprovalID:       f.ApprovalID,
		Action:           action,
		Notes:            strings.TrimSpace(f.Notes),
		SectionDecisions: out,
	}, nil
}
