package models

type ApprovalStatus string

const (
	StatusNotSubmitted ApprovalStatus = "not_submitted"
	StatusPending      ApprovalStatus = "pending"
	StatusSubmitted    ApprovalStatus = "submitted"
	StatusUnderReview  ApprovalStatus = "under_review"
	StatusApproved     ApprovalStatus = "approved"
	StatusRejected     ApprovalStatus = "rejected"
	StatusResubmitted  ApprovalStatus = "resubmitted"
)

// Known — статусы, которые мы умеем показывать. Источник истины — сервер.
func (s ApprovalStatus) Known() bool {
	switch s {
	case StatusNotSubmitted, StatusPending, StatusSubmitted, StatusUnderReview,
		StatusApproved, StatusRejected, StatusResubmitted:
		return true
	}
	return false
}

type DecisionStatus string

const (
	DecisionPending  DecisionStatus = "pending"
	DecisionApproved DecisionStatus = "approved"
	DecisionRejected DecisionStatus = "rejected"
)

func (d DecisionStatus) Valid() bool {
	return d == DecisionPending || d == DecisionApproved || d == DecisionRejected
}

type SectionDecision struct {
	Status DecisionStatus `json:"status"`
	Notes  string         `json:"notes"`
}

type ApprovalRequest struct {
	ApprovalID       int64                       `json:"approval_id"`
	InstitutionID    int64                       `json:"institution_id,omitempty"`
	InstitutionName  string                      `json:"institution_name,omitempty"`
	AicteID          string                      `json:"aicte_id,omitempty"`
	State            string                      `json:"state,omitempty"`
	Status           ApprovalStatus              `json:"status"`
	RiskScore        float64                     `json:"risk_score"`
	RiskLevel        string                      `json:"risk_level,omitempty"`
	SectionDecisions map[Section]SectionDecision `json:"section_decisions,omitempty"`
	SectionsData     map[Section]SectionUpload   `json:"sections_data,omitempty"`
	AuthorityNotes   string                      `json:"authority_notes,omitempty"`
	SubmittedAt      string                      `json:"submitted_at,omitempty"`
	ReviewedAt       string                      `json:"reviewed_at,omitempty"`
	ReviewedBy       string                      `json:"reviewed_by,omitempty"`
	TotalStudents    int                         `json:"total_students,omitempty"`
	TotalFaculty     int                         `json:"total_faculty,omitempty"`
	InstStats        *InstStats                  `json:"inst_stats,omitempty"`
	Sections         []Section                   `json:"sections,omitempty"`
	RiskFactors      []string                    `json:"risk_factors,omitempty"`
}

// InstStats — краткие показатели учреждения в карточке заявки.
type InstStats struct {
	TotalStudents int    `json:"total_students"`
	TotalFaculty  int    `json:"total_faculty"`
	TotalLabs     int    `json:"total_labs"`
	NAACGrade     string `json:"naac_grade"`
}

type ApprovalHistoryEntry struct {
	ApprovalID  int64          `json:"approval_id,omitempty"`
	Status      ApprovalStatus `json:"status"`
	RiskScore   float64        `json:"risk_score"`
	SubmittedAt string         `json:"submitted_at,omitempty"`
	ReviewedAt  string         `json:"reviewed_at,omitempty"`
	Notes       string         `json:"authority_notes,omitempty"`
}

// ApprovalStatusDetail — ответ /approval-status/.
type ApprovalStatusDetail struct {
	ApprovalRequest
	RiskAtSubmission float64                `json:"risk_at_submission"`
	History          []ApprovalHistoryEntry `json:"history,omitempty"`
	Message          string                 `json:"message,omitempty"`
}

// ReviewSubmission — тело /authority/review/, решения по всем шести разделам сразу.
type ReviewSubmission struct {
	ApprovalID       int64                       `json:"approval_id"`
	Action           string                      `json:"action"`
	Notes            string                      `json:"notes"`
	SectionDecisions map[Section]SectionDecision `json:"section_decisions"`
}

type SubmitResult struct {
	ApprovalID int64          `json:"approval_id,omitempty"`
	Status     ApprovalStatus `json:"status,omitempty"`
	Message    string         `json:"message,omitempty"`
}
