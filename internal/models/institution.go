package models

// SectionUpload — состояние одного загруженного раздела. review_status живёт отдельно
// от статуса заявки: раздел может быть одобрен, пока заявка ещё на рассмотрении.
type SectionUpload struct {
	AIData       SectionData    `json:"ai_data"`
	ReviewStatus DecisionStatus `json:"review_status,omitempty"`
	ReviewNotes  string         `json:"review_notes,omitempty"`
	SectionScore float64        `json:"section_score,omitempty"`
	UploadedAt   string         `json:"uploaded_at,omitempty"`
}

// Flag — признак риска; сервер отдаёт его то bool, то числом.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case "null", "false", "0", "0.0", `""`:
		*f = false
	default:
		*f = true
	}
	return nil
}

type Dashboard struct {
	InstitutionName     string                    `json:"institution_name"`
	AicteID             string                    `json:"aicte_id"`
	State               string                    `json:"state"`
	InstType            string                    `json:"inst_type"`
	PrincipalName       string                    `json:"principal_name"`
	SectionsUploaded    []Section                 `json:"sections_uploaded"`
	InstData            SectionData               `json:"inst_data"`
	RiskScore           float64                   `json:"risk_score"`
	RiskLevel           string                    `json:"risk_level"`
	ApprovalProbability float64                   `json:"approval_probability"`
	ApprovalStatus      ApprovalStatus            `json:"approval_status"`
	LatestApproval      *ApprovalRequest          `json:"latest_approval"`
	RiskFactors         []string                  `json:"risk_factors"`
	SectionScores       map[Section]float64       `json:"section_scores"`
	SectionDetails      map[Section]SectionUpload `json:"section_details"`
}

type DisclosureRisk struct {
	Level        string  `json:"level"`
	Score        float64 `json:"score"`
	SectionScore float64 `json:"section_score"`
}

type Disclosure struct {
	SectionType  Section         `json:"section_type"`
	AcademicYear string          `json:"academic_year"`
	Status       string          `json:"status"`
	UploadedAt   string          `json:"uploaded_at"`
	AIData       SectionData     `json:"ai_data"`
	Risk         *DisclosureRisk `json:"risk"`
	ReviewStatus DecisionStatus  `json:"review_status"`
	ReviewNotes  string          `json:"review_notes"`
}

type PDFMeta struct {
	SectionType  Section `json:"section_type"`
	FileName     string  `json:"file_name,omitempty"`
	PresignedURL string  `json:"presigned_url"`
	UploadedAt   string  `json:"uploaded_at"`
}

type FacultyStats struct {
	TotalFaculty int     `json:"total_faculty"`
	Shortage     int     `json:"shortage"`
	PhDPct       float64 `json:"phd_pct"`
}

type RiskHistoryEntry struct {
	SectionType Section `json:"section_type"`
	RiskScore   float64 `json:"risk_score"`
	RiskLevel   string  `json:"risk_level,omitempty"`
	AnalyzedAt  string  `json:"analyzed_at,omitempty"`
}

// RiskReport — ответ /ai-risk/.
type RiskReport struct {
	RiskScore           float64                   `json:"risk_score"`
	RiskLevel           string                    `json:"risk_level"`
	CompliancePct       float64                   `json:"compliance_pct"`
	FacultyRatio        float64                   `json:"faculty_ratio"`
	ApprovalProbability float64                   `json:"approval_probability"`
	FacultyShortage     Flag                      `json:"faculty_shortage"`
	InfraDeficit        Flag                      `json:"infra_deficit"`
	ExpiredCerts        Flag                      `json:"expired_certs"`
	RiskFactors         []string                  `json:"risk_factors"`
	Suggestions         []string                  `json:"suggestions"`
	SectionBreakdown    map[Section]SectionUpload `json:"section_breakdown"`
	SectionScores       map[Section]float64       `json:"section_scores"`
	FacultyStats        FacultyStats              `json:"faculty_stats"`
	History             []RiskHistoryEntry        `json:"history"`
}

func (r RiskReport) HasSection(s Section) bool {
	_, ok := r.SectionBreakdown[s]
	return ok
}

type UploadRisk struct {
	RiskScore           float64  `json:"risk_score"`
	RiskLevel           string   `json:"risk_level"`
	ApprovalProbability float64  `json:"approval_probability"`
	RiskFactors         []string `json:"risk_factors"`
}

// UploadAnalysis — ответ /upload/ (фаза 1).
type UploadAnalysis struct {
	SectionType Section     `json:"section_type"`
	AIData      SectionData `json:"ai_data"`
	Risk        UploadRisk  `json:"risk"`
}

// StoredPDF — ответ /upload-s3/ (фаза 2).
type StoredPDF struct {
	URL string `json:"s3_url"`
}

type Notification struct {
	ID        int64  `json:"id,omitempty"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"notif_type"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

func UnreadCount(list []Notification) int {
	n := 0
	for _, it := range list {
		if !it.IsRead {
			n++
		}
	}
	return n
}

type AuthorityStats struct {
	TotalInstitutions int `json:"total_institutions"`
	PendingApprovals  int `json:"pending_approvals"`
	Approved          int `json:"approved"`
	Rejected          int `json:"rejected"`
	HighRisk          int `json:"high_risk"`
	MediumRisk        int `json:"medium_risk"`
	LowRisk           int `json:"low_risk"`
}

type InstitutionSummary struct {
	InstitutionID   int64          `json:"institution_id"`
	InstitutionName string         `json:"institution_name"`
	AicteID         string         `json:"aicte_id,omitempty"`
	State           string         `json:"state"`
	TotalStudents   int            `json:"total_students"`
	TotalFaculty    int            `json:"total_faculty"`
	TotalLabs       int            `json:"total_labs"`
	RiskScore       float64        `json:"risk_score"`
	RiskLevel       string         `json:"risk_level"`
	ApprovalStatus  ApprovalStatus `json:"approval_status"`
}

// Report — бинарная выгрузка /download-excel/.
type Report struct {
	Filename string
	Data     []byte
}
