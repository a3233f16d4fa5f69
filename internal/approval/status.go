package approval

import "github.com/Spok95/disclosure-portal-bot/internal/models"

// Banner — оформление статуса заявки для экранов учреждения.
type Banner struct {
	Icon  string
	Title string
	Tone  string // info|success|danger
}

var banners = map[models.ApprovalStatus]Banner{
	models.StatusPending:     {"⏳", "Pending", "info"},
	models.StatusSubmitted:   {"📤", "Application Submitted for Review", "info"},
	models.StatusUnderReview: {"🔍", "Application Under Review", "info"},
	models.StatusApproved:    {"✅", "Application APPROVED", "success"},
	models.StatusRejected:    {"❌", "Application REJECTED — Action Required", "danger"},
	models.StatusResubmitted: {"🔄", "Application Resubmitted", "info"},
}

// BannerFor для незнакомого статуса показывает его как есть.
func BannerFor(s models.ApprovalStatus) Banner {
	if b, ok := banners[s]; ok {
		return b
	}
	return Banner{Icon: "📝", Title: string(s), Tone: "info"}
}

func DecisionIcon(d models.DecisionStatus) string {
	switch d {
	case models.DecisionApproved:
		return "✅"
	case models.DecisionRejected:
		return "❌"
	default:
		return "⏳"
	}
}

// SectionState — строка статуса в сетке загрузки.
type SectionState struct {
	Uploaded bool
	Status   string
	Button   string
	Notes    string
	Score    float64
	HasScore bool
}

func DeriveSectionState(uploaded bool, details *models.SectionUpload) SectionState {
	st := SectionState{Uploaded: uploaded, Status: "⬜ Not uploaded yet", Button: "📤 Upload PDF"}
	var review models.DecisionStatus
	if details != nil {
		review = details.ReviewStatus
		st.Score = details.SectionScore
		st.HasScore = true
	}
	if uploaded {
		st.Button = "🔄 Re-upload PDF"
		switch review {
		case models.DecisionApproved:
			st.Status = "✅ Approved by AICTE"
		case models.DecisionRejected:
			st.Status = "❌ Rejected — Re-upload required"
		default:
			st.Status = "✅ Uploaded & Analyzed"
		}
	}
	switch review {
	case models.DecisionRejected:
		st.Button = "🔄 Re-upload (Fix Required)"
		st.Notes = details.ReviewNotes
	case models.DecisionApproved:
		st.Button = "🔄 Re-upload"
	}
	return st
}
