package approval

import (
	"fmt"

	"github.com/Spok95/disclosure-portal-bot/internal/models"
)

const (
	LabelSubmit   = "Submit for Approval"
	LabelReview   = "Under Review"
	LabelResubmit = "Resubmit Application"
)

// SubmitButton — состояние кнопки "отправить на одобрение".
type SubmitButton struct {
	Visible bool
	Enabled bool
	Label   string
}

func (b SubmitButton) Text() string {
	switch b.Label {
	case LabelSubmit:
		return "📨 " + b.Label
	case LabelReview:
		return "⏳ " + b.Label
	case LabelResubmit:
		return "🔄 " + b.Label
	}
	return b.Label
}

// DeriveSubmit — чистая функция от состояния дашборда. Переходов не делает,
// только отображает то, что прислал сервер. Пересчитывается при каждой загрузке.
func DeriveSubmit(approvalStatus models.ApprovalStatus, latest *models.ApprovalRequest, uploaded int) SubmitButton {
	if approvalStatus == models.StatusApproved || (latest != nil && latest.Status == models.StatusApproved) {
		return SubmitButton{}
	}
	if latest != nil && latest.Status != "" && latest.Status != models.StatusNotSubmitted {
		if latest.Status == models.StatusRejected {
			return SubmitButton{Visible: true, Enabled: true, Label: LabelResubmit}
		}
		// submitted, under_review, pending, resubmitted и всё незнакомое — заявка в работе
		return SubmitButton{Visible: true, Enabled: false, Label: LabelReview}
	}
	if uploaded >= len(models.AllSections) {
		return SubmitButton{Visible: true, Enabled: true, Label: LabelSubmit}
	}
	return SubmitButton{
		Visible: true,
		Enabled: false,
		Label:   fmt.Sprintf("Upload all %d sections (%d/%d)", len(models.AllSections), uploaded, len(models.AllSections)),
	}
}
