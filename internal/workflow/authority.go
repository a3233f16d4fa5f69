package workflow

import (
	"context"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"

	"github.com/Spok95/disclosure-portal-bot/internal/approval"
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
)

type AuthorityPortal interface {
	AuthorityStats(ctx context.Context) (*models.AuthorityStats, error)
	AllInstitutions(ctx context.Context) ([]models.InstitutionSummary, error)
	PendingApprovals(ctx context.Context, status string) ([]models.ApprovalRequest, error)
	InstitutionPDFs(ctx context.Context, instID int64) ([]models.PDFMeta, error)
	Review(ctx context.Context, sub models.ReviewSubmission) error
}

type Authority struct {
	portal AuthorityPortal
	log    *zap.Logger
}

func NewAuthority(p AuthorityPortal, log *zap.Logger) *Authority {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authority{portal: p, log: log}
}

func requireAuthority(s *session.Session) error {
	if !s.IsAuthority() {
		return ErrNotAuthority
	}
	return nil
}

type Overview struct {
	Stats        *models.AuthorityStats
	Institutions []models.InstitutionSummary
	HighRisk     []models.InstitutionSummary
}

func (w *Authority) Overview(ctx context.Context, s *session.Session) (*Overview, error) {
	if err := requireAuthority(s); err != nil {
		return nil, err
	}
	stats, err := w.portal.AuthorityStats(ctx)
	if err != nil {
		return nil, err
	}
	all, err := w.portal.AllInstitutions(ctx)
	if err != nil {
		return nil, err
	}
	ov := &Overview{Stats: stats, Institutions: all}
	for _, it := range all {
		if it.RiskLevel == "High" {
			ov.HighRisk = append(ov.HighRisk, it)
		}
	}
	return ov, nil
}

func (w *Authority) Pending(ctx context.Context, s *session.Session, status string) ([]models.ApprovalRequest, error) {
	if err := requireAuthority(s); err != nil {
		return nil, err
	}
	return w.portal.PendingApprovals(ctx, status)
}

// Reviewable — по заявке ещё можно принять решение.
func Reviewable(st models.ApprovalStatus) bool {
	return st != models.StatusApproved && st != models.StatusRejected
}

// ReviewContext — форма ревью и ссылки на PDF по разделам.
type ReviewContext struct {
	Form *approval.ReviewForm
	PDFs map[models.Section]models.PDFMeta
}

// OpenReview находит заявку в общем списке и подгружает PDF. Ошибка PDF не фатальна.
func (w *Authority) OpenReview(ctx context.Context, s *session.Session, approvalID int64) (*ReviewContext, error) {
	if err := requireAuthority(s); err != nil {
		return nil, err
	}
	list, err := w.portal.PendingApprovals(ctx, "")
	if err != nil {
		return nil, err
	}
	var found *models.ApprovalRequest
	for i := range list {
		if list[i].ApprovalID == approvalID {
			found = &list[i]
			break
		}
	}
	if found == nil {
		return nil, ErrApprovalNotFound
	}

	rc := &ReviewContext{Form: approval.NewReviewForm(*found), PDFs: map[models.Section]models.PDFMeta{}}
	pdfs, err := w.portal.InstitutionPDFs(ctx, found.InstitutionID)
	if err != nil {
		w.log.Warn("institution pdfs", zap.Int64("institution_id", found.InstitutionID), zap.Error(err))
	}
	for _, p := range pdfs {
		rc.PDFs[p.SectionType] = p
	}
	s.ReviewID = approvalID
	return rc, nil
}

// SubmitReview отправляет решение по всем шести разделам одним запросом.
func (w *Authority) SubmitReview(ctx context.Context, s *session.Session, form *approval.ReviewForm, action string) error {
	if err := requireAuthority(s); err != nil {
		return err
	}
	sub, err := form.Submission(action)
	if err != nil {
		return err
	}
	if err := w.portal.Review(ctx, sub); err != nil {
		return err
	}
	w.log.Info("review submitted", zap.Int64("approval_id", sub.ApprovalID), zap.String("action", sub.Action), zap.String("by", s.Name))
	s.ReviewID = 0
	return nil
}

// Filter — фильтры списка учреждений; пустое поле не фильтрует.
type Filter struct {
	Search   string
	Risk     string
	Approval models.ApprovalStatus
}

func (f Filter) Empty() bool { return f.Search == "" && f.Risk == "" && f.Approval == "" }

func (w *Authority) Institutions(ctx context.Context, s *session.Session, f Filter) ([]models.InstitutionSummary, error) {
	if err := requireAuthority(s); err != nil {
		return nil, err
	}
	all, err := w.portal.AllInstitutions(ctx)
	if err != nil {
		return nil, err
	}
	return FilterInstitutions(all, f), nil
}

// FilterInstitutions: нечёткий поиск по названию или штату, точное совпадение уровня риска и статуса.
// При поиске лучшие совпадения идут первыми.
func FilterInstitutions(list []models.InstitutionSummary, f Filter) []models.InstitutionSummary {
	search := strings.TrimSpace(f.Search)
	type ranked struct {
		it   models.InstitutionSummary
		rank int
	}
	var out []ranked
	for _, it := range list {
		if f.Risk != "" && it.RiskLevel != f.Risk {
			continue
		}
		if f.Approval != "" && it.ApprovalStatus != f.Approval {
			continue
		}
		rank := 0
		if search != "" {
			rank = matchRank(search, it)
			if rank < 0 {
				continue
			}
		}
		out = append(out, ranked{it, rank})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].rank < out[j].rank })
	res := make([]models.InstitutionSummary, len(out))
	for i, r := range out {
		res[i] = r.it
	}
	return res
}

func matchRank(search string, it models.InstitutionSummary) int {
	best := -1
	for _, target := range []string{it.InstitutionName, it.State} {
		if target == "" {
			continue
		}
		r := fuzzy.RankMatchNormalizedFold(search, target)
		if strings.Contains(strings.ToLower(target), strings.ToLower(search)) && r < 0 {
			r = 0
		}
		if r >= 0 && (best < 0 || r < best) {
			best = r
		}
	}
	return best
}

type Count struct {
	Key string
	N   int
}

// Analytics — разбивка учреждений для экрана аналитики.
type Analytics struct {
	Total      int
	ByState    []Count
	ByRisk     []Count
	ByApproval []Count
}

func BuildAnalytics(list []models.InstitutionSummary) Analytics {
	states := map[string]int{}
	byRisk := map[string]int{"Low": 0, "Medium": 0, "High": 0}
	byApproval := map[string]int{"pending": 0, "approved": 0, "rejected": 0}
	for _, it := range list {
		st := it.State
		if st == "" {
			st = "—"
		}
		states[st]++
		if it.RiskLevel != "" {
			byRisk[it.RiskLevel]++
		}
		if it.ApprovalStatus != "" {
			byApproval[string(it.ApprovalStatus)]++
		}
	}
	a := Analytics{Total: len(list), ByState: sortedCounts(states)}
	a.ByRisk = orderedCounts(byRisk, "Low", "Medium", "High")
	a.ByApproval = orderedCounts(byApproval, "pending", "approved", "rejected")
	return a
}

// sortedCounts — по убыванию, при равенстве по ключу.
func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// orderedCounts — сначала фиксированные ключи, затем остальные по алфавиту.
func orderedCounts(m map[string]int, first ...string) []Count {
	out := make([]Count, 0, len(m))
	seen := map[string]bool{}
	for _, k := range first {
		out = append(out, Count{k, m[k]})
		seen[k] = true
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		out = append(out, Count{k, m[k]})
	}
	return out
}
