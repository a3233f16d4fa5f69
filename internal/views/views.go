package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/Spok95/disclosure-portal-bot/internal/approval"
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/risk"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// MaxRows — сколько строк таблицы помещаем в одно сообщение.
const MaxRows = 25

// Renderer собирает HTML-сообщения Telegram из шаблонов.
type Renderer struct {
	t *template.Template
	p *message.Printer
}

func New() (*Renderer, error) {
	r := &Renderer{p: message.NewPrinter(language.MustParse("en-IN"))}
	t, err := template.New("views").Funcs(r.funcs()).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.t = t
	return r, nil
}

func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(collapseBlank(buf.String())), nil
}

// collapseBlank убирает пустые строки подряд, которые оставляют условные блоки шаблонов.
func collapseBlank(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	blank := false
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if l == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"num":       r.Num,
		"dashNum":   r.dashNum,
		"score":     Score,
		"band":      risk.BandFor,
		"health":    risk.SectionHealth,
		"bar":       Bar,
		"upper":     strings.ToUpper,
		"lakhs":     Lakhs,
		"dash":      Dash,
		"sec":       func(s models.Section) models.SectionDef { return s.Def() },
		"banner":    approval.BannerFor,
		"decision":  approval.DecisionIcon,
		"pts":       Points,
		"inc":       func(i int) int { return i + 1 },
		"top":       Top,
		"more":      More,
		"statusOr":  StatusOr,
		"yesNo":     YesNo,
		"levelOr":   LevelOr,
		"notifIcon": NotifIcon,
		"sections":  func() []models.Section { return models.AllSections },
	}
}

// Num — число с разделителями разрядов (en-IN).
func (r *Renderer) Num(v any) string {
	switch n := v.(type) {
	case int:
		return r.p.Sprintf("%d", n)
	case int64:
		return r.p.Sprintf("%d", n)
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1e15 {
			return r.p.Sprintf("%d", int64(n))
		}
		return r.p.Sprint(number.Decimal(n, number.MaxFractionDigits(2)))
	default:
		return fmt.Sprint(v)
	}
}

func (r *Renderer) dashNum(v any) string {
	switch n := v.(type) {
	case int:
		if n == 0 {
			return "—"
		}
	case int64:
		if n == 0 {
			return "—"
		}
	case float64:
		if n == 0 {
			return "—"
		}
	}
	return r.Num(v)
}

// Score печатает балл без лишних нулей: 41, 41.5.
func Score(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// Lakhs — бюджет в лакхах; от 100 лакхов добавляется значение в кроре.
func Lakhs(f float64) string {
	d := decimal.NewFromFloat(f).Round(2)
	s := "₹" + d.String() + " Lakhs"
	if d.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		s += " (₹" + d.Div(decimal.NewFromInt(100)).Round(2).String() + " Cr)"
	}
	return s
}

func Dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

// Bar — полоска из 10 делений.
func Bar(pct int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	full := (pct + 5) / 10
	return strings.Repeat("▰", full) + strings.Repeat("▱", 10-full)
}

// Points — штрафные баллы раздела.
func Points(f float64) string {
	if f > 0 {
		return "-" + Score(f) + " pts"
	}
	return "✅ 0 pts"
}

func Top(n int, list []string) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

// More — "… and N more" для обрезанных списков; пусто, если всё поместилось.
func More(shown, total int) string {
	if total > shown {
		return fmt.Sprintf("… and %d more", total-shown)
	}
	return ""
}

func StatusOr(s models.ApprovalStatus) string {
	if s == "" {
		return string(models.StatusPending)
	}
	return string(s)
}

func LevelOr(s string) string {
	if s == "" {
		return "Not Analyzed"
	}
	return s
}

func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func NotifIcon(kind string) string {
	switch kind {
	case "warning":
		return "⚠️"
	case "success":
		return "✅"
	case "danger":
		return "🔴"
	case "info":
		return "ℹ️"
	}
	return "📢"
}
